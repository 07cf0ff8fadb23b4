// Package backend provides the AI Hub catalog API server.

// The binaries live under cmd/ (server and the operator cli). The API is
// organized into subpackages:

// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/server: router assembly and middleware order
// - internal/models: catalog records and their validation
// - internal/store: document collections over gorm
// - internal/auth: JWT identity guard, registration and login
// - internal/aggregation: rating and share statistics, likes, tag counts
// - internal/recommendations: co-occurrence recommendations
// - internal/search: Elasticsearch tool search with a store fallback
// - internal/database: connection and migrations
// - internal/middleware: HTTP middleware (rate limiting, logging, etc.)
// - internal/kernel: service lifecycle shared by the binaries

// See the individual package documentation for detailed API reference.
package backend
