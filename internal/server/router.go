// Package server assembles the gin engine: middleware chain, operational
// endpoints and the /api/v1 routes.
package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zfogg/aihub/backend/internal/auth"
	"github.com/zfogg/aihub/backend/internal/cache"
	"github.com/zfogg/aihub/backend/internal/config"
	"github.com/zfogg/aihub/backend/internal/handlers"
	"github.com/zfogg/aihub/backend/internal/middleware"
)

// Options are the collaborators the router wires together
type Options struct {
	Config   *config.Config
	Handlers *handlers.Handlers
	Tokens   auth.TokenValidator
	// Counter backs rate limiting across instances; nil counts in memory
	Counter cache.Counter
}

// NewRouter builds the HTTP handler of the API
func NewRouter(opts Options) *gin.Engine {
	cfg := opts.Config
	h := opts.Handlers

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	if cfg.Telemetry.Enabled {
		r.Use(middleware.TracingMiddleware(cfg.Telemetry.ServiceName))
	}
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSOrigins) == 0 || (len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	r.Use(cors.New(corsConfig))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limit := middleware.DefaultRateLimitConfig()
	limit.Limit = cfg.RateLimit.Requests
	limit.Window = cfg.RateLimit.Window
	limit.KeyFunc = middleware.UserOrIPKey
	limit.Counter = opts.Counter

	authLimit := middleware.AuthRateLimitConfig()
	authLimit.KeyFunc = func(c *gin.Context) string { return "auth:" + c.ClientIP() }
	authLimit.Counter = opts.Counter

	api := r.Group("/api/v1")
	// identity is resolved first so the limiter can bucket by user
	api.Use(middleware.OptionalAuth(opts.Tokens), middleware.NewRateLimiter(limit))
	h.RegisterRoutes(api, opts.Tokens, middleware.NewRateLimiter(authLimit))

	return r
}
