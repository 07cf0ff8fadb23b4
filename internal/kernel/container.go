// Package kernel provides dependency management for the AI Hub backend.
// It consolidates the services the server and the CLI share and owns their
// shutdown order.
package kernel

import (
	"context"
	"sync"

	"github.com/zfogg/aihub/backend/internal/aggregation"
	"github.com/zfogg/aihub/backend/internal/auth"
	"github.com/zfogg/aihub/backend/internal/cache"
	"github.com/zfogg/aihub/backend/internal/config"
	"github.com/zfogg/aihub/backend/internal/handlers"
	"github.com/zfogg/aihub/backend/internal/logger"
	"github.com/zfogg/aihub/backend/internal/search"
	"github.com/zfogg/aihub/backend/internal/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Kernel holds all application dependencies and provides type-safe access.
// It implements the Service Locator pattern with additional lifecycle management.
type Kernel struct {
	// Core infrastructure
	config *config.Config
	db     *gorm.DB
	logger *zap.Logger
	cache  *cache.RedisClient
	store  *store.Store

	// Services
	auth     *auth.Service
	search   *search.Service
	handlers *handlers.Handlers

	// Lifecycle hooks
	cleanupFuncs []func(context.Context) error
	mu           sync.RWMutex
}

// New creates a new empty kernel.
// Services should be registered using Set* methods.
func New() *Kernel {
	return &Kernel{
		cleanupFuncs: make([]func(context.Context) error, 0),
	}
}

// ============================================================================
// CORE INFRASTRUCTURE SETTERS/GETTERS
// ============================================================================

// SetConfig registers the runtime configuration
func (c *Kernel) SetConfig(cfg *config.Config) *Kernel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config = cfg
	return c
}

// Config returns the runtime configuration
func (c *Kernel) Config() *config.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// SetDB registers the database connection and the store built on it
func (c *Kernel) SetDB(db *gorm.DB) *Kernel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.db = db
	c.store = store.New(db)
	return c
}

// DB returns the database connection
func (c *Kernel) DB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// Store returns the document store over the database
func (c *Kernel) Store() *store.Store {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store
}

// SetLogger registers the logger
func (c *Kernel) SetLogger(l *zap.Logger) *Kernel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = l
	return c
}

// Logger returns the logger instance
func (c *Kernel) Logger() *zap.Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loggerLocked()
}

func (c *Kernel) loggerLocked() *zap.Logger {
	if c.logger == nil {
		return logger.Log
	}
	return c.logger
}

// SetCache registers the Redis client
func (c *Kernel) SetCache(client *cache.RedisClient) *Kernel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = client
	return c
}

// Cache returns the Redis client, nil when Redis is not configured
func (c *Kernel) Cache() *cache.RedisClient {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cache
}

// Counter returns the shared rate limit counter. It is a nil interface when
// Redis is absent so callers fall back to in-memory counting.
func (c *Kernel) Counter() cache.Counter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cache == nil {
		return nil
	}
	return c.cache
}

// ============================================================================
// SERVICE SETTERS/GETTERS
// ============================================================================

// SetAuthService registers the authentication service
func (c *Kernel) SetAuthService(service *auth.Service) *Kernel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auth = service
	return c
}

// Auth returns the authentication service
func (c *Kernel) Auth() *auth.Service {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.auth
}

// SetSearchService registers the search service
func (c *Kernel) SetSearchService(service *search.Service) *Kernel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = service
	if c.handlers != nil {
		c.handlers.SetSearchService(service)
	}
	return c
}

// Search returns the search service
func (c *Kernel) Search() *search.Service {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.search
}

// SetHandlers registers the HTTP handlers
func (c *Kernel) SetHandlers(h *handlers.Handlers) *Kernel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = h
	if c.search != nil {
		h.SetSearchService(c.search)
	}
	return c
}

// Handlers returns the HTTP handlers
func (c *Kernel) Handlers() *handlers.Handlers {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.handlers
}

// Engine returns the aggregation engine the handlers recompute views with
func (c *Kernel) Engine() *aggregation.Engine {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.handlers != nil {
		return c.handlers.Engine()
	}
	if c.store != nil {
		return aggregation.NewEngine(c.store)
	}
	return nil
}

// ============================================================================
// LIFECYCLE MANAGEMENT
// ============================================================================

// OnCleanup registers a cleanup function to be called during shutdown.
// Cleanup functions are called in LIFO order (last registered, first cleaned up).
func (c *Kernel) OnCleanup(fn func(context.Context) error) *Kernel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
	return c
}

// Cleanup performs graceful shutdown of all registered services.
// A failing cleanup is logged and the rest still run; the first error is returned.
func (c *Kernel) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var first error
	for i := len(c.cleanupFuncs) - 1; i >= 0; i-- {
		if err := c.cleanupFuncs[i](ctx); err != nil {
			c.loggerLocked().Error("Cleanup function failed",
				zap.Int("index", i),
				zap.Error(err),
			)
			if first == nil {
				first = err
			}
		}
	}
	c.cleanupFuncs = c.cleanupFuncs[:0]
	return first
}

// ============================================================================
// VALIDATION
// ============================================================================

// Validate checks that all required dependencies are registered.
// This should be called after initialization and before starting the server.
func (c *Kernel) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var missing []string
	if c.config == nil {
		missing = append(missing, "configuration")
	}
	if c.db == nil {
		missing = append(missing, "database (DB)")
	}
	if c.auth == nil {
		missing = append(missing, "auth service")
	}
	if c.handlers == nil {
		missing = append(missing, "HTTP handlers")
	}
	if len(missing) > 0 {
		return NewInitializationError("Missing required dependencies", missing)
	}

	if c.cache == nil {
		c.loggerLocked().Info("Redis not configured, rate limits are counted per process")
	}
	if c.search == nil || !c.search.Enabled() {
		c.loggerLocked().Info("Elasticsearch not configured, search runs against the database")
	}
	return nil
}
