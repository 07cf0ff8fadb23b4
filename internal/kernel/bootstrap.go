package kernel

import (
	"context"
	"fmt"

	"github.com/zfogg/aihub/backend/internal/auth"
	"github.com/zfogg/aihub/backend/internal/cache"
	"github.com/zfogg/aihub/backend/internal/config"
	"github.com/zfogg/aihub/backend/internal/database"
	"github.com/zfogg/aihub/backend/internal/handlers"
	"github.com/zfogg/aihub/backend/internal/logger"
	"github.com/zfogg/aihub/backend/internal/search"
	"github.com/zfogg/aihub/backend/internal/telemetry"
	"go.uber.org/zap"
)

// Bootstrap opens the database, migrates it and wires every service. Redis and
// Elasticsearch are optional: a failed connection is logged and the service
// runs without them. The caller owns Cleanup.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Kernel, error) {
	k := New().SetConfig(cfg).SetLogger(logger.Log)

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	k.OnCleanup(func(context.Context) error {
		return database.Close(db)
	})

	if cfg.Telemetry.Enabled {
		if err := db.Use(telemetry.GORMTracingPlugin()); err != nil {
			_ = k.Cleanup(ctx)
			return nil, fmt.Errorf("failed to install database tracing: %w", err)
		}
	}
	if err := database.Migrate(db); err != nil {
		_ = k.Cleanup(ctx)
		return nil, err
	}
	k.SetDB(db)

	authService := auth.NewService([]byte(cfg.JWTSecret), cfg.JWTTTL, k.Store().Users)
	k.SetAuthService(authService)
	k.SetHandlers(handlers.NewHandlers(k.Store(), authService))

	if cfg.Redis.Enabled() {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Log.Warn("Redis unavailable, continuing without it", zap.Error(err))
		} else {
			k.SetCache(client)
			k.OnCleanup(func(context.Context) error {
				return client.Close()
			})
		}
	}

	var es *search.Client
	if cfg.ElasticsearchURL != "" {
		es, err = search.NewClient(ctx, cfg.ElasticsearchURL)
		if err != nil {
			logger.Log.Warn("Elasticsearch unavailable, searching the database", zap.Error(err))
			es = nil
		} else if err := es.EnsureIndex(ctx); err != nil {
			logger.Log.Warn("Failed to prepare search index, searching the database", zap.Error(err))
			es = nil
		}
	}
	k.SetSearchService(search.NewService(k.Store(), es))

	if err := k.Validate(); err != nil {
		_ = k.Cleanup(ctx)
		return nil, err
	}
	return k, nil
}
