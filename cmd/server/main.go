package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/zfogg/aihub/backend/internal/config"
	"github.com/zfogg/aihub/backend/internal/kernel"
	"github.com/zfogg/aihub/backend/internal/logger"
	"github.com/zfogg/aihub/backend/internal/metrics"
	"github.com/zfogg/aihub/backend/internal/server"
	"github.com/zfogg/aihub/backend/internal/telemetry"
	"github.com/zfogg/aihub/backend/internal/validation"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// the logger is not configured yet
		logger.Log = zap.NewExample()
		logger.Log.Fatal("Invalid configuration", zap.Error(err))
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		panic(err)
	}
	defer logger.Close()

	logger.Log.Info("=== AI Hub server starting ===", zap.String("environment", cfg.Environment))
	if envErr != nil {
		logger.Log.Info(".env file not found, using system environment variables")
	}
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.Initialize()

	ctx := context.Background()

	shutdownTracer, err := telemetry.InitTracer(ctx, telemetry.Config{
		ServiceName:  cfg.Telemetry.ServiceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.Telemetry.Endpoint,
		Enabled:      cfg.Telemetry.Enabled,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	k, err := kernel.Bootstrap(ctx, cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize services", zap.Error(err))
	}
	k.OnCleanup(shutdownTracer)

	if err := validation.ForKernel(k).ValidateServices(ctx); err != nil {
		_ = k.Cleanup(ctx)
		logger.Log.Fatal("Required service unavailable", zap.Error(err))
	}

	router := server.NewRouter(server.Options{
		Config:   cfg,
		Handlers: k.Handlers(),
		Tokens:   k.Auth(),
		Counter:  k.Counter(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info("AI Hub backend listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithFields("Server forced to shutdown", err)
	}
	if err := k.Cleanup(shutdownCtx); err != nil {
		logger.Log.Warn("Cleanup finished with errors", zap.Error(err))
	}

	logger.Log.Info("Server exited")
}
