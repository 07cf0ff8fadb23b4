// Package validation pings the services an operator marked as required
// before the server accepts traffic.
package validation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zfogg/aihub/backend/internal/database"
	"github.com/zfogg/aihub/backend/internal/kernel"
	"github.com/zfogg/aihub/backend/internal/logger"
	"go.uber.org/zap"
)

// Known service names accepted in REQUIRED_SERVICES
const (
	ServiceDatabase      = "database"
	ServiceRedis         = "redis"
	ServiceElasticsearch = "elasticsearch"
)

// checkTimeout bounds every single service check
const checkTimeout = 10 * time.Second

// Check probes one service
type Check func(ctx context.Context) error

// ServiceValidator handles validation of required services
type ServiceValidator struct {
	requiredServices []string
	checks           map[string]Check
}

// NewServiceValidator creates a validator for the named services
func NewServiceValidator(required []string, checks map[string]Check) *ServiceValidator {
	normalized := make([]string, 0, len(required))
	for _, name := range required {
		if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
			normalized = append(normalized, name)
		}
	}
	return &ServiceValidator{requiredServices: normalized, checks: checks}
}

// ForKernel builds the validator for the kernel's configuration, probing the
// connections the kernel already holds
func ForKernel(k *kernel.Kernel) *ServiceValidator {
	var required []string
	if cfg := k.Config(); cfg != nil {
		required = cfg.RequiredServices
	}
	return NewServiceValidator(required, map[string]Check{
		ServiceDatabase: func(ctx context.Context) error {
			return database.Health(ctx, k.DB())
		},
		ServiceRedis: func(ctx context.Context) error {
			client := k.Cache()
			if client == nil {
				return fmt.Errorf("redis is not configured or did not connect")
			}
			return client.Ping(ctx)
		},
		ServiceElasticsearch: func(ctx context.Context) error {
			svc := k.Search()
			if svc == nil {
				return fmt.Errorf("search service is not registered")
			}
			return svc.Ping(ctx)
		},
	})
}

// ValidateServices runs the check of every required service. The first
// failure is returned; unknown service names are an error too.
func (sv *ServiceValidator) ValidateServices(ctx context.Context) error {
	if len(sv.requiredServices) == 0 {
		logger.Log.Info("No required services configured for validation")
		return nil
	}

	logger.Log.Info("Validating required services",
		zap.Strings("services", sv.requiredServices),
	)

	for _, serviceName := range sv.requiredServices {
		check, ok := sv.checks[serviceName]
		if !ok {
			return fmt.Errorf("unknown required service %q", serviceName)
		}

		timeoutCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := check(timeoutCtx)
		cancel()
		if err != nil {
			logger.Log.Error("Required service validation failed",
				zap.String("service", serviceName),
				zap.Error(err),
			)
			return fmt.Errorf("required service %q validation failed: %w", serviceName, err)
		}

		logger.Log.Info("Service validated successfully",
			zap.String("service", serviceName),
		)
	}

	logger.Log.Info("All required services validated successfully")
	return nil
}
