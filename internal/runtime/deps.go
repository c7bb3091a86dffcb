package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/architeacher/household/internal/config"
	"github.com/architeacher/household/internal/infrastructure/database"
	"github.com/architeacher/household/internal/ports"
	"github.com/architeacher/household/pkg/circuitbreaker"
	"github.com/architeacher/household/pkg/logger"
	"github.com/architeacher/household/pkg/metrics"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	infrastructureDep struct {
		logger         logger.Logger
		loggerSet      bool
		tracerProvider otelTrace.TracerProvider
		metricsClient  metrics.Client
		metricsReader  *sdkmetric.ManualReader
		breaker        *circuitbreaker.CircuitBreaker[struct{}]
		connection     *database.Connection
	}

	repositories struct {
		secretsRepo  ports.SecretsRepository
		transactions ports.TransactionsRepository
	}

	cleanup struct {
		name string
		fn   func(ctx context.Context) error
	}

	dependencies struct {
		config         *config.ServiceConfig
		secretsVersion uint

		infra infrastructureDep

		director  *database.Director
		dbContext *database.Context

		repos repositories

		cleanups []cleanup
	}

	DependencyOption func(*dependencies) error
)

func initializeDependencies(ctx context.Context, opts ...DependencyOption) (*dependencies, error) {
	deps := &dependencies{}

	allOpts := append(opts, defaultOptions(ctx)...)

	for _, opt := range allOpts {
		if err := opt(deps); err != nil {
			_ = deps.shutdown(ctx)

			return nil, fmt.Errorf("failed to apply dependency option: %w", err)
		}
	}

	return deps, nil
}

func (d *dependencies) onShutdown(name string, fn func(ctx context.Context) error) {
	d.cleanups = append(d.cleanups, cleanup{name: name, fn: fn})
}

// shutdown releases resources in the reverse order they were acquired.
func (d *dependencies) shutdown(ctx context.Context) error {
	var errs []error

	for i := len(d.cleanups) - 1; i >= 0; i-- {
		if err := d.cleanups[i].fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutting down %s: %w", d.cleanups[i].name, err))
		}
	}

	d.cleanups = nil

	return errors.Join(errs...)
}
