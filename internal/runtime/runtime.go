// Package runtime assembles the query layer from configuration: logging,
// telemetry, secrets, the database connection and the director.
package runtime

import (
	"context"
	"fmt"

	"github.com/architeacher/household/internal/config"
	"github.com/architeacher/household/internal/infrastructure/database"
	"github.com/architeacher/household/internal/ports"
	"github.com/architeacher/household/pkg/logger"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type Runtime struct {
	deps *dependencies
}

func New(ctx context.Context, opts ...DependencyOption) (*Runtime, error) {
	deps, err := initializeDependencies(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing dependencies: %w", err)
	}

	return &Runtime{deps: deps}, nil
}

func (r *Runtime) Config() *config.ServiceConfig {
	return r.deps.config
}

func (r *Runtime) Logger() logger.Logger {
	return r.deps.infra.logger
}

func (r *Runtime) Director() *database.Director {
	return r.deps.director
}

// Database is the query context of the configured connection.
func (r *Runtime) Database() *database.Context {
	return r.deps.dbContext
}

func (r *Runtime) Transactions() ports.TransactionsRepository {
	return r.deps.repos.transactions
}

// CollectMetrics returns the measurements recorded so far. It is empty
// unless metrics are enabled.
func (r *Runtime) CollectMetrics(ctx context.Context) (metricdata.ResourceMetrics, error) {
	var collected metricdata.ResourceMetrics

	if r.deps.infra.metricsReader == nil {
		return collected, nil
	}

	if err := r.deps.infra.metricsReader.Collect(ctx, &collected); err != nil {
		return collected, fmt.Errorf("collecting metrics: %w", err)
	}

	return collected, nil
}

func (r *Runtime) Shutdown(ctx context.Context) error {
	return r.deps.shutdown(ctx)
}
