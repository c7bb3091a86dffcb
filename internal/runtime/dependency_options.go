package runtime

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"

	"github.com/architeacher/household/internal/adapters/executors"
	"github.com/architeacher/household/internal/adapters/repos"
	"github.com/architeacher/household/internal/config"
	"github.com/architeacher/household/internal/domain/model"
	"github.com/architeacher/household/internal/infrastructure"
	"github.com/architeacher/household/internal/infrastructure/database"
	"github.com/architeacher/household/pkg/circuitbreaker"
	"github.com/architeacher/household/pkg/decorator"
	"github.com/architeacher/household/pkg/logger"
	"github.com/architeacher/household/pkg/metrics/noop"
	"github.com/architeacher/household/pkg/metrics/otelmetrics"
	"github.com/hashicorp/vault/api"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Options given by the caller run first; the defaults below only fill in
// what is still missing.
func defaultOptions(ctx context.Context) []DependencyOption {
	return []DependencyOption{
		WithConfig(),
		WithLogger(),
		WithSecretsRepository(),
		WithConfigLoader(ctx),
		WithTracing(),
		WithMetrics(),
		WithCircuitBreaker(),
		WithDatabase(ctx),
		WithDirector(),
		WithQueryContext(),
		WithTransactionsRepository(),
	}
}

func WithConfig() DependencyOption {
	return func(d *dependencies) error {
		if d.config != nil {
			return nil
		}

		cfg, err := config.Init()
		if err != nil {
			return fmt.Errorf("initializing configuration: %w", err)
		}

		d.config = cfg

		return nil
	}
}

// WithServiceConfig uses cfg instead of reading the environment.
func WithServiceConfig(cfg *config.ServiceConfig) DependencyOption {
	return func(d *dependencies) error {
		d.config = cfg

		return nil
	}
}

func WithLogger() DependencyOption {
	return func(d *dependencies) error {
		if d.infra.loggerSet {
			return nil
		}

		d.infra.logger = logger.New(d.config.Logging.Level, d.config.Logging.Format)
		d.infra.loggerSet = true

		return nil
	}
}

// WithLoggerInstance replaces the configured logger.
func WithLoggerInstance(log logger.Logger) DependencyOption {
	return func(d *dependencies) error {
		d.infra.logger = log
		d.infra.loggerSet = true

		return nil
	}
}

func WithSecretsRepository() DependencyOption {
	return func(d *dependencies) error {
		if !d.config.SecretsStorage.Enabled || d.repos.secretsRepo != nil {
			return nil
		}

		storage := d.config.SecretsStorage

		vaultConfig := api.DefaultConfig()
		vaultConfig.Address = storage.Address
		vaultConfig.Timeout = storage.Timeout

		if storage.TLSSkipVerify {
			vaultConfig.HttpClient.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			}
		}

		client, err := api.NewClient(vaultConfig)
		if err != nil {
			return fmt.Errorf("creating Vault client: %w", err)
		}

		if storage.Namespace != "" {
			client.SetNamespace(storage.Namespace)
		}

		d.repos.secretsRepo = repos.NewVaultRepository(client)

		return nil
	}
}

func WithConfigLoader(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		if d.repos.secretsRepo == nil {
			return nil
		}

		version, err := config.NewLoader(d.config, d.repos.secretsRepo).Load(ctx)
		if err != nil && !errors.Is(err, config.ErrSecretsDisabled) {
			return fmt.Errorf("loading secrets from Vault: %w", err)
		}

		d.secretsVersion = version

		d.infra.logger.Debug().
			Uint("version", version).
			Msg("secrets loaded")

		return nil
	}
}

func WithTracing() DependencyOption {
	return func(d *dependencies) error {
		if d.infra.tracerProvider != nil {
			return nil
		}

		telemetry := d.config.Telemetry
		if !telemetry.Enabled || telemetry.OTLPEndpoint == "" {
			d.infra.tracerProvider = infrastructure.NewNoopTracerProvider()

			return nil
		}

		tp, shutdown, err := infrastructure.NewTracerProvider(d.config.App, telemetry)
		if err != nil {
			return fmt.Errorf("initializing tracer: %w", err)
		}

		d.infra.tracerProvider = tp
		d.onShutdown("tracer", shutdown)

		return nil
	}
}

// WithMetrics keeps the measurements in memory; Runtime.CollectMetrics
// reads them back.
func WithMetrics() DependencyOption {
	return func(d *dependencies) error {
		if d.infra.metricsClient != nil {
			return nil
		}

		if !d.config.Telemetry.Metrics.Enabled {
			d.infra.metricsClient = noop.NewMetricsClient()

			return nil
		}

		reader := sdkmetric.NewManualReader()

		provider, err := infrastructure.NewMeterProvider(d.config.App, d.config.Telemetry, reader)
		if err != nil {
			return fmt.Errorf("initializing meter provider: %w", err)
		}

		client, err := otelmetrics.New(provider, d.config.Telemetry.ServiceName, decorator.QueryMetricDescriptors)
		if err != nil {
			return fmt.Errorf("initializing metrics client: %w", err)
		}

		d.infra.metricsClient = client
		d.infra.metricsReader = reader
		d.onShutdown("metrics", client.Shutdown)

		return nil
	}
}

func WithCircuitBreaker() DependencyOption {
	return func(d *dependencies) error {
		cfg := d.config.CircuitBreaker
		log := d.infra.logger.Component("circuit_breaker")

		d.infra.breaker = circuitbreaker.New[struct{}](
			circuitbreaker.Config{
				Name:             "database",
				Enabled:          cfg.Enabled,
				MaxRequests:      cfg.MaxRequests,
				Interval:         cfg.Interval,
				Timeout:          cfg.Timeout,
				FailureThreshold: cfg.FailureThreshold,
			},
			circuitbreaker.WithStateChangeHook(func(name, from, to string) {
				log.Warn().
					Str("breaker", name).
					Str("from", from).
					Str("to", to).
					Msg("circuit breaker state changed")
			}),
			circuitbreaker.WithIgnoredErrors(
				model.ErrNoRows,
				model.ErrInvalidParameter,
				model.ErrNullParameter,
				context.Canceled,
			),
		)

		return nil
	}
}

func WithDatabase(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		if d.infra.connection != nil {
			return nil
		}

		conn, err := database.Open(ctx, d.config.Database)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}

		d.infra.connection = conn
		d.onShutdown("database", conn.Close)

		d.infra.logger.Debug().
			Str("dialect", conn.Dialect.String()).
			Msg("database connected")

		return nil
	}
}

// WithConnection uses an already opened connection. Its lifetime stays
// with the caller.
func WithConnection(conn *database.Connection) DependencyOption {
	return func(d *dependencies) error {
		d.infra.connection = conn

		return nil
	}
}

func WithDirector() DependencyOption {
	return func(d *dependencies) error {
		d.director = database.NewDirector(
			database.WithLogger(d.infra.logger),
			database.WithPrimaryKey(d.config.Query.PrimaryKey),
		)

		return nil
	}
}

func WithQueryContext() DependencyOption {
	return func(d *dependencies) error {
		conn := d.infra.connection

		executor := executors.Decorate(
			conn.Executor,
			conn.Dialect,
			d.infra.logger,
			d.infra.metricsClient,
			d.infra.tracerProvider,
			d.infra.breaker,
		)

		dbContext, err := d.director.Resolve(conn.Dialect, executor)
		if err != nil {
			return fmt.Errorf("resolving %s query context: %w", conn.Dialect, err)
		}

		d.dbContext = dbContext

		return nil
	}
}

func WithTransactionsRepository() DependencyOption {
	return func(d *dependencies) error {
		d.repos.transactions = repos.NewTransactionsRepository(
			d.dbContext,
			d.infra.logger,
			repos.WithDefaultPageSize(d.config.Query.DefaultPageSize),
		)

		return nil
	}
}
