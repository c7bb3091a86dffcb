package infrastructure_test

import (
	"context"
	"testing"

	"github.com/architeacher/household/internal/config"
	"github.com/architeacher/household/internal/infrastructure"
	"github.com/architeacher/household/pkg/decorator"
	"github.com/architeacher/household/pkg/metrics/otelmetrics"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"
)

func testConfig() (config.App, config.Telemetry) {
	return config.App{
			ServiceName: "household",
			Env:         config.Environment{Name: "development"},
		}, config.Telemetry{
			ServiceName:    "household-test",
			ServiceVersion: "0.0.1",
		}
}

func TestNewMeterProvider_CarriesServiceResource(t *testing.T) {
	ctx := context.Background()
	app, telemetry := testConfig()
	reader := sdkmetric.NewManualReader()

	provider, err := infrastructure.NewMeterProvider(app, telemetry, reader)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = provider.Shutdown(ctx)
	})

	client, err := otelmetrics.New(provider, "household-test", decorator.QueryMetricDescriptors)
	require.NoError(t, err)

	client.Inc(ctx, decorator.MetricQueries, 1)

	var collected metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &collected))

	name, ok := collected.Resource.Set().Value(semconv.ServiceNameKey)
	require.True(t, ok)
	require.Equal(t, "household-test", name.AsString())

	env, ok := collected.Resource.Set().Value("env")
	require.True(t, ok)
	require.Equal(t, "development", env.AsString())

	var names []string
	for _, scope := range collected.ScopeMetrics {
		for _, m := range scope.Metrics {
			names = append(names, m.Name)
		}
	}

	require.Contains(t, names, decorator.MetricQueries)
}

func TestNewNoopTracerProvider(t *testing.T) {
	t.Parallel()

	tp := infrastructure.NewNoopTracerProvider()

	_, span := tp.Tracer("household").Start(context.Background(), "noop")
	defer span.End()

	require.False(t, span.SpanContext().IsValid())
}
