// Package otelmetrics implements metrics.Client on the OpenTelemetry SDK.
package otelmetrics

import (
	"context"
	"fmt"

	"github.com/architeacher/household/pkg/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

var _ metrics.Client = (*Client)(nil)

type Client struct {
	provider   *sdkmetric.MeterProvider
	counters   map[string]metric.Int64Counter
	histograms map[string]metric.Float64Histogram
}

// New registers one instrument per descriptor on a meter named scope.
func New(provider *sdkmetric.MeterProvider, scope string, descriptors map[string]metrics.Descriptor) (*Client, error) {
	meter := provider.Meter(scope)

	client := &Client{
		provider:   provider,
		counters:   make(map[string]metric.Int64Counter),
		histograms: make(map[string]metric.Float64Histogram),
	}

	for name, descriptor := range descriptors {
		switch descriptor.Kind {
		case metrics.KindCounter:
			counter, err := metrics.RegisterInt64Counter(meter, descriptor, name)
			if err != nil {
				return nil, err
			}

			client.counters[name] = counter
		case metrics.KindHistogram:
			histogram, err := metrics.RegisterFloat64Histogram(meter, descriptor, name)
			if err != nil {
				return nil, err
			}

			client.histograms[name] = histogram
		default:
			return nil, fmt.Errorf("unknown instrument kind %d for %s", descriptor.Kind, name)
		}
	}

	return client, nil
}

func (c *Client) Inc(ctx context.Context, key string, value int64, attributes ...attribute.KeyValue) {
	if counter, ok := c.counters[key]; ok {
		counter.Add(ctx, value, metric.WithAttributes(attributes...))
	}
}

func (c *Client) Observe(ctx context.Context, key string, value float64, attributes ...attribute.KeyValue) {
	if histogram, ok := c.histograms[key]; ok {
		histogram.Record(ctx, value, metric.WithAttributes(attributes...))
	}
}

func (c *Client) Shutdown(ctx context.Context) error {
	return c.provider.Shutdown(ctx)
}
