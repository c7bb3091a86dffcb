// Package noop provides a metrics client that drops every measurement.
package noop

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

type MetricsClient struct{}

func NewMetricsClient() MetricsClient {
	return MetricsClient{}
}

func (c MetricsClient) Inc(context.Context, string, int64, ...attribute.KeyValue) {}

func (c MetricsClient) Observe(context.Context, string, float64, ...attribute.KeyValue) {}

func (c MetricsClient) Shutdown(context.Context) error {
	return nil
}
