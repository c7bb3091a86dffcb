package decorator

import (
	"context"
	"time"

	"github.com/architeacher/household/pkg/metrics"
	"go.opentelemetry.io/otel/attribute"
)

const (
	MetricQueries       = "queries.total"
	MetricQueryFailures = "queries.failures"
	MetricQueryDuration = "queries.duration"
)

type queryMetricsDecorator[Q Query, R Result] struct {
	base   QueryHandler[Q, R]
	name   string
	client metrics.Client
}

func (d queryMetricsDecorator[Q, R]) Execute(ctx context.Context, query Q) (R, error) {
	attrs := append([]attribute.KeyValue{
		attribute.String("action", actionName(d.name, query)),
	}, attributesOf(query)...)

	start := time.Now()
	result, err := d.base.Execute(ctx, query)
	elapsed := float64(time.Since(start)) / float64(time.Millisecond)

	d.client.Inc(ctx, MetricQueries, 1, attrs...)
	d.client.Observe(ctx, MetricQueryDuration, elapsed, attrs...)

	if err != nil {
		d.client.Inc(ctx, MetricQueryFailures, 1, attrs...)
	}

	return result, err
}

// QueryMetricDescriptors lists the instruments the metrics decorator feeds.
var QueryMetricDescriptors = map[string]metrics.Descriptor{
	MetricQueries: {
		Kind:        metrics.KindCounter,
		Description: "Number of executed queries",
		Unit:        "{query}",
	},
	MetricQueryFailures: {
		Kind:        metrics.KindCounter,
		Description: "Number of failed queries",
		Unit:        "{query}",
	},
	MetricQueryDuration: {
		Kind:        metrics.KindHistogram,
		Description: "Query latency",
		Unit:        "ms",
	},
}
