package decorator

import (
	"context"
	"fmt"
	"strings"

	"github.com/architeacher/household/pkg/circuitbreaker"
	"github.com/architeacher/household/pkg/logger"
	"github.com/architeacher/household/pkg/metrics"
	"go.opentelemetry.io/otel/attribute"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	Query  any
	Result any

	QueryHandler[Q Query, R Result] interface {
		Execute(ctx context.Context, query Q) (R, error)
	}

	QueryHandlerFunc[Q Query, R Result] func(ctx context.Context, query Q) (R, error)

	// Named queries choose the action name used in logs, metrics and spans.
	Named interface {
		ActionName() string
	}

	// Attributed queries contribute attributes to metrics and spans.
	Attributed interface {
		Attributes() []attribute.KeyValue
	}
)

func (f QueryHandlerFunc[Q, R]) Execute(ctx context.Context, query Q) (R, error) {
	return f(ctx, query)
}

// ApplyQueryDecorators wraps handler so every call is logged, counted,
// timed and traced. A non-nil breaker guards the innermost call.
func ApplyQueryDecorators[Q Query, R Result](
	handler QueryHandler[Q, R],
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
	breaker *circuitbreaker.CircuitBreaker[R],
) QueryHandler[Q, R] {
	name := generateActionName(handler)

	if breaker != nil {
		handler = queryBreakerDecorator[Q, R]{base: handler, breaker: breaker}
	}

	return queryLoggingDecorator[Q, R]{
		base: queryMetricsDecorator[Q, R]{
			base: queryTracingDecorator[Q, R]{
				base:           handler,
				name:           name,
				tracerProvider: tracerProvider,
			},
			name:   name,
			client: metricsClient,
		},
		name:   name,
		logger: log,
	}
}

func actionName(fallback string, query any) string {
	if named, ok := query.(Named); ok && named.ActionName() != "" {
		return named.ActionName()
	}

	return fallback
}

func attributesOf(query any) []attribute.KeyValue {
	if attributed, ok := query.(Attributed); ok {
		return attributed.Attributes()
	}

	return nil
}

func generateActionName(handler any) string {
	name := fmt.Sprintf("%T", handler)

	if index := strings.Index(name, "["); index >= 0 {
		name = name[:index]
	}

	return name[strings.LastIndex(name, ".")+1:]
}
