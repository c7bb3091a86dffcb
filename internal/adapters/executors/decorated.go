package executors

import (
	"context"

	"github.com/architeacher/household/internal/domain/model"
	"github.com/architeacher/household/internal/ports"
	"github.com/architeacher/household/pkg/circuitbreaker"
	"github.com/architeacher/household/pkg/decorator"
	"github.com/architeacher/household/pkg/logger"
	"github.com/architeacher/household/pkg/metrics"
	"go.opentelemetry.io/otel/attribute"
	otelTrace "go.opentelemetry.io/otel/trace"
)

var _ ports.Executor = (*Decorated)(nil)

type (
	// Call is one statement on its way to the database.
	Call struct {
		Statement ports.Statement
		Dialect   model.Dialect
		Dst       any
	}

	callHandler struct {
		executor ports.Executor
	}

	// Decorated observes every statement run by the wrapped executor.
	Decorated struct {
		dialect model.Dialect
		handler decorator.QueryHandler[Call, struct{}]
	}
)

func (c Call) ActionName() string {
	return c.Statement.Method
}

func (c Call) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("db.system", c.Dialect.String()),
		attribute.String("db.table", c.Statement.Table),
	}
}

func (h callHandler) Execute(ctx context.Context, call Call) (struct{}, error) {
	return struct{}{}, h.executor.Query(ctx, call.Statement, call.Dst)
}

// Decorate adds logging, metrics, tracing and an optional circuit breaker
// around executor.
func Decorate(
	executor ports.Executor,
	dialect model.Dialect,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
	breaker *circuitbreaker.CircuitBreaker[struct{}],
) *Decorated {
	return &Decorated{
		dialect: dialect,
		handler: decorator.ApplyQueryDecorators[Call, struct{}](
			callHandler{executor: executor},
			log.Component("executor"),
			metricsClient,
			tracerProvider,
			breaker,
		),
	}
}

func (d *Decorated) Query(ctx context.Context, stmt ports.Statement, dst any) error {
	_, err := d.handler.Execute(ctx, Call{Statement: stmt, Dialect: d.dialect, Dst: dst})

	return err
}
