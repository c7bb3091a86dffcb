package decorator

import (
	"context"

	"github.com/architeacher/household/pkg/circuitbreaker"
)

type queryBreakerDecorator[Q Query, R Result] struct {
	base    QueryHandler[Q, R]
	breaker *circuitbreaker.CircuitBreaker[R]
}

func (d queryBreakerDecorator[Q, R]) Execute(ctx context.Context, query Q) (R, error) {
	return circuitbreaker.Execute(d.breaker, func() (R, error) {
		return d.base.Execute(ctx, query)
	})
}
