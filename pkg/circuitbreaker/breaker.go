package circuitbreaker

import (
	"errors"

	"github.com/sony/gobreaker/v2"
)

type (
	// CircuitBreaker guards calls to a database so that a failing server
	// is given time to recover instead of receiving every query.
	CircuitBreaker[T any] struct {
		cb *gobreaker.CircuitBreaker[T]
	}

	Option func(*gobreaker.Settings)
)

// WithStateChangeHook reports every transition, typically to a logger.
func WithStateChangeHook(hook func(name, from, to string)) Option {
	return func(s *gobreaker.Settings) {
		s.OnStateChange = func(name string, from, to gobreaker.State) {
			hook(name, from.String(), to.String())
		}
	}
}

// WithIgnoredErrors keeps errors matching any of targets from counting as
// failures. Caller mistakes such as invalid filters should not trip it.
func WithIgnoredErrors(targets ...error) Option {
	return func(s *gobreaker.Settings) {
		s.IsSuccessful = func(err error) bool {
			if err == nil {
				return true
			}

			for _, target := range targets {
				if errors.Is(err, target) {
					return true
				}
			}

			return false
		}
	}
}

// New returns nil when cfg is disabled; Execute then calls through.
func New[T any](cfg Config, opts ...Option) *CircuitBreaker[T] {
	if !cfg.Enabled {
		return nil
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: uint32(cfg.MaxRequests),
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(cfg.FailureThreshold)
		},
	}

	for _, opt := range opts {
		opt(&settings)
	}

	return &CircuitBreaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

func (c *CircuitBreaker[T]) Name() string {
	return c.cb.Name()
}

// State is one of "closed", "half-open" or "open".
func (c *CircuitBreaker[T]) State() string {
	return c.cb.State().String()
}

// Execute runs fn through cb. It returns ErrCircuitOpen while the breaker
// is open and ErrTooManyRequests once the half-open probe budget is spent.
func Execute[T any](cb *CircuitBreaker[T], fn func() (T, error)) (T, error) {
	if cb == nil {
		return fn()
	}

	result, err := cb.cb.Execute(fn)

	switch {
	case err == nil:
		return result, nil
	case errors.Is(err, gobreaker.ErrOpenState):
		var zero T

		return zero, ErrCircuitOpen
	case errors.Is(err, gobreaker.ErrTooManyRequests):
		var zero T

		return zero, ErrTooManyRequests
	default:
		return result, err
	}
}
