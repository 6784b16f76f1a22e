package gateway

import (
	"errors"
	"time"

	domainErrors "github.com/cassiomorais/txviewer/internal/domain/errors"
	"github.com/cassiomorais/txviewer/internal/infrastructure/observability"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// BreakerSettings configures every endpoint breaker.
type BreakerSettings struct {
	// ConsecutiveFailures trips the breaker open.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

// Breakers holds one circuit breaker per upstream endpoint.
type Breakers struct {
	breakers map[string]*gobreaker.CircuitBreaker[struct{}]
	metrics  *observability.Metrics
	logger   zerolog.Logger
}

func NewBreakers(settings BreakerSettings, logger zerolog.Logger, metrics *observability.Metrics) *Breakers {
	b := &Breakers{
		breakers: make(map[string]*gobreaker.CircuitBreaker[struct{}]),
		metrics:  metrics,
		logger:   logger,
	}
	for _, name := range []string{EndpointEmployees, EndpointTransactions, EndpointEmployeeTransactions} {
		b.register(name, settings)
	}
	return b
}

func (b *Breakers) register(name string, settings BreakerSettings) {
	threshold := settings.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}
	b.breakers[name] = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// A missing employee is an answer, not an outage.
			return err == nil || errors.Is(err, domainErrors.ErrEmployeeNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
			if b.metrics != nil {
				b.metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			}
		},
	})
}

// Execute runs fn through the endpoint's breaker. Rejections by an open
// breaker are reported as upstream failures.
func (b *Breakers) Execute(endpoint string, fn func() error) error {
	cb, ok := b.breakers[endpoint]
	if !ok {
		return fn()
	}

	_, err := cb.Execute(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		b.record(endpoint, "rejected")
		return domainErrors.NewUpstreamError(endpoint, 0, err)
	}
	if err != nil {
		b.record(endpoint, "failure")
		return err
	}
	b.record(endpoint, "success")
	return nil
}

// State returns the current state of the endpoint's breaker.
func (b *Breakers) State(endpoint string) gobreaker.State {
	cb, ok := b.breakers[endpoint]
	if !ok {
		return gobreaker.StateClosed
	}
	return cb.State()
}

func (b *Breakers) record(endpoint, result string) {
	if b.metrics == nil {
		return
	}
	b.metrics.CircuitBreakerRequests.WithLabelValues(endpoint, result).Inc()
}
