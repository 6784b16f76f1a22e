package gateway

import (
	"errors"
	"testing"
	"time"

	domainErrors "github.com/cassiomorais/txviewer/internal/domain/errors"
	"github.com/cassiomorais/txviewer/internal/infrastructure/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakers_RegistersEveryEndpoint(t *testing.T) {
	b := NewBreakers(BreakerSettings{}, zerolog.Nop(), nil)

	assert.Len(t, b.breakers, 3)
	assert.Contains(t, b.breakers, EndpointEmployees)
	assert.Contains(t, b.breakers, EndpointTransactions)
	assert.Contains(t, b.breakers, EndpointEmployeeTransactions)
}

func TestBreakers_OpensAfterConsecutiveFailures(t *testing.T) {
	metrics := observability.NewMetrics("test", prometheus.NewRegistry())
	b := NewBreakers(BreakerSettings{ConsecutiveFailures: 2, OpenTimeout: time.Minute}, zerolog.Nop(), metrics)
	boom := domainErrors.NewUpstreamError(EndpointTransactions, 503, nil)

	for i := 0; i < 2; i++ {
		err := b.Execute(EndpointTransactions, func() error { return boom })
		require.ErrorIs(t, err, boom)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State(EndpointTransactions))

	called := false
	err := b.Execute(EndpointTransactions, func() error {
		called = true
		return nil
	})
	assert.False(t, called)
	assert.ErrorIs(t, err, domainErrors.ErrNetworkFailure)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)

	assert.Equal(t, float64(gobreaker.StateOpen),
		testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues(EndpointTransactions)))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues(EndpointTransactions, "rejected")))
}

func TestBreakers_NotFoundDoesNotTrip(t *testing.T) {
	b := NewBreakers(BreakerSettings{ConsecutiveFailures: 1, OpenTimeout: time.Minute}, zerolog.Nop(), nil)
	notFound := domainErrors.NewUpstreamError(EndpointEmployeeTransactions, 404, domainErrors.ErrEmployeeNotFound)

	for i := 0; i < 3; i++ {
		err := b.Execute(EndpointEmployeeTransactions, func() error { return notFound })
		assert.ErrorIs(t, err, domainErrors.ErrEmployeeNotFound)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State(EndpointEmployeeTransactions))
}

func TestBreakers_EndpointsAreIndependent(t *testing.T) {
	b := NewBreakers(BreakerSettings{ConsecutiveFailures: 1, OpenTimeout: time.Minute}, zerolog.Nop(), nil)

	_ = b.Execute(EndpointEmployees, func() error { return errors.New("down") })

	assert.Equal(t, gobreaker.StateOpen, b.State(EndpointEmployees))
	assert.Equal(t, gobreaker.StateClosed, b.State(EndpointTransactions))
	assert.NoError(t, b.Execute(EndpointTransactions, func() error { return nil }))
}

func TestBreakers_UnknownEndpointRunsDirectly(t *testing.T) {
	b := NewBreakers(BreakerSettings{}, zerolog.Nop(), nil)

	called := false
	err := b.Execute("unknown", func() error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, gobreaker.StateClosed, b.State("unknown"))
}
