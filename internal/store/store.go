// Package store holds the three client-side stores behind the transactions
// view: the employee roster, the paged all-transactions feed and the
// single-employee lookup.
//
// Every store tracks a request sequence number. A response is applied only if
// its request is still the latest one issued for that store; invalidation
// also advances the sequence, so a late response can never bring back data
// that was invalidated while it was in flight.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/cassiomorais/txviewer/internal/domain/employee"
	"github.com/cassiomorais/txviewer/internal/domain/transaction"
	"github.com/cassiomorais/txviewer/internal/infrastructure/observability"
	"github.com/rs/zerolog"
)

// Snapshot is a consistent copy of a store's state. Valid is false when the
// store was never fetched or has been invalidated, which is different from a
// successful empty result.
type Snapshot[D any] struct {
	Data    D
	Valid   bool
	Loading bool
}

type RosterSource interface {
	Employees(ctx context.Context) ([]employee.Employee, error)
}

type FeedSource interface {
	Transactions(ctx context.Context, pageToken *string) (transaction.Page, error)
}

type LookupSource interface {
	TransactionsByEmployee(ctx context.Context, employeeID string) ([]transaction.Transaction, error)
}

type Option func(*tracker)

func WithLogger(l zerolog.Logger) Option {
	return func(t *tracker) { t.logger = l }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(t *tracker) { t.metrics = m }
}

// tracker is the bookkeeping shared by all stores. Fields below mu are guarded by it.
type tracker struct {
	name    string
	logger  zerolog.Logger
	metrics *observability.Metrics

	mu      sync.Mutex
	seq     uint64
	loading bool
	valid   bool
}

func (t *tracker) init(name string, opts []Option) {
	t.name = name
	t.logger = zerolog.Nop()
	for _, o := range opts {
		o(t)
	}
	t.logger = observability.Component(t.logger, name)
}

// begin issues a new request sequence number. Caller holds mu.
func (t *tracker) begin() uint64 {
	t.seq++
	t.loading = true
	return t.seq
}

// latest reports whether seq is still the newest request. Caller holds mu.
func (t *tracker) latest(seq uint64) bool {
	return seq == t.seq
}

// reset drops the data and orphans any in-flight request. Caller holds mu.
func (t *tracker) reset() {
	t.seq++
	t.valid = false
	t.loading = false
	if t.metrics != nil {
		t.metrics.StoreInvalidations.WithLabelValues(t.name).Inc()
	}
}

func (t *tracker) record(result string) {
	if t.metrics == nil {
		return
	}
	t.metrics.StoreFetchesTotal.WithLabelValues(t.name, result).Inc()
}

func (t *tracker) observe(start time.Time) {
	if t.metrics == nil {
		return
	}
	t.metrics.StoreFetchDuration.WithLabelValues(t.name).Observe(time.Since(start).Seconds())
}

// discard logs and counts a response that lost to a newer request.
func (t *tracker) discard(seq uint64) {
	t.logger.Debug().Uint64("seq", seq).Uint64("latest", t.seq).Msg("Discarding stale response")
	t.record(observability.ResultStale)
}
