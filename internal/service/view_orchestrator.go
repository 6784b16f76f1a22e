package service

import (
	"context"
	"errors"
	"sync"

	"github.com/cassiomorais/txviewer/internal/domain/employee"
	domainErrors "github.com/cassiomorais/txviewer/internal/domain/errors"
	"github.com/cassiomorais/txviewer/internal/domain/transaction"
	"github.com/cassiomorais/txviewer/internal/infrastructure/observability"
	"github.com/cassiomorais/txviewer/internal/store"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/cassiomorais/txviewer/internal/service"

// Stores groups the three stores the view is built from.
type Stores struct {
	Employees *store.EmployeeDirectory
	Feed      *store.PagedTransactionFeed
	Lookup    *store.EmployeeTransactionLookup
}

// ViewOrchestrator decides which store is shown and sequences their fetches
// in response to user actions. It mutates stores only through their public
// operations.
type ViewOrchestrator struct {
	employees *store.EmployeeDirectory
	feed      *store.PagedTransactionFeed
	lookup    *store.EmployeeTransactionLookup
	logger    zerolog.Logger
	metrics   *observability.Metrics
	tracer    trace.Tracer

	mu           sync.Mutex
	showViewMore bool
	inFlight     int
	// generation advances on every action that switches the view mode, so a
	// slower earlier action cannot overwrite the view-more flag of a newer one.
	generation uint64
	// shown is the last list a store produced. It stays on screen while a
	// failed switch leaves both stores empty.
	shown         []transaction.Transaction
	shownEmployee string
}

// NewViewOrchestrator creates a new ViewOrchestrator. metrics may be nil.
func NewViewOrchestrator(stores Stores, logger zerolog.Logger, metrics *observability.Metrics) *ViewOrchestrator {
	return &ViewOrchestrator{
		employees:    stores.Employees,
		feed:         stores.Feed,
		lookup:       stores.Lookup,
		logger:       observability.Component(logger, "view"),
		metrics:      metrics,
		tracer:       otel.Tracer(tracerName),
		showViewMore: true,
	}
}

// Init performs the initial load when the roster has never been fetched and
// no fetch is running.
func (o *ViewOrchestrator) Init(ctx context.Context) error {
	snap := o.employees.Snapshot()
	if snap.Valid || snap.Loading {
		return nil
	}
	return o.LoadAllTransactions(ctx)
}

// LoadAllTransactions switches to the all-transactions view: it drops the
// employee filter, then fetches the roster and the next feed page together.
func (o *ViewOrchestrator) LoadAllTransactions(ctx context.Context) error {
	gen := o.nextGeneration()
	return o.run(ctx, "load_all", func(ctx context.Context) error {
		o.lookup.InvalidateData()

		var (
			g                  errgroup.Group
			rosterErr, feedErr error
			hasMore            bool
		)
		g.Go(func() error {
			rosterErr = o.employees.FetchAll(ctx)
			return rosterErr
		})
		g.Go(func() error {
			hasMore, feedErr = o.feed.FetchAll(ctx)
			return feedErr
		})
		// Both errors are kept; Wait only reports the first.
		_ = g.Wait()

		if !errors.Is(feedErr, domainErrors.ErrConcurrentFetchRejected) {
			o.setViewMore(gen, hasMore)
		}
		return errors.Join(rosterErr, feedErr)
	})
}

// LoadTransactionsByEmployee switches to the single-employee view. The
// accumulated feed pages are dropped, so returning to all transactions
// starts again from the first page.
func (o *ViewOrchestrator) LoadTransactionsByEmployee(ctx context.Context, employeeID string) error {
	if employee.IsSentinelID(employeeID) {
		o.logger.Warn().Msg("Employee lookup requested for the empty selection")
		return domainErrors.ErrInvalidSelection
	}

	gen := o.nextGeneration()
	return o.run(ctx, "load_by_employee", func(ctx context.Context) error {
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("employee.id", employeeID))

		o.feed.InvalidateData()
		err := o.lookup.FetchByID(ctx, employeeID)
		// The filtered list is complete; there is nothing more to page.
		o.setViewMore(gen, false)
		return err
	})
}

// SelectEmployee handles a change of the employee picker. A nil selection is
// ignored; the empty selection restores the all-transactions view from page one.
func (o *ViewOrchestrator) SelectEmployee(ctx context.Context, selected *employee.Employee) error {
	if selected == nil {
		return nil
	}
	if selected.IsEmpty() {
		o.feed.InvalidateData()
		return o.LoadAllTransactions(ctx)
	}
	return o.LoadTransactionsByEmployee(ctx, selected.ID)
}

// HandleViewMore fetches one more page of the all-transactions feed, or hides
// the control once the feed reports it has no further pages.
func (o *ViewOrchestrator) HandleViewMore(ctx context.Context) error {
	gen := o.currentGeneration()
	return o.run(ctx, "view_more", func(ctx context.Context) error {
		if l := o.lookup.Snapshot(); l.Valid || l.Loading {
			return domainErrors.ErrFilterActive
		}

		if feed := o.feed.Snapshot(); feed.Valid && feed.Data.Exhausted() {
			o.setViewMore(gen, false)
			return nil
		}

		hasMore, err := o.feed.FetchAll(ctx)
		if errors.Is(err, domainErrors.ErrConcurrentFetchRejected) {
			return err
		}
		o.setViewMore(gen, hasMore)
		return err
	})
}

// Loading reports whether any action still has fetches in flight.
func (o *ViewOrchestrator) Loading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inFlight > 0
}

// ShowViewMore reports whether the view-more control should be shown.
func (o *ViewOrchestrator) ShowViewMore() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.showViewMore
}

func (o *ViewOrchestrator) run(ctx context.Context, action string, fn func(ctx context.Context) error) error {
	ctx, span := o.tracer.Start(ctx, "view."+action)
	defer span.End()

	o.begin()
	defer o.end()

	err := fn(ctx)
	o.remember()

	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		event := o.logger.Warn()
		if errors.Is(err, domainErrors.ErrConcurrentFetchRejected) {
			event = o.logger.Error()
		}
		event.Err(err).Str("action", action).Msg("View action failed")
	} else {
		o.logger.Info().Str("action", action).Msg("View action completed")
	}
	if o.metrics != nil {
		o.metrics.ViewActionsTotal.WithLabelValues(action, status).Inc()
	}
	return err
}

func (o *ViewOrchestrator) begin() {
	o.mu.Lock()
	o.inFlight++
	o.mu.Unlock()
	if o.metrics != nil {
		o.metrics.ViewActionsInFlight.Inc()
	}
}

func (o *ViewOrchestrator) end() {
	o.mu.Lock()
	o.inFlight--
	o.mu.Unlock()
	if o.metrics != nil {
		o.metrics.ViewActionsInFlight.Dec()
	}
}

// remember records the list currently produced by the stores, if any.
func (o *ViewOrchestrator) remember() {
	lookup := o.lookup.Snapshot()
	feed := o.feed.Snapshot()
	if !lookup.Valid && !feed.Valid {
		return
	}
	employeeID := ""
	if lookup.Valid {
		employeeID = o.lookup.EmployeeID()
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.shown = ActiveTransactions(lookup, feed)
	o.shownEmployee = employeeID
}

func (o *ViewOrchestrator) lastShown() ([]transaction.Transaction, string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.shown, o.shownEmployee
}

func (o *ViewOrchestrator) nextGeneration() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.generation++
	return o.generation
}

func (o *ViewOrchestrator) currentGeneration() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.generation
}

func (o *ViewOrchestrator) setViewMore(gen uint64, visible bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		return
	}
	o.showViewMore = visible
}

// ActiveTransactions returns the list to display: the employee lookup when it
// holds data, otherwise the accumulated feed, otherwise nothing. The two
// sources are never combined.
func ActiveTransactions(lookup store.Snapshot[[]transaction.Transaction], feed store.Snapshot[transaction.Page]) []transaction.Transaction {
	if lookup.Valid {
		return lookup.Data
	}
	if feed.Valid {
		return feed.Data.Items
	}
	return []transaction.Transaction{}
}
