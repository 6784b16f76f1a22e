package store

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cassiomorais/txviewer/internal/domain/employee"
	"github.com/cassiomorais/txviewer/internal/infrastructure/observability"
	"golang.org/x/sync/singleflight"
)

const (
	rosterKey = "roster"
	// rosterFetchTimeout bounds a shared fetch, which outlives the caller that started it.
	rosterFetchTimeout = 30 * time.Second
)

// EmployeeDirectory holds the full employee roster.
type EmployeeDirectory struct {
	tracker
	source RosterSource
	group  singleflight.Group
	data   []employee.Employee
	// callers counts FetchAll calls currently waiting on a result.
	callers atomic.Int32
}

func NewEmployeeDirectory(source RosterSource, opts ...Option) *EmployeeDirectory {
	s := &EmployeeDirectory{source: source}
	s.init("employee_directory", opts)
	return s
}

// FetchAll loads the whole roster. A call made while a fetch is already in
// flight waits for that fetch instead of issuing a second request. The shared
// fetch is detached from the caller that started it: cancelling ctx returns
// early for this caller only.
func (d *EmployeeDirectory) FetchAll(ctx context.Context) error {
	d.callers.Add(1)
	defer d.callers.Add(-1)

	ch := d.group.DoChan(rosterKey, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rosterFetchTimeout)
		defer cancel()
		return nil, d.fetch(fetchCtx)
	})

	select {
	case res := <-ch:
		if res.Shared {
			d.logger.Debug().Msg("Joined in-flight roster fetch")
		}
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *EmployeeDirectory) fetch(ctx context.Context) error {
	d.mu.Lock()
	seq := d.begin()
	d.mu.Unlock()

	start := time.Now()
	roster, err := d.source.Employees(ctx)
	d.observe(start)

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.latest(seq) {
		d.discard(seq)
		return nil
	}
	d.loading = false
	if err != nil {
		d.record(observability.ResultError)
		return fmt.Errorf("fetch employees: %w", err)
	}

	if roster == nil {
		roster = []employee.Employee{}
	}
	d.data = roster
	d.valid = true
	d.record(observability.ResultOK)
	d.logger.Debug().Int("employees", len(roster)).Msg("Roster loaded")
	return nil
}

// InvalidateData clears the roster without contacting the upstream.
func (d *EmployeeDirectory) InvalidateData() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reset()
	d.data = nil
	// A fetch started after this point must not join the orphaned one.
	d.group.Forget(rosterKey)
}

func (d *EmployeeDirectory) Snapshot() Snapshot[[]employee.Employee] {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Snapshot[[]employee.Employee]{Data: d.data, Valid: d.valid, Loading: d.loading}
}
