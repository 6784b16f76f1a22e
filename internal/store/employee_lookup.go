package store

import (
	"context"
	"fmt"
	"time"

	"github.com/cassiomorais/txviewer/internal/domain/employee"
	domainErrors "github.com/cassiomorais/txviewer/internal/domain/errors"
	"github.com/cassiomorais/txviewer/internal/domain/transaction"
	"github.com/cassiomorais/txviewer/internal/infrastructure/observability"
)

// EmployeeTransactionLookup holds the full transaction list of one employee.
type EmployeeTransactionLookup struct {
	tracker
	source     LookupSource
	data       []transaction.Transaction
	employeeID string
}

func NewEmployeeTransactionLookup(source LookupSource, opts ...Option) *EmployeeTransactionLookup {
	s := &EmployeeTransactionLookup{source: source}
	s.init("employee_lookup", opts)
	return s
}

// FetchByID replaces the stored list with the transactions of employeeID.
// A newer call supersedes one still in flight: only the latest response is kept.
func (l *EmployeeTransactionLookup) FetchByID(ctx context.Context, employeeID string) error {
	if employee.IsSentinelID(employeeID) {
		return domainErrors.ErrInvalidSelection
	}

	l.mu.Lock()
	seq := l.begin()
	l.mu.Unlock()

	start := time.Now()
	txns, err := l.source.TransactionsByEmployee(ctx, employeeID)
	l.observe(start)

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.latest(seq) {
		l.discard(seq)
		return nil
	}
	l.loading = false
	if err != nil {
		l.record(observability.ResultError)
		return fmt.Errorf("fetch transactions of employee %s: %w", employeeID, err)
	}

	if txns == nil {
		txns = []transaction.Transaction{}
	}
	l.data = txns
	l.employeeID = employeeID
	l.valid = true
	l.record(observability.ResultOK)
	l.logger.Debug().Str("employee_id", employeeID).Int("transactions", len(txns)).Msg("Employee transactions loaded")
	return nil
}

func (l *EmployeeTransactionLookup) InvalidateData() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reset()
	l.data = nil
	l.employeeID = ""
}

func (l *EmployeeTransactionLookup) Snapshot() Snapshot[[]transaction.Transaction] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot[[]transaction.Transaction]{Data: l.data, Valid: l.valid, Loading: l.loading}
}

// EmployeeID returns the employee whose transactions are held, or "" when none are.
func (l *EmployeeTransactionLookup) EmployeeID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.employeeID
}
