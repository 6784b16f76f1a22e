package testutil

import (
	"context"
	"sync"

	"github.com/cassiomorais/txviewer/internal/domain/employee"
	domainErrors "github.com/cassiomorais/txviewer/internal/domain/errors"
	"github.com/cassiomorais/txviewer/internal/domain/transaction"
)

// --- Upstream Mock ---

// MockGateway is a mock implementation of gateway.API that records every call.
type MockGateway struct {
	mu sync.Mutex

	EmployeesFunc              func(ctx context.Context) ([]employee.Employee, error)
	TransactionsFunc           func(ctx context.Context, pageToken *string) (transaction.Page, error)
	TransactionsByEmployeeFunc func(ctx context.Context, employeeID string) ([]transaction.Transaction, error)

	employeeCalls int
	pageTokens    []*string
	lookupIDs     []string
}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (m *MockGateway) Employees(ctx context.Context) ([]employee.Employee, error) {
	m.mu.Lock()
	m.employeeCalls++
	m.mu.Unlock()
	if m.EmployeesFunc != nil {
		return m.EmployeesFunc(ctx)
	}
	return []employee.Employee{}, nil
}

func (m *MockGateway) Transactions(ctx context.Context, pageToken *string) (transaction.Page, error) {
	m.mu.Lock()
	m.pageTokens = append(m.pageTokens, pageToken)
	m.mu.Unlock()
	if m.TransactionsFunc != nil {
		return m.TransactionsFunc(ctx, pageToken)
	}
	return transaction.Page{Items: []transaction.Transaction{}}, nil
}

func (m *MockGateway) TransactionsByEmployee(ctx context.Context, employeeID string) ([]transaction.Transaction, error) {
	m.mu.Lock()
	m.lookupIDs = append(m.lookupIDs, employeeID)
	m.mu.Unlock()
	if m.TransactionsByEmployeeFunc != nil {
		return m.TransactionsByEmployeeFunc(ctx, employeeID)
	}
	return []transaction.Transaction{}, nil
}

// EmployeeCalls returns how many times the roster was requested.
func (m *MockGateway) EmployeeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.employeeCalls
}

// PageTokens returns the token of every feed request, in call order.
func (m *MockGateway) PageTokens() []*string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*string(nil), m.pageTokens...)
}

// LookupIDs returns the employee id of every lookup request, in call order.
func (m *MockGateway) LookupIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lookupIDs...)
}

// TotalCalls returns the number of upstream calls of any kind.
func (m *MockGateway) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.employeeCalls + len(m.pageTokens) + len(m.lookupIDs)
}

// ServePages returns a TransactionsFunc that serves pages in order: the first
// page for a nil token, then each following page for the previous page's token.
func ServePages(pages ...transaction.Page) func(context.Context, *string) (transaction.Page, error) {
	byToken := make(map[string]transaction.Page, len(pages))
	for i := 1; i < len(pages); i++ {
		if prev := pages[i-1].NextPageToken; prev != nil {
			byToken[*prev] = pages[i]
		}
	}
	return func(_ context.Context, token *string) (transaction.Page, error) {
		if token == nil {
			if len(pages) == 0 {
				return transaction.Page{}, nil
			}
			return pages[0], nil
		}
		page, ok := byToken[*token]
		if !ok {
			return transaction.Page{}, domainErrors.NewUpstreamError("transactions", 400, nil)
		}
		return page, nil
	}
}

// --- Gate ---

// Gate blocks a mocked upstream call until the test releases it.
type Gate struct {
	entered chan struct{}
	release chan struct{}
}

func NewGate() *Gate {
	return &Gate{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

// Wait is called from the mocked call. It signals entry, then blocks until
// Release or ctx is done.
func (g *Gate) Wait(ctx context.Context) error {
	select {
	case g.entered <- struct{}{}:
	default:
	}
	select {
	case <-g.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Entered returns a channel that receives once the mocked call has started.
func (g *Gate) Entered() <-chan struct{} {
	return g.entered
}

// Release unblocks the mocked call.
func (g *Gate) Release() {
	close(g.release)
}
