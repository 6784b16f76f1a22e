package gateway

import (
	"context"
	"encoding/base64"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cassiomorais/txviewer/internal/domain/employee"
	domainErrors "github.com/cassiomorais/txviewer/internal/domain/errors"
	"github.com/cassiomorais/txviewer/internal/domain/transaction"
	"github.com/google/uuid"
)

const tokenPrefix = "offset:"

// Fixture is an in-memory upstream serving a fixed roster and transaction set.
type Fixture struct {
	employees    []employee.Employee
	transactions []transaction.Transaction
	byEmployee   map[string][]transaction.Transaction

	pageSize    int
	latency     time.Duration
	failureRate float64 // 0.0 to 1.0

	mu  sync.Mutex
	rnd *rand.Rand
}

type FixtureOption func(*Fixture)

func WithPageSize(n int) FixtureOption {
	return func(f *Fixture) { f.pageSize = n }
}

func WithLatency(d time.Duration) FixtureOption {
	return func(f *Fixture) { f.latency = d }
}

func WithFailureRate(rate float64) FixtureOption {
	return func(f *Fixture) { f.failureRate = rate }
}

func NewFixture(employees []employee.Employee, transactions []transaction.Transaction, opts ...FixtureOption) *Fixture {
	f := &Fixture{
		employees:    employees,
		transactions: transactions,
		byEmployee:   make(map[string][]transaction.Transaction, len(employees)),
		pageSize:     5,
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, e := range employees {
		f.byEmployee[e.ID] = []transaction.Transaction{}
	}
	for _, t := range transactions {
		f.byEmployee[t.EmployeeID] = append(f.byEmployee[t.EmployeeID], t)
	}
	for _, o := range opts {
		o(f)
	}
	if f.pageSize <= 0 {
		f.pageSize = 5
	}
	return f
}

func (f *Fixture) Employees(ctx context.Context) ([]employee.Employee, error) {
	if err := f.simulate(ctx, EndpointEmployees); err != nil {
		return nil, err
	}
	out := make([]employee.Employee, len(f.employees))
	copy(out, f.employees)
	return out, nil
}

func (f *Fixture) Transactions(ctx context.Context, pageToken *string) (transaction.Page, error) {
	offset := 0
	if pageToken != nil {
		var err error
		if offset, err = DecodePageToken(*pageToken); err != nil {
			return transaction.Page{}, err
		}
	}
	if err := f.simulate(ctx, EndpointTransactions); err != nil {
		return transaction.Page{}, err
	}

	if offset > len(f.transactions) {
		offset = len(f.transactions)
	}
	end := min(offset+f.pageSize, len(f.transactions))

	page := transaction.Page{Items: make([]transaction.Transaction, end-offset)}
	copy(page.Items, f.transactions[offset:end])
	if end < len(f.transactions) {
		page.NextPageToken = transaction.Token(EncodePageToken(end))
	}
	return page, nil
}

func (f *Fixture) TransactionsByEmployee(ctx context.Context, employeeID string) ([]transaction.Transaction, error) {
	if employee.IsSentinelID(employeeID) {
		return nil, domainErrors.ErrInvalidSelection
	}
	if err := f.simulate(ctx, EndpointEmployeeTransactions); err != nil {
		return nil, err
	}
	txns, ok := f.byEmployee[employeeID]
	if !ok {
		return nil, domainErrors.NewUpstreamError(EndpointEmployeeTransactions, 404, domainErrors.ErrEmployeeNotFound)
	}
	out := make([]transaction.Transaction, len(txns))
	copy(out, txns)
	return out, nil
}

func (f *Fixture) simulate(ctx context.Context, endpoint string) error {
	if f.latency > 0 {
		select {
		case <-time.After(f.latency):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	fail := f.rnd.Float64() < f.failureRate
	f.mu.Unlock()
	if fail {
		return domainErrors.NewUpstreamError(endpoint, 503, fmt.Errorf("simulated %s failure", endpoint))
	}
	return nil
}

// EncodePageToken returns the opaque cursor for a feed offset.
func EncodePageToken(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(tokenPrefix + strconv.Itoa(offset)))
}

// DecodePageToken parses a cursor produced by EncodePageToken.
func DecodePageToken(token string) (int, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || !strings.HasPrefix(string(raw), tokenPrefix) {
		return 0, domainErrors.NewValidationError("page_token", "malformed page token")
	}
	offset, err := strconv.Atoi(strings.TrimPrefix(string(raw), tokenPrefix))
	if err != nil || offset < 0 {
		return 0, domainErrors.NewValidationError("page_token", "malformed page token")
	}
	return offset, nil
}

var (
	firstNames = []string{"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael", "Linda"}
	lastNames  = []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis"}
	merchants  = []string{"Social Media Ads Inc", "Cloud Hosting LLC", "Office Supplies Co", "Airline Express", "Coffee Roasters", "Software Licenses Ltd"}
)

// Seed builds a deterministic roster and transaction list for local development.
// Transactions are interleaved across employees so every feed page mixes owners.
func Seed(seed int64, employeeCount, transactionsPerEmployee int) ([]employee.Employee, []transaction.Transaction) {
	rnd := rand.New(rand.NewSource(seed))
	newID := func() string {
		id, err := uuid.NewRandomFromReader(rnd)
		if err != nil {
			panic(fmt.Sprintf("seed uuid: %v", err))
		}
		return id.String()
	}

	employees := make([]employee.Employee, 0, employeeCount)
	for i := 0; i < employeeCount; i++ {
		employees = append(employees, employee.Employee{
			ID:        newID(),
			FirstName: firstNames[rnd.Intn(len(firstNames))],
			LastName:  lastNames[rnd.Intn(len(lastNames))],
		})
	}

	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	transactions := make([]transaction.Transaction, 0, employeeCount*transactionsPerEmployee)
	for n := 0; n < transactionsPerEmployee; n++ {
		for _, e := range employees {
			transactions = append(transactions, transaction.Transaction{
				ID:         newID(),
				EmployeeID: e.ID,
				Amount:     float64(rnd.Intn(500000)) / 100,
				Date:       start.AddDate(0, 0, rnd.Intn(365)).Format("2006-01-02"),
				Merchant:   merchants[rnd.Intn(len(merchants))],
				Approved:   rnd.Intn(2) == 0,
			})
		}
	}
	return employees, transactions
}
