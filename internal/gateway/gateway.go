package gateway

import (
	"context"

	"github.com/cassiomorais/txviewer/internal/domain/employee"
	"github.com/cassiomorais/txviewer/internal/domain/transaction"
)

// Endpoint names, used for breakers, metrics and error messages.
const (
	EndpointEmployees            = "employees"
	EndpointTransactions         = "transactions"
	EndpointEmployeeTransactions = "employee_transactions"
)

// API is the upstream transactions service.
//
//go:generate mockgen -destination=mocks/mock_gateway.go -package=mocks -source=gateway.go API
type API interface {
	// Employees returns the full roster.
	Employees(ctx context.Context) ([]employee.Employee, error)
	// Transactions returns one page of the all-transactions feed. A nil token requests the first page.
	Transactions(ctx context.Context, pageToken *string) (transaction.Page, error)
	// TransactionsByEmployee returns every transaction of one employee, unpaginated.
	TransactionsByEmployee(ctx context.Context, employeeID string) ([]transaction.Transaction, error)
}
