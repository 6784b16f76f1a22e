package testutil

import (
	"fmt"

	"github.com/cassiomorais/txviewer/internal/domain/employee"
	"github.com/cassiomorais/txviewer/internal/domain/transaction"
)

func NewTestEmployee(id, first, last string) employee.Employee {
	return employee.Employee{ID: id, FirstName: first, LastName: last}
}

func NewTestTransaction(id, employeeID string) transaction.Transaction {
	return transaction.Transaction{
		ID:         id,
		EmployeeID: employeeID,
		Amount:     42.5,
		Date:       "2021-03-14",
		Merchant:   fmt.Sprintf("Merchant %s", id),
		Approved:   false,
	}
}

// NewTestPage builds a page of transactions with the given ids. An empty next
// token marks the last page.
func NewTestPage(next string, ids ...string) transaction.Page {
	page := transaction.Page{Items: make([]transaction.Transaction, 0, len(ids))}
	for _, id := range ids {
		page.Items = append(page.Items, NewTestTransaction(id, "1"))
	}
	if next != "" {
		page.NextPageToken = transaction.Token(next)
	}
	return page
}

// IDs returns the ids of txns in order.
func IDs(txns []transaction.Transaction) []string {
	out := make([]string, 0, len(txns))
	for _, t := range txns {
		out = append(out, t.ID)
	}
	return out
}
