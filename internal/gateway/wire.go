package gateway

import (
	"github.com/cassiomorais/txviewer/internal/domain/employee"
	"github.com/cassiomorais/txviewer/internal/domain/transaction"
)

// EmployeeJSON is the upstream wire shape of a roster entry.
type EmployeeJSON struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// TransactionJSON is the upstream wire shape of a transaction.
type TransactionJSON struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employeeId"`
	Amount     float64 `json:"amount"`
	Date       string  `json:"date"`
	Merchant   string  `json:"merchant"`
	Approved   bool    `json:"approved"`
}

// PageJSON is the upstream wire shape of a feed page. NextPage is null on the last page.
type PageJSON struct {
	Data     []TransactionJSON `json:"data"`
	NextPage *string           `json:"nextPage"`
}

func EmployeesFromJSON(in []EmployeeJSON) []employee.Employee {
	out := make([]employee.Employee, 0, len(in))
	for _, e := range in {
		out = append(out, employee.Employee{ID: e.ID, FirstName: e.FirstName, LastName: e.LastName})
	}
	return out
}

func EmployeesToJSON(in []employee.Employee) []EmployeeJSON {
	out := make([]EmployeeJSON, 0, len(in))
	for _, e := range in {
		out = append(out, EmployeeJSON{ID: e.ID, FirstName: e.FirstName, LastName: e.LastName})
	}
	return out
}

func TransactionsFromJSON(in []TransactionJSON) []transaction.Transaction {
	out := make([]transaction.Transaction, 0, len(in))
	for _, t := range in {
		out = append(out, transaction.Transaction{
			ID:         t.ID,
			EmployeeID: t.EmployeeID,
			Amount:     t.Amount,
			Date:       t.Date,
			Merchant:   t.Merchant,
			Approved:   t.Approved,
		})
	}
	return out
}

func TransactionsToJSON(in []transaction.Transaction) []TransactionJSON {
	out := make([]TransactionJSON, 0, len(in))
	for _, t := range in {
		out = append(out, TransactionJSON{
			ID:         t.ID,
			EmployeeID: t.EmployeeID,
			Amount:     t.Amount,
			Date:       t.Date,
			Merchant:   t.Merchant,
			Approved:   t.Approved,
		})
	}
	return out
}

func PageFromJSON(in PageJSON) transaction.Page {
	return transaction.Page{
		Items:         TransactionsFromJSON(in.Data),
		NextPageToken: in.NextPage,
	}
}

func PageToJSON(in transaction.Page) PageJSON {
	return PageJSON{
		Data:     TransactionsToJSON(in.Items),
		NextPage: in.NextPageToken,
	}
}
