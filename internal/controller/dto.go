package controller

import (
	"github.com/cassiomorais/txviewer/internal/domain/employee"
	"github.com/cassiomorais/txviewer/internal/domain/transaction"
	"github.com/cassiomorais/txviewer/internal/service"
)

// --- Request DTOs ---

// SelectEmployeeRequest is the picker change. An empty employee_id selects all
// employees; a missing one leaves the view untouched.
type SelectEmployeeRequest struct {
	EmployeeID *string `json:"employee_id" validate:"omitempty,max=128,printascii"`
}

// --- Response DTOs ---

// ViewResponse is the complete view model.
type ViewResponse struct {
	EmployeeSelect EmployeeSelectResponse `json:"employee_select"`
	// Transactions is null until either list has loaded.
	Transactions       []TransactionResponse `json:"transactions"`
	ViewMore           ViewMoreResponse      `json:"view_more"`
	SelectedEmployeeID string                `json:"selected_employee_id"`
	Loading            bool                  `json:"loading"`
}

type EmployeeSelectResponse struct {
	IsLoading bool               `json:"is_loading"`
	Items     []EmployeeResponse `json:"items"`
}

type EmployeeResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Label     string `json:"label"`
}

type TransactionResponse struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	Amount     float64 `json:"amount"`
	Date       string  `json:"date"`
	Merchant   string  `json:"merchant"`
	Approved   bool    `json:"approved"`
}

type ViewMoreResponse struct {
	Visible  bool `json:"visible"`
	Disabled bool `json:"disabled"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// --- Conversion helpers ---

// FromView converts the orchestrator view to its API response.
func FromView(v service.View, loading bool) *ViewResponse {
	resp := &ViewResponse{
		EmployeeSelect: EmployeeSelectResponse{
			IsLoading: v.EmployeeSelect.IsLoading,
			Items:     make([]EmployeeResponse, 0, len(v.EmployeeSelect.Items)),
		},
		ViewMore: ViewMoreResponse{
			Visible:  v.ViewMore.Visible,
			Disabled: v.ViewMore.Disabled,
		},
		SelectedEmployeeID: v.SelectedEmployeeID,
		Loading:            loading,
	}
	for _, e := range v.EmployeeSelect.Items {
		resp.EmployeeSelect.Items = append(resp.EmployeeSelect.Items, FromEmployee(e))
	}
	if v.Transactions != nil {
		resp.Transactions = make([]TransactionResponse, 0, len(v.Transactions))
		for _, t := range v.Transactions {
			resp.Transactions = append(resp.Transactions, FromTransaction(t))
		}
	}
	return resp
}

// FromEmployee converts a domain employee to API response.
func FromEmployee(e employee.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:        e.ID,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Label:     e.FullName(),
	}
}

// FromTransaction converts a domain transaction to API response.
func FromTransaction(t transaction.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:         t.ID,
		EmployeeID: t.EmployeeID,
		Amount:     t.Amount,
		Date:       t.Date,
		Merchant:   t.Merchant,
		Approved:   t.Approved,
	}
}
