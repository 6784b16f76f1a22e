package controller

import (
	"net/http"

	"github.com/cassiomorais/txviewer/internal/domain/employee"
	domainErrors "github.com/cassiomorais/txviewer/internal/domain/errors"
	"github.com/cassiomorais/txviewer/internal/service"
)

type ViewController struct {
	view *service.ViewOrchestrator
}

func NewViewController(view *service.ViewOrchestrator) *ViewController {
	return &ViewController{view: view}
}

func (h *ViewController) Get(w http.ResponseWriter, r *http.Request) {
	h.writeView(w)
}

func (h *ViewController) LoadAll(w http.ResponseWriter, r *http.Request) {
	if err := h.view.LoadAllTransactions(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	h.writeView(w)
}

func (h *ViewController) SelectEmployee(w http.ResponseWriter, r *http.Request) {
	var req SelectEmployeeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	selected, err := h.resolveSelection(req.EmployeeID)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.view.SelectEmployee(r.Context(), selected); err != nil {
		writeError(w, err)
		return
	}
	h.writeView(w)
}

func (h *ViewController) ViewMore(w http.ResponseWriter, r *http.Request) {
	if err := h.view.HandleViewMore(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	h.writeView(w)
}

// resolveSelection maps the requested id onto a picker item. Once the roster
// is loaded only its employees can be selected.
func (h *ViewController) resolveSelection(id *string) (*employee.Employee, error) {
	if id == nil {
		return nil, nil
	}
	if employee.IsSentinelID(*id) {
		e := employee.Empty
		return &e, nil
	}

	items := h.view.View().EmployeeSelect.Items
	if len(items) == 0 {
		return &employee.Employee{ID: *id}, nil
	}
	for _, e := range items {
		if e.ID == *id {
			return &e, nil
		}
	}
	return nil, domainErrors.NewValidationError("employee_id", "not in the employee roster")
}

func (h *ViewController) writeView(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, FromView(h.view.View(), h.view.Loading()))
}
