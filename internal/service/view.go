package service

import (
	"github.com/cassiomorais/txviewer/internal/domain/employee"
	"github.com/cassiomorais/txviewer/internal/domain/transaction"
)

// View is everything the presentation layer needs to render the page.
type View struct {
	EmployeeSelect EmployeeSelect
	// Transactions is nil until either source has loaded.
	Transactions []transaction.Transaction
	ViewMore     ViewMoreControl
	// SelectedEmployeeID is the employee whose transactions are shown, "" for all.
	SelectedEmployeeID string
}

// EmployeeSelect is the state of the employee picker.
type EmployeeSelect struct {
	IsLoading bool
	// Items is empty until the roster loads, then starts with employee.Empty.
	Items []employee.Employee
}

// ViewMoreControl is the state of the "view more" button.
type ViewMoreControl struct {
	Visible  bool
	Disabled bool
}

// View builds the presentation state from the current store snapshots.
func (o *ViewOrchestrator) View() View {
	roster := o.employees.Snapshot()
	feed := o.feed.Snapshot()
	lookup := o.lookup.Snapshot()
	loading := o.Loading()

	items := []employee.Employee{}
	if roster.Valid {
		items = make([]employee.Employee, 0, len(roster.Data)+1)
		items = append(items, employee.Empty)
		items = append(items, roster.Data...)
	}

	var txns []transaction.Transaction
	selected := o.lookup.EmployeeID()
	viewMore := o.ShowViewMore() && !lookup.Valid
	if lookup.Valid || feed.Valid {
		txns = ActiveTransactions(lookup, feed)
	} else {
		// Both stores are empty while a switch is loading or after it failed.
		txns, selected = o.lastShown()
		viewMore = viewMore && selected == ""
	}

	return View{
		EmployeeSelect: EmployeeSelect{
			IsLoading: loading || roster.Loading,
			Items:     items,
		},
		Transactions: txns,
		ViewMore: ViewMoreControl{
			Visible:  viewMore,
			Disabled: loading || feed.Loading,
		},
		SelectedEmployeeID: selected,
	}
}
