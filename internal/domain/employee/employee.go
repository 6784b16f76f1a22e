package employee

import "strings"

// Employee is a roster entry. Values are never mutated after they are fetched.
type Employee struct {
	ID        string
	FirstName string
	LastName  string
}

// Empty is the "no filter selected" entry shown first in the employee picker.
// Its empty ID can never collide with a real employee id.
var Empty = Employee{FirstName: "All", LastName: "Employees"}

// IsEmpty reports whether e is the "no filter selected" sentinel.
func (e Employee) IsEmpty() bool {
	return e.ID == ""
}

// FullName returns the picker label for the employee.
func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// IsSentinelID reports whether id refers to the "no filter selected" entry.
func IsSentinelID(id string) bool {
	return id == Empty.ID
}
