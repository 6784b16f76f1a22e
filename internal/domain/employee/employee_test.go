package employee

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmpty_IsSentinel(t *testing.T) {
	assert.True(t, Empty.IsEmpty())
	assert.True(t, IsSentinelID(Empty.ID))
	assert.Equal(t, "All Employees", Empty.FullName())
}

func TestEmployee_RealIDIsNotSentinel(t *testing.T) {
	e := Employee{ID: "1", FirstName: "Ann", LastName: "Lee"}

	assert.False(t, e.IsEmpty())
	assert.False(t, IsSentinelID(e.ID))
	assert.Equal(t, "Ann Lee", e.FullName())
}

func TestEmployee_FullName_MissingLastName(t *testing.T) {
	e := Employee{ID: "2", FirstName: "Cher"}

	assert.Equal(t, "Cher", e.FullName())
}
