package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenloop/dumpster-coordination/internal/model"
)

func TestSessionLifecycle(t *testing.T) {
	m := NewManager()
	employee := model.EmployeeData{EmployeeID: "E001", Name: "Admin User", Email: "admin@example.com"}

	_, ok := m.Get("tok-1")
	require.False(t, ok, "unknown token must be invalid")

	m.Store("tok-1", employee)
	got, ok := m.Get("tok-1")
	require.True(t, ok)
	assert.Equal(t, employee, got)

	m.Remove("tok-1")
	_, ok = m.Get("tok-1")
	assert.False(t, ok, "removed token must be invalid")

	// Removing again is harmless.
	m.Remove("tok-1")
}

func TestSessionsAreIndependent(t *testing.T) {
	m := NewManager()
	m.Store("tok-a", model.EmployeeData{EmployeeID: "E001"})
	m.Store("tok-b", model.EmployeeData{EmployeeID: "E002"})

	m.Remove("tok-a")

	_, ok := m.Get("tok-a")
	assert.False(t, ok)
	got, ok := m.Get("tok-b")
	require.True(t, ok)
	assert.Equal(t, "E002", got.EmployeeID)
}
