// Package session provides in-memory storage for logged-in employee
// sessions. All sessions are lost on coordinator restart.
package session

import (
	"sync"

	"github.com/greenloop/dumpster-coordination/internal/model"
)

// Manager is a concurrency-safe token → employee store.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]model.EmployeeData
}

// NewManager constructs an empty Manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]model.EmployeeData)}
}

// Store records a new session token for an employee.
func (m *Manager) Store(token string, employee model.EmployeeData) {
	m.mu.Lock()
	m.sessions[token] = employee
	m.mu.Unlock()
}

// Remove deletes a session token (logout). Removing an unknown token is a no-op.
func (m *Manager) Remove(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// Get returns the employee bound to a token, and whether the token is valid.
func (m *Manager) Get(token string) (model.EmployeeData, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	employee, ok := m.sessions[token]
	return employee, ok
}
