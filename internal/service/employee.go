package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/greenloop/dumpster-coordination/internal/model"
	"github.com/greenloop/dumpster-coordination/internal/repository"
	"github.com/greenloop/dumpster-coordination/internal/session"
)

// EmployeeService handles authentication and session lifecycle.
type EmployeeService struct {
	employees EmployeeStore
	sessions  *session.Manager
	log       *slog.Logger
}

// NewEmployeeService constructs an EmployeeService.
func NewEmployeeService(employees EmployeeStore, sessions *session.Manager, log *slog.Logger) *EmployeeService {
	if log == nil {
		log = slog.Default()
	}
	return &EmployeeService{employees: employees, sessions: sessions, log: log}
}

// Login validates credentials and opens a session, returning an opaque token.
func (s *EmployeeService) Login(ctx context.Context, email, password string) (*model.AuthToken, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	employee, err := s.employees.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if employee.Password != password {
		s.log.Info("login rejected", "email", email)
		return nil, ErrInvalidCredentials
	}

	token := uuid.New().String()
	s.sessions.Store(token, model.EmployeeData{
		EmployeeID: employee.EmployeeID,
		Name:       employee.Name,
		Email:      employee.Email,
	})

	s.log.Info("login successful", "employee", employee.EmployeeID)
	return &model.AuthToken{Token: token, Timestamp: time.Now().UnixMilli()}, nil
}

// Logout closes the session for a token. An unknown token is a no-op.
func (s *EmployeeService) Logout(token string) {
	s.sessions.Remove(token)
}
