// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository and gateway layers.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/greenloop/dumpster-coordination/internal/gateway"
	"github.com/greenloop/dumpster-coordination/internal/model"
)

// ErrInvalidCredentials is returned when a login attempt fails. It is
// deliberately the same for an unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Stores consumed by the services. The pgx repositories satisfy these;
// tests substitute in-memory fakes.

// EmployeeStore resolves employees.
type EmployeeStore interface {
	GetByID(ctx context.Context, id string) (*model.Employee, error)
	GetByEmail(ctx context.Context, email string) (*model.Employee, error)
}

// PlantStore resolves and mutates plants.
type PlantStore interface {
	List(ctx context.Context) ([]model.Plant, error)
	GetByID(ctx context.Context, id string) (*model.Plant, error)
	AddContainersReceived(ctx context.Context, plantID string, containers int) error
}

// DumpsterStore resolves and mutates dumpsters.
type DumpsterStore interface {
	Create(ctx context.Context, d *model.Dumpster) error
	GetByID(ctx context.Context, id string) (*model.Dumpster, error)
	UpdateStatus(ctx context.Context, id, fillLevel string, containersNumber int) error
	ListByPostalCode(ctx context.Context, postalCode string) ([]model.Dumpster, error)
}

// AssignmentStore persists assignment batches.
type AssignmentStore interface {
	CreateBatch(ctx context.Context, assignments []model.Assignment) error
}

// UsageStore persists and queries dumpster usage history.
type UsageStore interface {
	Record(ctx context.Context, u *model.Usage) error
	ListBetween(ctx context.Context, start, end time.Time) ([]model.Usage, error)
}

// GatewayResolver selects the protocol adapter for a plant's gateway type.
type GatewayResolver interface {
	Lookup(gatewayType string) (gateway.PlantGateway, error)
}
