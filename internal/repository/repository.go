// Package repository implements all database queries for the coordination
// system. It uses pgx directly (no ORM) for transparency and performance.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greenloop/dumpster-coordination/internal/model"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// PlantRepository handles persistence for plants.
type PlantRepository struct {
	db *pgxpool.Pool
}

// NewPlantRepository constructs a PlantRepository.
func NewPlantRepository(db *pgxpool.Pool) *PlantRepository {
	return &PlantRepository{db: db}
}

const plantColumns = `plant_id, name, type, gateway_type, host, port, available_capacity, total_containers_received`

func scanPlant(row pgx.Row) (*model.Plant, error) {
	var p model.Plant
	err := row.Scan(&p.PlantID, &p.Name, &p.Type, &p.GatewayType, &p.Host, &p.Port,
		&p.AvailableCapacity, &p.TotalContainersReceived)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all plants ordered by id.
func (r *PlantRepository) List(ctx context.Context) ([]model.Plant, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+plantColumns+` FROM plants ORDER BY plant_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list plants: %w", err)
	}
	defer rows.Close()

	var plants []model.Plant
	for rows.Next() {
		p, err := scanPlant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plant: %w", err)
		}
		plants = append(plants, *p)
	}
	return plants, rows.Err()
}

// GetByID returns a single plant or ErrNotFound.
func (r *PlantRepository) GetByID(ctx context.Context, id string) (*model.Plant, error) {
	p, err := scanPlant(r.db.QueryRow(ctx,
		`SELECT `+plantColumns+` FROM plants WHERE plant_id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get plant: %w", err)
	}
	return p, nil
}

// AddContainersReceived adds to the plant's monotonic audit counter of
// containers ever routed to it. The increment happens in the database so
// concurrent assignments never lose an update.
func (r *PlantRepository) AddContainersReceived(ctx context.Context, plantID string, containers int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE plants SET total_containers_received = total_containers_received + $2
		 WHERE plant_id = $1`,
		plantID, containers,
	)
	if err != nil {
		return fmt.Errorf("add containers received: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// EmployeeRepository handles persistence for employees.
type EmployeeRepository struct {
	db *pgxpool.Pool
}

// NewEmployeeRepository constructs an EmployeeRepository.
func NewEmployeeRepository(db *pgxpool.Pool) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// GetByID returns a single employee or ErrNotFound.
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*model.Employee, error) {
	var e model.Employee
	err := r.db.QueryRow(ctx,
		`SELECT employee_id, name, email, password FROM employees WHERE employee_id = $1`,
		id,
	).Scan(&e.EmployeeID, &e.Name, &e.Email, &e.Password)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return &e, nil
}

// GetByEmail returns the employee with the given email or ErrNotFound.
func (r *EmployeeRepository) GetByEmail(ctx context.Context, email string) (*model.Employee, error) {
	var e model.Employee
	err := r.db.QueryRow(ctx,
		`SELECT employee_id, name, email, password FROM employees WHERE email = $1`,
		email,
	).Scan(&e.EmployeeID, &e.Name, &e.Email, &e.Password)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get employee by email: %w", err)
	}
	return &e, nil
}
