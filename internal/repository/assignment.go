package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greenloop/dumpster-coordination/internal/model"
)

// AssignmentRepository handles persistence for assignment records.
type AssignmentRepository struct {
	db *pgxpool.Pool
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// CreateBatch inserts all assignments of one batch inside a single
// transaction, so a batch is either fully recorded or not at all.
func (r *AssignmentRepository) CreateBatch(ctx context.Context, assignments []model.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	for _, a := range assignments {
		_, err = tx.Exec(ctx,
			`INSERT INTO assignments (id, plant_id, dumpster_id, employee_id, assignment_date, created_at, status, assigned_containers)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			a.ID, a.PlantID, a.DumpsterID, a.EmployeeID, a.AssignmentDate, a.CreatedAt, a.Status, a.AssignedContainers,
		)
		if err != nil {
			return fmt.Errorf("insert assignment: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListByPlant returns all assignments for a plant, newest first.
func (r *AssignmentRepository) ListByPlant(ctx context.Context, plantID string) ([]model.Assignment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, plant_id, dumpster_id, employee_id, assignment_date, created_at, status, assigned_containers
		 FROM assignments
		 WHERE plant_id = $1
		 ORDER BY created_at DESC`,
		plantID,
	)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		var a model.Assignment
		if err := rows.Scan(&a.ID, &a.PlantID, &a.DumpsterID, &a.EmployeeID,
			&a.AssignmentDate, &a.CreatedAt, &a.Status, &a.AssignedContainers); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}
