package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greenloop/dumpster-coordination/internal/model"
)

// DumpsterRepository handles persistence for dumpsters.
type DumpsterRepository struct {
	db *pgxpool.Pool
}

// NewDumpsterRepository constructs a DumpsterRepository.
func NewDumpsterRepository(db *pgxpool.Pool) *DumpsterRepository {
	return &DumpsterRepository{db: db}
}

const dumpsterColumns = `dumpster_id, location, postal_code, capacity, fill_level, containers_number, created_at`

func scanDumpster(row pgx.Row) (*model.Dumpster, error) {
	var d model.Dumpster
	err := row.Scan(&d.DumpsterID, &d.Location, &d.PostalCode, &d.Capacity,
		&d.FillLevel, &d.ContainersNumber, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a new dumpster.
func (r *DumpsterRepository) Create(ctx context.Context, d *model.Dumpster) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO dumpsters (dumpster_id, location, postal_code, capacity, fill_level, containers_number, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.DumpsterID, d.Location, d.PostalCode, d.Capacity, d.FillLevel, d.ContainersNumber, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert dumpster: %w", err)
	}
	return nil
}

// GetByID returns a single dumpster or ErrNotFound.
func (r *DumpsterRepository) GetByID(ctx context.Context, id string) (*model.Dumpster, error) {
	d, err := scanDumpster(r.db.QueryRow(ctx,
		`SELECT `+dumpsterColumns+` FROM dumpsters WHERE dumpster_id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get dumpster: %w", err)
	}
	return d, nil
}

// UpdateStatus overwrites a dumpster's fill level and container count.
func (r *DumpsterRepository) UpdateStatus(ctx context.Context, id, fillLevel string, containersNumber int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE dumpsters SET fill_level = $2, containers_number = $3 WHERE dumpster_id = $1`,
		id, fillLevel, containersNumber,
	)
	if err != nil {
		return fmt.Errorf("update dumpster: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByPostalCode returns dumpsters in a postal code area; an empty code
// returns all dumpsters.
func (r *DumpsterRepository) ListByPostalCode(ctx context.Context, postalCode string) ([]model.Dumpster, error) {
	query := `SELECT ` + dumpsterColumns + ` FROM dumpsters ORDER BY dumpster_id`
	args := []any{}
	if postalCode != "" {
		query = `SELECT ` + dumpsterColumns + ` FROM dumpsters WHERE postal_code = $1 ORDER BY dumpster_id`
		args = append(args, postalCode)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list dumpsters: %w", err)
	}
	defer rows.Close()

	var dumpsters []model.Dumpster
	for rows.Next() {
		d, err := scanDumpster(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dumpster: %w", err)
		}
		dumpsters = append(dumpsters, *d)
	}
	return dumpsters, rows.Err()
}

// UsageRepository handles persistence for dumpster usage history.
type UsageRepository struct {
	db *pgxpool.Pool
}

// NewUsageRepository constructs a UsageRepository.
func NewUsageRepository(db *pgxpool.Pool) *UsageRepository {
	return &UsageRepository{db: db}
}

// Record appends one usage-history row.
func (r *UsageRepository) Record(ctx context.Context, u *model.Usage) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO usage_history (dumpster_id, date, fill_level, containers_count, recorded_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		u.DumpsterID, u.Date, u.FillLevel, u.ContainersCount, u.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert usage: %w", err)
	}
	return nil
}

// ListBetween returns usage rows with dates in [start, end], oldest first.
func (r *UsageRepository) ListBetween(ctx context.Context, start, end time.Time) ([]model.Usage, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, dumpster_id, date, fill_level, containers_count, recorded_at
		 FROM usage_history
		 WHERE date BETWEEN $1 AND $2
		 ORDER BY date ASC, id ASC`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("list usage: %w", err)
	}
	defer rows.Close()

	var usages []model.Usage
	for rows.Next() {
		var u model.Usage
		if err := rows.Scan(&u.ID, &u.DumpsterID, &u.Date, &u.FillLevel, &u.ContainersCount, &u.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		usages = append(usages, u)
	}
	return usages, rows.Err()
}
