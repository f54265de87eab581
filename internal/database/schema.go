package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS employees (
		employee_id TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		email       TEXT NOT NULL UNIQUE,
		password    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS plants (
		plant_id                  TEXT PRIMARY KEY,
		name                      TEXT NOT NULL,
		type                      TEXT NOT NULL,
		gateway_type              TEXT NOT NULL,
		host                      TEXT NOT NULL DEFAULT '',
		port                      INT NOT NULL DEFAULT 0,
		available_capacity        DOUBLE PRECISION NOT NULL,
		total_containers_received INT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS dumpsters (
		dumpster_id       TEXT PRIMARY KEY,
		location          TEXT NOT NULL,
		postal_code       TEXT NOT NULL,
		capacity          DOUBLE PRECISION NOT NULL,
		fill_level        TEXT NOT NULL,
		containers_number INT NOT NULL,
		created_at        TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS assignments (
		id                  TEXT PRIMARY KEY,
		plant_id            TEXT NOT NULL REFERENCES plants(plant_id),
		dumpster_id         TEXT NOT NULL REFERENCES dumpsters(dumpster_id),
		employee_id         TEXT NOT NULL REFERENCES employees(employee_id),
		assignment_date     DATE NOT NULL,
		created_at          TIMESTAMPTZ NOT NULL,
		status              TEXT NOT NULL,
		assigned_containers INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS usage_history (
		id               BIGSERIAL PRIMARY KEY,
		dumpster_id      TEXT NOT NULL REFERENCES dumpsters(dumpster_id),
		date             DATE NOT NULL,
		fill_level       TEXT NOT NULL,
		containers_count INT NOT NULL,
		recorded_at      TIMESTAMPTZ NOT NULL
	)`,
}

// EnsureSchema creates all tables if they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Seed inserts demo employees, plants, dumpsters, and usage history so a
// fresh deployment is usable end to end. Every insert is idempotent.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	seeds := []struct {
		sql  string
		args []any
	}{
		{`INSERT INTO employees (employee_id, name, email, password)
		  VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING`,
			[]any{"E001", "Admin User", "admin@greenloop.example", "password123"}},
		{`INSERT INTO employees (employee_id, name, email, password)
		  VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING`,
			[]any{"E002", "Jane Doe", "employee@greenloop.example", "pass"}},

		{`INSERT INTO plants (plant_id, name, type, gateway_type, host, port, available_capacity)
		  VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT DO NOTHING`,
			[]any{"PLASSB-01", "PlasSB Ltd.", "PLASTIC", "PlasSB", "localhost", 8082, 85.0}},
		{`INSERT INTO plants (plant_id, name, type, gateway_type, host, port, available_capacity)
		  VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT DO NOTHING`,
			[]any{"CONTSO-01", "ContSocket Ltd.", "GENERAL", "ContSocket", "localhost", 9090, 80.5}},

		{`INSERT INTO dumpsters (dumpster_id, location, postal_code, capacity, fill_level, containers_number, created_at)
		  VALUES ($1, $2, $3, $4, $5, $6, now()) ON CONFLICT DO NOTHING`,
			[]any{"D-123", "Deusto, Bilbao 48007", "48007", 5000.0, "green", 10}},
		{`INSERT INTO dumpsters (dumpster_id, location, postal_code, capacity, fill_level, containers_number, created_at)
		  VALUES ($1, $2, $3, $4, $5, $6, now()) ON CONFLICT DO NOTHING`,
			[]any{"D-456", "Indautxu, Bilbao 48011", "48011", 4500.0, "orange", 400}},
		{`INSERT INTO dumpsters (dumpster_id, location, postal_code, capacity, fill_level, containers_number, created_at)
		  VALUES ($1, $2, $3, $4, $5, $6, now()) ON CONFLICT DO NOTHING`,
			[]any{"D-789", "Santutxu, Bilbao 48004", "48004", 6000.0, "green", 5}},
	}

	for _, s := range seeds {
		if _, err := pool.Exec(ctx, s.sql, s.args...); err != nil {
			return fmt.Errorf("seed data: %w", err)
		}
	}

	// Usage history is only seeded once, on an empty table.
	var usageRows int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM usage_history`).Scan(&usageRows); err != nil {
		return fmt.Errorf("seed data: %w", err)
	}
	if usageRows == 0 {
		usage := []struct {
			dumpsterID string
			date       string
			fillLevel  string
			containers int
		}{
			{"D-123", "2025-11-06", "green", 10},
			{"D-123", "2025-11-07", "green", 20},
			{"D-123", "2025-11-08", "orange", 300},
			{"D-456", "2025-11-06", "orange", 400},
			{"D-456", "2025-11-07", "red", 1000},
		}
		for _, u := range usage {
			_, err := pool.Exec(ctx,
				`INSERT INTO usage_history (dumpster_id, date, fill_level, containers_count, recorded_at)
				 VALUES ($1, $2, $3, $4, now())`,
				u.dumpsterID, u.date, u.fillLevel, u.containers,
			)
			if err != nil {
				return fmt.Errorf("seed usage history: %w", err)
			}
		}
	}

	slog.Info("database seeded with sample data")
	return nil
}
