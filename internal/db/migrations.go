package db

import "fmt"

// migrate runs all database migrations. The statements are valid in both
// SQLite and PostgreSQL.
//
// seq records insertion order; list queries order by it.
func (db *DB) migrate() error {
	migrations := []string{
		migrationCreateEmployees,
		migrationCreateProjects,
		migrationCreateAllocations,
		migrationIndexAllocations,
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

const migrationCreateEmployees = `
CREATE TABLE IF NOT EXISTS employees (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    role TEXT NOT NULL,
    image_url TEXT NOT NULL DEFAULT '',
    vacation_dates TEXT NOT NULL DEFAULT '[]',
    archived INTEGER NOT NULL DEFAULT 0,
    is_admin INTEGER NOT NULL DEFAULT 0,
    seq INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
)`

const migrationCreateProjects = `
CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    color TEXT NOT NULL DEFAULT 'blue',
    start_date TEXT NOT NULL DEFAULT '',
    end_date TEXT NOT NULL DEFAULT '',
    lead_id TEXT NOT NULL DEFAULT '',
    ticket_ref TEXT NOT NULL DEFAULT '',
    archived INTEGER NOT NULL DEFAULT 0,
    seq INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
)`

const migrationCreateAllocations = `
CREATE TABLE IF NOT EXISTS allocations (
    id TEXT PRIMARY KEY,
    employee_id TEXT NOT NULL REFERENCES employees(id),
    project_id TEXT NOT NULL REFERENCES projects(id),
    sprint_id TEXT NOT NULL,
    days INTEGER NOT NULL CHECK (days > 0),
    seq INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
)`

const migrationIndexAllocations = `
CREATE INDEX IF NOT EXISTS idx_allocations_employee_sprint ON allocations(employee_id, sprint_id)`
