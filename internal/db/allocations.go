package db

import (
	"context"
	"fmt"

	"github.com/existflow/sprintplan/internal/model"
	"github.com/existflow/sprintplan/internal/store"
	"github.com/google/uuid"
)

func (db *DB) ListAllocations(ctx context.Context) ([]model.Allocation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, employee_id, project_id, sprint_id, days
		FROM allocations
		ORDER BY seq, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	defer rows.Close()

	var allocations []model.Allocation
	for rows.Next() {
		var a model.Allocation
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.ProjectID, &a.SprintID, &a.Days); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		allocations = append(allocations, a)
	}
	return allocations, rows.Err()
}

func (db *DB) InsertAllocation(ctx context.Context, employeeID, projectID, sprintID string, days int) (string, error) {
	id := uuid.New().String()
	now := timestamp()
	_, err := db.ExecContext(ctx, db.rebind(`
		INSERT INTO allocations (id, employee_id, project_id, sprint_id, days, seq, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, `+nextSeq("allocations")+`, ?, ?)`),
		id, employeeID, projectID, sprintID, days, now, now)
	if err != nil {
		return "", fmt.Errorf("failed to insert allocation: %w", err)
	}
	return id, nil
}

func (db *DB) UpdateAllocationDays(ctx context.Context, id string, days int) error {
	return db.updateRow(ctx, "allocations", id, []string{"days = ?"}, []any{days})
}

func (db *DB) DeleteAllocation(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, db.rebind(`DELETE FROM allocations WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete allocation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("allocation %s: %w", id, store.ErrNotFound)
	}
	return nil
}
