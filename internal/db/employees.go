package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/existflow/sprintplan/internal/model"
	"github.com/existflow/sprintplan/internal/store"
	"github.com/google/uuid"
)

var _ store.Backend = (*DB)(nil)

const employeeColumns = `id, name, role, image_url, vacation_dates, archived, is_admin`

// CreateEmployee inserts e, assigning an id when it has none
func (db *DB) CreateEmployee(ctx context.Context, e model.Employee) (model.Employee, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	vacations, err := encodeDates(e.VacationDates)
	if err != nil {
		return model.Employee{}, err
	}
	now := timestamp()
	_, err = db.ExecContext(ctx, db.rebind(`
		INSERT INTO employees (id, name, role, image_url, vacation_dates, archived, is_admin, seq, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, `+nextSeq("employees")+`, ?, ?)`),
		e.ID, e.Name, string(e.Role), e.ImageURL, vacations, boolToInt(e.Archived), boolToInt(e.IsAdmin), now, now)
	if err != nil {
		return model.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	return e, nil
}

func (db *DB) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY seq, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []model.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (db *DB) UpdateEmployee(ctx context.Context, id string, update model.EmployeeUpdate) error {
	var (
		sets []string
		args []any
	)
	if update.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *update.Name)
	}
	if update.Role != nil {
		sets = append(sets, "role = ?")
		args = append(args, string(*update.Role))
	}
	if update.ImageURL != nil {
		sets = append(sets, "image_url = ?")
		args = append(args, *update.ImageURL)
	}
	if update.VacationDates != nil {
		vacations, err := encodeDates(*update.VacationDates)
		if err != nil {
			return err
		}
		sets = append(sets, "vacation_dates = ?")
		args = append(args, vacations)
	}
	if update.Archived != nil {
		sets = append(sets, "archived = ?")
		args = append(args, boolToInt(*update.Archived))
	}
	if len(sets) == 0 {
		return nil
	}
	return db.updateRow(ctx, "employees", id, sets, args)
}

func (db *DB) EmployeeExists(ctx context.Context, id string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx, db.rebind(`SELECT COUNT(1) FROM employees WHERE id = ?`), id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to look up employee: %w", err)
	}
	return n > 0, nil
}

// updateRow applies SET clauses to the row with the given id and stamps updated_at
func (db *DB) updateRow(ctx context.Context, table, id string, sets []string, args []any) error {
	sets = append(sets, "updated_at = ?")
	args = append(args, timestamp(), id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(sets, ", "))

	res, err := db.ExecContext(ctx, db.rebind(query), args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s %s: %w", table, id, store.ErrNotFound)
	}
	return nil
}

func scanEmployee(rows *sql.Rows) (model.Employee, error) {
	var (
		e         model.Employee
		role      string
		vacations string
		archived  int
		isAdmin   int
	)
	if err := rows.Scan(&e.ID, &e.Name, &role, &e.ImageURL, &vacations, &archived, &isAdmin); err != nil {
		return model.Employee{}, fmt.Errorf("failed to scan employee: %w", err)
	}
	e.Role = model.Role(role)
	e.Archived = archived != 0
	e.IsAdmin = isAdmin != 0
	if vacations != "" {
		if err := json.Unmarshal([]byte(vacations), &e.VacationDates); err != nil {
			return model.Employee{}, fmt.Errorf("failed to decode vacation dates for %s: %w", e.ID, err)
		}
	}
	return e, nil
}

func encodeDates(dates []string) (string, error) {
	if dates == nil {
		dates = []string{}
	}
	b, err := json.Marshal(dates)
	if err != nil {
		return "", fmt.Errorf("failed to encode dates: %w", err)
	}
	return string(b), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nextSeq is a subquery yielding the next insertion sequence of table
func nextSeq(table string) string {
	return "(SELECT COALESCE(MAX(seq), 0) + 1 FROM " + table + ")"
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
