package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/existflow/sprintplan/internal/model"
	"github.com/google/uuid"
)

const projectColumns = `id, name, color, start_date, end_date, lead_id, ticket_ref, archived`

// CreateProject inserts p, assigning an id when it has none
func (db *DB) CreateProject(ctx context.Context, p model.Project) (model.Project, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Color == "" {
		p.Color = model.ColorBlue
	}
	now := timestamp()
	_, err := db.ExecContext(ctx, db.rebind(`
		INSERT INTO projects (id, name, color, start_date, end_date, lead_id, ticket_ref, archived, seq, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, `+nextSeq("projects")+`, ?, ?)`),
		p.ID, p.Name, string(p.Color), formatDate(p.StartDate), formatDate(p.EndDate),
		p.LeadID, p.TicketRef, boolToInt(p.Archived), now, now)
	if err != nil {
		return model.Project{}, fmt.Errorf("failed to create project: %w", err)
	}
	return p, nil
}

func (db *DB) ListProjects(ctx context.Context) ([]model.Project, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY seq, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (db *DB) UpdateProject(ctx context.Context, id string, update model.ProjectUpdate) error {
	var (
		sets []string
		args []any
	)
	if update.StartDate != nil {
		sets = append(sets, "start_date = ?")
		args = append(args, formatDate(*update.StartDate))
	}
	if update.EndDate != nil {
		sets = append(sets, "end_date = ?")
		args = append(args, formatDate(*update.EndDate))
	}
	if update.LeadID != nil {
		sets = append(sets, "lead_id = ?")
		args = append(args, *update.LeadID)
	}
	if update.TicketRef != nil {
		sets = append(sets, "ticket_ref = ?")
		args = append(args, *update.TicketRef)
	}
	if update.Archived != nil {
		sets = append(sets, "archived = ?")
		args = append(args, boolToInt(*update.Archived))
	}
	if len(sets) == 0 {
		return nil
	}
	return db.updateRow(ctx, "projects", id, sets, args)
}

func scanProject(rows *sql.Rows) (model.Project, error) {
	var (
		p          model.Project
		color      string
		start, end string
		archived   int
	)
	if err := rows.Scan(&p.ID, &p.Name, &color, &start, &end, &p.LeadID, &p.TicketRef, &archived); err != nil {
		return model.Project{}, fmt.Errorf("failed to scan project: %w", err)
	}
	p.Color = model.ProjectColor(color)
	p.Archived = archived != 0

	var err error
	if p.StartDate, err = parseDate(start); err != nil {
		return model.Project{}, fmt.Errorf("invalid start date for project %s: %w", p.ID, err)
	}
	if p.EndDate, err = parseDate(end); err != nil {
		return model.Project{}, fmt.Errorf("invalid end date for project %s: %w", p.ID, err)
	}
	return p, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(model.DateLayout)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(model.DateLayout, s)
}
