package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/existflow/sprintplan/internal/access"
	"github.com/existflow/sprintplan/internal/db"
	"github.com/existflow/sprintplan/internal/logger"
	"github.com/existflow/sprintplan/internal/model"
	"github.com/existflow/sprintplan/internal/placement"
	"github.com/existflow/sprintplan/internal/store"
	"github.com/existflow/sprintplan/internal/timeline"
)

// planner is one loaded planning session over the local database
type planner struct {
	db     *db.DB
	store  *store.Store
	engine *placement.Engine
	caller access.Caller
}

func openPlanner(ctx context.Context) (*planner, error) {
	dbConn, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("Failed to open database", logger.F("error", err))
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	log := logger.Default()
	s := store.New(dbConn,
		store.WithLogger(log),
		store.WithSprintCount(cfg.SprintCount),
		store.WithOrder(timeline.ParseOrder(cfg.LegacySprintOrder)))
	if err := s.Load(ctx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to load planner data: %w", err)
	}

	p := &planner{
		db:     dbConn,
		store:  s,
		engine: placement.New(s, placement.WithLogger(log)),
	}
	p.caller = p.callerFor(cfg.CallerID)
	return p, nil
}

func (p *planner) Close() error {
	return p.db.Close()
}

// callerFor resolves the acting employee. An unknown or archived id yields
// a caller without a role, which the access check denies.
func (p *planner) callerFor(id string) access.Caller {
	if e, ok := p.findEmployee(id); ok && !e.Archived {
		return access.CallerFor(e)
	}
	return access.Caller{EmployeeID: id}
}

// findEmployee matches an employee by id, case-insensitive name or unique id prefix
func (p *planner) findEmployee(ref string) (model.Employee, bool) {
	return match(p.store.Employees(), ref,
		func(e model.Employee) string { return e.ID },
		func(e model.Employee) string { return e.Name })
}

// findProject matches a project by id, case-insensitive name or unique id prefix
func (p *planner) findProject(ref string) (model.Project, bool) {
	return match(p.store.Projects(), ref,
		func(pr model.Project) string { return pr.ID },
		func(pr model.Project) string { return pr.Name })
}

// findAllocation matches an allocation by id or unique id prefix
func (p *planner) findAllocation(ref string) (model.Allocation, bool) {
	return match(p.store.Allocations(), ref,
		func(a model.Allocation) string { return a.ID },
		func(model.Allocation) string { return "" })
}

func match[T any](items []T, ref string, id, name func(T) string) (T, bool) {
	var zero T
	if ref == "" {
		return zero, false
	}
	for _, it := range items {
		if id(it) == ref {
			return it, true
		}
	}
	for _, it := range items {
		if n := name(it); n != "" && strings.EqualFold(n, ref) {
			return it, true
		}
	}
	var found []T
	for _, it := range items {
		if strings.HasPrefix(id(it), ref) {
			found = append(found, it)
		}
	}
	if len(found) == 1 {
		return found[0], true
	}
	return zero, false
}

func (p *planner) employee(ref string) (model.Employee, error) {
	e, ok := p.findEmployee(ref)
	if !ok {
		return model.Employee{}, fmt.Errorf("employee not found: %s", ref)
	}
	return e, nil
}

func (p *planner) project(ref string) (model.Project, error) {
	pr, ok := p.findProject(ref)
	if !ok {
		return model.Project{}, fmt.Errorf("project not found: %s", ref)
	}
	return pr, nil
}

// requireSetup gates record creation: anyone may create the first
// employee, after that the caller needs the capability
func (p *planner) requireSetup(capability access.Capability) error {
	if len(p.store.Employees()) == 0 {
		return nil
	}
	if d := access.Check(p.caller, capability, ""); !d.Allowed {
		return fmt.Errorf("%w: %s", store.ErrPermissionDenied, d.Reason)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
