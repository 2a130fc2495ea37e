// Package placement implements the interactive allocation workflows: quick
// single-sprint allocation, multi-sprint batch allocation and drag-move with
// overflow into later sprints.
//
// Each step of a multi-sprint placement is its own store mutation, issued
// sequentially in chronological sprint order. A failed step does not undo
// earlier ones.
package placement

import (
	"context"
	"errors"

	"github.com/existflow/sprintplan/internal/access"
	"github.com/existflow/sprintplan/internal/calendar"
	"github.com/existflow/sprintplan/internal/logger"
	"github.com/existflow/sprintplan/internal/model"
	"github.com/existflow/sprintplan/internal/store"
)

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithHaltOnError stops a batch at its first failed step
func WithHaltOnError(halt bool) Option {
	return func(e *Engine) { e.haltOnError = halt }
}

// Engine places allocations through a store
type Engine struct {
	store       *store.Store
	log         *logger.Logger
	haltOnError bool
}

// New creates an engine over s
func New(s *store.Store, opts ...Option) *Engine {
	e := &Engine{store: s}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// QuickAllocate creates a single allocation. Callers are expected to refuse
// days beyond the sprint's remaining capacity first (capacity.CheckRemaining);
// the engine accepts any positive day count.
func (e *Engine) QuickAllocate(ctx context.Context, caller access.Caller, employeeID, projectID, sprintID string, days int) (model.Allocation, error) {
	return e.store.AddAllocation(ctx, caller, employeeID, projectID, sprintID, days)
}

// preflight rejects requests that would fail every step
func (e *Engine) preflight(caller access.Caller, op, employeeID, projectID string) (model.Employee, model.Project, error) {
	if d := access.Check(caller, access.ManageAllocations, ""); !d.Allowed {
		return model.Employee{}, model.Project{}, &store.OpError{Op: op, Resource: "allocation", Kind: store.ErrPermissionDenied, Err: errors.New(d.Reason)}
	}
	emp, ok := e.store.Employee(employeeID)
	if !ok {
		return model.Employee{}, model.Project{}, &store.OpError{Op: op, Resource: "employee", ID: employeeID, Kind: store.ErrValidation, Err: errors.New("unknown employee")}
	}
	project, ok := e.store.Project(projectID)
	if !ok {
		return model.Employee{}, model.Project{}, &store.OpError{Op: op, Resource: "project", ID: projectID, Kind: store.ErrValidation, Err: errors.New("unknown project")}
	}
	return emp, project, nil
}

// sprintsFrom returns the chronological sprints starting at sprintID
func (e *Engine) sprintsFrom(op, sprintID string) ([]model.Sprint, error) {
	sprints := calendar.Chronological(e.store.Sprints())
	i := calendar.IndexOf(sprints, sprintID)
	if i < 0 {
		return nil, &store.OpError{Op: op, Resource: "sprint", ID: sprintID, Kind: store.ErrNotFound}
	}
	return sprints[i:], nil
}
