// Package store holds the planner's in-memory collections and applies
// allocation, employee and project mutations optimistically against a
// persistence Backend, rolling back exactly the failed mutation.
package store

import (
	"context"
	"slices"
	"sync"

	"github.com/existflow/sprintplan/internal/calendar"
	"github.com/existflow/sprintplan/internal/logger"
	"github.com/existflow/sprintplan/internal/model"
	"github.com/existflow/sprintplan/internal/timeline"
)

// DefaultSprintCount is the number of sprints generated on Load
const DefaultSprintCount = 52

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger used for mutation tracing
func WithLogger(l *logger.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithObserver registers fn to receive every mutation state transition
func WithObserver(fn func(Mutation)) Option {
	return func(s *Store) { s.observers = append(s.observers, fn) }
}

// WithOrder sets how project ranges compare sprint ids
func WithOrder(o timeline.Order) Option {
	return func(s *Store) { s.order = o }
}

// WithSprintCount sets how many sprints Load generates from the epoch
func WithSprintCount(n int) Option {
	return func(s *Store) { s.sprintCount = n }
}

// Store owns employees, projects, allocations and sprints for one session.
//
// Mutations are serialized: each one applies its optimistic change, waits
// for the backend and then commits or rolls back before the next starts.
// Readers see the optimistic state while a backend call is in flight.
type Store struct {
	backend     Backend
	log         *logger.Logger
	observers   []func(Mutation)
	order       timeline.Order
	sprintCount int

	writeMu sync.Mutex

	mu          sync.RWMutex
	employees   []model.Employee
	projects    []model.Project
	allocations []model.Allocation
	sprints     []model.Sprint
}

// New creates a store over backend. Call Load before use.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:     backend,
		sprintCount: DefaultSprintCount,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sprints = calendar.GenerateSprints(calendar.ReferenceEpoch, s.sprintCount)
	return s
}

// Load replaces the in-memory collections with the backend's content and
// recomputes project ranges
func (s *Store) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	employees, err := s.backend.ListEmployees(ctx)
	if err != nil {
		return opErr(ErrBackend, "load", "employees", "", err)
	}
	projects, err := s.backend.ListProjects(ctx)
	if err != nil {
		return opErr(ErrBackend, "load", "projects", "", err)
	}
	allocations, err := s.backend.ListAllocations(ctx)
	if err != nil {
		return opErr(ErrBackend, "load", "allocations", "", err)
	}

	s.mu.Lock()
	s.employees = employees
	s.projects = projects
	s.allocations = allocations
	s.sprints = calendar.GenerateSprints(calendar.ReferenceEpoch, s.sprintCount)
	s.mu.Unlock()

	s.log.Info("Planner data loaded",
		logger.F("employees", len(employees)),
		logger.F("projects", len(projects)),
		logger.F("allocations", len(allocations)),
		logger.F("sprints", s.sprintCount))

	s.recomputeRanges(ctx)
	return nil
}

// Sprints returns the generated sprints in chronological order
func (s *Store) Sprints() []model.Sprint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.sprints)
}

// Employees returns a snapshot of all employees, archived included
func (s *Store) Employees() []model.Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.employees)
}

// Projects returns a snapshot of all projects
func (s *Store) Projects() []model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.projects)
}

// Allocations returns a snapshot of all allocations
func (s *Store) Allocations() []model.Allocation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.allocations)
}

// Employee looks up an employee by id
func (s *Store) Employee(id string) (model.Employee, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := slices.IndexFunc(s.employees, func(e model.Employee) bool { return e.ID == id }); i >= 0 {
		return s.employees[i], true
	}
	return model.Employee{}, false
}

// Project looks up a project by id
func (s *Store) Project(id string) (model.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.projectIndex(id); i >= 0 {
		return s.projects[i], true
	}
	return model.Project{}, false
}

// Allocation looks up an allocation by id
func (s *Store) Allocation(id string) (model.Allocation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.allocationIndex(id); i >= 0 {
		return s.allocations[i], true
	}
	return model.Allocation{}, false
}

// Sprint looks up a generated sprint by id
func (s *Store) Sprint(id string) (model.Sprint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return calendar.Find(s.sprints, id)
}

func (s *Store) allocationIndex(id string) int {
	return slices.IndexFunc(s.allocations, func(a model.Allocation) bool { return a.ID == id })
}

func (s *Store) projectIndex(id string) int {
	return slices.IndexFunc(s.projects, func(p model.Project) bool { return p.ID == id })
}

func (s *Store) employeeIndex(id string) int {
	return slices.IndexFunc(s.employees, func(e model.Employee) bool { return e.ID == id })
}

// recomputeRanges derives project ranges from the current allocations and
// writes changed ranges through to the backend. Write-through failures are
// logged; the in-memory range stays derived.
func (s *Store) recomputeRanges(ctx context.Context) {
	s.mu.Lock()
	before := s.projects
	after := timeline.CalculateProjectDateRanges(before, s.allocations, s.sprints, s.order)
	s.projects = after
	s.mu.Unlock()

	for _, p := range timeline.Changed(before, after) {
		start, end := p.StartDate, p.EndDate
		err := s.backend.UpdateProject(ctx, p.ID, model.ProjectUpdate{StartDate: &start, EndDate: &end})
		if err != nil {
			s.log.Warn("Failed to persist project range",
				logger.F("project", p.ID), logger.F("error", err))
			continue
		}
		s.log.Debug("Project range updated",
			logger.F("project", p.ID),
			logger.F("start", start.Format(model.DateLayout)),
			logger.F("end", end.Format(model.DateLayout)))
	}
}

