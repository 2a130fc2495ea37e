package store

import (
	"context"
	"slices"
	"sync"

	"github.com/existflow/sprintplan/internal/model"
	"github.com/google/uuid"
)

// MemoryBackend is a Backend kept entirely in memory. It backs tests and
// throwaway planning sessions.
type MemoryBackend struct {
	mu          sync.RWMutex
	employees   []model.Employee
	projects    []model.Project
	allocations []model.Allocation
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend creates a backend seeded with copies of the given records
func NewMemoryBackend(employees []model.Employee, projects []model.Project, allocations []model.Allocation) *MemoryBackend {
	return &MemoryBackend{
		employees:   slices.Clone(employees),
		projects:    slices.Clone(projects),
		allocations: slices.Clone(allocations),
	}
}

func (m *MemoryBackend) ListEmployees(_ context.Context) ([]model.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.employees), nil
}

func (m *MemoryBackend) ListProjects(_ context.Context) ([]model.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.projects), nil
}

func (m *MemoryBackend) ListAllocations(_ context.Context) ([]model.Allocation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.allocations), nil
}

func (m *MemoryBackend) InsertAllocation(_ context.Context, employeeID, projectID, sprintID string, days int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New().String()
	m.allocations = append(m.allocations, model.Allocation{
		ID:         id,
		EmployeeID: employeeID,
		ProjectID:  projectID,
		SprintID:   sprintID,
		Days:       days,
	})
	return id, nil
}

func (m *MemoryBackend) UpdateAllocationDays(_ context.Context, id string, days int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.allocations, func(a model.Allocation) bool { return a.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	m.allocations[i].Days = days
	return nil
}

func (m *MemoryBackend) DeleteAllocation(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.allocations, func(a model.Allocation) bool { return a.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	m.allocations = slices.Delete(m.allocations, i, i+1)
	return nil
}

func (m *MemoryBackend) UpdateEmployee(_ context.Context, id string, update model.EmployeeUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.employees, func(e model.Employee) bool { return e.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	m.employees[i] = update.Apply(m.employees[i])
	return nil
}

func (m *MemoryBackend) UpdateProject(_ context.Context, id string, update model.ProjectUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.projects, func(p model.Project) bool { return p.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	m.projects[i] = update.Apply(m.projects[i])
	return nil
}

func (m *MemoryBackend) EmployeeExists(_ context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.ContainsFunc(m.employees, func(e model.Employee) bool { return e.ID == id }), nil
}
