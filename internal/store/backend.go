package store

import (
	"context"

	"github.com/existflow/sprintplan/internal/model"
)

// Backend is the persistence collaborator the store reads from and writes
// through. Every call may fail.
//
//go:generate mockgen -destination=../mocks/backend.go -package=mocks github.com/existflow/sprintplan/internal/store Backend
type Backend interface {
	ListEmployees(ctx context.Context) ([]model.Employee, error)
	ListProjects(ctx context.Context) ([]model.Project, error)
	ListAllocations(ctx context.Context) ([]model.Allocation, error)

	// InsertAllocation stores a new allocation and returns its id
	InsertAllocation(ctx context.Context, employeeID, projectID, sprintID string, days int) (string, error)
	UpdateAllocationDays(ctx context.Context, id string, days int) error
	DeleteAllocation(ctx context.Context, id string) error

	UpdateEmployee(ctx context.Context, id string, update model.EmployeeUpdate) error
	UpdateProject(ctx context.Context, id string, update model.ProjectUpdate) error

	EmployeeExists(ctx context.Context, id string) (bool, error)
}
