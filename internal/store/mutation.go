package store

import (
	"context"
	"errors"

	"github.com/existflow/sprintplan/internal/access"
	"github.com/existflow/sprintplan/internal/logger"
	"github.com/existflow/sprintplan/internal/model"
	"github.com/google/uuid"
)

// MutationKind identifies what a mutation changes
type MutationKind int

const (
	CreateAllocation MutationKind = iota
	UpdateAllocation
	DeleteAllocation
	EditEmployee
	EditProject
)

func (k MutationKind) String() string {
	switch k {
	case CreateAllocation:
		return "create allocation"
	case UpdateAllocation:
		return "update allocation"
	case DeleteAllocation:
		return "delete allocation"
	case EditEmployee:
		return "edit employee"
	case EditProject:
		return "edit project"
	default:
		return "unknown"
	}
}

// MutationState is the lifecycle position of a mutation
type MutationState int

const (
	// Pending means the optimistic change is applied locally
	Pending MutationState = iota
	// Committed means the backend confirmed the change
	Committed
	// RolledBack means the backend rejected it and the local change was reverted
	RolledBack
)

func (s MutationState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled back"
	default:
		return "unknown"
	}
}

// Mutation is one state transition of a store change, delivered to observers
type Mutation struct {
	Kind  MutationKind
	State MutationState
	// TempID is the local identity a create carries while pending
	TempID     string
	Allocation model.Allocation
	Employee   model.Employee
	Project    model.Project
	Err        error
}

func (s *Store) emit(m Mutation) {
	fields := []logger.Field{logger.F("kind", m.Kind), logger.F("state", m.State)}
	switch m.Kind {
	case EditEmployee:
		fields = append(fields, logger.F("employee", m.Employee.ID))
	case EditProject:
		fields = append(fields, logger.F("project", m.Project.ID))
	default:
		fields = append(fields, logger.F("allocation", m.Allocation.ID))
	}
	switch m.State {
	case Pending:
		s.log.Debug("Mutation pending", fields...)
	case Committed:
		s.log.Info("Mutation committed", fields...)
	case RolledBack:
		s.log.Warn("Mutation rolled back", append(fields, logger.F("error", m.Err))...)
	}
	for _, fn := range s.observers {
		fn(m)
	}
}

func authorize(caller access.Caller, capability access.Capability, target, op, resource, id string) error {
	d := access.Check(caller, capability, target)
	if !d.Allowed {
		return opErr(ErrPermissionDenied, op, resource, id, errors.New(d.Reason))
	}
	return nil
}

// AddAllocation creates an allocation of days for the employee on the
// project in the sprint, then recomputes project ranges.
//
// Overallocation is not checked here; callers guard it.
func (s *Store) AddAllocation(ctx context.Context, caller access.Caller, employeeID, projectID, sprintID string, days int) (model.Allocation, error) {
	const op = "add"
	if err := authorize(caller, access.ManageAllocations, "", op, "allocation", ""); err != nil {
		return model.Allocation{}, err
	}
	if days <= 0 {
		return model.Allocation{}, validationErr(op, "allocation", "", "days must be positive, got %d", days)
	}
	if _, ok := s.Sprint(sprintID); !ok {
		return model.Allocation{}, validationErr(op, "sprint", sprintID, "unknown sprint")
	}
	if _, ok := s.Project(projectID); !ok {
		return model.Allocation{}, validationErr(op, "project", projectID, "unknown project")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	exists, err := s.backend.EmployeeExists(ctx, employeeID)
	if err != nil {
		return model.Allocation{}, opErr(ErrBackend, op, "employee", employeeID, err)
	}
	if !exists {
		return model.Allocation{}, validationErr(op, "employee", employeeID, "unknown employee")
	}

	pending := model.Allocation{
		ID:         "temp-" + uuid.New().String(),
		EmployeeID: employeeID,
		ProjectID:  projectID,
		SprintID:   sprintID,
		Days:       days,
	}
	s.mu.Lock()
	s.allocations = append(s.allocations, pending)
	s.mu.Unlock()
	s.emit(Mutation{Kind: CreateAllocation, State: Pending, TempID: pending.ID, Allocation: pending})

	id, err := s.backend.InsertAllocation(ctx, employeeID, projectID, sprintID, days)
	if err != nil {
		s.mu.Lock()
		if i := s.allocationIndex(pending.ID); i >= 0 {
			s.allocations = append(s.allocations[:i:i], s.allocations[i+1:]...)
		}
		s.mu.Unlock()
		err = opErr(ErrBackend, op, "allocation", "", err)
		s.emit(Mutation{Kind: CreateAllocation, State: RolledBack, TempID: pending.ID, Allocation: pending, Err: err})
		return model.Allocation{}, err
	}

	committed := pending
	committed.ID = id
	s.mu.Lock()
	if i := s.allocationIndex(pending.ID); i >= 0 {
		s.allocations[i] = committed
	}
	s.mu.Unlock()
	s.emit(Mutation{Kind: CreateAllocation, State: Committed, TempID: pending.ID, Allocation: committed})

	s.recomputeRanges(ctx)
	return committed, nil
}

// UpdateAllocation changes the days of an existing allocation. Only Days is
// read from a; the other fields are ignored.
func (s *Store) UpdateAllocation(ctx context.Context, caller access.Caller, a model.Allocation) (model.Allocation, error) {
	const op = "update"
	if err := authorize(caller, access.ManageAllocations, "", op, "allocation", a.ID); err != nil {
		return model.Allocation{}, err
	}
	if a.Days <= 0 {
		return model.Allocation{}, validationErr(op, "allocation", a.ID, "days must be positive, got %d", a.Days)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	i := s.allocationIndex(a.ID)
	if i < 0 {
		s.mu.Unlock()
		return model.Allocation{}, opErr(ErrNotFound, op, "allocation", a.ID, nil)
	}
	previous := s.allocations[i]
	updated := previous
	updated.Days = a.Days
	s.allocations[i] = updated
	s.mu.Unlock()
	s.emit(Mutation{Kind: UpdateAllocation, State: Pending, Allocation: updated})

	if err := s.backend.UpdateAllocationDays(ctx, a.ID, a.Days); err != nil {
		s.mu.Lock()
		if i := s.allocationIndex(a.ID); i >= 0 {
			s.allocations[i] = previous
		}
		s.mu.Unlock()
		err = opErr(ErrBackend, op, "allocation", a.ID, err)
		s.emit(Mutation{Kind: UpdateAllocation, State: RolledBack, Allocation: previous, Err: err})
		return model.Allocation{}, err
	}
	s.emit(Mutation{Kind: UpdateAllocation, State: Committed, Allocation: updated})

	s.recomputeRanges(ctx)
	return updated, nil
}

// DeleteAllocation removes an allocation, restoring it in place if the
// backend refuses
func (s *Store) DeleteAllocation(ctx context.Context, caller access.Caller, id string) error {
	const op = "delete"
	if err := authorize(caller, access.ManageAllocations, "", op, "allocation", id); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	i := s.allocationIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return opErr(ErrNotFound, op, "allocation", id, nil)
	}
	removed := s.allocations[i]
	s.allocations = append(s.allocations[:i:i], s.allocations[i+1:]...)
	s.mu.Unlock()
	s.emit(Mutation{Kind: DeleteAllocation, State: Pending, Allocation: removed})

	if err := s.backend.DeleteAllocation(ctx, id); err != nil {
		s.mu.Lock()
		at := min(i, len(s.allocations))
		s.allocations = append(s.allocations[:at:at], append([]model.Allocation{removed}, s.allocations[at:]...)...)
		s.mu.Unlock()
		err = opErr(ErrBackend, op, "allocation", id, err)
		s.emit(Mutation{Kind: DeleteAllocation, State: RolledBack, Allocation: removed, Err: err})
		return err
	}
	s.emit(Mutation{Kind: DeleteAllocation, State: Committed, Allocation: removed})

	s.recomputeRanges(ctx)
	return nil
}

// UpdateEmployee edits an employee profile. Callers may edit their own
// profile except for Role and Archived; admins and manager roles may edit
// anyone.
func (s *Store) UpdateEmployee(ctx context.Context, caller access.Caller, id string, update model.EmployeeUpdate) (model.Employee, error) {
	const op = "update"
	d := access.Check(caller, access.EditEmployee, id)
	if !d.Allowed {
		return model.Employee{}, opErr(ErrPermissionDenied, op, "employee", id, errors.New(d.Reason))
	}
	// role and archived flag are not self-service
	if d.Self && (update.Role != nil || update.Archived != nil) {
		return model.Employee{}, opErr(ErrPermissionDenied, op, "employee", id, errors.New("own role and archived flag are managed by admins and managers"))
	}
	if update.Role != nil && !update.Role.Valid() {
		return model.Employee{}, validationErr(op, "employee", id, "unknown role %q", *update.Role)
	}
	if update.VacationDates != nil {
		for _, d := range *update.VacationDates {
			if model.NormalizeDate(d) == "" {
				return model.Employee{}, validationErr(op, "employee", id, "invalid vacation date %q", d)
			}
		}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	i := s.employeeIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return model.Employee{}, opErr(ErrNotFound, op, "employee", id, nil)
	}
	previous := s.employees[i]
	updated := update.Apply(previous)
	s.employees[i] = updated
	s.mu.Unlock()
	s.emit(Mutation{Kind: EditEmployee, State: Pending, Employee: updated})

	if err := s.backend.UpdateEmployee(ctx, id, update); err != nil {
		s.mu.Lock()
		if i := s.employeeIndex(id); i >= 0 {
			s.employees[i] = previous
		}
		s.mu.Unlock()
		err = opErr(ErrBackend, op, "employee", id, err)
		s.emit(Mutation{Kind: EditEmployee, State: RolledBack, Employee: previous, Err: err})
		return model.Employee{}, err
	}
	s.emit(Mutation{Kind: EditEmployee, State: Committed, Employee: updated})
	return updated, nil
}

// UpdateProject edits project metadata. Date fields are ignored because
// project ranges are derived from allocations.
func (s *Store) UpdateProject(ctx context.Context, caller access.Caller, id string, update model.ProjectUpdate) (model.Project, error) {
	const op = "update"
	if err := authorize(caller, access.ManageAllocations, "", op, "project", id); err != nil {
		return model.Project{}, err
	}
	update.StartDate, update.EndDate = nil, nil
	if update.LeadID != nil && *update.LeadID != "" {
		if _, ok := s.Employee(*update.LeadID); !ok {
			return model.Project{}, validationErr(op, "project", id, "unknown lead %q", *update.LeadID)
		}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	i := s.projectIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return model.Project{}, opErr(ErrNotFound, op, "project", id, nil)
	}
	previous := s.projects[i]
	updated := update.Apply(previous)
	s.projects[i] = updated
	s.mu.Unlock()
	s.emit(Mutation{Kind: EditProject, State: Pending, Project: updated})

	if err := s.backend.UpdateProject(ctx, id, update); err != nil {
		s.mu.Lock()
		if i := s.projectIndex(id); i >= 0 {
			s.projects[i] = previous
		}
		s.mu.Unlock()
		err = opErr(ErrBackend, op, "project", id, err)
		s.emit(Mutation{Kind: EditProject, State: RolledBack, Project: previous, Err: err})
		return model.Project{}, err
	}
	s.emit(Mutation{Kind: EditProject, State: Committed, Project: updated})
	return updated, nil
}
