package placement

import (
	"context"
	"fmt"

	"github.com/existflow/sprintplan/internal/access"
	"github.com/existflow/sprintplan/internal/capacity"
	"github.com/existflow/sprintplan/internal/logger"
	"github.com/existflow/sprintplan/internal/model"
	"github.com/existflow/sprintplan/internal/store"
)

// DefaultDragDays is the quantity a drag carries when none is given
const DefaultDragDays = model.MaxSprintDays

// DragItem is what the caller dropped onto a sprint. AllocationID and
// SourceSprintID are set when an existing allocation is being moved; they
// are empty for a fresh drag from the project list.
type DragItem struct {
	AllocationID   string `json:"allocation_id,omitempty"`
	SourceSprintID string `json:"source_sprint_id,omitempty"`
	EmployeeID     string `json:"employee_id"`
	ProjectID      string `json:"project_id"`
	Days           int    `json:"days,omitempty"`
}

// MoveAllocation drops item on targetSprintID.
//
// A moved allocation is deleted first. Its days are then placed greedily
// from the target sprint forward: each sprint takes as many days as the
// employee has working days there (vacation excluded), sprints without any
// are skipped, and the walk stops once every day is placed or sprints run
// out. Nothing is truncated silently; unplaced days are reported.
//
// Unlike Allocate, a move always stops at its first failed step;
// WithHaltOnError does not apply.
//
// The employee, the project and a moved allocation are all resolved before
// anything is deleted. A moved allocation must belong to item's employee and
// project.
func (e *Engine) MoveAllocation(ctx context.Context, caller access.Caller, item DragItem, targetSprintID string) (Result, error) {
	const op = "move"
	emp, _, err := e.preflight(caller, op, item.EmployeeID, item.ProjectID)
	if err != nil {
		return Result{}, err
	}
	forward, err := e.sprintsFrom(op, targetSprintID)
	if err != nil {
		return Result{}, err
	}
	moving := item.AllocationID != "" && item.SourceSprintID != ""
	if moving {
		a, ok := e.store.Allocation(item.AllocationID)
		if !ok {
			return Result{}, &store.OpError{Op: op, Resource: "allocation", ID: item.AllocationID, Kind: store.ErrNotFound}
		}
		if a.EmployeeID != item.EmployeeID || a.ProjectID != item.ProjectID {
			return Result{}, &store.OpError{Op: op, Resource: "allocation", ID: a.ID, Kind: store.ErrValidation,
				Err: fmt.Errorf("allocation belongs to employee %s on project %s", a.EmployeeID, a.ProjectID)}
		}
	}

	log := e.log.WithFields(
		logger.F("employee", item.EmployeeID),
		logger.F("project", item.ProjectID),
		logger.F("target", targetSprintID))

	if moving {
		if err := e.store.DeleteAllocation(ctx, caller, item.AllocationID); err != nil {
			log.Warn("Failed to remove moved allocation", logger.F("allocation", item.AllocationID), logger.F("error", err))
			return Result{}, err
		}
	}

	remaining := item.Days
	if remaining <= 0 {
		remaining = DefaultDragDays
	}
	res := Result{Requested: remaining}

	for _, s := range forward {
		if remaining <= 0 {
			break
		}
		available := capacity.AvailableDays(emp, s)
		if available <= 0 {
			log.Debug("Skipping sprint without capacity", logger.F("sprint", s.ID))
			continue
		}
		days := min(remaining, available)
		a, err := e.store.AddAllocation(ctx, caller, item.EmployeeID, item.ProjectID, s.ID, days)
		res.Steps = append(res.Steps, Step{SprintID: s.ID, Days: days, Allocation: a, Err: err})
		if err != nil {
			log.Error("Move stopped on failed step", logger.F("sprint", s.ID), logger.F("error", err))
			break
		}
		remaining -= days
	}
	res.Unplaced = remaining

	created := len(res.Created())
	switch {
	case created == 0 && len(res.Failures()) > 0:
		res.Outcome = Failed
	case created == 0:
		res.Outcome = NoCapacity
	case remaining > 0 || len(res.Failures()) > 0:
		res.Outcome = Partial
	case created == 1:
		res.Outcome = Placed
	default:
		res.Outcome = Split
	}
	log.Info("Move finished", logger.F("outcome", res.Outcome), logger.F("sprints", created), logger.F("unplaced", res.Unplaced))
	return res, nil
}
