package placement

import (
	"context"
	"fmt"
	"strings"

	"github.com/existflow/sprintplan/internal/access"
	"github.com/existflow/sprintplan/internal/capacity"
	"github.com/existflow/sprintplan/internal/logger"
	"github.com/existflow/sprintplan/internal/model"
	"github.com/existflow/sprintplan/internal/store"
)

// MaxRepeat caps the number of sprints a next-N batch may cover
const MaxRepeat = 26

// RepeatMode selects the sprints a batch allocation covers
type RepeatMode int

const (
	// Single covers only the selected sprint
	Single RepeatMode = iota
	// NextN covers the selected sprint and the following N-1
	NextN
	// UntilProjectEnd covers the selected sprint and every later sprint
	// starting on or before the project's end date
	UntilProjectEnd
)

func (m RepeatMode) String() string {
	switch m {
	case Single:
		return "single"
	case NextN:
		return "next-n"
	case UntilProjectEnd:
		return "until-end"
	default:
		return "unknown"
	}
}

// ParseRepeatMode reads a repeat mode name
func ParseRepeatMode(s string) (RepeatMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "single":
		return Single, nil
	case "next-n", "next":
		return NextN, nil
	case "until-end", "until-project-end":
		return UntilProjectEnd, nil
	default:
		return Single, fmt.Errorf("unknown repeat mode %q", s)
	}
}

// Request is a detailed allocation of the same days in one or more sprints
type Request struct {
	EmployeeID string
	ProjectID  string
	SprintID   string
	Days       int
	Repeat     RepeatMode
	// Count is N for NextN, capped at MaxRepeat
	Count int
	// Confirmed acknowledges a capacity warning for the selected sprint
	Confirmed bool
}

// Allocate creates one allocation of req.Days in every target sprint of
// req, in chronological order.
//
// When req.Days exceeds the employee's remaining days in the selected sprint
// and req.Confirmed is false, nothing is created and a *capacity.Warning is
// returned so the caller can ask for confirmation. Remaining means available
// days minus days already allocated there, so a sprint that is already full
// warns on any further allocation. Failed steps are recorded
// in the result and, unless the engine halts on error, the batch continues.
func (e *Engine) Allocate(ctx context.Context, caller access.Caller, req Request) (Result, error) {
	const op = "allocate"
	emp, project, err := e.preflight(caller, op, req.EmployeeID, req.ProjectID)
	if err != nil {
		return Result{}, err
	}
	if req.Days <= 0 {
		return Result{}, &store.OpError{Op: op, Resource: "allocation", Kind: store.ErrValidation, Err: fmt.Errorf("days must be positive, got %d", req.Days)}
	}
	forward, err := e.sprintsFrom(op, req.SprintID)
	if err != nil {
		return Result{}, err
	}

	if !req.Confirmed {
		if err := capacity.CheckQuickAllocate(emp, forward[0], e.store.Allocations(), req.Days); err != nil {
			return Result{}, err
		}
	}

	targets := targetSprints(forward, req, project)
	log := e.log.WithFields(
		logger.F("employee", req.EmployeeID),
		logger.F("project", req.ProjectID),
		logger.F("repeat", req.Repeat))

	res := Result{Requested: req.Days * len(targets)}
	for _, s := range targets {
		a, err := e.store.AddAllocation(ctx, caller, req.EmployeeID, req.ProjectID, s.ID, req.Days)
		res.Steps = append(res.Steps, Step{SprintID: s.ID, Days: req.Days, Allocation: a, Err: err})
		if err != nil {
			res.Unplaced += req.Days
			log.Warn("Batch step failed", logger.F("sprint", s.ID), logger.F("error", err))
			if e.haltOnError {
				break
			}
		}
	}

	created, failed := len(res.Created()), len(res.Failures())
	switch {
	case created == 0:
		res.Outcome = Failed
	case failed > 0 || len(res.Steps) < len(targets):
		res.Outcome = Partial
		res.Unplaced = res.Requested - created*req.Days
	case created == 1:
		res.Outcome = Placed
	default:
		res.Outcome = Repeated
	}
	log.Info("Batch finished", logger.F("outcome", res.Outcome), logger.F("created", created), logger.F("failed", failed))
	return res, nil
}

// targetSprints picks the sprints a request covers from forward, which
// starts at the selected sprint
func targetSprints(forward []model.Sprint, req Request, project model.Project) []model.Sprint {
	switch req.Repeat {
	case NextN:
		n := min(max(req.Count, 1), MaxRepeat, len(forward))
		return forward[:n]
	case UntilProjectEnd:
		if project.EndDate.IsZero() {
			return forward[:1]
		}
		n := 1
		for n < len(forward) && !forward[n].StartDate.After(project.EndDate) {
			n++
		}
		return forward[:n]
	default:
		return forward[:1]
	}
}
