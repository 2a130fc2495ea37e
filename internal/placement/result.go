package placement

import (
	"fmt"

	"github.com/existflow/sprintplan/internal/model"
)

// Outcome classifies a placement result for reporting
type Outcome int

const (
	// Placed means every requested day landed in a single sprint
	Placed Outcome = iota
	// Split means a move spread its days over several sprints
	Split
	// Repeated means a batch created one allocation in every target sprint
	Repeated
	// Partial means some days or sprints could not be placed
	Partial
	// NoCapacity means no target sprint had a working day left
	NoCapacity
	// Failed means every attempted step failed
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Placed:
		return "placed"
	case Split:
		return "split"
	case Repeated:
		return "repeated"
	case Partial:
		return "partial"
	case NoCapacity:
		return "no capacity"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Step is one attempted allocation of a placement
type Step struct {
	SprintID   string
	Days       int
	Allocation model.Allocation
	Err        error
}

// Result reports what a placement did. Steps that succeeded stay committed
// even when later ones fail.
type Result struct {
	Outcome   Outcome
	Requested int
	Unplaced  int
	Steps     []Step
}

// Created returns the allocations that were committed
func (r Result) Created() []model.Allocation {
	var out []model.Allocation
	for _, s := range r.Steps {
		if s.Err == nil {
			out = append(out, s.Allocation)
		}
	}
	return out
}

// Failures returns the steps that failed
func (r Result) Failures() []Step {
	var out []Step
	for _, s := range r.Steps {
		if s.Err != nil {
			out = append(out, s)
		}
	}
	return out
}

// Message is a one-line, user-facing summary of the result
func (r Result) Message() string {
	created := r.Created()
	switch r.Outcome {
	case Placed:
		if len(created) == 1 {
			return fmt.Sprintf("allocated %d days to %s", created[0].Days, created[0].SprintID)
		}
		return "allocation placed"
	case Split:
		return fmt.Sprintf("allocation split across %d sprints", len(created))
	case Repeated:
		return fmt.Sprintf("allocated %d days in each of %d sprints", created[0].Days, len(created))
	case Partial:
		if failed := len(r.Failures()); failed > 0 {
			return fmt.Sprintf("allocated in %d sprints, %d failed", len(created), failed)
		}
		return fmt.Sprintf("placed %d of %d days, %d days found no capacity", r.Requested-r.Unplaced, r.Requested, r.Unplaced)
	case NoCapacity:
		return "no working days available"
	case Failed:
		if f := r.Failures(); len(f) > 0 {
			return fmt.Sprintf("failed to add allocation: %v", f[0].Err)
		}
		return "failed to add allocation"
	default:
		return r.Outcome.String()
	}
}
