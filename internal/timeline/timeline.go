// Package timeline derives project date ranges from the sprints their
// allocations touch.
package timeline

import (
	"strings"

	"github.com/existflow/sprintplan/internal/calendar"
	"github.com/existflow/sprintplan/internal/model"
)

// Order selects how sprint ids are compared when looking for a project's
// earliest and latest sprint
type Order int

const (
	// NumericOrder compares the numeric suffix, so sprint-2 < sprint-10
	NumericOrder Order = iota
	// LexicalOrder compares ids as strings, so sprint-10 < sprint-2.
	// It reproduces ranges computed by earlier releases.
	LexicalOrder
)

// ParseOrder maps a config flag to an Order
func ParseOrder(legacy bool) Order {
	if legacy {
		return LexicalOrder
	}
	return NumericOrder
}

func (o Order) less(a, b string) bool {
	if o == LexicalOrder {
		return strings.Compare(a, b) < 0
	}
	na, _ := calendar.SprintNumber(a)
	nb, _ := calendar.SprintNumber(b)
	return na < nb
}

func (o Order) accepts(id string) bool {
	if o == LexicalOrder {
		return id != ""
	}
	_, ok := calendar.SprintNumber(id)
	return ok
}

type span struct {
	first, last string
}

// CalculateProjectDateRanges returns a copy of projects whose StartDate and
// EndDate span from the start of their earliest allocated sprint to the end
// of their latest one. Projects without allocations, or whose bounding
// sprints cannot be resolved, keep their current range.
func CalculateProjectDateRanges(projects []model.Project, allocations []model.Allocation, sprints []model.Sprint, order Order) []model.Project {
	spans := make(map[string]span)
	for _, a := range allocations {
		if !order.accepts(a.SprintID) {
			continue
		}
		sp, ok := spans[a.ProjectID]
		if !ok {
			spans[a.ProjectID] = span{first: a.SprintID, last: a.SprintID}
			continue
		}
		if order.less(a.SprintID, sp.first) {
			sp.first = a.SprintID
		}
		if order.less(sp.last, a.SprintID) {
			sp.last = a.SprintID
		}
		spans[a.ProjectID] = sp
	}

	out := make([]model.Project, len(projects))
	for i, p := range projects {
		out[i] = p
		sp, ok := spans[p.ID]
		if !ok {
			continue
		}
		first, okFirst := calendar.Find(sprints, sp.first)
		last, okLast := calendar.Find(sprints, sp.last)
		if !okFirst || !okLast {
			continue
		}
		out[i].StartDate = first.StartDate
		out[i].EndDate = last.EndDate
	}
	return out
}

// Changed returns the projects in after whose range differs from the
// project with the same position in before
func Changed(before, after []model.Project) []model.Project {
	var out []model.Project
	for i := range after {
		if i >= len(before) || !before[i].StartDate.Equal(after[i].StartDate) || !before[i].EndDate.Equal(after[i].EndDate) {
			out = append(out, after[i])
		}
	}
	return out
}
