package capacity

import (
	"fmt"

	"github.com/existflow/sprintplan/internal/model"
)

// Summary is an employee's load in one sprint
type Summary struct {
	EmployeeID    string `json:"employee_id"`
	SprintID      string `json:"sprint_id"`
	Available     int    `json:"available"`
	Allocated     int    `json:"allocated"`
	Remaining     int    `json:"remaining"`
	Overallocated bool   `json:"overallocated"`
}

// Utilization summarizes the employee's load in the sprint.
// Overallocation is reported, never prevented.
func Utilization(e model.Employee, s model.Sprint, allocations []model.Allocation) Summary {
	sum := Summary{EmployeeID: e.ID, SprintID: s.ID}
	if e.Archived {
		return sum
	}
	sum.Available = AvailableDays(e, s)
	sum.Allocated = TotalAllocationDays(e, s, allocations)
	sum.Remaining = sum.Available - sum.Allocated
	sum.Overallocated = sum.Allocated > sum.Available
	return sum
}

// Overallocations lists every overallocated (employee, sprint) pair among
// active employees, in employee then sprint order
func Overallocations(employees []model.Employee, sprints []model.Sprint, allocations []model.Allocation) []Summary {
	var out []Summary
	for _, e := range employees {
		if e.Archived {
			continue
		}
		for _, s := range sprints {
			if u := Utilization(e, s, allocations); u.Overallocated {
				out = append(out, u)
			}
		}
	}
	return out
}

// Warning reports a request for more days than an employee has left in a
// sprint. It asks the caller for confirmation and never aborts on its own.
type Warning struct {
	EmployeeID string `json:"employee_id,omitempty"`
	SprintID   string `json:"sprint_id,omitempty"`
	Requested  int    `json:"requested"`
	Available  int    `json:"available"`
}

func (w *Warning) Error() string {
	if w.SprintID == "" {
		return fmt.Sprintf("capacity warning: %d days requested, %d available", w.Requested, w.Available)
	}
	return fmt.Sprintf("capacity warning: %d days requested in %s, %d available", w.Requested, w.SprintID, w.Available)
}

// CheckRemaining is the caller-side guard for quick allocation: it refuses
// days beyond available minus already allocated
func CheckRemaining(available, allocated, days int) error {
	remaining := available - allocated
	if days > remaining {
		return &Warning{Requested: days, Available: remaining}
	}
	return nil
}

// CheckQuickAllocate applies CheckRemaining to the employee's load in the sprint
func CheckQuickAllocate(e model.Employee, s model.Sprint, allocations []model.Allocation, days int) error {
	u := Utilization(e, s, allocations)
	if err := CheckRemaining(u.Available, u.Allocated, days); err != nil {
		w := err.(*Warning)
		w.EmployeeID, w.SprintID = e.ID, s.ID
		return w
	}
	return nil
}
