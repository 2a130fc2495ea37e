// Package capacity computes available, allocated and remaining days for an
// employee against a sprint or a calendar month.
//
// All functions are pure. Archived employees contribute zero capacity and
// zero utilization.
package capacity

import (
	"math"
	"time"

	"github.com/existflow/sprintplan/internal/calendar"
	"github.com/existflow/sprintplan/internal/model"
)

// AvailableDays counts the sprint's working days the employee is not on vacation
func AvailableDays(e model.Employee, s model.Sprint) int {
	if e.Archived {
		return 0
	}
	vacation := e.VacationSet()
	available := 0
	for _, d := range s.WorkingDays {
		if _, off := vacation[d.Format(model.DateLayout)]; !off {
			available++
		}
	}
	return available
}

// TotalAllocationDays sums the days of every allocation of the employee in
// the sprint, regardless of project
func TotalAllocationDays(e model.Employee, s model.Sprint, allocations []model.Allocation) int {
	total := 0
	for _, a := range allocations {
		if a.EmployeeID == e.ID && a.SprintID == s.ID {
			total += a.Days
		}
	}
	return total
}

// WorkingDaysInMonth counts the weekdays of month's calendar month minus the
// employee's vacation weekdays inside it. e may be nil.
func WorkingDaysInMonth(month time.Time, e *model.Employee) int {
	if e != nil && e.Archived {
		return 0
	}
	first, last := monthBounds(month)

	days := 0
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if isWeekday(d) {
			days++
		}
	}
	if e == nil {
		return days
	}

	for v := range e.VacationSet() {
		d, err := time.Parse(model.DateLayout, v)
		if err != nil {
			continue
		}
		if !d.Before(first) && !d.After(last) && isWeekday(d) {
			days--
		}
	}
	return days
}

// AllocationDaysForMonth prorates the employee's allocations into month.
//
// Each allocation contributes round(days * overlap / sprintDays) where overlap
// is the number of the sprint's working days inside the month and sprintDays
// the sprint's total working days. Allocations whose sprint cannot be resolved
// and sprints without working days are skipped.
func AllocationDaysForMonth(e model.Employee, month time.Time, allocations []model.Allocation, sprints []model.Sprint) int {
	if e.Archived {
		return 0
	}
	byID := make(map[string]model.Sprint, len(sprints))
	for _, s := range sprints {
		byID[s.ID] = s
	}
	first, last := monthBounds(month)

	total := 0
	for _, a := range allocations {
		if a.EmployeeID != e.ID {
			continue
		}
		s, ok := byID[a.SprintID]
		if !ok || len(s.WorkingDays) == 0 {
			continue
		}
		from, to := maxTime(first, s.StartDate), minTime(last, s.EndDate)
		if from.After(to) {
			continue
		}
		overlap := 0
		for _, d := range s.WorkingDays {
			if !d.Before(from) && !d.After(to) {
				overlap++
			}
		}
		total += int(math.Round(float64(a.Days) * float64(overlap) / float64(len(s.WorkingDays))))
	}
	return total
}

func monthBounds(month time.Time) (time.Time, time.Time) {
	d := calendar.Day(month)
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

func isWeekday(d time.Time) bool {
	wd := d.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
