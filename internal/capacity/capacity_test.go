package capacity

import (
	"errors"
	"testing"
	"time"

	"github.com/existflow/sprintplan/internal/calendar"
	"github.com/existflow/sprintplan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 15, 0, 0, 0, 0, time.UTC)
}

func TestAvailableDays(t *testing.T) {
	sprints := calendar.GenerateSprints(calendar.ReferenceEpoch, 2)
	sprint1 := sprints[0]

	tests := []struct {
		name     string
		employee model.Employee
		want     int
	}{
		{"no vacation", model.Employee{ID: "e1"}, 10},
		{"one tuesday off", model.Employee{ID: "e1", VacationDates: []string{"2025-01-07"}}, 9},
		{"timestamps and duplicates", model.Employee{ID: "e1", VacationDates: []string{"2025-01-07", "2025-01-07", "2025-01-08T00:00:00.000Z"}}, 8},
		{"weekend and other sprint ignored", model.Employee{ID: "e1", VacationDates: []string{"2025-01-11", "2025-01-20"}}, 10},
		{"garbage ignored", model.Employee{ID: "e1", VacationDates: []string{"soon", ""}}, 10},
		{"archived", model.Employee{ID: "e1", Archived: true}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AvailableDays(tt.employee, sprint1))
		})
	}
}

func TestAvailableDaysNeverExceedsSprint(t *testing.T) {
	e := model.Employee{ID: "e1"}
	for _, s := range calendar.GenerateSprints(calendar.ReferenceEpoch, 30) {
		assert.LessOrEqual(t, AvailableDays(e, s), model.MaxSprintDays)
	}
}

func TestTotalAllocationDays(t *testing.T) {
	sprints := calendar.GenerateSprints(calendar.ReferenceEpoch, 2)
	e := model.Employee{ID: "e1"}
	allocations := []model.Allocation{
		{ID: "a1", EmployeeID: "e1", ProjectID: "p1", SprintID: "sprint-1", Days: 4},
		{ID: "a2", EmployeeID: "e1", ProjectID: "p2", SprintID: "sprint-1", Days: 3},
		{ID: "a3", EmployeeID: "e1", ProjectID: "p1", SprintID: "sprint-2", Days: 5},
		{ID: "a4", EmployeeID: "e2", ProjectID: "p1", SprintID: "sprint-1", Days: 9},
	}
	assert.Equal(t, 7, TotalAllocationDays(e, sprints[0], allocations))
	assert.Equal(t, 5, TotalAllocationDays(e, sprints[1], allocations))
}

func TestWorkingDaysInMonth(t *testing.T) {
	assert.Equal(t, 23, WorkingDaysInMonth(month(2025, time.January), nil))
	assert.Equal(t, 20, WorkingDaysInMonth(month(2025, time.February), nil))

	e := &model.Employee{ID: "e1", VacationDates: []string{"2025-01-07", "2025-01-07", "2025-01-11", "2025-02-03"}}
	assert.Equal(t, 22, WorkingDaysInMonth(month(2025, time.January), e))

	e.Archived = true
	assert.Equal(t, 0, WorkingDaysInMonth(month(2025, time.January), e))
}

func TestAllocationDaysForMonth(t *testing.T) {
	sprints := calendar.GenerateSprints(calendar.ReferenceEpoch, 10)
	e := model.Employee{ID: "e1"}

	// sprint-7 runs Mar 31 - Apr 11: one working day in March, nine in April
	allocations := []model.Allocation{
		{ID: "a1", EmployeeID: "e1", ProjectID: "p1", SprintID: "sprint-7", Days: 10},
		{ID: "a2", EmployeeID: "e1", ProjectID: "p2", SprintID: "sprint-7", Days: 5},
		{ID: "a3", EmployeeID: "e1", ProjectID: "p2", SprintID: "sprint-6", Days: 6},
		{ID: "a4", EmployeeID: "e2", ProjectID: "p2", SprintID: "sprint-6", Days: 6},
		{ID: "a5", EmployeeID: "e1", ProjectID: "p2", SprintID: "sprint-404", Days: 6},
	}

	// round(10*1/10) + round(5*1/10) + 6
	assert.Equal(t, 1+1+6, AllocationDaysForMonth(e, month(2025, time.March), allocations, sprints))
	// round(10*9/10) + round(5*9/10)
	assert.Equal(t, 9+5, AllocationDaysForMonth(e, month(2025, time.April), allocations, sprints))
	assert.Equal(t, 0, AllocationDaysForMonth(e, month(2025, time.June), allocations, sprints))
}

func TestAllocationDaysForMonthSkipsEmptySprints(t *testing.T) {
	sprints := []model.Sprint{{ID: "sprint-1", StartDate: calendar.ReferenceEpoch, EndDate: calendar.ReferenceEpoch.AddDate(0, 0, 11)}}
	e := model.Employee{ID: "e1"}
	allocations := []model.Allocation{{ID: "a1", EmployeeID: "e1", SprintID: "sprint-1", Days: 5}}
	assert.Equal(t, 0, AllocationDaysForMonth(e, month(2025, time.January), allocations, sprints))
}

func TestArchivedEmployeeHasNoCapacity(t *testing.T) {
	sprints := calendar.GenerateSprints(calendar.ReferenceEpoch, 26)
	e := model.Employee{ID: "e1", Archived: true}
	allocations := []model.Allocation{{ID: "a1", EmployeeID: "e1", SprintID: "sprint-3", Days: 8}}

	for _, s := range sprints {
		assert.Equal(t, 0, AvailableDays(e, s))
		assert.Equal(t, Summary{EmployeeID: "e1", SprintID: s.ID}, Utilization(e, s, allocations))
	}
	for m := time.January; m <= time.December; m++ {
		assert.Equal(t, 0, AllocationDaysForMonth(e, month(2025, m), allocations, sprints))
	}
}

func TestUtilizationAndOverallocations(t *testing.T) {
	sprints := calendar.GenerateSprints(calendar.ReferenceEpoch, 2)
	employees := []model.Employee{
		{ID: "e1", VacationDates: []string{"2025-01-06", "2025-01-07"}},
		{ID: "e2"},
		{ID: "e3", Archived: true},
	}
	allocations := []model.Allocation{
		{ID: "a1", EmployeeID: "e1", SprintID: "sprint-1", Days: 9},
		{ID: "a2", EmployeeID: "e2", SprintID: "sprint-1", Days: 10},
		{ID: "a3", EmployeeID: "e3", SprintID: "sprint-1", Days: 10},
	}

	u := Utilization(employees[0], sprints[0], allocations)
	assert.Equal(t, Summary{EmployeeID: "e1", SprintID: "sprint-1", Available: 8, Allocated: 9, Remaining: -1, Overallocated: true}, u)

	over := Overallocations(employees, sprints, allocations)
	require.Len(t, over, 1)
	assert.Equal(t, "e1", over[0].EmployeeID)
}

func TestQuickAllocateGuard(t *testing.T) {
	err := CheckRemaining(10, 7, 5)
	var w *Warning
	require.True(t, errors.As(err, &w))
	assert.Equal(t, 5, w.Requested)
	assert.Equal(t, 3, w.Available)

	assert.NoError(t, CheckRemaining(10, 7, 3))

	sprint := calendar.GenerateSprints(calendar.ReferenceEpoch, 1)[0]
	e := model.Employee{ID: "e1"}
	allocations := []model.Allocation{{ID: "a1", EmployeeID: "e1", SprintID: "sprint-1", Days: 7}}
	err = CheckQuickAllocate(e, sprint, allocations, 5)
	require.True(t, errors.As(err, &w))
	assert.Equal(t, "sprint-1", w.SprintID)
	assert.Contains(t, w.Error(), "5 days requested in sprint-1, 3 available")
}
