package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/existflow/sprintplan/internal/calendar"
	"github.com/existflow/sprintplan/internal/capacity"
	"github.com/existflow/sprintplan/internal/model"
	"github.com/spf13/cobra"
)

var capacityCmd = &cobra.Command{
	Use:   "capacity",
	Short: "Show employee capacity for a sprint or month",
	Long: `Show available, allocated and remaining days per employee.

Without flags the active sprint is shown.

Examples:
  sprintplan capacity
  sprintplan capacity --sprint sprint-5
  sprintplan capacity --month 2025-03`,
	RunE: runCapacity,
}

var overallocatedCmd = &cobra.Command{
	Use:   "overallocated",
	Short: "List employees allocated beyond their capacity",
	RunE:  runOverallocated,
}

var (
	capacitySprint   string
	capacityMonth    string
	capacityEmployee string
)

func init() {
	capacityCmd.Flags().StringVarP(&capacitySprint, "sprint", "s", "", "Sprint id")
	capacityCmd.Flags().StringVarP(&capacityMonth, "month", "m", "", "Month (YYYY-MM)")
	capacityCmd.Flags().StringVarP(&capacityEmployee, "employee", "e", "", "Only this employee")
	capacityCmd.MarkFlagsMutuallyExclusive("sprint", "month")
}

func runCapacity(cmd *cobra.Command, args []string) error {
	p, err := openPlanner(cmd.Context())
	if err != nil {
		return err
	}
	defer p.Close()

	employees := activeEmployees(p.store.Employees())
	if capacityEmployee != "" {
		e, err := p.employee(capacityEmployee)
		if err != nil {
			return err
		}
		employees = []model.Employee{e}
	}
	w := cmd.OutOrStdout()

	if capacityMonth != "" {
		month, err := parseMonth(capacityMonth)
		if err != nil {
			return err
		}
		printMonthCapacity(w, month, employees, p.store.Allocations(), p.store.Sprints())
		return nil
	}

	var sprint model.Sprint
	if capacitySprint != "" {
		s, ok := p.store.Sprint(capacitySprint)
		if !ok {
			return fmt.Errorf("sprint not found: %s", capacitySprint)
		}
		sprint = s
	} else {
		s, ok := calendar.FindActiveSprint(p.store.Sprints(), time.Now())
		if !ok {
			return errors.New("no sprint is active today, pass --sprint")
		}
		sprint = s
	}
	printSprintCapacity(w, sprint, employees, p.store.Allocations())
	return nil
}

func runOverallocated(cmd *cobra.Command, args []string) error {
	p, err := openPlanner(cmd.Context())
	if err != nil {
		return err
	}
	defer p.Close()

	over := capacity.Overallocations(p.store.Employees(), p.store.Sprints(), p.store.Allocations())
	w := cmd.OutOrStdout()
	if len(over) == 0 {
		fmt.Fprintln(w, OkStyle.Render("No overallocations."))
		return nil
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, HeaderStyle.Render(fmt.Sprintf("  %-20s  %-12s  %9s  %9s  %s", "Employee", "Sprint", "Available", "Allocated", "Over")))
	fmt.Fprintln(w, strings.Repeat("─", 66))
	for _, u := range over {
		e, _ := p.store.Employee(u.EmployeeID)
		fmt.Fprintf(w, "  %-20s  %-12s  %9d  %9d  %s\n",
			e.Name, u.SprintID, u.Available, u.Allocated, OverStyle.Render(fmt.Sprintf("+%d", -u.Remaining)))
	}
	fmt.Fprintf(w, "\n  %d overallocated sprints\n\n", len(over))
	return nil
}

func printSprintCapacity(w io.Writer, s model.Sprint, employees []model.Employee, allocations []model.Allocation) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, HeaderStyle.Render(fmt.Sprintf("  %s  %s", s.Name, calendar.SprintDateRange(s))))
	fmt.Fprintf(w, "  %-20s  %9s  %9s  %9s\n", "Employee", "Available", "Allocated", "Remaining")
	fmt.Fprintln(w, strings.Repeat("─", 58))
	for _, e := range employees {
		u := capacity.Utilization(e, s, allocations)
		fmt.Fprintf(w, "  %-20s  %9d  %9d  %s\n",
			e.Name, u.Available, u.Allocated, LoadStyle(u.Remaining).Render(fmt.Sprintf("%9d", u.Remaining)))
	}
	fmt.Fprintln(w)
}

func printMonthCapacity(w io.Writer, month time.Time, employees []model.Employee, allocations []model.Allocation, sprints []model.Sprint) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, HeaderStyle.Render("  "+month.Format("January 2006")))
	fmt.Fprintf(w, "  %-20s  %9s  %9s  %9s\n", "Employee", "Working", "Allocated", "Remaining")
	fmt.Fprintln(w, strings.Repeat("─", 58))
	for _, e := range employees {
		working := capacity.WorkingDaysInMonth(month, &e)
		allocated := capacity.AllocationDaysForMonth(e, month, allocations, sprints)
		remaining := working - allocated
		fmt.Fprintf(w, "  %-20s  %9d  %9d  %s\n",
			e.Name, working, allocated, LoadStyle(remaining).Render(fmt.Sprintf("%9d", remaining)))
	}
	fmt.Fprintln(w)
}

func parseMonth(s string) (time.Time, error) {
	month, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, expected YYYY-MM", s)
	}
	return month, nil
}

func activeEmployees(employees []model.Employee) []model.Employee {
	var out []model.Employee
	for _, e := range employees {
		if !e.Archived {
			out = append(out, e)
		}
	}
	return out
}
