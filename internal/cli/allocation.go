package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/existflow/sprintplan/internal/calendar"
	"github.com/existflow/sprintplan/internal/model"
	"github.com/spf13/cobra"
)

var allocationCmd = &cobra.Command{
	Use:     "allocation",
	Aliases: []string{"alloc"},
	Short:   "List and edit allocations",
}

var allocationListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List allocations",
	Long: `List allocations in sprint order, optionally filtered.

Examples:
  sprintplan allocation list
  sprintplan allocation list --employee dario
  sprintplan allocation list --sprint sprint-4`,
	RunE: runAllocationList,
}

var allocationSetDaysCmd = &cobra.Command{
	Use:   "set-days [allocation-id] [days]",
	Short: "Change the days of an allocation",
	Args:  cobra.ExactArgs(2),
	RunE:  runAllocationSetDays,
}

var allocationRmCmd = &cobra.Command{
	Use:     "rm [allocation-id]",
	Aliases: []string{"delete"},
	Short:   "Delete an allocation",
	Args:    cobra.ExactArgs(1),
	RunE:    runAllocationRm,
}

var (
	allocationEmployee string
	allocationProject  string
	allocationSprint   string
	allocationRmYes    bool
)

func init() {
	allocationListCmd.Flags().StringVarP(&allocationEmployee, "employee", "e", "", "Filter by employee")
	allocationListCmd.Flags().StringVarP(&allocationProject, "project", "P", "", "Filter by project")
	allocationListCmd.Flags().StringVarP(&allocationSprint, "sprint", "s", "", "Filter by sprint")
	allocationRmCmd.Flags().BoolVarP(&allocationRmYes, "yes", "y", false, "Delete without asking")

	allocationCmd.AddCommand(allocationListCmd)
	allocationCmd.AddCommand(allocationSetDaysCmd)
	allocationCmd.AddCommand(allocationRmCmd)
}

func runAllocationList(cmd *cobra.Command, args []string) error {
	p, err := openPlanner(cmd.Context())
	if err != nil {
		return err
	}
	defer p.Close()

	var filterEmployee, filterProject string
	if allocationEmployee != "" {
		e, err := p.employee(allocationEmployee)
		if err != nil {
			return err
		}
		filterEmployee = e.ID
	}
	if allocationProject != "" {
		pr, err := p.project(allocationProject)
		if err != nil {
			return err
		}
		filterProject = pr.ID
	}

	var rows []model.Allocation
	for _, s := range calendar.Chronological(p.store.Sprints()) {
		if allocationSprint != "" && s.ID != allocationSprint {
			continue
		}
		for _, a := range p.store.Allocations() {
			if a.SprintID != s.ID ||
				(filterEmployee != "" && a.EmployeeID != filterEmployee) ||
				(filterProject != "" && a.ProjectID != filterProject) {
				continue
			}
			rows = append(rows, a)
		}
	}

	w := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(w, "No allocations found.")
		return nil
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, HeaderStyle.Render(fmt.Sprintf("  %-8s  %-12s  %-20s  %-20s  %s", "ID", "Sprint", "Employee", "Project", "Days")))
	fmt.Fprintln(w, strings.Repeat("─", 76))
	total := 0
	for _, a := range rows {
		e, _ := p.store.Employee(a.EmployeeID)
		pr, _ := p.store.Project(a.ProjectID)
		total += a.Days
		fmt.Fprintf(w, "  %-8s  %-12s  %-20s  %s  %d\n",
			shortID(a.ID), a.SprintID, e.Name, ProjectStyle(pr.Color).Render(fmt.Sprintf("%-20s", pr.Name)), a.Days)
	}
	fmt.Fprintln(w, strings.Repeat("─", 76))
	fmt.Fprintf(w, "  %d allocations, %d days\n\n", len(rows), total)
	return nil
}

func runAllocationSetDays(cmd *cobra.Command, args []string) error {
	days, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid days %q: %w", args[1], err)
	}

	p, err := openPlanner(cmd.Context())
	if err != nil {
		return err
	}
	defer p.Close()

	a, ok := p.findAllocation(args[0])
	if !ok {
		return fmt.Errorf("allocation not found: %s", args[0])
	}
	a.Days = days
	updated, err := p.store.UpdateAllocation(cmd.Context(), p.caller, a)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Allocation %s now has %d days\n", shortID(updated.ID), updated.Days)
	return nil
}

func runAllocationRm(cmd *cobra.Command, args []string) error {
	p, err := openPlanner(cmd.Context())
	if err != nil {
		return err
	}
	defer p.Close()

	a, ok := p.findAllocation(args[0])
	if !ok {
		return fmt.Errorf("allocation not found: %s", args[0])
	}
	e, _ := p.store.Employee(a.EmployeeID)
	pr, _ := p.store.Project(a.ProjectID)

	w := cmd.OutOrStdout()
	if !allocationRmYes && interactive() {
		question := fmt.Sprintf("Delete %d days of %s on %s in %s?", a.Days, e.Name, pr.Name, a.SprintID)
		if !confirm(cmd.InOrStdin(), w, question) {
			fmt.Fprintln(w, "Cancelled.")
			return nil
		}
	}

	if err := p.store.DeleteAllocation(cmd.Context(), p.caller, a.ID); err != nil {
		return err
	}
	fmt.Fprintf(w, "🗑️  Deleted allocation %s\n", shortID(a.ID))
	return nil
}
