package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/existflow/sprintplan/internal/capacity"
	"github.com/existflow/sprintplan/internal/logger"
	"github.com/existflow/sprintplan/internal/placement"
	"github.com/spf13/cobra"
)

var allocateCmd = &cobra.Command{
	Use:   "allocate [employee] [project] [sprint] [days]",
	Short: "Allocate days of an employee to a project",
	Long: `Allocate the same number of days in one or more sprints.

Asking for more days than the employee has left in the selected sprint
prompts for confirmation (or needs --yes when not run from a terminal).
--quick refuses such requests outright.

Examples:
  sprintplan allocate dario atlas sprint-4 5
  sprintplan allocate dario atlas sprint-4 3 --repeat next-n --count 4
  sprintplan allocate dario atlas sprint-4 2 --repeat until-end
  sprintplan allocate dario atlas sprint-4 4 --quick`,
	Args: cobra.ExactArgs(4),
	RunE: runAllocate,
}

var moveCmd = &cobra.Command{
	Use:   "move [allocation-id|-] [target-sprint]",
	Short: "Move an allocation, overflowing into later sprints",
	Long: `Move an allocation to another sprint. Days that do not fit the employee's
working days in the target sprint continue into the following sprints.

Pass - instead of an allocation id to place a fresh drag of --days
(default 10) for --employee on --project.

Examples:
  sprintplan move 3f2a91c0 sprint-6
  sprintplan move - sprint-6 --employee dario --project atlas --days 15`,
	Args: cobra.ExactArgs(2),
	RunE: runMove,
}

var (
	allocateRepeat string
	allocateCount  int
	allocateYes    bool
	allocateQuick  bool

	moveEmployee string
	moveProject  string
	moveDays     int
)

func init() {
	allocateCmd.Flags().StringVar(&allocateRepeat, "repeat", "single", "Sprints to cover: single, next-n, until-end")
	allocateCmd.Flags().IntVarP(&allocateCount, "count", "n", 1, fmt.Sprintf("Number of sprints for next-n (max %d)", placement.MaxRepeat))
	allocateCmd.Flags().BoolVarP(&allocateYes, "yes", "y", false, "Allocate beyond remaining capacity without asking")
	allocateCmd.Flags().BoolVar(&allocateQuick, "quick", false, "Single sprint, refuse days beyond remaining capacity")

	moveCmd.Flags().StringVarP(&moveEmployee, "employee", "e", "", "Employee for a fresh drag")
	moveCmd.Flags().StringVarP(&moveProject, "project", "P", "", "Project for a fresh drag")
	moveCmd.Flags().IntVarP(&moveDays, "days", "d", placement.DefaultDragDays, "Days to place")
}

func runAllocate(cmd *cobra.Command, args []string) error {
	days, err := strconv.Atoi(args[3])
	if err != nil {
		return fmt.Errorf("invalid days %q: %w", args[3], err)
	}

	p, err := openPlanner(cmd.Context())
	if err != nil {
		return err
	}
	defer p.Close()

	e, err := p.employee(args[0])
	if err != nil {
		return err
	}
	project, err := p.project(args[1])
	if err != nil {
		return err
	}
	sprintID := args[2]
	w := cmd.OutOrStdout()

	if allocateQuick {
		sprint, ok := p.store.Sprint(sprintID)
		if !ok {
			return fmt.Errorf("sprint not found: %s", sprintID)
		}
		u := capacity.Utilization(e, sprint, p.store.Allocations())
		if err := capacity.CheckRemaining(u.Available, u.Allocated, days); err != nil {
			return fmt.Errorf("%w; only %d days left for %s in %s", err, u.Remaining, e.Name, sprint.ID)
		}
		a, err := p.engine.QuickAllocate(cmd.Context(), p.caller, e.ID, project.ID, sprintID, days)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "✓ Allocated %d days of %s to %s in %s (id: %s)\n", a.Days, e.Name, project.Name, a.SprintID, shortID(a.ID))
		return nil
	}

	mode, err := placement.ParseRepeatMode(allocateRepeat)
	if err != nil {
		return err
	}
	req := placement.Request{
		EmployeeID: e.ID,
		ProjectID:  project.ID,
		SprintID:   sprintID,
		Days:       days,
		Repeat:     mode,
		Count:      allocateCount,
		Confirmed:  allocateYes || !cfg.ConfirmOverallocation,
	}

	res, err := p.engine.Allocate(cmd.Context(), p.caller, req)
	var warning *capacity.Warning
	if errors.As(err, &warning) {
		if !interactive() {
			return fmt.Errorf("%w (rerun with --yes to allocate anyway)", err)
		}
		if !confirm(cmd.InOrStdin(), w, OverStyle.Render(warning.Error())+". Allocate anyway?") {
			fmt.Fprintln(w, "Cancelled.")
			return nil
		}
		logger.Info("Overallocation confirmed", logger.F("employee", e.ID), logger.F("sprint", sprintID), logger.F("days", days))
		req.Confirmed = true
		res, err = p.engine.Allocate(cmd.Context(), p.caller, req)
	}
	if err != nil {
		return err
	}

	printResult(w, res)
	if res.Outcome == placement.Failed {
		return errors.New(res.Message())
	}
	return nil
}

func runMove(cmd *cobra.Command, args []string) error {
	p, err := openPlanner(cmd.Context())
	if err != nil {
		return err
	}
	defer p.Close()

	var item placement.DragItem
	if args[0] != "-" {
		a, ok := p.findAllocation(args[0])
		if !ok {
			return fmt.Errorf("allocation not found: %s", args[0])
		}
		item = placement.DragItem{
			AllocationID:   a.ID,
			SourceSprintID: a.SprintID,
			EmployeeID:     a.EmployeeID,
			ProjectID:      a.ProjectID,
			Days:           a.Days,
		}
		if cmd.Flags().Changed("days") {
			item.Days = moveDays
		}
	} else {
		if moveEmployee == "" || moveProject == "" {
			return errors.New("a fresh drag needs --employee and --project")
		}
		e, err := p.employee(moveEmployee)
		if err != nil {
			return err
		}
		project, err := p.project(moveProject)
		if err != nil {
			return err
		}
		item = placement.DragItem{EmployeeID: e.ID, ProjectID: project.ID, Days: moveDays}
	}

	res, err := p.engine.MoveAllocation(cmd.Context(), p.caller, item, args[1])
	if err != nil {
		return err
	}

	printResult(cmd.OutOrStdout(), res)
	if res.Outcome == placement.Failed {
		return errors.New(res.Message())
	}
	return nil
}

func printResult(w io.Writer, res placement.Result) {
	switch res.Outcome {
	case placement.Placed, placement.Split, placement.Repeated:
		fmt.Fprintln(w, OkStyle.Render("✓ "+res.Message()))
	case placement.Partial, placement.NoCapacity:
		fmt.Fprintln(w, WarnStyle.Render("! "+res.Message()))
	default:
		fmt.Fprintln(w, OverStyle.Render("✗ "+res.Message()))
	}
	if len(res.Steps) < 2 && res.Outcome != placement.Partial {
		return
	}
	for _, s := range res.Steps {
		if s.Err != nil {
			fmt.Fprintf(w, "  %-12s  %2d days  %s\n", s.SprintID, s.Days, OverStyle.Render(s.Err.Error()))
			continue
		}
		fmt.Fprintf(w, "  %-12s  %2d days  %s\n", s.SprintID, s.Days, MutedStyle.Render(shortID(s.Allocation.ID)))
	}
}
