package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/existflow/sprintplan/internal/calendar"
	"github.com/existflow/sprintplan/internal/model"
	"github.com/spf13/cobra"
)

// upcomingSprints is how many sprints `sprints` shows without --all
const upcomingSprints = 6

var sprintsCmd = &cobra.Command{
	Use:   "sprints",
	Short: "List sprints",
	Long: `List the generated sprints starting from the active one.

Examples:
  sprintplan sprints
  sprintplan sprints --all
  sprintplan sprints active`,
	RunE: runSprints,
}

var sprintsActiveCmd = &cobra.Command{
	Use:   "active",
	Short: "Show the sprint containing today",
	RunE:  runSprintsActive,
}

var sprintsAll bool

func init() {
	sprintsCmd.Flags().BoolVarP(&sprintsAll, "all", "a", false, "Show every generated sprint")
	sprintsCmd.AddCommand(sprintsActiveCmd)
}

func runSprints(cmd *cobra.Command, args []string) error {
	sprints := calendar.GenerateSprints(calendar.ReferenceEpoch, cfg.SprintCount)
	today := time.Now()

	shown := sprints
	if !sprintsAll {
		start := 0
		if active, ok := calendar.FindActiveSprint(sprints, today); ok {
			start = calendar.IndexOf(sprints, active.ID)
		} else if n := calendar.DaysBetween(calendar.ReferenceEpoch, today); n > 0 {
			// weekend after a closing Friday: start from the current fortnight
			start = min(n/calendar.SprintLength, len(sprints))
		}
		shown = sprints[start:min(start+upcomingSprints, len(sprints))]
	}

	if len(shown) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No sprints in range. Increase sprint_count in the config.")
		return nil
	}
	printSprints(cmd.OutOrStdout(), shown, today)
	return nil
}

func runSprintsActive(cmd *cobra.Command, args []string) error {
	sprints := calendar.GenerateSprints(calendar.ReferenceEpoch, cfg.SprintCount)
	active, ok := calendar.FindActiveSprint(sprints, time.Now())
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "No sprint is active today.")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  (%d working days)\n",
		ActiveStyle.Render(active.Name), calendar.SprintDateRange(active), len(active.WorkingDays))
	return nil
}

func printSprints(w io.Writer, sprints []model.Sprint, today time.Time) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, HeaderStyle.Render(fmt.Sprintf("  %-12s  %-18s  %s", "Sprint", "Dates", "Days")))
	fmt.Fprintln(w, strings.Repeat("─", 42))
	for _, s := range sprints {
		line := fmt.Sprintf("  %-12s  %-18s  %d", s.ID, calendar.SprintDateRange(s), len(s.WorkingDays))
		if s.Contains(today) {
			line = ActiveStyle.Render(line + "  ◀ active")
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)
}
