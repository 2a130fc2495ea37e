package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/existflow/sprintplan/internal/access"
	"github.com/existflow/sprintplan/internal/model"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	Long:  `Create and list the projects employees are allocated to.`,
}

var projectNewCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Create a new project",
	Long: `Create a new project. Its date range starts as today through three
months out and follows its allocations from then on.

Examples:
  sprintplan project new "Atlas"
  sprintplan project new "Borealis" --color red --lead mira`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectNew,
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all projects",
	RunE:    runProjectList,
}

var (
	projectColor   string
	projectLead    string
	projectTicket  string
	projectListAll bool
)

func init() {
	projectNewCmd.Flags().StringVarP(&projectColor, "color", "c", string(model.ColorBlue), "Project color (blue, green, orange, purple, red)")
	projectNewCmd.Flags().StringVar(&projectLead, "lead", "", "Lead employee")
	projectNewCmd.Flags().StringVar(&projectTicket, "ticket", "", "External ticket reference")
	projectListCmd.Flags().BoolVarP(&projectListAll, "all", "a", false, "Include archived projects")

	projectCmd.AddCommand(projectNewCmd)
	projectCmd.AddCommand(projectListCmd)
}

func runProjectNew(cmd *cobra.Command, args []string) error {
	p, err := openPlanner(cmd.Context())
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.requireSetup(access.ManageAllocations); err != nil {
		return err
	}
	color := model.ProjectColor(strings.ToLower(projectColor))
	if !color.Valid() {
		return fmt.Errorf("unknown color %q", projectColor)
	}
	leadID := ""
	if projectLead != "" {
		lead, err := p.employee(projectLead)
		if err != nil {
			return err
		}
		leadID = lead.ID
	}

	start, end := model.DefaultProjectRange(time.Now())
	project, err := p.db.CreateProject(cmd.Context(), model.Project{
		Name:      args[0],
		Color:     color,
		StartDate: start,
		EndDate:   end,
		LeadID:    leadID,
		TicketRef: projectTicket,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Created project: %s (id: %s)\n", project.Name, project.ID)
	return nil
}

func runProjectList(cmd *cobra.Command, args []string) error {
	p, err := openPlanner(cmd.Context())
	if err != nil {
		return err
	}
	defer p.Close()

	projects := p.store.Projects()
	if len(projects) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No projects found.")
		return nil
	}

	days := make(map[string]int)
	for _, a := range p.store.Allocations() {
		days[a.ProjectID] += a.Days
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w)
	fmt.Fprintln(w, HeaderStyle.Render(fmt.Sprintf("  %-8s  %-20s  %-25s  %s", "ID", "Name", "Range", "Days")))
	fmt.Fprintln(w, strings.Repeat("─", 66))

	totalDays := 0
	for _, pr := range projects {
		if pr.Archived && !projectListAll {
			continue
		}
		totalDays += days[pr.ID]
		span := fmt.Sprintf("%s → %s", pr.StartDate.Format(model.DateLayout), pr.EndDate.Format(model.DateLayout))
		if pr.StartDate.IsZero() {
			span = "-"
		}
		name := ProjectStyle(pr.Color).Render(fmt.Sprintf("%-20s", pr.Name))
		fmt.Fprintf(w, "  %-8s  %s  %-25s  %d\n", shortID(pr.ID), name, span, days[pr.ID])
	}

	fmt.Fprintln(w, strings.Repeat("─", 66))
	fmt.Fprintf(w, "  %d projects, %d allocated days\n\n", len(projects), totalDays)
	return nil
}
