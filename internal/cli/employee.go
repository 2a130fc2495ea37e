package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/existflow/sprintplan/internal/access"
	"github.com/existflow/sprintplan/internal/model"
	"github.com/spf13/cobra"
)

var employeeCmd = &cobra.Command{
	Use:     "employee",
	Aliases: []string{"emp"},
	Short:   "Manage employees",
	Long:    `Add, list and edit the people whose time is planned.`,
}

var employeeAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add an employee",
	Long: `Add an employee. The first employee may be added by anyone; after that
the caller must be an admin or hold a manager role.

Examples:
  sprintplan employee add "Mira Chen" --role Manager --admin
  sprintplan employee add "Dario" --role Developer`,
	Args: cobra.ExactArgs(1),
	RunE: runEmployeeAdd,
}

var employeeListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List employees",
	RunE:    runEmployeeList,
}

var employeeVacationCmd = &cobra.Command{
	Use:   "vacation",
	Short: "Manage vacation days",
}

var employeeVacationAddCmd = &cobra.Command{
	Use:   "add [employee] [date...]",
	Short: "Add vacation days (YYYY-MM-DD)",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runVacationAdd,
}

var employeeVacationRmCmd = &cobra.Command{
	Use:     "rm [employee] [date...]",
	Aliases: []string{"remove"},
	Short:   "Remove vacation days",
	Args:    cobra.MinimumNArgs(2),
	RunE:    runVacationRm,
}

var employeeArchiveCmd = &cobra.Command{
	Use:   "archive [employee]",
	Short: "Archive an employee",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmployeeArchive,
}

var (
	employeeRole    string
	employeeAdmin   bool
	employeeImage   string
	employeeListAll bool
	employeeRestore bool
)

func init() {
	employeeAddCmd.Flags().StringVarP(&employeeRole, "role", "r", string(model.RoleDeveloper), "Role")
	employeeAddCmd.Flags().BoolVar(&employeeAdmin, "admin", false, "Grant admin rights")
	employeeAddCmd.Flags().StringVar(&employeeImage, "image", "", "Avatar image URL")
	employeeListCmd.Flags().BoolVarP(&employeeListAll, "all", "a", false, "Include archived employees")
	employeeArchiveCmd.Flags().BoolVar(&employeeRestore, "restore", false, "Restore an archived employee")

	employeeVacationCmd.AddCommand(employeeVacationAddCmd)
	employeeVacationCmd.AddCommand(employeeVacationRmCmd)

	employeeCmd.AddCommand(employeeAddCmd)
	employeeCmd.AddCommand(employeeListCmd)
	employeeCmd.AddCommand(employeeVacationCmd)
	employeeCmd.AddCommand(employeeArchiveCmd)
}

func runEmployeeAdd(cmd *cobra.Command, args []string) error {
	p, err := openPlanner(cmd.Context())
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.requireSetup(access.EditEmployee); err != nil {
		return err
	}
	role := model.Role(employeeRole)
	if !role.Valid() {
		return fmt.Errorf("unknown role %q (known: %s)", employeeRole, joinRoles())
	}

	e, err := p.db.CreateEmployee(cmd.Context(), model.Employee{
		Name:     args[0],
		Role:     role,
		ImageURL: employeeImage,
		IsAdmin:  employeeAdmin,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Added employee: %s (id: %s)\n", e.Name, e.ID)
	return nil
}

func runEmployeeList(cmd *cobra.Command, args []string) error {
	p, err := openPlanner(cmd.Context())
	if err != nil {
		return err
	}
	defer p.Close()

	employees := p.store.Employees()
	if len(employees) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No employees found. Add one with: sprintplan employee add \"Name\"")
		return nil
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w)
	fmt.Fprintln(w, HeaderStyle.Render(fmt.Sprintf("  %-8s  %-20s  %-26s  %s", "ID", "Name", "Role", "Vacation")))
	fmt.Fprintln(w, strings.Repeat("─", 70))
	shown := 0
	for _, e := range employees {
		if e.Archived && !employeeListAll {
			continue
		}
		shown++
		name := e.Name
		if e.IsAdmin {
			name += " *"
		}
		line := fmt.Sprintf("  %-8s  %-20s  %-26s  %d days", shortID(e.ID), name, e.Role, len(e.VacationSet()))
		if e.Archived {
			line = MutedStyle.Render(line + "  (archived)")
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w, strings.Repeat("─", 70))
	fmt.Fprintf(w, "  %d employees\n\n", shown)
	return nil
}

func runVacationAdd(cmd *cobra.Command, args []string) error {
	return editVacation(cmd, args[0], args[1:], true)
}

func runVacationRm(cmd *cobra.Command, args []string) error {
	return editVacation(cmd, args[0], args[1:], false)
}

func editVacation(cmd *cobra.Command, ref string, dates []string, add bool) error {
	p, err := openPlanner(cmd.Context())
	if err != nil {
		return err
	}
	defer p.Close()

	e, err := p.employee(ref)
	if err != nil {
		return err
	}

	for _, d := range dates {
		if model.NormalizeDate(d) == "" {
			return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", d)
		}
	}
	vacations := mergeVacation(e.VacationDates, dates, add)

	updated, err := p.store.UpdateEmployee(cmd.Context(), p.caller, e.ID, model.EmployeeUpdate{VacationDates: &vacations})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s now has %d vacation days\n", updated.Name, len(updated.VacationDates))
	return nil
}

// mergeVacation adds or removes dates, returning a sorted, de-duplicated list
func mergeVacation(current, dates []string, add bool) []string {
	set := make(map[string]struct{}, len(current)+len(dates))
	for _, d := range current {
		if n := model.NormalizeDate(d); n != "" {
			set[n] = struct{}{}
		}
	}
	for _, d := range dates {
		n := model.NormalizeDate(d)
		if add {
			set[n] = struct{}{}
		} else {
			delete(set, n)
		}
	}
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}

func runEmployeeArchive(cmd *cobra.Command, args []string) error {
	p, err := openPlanner(cmd.Context())
	if err != nil {
		return err
	}
	defer p.Close()

	e, err := p.employee(args[0])
	if err != nil {
		return err
	}
	archived := !employeeRestore
	if _, err := p.store.UpdateEmployee(cmd.Context(), p.caller, e.ID, model.EmployeeUpdate{Archived: &archived}); err != nil {
		return err
	}

	if archived {
		fmt.Fprintf(cmd.OutOrStdout(), "Archived: %s\n", e.Name)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Restored: %s\n", e.Name)
	}
	return nil
}

func joinRoles() string {
	names := make([]string, len(model.Roles))
	for i, r := range model.Roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}
