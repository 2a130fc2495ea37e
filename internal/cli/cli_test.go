package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/existflow/sprintplan/internal/model"
	"github.com/existflow/sprintplan/internal/placement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestPlanningSession(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SPRINTPLAN_DB_PATH", filepath.Join(home, "planner.db"))
	t.Setenv("SPRINTPLAN_LOG_FILE", filepath.Join(home, "sprintplan.log"))

	out, err := execute(t, "employee", "add", "Mira", "--role", "Manager", "--admin=true")
	require.NoError(t, err)
	assert.Contains(t, out, "Added employee: Mira")

	_, err = execute(t, "employee", "add", "Dario", "--role", "Developer", "--admin=false", "--as", "Mira")
	require.NoError(t, err)

	out, err = execute(t, "project", "new", "Atlas", "--color", "green", "--lead", "Mira", "--as", "Mira")
	require.NoError(t, err)
	assert.Contains(t, out, "Created project: Atlas")

	out, err = execute(t, "allocate", "Dario", "Atlas", "sprint-3", "4",
		"--repeat", "next-n", "--count", "2", "--quick=false", "--yes=false", "--as", "Mira")
	require.NoError(t, err)
	assert.Contains(t, out, "allocated 4 days in each of 2 sprints")

	out, err = execute(t, "allocation", "list", "--employee", "dario")
	require.NoError(t, err)
	assert.Contains(t, out, "sprint-3")
	assert.Contains(t, out, "sprint-4")
	assert.Contains(t, out, "2 allocations, 8 days")

	_, err = execute(t, "allocate", "Dario", "Atlas", "sprint-3", "8", "--quick=true", "--as", "Mira")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only 6 days left")

	_, err = execute(t, "allocate", "Dario", "Atlas", "sprint-5", "2", "--quick=true", "--as", "Dario")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")

	out, err = execute(t, "capacity", "--sprint", "sprint-3")
	require.NoError(t, err)
	assert.Contains(t, out, "Sprint 3")
	assert.Contains(t, out, "Dario")

	out, err = execute(t, "overallocated")
	require.NoError(t, err)
	assert.Contains(t, out, "No overallocations.")

	out, err = execute(t, "project", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "2025-02-03 → 2025-02-28")
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	assert.True(t, confirm(strings.NewReader("y\n"), &out, "Go?"))
	assert.True(t, confirm(strings.NewReader("YES\n"), &out, "Go?"))
	assert.False(t, confirm(strings.NewReader("n\n"), &out, "Go?"))
	assert.False(t, confirm(strings.NewReader(""), &out, "Go?"))
	assert.Contains(t, out.String(), "Go? [y/N]: ")
}

func TestMergeVacation(t *testing.T) {
	current := []string{"2025-01-08", "2025-01-07T00:00:00Z"}

	added := mergeVacation(current, []string{"2025-01-06", "2025-01-07"}, true)
	assert.Equal(t, []string{"2025-01-06", "2025-01-07", "2025-01-08"}, added)

	removed := mergeVacation(added, []string{"2025-01-07"}, false)
	assert.Equal(t, []string{"2025-01-06", "2025-01-08"}, removed)
}

func TestMatch(t *testing.T) {
	employees := []model.Employee{
		{ID: "3f2a91c0-aaaa", Name: "Mira"},
		{ID: "3f2b0000-bbbb", Name: "Dario"},
	}
	id := func(e model.Employee) string { return e.ID }
	name := func(e model.Employee) string { return e.Name }

	e, ok := match(employees, "dario", id, name)
	require.True(t, ok)
	assert.Equal(t, "3f2b0000-bbbb", e.ID)

	e, ok = match(employees, "3f2a", id, name)
	require.True(t, ok)
	assert.Equal(t, "Mira", e.Name)

	_, ok = match(employees, "3f2", id, name)
	assert.False(t, ok, "ambiguous prefix")

	_, ok = match(employees, "", id, name)
	assert.False(t, ok)
}

func TestParseMonth(t *testing.T) {
	m, err := parseMonth("2025-03")
	require.NoError(t, err)
	assert.Equal(t, 2025, m.Year())

	_, err = parseMonth("March")
	assert.ErrorContains(t, err, "expected YYYY-MM")
}

func TestPrintResultListsSteps(t *testing.T) {
	var out bytes.Buffer
	printResult(&out, placement.Result{
		Outcome:   placement.Split,
		Requested: 15,
		Steps: []placement.Step{
			{SprintID: "sprint-2", Days: 9, Allocation: model.Allocation{ID: "a1", SprintID: "sprint-2", Days: 9}},
			{SprintID: "sprint-3", Days: 6, Allocation: model.Allocation{ID: "a2", SprintID: "sprint-3", Days: 6}},
		},
	})
	assert.Contains(t, out.String(), "allocation split across 2 sprints")
	assert.Contains(t, out.String(), "sprint-3")
}
