package db

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/existflow/sprintplan/internal/access"
	"github.com/existflow/sprintplan/internal/model"
	"github.com/existflow/sprintplan/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "planner.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedDB(t *testing.T, db *DB) (model.Employee, model.Project) {
	t.Helper()
	ctx := context.Background()
	mgr, err := db.CreateEmployee(ctx, model.Employee{ID: "mgr", Name: "Mira", Role: model.RoleManager})
	require.NoError(t, err)
	_, err = db.CreateEmployee(ctx, model.Employee{
		ID: "dev", Name: "Dario", Role: model.RoleDeveloper,
		VacationDates: []string{"2025-01-07", "2025-01-08"},
	})
	require.NoError(t, err)
	p, err := db.CreateProject(ctx, model.Project{ID: "p1", Name: "Atlas", LeadID: "mgr"})
	require.NoError(t, err)
	return mgr, p
}

func TestOpenRunsMigrationsTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "planner.db")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	employees, err := db.ListEmployees(context.Background())
	require.NoError(t, err)
	assert.Empty(t, employees)
}

func TestEmployeeRoundTrip(t *testing.T) {
	db := openTestDB(t)
	seedDB(t, db)
	ctx := context.Background()

	employees, err := db.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.Equal(t, model.RoleManager, employees[0].Role)
	assert.Equal(t, []string{"2025-01-07", "2025-01-08"}, employees[1].VacationDates)
	assert.False(t, employees[1].Archived)

	name := "Dario R."
	archived := true
	vacations := []string{"2025-02-03"}
	require.NoError(t, db.UpdateEmployee(ctx, "dev", model.EmployeeUpdate{
		Name:          &name,
		VacationDates: &vacations,
		Archived:      &archived,
	}))

	employees, err = db.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Dario R.", employees[1].Name)
	assert.Equal(t, vacations, employees[1].VacationDates)
	assert.True(t, employees[1].Archived)

	exists, err := db.EmployeeExists(ctx, "dev")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = db.EmployeeExists(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUpdateMissingRow(t *testing.T) {
	db := openTestDB(t)
	name := "nobody"
	err := db.UpdateEmployee(context.Background(), "ghost", model.EmployeeUpdate{Name: &name})
	assert.True(t, errors.Is(err, store.ErrNotFound))

	err = db.DeleteAllocation(context.Background(), "ghost")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestProjectDates(t *testing.T) {
	db := openTestDB(t)
	seedDB(t, db)
	ctx := context.Background()

	projects, err := db.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, model.ColorBlue, projects[0].Color)
	assert.True(t, projects[0].StartDate.IsZero())

	start := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.UpdateProject(ctx, "p1", model.ProjectUpdate{StartDate: &start, EndDate: &end}))

	projects, err = db.ListProjects(ctx)
	require.NoError(t, err)
	assert.True(t, start.Equal(projects[0].StartDate))
	assert.True(t, end.Equal(projects[0].EndDate))
}

func TestAllocationLifecycle(t *testing.T) {
	db := openTestDB(t)
	seedDB(t, db)
	ctx := context.Background()

	id, err := db.InsertAllocation(ctx, "dev", "p1", "sprint-1", 4)
	require.NoError(t, err)
	require.NoError(t, db.UpdateAllocationDays(ctx, id, 6))

	allocations, err := db.ListAllocations(ctx)
	require.NoError(t, err)
	require.Len(t, allocations, 1)
	assert.Equal(t, model.Allocation{ID: id, EmployeeID: "dev", ProjectID: "p1", SprintID: "sprint-1", Days: 6}, allocations[0])

	require.NoError(t, db.DeleteAllocation(ctx, id))
	allocations, err = db.ListAllocations(ctx)
	require.NoError(t, err)
	assert.Empty(t, allocations)
}

func TestListsKeepInsertionOrder(t *testing.T) {
	db := openTestDB(t)
	seedDB(t, db)
	ctx := context.Background()

	_, err := db.CreateEmployee(ctx, model.Employee{ID: "aaa", Name: "Aaron", Role: model.RoleQA})
	require.NoError(t, err)
	employees, err := db.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 3)
	assert.Equal(t, []string{"mgr", "dev", "aaa"}, []string{employees[0].ID, employees[1].ID, employees[2].ID})

	var want []string
	for i := 1; i <= 8; i++ {
		id, err := db.InsertAllocation(ctx, "dev", "p1", fmt.Sprintf("sprint-%d", i), 1)
		require.NoError(t, err)
		want = append(want, id)
	}
	allocations, err := db.ListAllocations(ctx)
	require.NoError(t, err)
	got := make([]string, len(allocations))
	for i, a := range allocations {
		got[i] = a.ID
	}
	assert.Equal(t, want, got)
}

func TestAllocationRequiresKnownEmployee(t *testing.T) {
	db := openTestDB(t)
	seedDB(t, db)

	_, err := db.InsertAllocation(context.Background(), "ghost", "p1", "sprint-1", 4)
	assert.Error(t, err)
}

func TestStoreOverSQLite(t *testing.T) {
	db := openTestDB(t)
	seedDB(t, db)
	ctx := context.Background()

	s := store.New(db, store.WithSprintCount(10))
	require.NoError(t, s.Load(ctx))

	caller := access.Caller{EmployeeID: "mgr", Role: model.RoleManager}
	a, err := s.AddAllocation(ctx, caller, "dev", "p1", "sprint-3", 5)
	require.NoError(t, err)

	reloaded := store.New(db, store.WithSprintCount(10))
	require.NoError(t, reloaded.Load(ctx))
	got, ok := reloaded.Allocation(a.ID)
	require.True(t, ok)
	assert.Equal(t, 5, got.Days)

	p, ok := reloaded.Project("p1")
	require.True(t, ok)
	sprint, _ := reloaded.Sprint("sprint-3")
	assert.True(t, sprint.StartDate.Equal(p.StartDate))
	assert.True(t, sprint.EndDate.Equal(p.EndDate))
}

func TestRebind(t *testing.T) {
	pg := &DB{dialect: Postgres}
	assert.Equal(t, "UPDATE t SET a = $1 WHERE id = $2", pg.rebind("UPDATE t SET a = ? WHERE id = ?"))

	lite := &DB{dialect: SQLite}
	assert.Equal(t, "SELECT ?", lite.rebind("SELECT ?"))
}
