package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/existflow/sprintplan/internal/capacity"
	"github.com/existflow/sprintplan/internal/db"
	"github.com/existflow/sprintplan/internal/model"
	"github.com/existflow/sprintplan/internal/placement"
	"github.com/existflow/sprintplan/internal/store"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer seeds a SQLite planner: a manager, a developer on vacation
// on 2025-01-07 and one project
func newTestServer(t *testing.T) *Server {
	t.Helper()
	ctx := context.Background()
	database, err := db.Open(filepath.Join(t.TempDir(), "planner.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	_, err = database.CreateEmployee(ctx, model.Employee{ID: "mgr", Name: "Mira", Role: model.RoleManager})
	require.NoError(t, err)
	_, err = database.CreateEmployee(ctx, model.Employee{ID: "dev", Name: "Dario", Role: model.RoleDeveloper, VacationDates: []string{"2025-01-07"}})
	require.NoError(t, err)
	_, err = database.CreateProject(ctx, model.Project{ID: "p1", Name: "Atlas"})
	require.NoError(t, err)

	s, err := NewWithBackend(ctx, database, store.WithSprintCount(10))
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2025, time.January, 8, 10, 0, 0, 0, time.UTC) }
	return s
}

func do(t *testing.T, s *Server, method, path, caller string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if caller != "" {
		req.Header.Set(CallerHeader, caller)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndSprints(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	rec = do(t, s, http.MethodGet, "/api/v1/sprints", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Sprint](t, rec), 10)

	rec = do(t, s, http.MethodGet, "/api/v1/sprints/active", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sprint-1", decode[model.Sprint](t, rec).ID)
}

func TestQuickAllocateGuard(t *testing.T) {
	s := newTestServer(t)
	req := AllocateRequest{EmployeeID: "dev", ProjectID: "p1", SprintID: "sprint-2", Days: 6}

	rec := do(t, s, http.MethodPost, "/api/v1/allocations", "mgr", req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[model.Allocation](t, rec)
	assert.Equal(t, 6, created.Days)
	assert.NotContains(t, created.ID, "temp-")

	// 4 days left in sprint-2
	req.Days = 5
	rec = do(t, s, http.MethodPost, "/api/v1/allocations", "mgr", req)
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decode[errorResponse](t, rec)
	require.NotNil(t, body.Warning)
	assert.Equal(t, 4, body.Warning.Available)
	assert.Equal(t, "sprint-2", body.Warning.SprintID)

	req.SprintID = "sprint-99"
	rec = do(t, s, http.MethodPost, "/api/v1/allocations", "mgr", req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPermissionDenied(t *testing.T) {
	s := newTestServer(t)
	req := AllocateRequest{EmployeeID: "dev", ProjectID: "p1", SprintID: "sprint-2", Days: 2}

	rec := do(t, s, http.MethodPost, "/api/v1/allocations", "dev", req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/allocations/batch", "", req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/allocations", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]model.Allocation](t, rec))
}

func TestBatchAllocateNeedsConfirmation(t *testing.T) {
	s := newTestServer(t)
	req := AllocateRequest{EmployeeID: "dev", ProjectID: "p1", SprintID: "sprint-1", Days: 10, Repeat: "next-n", Count: 3}

	// vacation leaves 9 working days in sprint-1
	rec := do(t, s, http.MethodPost, "/api/v1/allocations/batch", "mgr", req)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 9, decode[errorResponse](t, rec).Warning.Available)

	req.Confirm = true
	rec = do(t, s, http.MethodPost, "/api/v1/allocations/batch", "mgr", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[ResultResponse](t, rec)
	assert.Equal(t, placement.Repeated.String(), res.Outcome)
	require.Len(t, res.Steps, 3)
	assert.Equal(t, "sprint-3", res.Steps[2].SprintID)

	rec = do(t, s, http.MethodGet, "/api/v1/overallocations", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	over := decode[[]capacity.Summary](t, rec)
	require.Len(t, over, 1)
	assert.Equal(t, "sprint-1", over[0].SprintID)

	rec = do(t, s, http.MethodGet, "/api/v1/projects", "", nil)
	projects := decode[[]model.Project](t, rec)
	require.Len(t, projects, 1)
	assert.Equal(t, "2025-01-06", projects[0].StartDate.Format(model.DateLayout))
	assert.Equal(t, "2025-02-14", projects[0].EndDate.Format(model.DateLayout))
}

func TestMoveSplitsAcrossSprints(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/allocations", "mgr",
		AllocateRequest{EmployeeID: "dev", ProjectID: "p1", SprintID: "sprint-4", Days: 10})
	require.Equal(t, http.StatusCreated, rec.Code)
	a := decode[model.Allocation](t, rec)

	move := MoveRequest{
		Item: placement.DragItem{
			AllocationID:   a.ID,
			SourceSprintID: a.SprintID,
			EmployeeID:     "dev",
			ProjectID:      "p1",
			Days:           12,
		},
		TargetSprintID: "sprint-1",
	}
	rec = do(t, s, http.MethodPost, "/api/v1/allocations/move", "mgr", move)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[ResultResponse](t, rec)
	assert.Equal(t, placement.Split.String(), res.Outcome)
	require.Len(t, res.Steps, 2)
	assert.Equal(t, 9, res.Steps[0].Days)
	assert.Equal(t, 3, res.Steps[1].Days)

	rec = do(t, s, http.MethodGet, "/api/v1/allocations?sprint_id=sprint-4", "", nil)
	assert.Empty(t, decode[[]model.Allocation](t, rec))

	move.TargetSprintID = "sprint-404"
	rec = do(t, s, http.MethodPost, "/api/v1/allocations/move", "mgr", move)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateAndDeleteAllocation(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/allocations", "mgr",
		AllocateRequest{EmployeeID: "dev", ProjectID: "p1", SprintID: "sprint-2", Days: 3})
	a := decode[model.Allocation](t, rec)

	rec = do(t, s, http.MethodPatch, "/api/v1/allocations/"+a.ID, "mgr", UpdateDaysRequest{Days: 7})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, decode[model.Allocation](t, rec).Days)

	rec = do(t, s, http.MethodPatch, "/api/v1/allocations/"+a.ID, "mgr", UpdateDaysRequest{Days: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/employees/dev/capacity?sprint=sprint-2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[capacity.Summary](t, rec).Remaining)

	rec = do(t, s, http.MethodDelete, "/api/v1/allocations/"+a.ID, "mgr", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/v1/allocations/"+a.ID, "mgr", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmployeeEdits(t *testing.T) {
	s := newTestServer(t)
	vacations := []string{"2025-01-07", "2025-01-08"}

	rec := do(t, s, http.MethodPatch, "/api/v1/employees/dev", "dev", model.EmployeeUpdate{VacationDates: &vacations})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, vacations, decode[model.Employee](t, rec).VacationDates)

	rec = do(t, s, http.MethodGet, "/api/v1/employees/dev/capacity", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 8, decode[capacity.Summary](t, rec).Available)

	rec = do(t, s, http.MethodGet, "/api/v1/employees/dev/capacity?month=2025-01", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 21, decode[MonthCapacity](t, rec).Working)

	name := "Mira C."
	rec = do(t, s, http.MethodPatch, "/api/v1/employees/mgr", "dev", model.EmployeeUpdate{Name: &name})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	bad := []string{"someday"}
	rec = do(t, s, http.MethodPatch, "/api/v1/employees/dev", "dev", model.EmployeeUpdate{VacationDates: &bad})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	promoted := model.RoleManager
	rec = do(t, s, http.MethodPatch, "/api/v1/employees/dev", "dev", model.EmployeeUpdate{Role: &promoted})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(t, s, http.MethodPost, "/api/v1/allocations", "dev",
		AllocateRequest{EmployeeID: "dev", ProjectID: "p1", SprintID: "sprint-4", Days: 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProjectEdits(t *testing.T) {
	s := newTestServer(t)
	lead, ticket := "mgr", "PLAN-12"

	rec := do(t, s, http.MethodPatch, "/api/v1/projects/p1", "mgr", model.ProjectUpdate{LeadID: &lead, TicketRef: &ticket})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p := decode[model.Project](t, rec)
	assert.Equal(t, "mgr", p.LeadID)
	assert.Equal(t, "PLAN-12", p.TicketRef)

	ghost := "ghost"
	rec = do(t, s, http.MethodPatch, "/api/v1/projects/p1", "mgr", model.ProjectUpdate{LeadID: &ghost})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPatch, "/api/v1/projects/nope", "mgr", model.ProjectUpdate{TicketRef: &ticket})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestErrorStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadGateway, errorStatus(&store.OpError{Op: "add", Resource: "allocation", Kind: store.ErrBackend}))
	assert.Equal(t, http.StatusConflict, errorStatus(&capacity.Warning{Requested: 5, Available: 2}))
	assert.Equal(t, http.StatusInternalServerError, errorStatus(assert.AnError))
}
