package server

import (
	"net/http"
	"time"

	"github.com/existflow/sprintplan/internal/calendar"
	"github.com/existflow/sprintplan/internal/capacity"
	"github.com/existflow/sprintplan/internal/model"
	"github.com/existflow/sprintplan/internal/placement"
	"github.com/labstack/echo/v4"
)

// AllocateRequest is the body of quick and batch allocation
type AllocateRequest struct {
	EmployeeID string `json:"employee_id"`
	ProjectID  string `json:"project_id"`
	SprintID   string `json:"sprint_id"`
	Days       int    `json:"days"`
	Repeat     string `json:"repeat,omitempty"` // single, next-n, until-end
	Count      int    `json:"count,omitempty"`
	Confirm    bool   `json:"confirm,omitempty"`
}

// MoveRequest is the body of a drag-move
type MoveRequest struct {
	Item           placement.DragItem `json:"item"`
	TargetSprintID string             `json:"target_sprint_id"`
}

// UpdateDaysRequest is the body of an allocation edit
type UpdateDaysRequest struct {
	Days int `json:"days"`
}

// StepResponse is one attempted allocation of a placement
type StepResponse struct {
	SprintID   string            `json:"sprint_id"`
	Days       int               `json:"days"`
	Allocation *model.Allocation `json:"allocation,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// ResultResponse reports what a placement did
type ResultResponse struct {
	Outcome   string         `json:"outcome"`
	Message   string         `json:"message"`
	Requested int            `json:"requested"`
	Unplaced  int            `json:"unplaced"`
	Steps     []StepResponse `json:"steps"`
}

// MonthCapacity is an employee's load in a calendar month
type MonthCapacity struct {
	EmployeeID string `json:"employee_id"`
	Month      string `json:"month"`
	Working    int    `json:"working"`
	Allocated  int    `json:"allocated"`
	Remaining  int    `json:"remaining"`
}

func newResultResponse(r placement.Result) ResultResponse {
	resp := ResultResponse{
		Outcome:   r.Outcome.String(),
		Message:   r.Message(),
		Requested: r.Requested,
		Unplaced:  r.Unplaced,
		Steps:     make([]StepResponse, 0, len(r.Steps)),
	}
	for _, st := range r.Steps {
		step := StepResponse{SprintID: st.SprintID, Days: st.Days}
		if st.Err != nil {
			step.Error = st.Err.Error()
		} else {
			a := st.Allocation
			step.Allocation = &a
		}
		resp.Steps = append(resp.Steps, step)
	}
	return resp
}

// resultStatus is 200 unless every step failed, in which case the first
// failure decides
func resultStatus(r placement.Result) int {
	if r.Outcome == placement.Failed {
		if f := r.Failures(); len(f) > 0 {
			return errorStatus(f[0].Err)
		}
	}
	return http.StatusOK
}

func (s *Server) handleListSprints(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Sprints())
}

func (s *Server) handleActiveSprint(c echo.Context) error {
	sprint, ok := calendar.FindActiveSprint(s.store.Sprints(), s.now())
	if !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "no active sprint"})
	}
	return c.JSON(http.StatusOK, sprint)
}

func (s *Server) handleListEmployees(c echo.Context) error {
	employees := s.store.Employees()
	if c.QueryParam("archived") != "true" {
		active := employees[:0]
		for _, e := range employees {
			if !e.Archived {
				active = append(active, e)
			}
		}
		employees = active
	}
	return c.JSON(http.StatusOK, employees)
}

func (s *Server) handleUpdateEmployee(c echo.Context) error {
	var update model.EmployeeUpdate
	if err := c.Bind(&update); err != nil {
		return badRequest(c, "invalid request")
	}
	e, err := s.store.UpdateEmployee(c.Request().Context(), callerFrom(c), c.Param("id"), update)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

func (s *Server) handleEmployeeCapacity(c echo.Context) error {
	e, ok := s.store.Employee(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "employee not found"})
	}

	if m := c.QueryParam("month"); m != "" {
		month, err := time.Parse("2006-01", m)
		if err != nil {
			return badRequest(c, "month must be YYYY-MM")
		}
		working := capacity.WorkingDaysInMonth(month, &e)
		allocated := capacity.AllocationDaysForMonth(e, month, s.store.Allocations(), s.store.Sprints())
		return c.JSON(http.StatusOK, MonthCapacity{
			EmployeeID: e.ID,
			Month:      month.Format("2006-01"),
			Working:    working,
			Allocated:  allocated,
			Remaining:  working - allocated,
		})
	}

	var (
		sprint model.Sprint
		found  bool
	)
	if id := c.QueryParam("sprint"); id != "" {
		sprint, found = s.store.Sprint(id)
	} else {
		sprint, found = calendar.FindActiveSprint(s.store.Sprints(), s.now())
	}
	if !found {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "sprint not found"})
	}
	return c.JSON(http.StatusOK, capacity.Utilization(e, sprint, s.store.Allocations()))
}

func (s *Server) handleListProjects(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Projects())
}

func (s *Server) handleUpdateProject(c echo.Context) error {
	var update model.ProjectUpdate
	if err := c.Bind(&update); err != nil {
		return badRequest(c, "invalid request")
	}
	p, err := s.store.UpdateProject(c.Request().Context(), callerFrom(c), c.Param("id"), update)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleListAllocations(c echo.Context) error {
	employeeID := c.QueryParam("employee_id")
	projectID := c.QueryParam("project_id")
	sprintID := c.QueryParam("sprint_id")

	allocations := []model.Allocation{}
	for _, a := range s.store.Allocations() {
		if (employeeID != "" && a.EmployeeID != employeeID) ||
			(projectID != "" && a.ProjectID != projectID) ||
			(sprintID != "" && a.SprintID != sprintID) {
			continue
		}
		allocations = append(allocations, a)
	}
	return c.JSON(http.StatusOK, allocations)
}

// handleQuickAllocate creates a single allocation, refusing days beyond the
// employee's remaining capacity in the sprint
func (s *Server) handleQuickAllocate(c echo.Context) error {
	var req AllocateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	e, ok := s.store.Employee(req.EmployeeID)
	if !ok {
		return badRequest(c, "unknown employee")
	}
	sprint, ok := s.store.Sprint(req.SprintID)
	if !ok {
		return badRequest(c, "unknown sprint")
	}
	if err := capacity.CheckQuickAllocate(e, sprint, s.store.Allocations(), req.Days); err != nil {
		return writeError(c, err)
	}

	a, err := s.engine.QuickAllocate(c.Request().Context(), callerFrom(c), req.EmployeeID, req.ProjectID, req.SprintID, req.Days)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (s *Server) handleBatchAllocate(c echo.Context) error {
	var req AllocateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	mode, err := placement.ParseRepeatMode(req.Repeat)
	if err != nil {
		return badRequest(c, err.Error())
	}

	res, err := s.engine.Allocate(c.Request().Context(), callerFrom(c), placement.Request{
		EmployeeID: req.EmployeeID,
		ProjectID:  req.ProjectID,
		SprintID:   req.SprintID,
		Days:       req.Days,
		Repeat:     mode,
		Count:      req.Count,
		Confirmed:  req.Confirm,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resultStatus(res), newResultResponse(res))
}

func (s *Server) handleMoveAllocation(c echo.Context) error {
	var req MoveRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if req.TargetSprintID == "" {
		return badRequest(c, "target_sprint_id required")
	}

	res, err := s.engine.MoveAllocation(c.Request().Context(), callerFrom(c), req.Item, req.TargetSprintID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resultStatus(res), newResultResponse(res))
}

func (s *Server) handleUpdateAllocation(c echo.Context) error {
	var req UpdateDaysRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	a, err := s.store.UpdateAllocation(c.Request().Context(), callerFrom(c), model.Allocation{ID: c.Param("id"), Days: req.Days})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (s *Server) handleDeleteAllocation(c echo.Context) error {
	if err := s.store.DeleteAllocation(c.Request().Context(), callerFrom(c), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleOverallocations(c echo.Context) error {
	over := capacity.Overallocations(s.store.Employees(), s.store.Sprints(), s.store.Allocations())
	if over == nil {
		over = []capacity.Summary{}
	}
	return c.JSON(http.StatusOK, over)
}
