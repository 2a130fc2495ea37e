package model

// MaxSprintDays is the number of working days in one sprint
const MaxSprintDays = 10

// Allocation assigns days of one employee's time to one project within one sprint
type Allocation struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	ProjectID  string `json:"project_id"`
	SprintID   string `json:"sprint_id"`
	Days       int    `json:"days"`
}
