package model

import (
	"slices"
	"time"
)

// Role is the job role of an employee
type Role string

const (
	RoleDeveloper               Role = "Developer"
	RoleDesigner                Role = "Designer"
	RoleQA                      Role = "QA Engineer"
	RoleDevOps                  Role = "DevOps Engineer"
	RoleManager                 Role = "Manager"
	RoleProductManager          Role = "Product Manager"
	RoleProductOwner            Role = "Product Owner"
	RoleTechnicalProjectManager Role = "Technical Project Manager"
)

// Roles lists every known role
var Roles = []Role{
	RoleDeveloper,
	RoleDesigner,
	RoleQA,
	RoleDevOps,
	RoleManager,
	RoleProductManager,
	RoleProductOwner,
	RoleTechnicalProjectManager,
}

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return slices.Contains(Roles, r)
}

// DateLayout is the ISO date format used for vacation dates and sprint days
const DateLayout = "2006-01-02"

// Employee is a person whose time is allocated to projects
type Employee struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Role          Role     `json:"role"`
	ImageURL      string   `json:"image_url,omitempty"`
	VacationDates []string `json:"vacation_dates,omitempty"`
	Archived      bool     `json:"archived"`
	IsAdmin       bool     `json:"is_admin"`
}

// VacationSet returns the normalized vacation dates as a set. Entries
// carrying a time component ("2025-01-07T00:00:00Z") keep their date part.
func (e *Employee) VacationSet() map[string]struct{} {
	set := make(map[string]struct{}, len(e.VacationDates))
	for _, v := range e.VacationDates {
		if n := NormalizeDate(v); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// NormalizeDate trims an ISO date or timestamp to YYYY-MM-DD.
// It returns "" when s does not start with a valid date.
func NormalizeDate(s string) string {
	if len(s) < len(DateLayout) {
		return ""
	}
	d := s[:len(DateLayout)]
	if _, err := time.Parse(DateLayout, d); err != nil {
		return ""
	}
	return d
}

// EmployeeUpdate carries the fields to change on an employee; nil means unchanged
type EmployeeUpdate struct {
	Name          *string   `json:"name,omitempty"`
	Role          *Role     `json:"role,omitempty"`
	ImageURL      *string   `json:"image_url,omitempty"`
	VacationDates *[]string `json:"vacation_dates,omitempty"`
	Archived      *bool     `json:"archived,omitempty"`
}

// Apply returns a copy of e with the update applied
func (u EmployeeUpdate) Apply(e Employee) Employee {
	if u.Name != nil {
		e.Name = *u.Name
	}
	if u.Role != nil {
		e.Role = *u.Role
	}
	if u.ImageURL != nil {
		e.ImageURL = *u.ImageURL
	}
	if u.VacationDates != nil {
		e.VacationDates = slices.Clone(*u.VacationDates)
	}
	if u.Archived != nil {
		e.Archived = *u.Archived
	}
	return e
}
