package model

import (
	"slices"
	"time"
)

// ProjectColor is one of the five palette colors a project can carry
type ProjectColor string

const (
	ColorBlue   ProjectColor = "blue"
	ColorGreen  ProjectColor = "green"
	ColorOrange ProjectColor = "orange"
	ColorPurple ProjectColor = "purple"
	ColorRed    ProjectColor = "red"
)

// ProjectColors lists the palette in display order
var ProjectColors = []ProjectColor{ColorBlue, ColorGreen, ColorOrange, ColorPurple, ColorRed}

// Valid reports whether c is part of the palette
func (c ProjectColor) Valid() bool {
	return slices.Contains(ProjectColors, c)
}

// Project is a body of work employees are allocated to.
// StartDate and EndDate are derived from allocations and are not authoritative.
type Project struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Color     ProjectColor `json:"color"`
	StartDate time.Time    `json:"start_date"`
	EndDate   time.Time    `json:"end_date"`
	LeadID    string       `json:"lead_id,omitempty"`
	TicketRef string       `json:"ticket_ref,omitempty"`
	Archived  bool         `json:"archived"`
}

// ProjectUpdate carries the fields to change on a project; nil means unchanged
type ProjectUpdate struct {
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	LeadID    *string    `json:"lead_id,omitempty"`
	TicketRef *string    `json:"ticket_ref,omitempty"`
	Archived  *bool      `json:"archived,omitempty"`
}

// Apply returns a copy of p with the update applied
func (u ProjectUpdate) Apply(p Project) Project {
	if u.StartDate != nil {
		p.StartDate = *u.StartDate
	}
	if u.EndDate != nil {
		p.EndDate = *u.EndDate
	}
	if u.LeadID != nil {
		p.LeadID = *u.LeadID
	}
	if u.TicketRef != nil {
		p.TicketRef = *u.TicketRef
	}
	if u.Archived != nil {
		p.Archived = *u.Archived
	}
	return p
}

// DefaultProjectRange returns the range a new project starts with before
// any allocation exists: today through three months out.
func DefaultProjectRange(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 3, 0)
}
