package model

import "time"

// Sprint is a fixed two-week planning unit. Sprints are generated from the
// reference epoch and never persisted.
type Sprint struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Number      int         `json:"number"`
	StartDate   time.Time   `json:"start_date"`
	EndDate     time.Time   `json:"end_date"`
	WorkingDays []time.Time `json:"working_days"`
}

// Contains reports whether day falls inside the sprint, bounds inclusive
func (s *Sprint) Contains(day time.Time) bool {
	d := day.Format(DateLayout)
	return d >= s.StartDate.Format(DateLayout) && d <= s.EndDate.Format(DateLayout)
}
