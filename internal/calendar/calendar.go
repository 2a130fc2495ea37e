// Package calendar derives two-week sprints from a fixed reference epoch.
//
// Sprints are pure functions of the epoch and an index: sprint n starts on
// ReferenceEpoch + n*14 days, ends 11 days later on a Friday and carries ten
// working days (two Monday-Friday weeks). Nothing here is persisted.
package calendar

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/existflow/sprintplan/internal/model"
)

// ReferenceEpoch is the Monday that opens sprint-1 (index 0).
// Changing it renumbers every sprint id already stored in allocations.
var ReferenceEpoch = time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)

const (
	// SprintLength is the number of calendar days between two sprint starts
	SprintLength = 14
	// sprintSpan is the offset from a sprint's Monday to its closing Friday
	sprintSpan = 11

	idPrefix = "sprint-"
)

// Day truncates t to its calendar date at UTC midnight, keeping the
// year/month/day as seen in t's own location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from one date to another
func DaysBetween(from, to time.Time) int {
	return int(math.Round(Day(to).Sub(Day(from)).Hours() / 24))
}

// GenerateSprints returns count consecutive sprints, the first starting on start.
//
// Numbering is always anchored on ReferenceEpoch, not on start, so callers
// must pass ReferenceEpoch (or a date on the 14-day grid) to get ids that
// match the ones stored in allocations.
func GenerateSprints(start time.Time, count int) []model.Sprint {
	if count <= 0 {
		return []model.Sprint{}
	}
	start = Day(start)
	sprints := make([]model.Sprint, 0, count)
	for i := 0; i < count; i++ {
		begin := start.AddDate(0, 0, i*SprintLength)
		n := sprintIndex(begin) + 1

		days := make([]time.Time, 0, model.MaxSprintDays)
		for offset := 0; offset <= sprintSpan; offset++ {
			if offset == 5 || offset == 6 {
				continue
			}
			days = append(days, begin.AddDate(0, 0, offset))
		}

		sprints = append(sprints, model.Sprint{
			ID:          idPrefix + strconv.Itoa(n),
			Name:        fmt.Sprintf("Sprint %d", n),
			Number:      n,
			StartDate:   begin,
			EndDate:     begin.AddDate(0, 0, sprintSpan),
			WorkingDays: days,
		})
	}
	return sprints
}

// sprintIndex is floor((daysSinceEpoch + 1) / 14)
func sprintIndex(day time.Time) int {
	elapsed := DaysBetween(ReferenceEpoch, day)
	return int(math.Floor(float64(elapsed+1) / SprintLength))
}

// FindActiveSprint returns the first sprint whose inclusive range contains today
func FindActiveSprint(sprints []model.Sprint, today time.Time) (model.Sprint, bool) {
	for _, s := range sprints {
		if s.Contains(today) {
			return s, true
		}
	}
	return model.Sprint{}, false
}

// SprintDateRange formats a sprint's bounds as "Jan 6 - Jan 17"
func SprintDateRange(s model.Sprint) string {
	return fmt.Sprintf("%s - %s", s.StartDate.Format("Jan 2"), s.EndDate.Format("Jan 2"))
}

// SprintNumber parses the numeric suffix of a sprint id
func SprintNumber(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, idPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

// IndexOf returns the position of the sprint with the given id, or -1
func IndexOf(sprints []model.Sprint, id string) int {
	return slices.IndexFunc(sprints, func(s model.Sprint) bool { return s.ID == id })
}

// Find returns the sprint with the given id
func Find(sprints []model.Sprint, id string) (model.Sprint, bool) {
	if i := IndexOf(sprints, id); i >= 0 {
		return sprints[i], true
	}
	return model.Sprint{}, false
}

// Chronological returns a copy of sprints ordered by start date
func Chronological(sprints []model.Sprint) []model.Sprint {
	sorted := slices.Clone(sprints)
	slices.SortStableFunc(sorted, func(a, b model.Sprint) int {
		return a.StartDate.Compare(b.StartDate)
	})
	return sorted
}
