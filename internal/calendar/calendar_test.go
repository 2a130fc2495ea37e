package calendar

import (
	"testing"
	"time"

	"github.com/existflow/sprintplan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGenerateSprintsFromEpoch(t *testing.T) {
	sprints := GenerateSprints(ReferenceEpoch, 1)
	require.Len(t, sprints, 1)

	s := sprints[0]
	assert.Equal(t, "sprint-1", s.ID)
	assert.Equal(t, "Sprint 1", s.Name)
	assert.Equal(t, date(2025, time.January, 6), s.StartDate)
	assert.Equal(t, date(2025, time.January, 17), s.EndDate)
}

func TestGenerateSprintsShape(t *testing.T) {
	sprints := GenerateSprints(ReferenceEpoch, 60)
	require.Len(t, sprints, 60)

	for i, s := range sprints {
		assert.Equal(t, s.StartDate.AddDate(0, 0, 11), s.EndDate, s.ID)
		assert.Equal(t, ReferenceEpoch.AddDate(0, 0, i*SprintLength), s.StartDate, s.ID)
		assert.Equal(t, time.Monday, s.StartDate.Weekday(), s.ID)
		require.Len(t, s.WorkingDays, 10, s.ID)
		for _, d := range s.WorkingDays {
			assert.NotEqual(t, time.Saturday, d.Weekday())
			assert.NotEqual(t, time.Sunday, d.Weekday())
		}
		n, ok := SprintNumber(s.ID)
		require.True(t, ok)
		assert.Equal(t, i+1, n)
	}
}

func TestGenerateSprintsEmpty(t *testing.T) {
	assert.Empty(t, GenerateSprints(ReferenceEpoch, 0))
	assert.Empty(t, GenerateSprints(ReferenceEpoch, -3))
}

func TestGenerateSprintsNumberingAnchoredOnEpoch(t *testing.T) {
	// starting two sprints later keeps the global numbering
	sprints := GenerateSprints(ReferenceEpoch.AddDate(0, 0, 28), 2)
	assert.Equal(t, "sprint-3", sprints[0].ID)
	assert.Equal(t, "sprint-4", sprints[1].ID)

	// an off-grid start still derives its number from elapsed time
	off := GenerateSprints(ReferenceEpoch.AddDate(0, 0, 13), 1)
	assert.Equal(t, "sprint-2", off[0].ID)
}

func TestFindActiveSprint(t *testing.T) {
	sprints := GenerateSprints(ReferenceEpoch, 3)

	s, ok := FindActiveSprint(sprints, time.Date(2025, time.January, 17, 18, 30, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, "sprint-1", s.ID)

	// the weekend between sprints belongs to none of them
	_, ok = FindActiveSprint(sprints, date(2025, time.January, 18))
	assert.False(t, ok)

	s, ok = FindActiveSprint(sprints, date(2025, time.January, 20))
	require.True(t, ok)
	assert.Equal(t, "sprint-2", s.ID)

	_, ok = FindActiveSprint(sprints, date(2026, time.January, 1))
	assert.False(t, ok)
}

func TestSprintDateRange(t *testing.T) {
	s := GenerateSprints(ReferenceEpoch, 1)[0]
	assert.Equal(t, "Jan 6 - Jan 17", SprintDateRange(s))
}

func TestSprintLookups(t *testing.T) {
	sprints := GenerateSprints(ReferenceEpoch, 12)

	_, ok := SprintNumber("iteration-2")
	assert.False(t, ok)
	_, ok = SprintNumber("sprint-x")
	assert.False(t, ok)

	assert.Equal(t, 9, IndexOf(sprints, "sprint-10"))
	assert.Equal(t, -1, IndexOf(sprints, "sprint-99"))

	s, ok := Find(sprints, "sprint-2")
	require.True(t, ok)
	assert.Equal(t, date(2025, time.January, 20), s.StartDate)

	shuffled := []model.Sprint{sprints[3], sprints[0], sprints[2]}
	ordered := Chronological(shuffled)
	assert.Equal(t, []string{"sprint-1", "sprint-3", "sprint-4"}, []string{ordered[0].ID, ordered[1].ID, ordered[2].ID})
	assert.Equal(t, "sprint-4", shuffled[0].ID)
}
