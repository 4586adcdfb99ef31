package meeting

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func window(day time.Time, startHour, endHour int) (time.Time, time.Time) {
	return day.Add(time.Duration(startHour) * time.Hour), day.Add(time.Duration(endHour) * time.Hour)
}

func TestNewMeeting(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	start, end := window(day, 10, 11)

	t.Run("creates scheduled meeting", func(t *testing.T) {
		m, err := NewMeeting(uuid.New(), uuid.New(), "Discovery call", PlatformGoogleMeet, start, end)

		require.NoError(t, err)
		assert.Equal(t, StatusScheduled, m.Status)
		assert.Equal(t, time.Hour, m.Duration())
		assert.Len(t, m.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeMeetingScheduled, m.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects inverted window", func(t *testing.T) {
		m, err := NewMeeting(uuid.New(), uuid.New(), "Discovery call", PlatformTeams, end, start)

		assert.Error(t, err)
		assert.Nil(t, m)
	})

	t.Run("rejects windows over 8 hours", func(t *testing.T) {
		s, e := window(day, 8, 17)
		_, err := NewMeeting(uuid.New(), uuid.New(), "Marathon", PlatformOther, s, e)

		assert.Error(t, err)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		_, err := NewMeeting(uuid.New(), uuid.New(), "  ", PlatformOther, start, end)

		assert.Error(t, err)
	})

	t.Run("rejects unknown platform", func(t *testing.T) {
		_, err := NewMeeting(uuid.New(), uuid.New(), "Call", Platform("zoom2"), start, end)

		assert.Error(t, err)
	})
}

func TestMeeting_Lifecycle(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	start, end := window(day, 10, 11)

	t.Run("complete records notes", func(t *testing.T) {
		m, err := NewMeeting(uuid.New(), uuid.New(), "Call", PlatformOther, start, end)
		require.NoError(t, err)

		require.NoError(t, m.Complete("went well"))
		assert.Equal(t, StatusCompleted, m.Status)
		assert.Equal(t, "went well", m.Notes)

		// completed meetings cannot be cancelled
		assert.Error(t, m.Cancel())
	})

	t.Run("cancel", func(t *testing.T) {
		m, err := NewMeeting(uuid.New(), uuid.New(), "Call", PlatformOther, start, end)
		require.NoError(t, err)

		require.NoError(t, m.Cancel())
		assert.Equal(t, StatusCancelled, m.Status)
		assert.Error(t, m.Complete(""))
	})

	t.Run("reschedule only while scheduled", func(t *testing.T) {
		m, err := NewMeeting(uuid.New(), uuid.New(), "Call", PlatformOther, start, end)
		require.NoError(t, err)

		s2, e2 := window(day, 14, 15)
		require.NoError(t, m.Reschedule(s2, e2))
		assert.Equal(t, s2, m.StartAt)

		require.NoError(t, m.Cancel())
		assert.Error(t, m.Reschedule(start, end))
	})
}

func TestMeeting_Overlaps(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	start, end := window(day, 10, 11)
	m, err := NewMeeting(uuid.New(), uuid.New(), "Call", PlatformOther, start, end)
	require.NoError(t, err)

	assert.True(t, m.Overlaps(day.Add(10*time.Hour+30*time.Minute), day.Add(12*time.Hour)))
	assert.True(t, m.Overlaps(day.Add(9*time.Hour), day.Add(10*time.Hour+1*time.Minute)))
	// Back-to-back is not an overlap
	assert.False(t, m.Overlaps(end, end.Add(time.Hour)))
	assert.False(t, m.Overlaps(start.Add(-time.Hour), start))
}

func TestConflictChecker(t *testing.T) {
	owner := uuid.New()
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	mustMeeting := func(startHour, endHour int) Meeting {
		s, e := window(day, startHour, endHour)
		m, err := NewMeeting(uuid.New(), owner, "Call", PlatformOther, s, e)
		require.NoError(t, err)
		return *m
	}

	checker := NewConflictChecker(3)

	t.Run("detects overlap", func(t *testing.T) {
		existing := []Meeting{mustMeeting(10, 11)}
		s, e := window(day, 10, 12)

		err := checker.Check(existing, s, e, "")
		assert.ErrorContains(t, err, "overlaps")
	})

	t.Run("enforces daily cap", func(t *testing.T) {
		existing := []Meeting{mustMeeting(8, 9), mustMeeting(10, 11), mustMeeting(12, 13)}
		s, e := window(day, 15, 16)

		err := checker.Check(existing, s, e, "")
		assert.ErrorContains(t, err, "limit")
	})

	t.Run("cancelled meetings do not count", func(t *testing.T) {
		cancelled := mustMeeting(10, 11)
		require.NoError(t, cancelled.Cancel())
		existing := []Meeting{cancelled}
		s, e := window(day, 10, 12)

		assert.NoError(t, checker.Check(existing, s, e, ""))
	})

	t.Run("rescheduled meeting ignores itself", func(t *testing.T) {
		m := mustMeeting(10, 11)
		existing := []Meeting{m}
		s, e := window(day, 10, 12)

		assert.NoError(t, checker.Check(existing, s, e, m.ID.String()))
	})

	t.Run("different day does not hit the cap", func(t *testing.T) {
		existing := []Meeting{mustMeeting(8, 9), mustMeeting(10, 11), mustMeeting(12, 13)}
		nextDay := day.Add(24 * time.Hour)
		s, e := window(nextDay, 9, 10)

		assert.NoError(t, checker.Check(existing, s, e, ""))
	})
}

func TestIntelligence(t *testing.T) {
	meetingID := uuid.New()

	t.Run("rejects empty notes", func(t *testing.T) {
		_, err := NewIntelligence(meetingID, "   ")
		assert.Error(t, err)
	})

	t.Run("applies summary with action items", func(t *testing.T) {
		intel, err := NewIntelligence(meetingID, "they want a pilot in Q3")
		require.NoError(t, err)

		items := []ActionItem{{Description: "Send pilot proposal", Owner: "jane"}}
		require.NoError(t, intel.ApplySummary("Pilot requested for Q3", "positive", "gemini-2.0-flash", items))

		decoded, err := intel.ActionItems()
		require.NoError(t, err)
		require.Len(t, decoded, 1)
		assert.Equal(t, "Send pilot proposal", decoded[0].Description)
	})

	t.Run("rejects empty summary", func(t *testing.T) {
		intel, err := NewIntelligence(meetingID, "notes")
		require.NoError(t, err)

		assert.Error(t, intel.ApplySummary("  ", "", "", nil))
	})
}

func TestNewQuestion(t *testing.T) {
	q, err := NewQuestion(uuid.New(), 0, " What is your current workflow? ", "gemini-2.0-flash")
	require.NoError(t, err)
	assert.Equal(t, "What is your current workflow?", q.Text)

	_, err = NewQuestion(uuid.New(), 0, "", "")
	assert.Error(t, err)
}
