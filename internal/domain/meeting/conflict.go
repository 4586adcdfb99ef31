package meeting

import (
	"time"

	"github.com/nia/backend/internal/domain/shared"
)

// DefaultMaxMeetingsPerDay caps how many meetings a sales rep can host per day
const DefaultMaxMeetingsPerDay = 3

// ConflictChecker validates a candidate meeting window against the owner's
// existing schedule: no overlap and no more than MaxPerDay meetings on the
// candidate's calendar day.
type ConflictChecker struct {
	MaxPerDay int
}

// NewConflictChecker creates a checker with the given daily cap.
// A non-positive cap falls back to the default.
func NewConflictChecker(maxPerDay int) *ConflictChecker {
	if maxPerDay <= 0 {
		maxPerDay = DefaultMaxMeetingsPerDay
	}
	return &ConflictChecker{MaxPerDay: maxPerDay}
}

// Check validates the window [startAt, endAt) against the owner's existing
// meetings. Cancelled meetings and the meeting being rescheduled (excludeID
// matching) are ignored.
func (c *ConflictChecker) Check(existing []Meeting, startAt, endAt time.Time, excludeID string) error {
	startAt = startAt.UTC()
	endAt = endAt.UTC()
	day := startAt.Truncate(24 * time.Hour)

	sameDay := 0
	for i := range existing {
		m := &existing[i]
		if m.Status != StatusScheduled {
			continue
		}
		if excludeID != "" && m.ID.String() == excludeID {
			continue
		}
		if m.Overlaps(startAt, endAt) {
			return shared.ErrMeetingConflict
		}
		if m.StartAt.UTC().Truncate(24 * time.Hour).Equal(day) {
			sameDay++
		}
	}

	if sameDay >= c.MaxPerDay {
		return shared.ErrDailyLimitReached
	}
	return nil
}
