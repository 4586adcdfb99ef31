package meeting

import (
	"time"

	"github.com/google/uuid"
	"github.com/nia/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeMeeting = "Meeting"

// Event type constants
const (
	EventTypeMeetingScheduled = "MeetingScheduled"
	EventTypeMeetingCancelled = "MeetingCancelled"
	EventTypeMeetingCompleted = "MeetingCompleted"
)

// MeetingScheduledEvent is published when a meeting is scheduled
type MeetingScheduledEvent struct {
	shared.BaseDomainEvent
	MeetingID uuid.UUID `json:"meeting_id"`
	LeadID    uuid.UUID `json:"lead_id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	StartAt   time.Time `json:"start_at"`
	EndAt     time.Time `json:"end_at"`
}

// NewMeetingScheduledEvent creates a new MeetingScheduledEvent
func NewMeetingScheduledEvent(m *Meeting) *MeetingScheduledEvent {
	return &MeetingScheduledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMeetingScheduled, AggregateTypeMeeting, m.ID),
		MeetingID:       m.ID,
		LeadID:          m.LeadID,
		OwnerID:         m.OwnerID,
		StartAt:         m.StartAt,
		EndAt:           m.EndAt,
	}
}

// MeetingCancelledEvent is published when a meeting is cancelled
type MeetingCancelledEvent struct {
	shared.BaseDomainEvent
	MeetingID uuid.UUID `json:"meeting_id"`
	LeadID    uuid.UUID `json:"lead_id"`
}

// NewMeetingCancelledEvent creates a new MeetingCancelledEvent
func NewMeetingCancelledEvent(m *Meeting) *MeetingCancelledEvent {
	return &MeetingCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMeetingCancelled, AggregateTypeMeeting, m.ID),
		MeetingID:       m.ID,
		LeadID:          m.LeadID,
	}
}

// MeetingCompletedEvent is published when a meeting is marked as held
type MeetingCompletedEvent struct {
	shared.BaseDomainEvent
	MeetingID uuid.UUID `json:"meeting_id"`
	LeadID    uuid.UUID `json:"lead_id"`
}

// NewMeetingCompletedEvent creates a new MeetingCompletedEvent
func NewMeetingCompletedEvent(m *Meeting) *MeetingCompletedEvent {
	return &MeetingCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMeetingCompleted, AggregateTypeMeeting, m.ID),
		MeetingID:       m.ID,
		LeadID:          m.LeadID,
	}
}
