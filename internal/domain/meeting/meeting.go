package meeting

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nia/backend/internal/domain/shared"
)

// Status represents the lifecycle status of a meeting
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Platform represents where the meeting is held
type Platform string

const (
	PlatformGoogleMeet Platform = "google_meet"
	PlatformTeams      Platform = "teams"
	PlatformOther      Platform = "other"
)

// Meeting represents a scheduled meeting with a lead.
// It is the aggregate root for meeting operations.
type Meeting struct {
	shared.BaseAggregateRoot
	LeadID   uuid.UUID
	OwnerID  uuid.UUID // Sales rep hosting the meeting
	Title    string
	Agenda   string
	Platform Platform
	JoinURL  string
	StartAt  time.Time
	EndAt    time.Time
	Status   Status
	Notes    string // Post-meeting notes
}

// TableName returns the table name for GORM
func (Meeting) TableName() string {
	return "meetings"
}

// NewMeeting creates a scheduled meeting after validating its time window
func NewMeeting(leadID, ownerID uuid.UUID, title string, platform Platform, startAt, endAt time.Time) (*Meeting, error) {
	if leadID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LEAD", "Lead ID is required")
	}
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner ID is required")
	}
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validatePlatform(platform); err != nil {
		return nil, err
	}
	if err := validateWindow(startAt, endAt); err != nil {
		return nil, err
	}

	m := &Meeting{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		LeadID:            leadID,
		OwnerID:           ownerID,
		Title:             title,
		Platform:          platform,
		StartAt:           startAt.UTC(),
		EndAt:             endAt.UTC(),
		Status:            StatusScheduled,
	}

	m.AddDomainEvent(NewMeetingScheduledEvent(m))

	return m, nil
}

// Reschedule moves the meeting to a new time window
func (m *Meeting) Reschedule(startAt, endAt time.Time) error {
	if m.Status != StatusScheduled {
		return shared.ErrInvalidState
	}
	if err := validateWindow(startAt, endAt); err != nil {
		return err
	}
	m.StartAt = startAt.UTC()
	m.EndAt = endAt.UTC()
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
	return nil
}

// UpdateDetails updates title, agenda and join URL
func (m *Meeting) UpdateDetails(title, agenda, joinURL string) error {
	if err := validateTitle(title); err != nil {
		return err
	}
	if len(joinURL) > 500 {
		return shared.NewDomainError("INVALID_JOIN_URL", "Join URL cannot exceed 500 characters")
	}
	m.Title = title
	m.Agenda = agenda
	m.JoinURL = joinURL
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
	return nil
}

// Cancel cancels a scheduled meeting
func (m *Meeting) Cancel() error {
	if m.Status != StatusScheduled {
		return shared.NewDomainError("INVALID_STATE", "Only scheduled meetings can be cancelled")
	}
	m.Status = StatusCancelled
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
	m.AddDomainEvent(NewMeetingCancelledEvent(m))
	return nil
}

// Complete marks a scheduled meeting as held, recording post-meeting notes
func (m *Meeting) Complete(notes string) error {
	if m.Status != StatusScheduled {
		return shared.NewDomainError("INVALID_STATE", "Only scheduled meetings can be completed")
	}
	m.Status = StatusCompleted
	m.Notes = notes
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
	m.AddDomainEvent(NewMeetingCompletedEvent(m))
	return nil
}

// Overlaps reports whether the meeting's window intersects [startAt, endAt)
func (m *Meeting) Overlaps(startAt, endAt time.Time) bool {
	return m.StartAt.Before(endAt) && startAt.Before(m.EndAt)
}

// Duration returns the meeting length
func (m *Meeting) Duration() time.Duration {
	return m.EndAt.Sub(m.StartAt)
}

func validateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot be empty")
	}
	if len(title) > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot exceed 200 characters")
	}
	return nil
}

func validatePlatform(platform Platform) error {
	switch platform {
	case PlatformGoogleMeet, PlatformTeams, PlatformOther:
		return nil
	}
	return shared.NewDomainError("INVALID_PLATFORM", "Unknown meeting platform")
}

func validateWindow(startAt, endAt time.Time) error {
	if !endAt.After(startAt) {
		return shared.NewDomainError("INVALID_WINDOW", "End time must be after start time")
	}
	if endAt.Sub(startAt) > 8*time.Hour {
		return shared.NewDomainError("INVALID_WINDOW", "Meetings cannot exceed 8 hours")
	}
	return nil
}
