package meeting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nia/backend/internal/domain/shared"
)

// Repository defines the interface for meeting persistence
type Repository interface {
	// FindByID finds a meeting by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Meeting, error)

	// FindAll finds all meetings matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Meeting, error)

	// FindByLead finds meetings for a lead
	FindByLead(ctx context.Context, leadID uuid.UUID, filter shared.Filter) ([]Meeting, error)

	// FindByOwnerBetween finds the owner's meetings intersecting [from, to)
	FindByOwnerBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]Meeting, error)

	// FindUpcoming finds scheduled meetings starting after now
	FindUpcoming(ctx context.Context, filter shared.Filter) ([]Meeting, error)

	// Save creates or updates a meeting
	Save(ctx context.Context, m *Meeting) error

	// Delete removes a meeting
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts meetings matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus returns meeting counts grouped by status
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}

// QuestionRepository defines the interface for meeting question persistence
type QuestionRepository interface {
	// FindByMeeting finds all questions for a meeting in position order
	FindByMeeting(ctx context.Context, meetingID uuid.UUID) ([]Question, error)

	// ReplaceForMeeting atomically replaces a meeting's question list
	ReplaceForMeeting(ctx context.Context, meetingID uuid.UUID, questions []*Question) error

	// DeleteByMeeting removes all questions for a meeting
	DeleteByMeeting(ctx context.Context, meetingID uuid.UUID) error
}

// IntelligenceRepository defines the interface for meeting intelligence persistence
type IntelligenceRepository interface {
	// FindByMeeting finds the intelligence record for a meeting
	FindByMeeting(ctx context.Context, meetingID uuid.UUID) (*Intelligence, error)

	// Save creates or updates an intelligence record (one per meeting)
	Save(ctx context.Context, i *Intelligence) error
}
