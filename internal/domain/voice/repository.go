package voice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nia/backend/internal/domain/shared"
)

// SessionRepository defines the interface for call session persistence
type SessionRepository interface {
	// FindByID finds a session by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*CallSession, error)

	// FindAll finds all sessions matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]CallSession, error)

	// FindByOwner finds the sessions started by a sales rep
	FindByOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]CallSession, error)

	// FindStaleActive finds active sessions started before the cutoff
	FindStaleActive(ctx context.Context, cutoff time.Time, limit int) ([]CallSession, error)

	// Save creates or updates a session
	Save(ctx context.Context, s *CallSession) error

	// Count counts sessions matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// ChunkRepository defines the interface for audio chunk persistence
type ChunkRepository interface {
	// FindBySession finds all chunks of a session in sequence order
	FindBySession(ctx context.Context, sessionID uuid.UUID) ([]AudioChunk, error)

	// Save persists a chunk record
	Save(ctx context.Context, c *AudioChunk) error

	// DeleteBySession removes all chunk records of a session
	DeleteBySession(ctx context.Context, sessionID uuid.UUID) error
}
