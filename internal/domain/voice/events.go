package voice

import (
	"github.com/google/uuid"
	"github.com/nia/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeCallSession = "CallSession"

// Event type constants
const (
	EventTypeSessionStarted   = "CallSessionStarted"
	EventTypeSessionCompleted = "CallSessionCompleted"
)

// SessionStartedEvent is published when a call session starts
type SessionStartedEvent struct {
	shared.BaseDomainEvent
	SessionID uuid.UUID  `json:"session_id"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	LeadID    *uuid.UUID `json:"lead_id,omitempty"`
}

// NewSessionStartedEvent creates a new SessionStartedEvent
func NewSessionStartedEvent(s *CallSession) *SessionStartedEvent {
	return &SessionStartedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionStarted, AggregateTypeCallSession, s.ID),
		SessionID:       s.ID,
		OwnerID:         s.OwnerID,
		LeadID:          s.LeadID,
	}
}

// SessionCompletedEvent is published when a call session ends normally
type SessionCompletedEvent struct {
	shared.BaseDomainEvent
	SessionID  uuid.UUID  `json:"session_id"`
	OwnerID    uuid.UUID  `json:"owner_id"`
	LeadID     *uuid.UUID `json:"lead_id,omitempty"`
	ChunkCount int        `json:"chunk_count"`
	TotalBytes int64      `json:"total_bytes"`
}

// NewSessionCompletedEvent creates a new SessionCompletedEvent
func NewSessionCompletedEvent(s *CallSession) *SessionCompletedEvent {
	return &SessionCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionCompleted, AggregateTypeCallSession, s.ID),
		SessionID:       s.ID,
		OwnerID:         s.OwnerID,
		LeadID:          s.LeadID,
		ChunkCount:      s.ChunkCount,
		TotalBytes:      s.TotalBytes,
	}
}
