package voice

import (
	"time"

	"github.com/google/uuid"
	"github.com/nia/backend/internal/domain/shared"
)

// SessionStatus represents the lifecycle status of a call session
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusFailed    SessionStatus = "failed"
)

// CallSession tracks bookkeeping for one voice call: chunk counters,
// byte totals and the lifecycle status. No audio processing happens here.
type CallSession struct {
	shared.BaseAggregateRoot
	LeadID     *uuid.UUID
	OwnerID    uuid.UUID
	Status     SessionStatus
	StartedAt  time.Time
	EndedAt    *time.Time
	ChunkCount int
	TotalBytes int64
	AnalysisID *uuid.UUID // Conversation analysis built from the final transcript
	FailReason string
}

// TableName returns the table name for GORM
func (CallSession) TableName() string {
	return "call_sessions"
}

// NewCallSession starts a new active session for a sales rep
func NewCallSession(ownerID uuid.UUID, leadID *uuid.UUID) (*CallSession, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner ID is required")
	}
	s := &CallSession{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		LeadID:            leadID,
		OwnerID:           ownerID,
		Status:            SessionStatusActive,
		StartedAt:         time.Now(),
	}
	s.AddDomainEvent(NewSessionStartedEvent(s))
	return s, nil
}

// AcceptChunk validates and records an incoming chunk. Sequence numbers are
// zero-based and must be contiguous; a gap or replay is rejected.
func (s *CallSession) AcceptChunk(sequence int, size int64) (*AudioChunk, error) {
	if s.Status != SessionStatusActive {
		return nil, shared.NewDomainError("SESSION_CLOSED", "Session is not active")
	}
	if sequence != s.ChunkCount {
		return nil, shared.NewDomainError("SEQUENCE_GAP", "Chunk sequence is out of order")
	}
	if size <= 0 {
		return nil, shared.NewDomainError("INVALID_CHUNK", "Chunk size must be positive")
	}
	chunk := newAudioChunk(s.ID, sequence, size)
	s.ChunkCount++
	s.TotalBytes += size
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return chunk, nil
}

// Complete ends the session normally
func (s *CallSession) Complete() error {
	if s.Status != SessionStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Only active sessions can be completed")
	}
	now := time.Now()
	s.Status = SessionStatusCompleted
	s.EndedAt = &now
	s.UpdatedAt = now
	s.IncrementVersion()
	s.AddDomainEvent(NewSessionCompletedEvent(s))
	return nil
}

// Fail ends the session abnormally with a reason
func (s *CallSession) Fail(reason string) error {
	if s.Status != SessionStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Only active sessions can be failed")
	}
	now := time.Now()
	s.Status = SessionStatusFailed
	s.EndedAt = &now
	s.FailReason = reason
	s.UpdatedAt = now
	s.IncrementVersion()
	return nil
}

// LinkAnalysis attaches the conversation analysis generated from the call transcript
func (s *CallSession) LinkAnalysis(analysisID uuid.UUID) {
	s.AnalysisID = &analysisID
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// Age returns how long the session has been running
func (s *CallSession) Age() time.Duration {
	if s.EndedAt != nil {
		return s.EndedAt.Sub(s.StartedAt)
	}
	return time.Since(s.StartedAt)
}

// IsStale reports whether an active session has outlived maxAge
func (s *CallSession) IsStale(maxAge time.Duration) bool {
	return s.Status == SessionStatusActive && time.Since(s.StartedAt) > maxAge
}
