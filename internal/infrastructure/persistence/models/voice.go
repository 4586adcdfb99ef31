package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/nia/backend/internal/domain/voice"
)

// CallSessionModel is the persistence model for the CallSession aggregate.
type CallSessionModel struct {
	AggregateModel
	LeadID     *uuid.UUID          `gorm:"type:uuid;index"`
	OwnerID    uuid.UUID           `gorm:"type:uuid;not null;index"`
	Status     voice.SessionStatus `gorm:"type:varchar(20);not null;default:'active';index"`
	StartedAt  time.Time           `gorm:"not null"`
	EndedAt    *time.Time
	ChunkCount int        `gorm:"not null;default:0"`
	TotalBytes int64      `gorm:"not null;default:0"`
	AnalysisID *uuid.UUID `gorm:"type:uuid"`
	FailReason string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CallSessionModel) TableName() string {
	return "call_sessions"
}

// ToDomain converts the persistence model to a domain CallSession
func (m *CallSessionModel) ToDomain() *voice.CallSession {
	s := &voice.CallSession{
		LeadID:     m.LeadID,
		OwnerID:    m.OwnerID,
		Status:     m.Status,
		StartedAt:  m.StartedAt,
		EndedAt:    m.EndedAt,
		ChunkCount: m.ChunkCount,
		TotalBytes: m.TotalBytes,
		AnalysisID: m.AnalysisID,
		FailReason: m.FailReason,
	}
	m.PopulateAggregateRoot(&s.BaseAggregateRoot)
	return s
}

// FromDomain populates the persistence model from a domain CallSession
func (m *CallSessionModel) FromDomain(s *voice.CallSession) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.LeadID = s.LeadID
	m.OwnerID = s.OwnerID
	m.Status = s.Status
	m.StartedAt = s.StartedAt
	m.EndedAt = s.EndedAt
	m.ChunkCount = s.ChunkCount
	m.TotalBytes = s.TotalBytes
	m.AnalysisID = s.AnalysisID
	m.FailReason = s.FailReason
}

// AudioChunkModel is the persistence model for uploaded audio chunk metadata.
// The chunk bytes live in object storage under StorageKey.
type AudioChunkModel struct {
	BaseModel
	SessionID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_chunk_session_seq,priority:1"`
	Sequence   int       `gorm:"not null;uniqueIndex:idx_chunk_session_seq,priority:2"`
	Size       int64     `gorm:"not null"`
	StorageKey string    `gorm:"type:varchar(500);not null"`
}

// TableName returns the table name for GORM
func (AudioChunkModel) TableName() string {
	return "audio_chunks"
}

// ToDomain converts the persistence model to a domain AudioChunk
func (m *AudioChunkModel) ToDomain() *voice.AudioChunk {
	return &voice.AudioChunk{
		BaseEntity: m.BaseModel.ToDomain(),
		SessionID:  m.SessionID,
		Sequence:   m.Sequence,
		Size:       m.Size,
		StorageKey: m.StorageKey,
	}
}

// FromDomain populates the persistence model from a domain AudioChunk
func (m *AudioChunkModel) FromDomain(c *voice.AudioChunk) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.SessionID = c.SessionID
	m.Sequence = c.Sequence
	m.Size = c.Size
	m.StorageKey = c.StorageKey
}
