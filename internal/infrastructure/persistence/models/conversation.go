package models

import (
	"github.com/google/uuid"

	"github.com/nia/backend/internal/domain/conversation"
)

// AnalysisModel is the persistence model for the conversation Analysis aggregate.
type AnalysisModel struct {
	AggregateModel
	LeadID         *uuid.UUID          `gorm:"type:uuid;index"`
	Transcript     string              `gorm:"type:text;not null"`
	TranscriptHash string              `gorm:"type:char(64);not null;index"`
	ExtractedJSON  string              `gorm:"type:jsonb"`
	Status         conversation.Status `gorm:"type:varchar(20);not null;default:'pending';index"`
	Error          string              `gorm:"type:text"`
	Model          string              `gorm:"type:varchar(100)"`
	PromptTokens   int                 `gorm:"not null;default:0"`
	OutputTokens   int                 `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (AnalysisModel) TableName() string {
	return "conversation_analyses"
}

// ToDomain converts the persistence model to a domain Analysis
func (m *AnalysisModel) ToDomain() *conversation.Analysis {
	a := &conversation.Analysis{
		LeadID:         m.LeadID,
		Transcript:     m.Transcript,
		TranscriptHash: m.TranscriptHash,
		ExtractedJSON:  m.ExtractedJSON,
		Status:         m.Status,
		Error:          m.Error,
		Model:          m.Model,
		PromptTokens:   m.PromptTokens,
		OutputTokens:   m.OutputTokens,
	}
	m.PopulateAggregateRoot(&a.BaseAggregateRoot)
	return a
}

// FromDomain populates the persistence model from a domain Analysis
func (m *AnalysisModel) FromDomain(a *conversation.Analysis) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.LeadID = a.LeadID
	m.Transcript = a.Transcript
	m.TranscriptHash = a.TranscriptHash
	m.ExtractedJSON = a.ExtractedJSON
	m.Status = a.Status
	m.Error = a.Error
	m.Model = a.Model
	m.PromptTokens = a.PromptTokens
	m.OutputTokens = a.OutputTokens
}
