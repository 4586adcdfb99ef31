package conversation

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nia/backend/internal/domain/shared"
)

// Status represents the extraction state of a conversation analysis
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Extraction holds the structured fields the AI pulled out of a transcript.
// Stored as JSON alongside the raw transcript.
type Extraction struct {
	CompanyName string `json:"company_name,omitempty"`
	ContactName string `json:"contact_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Intent      string `json:"intent,omitempty"`
	Summary     string `json:"summary,omitempty"`
	Score       int    `json:"score"`
	Rationale   string `json:"rationale,omitempty"`
}

// IsEmpty returns true when nothing useful was extracted
func (e Extraction) IsEmpty() bool {
	return e.CompanyName == "" && e.ContactName == "" && e.Email == "" &&
		e.Phone == "" && e.Intent == "" && e.Summary == ""
}

// Analysis represents a stored transcript plus the AI-extracted fields.
// It is the aggregate root for conversation analysis operations.
type Analysis struct {
	shared.BaseAggregateRoot
	LeadID         *uuid.UUID // Linked after extraction
	Transcript     string
	TranscriptHash string
	ExtractedJSON  string
	Status         Status
	Error          string
	Model          string // Gemini model that produced the extraction
	PromptTokens   int
	OutputTokens   int
}

// TableName returns the table name for GORM
func (Analysis) TableName() string {
	return "conversation_analyses"
}

// NewAnalysis creates a pending analysis for a transcript
func NewAnalysis(transcript string) (*Analysis, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, shared.NewDomainError("INVALID_TRANSCRIPT", "Transcript cannot be empty")
	}
	return &Analysis{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Transcript:        transcript,
		TranscriptHash:    HashTranscript(transcript),
		Status:            StatusPending,
	}, nil
}

// Complete records a successful extraction
func (a *Analysis) Complete(extractedJSON, model string, promptTokens, outputTokens int) error {
	if a.Status == StatusCompleted {
		return shared.NewDomainError("INVALID_STATE", "Analysis is already completed")
	}
	a.ExtractedJSON = extractedJSON
	a.Model = model
	a.PromptTokens = promptTokens
	a.OutputTokens = outputTokens
	a.Status = StatusCompleted
	a.Error = ""
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	a.AddDomainEvent(NewAnalyzedEvent(a))
	return nil
}

// Fail records a failed extraction; the raw transcript is kept
func (a *Analysis) Fail(reason string) {
	a.Status = StatusFailed
	a.Error = reason
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

// LinkLead associates the analysis with the lead it produced or updated
func (a *Analysis) LinkLead(leadID uuid.UUID) {
	a.LeadID = &leadID
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

// ResetForReanalysis puts a completed or failed analysis back to pending
func (a *Analysis) ResetForReanalysis() error {
	if a.Status == StatusPending {
		return shared.NewDomainError("INVALID_STATE", "Analysis is already pending")
	}
	a.Status = StatusPending
	a.ExtractedJSON = ""
	a.Error = ""
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// HashTranscript returns the dedupe key for a transcript
func HashTranscript(transcript string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(transcript)))
	return hex.EncodeToString(sum[:])
}
