package conversation

import (
	"github.com/google/uuid"
	"github.com/nia/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeAnalysis = "ConversationAnalysis"

// Event type constants
const (
	EventTypeConversationAnalyzed = "ConversationAnalyzed"
)

// AnalyzedEvent is published when an extraction completes successfully.
// The lead scoring handler consumes it to write the AI score.
type AnalyzedEvent struct {
	shared.BaseDomainEvent
	AnalysisID    uuid.UUID  `json:"analysis_id"`
	LeadID        *uuid.UUID `json:"lead_id,omitempty"`
	ExtractedJSON string     `json:"extracted_json"`
}

// NewAnalyzedEvent creates a new AnalyzedEvent
func NewAnalyzedEvent(a *Analysis) *AnalyzedEvent {
	return &AnalyzedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeConversationAnalyzed, AggregateTypeAnalysis, a.ID),
		AnalysisID:      a.ID,
		LeadID:          a.LeadID,
		ExtractedJSON:   a.ExtractedJSON,
	}
}
