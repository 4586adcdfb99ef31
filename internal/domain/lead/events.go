package lead

import (
	"github.com/google/uuid"
	"github.com/nia/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeLead = "Lead"

// Event type constants
const (
	EventTypeLeadCreated       = "LeadCreated"
	EventTypeLeadStatusChanged = "LeadStatusChanged"
	EventTypeLeadScored        = "LeadScored"
)

// LeadScoredSchemaVersion is the current payload schema of LeadScoredEvent.
// v1 named the explanation field "reasoning"; v2 renamed it to "rationale".
const LeadScoredSchemaVersion = 2

// LeadCreatedEvent is published when a new lead enters the pipeline
type LeadCreatedEvent struct {
	shared.BaseDomainEvent
	LeadID      uuid.UUID `json:"lead_id"`
	CompanyName string    `json:"company_name"`
	Source      Source    `json:"source"`
}

// NewLeadCreatedEvent creates a new LeadCreatedEvent
func NewLeadCreatedEvent(l *Lead) *LeadCreatedEvent {
	return &LeadCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeadCreated, AggregateTypeLead, l.ID),
		LeadID:          l.ID,
		CompanyName:     l.CompanyName,
		Source:          l.Source,
	}
}

// LeadStatusChangedEvent is published when a lead moves through the pipeline
type LeadStatusChangedEvent struct {
	shared.BaseDomainEvent
	LeadID    uuid.UUID `json:"lead_id"`
	OldStatus Status    `json:"old_status"`
	NewStatus Status    `json:"new_status"`
}

// NewLeadStatusChangedEvent creates a new LeadStatusChangedEvent
func NewLeadStatusChangedEvent(l *Lead, oldStatus Status) *LeadStatusChangedEvent {
	return &LeadStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeadStatusChanged, AggregateTypeLead, l.ID),
		LeadID:          l.ID,
		OldStatus:       oldStatus,
		NewStatus:       l.Status,
	}
}

// LeadScoredEvent is published when the AI pipeline writes a score
type LeadScoredEvent struct {
	shared.BaseDomainEvent
	LeadID    uuid.UUID `json:"lead_id"`
	Score     int       `json:"score"`
	Rationale string    `json:"rationale,omitempty"`
}

// NewLeadScoredEvent creates a new LeadScoredEvent
func NewLeadScoredEvent(l *Lead) *LeadScoredEvent {
	return &LeadScoredEvent{
		BaseDomainEvent: shared.NewVersionedBaseDomainEvent(EventTypeLeadScored, AggregateTypeLead, l.ID, LeadScoredSchemaVersion),
		LeadID:          l.ID,
		Score:           l.Score,
		Rationale:       l.ScoreRationale,
	}
}
