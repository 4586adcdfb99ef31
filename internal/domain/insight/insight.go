package insight

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nia/backend/internal/domain/shared"
)

// Recommendation is one AI-suggested next action for a lead
type Recommendation struct {
	Action   string `json:"action"`
	Reason   string `json:"reason,omitempty"`
	Priority string `json:"priority,omitempty"` // high, medium, low
}

// DefaultRecommendations is returned whenever the AI call fails or no
// insight has been generated yet. The caller must never see a 5xx for a
// missing insight.
func DefaultRecommendations() []Recommendation {
	return []Recommendation{
		{Action: "Follow up with the lead within 24 hours", Priority: "high"},
		{Action: "Review the conversation history before the next touchpoint", Priority: "medium"},
		{Action: "Schedule a discovery meeting", Priority: "medium"},
	}
}

// Insight holds cached AI recommendations for a lead.
type Insight struct {
	shared.BaseAggregateRoot
	LeadID      uuid.UUID
	Payload     string // JSON array of Recommendation
	Model       string
	GeneratedAt time.Time
	Fallback    bool // true when Payload is the default set
}

// TableName returns the table name for GORM
func (Insight) TableName() string {
	return "ai_insights"
}

// NewInsight creates an insight for a lead from generated recommendations
func NewInsight(leadID uuid.UUID, recs []Recommendation, model string) (*Insight, error) {
	if leadID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LEAD", "Lead ID is required")
	}
	payload, err := json.Marshal(recs)
	if err != nil {
		return nil, err
	}
	return &Insight{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		LeadID:            leadID,
		Payload:           string(payload),
		Model:             model,
		GeneratedAt:       time.Now(),
		Fallback:          false,
	}, nil
}

// NewFallbackInsight creates an insight carrying the default recommendation set
func NewFallbackInsight(leadID uuid.UUID) *Insight {
	payload, _ := json.Marshal(DefaultRecommendations())
	return &Insight{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		LeadID:            leadID,
		Payload:           string(payload),
		GeneratedAt:       time.Now(),
		Fallback:          true,
	}
}

// Refresh replaces the cached recommendations
func (i *Insight) Refresh(recs []Recommendation, model string) error {
	payload, err := json.Marshal(recs)
	if err != nil {
		return err
	}
	i.Payload = string(payload)
	i.Model = model
	i.GeneratedAt = time.Now()
	i.Fallback = false
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return nil
}

// Recommendations decodes the cached payload
func (i *Insight) Recommendations() ([]Recommendation, error) {
	var recs []Recommendation
	if err := json.Unmarshal([]byte(i.Payload), &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// IsStale returns true when the insight is older than maxAge
func (i *Insight) IsStale(maxAge time.Duration) bool {
	return i.Fallback || time.Since(i.GeneratedAt) > maxAge
}
