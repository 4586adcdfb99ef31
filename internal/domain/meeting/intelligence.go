package meeting

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nia/backend/internal/domain/shared"
)

// ActionItem is one follow-up task extracted from post-meeting notes
type ActionItem struct {
	Description string `json:"description"`
	Owner       string `json:"owner,omitempty"`
	DueHint     string `json:"due_hint,omitempty"` // e.g. "end of week"
}

// Intelligence holds the AI-generated summary of a completed meeting.
type Intelligence struct {
	shared.BaseAggregateRoot
	MeetingID       uuid.UUID
	SourceNotes     string
	Summary         string
	ActionItemsJSON string
	Sentiment       string // positive, neutral, negative
	Model           string
}

// TableName returns the table name for GORM
func (Intelligence) TableName() string {
	return "meeting_intelligence"
}

// NewIntelligence creates meeting intelligence from submitted notes
func NewIntelligence(meetingID uuid.UUID, notes string) (*Intelligence, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil, shared.NewDomainError("INVALID_NOTES", "Meeting notes cannot be empty")
	}
	return &Intelligence{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		MeetingID:         meetingID,
		SourceNotes:       notes,
	}, nil
}

// ApplySummary records the AI-produced summary and action items
func (i *Intelligence) ApplySummary(summary, sentiment, model string, items []ActionItem) error {
	if strings.TrimSpace(summary) == "" {
		return shared.NewDomainError("INVALID_SUMMARY", "Summary cannot be empty")
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	i.Summary = summary
	i.Sentiment = sentiment
	i.ActionItemsJSON = string(payload)
	i.Model = model
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return nil
}

// ActionItems decodes the stored action items
func (i *Intelligence) ActionItems() ([]ActionItem, error) {
	if i.ActionItemsJSON == "" {
		return nil, nil
	}
	var items []ActionItem
	if err := json.Unmarshal([]byte(i.ActionItemsJSON), &items); err != nil {
		return nil, err
	}
	return items, nil
}
