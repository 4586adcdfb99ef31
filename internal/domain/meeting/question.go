package meeting

import (
	"strings"

	"github.com/google/uuid"
	"github.com/nia/backend/internal/domain/shared"
)

// Question is one AI-generated preparation question for a meeting
type Question struct {
	shared.BaseEntity
	MeetingID uuid.UUID
	Position  int // Order within the list
	Text      string
	Model     string
}

// TableName returns the table name for GORM
func (Question) TableName() string {
	return "meeting_questions"
}

// NewQuestion creates a preparation question for a meeting
func NewQuestion(meetingID uuid.UUID, position int, text, model string) (*Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, shared.NewDomainError("INVALID_QUESTION", "Question text cannot be empty")
	}
	return &Question{
		BaseEntity: shared.NewBaseEntity(),
		MeetingID:  meetingID,
		Position:   position,
		Text:       text,
		Model:      model,
	}, nil
}
