package meeting

import (
	"time"

	"github.com/google/uuid"

	"github.com/nia/backend/internal/domain/meeting"
)

// ScheduleMeetingRequest carries the fields to schedule a meeting
type ScheduleMeetingRequest struct {
	LeadID   uuid.UUID  `json:"lead_id" binding:"required"`
	OwnerID  *uuid.UUID `json:"owner_id"` // Defaults to the authenticated user
	Title    string     `json:"title" binding:"required,max=200"`
	Agenda   string     `json:"agenda"`
	Platform string     `json:"platform" binding:"required,oneof=google_meet teams other"`
	JoinURL  string     `json:"join_url" binding:"omitempty,max=500,url"`
	StartAt  time.Time  `json:"start_at" binding:"required"`
	EndAt    time.Time  `json:"end_at" binding:"required"`
}

// UpdateMeetingRequest carries partial updates to meeting details
type UpdateMeetingRequest struct {
	Title   *string `json:"title" binding:"omitempty,max=200"`
	Agenda  *string `json:"agenda"`
	JoinURL *string `json:"join_url" binding:"omitempty,max=500"`
}

// RescheduleRequest moves a meeting to a new time window
type RescheduleRequest struct {
	StartAt time.Time `json:"start_at" binding:"required"`
	EndAt   time.Time `json:"end_at" binding:"required"`
}

// CompleteMeetingRequest carries the post-meeting notes
type CompleteMeetingRequest struct {
	Notes string `json:"notes"`
}

// GenerateQuestionsRequest controls preparation question generation
type GenerateQuestionsRequest struct {
	MaxQuestions int `json:"max_questions" binding:"omitempty,min=1,max=20"`
}

// SubmitNotesRequest carries notes for post-meeting intelligence
type SubmitNotesRequest struct {
	Notes string `json:"notes" binding:"required"`
}

// MeetingListFilter carries pagination and filtering for meeting listings
type MeetingListFilter struct {
	Page     int    `form:"page,omitempty" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,omitempty" binding:"omitempty,min=1,max=100"`
	LeadID   string `form:"lead_id,omitempty" binding:"omitempty,uuid"`
	OwnerID  string `form:"owner_id,omitempty" binding:"omitempty,uuid"`
	Status   string `form:"status,omitempty" binding:"omitempty,oneof=scheduled completed cancelled"`
	Day      string `form:"day,omitempty" binding:"omitempty,datetime=2006-01-02"`
	Upcoming bool   `form:"upcoming,omitempty"`
}

// MeetingResponse represents a meeting in API responses
type MeetingResponse struct {
	ID        uuid.UUID `json:"id"`
	LeadID    uuid.UUID `json:"lead_id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Title     string    `json:"title"`
	Agenda    string    `json:"agenda,omitempty"`
	Platform  string    `json:"platform"`
	JoinURL   string    `json:"join_url,omitempty"`
	StartAt   time.Time `json:"start_at"`
	EndAt     time.Time `json:"end_at"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToMeetingResponse converts a domain Meeting to a MeetingResponse
func ToMeetingResponse(m *meeting.Meeting) MeetingResponse {
	return MeetingResponse{
		ID:        m.ID,
		LeadID:    m.LeadID,
		OwnerID:   m.OwnerID,
		Title:     m.Title,
		Agenda:    m.Agenda,
		Platform:  string(m.Platform),
		JoinURL:   m.JoinURL,
		StartAt:   m.StartAt,
		EndAt:     m.EndAt,
		Status:    string(m.Status),
		Notes:     m.Notes,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ToMeetingResponses converts a slice of domain meetings
func ToMeetingResponses(meetings []meeting.Meeting) []MeetingResponse {
	responses := make([]MeetingResponse, len(meetings))
	for i := range meetings {
		responses[i] = ToMeetingResponse(&meetings[i])
	}
	return responses
}

// QuestionResponse represents one preparation question in API responses
type QuestionResponse struct {
	ID       uuid.UUID `json:"id"`
	Position int       `json:"position"`
	Text     string    `json:"text"`
	Model    string    `json:"model,omitempty"`
}

// ToQuestionResponses converts domain questions in position order
func ToQuestionResponses(questions []meeting.Question) []QuestionResponse {
	responses := make([]QuestionResponse, len(questions))
	for i := range questions {
		responses[i] = QuestionResponse{
			ID:       questions[i].ID,
			Position: questions[i].Position,
			Text:     questions[i].Text,
			Model:    questions[i].Model,
		}
	}
	return responses
}

// IntelligenceResponse represents a post-meeting summary in API responses
type IntelligenceResponse struct {
	MeetingID   uuid.UUID            `json:"meeting_id"`
	Summary     string               `json:"summary"`
	ActionItems []meeting.ActionItem `json:"action_items"`
	Sentiment   string               `json:"sentiment,omitempty"`
	Model       string               `json:"model,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

// ToIntelligenceResponse converts a domain Intelligence record
func ToIntelligenceResponse(i *meeting.Intelligence) IntelligenceResponse {
	items, err := i.ActionItems()
	if err != nil {
		items = nil
	}
	return IntelligenceResponse{
		MeetingID:   i.MeetingID,
		Summary:     i.Summary,
		ActionItems: items,
		Sentiment:   i.Sentiment,
		Model:       i.Model,
		CreatedAt:   i.CreatedAt,
	}
}
