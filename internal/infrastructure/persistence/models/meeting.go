package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/nia/backend/internal/domain/meeting"
)

// MeetingModel is the persistence model for the Meeting aggregate.
type MeetingModel struct {
	AggregateModel
	LeadID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	OwnerID  uuid.UUID        `gorm:"type:uuid;not null;index"`
	Title    string           `gorm:"type:varchar(200);not null"`
	Agenda   string           `gorm:"type:text"`
	Platform meeting.Platform `gorm:"type:varchar(20);not null;default:'other'"`
	JoinURL  string           `gorm:"type:varchar(500)"`
	StartAt  time.Time        `gorm:"not null;index"`
	EndAt    time.Time        `gorm:"not null"`
	Status   meeting.Status   `gorm:"type:varchar(20);not null;default:'scheduled';index"`
	Notes    string           `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (MeetingModel) TableName() string {
	return "meetings"
}

// ToDomain converts the persistence model to a domain Meeting
func (m *MeetingModel) ToDomain() *meeting.Meeting {
	mt := &meeting.Meeting{
		LeadID:   m.LeadID,
		OwnerID:  m.OwnerID,
		Title:    m.Title,
		Agenda:   m.Agenda,
		Platform: m.Platform,
		JoinURL:  m.JoinURL,
		StartAt:  m.StartAt,
		EndAt:    m.EndAt,
		Status:   m.Status,
		Notes:    m.Notes,
	}
	m.PopulateAggregateRoot(&mt.BaseAggregateRoot)
	return mt
}

// FromDomain populates the persistence model from a domain Meeting
func (m *MeetingModel) FromDomain(mt *meeting.Meeting) {
	m.FromDomainAggregateRoot(mt.BaseAggregateRoot)
	m.LeadID = mt.LeadID
	m.OwnerID = mt.OwnerID
	m.Title = mt.Title
	m.Agenda = mt.Agenda
	m.Platform = mt.Platform
	m.JoinURL = mt.JoinURL
	m.StartAt = mt.StartAt
	m.EndAt = mt.EndAt
	m.Status = mt.Status
	m.Notes = mt.Notes
}

// MeetingQuestionModel is the persistence model for AI-generated prep questions.
type MeetingQuestionModel struct {
	BaseModel
	MeetingID uuid.UUID `gorm:"type:uuid;not null;index:idx_question_meeting_pos,priority:1"`
	Position  int       `gorm:"not null;default:0;index:idx_question_meeting_pos,priority:2"`
	Text      string    `gorm:"type:text;not null"`
	Model     string    `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (MeetingQuestionModel) TableName() string {
	return "meeting_questions"
}

// ToDomain converts the persistence model to a domain Question
func (m *MeetingQuestionModel) ToDomain() *meeting.Question {
	return &meeting.Question{
		BaseEntity: m.BaseModel.ToDomain(),
		MeetingID:  m.MeetingID,
		Position:   m.Position,
		Text:       m.Text,
		Model:      m.Model,
	}
}

// FromDomain populates the persistence model from a domain Question
func (m *MeetingQuestionModel) FromDomain(q *meeting.Question) {
	m.FromDomainBaseEntity(q.BaseEntity)
	m.MeetingID = q.MeetingID
	m.Position = q.Position
	m.Text = q.Text
	m.Model = q.Model
}

// MeetingIntelligenceModel is the persistence model for post-meeting intelligence.
type MeetingIntelligenceModel struct {
	AggregateModel
	MeetingID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	SourceNotes     string    `gorm:"type:text;not null"`
	Summary         string    `gorm:"type:text"`
	ActionItemsJSON string    `gorm:"type:jsonb"`
	Sentiment       string    `gorm:"type:varchar(20)"`
	Model           string    `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (MeetingIntelligenceModel) TableName() string {
	return "meeting_intelligence"
}

// ToDomain converts the persistence model to a domain Intelligence
func (m *MeetingIntelligenceModel) ToDomain() *meeting.Intelligence {
	in := &meeting.Intelligence{
		MeetingID:       m.MeetingID,
		SourceNotes:     m.SourceNotes,
		Summary:         m.Summary,
		ActionItemsJSON: m.ActionItemsJSON,
		Sentiment:       m.Sentiment,
		Model:           m.Model,
	}
	m.PopulateAggregateRoot(&in.BaseAggregateRoot)
	return in
}

// FromDomain populates the persistence model from a domain Intelligence
func (m *MeetingIntelligenceModel) FromDomain(in *meeting.Intelligence) {
	m.FromDomainAggregateRoot(in.BaseAggregateRoot)
	m.MeetingID = in.MeetingID
	m.SourceNotes = in.SourceNotes
	m.Summary = in.Summary
	m.ActionItemsJSON = in.ActionItemsJSON
	m.Sentiment = in.Sentiment
	m.Model = in.Model
}
