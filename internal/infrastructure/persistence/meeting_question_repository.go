package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nia/backend/internal/domain/meeting"
	"github.com/nia/backend/internal/infrastructure/persistence/models"
)

// GormMeetingQuestionRepository implements meeting.QuestionRepository using GORM
type GormMeetingQuestionRepository struct {
	db *gorm.DB
}

// NewGormMeetingQuestionRepository creates a new GormMeetingQuestionRepository
func NewGormMeetingQuestionRepository(db *gorm.DB) *GormMeetingQuestionRepository {
	return &GormMeetingQuestionRepository{db: db}
}

// FindByMeeting finds all questions for a meeting in position order
func (r *GormMeetingQuestionRepository) FindByMeeting(ctx context.Context, meetingID uuid.UUID) ([]meeting.Question, error) {
	var questionModels []models.MeetingQuestionModel
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("position ASC").
		Find(&questionModels).Error; err != nil {
		return nil, err
	}

	questions := make([]meeting.Question, len(questionModels))
	for i, model := range questionModels {
		questions[i] = *model.ToDomain()
	}
	return questions, nil
}

// ReplaceForMeeting atomically replaces a meeting's question list.
// Regeneration always produces a full list, never a partial update.
func (r *GormMeetingQuestionRepository) ReplaceForMeeting(ctx context.Context, meetingID uuid.UUID, questions []*meeting.Question) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.MeetingQuestionModel{}, "meeting_id = ?", meetingID).Error; err != nil {
			return err
		}
		if len(questions) == 0 {
			return nil
		}
		questionModels := make([]*models.MeetingQuestionModel, len(questions))
		for i, q := range questions {
			m := &models.MeetingQuestionModel{}
			m.FromDomain(q)
			questionModels[i] = m
		}
		return tx.Create(questionModels).Error
	})
}

// DeleteByMeeting removes all questions for a meeting
func (r *GormMeetingQuestionRepository) DeleteByMeeting(ctx context.Context, meetingID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.MeetingQuestionModel{}, "meeting_id = ?", meetingID).Error
}

// Ensure GormMeetingQuestionRepository implements meeting.QuestionRepository
var _ meeting.QuestionRepository = (*GormMeetingQuestionRepository)(nil)
