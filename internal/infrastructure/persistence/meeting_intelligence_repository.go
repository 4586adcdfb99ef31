package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nia/backend/internal/domain/meeting"
	"github.com/nia/backend/internal/domain/shared"
	"github.com/nia/backend/internal/infrastructure/persistence/models"
)

// GormMeetingIntelligenceRepository implements meeting.IntelligenceRepository using GORM
type GormMeetingIntelligenceRepository struct {
	db *gorm.DB
}

// NewGormMeetingIntelligenceRepository creates a new GormMeetingIntelligenceRepository
func NewGormMeetingIntelligenceRepository(db *gorm.DB) *GormMeetingIntelligenceRepository {
	return &GormMeetingIntelligenceRepository{db: db}
}

// FindByMeeting finds the intelligence record for a meeting
func (r *GormMeetingIntelligenceRepository) FindByMeeting(ctx context.Context, meetingID uuid.UUID) (*meeting.Intelligence, error) {
	var model models.MeetingIntelligenceModel
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates an intelligence record. The meeting_id unique index
// makes this an upsert so regeneration replaces the previous record.
func (r *GormMeetingIntelligenceRepository) Save(ctx context.Context, i *meeting.Intelligence) error {
	model := &models.MeetingIntelligenceModel{}
	model.FromDomain(i)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "meeting_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"source_notes", "summary", "action_items_json", "sentiment", "model", "version", "updated_at",
			}),
		}).
		Create(model).Error
}

// Ensure GormMeetingIntelligenceRepository implements meeting.IntelligenceRepository
var _ meeting.IntelligenceRepository = (*GormMeetingIntelligenceRepository)(nil)
