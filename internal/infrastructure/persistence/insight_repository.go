package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nia/backend/internal/domain/insight"
	"github.com/nia/backend/internal/domain/shared"
	"github.com/nia/backend/internal/infrastructure/persistence/models"
)

// GormInsightRepository implements insight.Repository using GORM
type GormInsightRepository struct {
	db *gorm.DB
}

// NewGormInsightRepository creates a new GormInsightRepository
func NewGormInsightRepository(db *gorm.DB) *GormInsightRepository {
	return &GormInsightRepository{db: db}
}

// FindByLead finds the cached insight for a lead
func (r *GormInsightRepository) FindByLead(ctx context.Context, leadID uuid.UUID) (*insight.Insight, error) {
	var model models.InsightModel
	if err := r.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindStale finds insights generated before the cutoff, for scheduled refresh.
// Fallback rows are always considered stale regardless of age.
func (r *GormInsightRepository) FindStale(ctx context.Context, cutoff time.Time, limit int) ([]insight.Insight, error) {
	var insightModels []models.InsightModel
	if err := r.db.WithContext(ctx).
		Where("generated_at < ? OR fallback = true", cutoff).
		Order("generated_at ASC").
		Limit(limit).
		Find(&insightModels).Error; err != nil {
		return nil, err
	}

	insights := make([]insight.Insight, len(insightModels))
	for i, model := range insightModels {
		insights[i] = *model.ToDomain()
	}
	return insights, nil
}

// Save creates or updates an insight. The lead_id unique index makes this an
// upsert so concurrent generators cannot create duplicate rows per lead.
func (r *GormInsightRepository) Save(ctx context.Context, i *insight.Insight) error {
	model := &models.InsightModel{}
	model.FromDomain(i)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "lead_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"payload", "model", "generated_at", "fallback", "version", "updated_at",
			}),
		}).
		Create(model).Error
}

// DeleteByLead removes the cached insight for a lead
func (r *GormInsightRepository) DeleteByLead(ctx context.Context, leadID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.InsightModel{}, "lead_id = ?", leadID).Error
}

// Ensure GormInsightRepository implements insight.Repository
var _ insight.Repository = (*GormInsightRepository)(nil)
