package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nia/backend/internal/domain/conversation"
	"github.com/nia/backend/internal/domain/shared"
	"github.com/nia/backend/internal/infrastructure/persistence/models"
)

// GormAnalysisRepository implements conversation.Repository using GORM
type GormAnalysisRepository struct {
	db *gorm.DB
}

// NewGormAnalysisRepository creates a new GormAnalysisRepository
func NewGormAnalysisRepository(db *gorm.DB) *GormAnalysisRepository {
	return &GormAnalysisRepository{db: db}
}

// FindByID finds an analysis by its ID
func (r *GormAnalysisRepository) FindByID(ctx context.Context, id uuid.UUID) (*conversation.Analysis, error) {
	var model models.AnalysisModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTranscriptHash finds an analysis for an identical transcript.
// Only completed analyses count for dedupe so a failed run can be retried.
func (r *GormAnalysisRepository) FindByTranscriptHash(ctx context.Context, hash string) (*conversation.Analysis, error) {
	var model models.AnalysisModel
	if err := r.db.WithContext(ctx).
		Where("transcript_hash = ? AND status = ?", hash, conversation.StatusCompleted).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByLead finds all analyses linked to a lead
func (r *GormAnalysisRepository) FindByLead(ctx context.Context, leadID uuid.UUID, filter shared.Filter) ([]conversation.Analysis, error) {
	var analysisModels []models.AnalysisModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.AnalysisModel{}).Where("lead_id = ?", leadID),
		filter,
	)

	if err := query.Find(&analysisModels).Error; err != nil {
		return nil, err
	}

	analyses := make([]conversation.Analysis, len(analysisModels))
	for i, model := range analysisModels {
		analyses[i] = *model.ToDomain()
	}
	return analyses, nil
}

// FindAll finds all analyses matching the filter
func (r *GormAnalysisRepository) FindAll(ctx context.Context, filter shared.Filter) ([]conversation.Analysis, error) {
	var analysisModels []models.AnalysisModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.AnalysisModel{}), filter)

	if err := query.Find(&analysisModels).Error; err != nil {
		return nil, err
	}

	analyses := make([]conversation.Analysis, len(analysisModels))
	for i, model := range analysisModels {
		analyses[i] = *model.ToDomain()
	}
	return analyses, nil
}

// Save creates or updates an analysis
func (r *GormAnalysisRepository) Save(ctx context.Context, a *conversation.Analysis) error {
	model := &models.AnalysisModel{}
	model.FromDomain(a)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes an analysis
func (r *GormAnalysisRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.AnalysisModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts analyses matching the filter
func (r *GormAnalysisRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.AnalysisModel{}), filter)
	err := query.Count(&count).Error
	return count, err
}

// applyFilter applies filter options including pagination and ordering
func (r *GormAnalysisRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, AnalysisSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormAnalysisRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("transcript ILIKE ?", searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "lead_id":
			query = query.Where("lead_id = ?", value)
		case "model":
			query = query.Where("model = ?", value)
		}
	}

	return query
}

// Ensure GormAnalysisRepository implements conversation.Repository
var _ conversation.Repository = (*GormAnalysisRepository)(nil)
