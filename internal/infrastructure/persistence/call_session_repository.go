package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nia/backend/internal/domain/shared"
	"github.com/nia/backend/internal/domain/voice"
	"github.com/nia/backend/internal/infrastructure/persistence/models"
)

// GormCallSessionRepository implements voice.SessionRepository using GORM
type GormCallSessionRepository struct {
	db *gorm.DB
}

// NewGormCallSessionRepository creates a new GormCallSessionRepository
func NewGormCallSessionRepository(db *gorm.DB) *GormCallSessionRepository {
	return &GormCallSessionRepository{db: db}
}

// FindByID finds a session by its ID
func (r *GormCallSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*voice.CallSession, error) {
	var model models.CallSessionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all sessions matching the filter
func (r *GormCallSessionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]voice.CallSession, error) {
	var sessionModels []models.CallSessionModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.CallSessionModel{}), filter)

	if err := query.Find(&sessionModels).Error; err != nil {
		return nil, err
	}

	sessions := make([]voice.CallSession, len(sessionModels))
	for i, model := range sessionModels {
		sessions[i] = *model.ToDomain()
	}
	return sessions, nil
}

// FindByOwner finds the sessions started by a sales rep
func (r *GormCallSessionRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]voice.CallSession, error) {
	var sessionModels []models.CallSessionModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.CallSessionModel{}).Where("owner_id = ?", ownerID),
		filter,
	)

	if err := query.Find(&sessionModels).Error; err != nil {
		return nil, err
	}

	sessions := make([]voice.CallSession, len(sessionModels))
	for i, model := range sessionModels {
		sessions[i] = *model.ToDomain()
	}
	return sessions, nil
}

// FindStaleActive finds active sessions started before the cutoff.
// The sweeper marks these failed so abandoned calls do not stay open.
func (r *GormCallSessionRepository) FindStaleActive(ctx context.Context, cutoff time.Time, limit int) ([]voice.CallSession, error) {
	var sessionModels []models.CallSessionModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND started_at < ?", voice.SessionStatusActive, cutoff).
		Order("started_at ASC").
		Limit(limit).
		Find(&sessionModels).Error; err != nil {
		return nil, err
	}

	sessions := make([]voice.CallSession, len(sessionModels))
	for i, model := range sessionModels {
		sessions[i] = *model.ToDomain()
	}
	return sessions, nil
}

// Save creates or updates a session
func (r *GormCallSessionRepository) Save(ctx context.Context, s *voice.CallSession) error {
	model := &models.CallSessionModel{}
	model.FromDomain(s)
	return r.db.WithContext(ctx).Save(model).Error
}

// Count counts sessions matching the filter
func (r *GormCallSessionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.CallSessionModel{}), filter)
	err := query.Count(&count).Error
	return count, err
}

// applyFilter applies filter options including pagination and ordering
func (r *GormCallSessionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, CallSessionSortFields, "started_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormCallSessionRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "lead_id":
			query = query.Where("lead_id = ?", value)
		case "owner_id":
			query = query.Where("owner_id = ?", value)
		}
	}
	return query
}

// Ensure GormCallSessionRepository implements voice.SessionRepository
var _ voice.SessionRepository = (*GormCallSessionRepository)(nil)
