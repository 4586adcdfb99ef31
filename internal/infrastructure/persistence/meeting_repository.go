package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nia/backend/internal/domain/meeting"
	"github.com/nia/backend/internal/domain/shared"
	"github.com/nia/backend/internal/infrastructure/persistence/models"
)

// GormMeetingRepository implements meeting.Repository using GORM
type GormMeetingRepository struct {
	db *gorm.DB
}

// NewGormMeetingRepository creates a new GormMeetingRepository
func NewGormMeetingRepository(db *gorm.DB) *GormMeetingRepository {
	return &GormMeetingRepository{db: db}
}

// FindByID finds a meeting by its ID
func (r *GormMeetingRepository) FindByID(ctx context.Context, id uuid.UUID) (*meeting.Meeting, error) {
	var model models.MeetingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all meetings matching the filter
func (r *GormMeetingRepository) FindAll(ctx context.Context, filter shared.Filter) ([]meeting.Meeting, error) {
	var meetingModels []models.MeetingModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.MeetingModel{}), filter)

	if err := query.Find(&meetingModels).Error; err != nil {
		return nil, err
	}

	meetings := make([]meeting.Meeting, len(meetingModels))
	for i, model := range meetingModels {
		meetings[i] = *model.ToDomain()
	}
	return meetings, nil
}

// FindByLead finds meetings for a lead
func (r *GormMeetingRepository) FindByLead(ctx context.Context, leadID uuid.UUID, filter shared.Filter) ([]meeting.Meeting, error) {
	var meetingModels []models.MeetingModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.MeetingModel{}).Where("lead_id = ?", leadID),
		filter,
	)

	if err := query.Find(&meetingModels).Error; err != nil {
		return nil, err
	}

	meetings := make([]meeting.Meeting, len(meetingModels))
	for i, model := range meetingModels {
		meetings[i] = *model.ToDomain()
	}
	return meetings, nil
}

// FindByOwnerBetween finds the owner's meetings intersecting [from, to).
// Used by conflict detection; intervals are half-open so back-to-back
// meetings do not collide.
func (r *GormMeetingRepository) FindByOwnerBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]meeting.Meeting, error) {
	var meetingModels []models.MeetingModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND start_at < ? AND end_at > ?", ownerID, to, from).
		Order("start_at ASC").
		Find(&meetingModels).Error; err != nil {
		return nil, err
	}

	meetings := make([]meeting.Meeting, len(meetingModels))
	for i, model := range meetingModels {
		meetings[i] = *model.ToDomain()
	}
	return meetings, nil
}

// FindUpcoming finds scheduled meetings starting after now
func (r *GormMeetingRepository) FindUpcoming(ctx context.Context, filter shared.Filter) ([]meeting.Meeting, error) {
	var meetingModels []models.MeetingModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.MeetingModel{}).
			Where("status = ? AND start_at > ?", meeting.StatusScheduled, time.Now().UTC()),
		filter,
	)

	if err := query.Find(&meetingModels).Error; err != nil {
		return nil, err
	}

	meetings := make([]meeting.Meeting, len(meetingModels))
	for i, model := range meetingModels {
		meetings[i] = *model.ToDomain()
	}
	return meetings, nil
}

// Save creates or updates a meeting
func (r *GormMeetingRepository) Save(ctx context.Context, m *meeting.Meeting) error {
	model := &models.MeetingModel{}
	model.FromDomain(m)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a meeting
func (r *GormMeetingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.MeetingModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts meetings matching the filter
func (r *GormMeetingRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.MeetingModel{}), filter)
	err := query.Count(&count).Error
	return count, err
}

// CountByStatus returns meeting counts grouped by status
func (r *GormMeetingRepository) CountByStatus(ctx context.Context) (map[meeting.Status]int64, error) {
	type row struct {
		Status meeting.Status
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&models.MeetingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[meeting.Status]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Count
	}
	return counts, nil
}

// applyFilter applies filter options including pagination and ordering
func (r *GormMeetingRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, MeetingSortFields, "start_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormMeetingRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR agenda ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "platform":
			query = query.Where("platform = ?", value)
		case "lead_id":
			query = query.Where("lead_id = ?", value)
		case "owner_id":
			query = query.Where("owner_id = ?", value)
		case "from":
			query = query.Where("start_at >= ?", value)
		case "to":
			query = query.Where("start_at < ?", value)
		}
	}

	return query
}

// Ensure GormMeetingRepository implements meeting.Repository
var _ meeting.Repository = (*GormMeetingRepository)(nil)
