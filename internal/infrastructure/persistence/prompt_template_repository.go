package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nia/backend/internal/domain/adminconfig"
	"github.com/nia/backend/internal/domain/shared"
	"github.com/nia/backend/internal/infrastructure/persistence/models"
)

// GormPromptTemplateRepository implements adminconfig.Repository using GORM
type GormPromptTemplateRepository struct {
	db *gorm.DB
}

// NewGormPromptTemplateRepository creates a new GormPromptTemplateRepository
func NewGormPromptTemplateRepository(db *gorm.DB) *GormPromptTemplateRepository {
	return &GormPromptTemplateRepository{db: db}
}

// FindByID finds a template by ID
func (r *GormPromptTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*adminconfig.PromptTemplate, error) {
	var model models.PromptTemplateModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByName finds a template by its unique name
func (r *GormPromptTemplateRepository) FindByName(ctx context.Context, name string) (*adminconfig.PromptTemplate, error) {
	var model models.PromptTemplateModel
	if err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByKind finds the active template for a kind, if any
func (r *GormPromptTemplateRepository) FindActiveByKind(ctx context.Context, kind adminconfig.Kind) (*adminconfig.PromptTemplate, error) {
	var model models.PromptTemplateModel
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND active = true", kind).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all templates matching the filter
func (r *GormPromptTemplateRepository) FindAll(ctx context.Context, filter shared.Filter) ([]adminconfig.PromptTemplate, error) {
	var templateModels []models.PromptTemplateModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.PromptTemplateModel{}), filter)

	if err := query.Find(&templateModels).Error; err != nil {
		return nil, err
	}

	templates := make([]adminconfig.PromptTemplate, len(templateModels))
	for i, model := range templateModels {
		templates[i] = *model.ToDomain()
	}
	return templates, nil
}

// DeactivateKind clears the active flag on all templates of a kind.
// Run inside the same transaction as activating a new template so at
// most one template per kind stays active.
func (r *GormPromptTemplateRepository) DeactivateKind(ctx context.Context, kind adminconfig.Kind) error {
	return r.db.WithContext(ctx).Model(&models.PromptTemplateModel{}).
		Where("kind = ? AND active = true", kind).
		Update("active", false).Error
}

// Save creates or updates a template
func (r *GormPromptTemplateRepository) Save(ctx context.Context, t *adminconfig.PromptTemplate) error {
	model := &models.PromptTemplateModel{}
	model.FromDomain(t)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a template
func (r *GormPromptTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PromptTemplateModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter options including pagination and ordering
func (r *GormPromptTemplateRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR body ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "kind":
			query = query.Where("kind = ?", value)
		case "active":
			query = query.Where("active = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, PromptTemplateSortFields, "name")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// Ensure GormPromptTemplateRepository implements adminconfig.Repository
var _ adminconfig.Repository = (*GormPromptTemplateRepository)(nil)
