package adminconfig

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nia/backend/internal/domain/adminconfig"
	"github.com/nia/backend/internal/domain/shared"
)

// Service manages admin prompt templates. At most one template per kind is
// active; the AI pipelines fall back to the built-in default body when the
// active template of a kind is deleted or deactivated.
type Service struct {
	templateRepo adminconfig.Repository
	logger       *zap.Logger
}

// NewService creates a new template Service
func NewService(templateRepo adminconfig.Repository, logger *zap.Logger) *Service {
	return &Service{
		templateRepo: templateRepo,
		logger:       logger,
	}
}

// Create creates an inactive template
func (s *Service) Create(ctx context.Context, req CreateTemplateRequest) (*TemplateResponse, error) {
	if _, err := s.templateRepo.FindByName(ctx, req.Name); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A template with this name already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	template, err := adminconfig.NewPromptTemplate(req.Name, adminconfig.Kind(req.Kind), req.Body)
	if err != nil {
		return nil, err
	}

	if err := s.templateRepo.Save(ctx, template); err != nil {
		return nil, err
	}

	s.logger.Info("Prompt template created",
		zap.String("template_id", template.ID.String()),
		zap.String("kind", string(template.Kind)))

	response := ToTemplateResponse(template)
	return &response, nil
}

// GetByID retrieves a template by ID
func (s *Service) GetByID(ctx context.Context, templateID uuid.UUID) (*TemplateResponse, error) {
	template, err := s.templateRepo.FindByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	response := ToTemplateResponse(template)
	return &response, nil
}

// List retrieves templates with filtering and pagination
func (s *Service) List(ctx context.Context, filter TemplateListFilter) ([]TemplateResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  map[string]interface{}{},
	}
	if filter.Kind != "" {
		domainFilter.Filters["kind"] = filter.Kind
	}
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}

	templates, err := s.templateRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	return ToTemplateResponses(templates), nil
}

// Update updates a template's name or body
func (s *Service) Update(ctx context.Context, templateID uuid.UUID, req UpdateTemplateRequest) (*TemplateResponse, error) {
	template, err := s.templateRepo.FindByID(ctx, templateID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != template.Name {
		name := strings.TrimSpace(*req.Name)
		if name == "" || len(name) > 100 {
			return nil, shared.NewDomainError("INVALID_NAME", "Template name must be 1-100 characters")
		}
		if _, err := s.templateRepo.FindByName(ctx, name); err == nil {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "A template with this name already exists")
		} else if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		template.Name = name
	}
	if req.Body != nil {
		if err := template.UpdateBody(*req.Body); err != nil {
			return nil, err
		}
	}

	if err := s.templateRepo.Save(ctx, template); err != nil {
		return nil, err
	}

	response := ToTemplateResponse(template)
	return &response, nil
}

// Activate makes the template the single active one of its kind
func (s *Service) Activate(ctx context.Context, templateID uuid.UUID) (*TemplateResponse, error) {
	template, err := s.templateRepo.FindByID(ctx, templateID)
	if err != nil {
		return nil, err
	}

	if err := s.templateRepo.DeactivateKind(ctx, template.Kind); err != nil {
		return nil, err
	}
	template.Activate()
	if err := s.templateRepo.Save(ctx, template); err != nil {
		return nil, err
	}

	s.logger.Info("Prompt template activated",
		zap.String("template_id", template.ID.String()),
		zap.String("kind", string(template.Kind)))

	response := ToTemplateResponse(template)
	return &response, nil
}

// Deactivate clears the template's active flag; the pipeline for its kind
// falls back to the built-in default body
func (s *Service) Deactivate(ctx context.Context, templateID uuid.UUID) (*TemplateResponse, error) {
	template, err := s.templateRepo.FindByID(ctx, templateID)
	if err != nil {
		return nil, err
	}

	template.Deactivate()
	if err := s.templateRepo.Save(ctx, template); err != nil {
		return nil, err
	}

	response := ToTemplateResponse(template)
	return &response, nil
}

// Delete removes a template. Deleting the active template of a kind leaves
// that kind on the built-in default.
func (s *Service) Delete(ctx context.Context, templateID uuid.UUID) error {
	if _, err := s.templateRepo.FindByID(ctx, templateID); err != nil {
		return err
	}
	return s.templateRepo.Delete(ctx, templateID)
}

// Preview renders a stored template with sample placeholder values
func (s *Service) Preview(ctx context.Context, templateID uuid.UUID, req PreviewRequest) (*PreviewResponse, error) {
	template, err := s.templateRepo.FindByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	return &PreviewResponse{
		Rendered:     template.Render(req.Values),
		Placeholders: template.Placeholders(),
	}, nil
}

// EffectiveBody returns the prompt body a kind currently resolves to: the
// active template's body or the built-in default
func (s *Service) EffectiveBody(ctx context.Context, kind adminconfig.Kind) (string, bool, error) {
	template, err := s.templateRepo.FindActiveByKind(ctx, kind)
	if err == nil && template != nil {
		return template.Body, true, nil
	}
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return "", false, err
	}
	return adminconfig.DefaultBody(kind), false, nil
}
