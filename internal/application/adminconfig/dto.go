package adminconfig

import (
	"time"

	"github.com/google/uuid"

	"github.com/nia/backend/internal/domain/adminconfig"
)

// CreateTemplateRequest carries the fields to create a prompt template
type CreateTemplateRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	Kind string `json:"kind" binding:"required,oneof=extraction recommendation questions intelligence"`
	Body string `json:"body" binding:"required"`
}

// UpdateTemplateRequest carries partial updates to a template
type UpdateTemplateRequest struct {
	Name *string `json:"name" binding:"omitempty,max=100"`
	Body *string `json:"body"`
}

// PreviewRequest renders a template body with sample placeholder values
type PreviewRequest struct {
	Values map[string]string `json:"values"`
}

// TemplateListFilter carries pagination and filtering for template listings
type TemplateListFilter struct {
	Page     int    `form:"page,omitempty" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,omitempty" binding:"omitempty,min=1,max=100"`
	Kind     string `form:"kind,omitempty" binding:"omitempty,oneof=extraction recommendation questions intelligence"`
	Active   *bool  `form:"active,omitempty"`
}

// TemplateResponse represents a prompt template in API responses
type TemplateResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Kind         string    `json:"kind"`
	Body         string    `json:"body"`
	Active       bool      `json:"active"`
	Placeholders []string  `json:"placeholders"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToTemplateResponse converts a domain PromptTemplate to a TemplateResponse
func ToTemplateResponse(t *adminconfig.PromptTemplate) TemplateResponse {
	return TemplateResponse{
		ID:           t.ID,
		Name:         t.Name,
		Kind:         string(t.Kind),
		Body:         t.Body,
		Active:       t.Active,
		Placeholders: t.Placeholders(),
		Version:      t.Version,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// ToTemplateResponses converts a slice of domain templates
func ToTemplateResponses(templates []adminconfig.PromptTemplate) []TemplateResponse {
	responses := make([]TemplateResponse, len(templates))
	for i := range templates {
		responses[i] = ToTemplateResponse(&templates[i])
	}
	return responses
}

// PreviewResponse is the rendered template preview
type PreviewResponse struct {
	Rendered     string   `json:"rendered"`
	Placeholders []string `json:"placeholders"`
}
