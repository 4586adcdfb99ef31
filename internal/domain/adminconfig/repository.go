package adminconfig

import (
	"context"

	"github.com/google/uuid"
	"github.com/nia/backend/internal/domain/shared"
)

// Repository defines the interface for prompt template persistence
type Repository interface {
	// FindByID finds a template by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PromptTemplate, error)

	// FindByName finds a template by its unique name
	FindByName(ctx context.Context, name string) (*PromptTemplate, error)

	// FindActiveByKind finds the active template for a kind, if any
	FindActiveByKind(ctx context.Context, kind Kind) (*PromptTemplate, error)

	// FindAll finds all templates matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]PromptTemplate, error)

	// DeactivateKind clears the active flag on all templates of a kind
	DeactivateKind(ctx context.Context, kind Kind) error

	// Save creates or updates a template
	Save(ctx context.Context, t *PromptTemplate) error

	// Delete removes a template
	Delete(ctx context.Context, id uuid.UUID) error
}
