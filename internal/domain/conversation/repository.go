package conversation

import (
	"context"

	"github.com/google/uuid"
	"github.com/nia/backend/internal/domain/shared"
)

// Repository defines the interface for conversation analysis persistence
type Repository interface {
	// FindByID finds an analysis by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Analysis, error)

	// FindByTranscriptHash finds an analysis for an identical transcript
	FindByTranscriptHash(ctx context.Context, hash string) (*Analysis, error)

	// FindByLead finds all analyses linked to a lead
	FindByLead(ctx context.Context, leadID uuid.UUID, filter shared.Filter) ([]Analysis, error)

	// FindAll finds all analyses matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Analysis, error)

	// Save creates or updates an analysis
	Save(ctx context.Context, a *Analysis) error

	// Delete removes an analysis
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts analyses matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
