package lead

import (
	"context"

	"github.com/google/uuid"
	"github.com/nia/backend/internal/domain/shared"
)

// Repository defines the interface for lead persistence
type Repository interface {
	// FindByID finds a lead by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Lead, error)

	// FindByEmail finds a lead by contact email
	FindByEmail(ctx context.Context, email string) (*Lead, error)

	// FindAll finds all leads matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Lead, error)

	// FindByStatus finds leads in a pipeline status
	FindByStatus(ctx context.Context, status Status, filter shared.Filter) ([]Lead, error)

	// FindByOwner finds leads assigned to a sales rep
	FindByOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]Lead, error)

	// FindActive finds leads that are still in the pipeline
	FindActive(ctx context.Context, filter shared.Filter) ([]Lead, error)

	// ExistsByEmail checks whether a lead with this contact email exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Save creates or updates a lead
	Save(ctx context.Context, l *Lead) error

	// SaveWithLock saves a lead with optimistic locking (version check)
	SaveWithLock(ctx context.Context, l *Lead) error

	// Delete removes a lead
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts leads matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus returns lead counts grouped by pipeline status
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}
