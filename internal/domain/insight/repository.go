package insight

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for insight persistence
type Repository interface {
	// FindByLead finds the cached insight for a lead
	FindByLead(ctx context.Context, leadID uuid.UUID) (*Insight, error)

	// FindStale finds insights generated before the cutoff, for scheduled refresh
	FindStale(ctx context.Context, cutoff time.Time, limit int) ([]Insight, error)

	// Save creates or updates an insight (one per lead)
	Save(ctx context.Context, i *Insight) error

	// DeleteByLead removes the cached insight for a lead
	DeleteByLead(ctx context.Context, leadID uuid.UUID) error
}
