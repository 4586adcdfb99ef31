package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/nia/backend/internal/domain/insight"
)

// InsightModel is the persistence model for the Insight aggregate.
// One row per lead, refreshed in place.
type InsightModel struct {
	AggregateModel
	LeadID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Payload     string    `gorm:"type:jsonb;not null"`
	Model       string    `gorm:"type:varchar(100)"`
	GeneratedAt time.Time `gorm:"not null;index"`
	Fallback    bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (InsightModel) TableName() string {
	return "ai_insights"
}

// ToDomain converts the persistence model to a domain Insight
func (m *InsightModel) ToDomain() *insight.Insight {
	i := &insight.Insight{
		LeadID:      m.LeadID,
		Payload:     m.Payload,
		Model:       m.Model,
		GeneratedAt: m.GeneratedAt,
		Fallback:    m.Fallback,
	}
	m.PopulateAggregateRoot(&i.BaseAggregateRoot)
	return i
}

// FromDomain populates the persistence model from a domain Insight
func (m *InsightModel) FromDomain(i *insight.Insight) {
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	m.LeadID = i.LeadID
	m.Payload = i.Payload
	m.Model = i.Model
	m.GeneratedAt = i.GeneratedAt
	m.Fallback = i.Fallback
}
