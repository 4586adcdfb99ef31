// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// GormGaugeMetricsProvider implements GaugeMetricsProvider using GORM.
// It queries the call_sessions and ai_insights tables directly.
type GormGaugeMetricsProvider struct {
	db *gorm.DB
}

// NewGormGaugeMetricsProvider creates a new GormGaugeMetricsProvider.
func NewGormGaugeMetricsProvider(db *gorm.DB) *GormGaugeMetricsProvider {
	return &GormGaugeMetricsProvider{db: db}
}

// GetActiveSessionCount returns the number of currently active call sessions.
func (p *GormGaugeMetricsProvider) GetActiveSessionCount(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("call_sessions").
		Where("status = ?", "active").
		Count(&count).Error

	return count, err
}

// GetStaleInsightCount returns the number of insights past their refresh age
// plus fallback insights awaiting a real generation.
func (p *GormGaugeMetricsProvider) GetStaleInsightCount(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge)

	var count int64
	err := p.db.WithContext(ctx).
		Table("ai_insights").
		Where("generated_at < ? OR fallback = true", cutoff).
		Count(&count).Error

	return count, err
}
