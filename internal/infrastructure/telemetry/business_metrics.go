// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the sales assistant.
// It tracks lead activity, AI usage, meetings, and voice call sessions.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	leadCreatedTotal      *Counter
	aiRequestTotal        *Counter
	aiTokensTotal         *Counter
	meetingScheduledTotal *Counter
	sessionStartedTotal   *Counter
	audioBytesTotal       *Counter

	// Gauge metrics (point-in-time values)
	activeSessionCount *Gauge
	staleInsightCount  *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data providers for periodic collection
	gaugeProvider GaugeMetricsProvider
}

// GaugeMetricsProvider provides point-in-time data for periodic metrics
// collection. This interface lets the telemetry layer query operational
// state without depending on the domain packages directly.
type GaugeMetricsProvider interface {
	// GetActiveSessionCount returns the number of currently active call sessions
	GetActiveSessionCount(ctx context.Context) (int64, error)

	// GetStaleInsightCount returns the number of insights past their refresh age
	GetStaleInsightCount(ctx context.Context, maxAge time.Duration) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	InsightStaleAge time.Duration // Age past which an insight counts as stale
	GaugeProvider   GaugeMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:         cfg.Meter,
		logger:        logger,
		stopChan:      make(chan struct{}),
		gaugeProvider: cfg.GaugeProvider,
	}

	var err error

	// Lead metrics
	bm.leadCreatedTotal, err = NewCounter(
		cfg.Meter,
		"nia_lead_created_total",
		"Total number of leads created",
		"{leads}",
	)
	if err != nil {
		return nil, err
	}

	// AI metrics
	bm.aiRequestTotal, err = NewCounter(
		cfg.Meter,
		"nia_ai_request_total",
		"Total number of AI model requests",
		"{requests}",
	)
	if err != nil {
		return nil, err
	}

	bm.aiTokensTotal, err = NewCounter(
		cfg.Meter,
		"nia_ai_tokens_total",
		"Total tokens consumed by AI requests",
		"{tokens}",
	)
	if err != nil {
		return nil, err
	}

	// Meeting metrics
	bm.meetingScheduledTotal, err = NewCounter(
		cfg.Meter,
		"nia_meeting_scheduled_total",
		"Total number of meetings scheduled",
		"{meetings}",
	)
	if err != nil {
		return nil, err
	}

	// Voice metrics
	bm.sessionStartedTotal, err = NewCounter(
		cfg.Meter,
		"nia_call_session_started_total",
		"Total number of voice call sessions started",
		"{sessions}",
	)
	if err != nil {
		return nil, err
	}

	bm.audioBytesTotal, err = NewCounter(
		cfg.Meter,
		"nia_audio_bytes_total",
		"Total audio chunk bytes uploaded",
		"By",
	)
	if err != nil {
		return nil, err
	}

	// Gauges
	bm.activeSessionCount, err = NewGauge(
		cfg.Meter,
		"nia_active_call_sessions",
		"Number of currently active voice call sessions",
		"{sessions}",
	)
	if err != nil {
		return nil, err
	}

	bm.staleInsightCount, err = NewGauge(
		cfg.Meter,
		"nia_stale_insight_count",
		"Number of lead insights past their refresh age",
		"{insights}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Lead Metrics
// =============================================================================

// RecordLeadCreated records a lead creation event with its source label.
func (bm *BusinessMetrics) RecordLeadCreated(ctx context.Context, source string) {
	bm.leadCreatedTotal.Inc(ctx,
		AttrLeadSource.String(source),
	)
}

// =============================================================================
// AI Metrics
// =============================================================================

// AIOutcome represents the outcome of an AI request for metrics labeling.
type AIOutcome string

const (
	AIOutcomeSuccess  AIOutcome = "success"
	AIOutcomeFailed   AIOutcome = "failed"
	AIOutcomeFallback AIOutcome = "fallback"
)

// RecordAIRequest records an AI model request with its pipeline kind
// (extraction, recommendation, questions, intelligence) and outcome.
func (bm *BusinessMetrics) RecordAIRequest(ctx context.Context, kind string, model string, outcome AIOutcome) {
	bm.aiRequestTotal.Inc(ctx,
		AttrPromptKind.String(kind),
		AttrModel.String(model),
		AttrAIOutcome.String(string(outcome)),
	)
}

// RecordAITokens records token consumption for an AI request.
func (bm *BusinessMetrics) RecordAITokens(ctx context.Context, kind string, model string, promptTokens, outputTokens int) {
	bm.aiTokensTotal.Add(ctx, int64(promptTokens),
		AttrPromptKind.String(kind),
		AttrModel.String(model),
		AttrTokenType.String("prompt"),
	)
	bm.aiTokensTotal.Add(ctx, int64(outputTokens),
		AttrPromptKind.String(kind),
		AttrModel.String(model),
		AttrTokenType.String("output"),
	)
}

// =============================================================================
// Meeting Metrics
// =============================================================================

// RecordMeetingScheduled records a scheduled meeting with its platform label.
func (bm *BusinessMetrics) RecordMeetingScheduled(ctx context.Context, platform string) {
	bm.meetingScheduledTotal.Inc(ctx,
		AttrMeetingPlatform.String(platform),
	)
}

// =============================================================================
// Voice Metrics
// =============================================================================

// RecordSessionStarted records a started voice call session.
func (bm *BusinessMetrics) RecordSessionStarted(ctx context.Context) {
	bm.sessionStartedTotal.Inc(ctx)
}

// RecordAudioBytes records uploaded audio chunk bytes.
func (bm *BusinessMetrics) RecordAudioBytes(ctx context.Context, bytes int64) {
	bm.audioBytesTotal.Add(ctx, bytes)
}

// RecordActiveSessionCount records the current number of active sessions.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordActiveSessionCount(ctx context.Context, count int64) {
	bm.activeSessionCount.Record(ctx, count)
}

// RecordStaleInsightCount records the number of stale insights.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordStaleInsightCount(ctx context.Context, count int64) {
	bm.staleInsightCount.Record(ctx, count)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, staleAge, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		if staleAge <= 0 {
			staleAge = 24 * time.Hour
		}

		go bm.runPeriodicCollection(ctx, staleAge, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, staleAge, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectGaugeMetrics(ctx, staleAge)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectGaugeMetrics(ctx, staleAge)
		}
	}
}

// collectGaugeMetrics collects the point-in-time gauge metrics.
func (bm *BusinessMetrics) collectGaugeMetrics(ctx context.Context, staleAge time.Duration) {
	if bm.gaugeProvider == nil {
		bm.logger.Debug("No gauge provider configured, skipping gauge metrics collection")
		return
	}

	activeSessions, err := bm.gaugeProvider.GetActiveSessionCount(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get active session count", zap.Error(err))
	} else {
		bm.RecordActiveSessionCount(ctx, activeSessions)
	}

	staleInsights, err := bm.gaugeProvider.GetStaleInsightCount(ctx, staleAge)
	if err != nil {
		bm.logger.Warn("Failed to get stale insight count", zap.Error(err))
	} else {
		bm.RecordStaleInsightCount(ctx, staleInsights)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
