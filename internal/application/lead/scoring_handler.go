package lead

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/nia/backend/internal/domain/conversation"
	"github.com/nia/backend/internal/domain/shared"
)

// ScoringHandler consumes conversation analysis events and writes the
// AI-derived score onto the linked lead.
type ScoringHandler struct {
	service *Service
	logger  *zap.Logger
}

// NewScoringHandler creates a new ScoringHandler
func NewScoringHandler(service *Service, logger *zap.Logger) *ScoringHandler {
	return &ScoringHandler{
		service: service,
		logger:  logger,
	}
}

// EventTypes returns the event types this handler subscribes to
func (h *ScoringHandler) EventTypes() []string {
	return []string{conversation.EventTypeConversationAnalyzed}
}

// Handle applies the extracted score to the lead named in the event.
// Events without a linked lead or without a usable extraction are skipped.
func (h *ScoringHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	analyzed, ok := event.(*conversation.AnalyzedEvent)
	if !ok {
		h.logger.Warn("Unexpected event payload type", zap.String("event_type", event.EventType()))
		return nil
	}

	if analyzed.LeadID == nil {
		h.logger.Debug("Analysis has no linked lead, skipping scoring",
			zap.String("analysis_id", analyzed.AnalysisID.String()))
		return nil
	}

	var extraction conversation.Extraction
	if err := json.Unmarshal([]byte(analyzed.ExtractedJSON), &extraction); err != nil {
		h.logger.Warn("Failed to decode extraction for scoring",
			zap.String("analysis_id", analyzed.AnalysisID.String()),
			zap.Error(err))
		return nil
	}

	if err := h.service.ApplyScore(ctx, *analyzed.LeadID, extraction.Score, extraction.Rationale); err != nil {
		h.logger.Error("Failed to apply lead score",
			zap.String("lead_id", analyzed.LeadID.String()),
			zap.Int("score", extraction.Score),
			zap.Error(err))
		return err
	}

	h.logger.Info("Lead scored from conversation",
		zap.String("lead_id", analyzed.LeadID.String()),
		zap.Int("score", extraction.Score))

	return nil
}

var _ shared.EventHandler = (*ScoringHandler)(nil)
