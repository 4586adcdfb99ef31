package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nia/backend/internal/domain/adminconfig"
	"github.com/nia/backend/internal/domain/insight"
	"github.com/nia/backend/internal/domain/lead"
	"github.com/nia/backend/internal/domain/shared"
	"github.com/nia/backend/internal/infrastructure/ai"
	"github.com/nia/backend/internal/infrastructure/telemetry"
)

// Service serves AI recommendations for leads through the tiered cache.
// A model failure degrades to the default recommendation set; callers of
// GetForLead never see an error for a missing or failed insight.
type Service struct {
	insightRepo     insight.Repository
	insightCache    insight.Cache
	leadRepo        lead.Repository
	templateRepo    adminconfig.Repository
	aiClient        ai.Client
	businessMetrics *telemetry.BusinessMetrics
	cacheTTL        time.Duration
	staleAfter      time.Duration
	logger          *zap.Logger
}

// NewService creates a new insight Service
func NewService(
	insightRepo insight.Repository,
	insightCache insight.Cache,
	leadRepo lead.Repository,
	templateRepo adminconfig.Repository,
	aiClient ai.Client,
	cacheTTL time.Duration,
	staleAfter time.Duration,
	logger *zap.Logger,
) *Service {
	return &Service{
		insightRepo:  insightRepo,
		insightCache: insightCache,
		leadRepo:     leadRepo,
		templateRepo: templateRepo,
		aiClient:     aiClient,
		cacheTTL:     cacheTTL,
		staleAfter:   staleAfter,
		logger:       logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *Service) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// GetForLead returns the recommendations for a lead, consulting the cache
// tiers before the database and only calling the model when nothing is
// stored yet. Unknown leads still surface ErrNotFound.
func (s *Service) GetForLead(ctx context.Context, leadID uuid.UUID) (*InsightResponse, error) {
	cached, err := s.insightCache.Get(ctx, leadID)
	if err != nil {
		s.logger.Warn("Insight cache read failed", zap.Error(err))
	}
	if cached != nil {
		response := ToInsightResponse(cached)
		return &response, nil
	}

	stored, err := s.insightRepo.FindByLead(ctx, leadID)
	if err == nil {
		s.cacheInsight(ctx, stored)
		response := ToInsightResponse(stored)
		return &response, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	l, err := s.leadRepo.FindByID(ctx, leadID)
	if err != nil {
		return nil, err
	}

	ins := s.generate(ctx, l)
	if err := s.insightRepo.Save(ctx, ins); err != nil {
		s.logger.Warn("Failed to persist insight", zap.Error(err))
	}
	if !ins.Fallback {
		s.cacheInsight(ctx, ins)
	}

	response := ToInsightResponse(ins)
	return &response, nil
}

// Refresh regenerates the insight for a lead regardless of cache state
func (s *Service) Refresh(ctx context.Context, leadID uuid.UUID) (*InsightResponse, error) {
	l, err := s.leadRepo.FindByID(ctx, leadID)
	if err != nil {
		return nil, err
	}

	ins := s.generate(ctx, l)

	if existing, err := s.insightRepo.FindByLead(ctx, leadID); err == nil {
		if !ins.Fallback {
			recs, decodeErr := ins.Recommendations()
			if decodeErr == nil {
				if err := existing.Refresh(recs, ins.Model); err == nil {
					ins = existing
				}
			}
		} else {
			// Keep the previously generated payload instead of downgrading
			// the stored insight to the fallback set
			response := ToInsightResponse(existing)
			return &response, nil
		}
	}

	if err := s.insightRepo.Save(ctx, ins); err != nil {
		s.logger.Warn("Failed to persist refreshed insight", zap.Error(err))
	}
	if !ins.Fallback {
		s.cacheInsight(ctx, ins)
	}

	response := ToInsightResponse(ins)
	return &response, nil
}

// Invalidate drops the stored and cached insight for a lead
func (s *Service) Invalidate(ctx context.Context, leadID uuid.UUID) error {
	if err := s.insightRepo.DeleteByLead(ctx, leadID); err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	if err := s.insightCache.Delete(ctx, leadID); err != nil {
		s.logger.Warn("Insight cache delete failed", zap.Error(err))
	}
	return nil
}

// RefreshStale regenerates insights older than the configured stale age.
// It is registered as the nightly insight refresh job.
func (s *Service) RefreshStale(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 50
	}
	cutoff := time.Now().Add(-s.staleAfter)

	stale, err := s.insightRepo.FindStale(ctx, cutoff, batchSize)
	if err != nil {
		return 0, err
	}

	refreshed := 0
	for i := range stale {
		if ctx.Err() != nil {
			return refreshed, ctx.Err()
		}
		if _, err := s.Refresh(ctx, stale[i].LeadID); err != nil {
			s.logger.Warn("Stale insight refresh failed",
				zap.String("lead_id", stale[i].LeadID.String()),
				zap.Error(err))
			continue
		}
		refreshed++
	}

	s.logger.Info("Stale insight refresh finished",
		zap.Int("candidates", len(stale)),
		zap.Int("refreshed", refreshed))

	return refreshed, nil
}

// generate calls the model with the rendered recommendation prompt and
// returns a fallback insight when anything in the pipeline fails
func (s *Service) generate(ctx context.Context, l *lead.Lead) *insight.Insight {
	prompt := s.renderRecommendationPrompt(ctx, l)

	result, err := s.aiClient.Generate(ctx, prompt)
	if err != nil {
		s.recordAIRequest(ctx, "", telemetry.AIOutcomeFallback)
		s.logger.Warn("Recommendation call failed, using defaults",
			zap.String("lead_id", l.ID.String()), zap.Error(err))
		return insight.NewFallbackInsight(l.ID)
	}

	var recs []insight.Recommendation
	if err := ai.DecodeJSON(ai.ExtractJSON(result.Text), &recs); err != nil || len(recs) == 0 {
		s.recordAIRequest(ctx, result.Model, telemetry.AIOutcomeFallback)
		s.logger.Warn("Unparseable recommendation response, using defaults",
			zap.String("lead_id", l.ID.String()), zap.Error(err))
		return insight.NewFallbackInsight(l.ID)
	}

	ins, err := insight.NewInsight(l.ID, recs, result.Model)
	if err != nil {
		s.recordAIRequest(ctx, result.Model, telemetry.AIOutcomeFallback)
		return insight.NewFallbackInsight(l.ID)
	}

	s.recordAIRequest(ctx, result.Model, telemetry.AIOutcomeSuccess)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordAITokens(ctx, string(adminconfig.KindRecommendation), result.Model, result.PromptTokens, result.OutputTokens)
	}

	return ins
}

func (s *Service) recordAIRequest(ctx context.Context, model string, outcome telemetry.AIOutcome) {
	if s.businessMetrics != nil {
		s.businessMetrics.RecordAIRequest(ctx, string(adminconfig.KindRecommendation), model, outcome)
	}
}

func (s *Service) cacheInsight(ctx context.Context, ins *insight.Insight) {
	if err := s.insightCache.Set(ctx, ins, s.cacheTTL); err != nil {
		s.logger.Warn("Insight cache write failed", zap.Error(err))
	}
}

// renderRecommendationPrompt fills the active recommendation template with
// the lead context, falling back to the built-in body
func (s *Service) renderRecommendationPrompt(ctx context.Context, l *lead.Lead) string {
	body := adminconfig.DefaultBody(adminconfig.KindRecommendation)
	template, err := s.templateRepo.FindActiveByKind(ctx, adminconfig.KindRecommendation)
	if err == nil && template != nil {
		body = template.Body
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		s.logger.Warn("Failed to load recommendation template, using default", zap.Error(err))
	}
	return adminconfig.RenderTemplate(body, map[string]string{"lead_context": LeadContext(l)})
}

// LeadContext renders the lead fields into the plain-text block the
// recommendation and question prompts embed
func LeadContext(l *lead.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s\n", l.CompanyName)
	if l.ContactName != "" {
		fmt.Fprintf(&b, "Contact: %s\n", l.ContactName)
	}
	if l.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", l.Email)
	}
	fmt.Fprintf(&b, "Pipeline status: %s\n", l.Status)
	if l.Score > 0 {
		fmt.Fprintf(&b, "Intent score: %d/100 (%s)\n", l.Score, l.ScoreRationale)
	}
	if !l.DealValue.IsZero() {
		fmt.Fprintf(&b, "Estimated deal value: %s\n", l.DealValue.String())
	}
	if l.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", l.Notes)
	}
	return strings.TrimRight(b.String(), "\n")
}
