package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nia/backend/internal/domain/adminconfig"
	"github.com/nia/backend/internal/domain/conversation"
	"github.com/nia/backend/internal/domain/lead"
	"github.com/nia/backend/internal/domain/shared"
	"github.com/nia/backend/internal/infrastructure/ai"
	"github.com/nia/backend/internal/infrastructure/telemetry"
)

const dedupeKeyPrefix = "conversation:transcript:"

// Service runs the transcript extraction pipeline: render the extraction
// prompt, call the model, validate the structured payload, and create or
// update the lead the conversation refers to. Model and parse failures are
// stored on the analysis and surfaced as a fallback response rather than an
// error.
type Service struct {
	analysisRepo    conversation.Repository
	leadRepo        lead.Repository
	templateRepo    adminconfig.Repository
	aiClient        ai.Client
	idempotency     shared.IdempotencyStore
	outboxRepo      shared.OutboxRepository
	businessMetrics *telemetry.BusinessMetrics
	dedupeTTL       time.Duration
	logger          *zap.Logger
}

// NewService creates a new conversation analysis Service
func NewService(
	analysisRepo conversation.Repository,
	leadRepo lead.Repository,
	templateRepo adminconfig.Repository,
	aiClient ai.Client,
	idempotency shared.IdempotencyStore,
	outboxRepo shared.OutboxRepository,
	dedupeTTL time.Duration,
	logger *zap.Logger,
) *Service {
	return &Service{
		analysisRepo: analysisRepo,
		leadRepo:     leadRepo,
		templateRepo: templateRepo,
		aiClient:     aiClient,
		idempotency:  idempotency,
		outboxRepo:   outboxRepo,
		dedupeTTL:    dedupeTTL,
		logger:       logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *Service) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Analyze stores a transcript and runs the extraction pipeline against it.
// Identical transcripts submitted within the dedupe TTL return the stored
// analysis without another model call.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalysisResponse, error) {
	analysis, err := conversation.NewAnalysis(req.Transcript)
	if err != nil {
		return nil, err
	}

	if cached := s.findRecentDuplicate(ctx, analysis.TranscriptHash); cached != nil {
		s.logger.Debug("Returning deduplicated analysis",
			zap.String("analysis_id", cached.ID.String()),
			zap.String("transcript_hash", analysis.TranscriptHash))
		response := ToAnalysisResponse(cached)
		return &response, nil
	}

	if err := s.analysisRepo.Save(ctx, analysis); err != nil {
		return nil, err
	}

	return s.runExtraction(ctx, analysis)
}

// Reanalyze resets a completed or failed analysis and runs the pipeline
// again against its stored transcript
func (s *Service) Reanalyze(ctx context.Context, analysisID uuid.UUID) (*AnalysisResponse, error) {
	analysis, err := s.analysisRepo.FindByID(ctx, analysisID)
	if err != nil {
		return nil, err
	}

	if err := analysis.ResetForReanalysis(); err != nil {
		return nil, err
	}
	if err := s.analysisRepo.Save(ctx, analysis); err != nil {
		return nil, err
	}

	return s.runExtraction(ctx, analysis)
}

// GetByID retrieves an analysis by ID
func (s *Service) GetByID(ctx context.Context, analysisID uuid.UUID) (*AnalysisResponse, error) {
	analysis, err := s.analysisRepo.FindByID(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	response := ToAnalysisResponse(analysis)
	return &response, nil
}

// List retrieves analyses with filtering and pagination
func (s *Service) List(ctx context.Context, filter AnalysisListFilter) ([]AnalysisResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  map[string]interface{}{},
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	var (
		analyses []conversation.Analysis
		err      error
	)
	if filter.LeadID != "" {
		leadID, parseErr := uuid.Parse(filter.LeadID)
		if parseErr != nil {
			return nil, 0, shared.NewDomainError("INVALID_LEAD_ID", "Lead ID must be a valid UUID")
		}
		analyses, err = s.analysisRepo.FindByLead(ctx, leadID, domainFilter)
	} else {
		analyses, err = s.analysisRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.analysisRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToAnalysisResponses(analyses), total, nil
}

// Delete removes an analysis
func (s *Service) Delete(ctx context.Context, analysisID uuid.UUID) error {
	if _, err := s.analysisRepo.FindByID(ctx, analysisID); err != nil {
		return err
	}
	return s.analysisRepo.Delete(ctx, analysisID)
}

// runExtraction drives a pending analysis through the model call, payload
// validation, and lead linkage. Failures are recorded on the analysis and
// returned as a fallback response with a nil error.
func (s *Service) runExtraction(ctx context.Context, analysis *conversation.Analysis) (*AnalysisResponse, error) {
	prompt := s.renderExtractionPrompt(ctx, analysis.Transcript)

	result, err := s.aiClient.Generate(ctx, prompt)
	if err != nil {
		return s.failAnalysis(ctx, analysis, fmt.Sprintf("model call failed: %v", err), "")
	}

	raw := ai.ExtractJSON(result.Text)
	var extraction conversation.Extraction
	if err := ai.DecodeJSON(raw, &extraction); err != nil {
		return s.failAnalysis(ctx, analysis, fmt.Sprintf("unparseable model response: %v", err), result.Model)
	}

	sanitizeExtraction(&extraction)

	extractedJSON, err := json.Marshal(extraction)
	if err != nil {
		return s.failAnalysis(ctx, analysis, fmt.Sprintf("re-encoding extraction failed: %v", err), result.Model)
	}

	s.linkOrCreateLead(ctx, analysis, extraction)

	if err := analysis.Complete(string(extractedJSON), result.Model, result.PromptTokens, result.OutputTokens); err != nil {
		return nil, err
	}
	if err := s.analysisRepo.Save(ctx, analysis); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, analysis.GetDomainEvents())
	analysis.ClearDomainEvents()
	s.markDeduped(ctx, analysis.TranscriptHash)

	if s.businessMetrics != nil {
		s.businessMetrics.RecordAIRequest(ctx, string(adminconfig.KindExtraction), result.Model, telemetry.AIOutcomeSuccess)
		s.businessMetrics.RecordAITokens(ctx, string(adminconfig.KindExtraction), result.Model, result.PromptTokens, result.OutputTokens)
	}

	s.logger.Info("Transcript analyzed",
		zap.String("analysis_id", analysis.ID.String()),
		zap.String("model", result.Model),
		zap.Int("score", extraction.Score))

	response := ToAnalysisResponse(analysis)
	return &response, nil
}

// renderExtractionPrompt fills the active extraction template, falling back
// to the built-in body when no admin template is active
func (s *Service) renderExtractionPrompt(ctx context.Context, transcript string) string {
	body := adminconfig.DefaultBody(adminconfig.KindExtraction)
	template, err := s.templateRepo.FindActiveByKind(ctx, adminconfig.KindExtraction)
	if err == nil && template != nil {
		body = template.Body
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		s.logger.Warn("Failed to load extraction template, using default", zap.Error(err))
	}
	return adminconfig.RenderTemplate(body, map[string]string{"transcript": transcript})
}

// failAnalysis records a failure on the analysis and returns the stored
// fallback response. The raw transcript is preserved for re-analysis.
func (s *Service) failAnalysis(ctx context.Context, analysis *conversation.Analysis, reason, model string) (*AnalysisResponse, error) {
	analysis.Fail(reason)
	if err := s.analysisRepo.Save(ctx, analysis); err != nil {
		return nil, err
	}

	if s.businessMetrics != nil {
		s.businessMetrics.RecordAIRequest(ctx, string(adminconfig.KindExtraction), model, telemetry.AIOutcomeFallback)
	}

	s.logger.Warn("Extraction failed, returning fallback",
		zap.String("analysis_id", analysis.ID.String()),
		zap.String("reason", reason))

	response := ToAnalysisResponse(analysis)
	return &response, nil
}

// linkOrCreateLead attaches the analysis to the lead it refers to, creating
// the lead when the extraction carries enough identity to do so. Failures
// here never fail the analysis itself.
func (s *Service) linkOrCreateLead(ctx context.Context, analysis *conversation.Analysis, extraction conversation.Extraction) {
	if extraction.Email != "" {
		existing, err := s.leadRepo.FindByEmail(ctx, extraction.Email)
		if err == nil {
			contactName := existing.ContactName
			if extraction.ContactName != "" {
				contactName = extraction.ContactName
			}
			phone := existing.Phone
			if extraction.Phone != "" {
				phone = extraction.Phone
			}
			if err := existing.SetContact(contactName, extraction.Email, phone); err == nil {
				if err := s.leadRepo.Save(ctx, existing); err != nil {
					s.logger.Warn("Failed to update lead from extraction",
						zap.String("lead_id", existing.ID.String()), zap.Error(err))
				}
			}
			analysis.LinkLead(existing.ID)
			return
		}
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Lead lookup failed during extraction", zap.Error(err))
			return
		}
	}

	companyName := extraction.CompanyName
	if companyName == "" {
		companyName = extraction.ContactName
	}
	if companyName == "" {
		// Nothing identifiable was extracted; keep the analysis unlinked
		return
	}

	l, err := lead.NewLead(companyName, lead.SourceConversation)
	if err != nil {
		s.logger.Warn("Failed to create lead from extraction", zap.Error(err))
		return
	}
	if extraction.ContactName != "" || extraction.Email != "" || extraction.Phone != "" {
		if err := l.SetContact(extraction.ContactName, extraction.Email, extraction.Phone); err != nil {
			s.logger.Warn("Extracted contact rejected", zap.Error(err))
		}
	}
	if extraction.Summary != "" {
		l.Notes = extraction.Summary
	}

	if err := s.leadRepo.Save(ctx, l); err != nil {
		s.logger.Warn("Failed to save lead from extraction", zap.Error(err))
		return
	}

	s.publishEvents(ctx, l.GetDomainEvents())
	l.ClearDomainEvents()

	if s.businessMetrics != nil {
		s.businessMetrics.RecordLeadCreated(ctx, string(lead.SourceConversation))
	}

	analysis.LinkLead(l.ID)
}

// findRecentDuplicate returns the stored analysis for an identical
// transcript when the dedupe window is still open
func (s *Service) findRecentDuplicate(ctx context.Context, hash string) *conversation.Analysis {
	processed, err := s.idempotency.IsProcessed(ctx, dedupeKeyPrefix+hash)
	if err != nil || !processed {
		return nil
	}
	existing, err := s.analysisRepo.FindByTranscriptHash(ctx, hash)
	if err != nil {
		return nil
	}
	return existing
}

func (s *Service) markDeduped(ctx context.Context, hash string) {
	if _, err := s.idempotency.MarkProcessed(ctx, dedupeKeyPrefix+hash, s.dedupeTTL); err != nil {
		s.logger.Warn("Failed to record transcript dedupe marker", zap.Error(err))
	}
}

// publishEvents writes pending domain events to the outbox
func (s *Service) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if len(events) == 0 {
		return
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("Failed to marshal event", zap.Error(err))
			continue
		}
		entries = append(entries, shared.NewOutboxEntry(event, payload))
	}

	if len(entries) > 0 {
		if err := s.outboxRepo.Save(ctx, entries...); err != nil {
			s.logger.Error("Failed to write outbox entries", zap.Error(err))
		}
	}
}

// sanitizeExtraction drops invalid contact fields and clamps the score so
// downstream consumers never see malformed data
func sanitizeExtraction(e *conversation.Extraction) {
	if e.Email != "" && !ai.ValidEmail(e.Email) {
		e.Email = ""
	}
	if e.Phone != "" {
		normalized := ai.NormalizePhone(e.Phone)
		if ai.ValidPhone(normalized) {
			e.Phone = normalized
		} else {
			e.Phone = ""
		}
	}
	e.Score = ai.ClampScore(e.Score)
}
