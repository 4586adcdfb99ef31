package meeting

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appinsight "github.com/nia/backend/internal/application/insight"
	"github.com/nia/backend/internal/domain/adminconfig"
	"github.com/nia/backend/internal/domain/lead"
	"github.com/nia/backend/internal/domain/meeting"
	"github.com/nia/backend/internal/domain/shared"
	"github.com/nia/backend/internal/infrastructure/ai"
	"github.com/nia/backend/internal/infrastructure/telemetry"
)

// DefaultMaxQuestions caps generated preparation questions per meeting
const DefaultMaxQuestions = 8

// intelligencePayload is the JSON shape the intelligence prompt asks for
type intelligencePayload struct {
	Summary     string               `json:"summary"`
	ActionItems []meeting.ActionItem `json:"action_items"`
	Sentiment   string               `json:"sentiment"`
}

// PrepService generates AI preparation questions before a meeting and the
// summary intelligence after it
type PrepService struct {
	meetingRepo      meeting.Repository
	questionRepo     meeting.QuestionRepository
	intelligenceRepo meeting.IntelligenceRepository
	leadRepo         lead.Repository
	templateRepo     adminconfig.Repository
	aiClient         ai.Client
	businessMetrics  *telemetry.BusinessMetrics
	logger           *zap.Logger
}

// NewPrepService creates a new PrepService
func NewPrepService(
	meetingRepo meeting.Repository,
	questionRepo meeting.QuestionRepository,
	intelligenceRepo meeting.IntelligenceRepository,
	leadRepo lead.Repository,
	templateRepo adminconfig.Repository,
	aiClient ai.Client,
	logger *zap.Logger,
) *PrepService {
	return &PrepService{
		meetingRepo:      meetingRepo,
		questionRepo:     questionRepo,
		intelligenceRepo: intelligenceRepo,
		leadRepo:         leadRepo,
		templateRepo:     templateRepo,
		aiClient:         aiClient,
		logger:           logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *PrepService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// GenerateQuestions produces preparation questions from the lead context
// and replaces the meeting's existing list
func (s *PrepService) GenerateQuestions(ctx context.Context, meetingID uuid.UUID, req GenerateQuestionsRequest) ([]QuestionResponse, error) {
	m, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	l, err := s.leadRepo.FindByID(ctx, m.LeadID)
	if err != nil {
		return nil, err
	}

	maxQuestions := req.MaxQuestions
	if maxQuestions <= 0 {
		maxQuestions = DefaultMaxQuestions
	}

	prompt := s.renderPrompt(ctx, adminconfig.KindQuestions, map[string]string{
		"lead_context":  appinsight.LeadContext(l),
		"max_questions": strconv.Itoa(maxQuestions),
	})

	result, err := s.aiClient.Generate(ctx, prompt)
	if err != nil {
		s.recordAIRequest(ctx, adminconfig.KindQuestions, "", telemetry.AIOutcomeFailed)
		return nil, shared.NewDomainError("AI_UNAVAILABLE", "Question generation is temporarily unavailable")
	}

	var texts []string
	if err := ai.DecodeJSON(ai.ExtractJSON(result.Text), &texts); err != nil || len(texts) == 0 {
		s.recordAIRequest(ctx, adminconfig.KindQuestions, result.Model, telemetry.AIOutcomeFailed)
		return nil, shared.NewDomainError("AI_UNAVAILABLE", "Question generation returned no usable questions")
	}
	if len(texts) > maxQuestions {
		texts = texts[:maxQuestions]
	}

	questions := make([]*meeting.Question, 0, len(texts))
	for i, text := range texts {
		q, err := meeting.NewQuestion(meetingID, i+1, text, result.Model)
		if err != nil {
			continue
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, shared.NewDomainError("AI_UNAVAILABLE", "Question generation returned no usable questions")
	}

	if err := s.questionRepo.ReplaceForMeeting(ctx, meetingID, questions); err != nil {
		return nil, err
	}

	s.recordAIRequest(ctx, adminconfig.KindQuestions, result.Model, telemetry.AIOutcomeSuccess)
	s.recordAITokens(ctx, adminconfig.KindQuestions, result)

	s.logger.Info("Meeting questions generated",
		zap.String("meeting_id", meetingID.String()),
		zap.Int("count", len(questions)))

	stored, err := s.questionRepo.FindByMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	return ToQuestionResponses(stored), nil
}

// ListQuestions returns the stored preparation questions in position order
func (s *PrepService) ListQuestions(ctx context.Context, meetingID uuid.UUID) ([]QuestionResponse, error) {
	if _, err := s.meetingRepo.FindByID(ctx, meetingID); err != nil {
		return nil, err
	}
	questions, err := s.questionRepo.FindByMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	return ToQuestionResponses(questions), nil
}

// SubmitNotes runs post-meeting notes through the intelligence prompt and
// stores the resulting summary
func (s *PrepService) SubmitNotes(ctx context.Context, meetingID uuid.UUID, req SubmitNotesRequest) (*IntelligenceResponse, error) {
	m, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if m.Status != meeting.StatusCompleted {
		return nil, shared.NewDomainError("INVALID_STATE", "Intelligence can only be generated for completed meetings")
	}

	intel, err := meeting.NewIntelligence(meetingID, req.Notes)
	if err != nil {
		return nil, err
	}

	prompt := s.renderPrompt(ctx, adminconfig.KindIntelligence, map[string]string{
		"notes": intel.SourceNotes,
	})

	result, err := s.aiClient.Generate(ctx, prompt)
	if err != nil {
		s.recordAIRequest(ctx, adminconfig.KindIntelligence, "", telemetry.AIOutcomeFailed)
		return nil, shared.NewDomainError("AI_UNAVAILABLE", "Meeting summarization is temporarily unavailable")
	}

	var payload intelligencePayload
	if err := ai.DecodeJSON(ai.ExtractJSON(result.Text), &payload); err != nil {
		s.recordAIRequest(ctx, adminconfig.KindIntelligence, result.Model, telemetry.AIOutcomeFailed)
		return nil, shared.NewDomainError("AI_UNAVAILABLE", "Meeting summarization produced no usable summary")
	}

	if err := intel.ApplySummary(payload.Summary, payload.Sentiment, result.Model, payload.ActionItems); err != nil {
		return nil, err
	}

	// One intelligence record per meeting; resubmitting notes overwrites it
	if existing, err := s.intelligenceRepo.FindByMeeting(ctx, meetingID); err == nil {
		intel.ID = existing.ID
		intel.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if err := s.intelligenceRepo.Save(ctx, intel); err != nil {
		return nil, err
	}

	s.recordAIRequest(ctx, adminconfig.KindIntelligence, result.Model, telemetry.AIOutcomeSuccess)
	s.recordAITokens(ctx, adminconfig.KindIntelligence, result)

	response := ToIntelligenceResponse(intel)
	return &response, nil
}

// GetIntelligence returns the stored summary for a meeting
func (s *PrepService) GetIntelligence(ctx context.Context, meetingID uuid.UUID) (*IntelligenceResponse, error) {
	intel, err := s.intelligenceRepo.FindByMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	response := ToIntelligenceResponse(intel)
	return &response, nil
}

// renderPrompt fills the active template of a kind, falling back to the
// built-in body
func (s *PrepService) renderPrompt(ctx context.Context, kind adminconfig.Kind, values map[string]string) string {
	body := adminconfig.DefaultBody(kind)
	template, err := s.templateRepo.FindActiveByKind(ctx, kind)
	if err == nil && template != nil {
		body = template.Body
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		s.logger.Warn("Failed to load prompt template, using default",
			zap.String("kind", string(kind)), zap.Error(err))
	}
	return adminconfig.RenderTemplate(body, values)
}

func (s *PrepService) recordAIRequest(ctx context.Context, kind adminconfig.Kind, model string, outcome telemetry.AIOutcome) {
	if s.businessMetrics != nil {
		s.businessMetrics.RecordAIRequest(ctx, string(kind), model, outcome)
	}
}

func (s *PrepService) recordAITokens(ctx context.Context, kind adminconfig.Kind, result *ai.Result) {
	if s.businessMetrics != nil {
		s.businessMetrics.RecordAITokens(ctx, string(kind), result.Model, result.PromptTokens, result.OutputTokens)
	}
}
