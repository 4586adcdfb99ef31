package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appconversation "github.com/nia/backend/internal/application/conversation"
	"github.com/nia/backend/internal/domain/shared"
	"github.com/nia/backend/internal/domain/voice"
	"github.com/nia/backend/internal/infrastructure/telemetry"
)

// TranscriptAnalyzer runs the conversation extraction pipeline on a call
// transcript. Implemented by the conversation application service.
type TranscriptAnalyzer interface {
	Analyze(ctx context.Context, req appconversation.AnalyzeRequest) (*appconversation.AnalysisResponse, error)
}

// SessionService handles call session bookkeeping: start, chunk uploads,
// completion with optional transcript hand-off, and the stale sweep.
type SessionService struct {
	sessionRepo     voice.SessionRepository
	chunkRepo       voice.ChunkRepository
	store           AudioStore
	analyzer        TranscriptAnalyzer
	outboxRepo      shared.OutboxRepository
	businessMetrics *telemetry.BusinessMetrics
	maxChunkBytes   int64
	maxChunks       int
	sessionTTL      time.Duration
	logger          *zap.Logger
}

// SessionServiceConfig bundles the tunables for the session service
type SessionServiceConfig struct {
	MaxChunkBytes    int64
	MaxSessionChunks int
	SessionTTL       time.Duration
}

// NewSessionService creates a new SessionService
func NewSessionService(
	sessionRepo voice.SessionRepository,
	chunkRepo voice.ChunkRepository,
	store AudioStore,
	analyzer TranscriptAnalyzer,
	outboxRepo shared.OutboxRepository,
	cfg SessionServiceConfig,
	logger *zap.Logger,
) *SessionService {
	if cfg.MaxChunkBytes <= 0 {
		cfg.MaxChunkBytes = 4 << 20 // 4 MiB
	}
	if cfg.MaxSessionChunks <= 0 {
		cfg.MaxSessionChunks = 10000
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 2 * time.Hour
	}
	return &SessionService{
		sessionRepo:   sessionRepo,
		chunkRepo:     chunkRepo,
		store:         store,
		analyzer:      analyzer,
		outboxRepo:    outboxRepo,
		maxChunkBytes: cfg.MaxChunkBytes,
		maxChunks:     cfg.MaxSessionChunks,
		sessionTTL:    cfg.SessionTTL,
		logger:        logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *SessionService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Start opens a new call session
func (s *SessionService) Start(ctx context.Context, req StartSessionRequest) (*SessionResponse, error) {
	if req.OwnerID == nil || *req.OwnerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner ID is required")
	}

	session, err := voice.NewCallSession(*req.OwnerID, req.LeadID)
	if err != nil {
		return nil, err
	}

	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, session)

	if s.businessMetrics != nil {
		s.businessMetrics.RecordSessionStarted(ctx)
	}

	s.logger.Info("Call session started",
		zap.String("session_id", session.ID.String()),
		zap.String("owner_id", session.OwnerID.String()))

	response := ToSessionResponse(session)
	return &response, nil
}

// UploadChunk validates the chunk against the session, stores the payload
// and records the chunk row
func (s *SessionService) UploadChunk(ctx context.Context, sessionID uuid.UUID, req UploadChunkRequest) (*ChunkResponse, error) {
	if int64(len(req.Data)) > s.maxChunkBytes {
		return nil, shared.NewDomainError("CHUNK_TOO_LARGE",
			fmt.Sprintf("Chunk exceeds the %d byte limit", s.maxChunkBytes))
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.ChunkCount >= s.maxChunks {
		return nil, shared.NewDomainError("SESSION_FULL", "Session chunk limit reached")
	}

	chunk, err := session.AcceptChunk(req.Sequence, int64(len(req.Data)))
	if err != nil {
		return nil, err
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := s.store.Upload(ctx, chunk.StorageKey, req.Data, contentType); err != nil {
		return nil, fmt.Errorf("storing chunk payload: %w", err)
	}

	if err := s.chunkRepo.Save(ctx, chunk); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}

	if s.businessMetrics != nil {
		s.businessMetrics.RecordAudioBytes(ctx, chunk.Size)
	}

	return &ChunkResponse{
		SessionID:  session.ID,
		Sequence:   chunk.Sequence,
		Size:       chunk.Size,
		StorageKey: chunk.StorageKey,
	}, nil
}

// End completes a session. A non-empty transcript is handed to the
// conversation pipeline and the resulting analysis linked to the session;
// an analysis failure never fails the session itself.
func (s *SessionService) End(ctx context.Context, sessionID uuid.UUID, req EndSessionRequest) (*SessionResponse, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := session.Complete(); err != nil {
		return nil, err
	}

	if req.Transcript != "" && s.analyzer != nil {
		analysis, err := s.analyzer.Analyze(ctx, appconversation.AnalyzeRequest{Transcript: req.Transcript})
		if err != nil {
			s.logger.Warn("Transcript analysis failed on session end",
				zap.String("session_id", session.ID.String()), zap.Error(err))
		} else {
			session.LinkAnalysis(analysis.ID)
		}
	}

	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, session)

	s.logger.Info("Call session completed",
		zap.String("session_id", session.ID.String()),
		zap.Int("chunks", session.ChunkCount),
		zap.Int64("bytes", session.TotalBytes))

	response := ToSessionResponse(session)
	return &response, nil
}

// Fail ends a session abnormally
func (s *SessionService) Fail(ctx context.Context, sessionID uuid.UUID, reason string) (*SessionResponse, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := session.Fail(reason); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}

	response := ToSessionResponse(session)
	return &response, nil
}

// GetByID retrieves a session by ID
func (s *SessionService) GetByID(ctx context.Context, sessionID uuid.UUID) (*SessionResponse, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	response := ToSessionResponse(session)
	return &response, nil
}

// List retrieves sessions with filtering and pagination
func (s *SessionService) List(ctx context.Context, filter SessionListFilter) ([]SessionResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "started_at",
		OrderDir: "desc",
		Filters:  map[string]interface{}{},
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	var (
		sessions []voice.CallSession
		err      error
	)
	if filter.OwnerID != "" {
		ownerID, parseErr := uuid.Parse(filter.OwnerID)
		if parseErr != nil {
			return nil, 0, shared.NewDomainError("INVALID_OWNER_ID", "Owner ID must be a valid UUID")
		}
		sessions, err = s.sessionRepo.FindByOwner(ctx, ownerID, domainFilter)
	} else {
		sessions, err = s.sessionRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.sessionRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToSessionResponses(sessions), total, nil
}

// ListChunks returns the chunk records of a session in sequence order
func (s *SessionService) ListChunks(ctx context.Context, sessionID uuid.UUID) ([]ChunkResponse, error) {
	if _, err := s.sessionRepo.FindByID(ctx, sessionID); err != nil {
		return nil, err
	}
	chunks, err := s.chunkRepo.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	responses := make([]ChunkResponse, len(chunks))
	for i := range chunks {
		responses[i] = ChunkResponse{
			SessionID:  chunks[i].SessionID,
			Sequence:   chunks[i].Sequence,
			Size:       chunks[i].Size,
			StorageKey: chunks[i].StorageKey,
		}
	}
	return responses, nil
}

// ChunkDownloadURL returns a presigned URL for one stored chunk
func (s *SessionService) ChunkDownloadURL(ctx context.Context, sessionID uuid.UUID, sequence int, expiresIn time.Duration) (string, time.Time, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return "", time.Time{}, err
	}
	if sequence < 0 || sequence >= session.ChunkCount {
		return "", time.Time{}, shared.ErrNotFound
	}
	return s.store.GenerateDownloadURL(ctx, voice.ChunkStorageKey(sessionID, sequence), expiresIn)
}

// SweepStale fails active sessions older than the session TTL. It is
// registered as the session sweep job.
func (s *SessionService) SweepStale(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}
	cutoff := time.Now().Add(-s.sessionTTL)

	stale, err := s.sessionRepo.FindStaleActive(ctx, cutoff, batchSize)
	if err != nil {
		return 0, err
	}

	swept := 0
	for i := range stale {
		session := &stale[i]
		if err := session.Fail("session exceeded the maximum active age"); err != nil {
			continue
		}
		if err := s.sessionRepo.Save(ctx, session); err != nil {
			s.logger.Warn("Failed to sweep stale session",
				zap.String("session_id", session.ID.String()), zap.Error(err))
			continue
		}
		swept++
	}

	if swept > 0 {
		s.logger.Info("Stale sessions swept", zap.Int("count", swept))
	}

	return swept, nil
}

// publishEvents writes pending domain events to the outbox
func (s *SessionService) publishEvents(ctx context.Context, session *voice.CallSession) {
	events := session.GetDomainEvents()
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
	session.ClearDomainEvents()
}
