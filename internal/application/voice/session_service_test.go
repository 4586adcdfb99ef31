package voice_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appconversation "github.com/nia/backend/internal/application/conversation"
	appvoice "github.com/nia/backend/internal/application/voice"
	"github.com/nia/backend/internal/domain/shared"
	"github.com/nia/backend/internal/domain/voice"
	"github.com/nia/backend/internal/infrastructure/storage"
)

// MockSessionRepository is a mock implementation of voice.SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*voice.CallSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*voice.CallSession), args.Error(1)
}

func (m *MockSessionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]voice.CallSession, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]voice.CallSession), args.Error(1)
}

func (m *MockSessionRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]voice.CallSession, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]voice.CallSession), args.Error(1)
}

func (m *MockSessionRepository) FindStaleActive(ctx context.Context, cutoff time.Time, limit int) ([]voice.CallSession, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]voice.CallSession), args.Error(1)
}

func (m *MockSessionRepository) Save(ctx context.Context, s *voice.CallSession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSessionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockChunkRepository is a mock implementation of voice.ChunkRepository
type MockChunkRepository struct {
	mock.Mock
}

func (m *MockChunkRepository) FindBySession(ctx context.Context, sessionID uuid.UUID) ([]voice.AudioChunk, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]voice.AudioChunk), args.Error(1)
}

func (m *MockChunkRepository) Save(ctx context.Context, c *voice.AudioChunk) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockChunkRepository) DeleteBySession(ctx context.Context, sessionID uuid.UUID) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// MockOutboxRepository records outbox writes for assertion
type MockOutboxRepository struct {
	mock.Mock
	entries []*shared.OutboxEntry
}

func (m *MockOutboxRepository) Save(ctx context.Context, entries ...*shared.OutboxEntry) error {
	m.entries = append(m.entries, entries...)
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockOutboxRepository) FindPending(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*shared.OutboxEntry), args.Error(1)
}

func (m *MockOutboxRepository) FindRetryable(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*shared.OutboxEntry), args.Error(1)
}

func (m *MockOutboxRepository) FindDead(ctx context.Context, page, pageSize int) ([]*shared.OutboxEntry, int64, error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*shared.OutboxEntry), args.Get(1).(int64), args.Error(2)
}

func (m *MockOutboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.OutboxEntry), args.Error(1)
}

func (m *MockOutboxRepository) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*shared.OutboxEntry), args.Error(1)
}

func (m *MockOutboxRepository) Update(ctx context.Context, entry *shared.OutboxEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockOutboxRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOutboxRepository) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[shared.OutboxStatus]int64), args.Error(1)
}

// MockTranscriptAnalyzer is a mock implementation of TranscriptAnalyzer
type MockTranscriptAnalyzer struct {
	mock.Mock
}

func (m *MockTranscriptAnalyzer) Analyze(ctx context.Context, req appconversation.AnalyzeRequest) (*appconversation.AnalysisResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appconversation.AnalysisResponse), args.Error(1)
}

type sessionFixture struct {
	sessionRepo *MockSessionRepository
	chunkRepo   *MockChunkRepository
	store       *storage.StubAudioStorage
	analyzer    *MockTranscriptAnalyzer
	outbox      *MockOutboxRepository
	service     *appvoice.SessionService
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		sessionRepo: new(MockSessionRepository),
		chunkRepo:   new(MockChunkRepository),
		store:       storage.NewStubAudioStorage(),
		analyzer:    new(MockTranscriptAnalyzer),
		outbox:      new(MockOutboxRepository),
	}
	f.service = appvoice.NewSessionService(
		f.sessionRepo, f.chunkRepo, f.store, f.analyzer, f.outbox,
		appvoice.SessionServiceConfig{MaxChunkBytes: 1024, MaxSessionChunks: 4, SessionTTL: time.Hour},
		zap.NewNop(),
	)
	return f
}

func activeSession(t *testing.T) *voice.CallSession {
	t.Helper()
	session, err := voice.NewCallSession(uuid.New(), nil)
	require.NoError(t, err)
	session.ClearDomainEvents()
	return session
}

func TestSessionService_Start(t *testing.T) {
	f := newSessionFixture(t)
	ownerID := uuid.New()

	f.sessionRepo.On("Save", mock.Anything, mock.AnythingOfType("*voice.CallSession")).Return(nil)
	f.outbox.On("Save", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Start(context.Background(), appvoice.StartSessionRequest{OwnerID: &ownerID})

	require.NoError(t, err)
	assert.Equal(t, string(voice.SessionStatusActive), resp.Status)
	assert.Equal(t, ownerID, resp.OwnerID)
	require.Len(t, f.outbox.entries, 1)
	assert.Equal(t, voice.EventTypeSessionStarted, f.outbox.entries[0].EventType)
}

func TestSessionService_UploadChunk_Sequencing(t *testing.T) {
	f := newSessionFixture(t)
	session := activeSession(t)

	f.sessionRepo.On("FindByID", mock.Anything, session.ID).Return(session, nil)
	f.sessionRepo.On("Save", mock.Anything, session).Return(nil)
	f.chunkRepo.On("Save", mock.Anything, mock.AnythingOfType("*voice.AudioChunk")).Return(nil)

	first, err := f.service.UploadChunk(context.Background(), session.ID, appvoice.UploadChunkRequest{
		Sequence: 0,
		Data:     []byte("chunk-zero"),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, first.Sequence)
	assert.Equal(t, voice.ChunkStorageKey(session.ID, 0), first.StorageKey)

	// The payload actually lands in the store
	data, err := f.store.Download(context.Background(), first.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("chunk-zero"), data)

	// A gap in the sequence is rejected
	_, err = f.service.UploadChunk(context.Background(), session.ID, appvoice.UploadChunkRequest{
		Sequence: 5,
		Data:     []byte("chunk-five"),
	})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "SEQUENCE_GAP", domainErr.Code)

	// The next contiguous chunk is accepted
	second, err := f.service.UploadChunk(context.Background(), session.ID, appvoice.UploadChunkRequest{
		Sequence: 1,
		Data:     []byte("chunk-one"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Sequence)
	assert.Equal(t, 2, session.ChunkCount)
	assert.Equal(t, int64(len("chunk-zero")+len("chunk-one")), session.TotalBytes)
}

func TestSessionService_UploadChunk_TooLarge(t *testing.T) {
	f := newSessionFixture(t)
	session := activeSession(t)

	_, err := f.service.UploadChunk(context.Background(), session.ID, appvoice.UploadChunkRequest{
		Sequence: 0,
		Data:     make([]byte, 2048),
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CHUNK_TOO_LARGE", domainErr.Code)
	f.sessionRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestSessionService_UploadChunk_SessionFull(t *testing.T) {
	f := newSessionFixture(t)
	session := activeSession(t)
	for i := 0; i < 4; i++ {
		_, err := session.AcceptChunk(i, 10)
		require.NoError(t, err)
	}

	f.sessionRepo.On("FindByID", mock.Anything, session.ID).Return(session, nil)

	_, err := f.service.UploadChunk(context.Background(), session.ID, appvoice.UploadChunkRequest{
		Sequence: 4,
		Data:     []byte("overflow"),
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "SESSION_FULL", domainErr.Code)
}

func TestSessionService_End_WithTranscript(t *testing.T) {
	f := newSessionFixture(t)
	session := activeSession(t)
	analysisID := uuid.New()

	f.sessionRepo.On("FindByID", mock.Anything, session.ID).Return(session, nil)
	f.sessionRepo.On("Save", mock.Anything, session).Return(nil)
	f.outbox.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.analyzer.On("Analyze", mock.Anything, appconversation.AnalyzeRequest{Transcript: "final transcript"}).
		Return(&appconversation.AnalysisResponse{ID: analysisID}, nil)

	resp, err := f.service.End(context.Background(), session.ID, appvoice.EndSessionRequest{Transcript: "final transcript"})

	require.NoError(t, err)
	assert.Equal(t, string(voice.SessionStatusCompleted), resp.Status)
	require.NotNil(t, resp.AnalysisID)
	assert.Equal(t, analysisID, *resp.AnalysisID)
	require.Len(t, f.outbox.entries, 1)
	assert.Equal(t, voice.EventTypeSessionCompleted, f.outbox.entries[0].EventType)
}

func TestSessionService_End_AnalysisFailureStillCompletes(t *testing.T) {
	f := newSessionFixture(t)
	session := activeSession(t)

	f.sessionRepo.On("FindByID", mock.Anything, session.ID).Return(session, nil)
	f.sessionRepo.On("Save", mock.Anything, session).Return(nil)
	f.outbox.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.analyzer.On("Analyze", mock.Anything, mock.Anything).Return(nil, shared.NewDomainError("INVALID_TRANSCRIPT", "bad"))

	resp, err := f.service.End(context.Background(), session.ID, appvoice.EndSessionRequest{Transcript: "x"})

	require.NoError(t, err)
	assert.Equal(t, string(voice.SessionStatusCompleted), resp.Status)
	assert.Nil(t, resp.AnalysisID)
}

func TestSessionService_End_WithoutTranscriptSkipsAnalysis(t *testing.T) {
	f := newSessionFixture(t)
	session := activeSession(t)

	f.sessionRepo.On("FindByID", mock.Anything, session.ID).Return(session, nil)
	f.sessionRepo.On("Save", mock.Anything, session).Return(nil)
	f.outbox.On("Save", mock.Anything, mock.Anything).Return(nil)

	_, err := f.service.End(context.Background(), session.ID, appvoice.EndSessionRequest{})

	require.NoError(t, err)
	f.analyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
}

func TestSessionService_End_AlreadyCompleted(t *testing.T) {
	f := newSessionFixture(t)
	session := activeSession(t)
	require.NoError(t, session.Complete())
	session.ClearDomainEvents()

	f.sessionRepo.On("FindByID", mock.Anything, session.ID).Return(session, nil)

	_, err := f.service.End(context.Background(), session.ID, appvoice.EndSessionRequest{})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestSessionService_SweepStale(t *testing.T) {
	f := newSessionFixture(t)
	stale := activeSession(t)

	f.sessionRepo.On("FindStaleActive", mock.Anything, mock.Anything, 100).
		Return([]voice.CallSession{*stale}, nil)
	f.sessionRepo.On("Save", mock.Anything, mock.AnythingOfType("*voice.CallSession")).Return(nil)

	swept, err := f.service.SweepStale(context.Background(), 0)

	require.NoError(t, err)
	assert.Equal(t, 1, swept)
}
