package dashboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nia/backend/internal/domain/lead"
	"github.com/nia/backend/internal/domain/meeting"
	"github.com/nia/backend/internal/domain/shared"
	"github.com/nia/backend/internal/domain/voice"
	"github.com/nia/backend/internal/infrastructure/ai"
)

// PipelineStats holds lead counts per pipeline status
type PipelineStats struct {
	ByStatus map[string]int64 `json:"by_status"`
	Total    int64            `json:"total"`
}

// MeetingStats holds meeting counts per lifecycle status
type MeetingStats struct {
	ByStatus map[string]int64 `json:"by_status"`
	Total    int64            `json:"total"`
}

// VoiceStats holds call session counts per lifecycle status
type VoiceStats struct {
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
}

// Snapshot is one dashboard aggregate, either computed on demand or by the
// daily scheduler job
type Snapshot struct {
	Pipeline    PipelineStats `json:"pipeline"`
	Meetings    MeetingStats  `json:"meetings"`
	Voice       VoiceStats    `json:"voice"`
	AIUsage     ai.UsageStats `json:"ai_usage"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// StatsService aggregates the admin dashboard numbers. The last computed
// snapshot is kept in memory so the dashboard endpoint stays cheap between
// scheduler runs.
type StatsService struct {
	leadRepo    lead.Repository
	meetingRepo meeting.Repository
	sessionRepo voice.SessionRepository
	aiClient    ai.Client
	maxAge      time.Duration
	logger      *zap.Logger

	mu       sync.RWMutex
	snapshot *Snapshot
}

// NewStatsService creates a new StatsService. maxAge bounds how old a kept
// snapshot may be before a dashboard request recomputes it.
func NewStatsService(
	leadRepo lead.Repository,
	meetingRepo meeting.Repository,
	sessionRepo voice.SessionRepository,
	aiClient ai.Client,
	maxAge time.Duration,
	logger *zap.Logger,
) *StatsService {
	if maxAge <= 0 {
		maxAge = 5 * time.Minute
	}
	return &StatsService{
		leadRepo:    leadRepo,
		meetingRepo: meetingRepo,
		sessionRepo: sessionRepo,
		aiClient:    aiClient,
		maxAge:      maxAge,
		logger:      logger,
	}
}

// Get returns the current dashboard snapshot, recomputing it when the kept
// one is older than maxAge
func (s *StatsService) Get(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	snapshot := s.snapshot
	s.mu.RUnlock()

	if snapshot != nil && time.Since(snapshot.GeneratedAt) < s.maxAge {
		return snapshot, nil
	}
	return s.Recompute(ctx)
}

// Recompute rebuilds the snapshot from the repositories. It is registered
// as the dashboard snapshot job.
func (s *StatsService) Recompute(ctx context.Context) (*Snapshot, error) {
	pipeline, err := s.pipelineStats(ctx)
	if err != nil {
		return nil, err
	}
	meetings, err := s.meetingStats(ctx)
	if err != nil {
		return nil, err
	}
	voiceStats, err := s.voiceStats(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		Pipeline:    pipeline,
		Meetings:    meetings,
		Voice:       voiceStats,
		AIUsage:     s.aiClient.Stats(),
		GeneratedAt: time.Now(),
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()

	s.logger.Debug("Dashboard snapshot recomputed",
		zap.Int64("leads", snapshot.Pipeline.Total),
		zap.Int64("meetings", snapshot.Meetings.Total))

	return snapshot, nil
}

func (s *StatsService) pipelineStats(ctx context.Context) (PipelineStats, error) {
	counts, err := s.leadRepo.CountByStatus(ctx)
	if err != nil {
		return PipelineStats{}, err
	}
	stats := PipelineStats{ByStatus: make(map[string]int64, len(counts))}
	for status, count := range counts {
		stats.ByStatus[string(status)] = count
		stats.Total += count
	}
	return stats, nil
}

func (s *StatsService) meetingStats(ctx context.Context) (MeetingStats, error) {
	counts, err := s.meetingRepo.CountByStatus(ctx)
	if err != nil {
		return MeetingStats{}, err
	}
	stats := MeetingStats{ByStatus: make(map[string]int64, len(counts))}
	for status, count := range counts {
		stats.ByStatus[string(status)] = count
		stats.Total += count
	}
	return stats, nil
}

func (s *StatsService) voiceStats(ctx context.Context) (VoiceStats, error) {
	var stats VoiceStats
	for status, target := range map[voice.SessionStatus]*int64{
		voice.SessionStatusActive:    &stats.Active,
		voice.SessionStatusCompleted: &stats.Completed,
		voice.SessionStatusFailed:    &stats.Failed,
	} {
		count, err := s.sessionRepo.Count(ctx, shared.Filter{
			Filters: map[string]interface{}{"status": string(status)},
		})
		if err != nil {
			return VoiceStats{}, err
		}
		*target = count
	}
	return stats, nil
}
