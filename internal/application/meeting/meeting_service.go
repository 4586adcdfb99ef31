package meeting

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nia/backend/internal/domain/lead"
	"github.com/nia/backend/internal/domain/meeting"
	"github.com/nia/backend/internal/domain/shared"
	"github.com/nia/backend/internal/infrastructure/telemetry"
)

// Service handles meeting scheduling and lifecycle operations
type Service struct {
	meetingRepo     meeting.Repository
	leadRepo        lead.Repository
	outboxRepo      shared.OutboxRepository
	conflictChecker *meeting.ConflictChecker
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewService creates a new meeting Service
func NewService(
	meetingRepo meeting.Repository,
	leadRepo lead.Repository,
	outboxRepo shared.OutboxRepository,
	conflictChecker *meeting.ConflictChecker,
	logger *zap.Logger,
) *Service {
	return &Service{
		meetingRepo:     meetingRepo,
		leadRepo:        leadRepo,
		outboxRepo:      outboxRepo,
		conflictChecker: conflictChecker,
		logger:          logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *Service) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Schedule creates a meeting after checking the owner's calendar for
// overlaps and the per-day cap
func (s *Service) Schedule(ctx context.Context, req ScheduleMeetingRequest) (*MeetingResponse, error) {
	if _, err := s.leadRepo.FindByID(ctx, req.LeadID); err != nil {
		return nil, err
	}
	if req.OwnerID == nil || *req.OwnerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner ID is required")
	}

	m, err := meeting.NewMeeting(req.LeadID, *req.OwnerID, req.Title, meeting.Platform(req.Platform), req.StartAt, req.EndAt)
	if err != nil {
		return nil, err
	}
	if req.Agenda != "" || req.JoinURL != "" {
		if err := m.UpdateDetails(m.Title, req.Agenda, req.JoinURL); err != nil {
			return nil, err
		}
	}

	if err := s.checkConflicts(ctx, *req.OwnerID, m.StartAt, m.EndAt, ""); err != nil {
		return nil, err
	}

	if err := s.meetingRepo.Save(ctx, m); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, m)

	if s.businessMetrics != nil {
		s.businessMetrics.RecordMeetingScheduled(ctx, string(m.Platform))
	}

	s.logger.Info("Meeting scheduled",
		zap.String("meeting_id", m.ID.String()),
		zap.String("lead_id", m.LeadID.String()),
		zap.Time("start_at", m.StartAt))

	response := ToMeetingResponse(m)
	return &response, nil
}

// GetByID retrieves a meeting by ID
func (s *Service) GetByID(ctx context.Context, meetingID uuid.UUID) (*MeetingResponse, error) {
	m, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	response := ToMeetingResponse(m)
	return &response, nil
}

// List retrieves meetings with filtering and pagination
func (s *Service) List(ctx context.Context, filter MeetingListFilter) ([]MeetingResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "start_at",
		OrderDir: "asc",
		Filters:  map[string]interface{}{},
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	var (
		meetings []meeting.Meeting
		err      error
	)
	switch {
	case filter.LeadID != "":
		leadID, parseErr := uuid.Parse(filter.LeadID)
		if parseErr != nil {
			return nil, 0, shared.NewDomainError("INVALID_LEAD_ID", "Lead ID must be a valid UUID")
		}
		meetings, err = s.meetingRepo.FindByLead(ctx, leadID, domainFilter)
	case filter.OwnerID != "" && filter.Day != "":
		ownerID, parseErr := uuid.Parse(filter.OwnerID)
		if parseErr != nil {
			return nil, 0, shared.NewDomainError("INVALID_OWNER_ID", "Owner ID must be a valid UUID")
		}
		day, parseErr := time.Parse("2006-01-02", filter.Day)
		if parseErr != nil {
			return nil, 0, shared.NewDomainError("INVALID_DAY", "Day must be YYYY-MM-DD")
		}
		meetings, err = s.meetingRepo.FindByOwnerBetween(ctx, ownerID, day, day.Add(24*time.Hour))
		if err != nil {
			return nil, 0, err
		}
		return ToMeetingResponses(meetings), int64(len(meetings)), nil
	case filter.OwnerID != "":
		ownerID, parseErr := uuid.Parse(filter.OwnerID)
		if parseErr != nil {
			return nil, 0, shared.NewDomainError("INVALID_OWNER_ID", "Owner ID must be a valid UUID")
		}
		domainFilter.Filters["owner_id"] = ownerID
		meetings, err = s.meetingRepo.FindAll(ctx, domainFilter)
	case filter.Upcoming:
		meetings, err = s.meetingRepo.FindUpcoming(ctx, domainFilter)
	default:
		meetings, err = s.meetingRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.meetingRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToMeetingResponses(meetings), total, nil
}

// Update updates the meeting's editable details
func (s *Service) Update(ctx context.Context, meetingID uuid.UUID, req UpdateMeetingRequest) (*MeetingResponse, error) {
	m, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	title := m.Title
	if req.Title != nil {
		title = *req.Title
	}
	agenda := m.Agenda
	if req.Agenda != nil {
		agenda = *req.Agenda
	}
	joinURL := m.JoinURL
	if req.JoinURL != nil {
		joinURL = *req.JoinURL
	}
	if err := m.UpdateDetails(title, agenda, joinURL); err != nil {
		return nil, err
	}

	if err := s.meetingRepo.Save(ctx, m); err != nil {
		return nil, err
	}

	response := ToMeetingResponse(m)
	return &response, nil
}

// Reschedule moves a meeting to a new window, re-running conflict checks
func (s *Service) Reschedule(ctx context.Context, meetingID uuid.UUID, req RescheduleRequest) (*MeetingResponse, error) {
	m, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	if err := s.checkConflicts(ctx, m.OwnerID, req.StartAt.UTC(), req.EndAt.UTC(), m.ID.String()); err != nil {
		return nil, err
	}
	if err := m.Reschedule(req.StartAt, req.EndAt); err != nil {
		return nil, err
	}

	if err := s.meetingRepo.Save(ctx, m); err != nil {
		return nil, err
	}

	response := ToMeetingResponse(m)
	return &response, nil
}

// Cancel cancels a scheduled meeting
func (s *Service) Cancel(ctx context.Context, meetingID uuid.UUID) (*MeetingResponse, error) {
	m, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	if err := m.Cancel(); err != nil {
		return nil, err
	}
	if err := s.meetingRepo.Save(ctx, m); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, m)

	response := ToMeetingResponse(m)
	return &response, nil
}

// Complete marks a meeting as held and records the post-meeting notes
func (s *Service) Complete(ctx context.Context, meetingID uuid.UUID, req CompleteMeetingRequest) (*MeetingResponse, error) {
	m, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	if err := m.Complete(req.Notes); err != nil {
		return nil, err
	}
	if err := s.meetingRepo.Save(ctx, m); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, m)

	response := ToMeetingResponse(m)
	return &response, nil
}

// Stats returns meeting counts grouped by status
func (s *Service) Stats(ctx context.Context) (map[meeting.Status]int64, error) {
	return s.meetingRepo.CountByStatus(ctx)
}

// checkConflicts fetches the owner's meetings around the candidate window
// and runs them through the conflict checker. The fetch spans a day on each
// side so the per-day cap sees every meeting on the candidate's calendar day.
func (s *Service) checkConflicts(ctx context.Context, ownerID uuid.UUID, startAt, endAt time.Time, excludeID string) error {
	existing, err := s.meetingRepo.FindByOwnerBetween(ctx, ownerID, startAt.Add(-24*time.Hour), endAt.Add(24*time.Hour))
	if err != nil {
		return err
	}
	return s.conflictChecker.Check(existing, startAt, endAt, excludeID)
}

// publishEvents writes pending domain events to the outbox
func (s *Service) publishEvents(ctx context.Context, m *meeting.Meeting) {
	events := m.GetDomainEvents()
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
	m.ClearDomainEvents()
}
