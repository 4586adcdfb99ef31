package meeting

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nia/backend/internal/domain/lead"
	"github.com/nia/backend/internal/domain/meeting"
	"github.com/nia/backend/internal/domain/shared"
)

// MockMeetingRepository is a mock implementation of meeting.Repository
type MockMeetingRepository struct {
	mock.Mock
}

func (m *MockMeetingRepository) FindByID(ctx context.Context, id uuid.UUID) (*meeting.Meeting, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*meeting.Meeting), args.Error(1)
}

func (m *MockMeetingRepository) FindAll(ctx context.Context, filter shared.Filter) ([]meeting.Meeting, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]meeting.Meeting), args.Error(1)
}

func (m *MockMeetingRepository) FindByLead(ctx context.Context, leadID uuid.UUID, filter shared.Filter) ([]meeting.Meeting, error) {
	args := m.Called(ctx, leadID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]meeting.Meeting), args.Error(1)
}

func (m *MockMeetingRepository) FindByOwnerBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]meeting.Meeting, error) {
	args := m.Called(ctx, ownerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]meeting.Meeting), args.Error(1)
}

func (m *MockMeetingRepository) FindUpcoming(ctx context.Context, filter shared.Filter) ([]meeting.Meeting, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]meeting.Meeting), args.Error(1)
}

func (m *MockMeetingRepository) Save(ctx context.Context, mt *meeting.Meeting) error {
	args := m.Called(ctx, mt)
	return args.Error(0)
}

func (m *MockMeetingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMeetingRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMeetingRepository) CountByStatus(ctx context.Context) (map[meeting.Status]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[meeting.Status]int64), args.Error(1)
}

// MockQuestionRepository is a mock implementation of meeting.QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) FindByMeeting(ctx context.Context, meetingID uuid.UUID) ([]meeting.Question, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]meeting.Question), args.Error(1)
}

func (m *MockQuestionRepository) ReplaceForMeeting(ctx context.Context, meetingID uuid.UUID, questions []*meeting.Question) error {
	args := m.Called(ctx, meetingID, questions)
	return args.Error(0)
}

func (m *MockQuestionRepository) DeleteByMeeting(ctx context.Context, meetingID uuid.UUID) error {
	args := m.Called(ctx, meetingID)
	return args.Error(0)
}

// MockIntelligenceRepository is a mock implementation of meeting.IntelligenceRepository
type MockIntelligenceRepository struct {
	mock.Mock
}

func (m *MockIntelligenceRepository) FindByMeeting(ctx context.Context, meetingID uuid.UUID) (*meeting.Intelligence, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*meeting.Intelligence), args.Error(1)
}

func (m *MockIntelligenceRepository) Save(ctx context.Context, i *meeting.Intelligence) error {
	args := m.Called(ctx, i)
	return args.Error(0)
}

// MockLeadRepository is a mock implementation of lead.Repository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id uuid.UUID) (*lead.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lead.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByEmail(ctx context.Context, email string) (*lead.Lead, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lead.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindAll(ctx context.Context, filter shared.Filter) ([]lead.Lead, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]lead.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByStatus(ctx context.Context, status lead.Status, filter shared.Filter) ([]lead.Lead, error) {
	args := m.Called(ctx, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]lead.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]lead.Lead, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]lead.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindActive(ctx context.Context, filter shared.Filter) ([]lead.Lead, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]lead.Lead), args.Error(1)
}

func (m *MockLeadRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeadRepository) Save(ctx context.Context, l *lead.Lead) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLeadRepository) SaveWithLock(ctx context.Context, l *lead.Lead) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLeadRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeadRepository) CountByStatus(ctx context.Context) (map[lead.Status]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[lead.Status]int64), args.Error(1)
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

type meetingFixture struct {
	meetingRepo *MockMeetingRepository
	leadRepo    *MockLeadRepository
	outbox      *MockOutboxRepository
	service     *Service
}

func newMeetingFixture(t *testing.T) *meetingFixture {
	t.Helper()
	f := &meetingFixture{
		meetingRepo: new(MockMeetingRepository),
		leadRepo:    new(MockLeadRepository),
		outbox:      new(MockOutboxRepository),
	}
	f.service = NewService(
		f.meetingRepo, f.leadRepo, f.outbox,
		meeting.NewConflictChecker(3), zap.NewNop(),
	)
	return f
}

func testLead(t *testing.T) *lead.Lead {
	t.Helper()
	l, err := lead.NewLead("Northwind Traders", lead.SourceManual)
	require.NoError(t, err)
	l.ClearDomainEvents()
	return l
}

func scheduleRequest(leadID, ownerID uuid.UUID, startAt time.Time) ScheduleMeetingRequest {
	return ScheduleMeetingRequest{
		LeadID:   leadID,
		OwnerID:  &ownerID,
		Title:    "Discovery call",
		Platform: "google_meet",
		StartAt:  startAt,
		EndAt:    startAt.Add(30 * time.Minute),
	}
}

func TestService_Schedule_Success(t *testing.T) {
	f := newMeetingFixture(t)
	l := testLead(t)
	ownerID := uuid.New()
	startAt := time.Now().Add(48 * time.Hour).UTC()

	f.leadRepo.On("FindByID", mock.Anything, l.ID).Return(l, nil)
	f.meetingRepo.On("FindByOwnerBetween", mock.Anything, ownerID, mock.Anything, mock.Anything).
		Return([]meeting.Meeting{}, nil)
	f.meetingRepo.On("Save", mock.Anything, mock.AnythingOfType("*meeting.Meeting")).Return(nil)
	f.outbox.On("Save", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Schedule(context.Background(), scheduleRequest(l.ID, ownerID, startAt))

	require.NoError(t, err)
	assert.Equal(t, string(meeting.StatusScheduled), resp.Status)
	assert.Equal(t, "google_meet", resp.Platform)
	require.Len(t, f.outbox.entries, 1)
	assert.Equal(t, meeting.EventTypeMeetingScheduled, f.outbox.entries[0].EventType)
}

func TestService_Schedule_OverlapRejected(t *testing.T) {
	f := newMeetingFixture(t)
	l := testLead(t)
	ownerID := uuid.New()
	startAt := time.Now().Add(48 * time.Hour).UTC()

	existing, err := meeting.NewMeeting(l.ID, ownerID, "Standing call", meeting.PlatformTeams,
		startAt.Add(-15*time.Minute), startAt.Add(15*time.Minute))
	require.NoError(t, err)

	f.leadRepo.On("FindByID", mock.Anything, l.ID).Return(l, nil)
	f.meetingRepo.On("FindByOwnerBetween", mock.Anything, ownerID, mock.Anything, mock.Anything).
		Return([]meeting.Meeting{*existing}, nil)

	_, err = f.service.Schedule(context.Background(), scheduleRequest(l.ID, ownerID, startAt))

	require.ErrorIs(t, err, shared.ErrMeetingConflict)
	f.meetingRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_Schedule_DailyCapRejected(t *testing.T) {
	f := newMeetingFixture(t)
	l := testLead(t)
	ownerID := uuid.New()
	day := time.Now().Add(48 * time.Hour).UTC().Truncate(24 * time.Hour)

	var sameDay []meeting.Meeting
	for i := 0; i < 3; i++ {
		startAt := day.Add(time.Duration(9+i) * time.Hour)
		m, err := meeting.NewMeeting(l.ID, ownerID, "Booked slot", meeting.PlatformOther,
			startAt, startAt.Add(30*time.Minute))
		require.NoError(t, err)
		sameDay = append(sameDay, *m)
	}

	f.leadRepo.On("FindByID", mock.Anything, l.ID).Return(l, nil)
	f.meetingRepo.On("FindByOwnerBetween", mock.Anything, ownerID, mock.Anything, mock.Anything).
		Return(sameDay, nil)

	_, err := f.service.Schedule(context.Background(), scheduleRequest(l.ID, ownerID, day.Add(15*time.Hour)))

	require.ErrorIs(t, err, shared.ErrDailyLimitReached)
}

func TestService_Schedule_UnknownLead(t *testing.T) {
	f := newMeetingFixture(t)
	leadID := uuid.New()
	ownerID := uuid.New()

	f.leadRepo.On("FindByID", mock.Anything, leadID).Return(nil, shared.ErrNotFound)

	_, err := f.service.Schedule(context.Background(), scheduleRequest(leadID, ownerID, time.Now().Add(time.Hour)))

	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_Reschedule_ExcludesSelfFromConflictCheck(t *testing.T) {
	f := newMeetingFixture(t)
	l := testLead(t)
	ownerID := uuid.New()
	startAt := time.Now().Add(48 * time.Hour).UTC()

	m, err := meeting.NewMeeting(l.ID, ownerID, "Discovery call", meeting.PlatformGoogleMeet,
		startAt, startAt.Add(30*time.Minute))
	require.NoError(t, err)
	m.ClearDomainEvents()

	f.meetingRepo.On("FindByID", mock.Anything, m.ID).Return(m, nil)
	// The stored copy of the meeting itself comes back from the window query
	f.meetingRepo.On("FindByOwnerBetween", mock.Anything, ownerID, mock.Anything, mock.Anything).
		Return([]meeting.Meeting{*m}, nil)
	f.meetingRepo.On("Save", mock.Anything, m).Return(nil)

	newStart := startAt.Add(10 * time.Minute)
	resp, err := f.service.Reschedule(context.Background(), m.ID, RescheduleRequest{
		StartAt: newStart,
		EndAt:   newStart.Add(30 * time.Minute),
	})

	require.NoError(t, err)
	assert.True(t, resp.StartAt.Equal(newStart))
}

func TestService_Cancel(t *testing.T) {
	f := newMeetingFixture(t)
	l := testLead(t)
	startAt := time.Now().Add(48 * time.Hour).UTC()

	m, err := meeting.NewMeeting(l.ID, uuid.New(), "Discovery call", meeting.PlatformGoogleMeet,
		startAt, startAt.Add(30*time.Minute))
	require.NoError(t, err)
	m.ClearDomainEvents()

	f.meetingRepo.On("FindByID", mock.Anything, m.ID).Return(m, nil)
	f.meetingRepo.On("Save", mock.Anything, m).Return(nil)
	f.outbox.On("Save", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Cancel(context.Background(), m.ID)

	require.NoError(t, err)
	assert.Equal(t, string(meeting.StatusCancelled), resp.Status)
	require.Len(t, f.outbox.entries, 1)
	assert.Equal(t, meeting.EventTypeMeetingCancelled, f.outbox.entries[0].EventType)
}

func TestService_Complete_RecordsNotes(t *testing.T) {
	f := newMeetingFixture(t)
	l := testLead(t)
	startAt := time.Now().Add(-2 * time.Hour).UTC()

	m, err := meeting.NewMeeting(l.ID, uuid.New(), "Discovery call", meeting.PlatformGoogleMeet,
		startAt, startAt.Add(30*time.Minute))
	require.NoError(t, err)
	m.ClearDomainEvents()

	f.meetingRepo.On("FindByID", mock.Anything, m.ID).Return(m, nil)
	f.meetingRepo.On("Save", mock.Anything, m).Return(nil)
	f.outbox.On("Save", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Complete(context.Background(), m.ID, CompleteMeetingRequest{
		Notes: "Demo went well, follow up on pricing",
	})

	require.NoError(t, err)
	assert.Equal(t, string(meeting.StatusCompleted), resp.Status)
	assert.Equal(t, "Demo went well, follow up on pricing", resp.Notes)
	require.Len(t, f.outbox.entries, 1)
	assert.Equal(t, meeting.EventTypeMeetingCompleted, f.outbox.entries[0].EventType)
}

func TestService_Cancel_CompletedMeetingRejected(t *testing.T) {
	f := newMeetingFixture(t)
	l := testLead(t)
	startAt := time.Now().Add(-2 * time.Hour).UTC()

	m, err := meeting.NewMeeting(l.ID, uuid.New(), "Discovery call", meeting.PlatformGoogleMeet,
		startAt, startAt.Add(30*time.Minute))
	require.NoError(t, err)
	require.NoError(t, m.Complete("held"))
	m.ClearDomainEvents()

	f.meetingRepo.On("FindByID", mock.Anything, m.ID).Return(m, nil)

	_, err = f.service.Cancel(context.Background(), m.ID)

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestService_List_ByOwnerAndDay(t *testing.T) {
	f := newMeetingFixture(t)
	l := testLead(t)
	ownerID := uuid.New()
	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	m, err := meeting.NewMeeting(l.ID, ownerID, "Discovery call", meeting.PlatformGoogleMeet,
		day.Add(10*time.Hour), day.Add(10*time.Hour+30*time.Minute))
	require.NoError(t, err)

	f.meetingRepo.On("FindByOwnerBetween", mock.Anything, ownerID, day, day.Add(24*time.Hour)).
		Return([]meeting.Meeting{*m}, nil)

	responses, total, err := f.service.List(context.Background(), MeetingListFilter{
		OwnerID: ownerID.String(),
		Day:     "2026-09-14",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, responses, 1)
	assert.Equal(t, "Discovery call", responses[0].Title)
}
