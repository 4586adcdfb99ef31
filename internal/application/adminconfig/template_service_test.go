package adminconfig

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nia/backend/internal/domain/adminconfig"
	"github.com/nia/backend/internal/domain/shared"
)

// MockTemplateRepository is a mock implementation of adminconfig.Repository
type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*adminconfig.PromptTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*adminconfig.PromptTemplate), args.Error(1)
}

func (m *MockTemplateRepository) FindByName(ctx context.Context, name string) (*adminconfig.PromptTemplate, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*adminconfig.PromptTemplate), args.Error(1)
}

func (m *MockTemplateRepository) FindActiveByKind(ctx context.Context, kind adminconfig.Kind) (*adminconfig.PromptTemplate, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*adminconfig.PromptTemplate), args.Error(1)
}

func (m *MockTemplateRepository) FindAll(ctx context.Context, filter shared.Filter) ([]adminconfig.PromptTemplate, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]adminconfig.PromptTemplate), args.Error(1)
}

func (m *MockTemplateRepository) DeactivateKind(ctx context.Context, kind adminconfig.Kind) error {
	args := m.Called(ctx, kind)
	return args.Error(0)
}

func (m *MockTemplateRepository) Save(ctx context.Context, t *adminconfig.PromptTemplate) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestService(repo *MockTemplateRepository) *Service {
	return NewService(repo, zap.NewNop())
}

func TestService_Create_Success(t *testing.T) {
	repo := new(MockTemplateRepository)
	svc := newTestService(repo)

	repo.On("FindByName", mock.Anything, "tuned-extraction").Return(nil, shared.ErrNotFound)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*adminconfig.PromptTemplate")).Return(nil)

	resp, err := svc.Create(context.Background(), CreateTemplateRequest{
		Name: "tuned-extraction",
		Kind: "extraction",
		Body: "Extract lead data from: {{transcript}}",
	})

	require.NoError(t, err)
	assert.Equal(t, "extraction", resp.Kind)
	assert.False(t, resp.Active)
	assert.Equal(t, []string{"transcript"}, resp.Placeholders)
}

func TestService_Create_DuplicateName(t *testing.T) {
	repo := new(MockTemplateRepository)
	svc := newTestService(repo)

	existing, err := adminconfig.NewPromptTemplate("tuned-extraction", adminconfig.KindExtraction, "body")
	require.NoError(t, err)
	repo.On("FindByName", mock.Anything, "tuned-extraction").Return(existing, nil)

	_, err = svc.Create(context.Background(), CreateTemplateRequest{
		Name: "tuned-extraction",
		Kind: "extraction",
		Body: "body",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
}

func TestService_Create_InvalidKind(t *testing.T) {
	repo := new(MockTemplateRepository)
	svc := newTestService(repo)

	repo.On("FindByName", mock.Anything, "bad-kind").Return(nil, shared.ErrNotFound)

	_, err := svc.Create(context.Background(), CreateTemplateRequest{
		Name: "bad-kind",
		Kind: "summarization",
		Body: "body",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_KIND", domainErr.Code)
}

func TestService_Activate_DeactivatesKindFirst(t *testing.T) {
	repo := new(MockTemplateRepository)
	svc := newTestService(repo)

	template, err := adminconfig.NewPromptTemplate("tuned-questions", adminconfig.KindQuestions, "{{lead_context}}")
	require.NoError(t, err)

	var deactivatedBeforeSave bool
	repo.On("FindByID", mock.Anything, template.ID).Return(template, nil)
	repo.On("DeactivateKind", mock.Anything, adminconfig.KindQuestions).
		Run(func(args mock.Arguments) { deactivatedBeforeSave = true }).Return(nil)
	repo.On("Save", mock.Anything, template).
		Run(func(args mock.Arguments) { require.True(t, deactivatedBeforeSave) }).Return(nil)

	resp, err := svc.Activate(context.Background(), template.ID)

	require.NoError(t, err)
	assert.True(t, resp.Active)
	repo.AssertCalled(t, "DeactivateKind", mock.Anything, adminconfig.KindQuestions)
}

func TestService_Deactivate(t *testing.T) {
	repo := new(MockTemplateRepository)
	svc := newTestService(repo)

	template, err := adminconfig.NewPromptTemplate("tuned-questions", adminconfig.KindQuestions, "{{lead_context}}")
	require.NoError(t, err)
	template.Activate()

	repo.On("FindByID", mock.Anything, template.ID).Return(template, nil)
	repo.On("Save", mock.Anything, template).Return(nil)

	resp, err := svc.Deactivate(context.Background(), template.ID)

	require.NoError(t, err)
	assert.False(t, resp.Active)
}

func TestService_Update_Body(t *testing.T) {
	repo := new(MockTemplateRepository)
	svc := newTestService(repo)

	template, err := adminconfig.NewPromptTemplate("tuned-extraction", adminconfig.KindExtraction, "old {{transcript}}")
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, template.ID).Return(template, nil)
	repo.On("Save", mock.Anything, template).Return(nil)

	newBody := "new {{transcript}} and {{extra}}"
	resp, err := svc.Update(context.Background(), template.ID, UpdateTemplateRequest{Body: &newBody})

	require.NoError(t, err)
	assert.Equal(t, newBody, resp.Body)
	assert.ElementsMatch(t, []string{"transcript", "extra"}, resp.Placeholders)
}

func TestService_Preview(t *testing.T) {
	repo := new(MockTemplateRepository)
	svc := newTestService(repo)

	template, err := adminconfig.NewPromptTemplate("tuned-intelligence", adminconfig.KindIntelligence,
		"Summarize: {{notes}} ({{missing}})")
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, template.ID).Return(template, nil)

	resp, err := svc.Preview(context.Background(), template.ID, PreviewRequest{
		Values: map[string]string{"notes": "we discussed pricing"},
	})

	require.NoError(t, err)
	// Unknown placeholders stay visible so admins can spot typos
	assert.Equal(t, "Summarize: we discussed pricing ({{missing}})", resp.Rendered)
	assert.ElementsMatch(t, []string{"notes", "missing"}, resp.Placeholders)
}

func TestService_EffectiveBody_FallsBackToDefault(t *testing.T) {
	repo := new(MockTemplateRepository)
	svc := newTestService(repo)

	repo.On("FindActiveByKind", mock.Anything, adminconfig.KindExtraction).Return(nil, shared.ErrNotFound)

	body, custom, err := svc.EffectiveBody(context.Background(), adminconfig.KindExtraction)

	require.NoError(t, err)
	assert.False(t, custom)
	assert.Equal(t, adminconfig.DefaultBody(adminconfig.KindExtraction), body)
}
