package event

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/nia/backend/internal/domain/lead"
	"github.com/nia/backend/internal/domain/voice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegisterAllEvents_RegistersAllDomainEvents(t *testing.T) {
	serializer := NewVersionedSerializer(zap.NewNop())
	require.NoError(t, RegisterAllEvents(serializer))

	for _, eventType := range []string{
		lead.EventTypeLeadCreated,
		lead.EventTypeLeadStatusChanged,
		lead.EventTypeLeadScored,
		voice.EventTypeSessionStarted,
		voice.EventTypeSessionCompleted,
	} {
		assert.True(t, serializer.IsRegistered(eventType), eventType)
	}

	version, ok := serializer.GetCurrentVersion(lead.EventTypeLeadScored)
	require.True(t, ok)
	assert.Equal(t, lead.LeadScoredSchemaVersion, version)
}

func TestRegisterAllEvents_UpgradesLegacyLeadScoredPayload(t *testing.T) {
	serializer := NewVersionedSerializer(zap.NewNop())
	require.NoError(t, RegisterAllEvents(serializer))

	leadID := uuid.New()
	legacy := map[string]any{
		"id":             uuid.New().String(),
		"type":           lead.EventTypeLeadScored,
		"aggregate_id":   leadID.String(),
		"aggregate_type": lead.AggregateTypeLead,
		"schema_version": 1,
		"lead_id":        leadID.String(),
		"score":          82,
		"reasoning":      "Strong budget signals in discovery call",
	}
	payload, err := json.Marshal(legacy)
	require.NoError(t, err)

	event, err := serializer.Deserialize(lead.EventTypeLeadScored, payload)
	require.NoError(t, err)

	scored, ok := event.(*lead.LeadScoredEvent)
	require.True(t, ok)
	assert.Equal(t, leadID, scored.LeadID)
	assert.Equal(t, 82, scored.Score)
	assert.Equal(t, "Strong budget signals in discovery call", scored.Rationale)
	assert.Equal(t, lead.LeadScoredSchemaVersion, scored.SchemaVersion())
}

func TestRegisterAllEvents_CurrentLeadScoredPayloadRoundTrips(t *testing.T) {
	serializer := NewVersionedSerializer(zap.NewNop())
	require.NoError(t, RegisterAllEvents(serializer))

	l := &lead.Lead{}
	l.ID = uuid.New()
	l.Score = 64
	l.ScoreRationale = "Mid-market fit"

	original := lead.NewLeadScoredEvent(l)
	payload, err := serializer.Serialize(original)
	require.NoError(t, err)

	event, err := serializer.Deserialize(lead.EventTypeLeadScored, payload)
	require.NoError(t, err)

	scored, ok := event.(*lead.LeadScoredEvent)
	require.True(t, ok)
	assert.Equal(t, original.Score, scored.Score)
	assert.Equal(t, original.Rationale, scored.Rationale)
}
