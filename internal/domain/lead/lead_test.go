package lead

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLead(t *testing.T) {
	t.Run("creates lead successfully", func(t *testing.T) {
		l, err := NewLead("Acme Corp", SourceManual)

		require.NoError(t, err)
		assert.NotNil(t, l)
		assert.Equal(t, "Acme Corp", l.CompanyName)
		assert.Equal(t, SourceManual, l.Source)
		assert.Equal(t, StatusNew, l.Status)
		assert.Equal(t, 0, l.Score)
		assert.True(t, l.DealValue.IsZero())
		assert.Len(t, l.GetDomainEvents(), 1)
	})

	t.Run("fails with empty company name", func(t *testing.T) {
		l, err := NewLead("", SourceManual)

		assert.Error(t, err)
		assert.Nil(t, l)
		assert.Contains(t, err.Error(), "cannot be empty")
	})

	t.Run("fails with unknown source", func(t *testing.T) {
		l, err := NewLead("Acme Corp", Source("carrier_pigeon"))

		assert.Error(t, err)
		assert.Nil(t, l)
	})
}

func TestLead_SetContact(t *testing.T) {
	l, err := NewLead("Acme Corp", SourceConversation)
	require.NoError(t, err)

	t.Run("accepts valid contact", func(t *testing.T) {
		err := l.SetContact("Jane Doe", "Jane@Acme.com", "+1 415 555 0100")

		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", l.ContactName)
		assert.Equal(t, "jane@acme.com", l.Email) // normalized to lowercase
		assert.Equal(t, "+1 415 555 0100", l.Phone)
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		err := l.SetContact("Jane Doe", "not-an-email", "")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Email")
	})

	t.Run("rejects malformed phone", func(t *testing.T) {
		err := l.SetContact("Jane Doe", "", "call me maybe")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Phone")
	})

	t.Run("allows empty contact fields", func(t *testing.T) {
		err := l.SetContact("", "", "")

		assert.NoError(t, err)
	})
}

func TestLead_ApplyScore(t *testing.T) {
	l, err := NewLead("Acme Corp", SourceConversation)
	require.NoError(t, err)
	l.ClearDomainEvents()

	t.Run("applies score in range", func(t *testing.T) {
		err := l.ApplyScore(85, "strong buying signals")

		require.NoError(t, err)
		assert.Equal(t, 85, l.Score)
		assert.Equal(t, "strong buying signals", l.ScoreRationale)
		assert.Len(t, l.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeLeadScored, l.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects score above 100", func(t *testing.T) {
		err := l.ApplyScore(101, "")

		assert.Error(t, err)
		assert.Equal(t, 85, l.Score)
	})

	t.Run("rejects negative score", func(t *testing.T) {
		err := l.ApplyScore(-1, "")

		assert.Error(t, err)
	})
}

func TestLead_TransitionTo(t *testing.T) {
	t.Run("follows pipeline order", func(t *testing.T) {
		l, err := NewLead("Acme Corp", SourceManual)
		require.NoError(t, err)
		l.ClearDomainEvents()

		require.NoError(t, l.TransitionTo(StatusContacted))
		require.NoError(t, l.TransitionTo(StatusQualified))
		require.NoError(t, l.TransitionTo(StatusConverted))

		assert.Equal(t, StatusConverted, l.Status)
		assert.True(t, l.IsTerminal())
		assert.Len(t, l.GetDomainEvents(), 3)
	})

	t.Run("bumps version on every transition", func(t *testing.T) {
		l, err := NewLead("Acme Corp", SourceManual)
		require.NoError(t, err)
		require.Equal(t, 1, l.GetVersion())

		require.NoError(t, l.TransitionTo(StatusContacted))
		assert.Equal(t, 2, l.GetVersion())

		require.NoError(t, l.TransitionTo(StatusQualified))
		assert.Equal(t, 3, l.GetVersion())
	})

	t.Run("allows losing a lead from any active status", func(t *testing.T) {
		l, err := NewLead("Acme Corp", SourceManual)
		require.NoError(t, err)

		require.NoError(t, l.TransitionTo(StatusLost))
		assert.Equal(t, StatusLost, l.Status)
	})

	t.Run("rejects skipping to converted from new", func(t *testing.T) {
		l, err := NewLead("Acme Corp", SourceManual)
		require.NoError(t, err)

		err = l.TransitionTo(StatusConverted)
		assert.Error(t, err)
		assert.Equal(t, StatusNew, l.Status)
	})

	t.Run("rejects leaving a terminal status", func(t *testing.T) {
		l, err := NewLead("Acme Corp", SourceManual)
		require.NoError(t, err)
		require.NoError(t, l.TransitionTo(StatusLost))

		err = l.TransitionTo(StatusContacted)
		assert.Error(t, err)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		l, err := NewLead("Acme Corp", SourceManual)
		require.NoError(t, err)
		l.ClearDomainEvents()

		require.NoError(t, l.TransitionTo(StatusNew))
		assert.Empty(t, l.GetDomainEvents())
		assert.Equal(t, 1, l.GetVersion())
	})
}

func TestLead_SetDealValue(t *testing.T) {
	l, err := NewLead("Acme Corp", SourceManual)
	require.NoError(t, err)

	require.NoError(t, l.SetDealValue(decimal.NewFromInt(50000)))
	assert.True(t, l.DealValue.Equal(decimal.NewFromInt(50000)))

	err = l.SetDealValue(decimal.NewFromInt(-1))
	assert.Error(t, err)
}

func TestLead_SetOwner(t *testing.T) {
	l, err := NewLead("Acme Corp", SourceManual)
	require.NoError(t, err)

	ownerID := uuid.New()
	l.SetOwner(ownerID)

	require.NotNil(t, l.OwnerID)
	assert.Equal(t, ownerID, *l.OwnerID)
}
