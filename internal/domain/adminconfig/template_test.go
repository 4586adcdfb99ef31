package adminconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPromptTemplate(t *testing.T) {
	t.Run("creates inactive template", func(t *testing.T) {
		tpl, err := NewPromptTemplate("extraction-v2", KindExtraction, "Extract from {{transcript}}")

		require.NoError(t, err)
		assert.False(t, tpl.Active)
		assert.Equal(t, KindExtraction, tpl.Kind)
	})

	t.Run("rejects empty body", func(t *testing.T) {
		_, err := NewPromptTemplate("x", KindExtraction, "  ")
		assert.Error(t, err)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		_, err := NewPromptTemplate("x", Kind("poetry"), "body")
		assert.Error(t, err)
	})
}

func TestPromptTemplate_Placeholders(t *testing.T) {
	tpl, err := NewPromptTemplate("q", KindQuestions,
		"Lead {{company_name}} ({{company_name}}), contact {{contact_name}}.")
	require.NoError(t, err)

	assert.Equal(t, []string{"company_name", "contact_name"}, tpl.Placeholders())
}

func TestPromptTemplate_Render(t *testing.T) {
	tpl, err := NewPromptTemplate("q", KindQuestions,
		"Prepare questions for {{company_name}} about {{topic}}.")
	require.NoError(t, err)

	out := tpl.Render(map[string]string{"company_name": "Acme"})

	// known placeholders substituted, unknown left visible
	assert.Equal(t, "Prepare questions for Acme about {{topic}}.", out)
}
