package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare object",
			input: `{"company_name": "Acme"}`,
			want:  `{"company_name": "Acme"}`,
		},
		{
			name:  "json code fence",
			input: "Here you go:\n```json\n{\"score\": 85}\n```\nLet me know!",
			want:  `{"score": 85}`,
		},
		{
			name:  "plain code fence",
			input: "```\n[{\"action\": \"call\"}]\n```",
			want:  `[{"action": "call"}]`,
		},
		{
			name:  "object surrounded by prose",
			input: `Sure! The extraction is {"email": "a@b.com"} as requested.`,
			want:  `{"email": "a@b.com"}`,
		},
		{
			name:  "nested object",
			input: `{"a": {"b": 1}, "c": 2}`,
			want:  `{"a": {"b": 1}, "c": 2}`,
		},
		{
			name:  "braces inside strings",
			input: `{"summary": "uses {placeholders} and \"quotes\""}`,
			want:  `{"summary": "uses {placeholders} and \"quotes\""}`,
		},
		{
			name:  "bare array",
			input: `[{"action": "follow up"}]`,
			want:  `[{"action": "follow up"}]`,
		},
		{
			name:  "no json",
			input: "I could not extract anything.",
			want:  "",
		},
		{
			name:  "unbalanced object",
			input: `{"a": 1`,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.input))
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Run("decodes fenced extraction", func(t *testing.T) {
		var out struct {
			CompanyName string `json:"company_name"`
			Score       int    `json:"score"`
		}
		raw := "```json\n{\"company_name\": \"Acme\", \"score\": 72}\n```"

		require.NoError(t, DecodeJSON(raw, &out))
		assert.Equal(t, "Acme", out.CompanyName)
		assert.Equal(t, 72, out.Score)
	})

	t.Run("fails when no json present", func(t *testing.T) {
		var out map[string]any
		err := DecodeJSON("nothing here", &out)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no JSON document")
	})

	t.Run("fails on malformed json", func(t *testing.T) {
		var out map[string]any
		err := DecodeJSON(`{"a": }`, &out)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal")
	})
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("jane.doe@example.com"))
	assert.True(t, ValidEmail(" sales+nia@acme.io "))
	assert.False(t, ValidEmail("not-an-email"))
	assert.False(t, ValidEmail("missing@tld"))
	assert.False(t, ValidEmail(""))
}

func TestValidPhone(t *testing.T) {
	assert.True(t, ValidPhone("+1 (555) 123-4567"))
	assert.True(t, ValidPhone("5551234567"))
	assert.False(t, ValidPhone("call me maybe"))
	assert.False(t, ValidPhone("123"))
	assert.False(t, ValidPhone(""))
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+15551234567", NormalizePhone("+1 (555) 123-4567"))
	assert.Equal(t, "5551234567", NormalizePhone("555-123-4567"))
	assert.Equal(t, "", NormalizePhone(""))
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, ClampScore(-5))
	assert.Equal(t, 100, ClampScore(140))
	assert.Equal(t, 85, ClampScore(85))
}
