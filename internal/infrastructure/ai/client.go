package ai

import "context"

// Result is a single model completion with token accounting
type Result struct {
	Text         string
	Model        string
	PromptTokens int
	OutputTokens int
}

// UsageStats holds cumulative counters for AI requests since process start
type UsageStats struct {
	Requests     int64 `json:"requests"`
	Failures     int64 `json:"failures"`
	PromptTokens int64 `json:"prompt_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Client generates text completions. Implementations must be safe for
// concurrent use; callers are expected to degrade to fallback values on
// error rather than surfacing a 5xx.
type Client interface {
	// Generate runs the prompt against the default model
	Generate(ctx context.Context, prompt string) (*Result, error)

	// GenerateWithModel runs the prompt against a specific model
	GenerateWithModel(ctx context.Context, model, prompt string) (*Result, error)

	// Stats returns cumulative usage counters
	Stats() UsageStats

	// Close releases the underlying connection
	Close() error
}
