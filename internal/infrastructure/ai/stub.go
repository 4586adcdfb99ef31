package ai

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
)

// StubClient is a canned-response Client for development and tests.
// Responses are returned in registration order per prompt substring match,
// falling back to the default response.
type StubClient struct {
	mu        sync.Mutex
	responses map[string]string // prompt substring -> response text
	fallback  string
	err       error
	requests  int64
	model     string
}

// NewStubClient creates a stub client with a default response
func NewStubClient(fallback string) *StubClient {
	return &StubClient{
		responses: make(map[string]string),
		fallback:  fallback,
		model:     "stub",
	}
}

// RespondTo registers a canned response for prompts containing the substring
func (c *StubClient) RespondTo(promptSubstring, response string) *StubClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses[promptSubstring] = response
	return c
}

// FailWith makes every call return the given error
func (c *StubClient) FailWith(err error) *StubClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
	return c
}

// Generate returns the matching canned response
func (c *StubClient) Generate(ctx context.Context, prompt string) (*Result, error) {
	return c.GenerateWithModel(ctx, c.model, prompt)
}

// GenerateWithModel returns the matching canned response
func (c *StubClient) GenerateWithModel(ctx context.Context, model, prompt string) (*Result, error) {
	atomic.AddInt64(&c.requests, 1)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return nil, c.err
	}

	text := c.fallback
	for substr, resp := range c.responses {
		if substr != "" && strings.Contains(prompt, substr) {
			text = resp
			break
		}
	}

	return &Result{Text: text, Model: model}, nil
}

// Stats returns cumulative usage counters
func (c *StubClient) Stats() UsageStats {
	return UsageStats{Requests: atomic.LoadInt64(&c.requests)}
}

// Close is a no-op for the stub
func (c *StubClient) Close() error {
	return nil
}

// Ensure StubClient implements Client
var _ Client = (*StubClient)(nil)
