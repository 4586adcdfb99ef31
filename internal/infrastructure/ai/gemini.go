package ai

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/nia/backend/internal/infrastructure/config"
)

const (
	defaultRequestTimeout = 30 * time.Second
	initialRetryDelay     = 500 * time.Millisecond
)

// GeminiClient implements Client using Google's Gemini API
type GeminiClient struct {
	client *genai.Client
	cfg    config.GeminiConfig
	logger *zap.Logger

	requests     int64
	failures     int64
	promptTokens int64
	outputTokens int64
}

// GeminiClientOption is a functional option for configuring the client
type GeminiClientOption func(*GeminiClient)

// WithGeminiLogger sets the logger for the client
func WithGeminiLogger(logger *zap.Logger) GeminiClientOption {
	return func(c *GeminiClient) {
		c.logger = logger
	}
}

// NewGeminiClient creates a Gemini-backed text generation client
func NewGeminiClient(cfg config.GeminiConfig, opts ...GeminiClientOption) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("gemini model is required")
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	gc := &GeminiClient{
		client: client,
		cfg:    cfg,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(gc)
	}

	return gc, nil
}

// Generate runs the prompt against the configured default model
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (*Result, error) {
	return c.GenerateWithModel(ctx, c.cfg.Model, prompt)
}

// GenerateWithModel runs the prompt against a specific model with
// per-request timeout and retry on transient failures
func (c *GeminiClient) GenerateWithModel(ctx context.Context, model, prompt string) (*Result, error) {
	if model == "" {
		model = c.cfg.Model
	}

	temperature := float32(c.cfg.Temperature)
	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	}
	if c.cfg.MaxOutputTokens > 0 {
		genConfig.MaxOutputTokens = c.cfg.MaxOutputTokens
	}

	atomic.AddInt64(&c.requests, 1)

	var lastErr error
	delay := initialRetryDelay

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				atomic.AddInt64(&c.failures, 1)
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			c.logger.Debug("Retrying Gemini request",
				zap.String("model", model),
				zap.Int("attempt", attempt))
		}

		reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
		resp, err := c.client.Models.GenerateContent(reqCtx, model,
			genai.Text(prompt), genConfig)
		cancel()

		if err != nil {
			lastErr = err
			c.logger.Warn("Gemini request failed",
				zap.String("model", model),
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}

		result := &Result{
			Text:  resp.Text(),
			Model: model,
		}
		if resp.UsageMetadata != nil {
			result.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
			result.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
			atomic.AddInt64(&c.promptTokens, int64(result.PromptTokens))
			atomic.AddInt64(&c.outputTokens, int64(result.OutputTokens))
		}

		if result.Text == "" {
			lastErr = fmt.Errorf("empty response from model %s", model)
			continue
		}

		return result, nil
	}

	atomic.AddInt64(&c.failures, 1)
	return nil, fmt.Errorf("gemini request failed after %d attempts: %w",
		c.cfg.MaxRetries+1, lastErr)
}

// Stats returns cumulative usage counters
func (c *GeminiClient) Stats() UsageStats {
	return UsageStats{
		Requests:     atomic.LoadInt64(&c.requests),
		Failures:     atomic.LoadInt64(&c.failures),
		PromptTokens: atomic.LoadInt64(&c.promptTokens),
		OutputTokens: atomic.LoadInt64(&c.outputTokens),
	}
}

// Close satisfies Client. The genai v1 client is HTTP-based and holds no
// connection that needs releasing.
func (c *GeminiClient) Close() error {
	return nil
}

// Ensure GeminiClient implements Client
var _ Client = (*GeminiClient)(nil)
