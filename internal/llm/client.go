// Package llm talks to Gemini: it answers controller prompts, summarizes
// emails and drafts replies.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/hal9000y/gmail-assistant/internal/assistant"
)

// ErrNotConfigured is returned while no API key is set.
var ErrNotConfigured = errors.New("gemini model not initialized")

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config selects the model and prompt limits.
type Config struct {
	APIKey           string
	Model            string
	SummaryBodyLimit int
	ReplyBodyLimit   int
}

const (
	defaultModel            = "gemini-2.0-flash"
	defaultSummaryBodyLimit = 3000
	defaultReplyBodyLimit   = 2000
)

// Client wraps a Gemini model.
type Client struct {
	gen    generator
	cfg    Config
	logger *zap.Logger
}

var (
	_ assistant.Oracle      = (*Client)(nil)
	_ assistant.ReplyWriter = (*Client)(nil)
)

// Dial creates a Gemini client. Without an API key the client is returned
// unconfigured and every call reports ErrNotConfigured.
func Dial(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return New(nil, cfg, logger), nil
	}

	clt, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient failed: %w", err)
	}

	return New(clt.Models, cfg, logger), nil
}

// New wraps gen. A nil gen yields an unconfigured client.
func New(gen generator, cfg Config, logger *zap.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.SummaryBodyLimit <= 0 {
		cfg.SummaryBodyLimit = defaultSummaryBodyLimit
	}
	if cfg.ReplyBodyLimit <= 0 {
		cfg.ReplyBodyLimit = defaultReplyBodyLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{gen: gen, cfg: cfg, logger: logger}
}

// Check reports ErrNotConfigured when no model is available.
func (c *Client) Check(_ context.Context) error {
	if c.gen == nil {
		return ErrNotConfigured
	}
	return nil
}

// Complete sends prompt with a zero temperature and returns the text answer.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt, &genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0)})
}

func (c *Client) generate(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	if c.gen == nil {
		return "", ErrNotConfigured
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := c.gen.GenerateContent(ctx, c.cfg.Model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gen.GenerateContent failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		reason := "no candidates"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" {
			reason = string(resp.Candidates[0].FinishReason)
		}
		return "", fmt.Errorf("empty response: %s", reason)
	}

	c.logger.Debug("Gemini answered", zap.String("model", c.cfg.Model), zap.Int("prompt_len", len(prompt)), zap.Int("answer_len", len(text)))

	return text, nil
}

func truncate(s string, limit int) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}
