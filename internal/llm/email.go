package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hal9000y/gmail-assistant/internal/assistant"
)

// Summarize returns a concise summary of an email body. The body is cut to
// the configured summary limit before it is sent.
func (c *Client) Summarize(ctx context.Context, subject, body string) (string, error) {
	prompt := fmt.Sprintf("Summarize the following email concisely:\n\nSubject: %s\n\nBody:\n%s\n\nSummary:",
		subject, truncate(body, c.cfg.SummaryBodyLimit))

	summary, err := c.generate(ctx, prompt, nil)
	if err != nil {
		return "", generationFailure("summarization", err)
	}

	return summary, nil
}

// GenerateReply drafts a reply body without greeting or closing lines.
// Optional instructions steer the content of the draft.
func (c *Client) GenerateReply(ctx context.Context, subject, body, instructions string) (string, error) {
	if strings.TrimSpace(body) == "" {
		return "", assistant.NewCapabilityError("Cannot generate reply without original email body.")
	}

	var b strings.Builder
	b.WriteString("Generate a helpful and concise reply draft for the following email.\n")
	b.WriteString("Keep the reply professional and address the main points. ")
	b.WriteString(`Do not include greetings or closings like "Hi" or "Best regards".` + "\n")
	if in := strings.TrimSpace(instructions); in != "" {
		fmt.Fprintf(&b, "The user wants the reply to follow these instructions: %s\n", in)
	}
	fmt.Fprintf(&b, "\nOriginal Email Subject: %s\nOriginal Email Body:\n---\n%s\n---\n\nGenerated Reply Draft:",
		subject, truncate(body, c.cfg.ReplyBodyLimit))

	draft, err := c.generate(ctx, b.String(), nil)
	if err != nil {
		return "", generationFailure("reply generation", err)
	}

	return draft, nil
}

func generationFailure(what string, err error) error {
	if errors.Is(err, ErrNotConfigured) {
		return assistant.NewCapabilityError("Gemini model not initialized.")
	}
	return assistant.NewCapabilityError("An error occurred during %s: %v", what, err)
}
