package mailbox

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/gmail-assistant/internal/assistant"
	"github.com/hal9000y/gmail-assistant/internal/format"
)

// FetchAndSummarize fetches the full message, extracts its body and
// threading headers, and summarizes it. Plain text bodies win over HTML.
func (s *Service) FetchAndSummarize(ctx context.Context, userID, emailID string) (assistant.EmailFull, error) {
	action := "fetching email " + emailID

	msg, err := s.svc.GetMessage(ctx, userID, emailID)
	if err != nil {
		return assistant.EmailFull{}, failure(action, err)
	}

	h := headerOf(msg)
	full := assistant.EmailFull{
		EmailSummary: assistant.EmailSummary{
			ID:       msg.Id,
			ThreadID: msg.ThreadId,
			Subject:  orDefault(subjectOf(h), defaultSubject),
			From:     orDefault(h.Get("From"), defaultSender),
			Date:     orDefault(h.Get("Date"), defaultDate),
		},
		SenderEmail:       senderAddress(h),
		OriginalMessageID: strings.TrimSpace(h.Get("Message-Id")),
		References:        strings.TrimSpace(h.Get("References")),
	}
	if full.ID == "" {
		full.ID = emailID
	}

	body, err := s.body(msg.Payload)
	if err != nil {
		return assistant.EmailFull{}, failure(action, err)
	}
	if body == "" {
		return assistant.EmailFull{}, assistant.NewCapabilityError("Could not extract email body.")
	}
	full.OriginalBody = body

	summary, err := s.sum.Summarize(ctx, full.Subject, body)
	if err != nil {
		var capErr *assistant.CapabilityError
		if errors.As(err, &capErr) {
			return assistant.EmailFull{}, capErr
		}
		return assistant.EmailFull{}, assistant.NewCapabilityError("An unexpected error occurred during summarization: %v", err)
	}
	full.Summary = strings.TrimSpace(summary)

	s.logger.Debug("Email summarized", zap.String("id", full.ID), zap.Int("body_len", len(body)))

	return full, nil
}

func (s *Service) body(payload *gmail.MessagePart) (string, error) {
	if payload == nil {
		return "", nil
	}

	textBody, htmlBody := extractMessageBodies(payload)
	if strings.TrimSpace(textBody) != "" {
		return textBody, nil
	}
	if htmlBody == "" {
		return "", nil
	}

	text, err := format.HTML2Text([]byte(htmlBody))
	if err != nil {
		return "", fmt.Errorf("format.HTML2Text failed: %w", err)
	}

	return text, nil
}
