package mailbox

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/jhillyerd/enmime"
	"go.uber.org/zap"

	"github.com/hal9000y/gmail-assistant/internal/assistant"
)

// SendReply composes a plain text reply carrying In-Reply-To and References
// and sends it into the original thread. A sender of "me" or "" resolves to
// the account address.
func (s *Service) SendReply(ctx context.Context, msg assistant.ReplyMessage) (string, error) {
	sender := strings.TrimSpace(msg.Sender)
	if sender == "" || sender == assistant.DefaultUserID {
		profile, err := s.svc.GetProfile(ctx, msg.UserID)
		if err != nil {
			return "", failure("sending the reply", err)
		}
		sender = profile.EmailAddress
		if sender == "" {
			return "", assistant.NewCapabilityError("Could not determine sender email address from profile.")
		}
	}

	raw, err := composeReply(sender, msg)
	if err != nil {
		return "", assistant.NewCapabilityError("An unexpected error occurred sending the reply: %v", err)
	}

	sent, err := s.svc.SendMessage(ctx, msg.UserID, raw, msg.ThreadID)
	if err != nil {
		return "", failure("sending the reply", err)
	}

	s.logger.Info("Reply sent", zap.String("id", sent.Id), zap.String("thread_id", msg.ThreadID))

	return sent.Id, nil
}

func composeReply(sender string, msg assistant.ReplyMessage) ([]byte, error) {
	refs := strings.TrimSpace(msg.References)
	if refs == "" {
		refs = msg.OriginalMessageID
	}

	part, err := enmime.Builder().
		From("", sender).
		To("", msg.To).
		Subject(msg.Subject).
		Header("In-Reply-To", msg.OriginalMessageID).
		Header("References", refs).
		Text([]byte(msg.Body)).
		Build()
	if err != nil {
		return nil, fmt.Errorf("enmime.Build failed: %w", err)
	}

	var buf bytes.Buffer
	if err := part.Encode(&buf); err != nil {
		return nil, fmt.Errorf("part.Encode failed: %w", err)
	}

	return buf.Bytes(), nil
}
