package mailbox_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/jhillyerd/enmime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/gmail-assistant/internal/assistant"
	"github.com/hal9000y/gmail-assistant/internal/mailbox"
)

func replyMessage() assistant.ReplyMessage {
	return assistant.ReplyMessage{
		UserID:            "me",
		To:                "alice@example.com",
		Sender:            "me",
		Subject:           "Re: Project Update",
		Body:              "Thanks for letting me know.",
		ThreadID:          "t-001",
		OriginalMessageID: "<orig-1@example.com>",
		References:        "<root-0@example.com> <orig-1@example.com>",
	}
}

func TestSendReply(t *testing.T) {
	var raw []byte
	svc := &gmailSvcMock{
		GetProfileFunc: func(_ context.Context, userID string) (*gmail.Profile, error) {
			assert.Equal(t, "me", userID)
			return &gmail.Profile{EmailAddress: "me@example.com"}, nil
		},
		SendMessageFunc: func(_ context.Context, userID string, r []byte, threadID string) (*gmail.Message, error) {
			assert.Equal(t, "me", userID)
			assert.Equal(t, "t-001", threadID)
			raw = r
			return &gmail.Message{Id: "sent-777"}, nil
		},
	}
	m := mailbox.New(svc, &summarizerMock{}, mailbox.Config{}, zaptest.NewLogger(t))

	id, err := m.SendReply(context.Background(), replyMessage())
	require.NoError(t, err)
	assert.Equal(t, "sent-777", id)

	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "Re: Project Update", env.GetHeader("Subject"))
	assert.Contains(t, env.GetHeader("From"), "me@example.com")
	assert.Contains(t, env.GetHeader("To"), "alice@example.com")
	assert.Equal(t, "<orig-1@example.com>", env.GetHeader("In-Reply-To"))
	assert.Equal(t, "<root-0@example.com> <orig-1@example.com>", env.GetHeader("References"))
	assert.Equal(t, "Thanks for letting me know.", strings.TrimSpace(env.Text))
}

func TestSendReplyExplicitSenderAndMissingReferences(t *testing.T) {
	var raw []byte
	svc := &gmailSvcMock{
		SendMessageFunc: func(_ context.Context, _ string, r []byte, _ string) (*gmail.Message, error) {
			raw = r
			return &gmail.Message{Id: "sent-1"}, nil
		},
	}
	m := mailbox.New(svc, &summarizerMock{}, mailbox.Config{}, zaptest.NewLogger(t))

	msg := replyMessage()
	msg.Sender = "bob@example.com"
	msg.References = ""

	_, err := m.SendReply(context.Background(), msg)
	require.NoError(t, err)

	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Contains(t, env.GetHeader("From"), "bob@example.com")
	assert.Equal(t, "<orig-1@example.com>", env.GetHeader("References"))
}

func TestSendReplyProfileWithoutAddress(t *testing.T) {
	svc := &gmailSvcMock{
		GetProfileFunc: func(context.Context, string) (*gmail.Profile, error) {
			return &gmail.Profile{}, nil
		},
	}
	m := mailbox.New(svc, &summarizerMock{}, mailbox.Config{}, zaptest.NewLogger(t))

	_, err := m.SendReply(context.Background(), replyMessage())

	var capErr *assistant.CapabilityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, "Could not determine sender email address from profile.", capErr.Message)
}
