package mailbox_test

import (
	"context"
	"encoding/base64"
	"sync"

	"google.golang.org/api/gmail/v1"
)

type gmailSvcMock struct {
	CheckFunc              func(ctx context.Context) error
	ListMessagesFunc       func(ctx context.Context, userID string, labelIDs []string, q string, maxResults int64) (*gmail.ListMessagesResponse, error)
	CountMessagesFunc      func(ctx context.Context, userID, q string) (int64, error)
	GetMessageMetadataFunc func(ctx context.Context, userID, msgID string) (*gmail.Message, error)
	GetMessageFunc         func(ctx context.Context, userID, msgID string) (*gmail.Message, error)
	GetLabelFunc           func(ctx context.Context, userID, labelID string) (*gmail.Label, error)
	GetProfileFunc         func(ctx context.Context, userID string) (*gmail.Profile, error)
	SendMessageFunc        func(ctx context.Context, userID string, raw []byte, threadID string) (*gmail.Message, error)
}

func (m *gmailSvcMock) Check(ctx context.Context) error {
	if m.CheckFunc == nil {
		return nil
	}
	return m.CheckFunc(ctx)
}

func (m *gmailSvcMock) ListMessages(ctx context.Context, userID string, labelIDs []string, q string, maxResults int64) (*gmail.ListMessagesResponse, error) {
	return m.ListMessagesFunc(ctx, userID, labelIDs, q, maxResults)
}

func (m *gmailSvcMock) CountMessages(ctx context.Context, userID, q string) (int64, error) {
	return m.CountMessagesFunc(ctx, userID, q)
}

func (m *gmailSvcMock) GetMessageMetadata(ctx context.Context, userID, msgID string) (*gmail.Message, error) {
	return m.GetMessageMetadataFunc(ctx, userID, msgID)
}

func (m *gmailSvcMock) GetMessage(ctx context.Context, userID, msgID string) (*gmail.Message, error) {
	return m.GetMessageFunc(ctx, userID, msgID)
}

func (m *gmailSvcMock) GetLabel(ctx context.Context, userID, labelID string) (*gmail.Label, error) {
	return m.GetLabelFunc(ctx, userID, labelID)
}

func (m *gmailSvcMock) GetProfile(ctx context.Context, userID string) (*gmail.Profile, error) {
	return m.GetProfileFunc(ctx, userID)
}

func (m *gmailSvcMock) SendMessage(ctx context.Context, userID string, raw []byte, threadID string) (*gmail.Message, error) {
	return m.SendMessageFunc(ctx, userID, raw, threadID)
}

type summarizerMock struct {
	mu       sync.Mutex
	subjects []string
	bodies   []string

	SummarizeFunc func(ctx context.Context, subject, body string) (string, error)
}

func (m *summarizerMock) Summarize(ctx context.Context, subject, body string) (string, error) {
	m.mu.Lock()
	m.subjects = append(m.subjects, subject)
	m.bodies = append(m.bodies, body)
	m.mu.Unlock()
	if m.SummarizeFunc == nil {
		return "summary", nil
	}
	return m.SummarizeFunc(ctx, subject, body)
}

func encode(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func headers(kv ...string) []*gmail.MessagePartHeader {
	hs := make([]*gmail.MessagePartHeader, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		hs = append(hs, &gmail.MessagePartHeader{Name: kv[i], Value: kv[i+1]})
	}
	return hs
}
