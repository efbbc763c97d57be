package tool_test

import (
	"context"

	"github.com/hal9000y/gmail-assistant/internal/assistant"
)

type mailboxMock struct {
	CheckFunc             func(ctx context.Context) error
	ListRecentFunc        func(ctx context.Context, userID string, maxResults int) ([]assistant.EmailSummary, error)
	SearchFunc            func(ctx context.Context, query, userID string) ([]assistant.EmailSummary, error)
	FetchAndSummarizeFunc func(ctx context.Context, userID, emailID string) (assistant.EmailFull, error)
	SendReplyFunc         func(ctx context.Context, msg assistant.ReplyMessage) (string, error)
	UnreadCountFunc       func(ctx context.Context, userID string) (int64, error)
	RecentCountFunc       func(ctx context.Context, userID string) (int64, error)
}

func (m *mailboxMock) Check(ctx context.Context) error {
	if m.CheckFunc == nil {
		return nil
	}
	return m.CheckFunc(ctx)
}

func (m *mailboxMock) ListRecent(ctx context.Context, userID string, maxResults int) ([]assistant.EmailSummary, error) {
	return m.ListRecentFunc(ctx, userID, maxResults)
}

func (m *mailboxMock) Search(ctx context.Context, query, userID string) ([]assistant.EmailSummary, error) {
	return m.SearchFunc(ctx, query, userID)
}

func (m *mailboxMock) FetchAndSummarize(ctx context.Context, userID, emailID string) (assistant.EmailFull, error) {
	return m.FetchAndSummarizeFunc(ctx, userID, emailID)
}

func (m *mailboxMock) SendReply(ctx context.Context, msg assistant.ReplyMessage) (string, error) {
	return m.SendReplyFunc(ctx, msg)
}

func (m *mailboxMock) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return m.UnreadCountFunc(ctx, userID)
}

func (m *mailboxMock) RecentCount(ctx context.Context, userID string) (int64, error) {
	return m.RecentCountFunc(ctx, userID)
}

type writerMock struct {
	GenerateReplyFunc func(ctx context.Context, subject, body, instructions string) (string, error)
}

func (m *writerMock) GenerateReply(ctx context.Context, subject, body, instructions string) (string, error) {
	return m.GenerateReplyFunc(ctx, subject, body, instructions)
}

type chatMock struct {
	HandleFunc func(ctx context.Context, sessionID, message string) (string, string)
}

func (m *chatMock) Handle(ctx context.Context, sessionID, message string) (string, string) {
	return m.HandleFunc(ctx, sessionID, message)
}
