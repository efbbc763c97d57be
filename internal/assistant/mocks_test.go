package assistant_test

import (
	"context"
	"sync"

	"github.com/hal9000y/gmail-assistant/internal/assistant"
)

type mailboxMock struct {
	mu    sync.Mutex
	calls []string

	CheckFunc             func(ctx context.Context) error
	ListRecentFunc        func(ctx context.Context, userID string, maxResults int) ([]assistant.EmailSummary, error)
	SearchFunc            func(ctx context.Context, query, userID string) ([]assistant.EmailSummary, error)
	FetchAndSummarizeFunc func(ctx context.Context, userID, emailID string) (assistant.EmailFull, error)
	SendReplyFunc         func(ctx context.Context, msg assistant.ReplyMessage) (string, error)
	UnreadCountFunc       func(ctx context.Context, userID string) (int64, error)
	RecentCountFunc       func(ctx context.Context, userID string) (int64, error)
}

func (m *mailboxMock) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

// Calls returns the port operations invoked so far, Check excluded.
func (m *mailboxMock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mailboxMock) Check(ctx context.Context) error {
	if m.CheckFunc == nil {
		return nil
	}
	return m.CheckFunc(ctx)
}

func (m *mailboxMock) ListRecent(ctx context.Context, userID string, maxResults int) ([]assistant.EmailSummary, error) {
	m.record("ListRecent")
	if m.ListRecentFunc == nil {
		panic("mailboxMock.ListRecentFunc: method is nil but ListRecent was just called")
	}
	return m.ListRecentFunc(ctx, userID, maxResults)
}

func (m *mailboxMock) Search(ctx context.Context, query, userID string) ([]assistant.EmailSummary, error) {
	m.record("Search")
	if m.SearchFunc == nil {
		panic("mailboxMock.SearchFunc: method is nil but Search was just called")
	}
	return m.SearchFunc(ctx, query, userID)
}

func (m *mailboxMock) FetchAndSummarize(ctx context.Context, userID, emailID string) (assistant.EmailFull, error) {
	m.record("FetchAndSummarize")
	if m.FetchAndSummarizeFunc == nil {
		panic("mailboxMock.FetchAndSummarizeFunc: method is nil but FetchAndSummarize was just called")
	}
	return m.FetchAndSummarizeFunc(ctx, userID, emailID)
}

func (m *mailboxMock) SendReply(ctx context.Context, msg assistant.ReplyMessage) (string, error) {
	m.record("SendReply")
	if m.SendReplyFunc == nil {
		panic("mailboxMock.SendReplyFunc: method is nil but SendReply was just called")
	}
	return m.SendReplyFunc(ctx, msg)
}

func (m *mailboxMock) UnreadCount(ctx context.Context, userID string) (int64, error) {
	m.record("UnreadCount")
	if m.UnreadCountFunc == nil {
		panic("mailboxMock.UnreadCountFunc: method is nil but UnreadCount was just called")
	}
	return m.UnreadCountFunc(ctx, userID)
}

func (m *mailboxMock) RecentCount(ctx context.Context, userID string) (int64, error) {
	m.record("RecentCount")
	if m.RecentCountFunc == nil {
		panic("mailboxMock.RecentCountFunc: method is nil but RecentCount was just called")
	}
	return m.RecentCountFunc(ctx, userID)
}

type writerMock struct {
	mu    sync.Mutex
	calls int

	GenerateReplyFunc func(ctx context.Context, subject, body, instructions string) (string, error)
}

func (w *writerMock) GenerateReply(ctx context.Context, subject, body, instructions string) (string, error) {
	w.mu.Lock()
	w.calls++
	w.mu.Unlock()
	if w.GenerateReplyFunc == nil {
		panic("writerMock.GenerateReplyFunc: method is nil but GenerateReply was just called")
	}
	return w.GenerateReplyFunc(ctx, subject, body, instructions)
}

func (w *writerMock) Calls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls
}

type oracleMock struct {
	mu      sync.Mutex
	prompts []string

	CheckFunc    func(ctx context.Context) error
	CompleteFunc func(ctx context.Context, prompt string) (string, error)
}

func (o *oracleMock) Check(ctx context.Context) error {
	if o.CheckFunc == nil {
		return nil
	}
	return o.CheckFunc(ctx)
}

func (o *oracleMock) Complete(ctx context.Context, prompt string) (string, error) {
	o.mu.Lock()
	o.prompts = append(o.prompts, prompt)
	o.mu.Unlock()
	return o.CompleteFunc(ctx, prompt)
}

func (o *oracleMock) Prompts() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.prompts...)
}

// answers returns an oracle that replies with the given answers in order.
func answers(texts ...string) *oracleMock {
	var mu sync.Mutex
	i := 0
	return &oracleMock{
		CompleteFunc: func(_ context.Context, _ string) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			if i >= len(texts) {
				return `{"intent": "GREETING_OR_OTHER", "parameters": {}}`, nil
			}
			t := texts[i]
			i++
			return t, nil
		},
	}
}

func fullEmail() assistant.EmailFull {
	return assistant.EmailFull{
		EmailSummary: assistant.EmailSummary{
			ID:       "m-001",
			ThreadID: "t-001",
			Subject:  "Project Update",
			From:     "Alice <alice@example.com>",
			Date:     "Mon, 13 Oct 2025 09:00:00 +0000",
		},
		OriginalBody:      "The milestone slipped by a week.",
		SenderEmail:       "alice@example.com",
		OriginalMessageID: "<orig-1@example.com>",
		References:        "<root-0@example.com>",
		Summary:           "Milestone delayed one week.",
	}
}
