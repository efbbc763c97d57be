package assistant

import (
	"context"
)

// EmailSummary is a listing entry. It carries no body and no threading
// headers. Textual defaults for absent headers are the provider's job.
type EmailSummary struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
	Subject  string `json:"subject"`
	From     string `json:"from"`
	Date     string `json:"date"`
}

// EmailFull is a fully fetched message with body, threading metadata and
// the generated summary.
type EmailFull struct {
	EmailSummary

	OriginalBody      string `json:"originalBody"`
	SenderEmail       string `json:"senderEmail"`
	OriginalMessageID string `json:"originalMessageId"`
	References        string `json:"references"`
	Summary           string `json:"summary"`
}

// ReplyMessage describes a threaded reply ready to be sent.
type ReplyMessage struct {
	UserID            string
	To                string
	Sender            string
	Subject           string
	Body              string
	ThreadID          string
	OriginalMessageID string
	References        string
}

// Checker reports whether a backend is ready to serve requests.
type Checker interface {
	Check(ctx context.Context) error
}

// Mailbox is the mailbox capability port. Expected failures are returned
// as *CapabilityError.
type Mailbox interface {
	Checker
	ListRecent(ctx context.Context, userID string, maxResults int) ([]EmailSummary, error)
	Search(ctx context.Context, query, userID string) ([]EmailSummary, error)
	FetchAndSummarize(ctx context.Context, userID, emailID string) (EmailFull, error)
	SendReply(ctx context.Context, msg ReplyMessage) (messageID string, err error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	RecentCount(ctx context.Context, userID string) (int64, error)
}

// ReplyWriter drafts reply bodies. Expected failures are returned as
// *CapabilityError.
type ReplyWriter interface {
	GenerateReply(ctx context.Context, subject, body, instructions string) (string, error)
}

// Oracle answers a controller prompt with free text.
type Oracle interface {
	Checker
	Complete(ctx context.Context, prompt string) (string, error)
}
