package tool

import (
	"github.com/hal9000y/gmail-assistant/internal/assistant"
)

// Wire status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ListRecentRequest selects the newest inbox messages.
type ListRecentRequest struct {
	UserID     string `json:"user_id,omitempty" jsonschema:"mailbox owner, defaults to me"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"number of emails to list, defaults to 5"`
}

// SearchRequest holds a Gmail search query.
type SearchRequest struct {
	Query  string `json:"query" jsonschema:"the Gmail search query"`
	UserID string `json:"user_id,omitempty" jsonschema:"mailbox owner, defaults to me"`
}

// EmailsResponse lists message metadata.
type EmailsResponse struct {
	Status       string                   `json:"status" jsonschema:"success or error"`
	Emails       []assistant.EmailSummary `json:"emails,omitzero" jsonschema:"message metadata"`
	ErrorMessage string                   `json:"error_message,omitempty" jsonschema:"failure description"`
}

// SummarizeRequest names the message to summarize.
type SummarizeRequest struct {
	EmailID string `json:"email_id" jsonschema:"Gmail message ID"`
	UserID  string `json:"user_id,omitempty" jsonschema:"mailbox owner, defaults to me"`
}

// SummaryResponse carries the summary and the threading data needed to reply.
type SummaryResponse struct {
	Status            string `json:"status" jsonschema:"success or error"`
	Summary           string `json:"summary,omitempty" jsonschema:"generated summary"`
	Subject           string `json:"subject,omitempty" jsonschema:"email subject"`
	OriginalBody      string `json:"original_body,omitempty" jsonschema:"extracted body text"`
	SenderEmail       string `json:"sender_email,omitempty" jsonschema:"bare sender address"`
	ThreadID          string `json:"thread_id,omitempty" jsonschema:"thread ID"`
	OriginalMessageID string `json:"original_message_id,omitempty" jsonschema:"Message-ID header"`
	References        string `json:"references,omitempty" jsonschema:"References header"`
	ErrorMessage      string `json:"error_message,omitempty" jsonschema:"failure description"`
}

// GenerateReplyRequest describes the email to answer.
type GenerateReplyRequest struct {
	OriginalSubject string `json:"original_subject" jsonschema:"subject of the email being answered"`
	OriginalBody    string `json:"original_body" jsonschema:"body of the email being answered"`
	Instructions    string `json:"instructions,omitempty" jsonschema:"optional guidance for the reply"`
}

// ReplyDraftResponse carries a generated reply body.
type ReplyDraftResponse struct {
	Status       string `json:"status" jsonschema:"success or error"`
	ReplyBody    string `json:"reply_body,omitempty" jsonschema:"draft reply body"`
	ErrorMessage string `json:"error_message,omitempty" jsonschema:"failure description"`
}

// SendReplyRequest describes a threaded reply.
type SendReplyRequest struct {
	UserID            string `json:"user_id,omitempty" jsonschema:"mailbox owner, defaults to me"`
	To                string `json:"to" jsonschema:"recipient address"`
	Sender            string `json:"sender,omitempty" jsonschema:"sender address, me resolves to the account address"`
	Subject           string `json:"subject" jsonschema:"reply subject"`
	ReplyBody         string `json:"reply_body" jsonschema:"reply body"`
	ThreadID          string `json:"thread_id" jsonschema:"thread to reply into"`
	OriginalMessageID string `json:"original_message_id" jsonschema:"Message-ID of the email being answered"`
	References        string `json:"references,omitempty" jsonschema:"References header value"`
}

// SendReplyResponse carries the sent message ID.
type SendReplyResponse struct {
	Status       string `json:"status" jsonschema:"success or error"`
	MessageID    string `json:"message_id,omitempty" jsonschema:"ID of the sent message"`
	ErrorMessage string `json:"error_message,omitempty" jsonschema:"failure description"`
}

// CountRequest selects the mailbox to count.
type CountRequest struct {
	UserID string `json:"user_id,omitempty" jsonschema:"mailbox owner, defaults to me"`
}

// CountResponse carries a message count.
type CountResponse struct {
	Status       string `json:"status" jsonschema:"success or error"`
	Count        *int64 `json:"count,omitempty" jsonschema:"message count"`
	ErrorMessage string `json:"error_message,omitempty" jsonschema:"failure description"`
}

// ChatRequest is one user message of a conversation.
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"conversation to continue, empty starts a new one"`
	Message   string `json:"message" jsonschema:"the user message"`
}

// ChatResponse is the assistant answer.
type ChatResponse struct {
	SessionID string `json:"session_id" jsonschema:"conversation ID to pass on the next turn"`
	Reply     string `json:"reply" jsonschema:"assistant reply"`
}
