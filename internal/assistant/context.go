package assistant

import (
	"encoding/json"
	"fmt"
	"strings"
)

const snapshotBodyLimit = 1000

// EmailRecord is the email currently being discussed. A record built from
// a listing stub only has ID, ThreadID, Subject, Sender and Date.
type EmailRecord struct {
	ID                string `json:"id,omitempty"`
	ThreadID          string `json:"threadId,omitempty"`
	Subject           string `json:"subject,omitempty"`
	Sender            string `json:"sender,omitempty"`
	SenderEmail       string `json:"senderEmail,omitempty"`
	Date              string `json:"date,omitempty"`
	OriginalBody      string `json:"originalBody,omitempty"`
	Summary           string `json:"summary,omitempty"`
	OriginalMessageID string `json:"originalMessageId,omitempty"`
	References        string `json:"references,omitempty"`
}

// ConversationContext is the per-session memory of which email and which
// draft the conversation is about. It is not safe for concurrent use; the
// owner serializes turns.
type ConversationContext struct {
	LastEmail      *EmailRecord
	LastReplyDraft string
}

// NewConversationContext returns an empty context.
func NewConversationContext() *ConversationContext {
	return &ConversationContext{}
}

// HasDraft reports whether a reply draft is pending.
func (c *ConversationContext) HasDraft() bool {
	return c.LastReplyDraft != ""
}

// FocusStub makes a listing entry the email of interest and drops any draft.
func (c *ConversationContext) FocusStub(s EmailSummary) {
	c.LastEmail = &EmailRecord{
		ID:       s.ID,
		ThreadID: s.ThreadID,
		Subject:  s.Subject,
		Sender:   s.From,
		Date:     s.Date,
	}
	c.LastReplyDraft = ""
}

// FocusFull makes a fully fetched email the email of interest and drops any draft.
func (c *ConversationContext) FocusFull(f EmailFull) {
	c.LastEmail = &EmailRecord{
		ID:                f.ID,
		ThreadID:          f.ThreadID,
		Subject:           f.Subject,
		Sender:            f.From,
		SenderEmail:       f.SenderEmail,
		Date:              f.Date,
		OriginalBody:      f.OriginalBody,
		Summary:           f.Summary,
		OriginalMessageID: f.OriginalMessageID,
		References:        f.References,
	}
	c.LastReplyDraft = ""
}

// SetDraft stores a drafted reply. A draft is only accepted against an
// email whose body was fetched.
func (c *ConversationContext) SetDraft(draft string) error {
	if c.LastEmail == nil || c.LastEmail.OriginalBody == "" {
		return fmt.Errorf("no fully fetched email to attach the draft to")
	}
	c.LastReplyDraft = draft
	return nil
}

// ClearDraft drops the pending draft.
func (c *ConversationContext) ClearDraft() {
	c.LastReplyDraft = ""
}

// Reset empties the context.
func (c *ConversationContext) Reset() {
	c.LastEmail = nil
	c.LastReplyDraft = ""
}

// MissingReplyFields lists the threading fields that sending needs but the
// current email lacks.
func (c *ConversationContext) MissingReplyFields() []string {
	if c.LastEmail == nil {
		return []string{"senderEmail", "subject", "threadId", "originalMessageId"}
	}

	var missing []string
	e := c.LastEmail
	if e.SenderEmail == "" {
		missing = append(missing, "senderEmail")
	}
	if e.Subject == "" {
		missing = append(missing, "subject")
	}
	if e.ThreadID == "" {
		missing = append(missing, "threadId")
	}
	if e.OriginalMessageID == "" {
		missing = append(missing, "originalMessageId")
	}
	return missing
}

type contextSnapshot struct {
	LastEmail      *EmailRecord `json:"last_email"`
	LastReplyDraft *string      `json:"last_reply_draft"`
}

// Snapshot renders the context as indented JSON for the controller prompt.
// Long bodies are cut to keep the prompt bounded.
func (c *ConversationContext) Snapshot() string {
	snap := contextSnapshot{}
	if c.LastEmail != nil {
		e := *c.LastEmail
		e.OriginalBody = truncateRunes(e.OriginalBody, snapshotBodyLimit)
		snap.LastEmail = &e
	}
	if c.HasDraft() {
		d := c.LastReplyDraft
		snap.LastReplyDraft = &d
	}

	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

func truncateRunes(s string, limit int) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return strings.TrimSpace(string(rs[:limit])) + "..."
}
