package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// User-facing replies that callers and tests match on.
const (
	MsgGreeting             = "Hello! How can I help you with your Gmail today?"
	MsgNoEmails             = "No emails found in your inbox."
	MsgNoSearchMatch        = "No emails found matching your query."
	MsgMissingQuery         = "I understood you want to search, but didn't find any search criteria. Please specify them (e.g. 'from:...' or 'subject:...')."
	MsgMissingEmailID       = "I understood you want to summarize an email by ID, but didn't find an ID. Please provide it."
	MsgNothingToSummarize   = "I don't have a 'last email' in context to summarize. Please search for or specify an email first."
	MsgNeedBodyForReply     = "I need the context of an email (specifically its body) to generate a reply. Please summarize an email first."
	MsgNoDraft              = "There is no reply draft stored in context to send. Please generate one first."
	MsgMissingReplyMetadata = "I'm missing some details from the original email context (like sender, thread ID, or message ID) needed to send the reply. Please summarize the relevant email again."
	MsgConfirmSend          = "Would you like me to send this reply?"
)

// DefaultUserID addresses the authenticated Gmail account.
const DefaultUserID = "me"

// Dispatcher executes a Decision against the capability ports and applies
// the matching context transition.
type Dispatcher struct {
	mailbox Mailbox
	writer  ReplyWriter
	userID  string
}

// NewDispatcher creates a Dispatcher acting on behalf of userID.
func NewDispatcher(mailbox Mailbox, writer ReplyWriter, userID string) *Dispatcher {
	if userID == "" {
		userID = DefaultUserID
	}
	return &Dispatcher{mailbox: mailbox, writer: writer, userID: userID}
}

// Dispatch runs the action for d and returns the reply text. The context is
// only mutated after the port call succeeded. Missing parameters or context
// come back as *PreconditionError; port failures wrap *CapabilityError.
// Params that do not belong to the intent are rejected before any call.
func (d *Dispatcher) Dispatch(ctx context.Context, dec Decision, cc *ConversationContext) (string, error) {
	switch dec.Intent {
	case IntentListRecent:
		p, err := paramsFor[ListRecentParams](dec)
		if err != nil {
			return "", err
		}
		return d.listRecent(ctx, p, cc)
	case IntentSearch:
		p, err := paramsFor[SearchParams](dec)
		if err != nil {
			return "", err
		}
		return d.search(ctx, p, cc)
	case IntentSummarizeByID:
		p, err := paramsFor[SummarizeByIDParams](dec)
		if err != nil {
			return "", err
		}
		if p.EmailID == "" {
			return "", &PreconditionError{Intent: IntentSummarizeByID, Message: MsgMissingEmailID}
		}
		full, err := d.summarize(ctx, p.EmailID, cc)
		if err != nil {
			return "", err
		}
		return "Summary:\n" + full.Summary, nil
	case IntentSummarizeLast:
		if _, err := paramsFor[SummarizeLastParams](dec); err != nil {
			return "", err
		}
		if cc.LastEmail == nil || cc.LastEmail.ID == "" {
			return "", &PreconditionError{Intent: IntentSummarizeLast, Message: MsgNothingToSummarize}
		}
		id := cc.LastEmail.ID
		full, err := d.summarize(ctx, id, cc)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Summary of the last mentioned email (ID: %s):\n%s", id, full.Summary), nil
	case IntentGenerateReply:
		p, err := paramsFor[GenerateReplyParams](dec)
		if err != nil {
			return "", err
		}
		return d.generateReply(ctx, p, cc)
	case IntentSendReply:
		if _, err := paramsFor[SendReplyParams](dec); err != nil {
			return "", err
		}
		return d.sendReply(ctx, cc)
	case IntentGetUnreadCount:
		if _, err := paramsFor[UnreadCountParams](dec); err != nil {
			return "", err
		}
		n, err := d.mailbox.UnreadCount(ctx, d.userID)
		if err != nil {
			return "", portFailure("getting unread count", err)
		}
		return fmt.Sprintf("You have %d unread emails in your inbox.", n), nil
	case IntentGetTodayEmailCount:
		if _, err := paramsFor[TodayCountParams](dec); err != nil {
			return "", err
		}
		n, err := d.mailbox.RecentCount(ctx, d.userID)
		if err != nil {
			return "", portFailure("counting today's emails", err)
		}
		return fmt.Sprintf("You received approximately %d emails in the last 24 hours.", n), nil
	case IntentGreetingOrOther:
		if _, err := paramsFor[GreetingParams](dec); err != nil {
			return "", err
		}
		return MsgGreeting, nil
	}

	return fmt.Sprintf("Sorry, I received an unexpected intent ('%s') from the controller. I don't know how to handle that.", dec.Intent), nil
}

// paramsFor asserts that dec carries the parameter shape of its intent.
func paramsFor[P Params](dec Decision) (P, error) {
	p, ok := dec.Params.(P)
	if !ok {
		var zero P
		return zero, fmt.Errorf("intent %s carries %T parameters, want %T", dec.Intent, dec.Params, zero)
	}
	return p, nil
}

func (d *Dispatcher) listRecent(ctx context.Context, p ListRecentParams, cc *ConversationContext) (string, error) {
	count := p.Count
	if count <= 0 {
		count = DefaultListCount
	}

	emails, err := d.mailbox.ListRecent(ctx, d.userID, count)
	if err != nil {
		return "", portFailure("listing recent emails", err)
	}
	if len(emails) == 0 {
		return MsgNoEmails, nil
	}

	cc.FocusStub(emails[0])

	return fmt.Sprintf("Here are your last %d emails:\n\n%s", len(emails), FormatEmailList(emails)), nil
}

func (d *Dispatcher) search(ctx context.Context, p SearchParams, cc *ConversationContext) (string, error) {
	if p.Query == "" {
		return "", &PreconditionError{Intent: IntentSearch, Message: MsgMissingQuery}
	}

	emails, err := d.mailbox.Search(ctx, p.Query, d.userID)
	if err != nil {
		return "", portFailure("searching emails", err)
	}
	if len(emails) == 0 {
		return MsgNoSearchMatch, nil
	}

	cc.FocusStub(emails[0])

	return "Found emails:\n\n" + FormatEmailList(emails), nil
}

func (d *Dispatcher) summarize(ctx context.Context, emailID string, cc *ConversationContext) (EmailFull, error) {
	full, err := d.mailbox.FetchAndSummarize(ctx, d.userID, emailID)
	if err != nil {
		return EmailFull{}, portFailure("summarizing email "+emailID, err)
	}
	if full.ID == "" {
		full.ID = emailID
	}

	cc.FocusFull(full)

	return full, nil
}

func (d *Dispatcher) generateReply(ctx context.Context, p GenerateReplyParams, cc *ConversationContext) (string, error) {
	if cc.LastEmail == nil || cc.LastEmail.OriginalBody == "" {
		return "", &PreconditionError{Intent: IntentGenerateReply, Message: MsgNeedBodyForReply}
	}

	draft, err := d.writer.GenerateReply(ctx, cc.LastEmail.Subject, cc.LastEmail.OriginalBody, p.Instructions)
	if err != nil {
		return "", portFailure("generating reply draft", err)
	}
	draft = strings.TrimSpace(draft)
	if draft == "" {
		return "", portFailure("generating reply draft", NewCapabilityError("the model returned an empty draft"))
	}

	if err := cc.SetDraft(draft); err != nil {
		return "", fmt.Errorf("cc.SetDraft failed: %w", err)
	}

	return fmt.Sprintf("Draft Reply:\n------\n%s\n------\n\n%s", draft, MsgConfirmSend), nil
}

func (d *Dispatcher) sendReply(ctx context.Context, cc *ConversationContext) (string, error) {
	if !cc.HasDraft() {
		return "", &PreconditionError{Intent: IntentSendReply, Message: MsgNoDraft}
	}
	if missing := cc.MissingReplyFields(); len(missing) > 0 {
		return "", &PreconditionError{Intent: IntentSendReply, Message: MsgMissingReplyMetadata}
	}

	e := cc.LastEmail
	msgID, err := d.mailbox.SendReply(ctx, ReplyMessage{
		UserID:            d.userID,
		To:                e.SenderEmail,
		Sender:            d.userID,
		Subject:           ReplySubject(e.Subject),
		Body:              cc.LastReplyDraft,
		ThreadID:          e.ThreadID,
		OriginalMessageID: e.OriginalMessageID,
		References:        ReplyReferences(e.References, e.OriginalMessageID),
	})
	if err != nil {
		return "", portFailure("sending reply", err)
	}

	cc.ClearDraft()

	return fmt.Sprintf("Reply sent successfully! Message ID: %s", msgID), nil
}

// ReplySubject prefixes "Re: " unless the subject already starts with it
// in any case.
func ReplySubject(subject string) string {
	if len(subject) >= 3 && strings.EqualFold(subject[:3], "re:") {
		return subject
	}
	return "Re: " + subject
}

// ReplyReferences appends the replied-to message id to the existing
// References chain.
func ReplyReferences(references, originalMessageID string) string {
	return strings.TrimSpace(strings.TrimSpace(references) + " " + strings.TrimSpace(originalMessageID))
}

// FormatEmailList renders stubs as blocks separated by "---".
func FormatEmailList(emails []EmailSummary) string {
	blocks := make([]string, 0, len(emails))
	for _, e := range emails {
		blocks = append(blocks, fmt.Sprintf("Subject: %s\n\nFrom: %s\n\nDate: %s\n\nID: %s", e.Subject, e.From, e.Date, e.ID))
	}
	return strings.Join(blocks, "\n\n---\n\n")
}

func portFailure(action string, err error) error {
	var ce *CapabilityError
	if errors.As(err, &ce) {
		return &actionError{action: action, cause: ce}
	}
	return fmt.Errorf("%s: %w", action, err)
}
