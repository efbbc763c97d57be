package tool

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/hal9000y/gmail-assistant/internal/assistant"
)

// NewCapabilities creates the mailbox tool handlers. An empty userID
// defaults to "me".
func NewCapabilities(mb assistant.Mailbox, writer assistant.ReplyWriter, userID string, logger *zap.Logger) *Capabilities {
	if userID == "" {
		userID = assistant.DefaultUserID
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Capabilities{mb: mb, writer: writer, userID: userID, logger: logger}
}

// Capabilities maps MCP calls onto the mailbox and reply writer. Every
// handler answers with a status field instead of a tool error.
type Capabilities struct {
	mb     assistant.Mailbox
	writer assistant.ReplyWriter
	userID string
	logger *zap.Logger
}

func (c *Capabilities) ListRecent(ctx context.Context, _ *mcp.CallToolRequest, input ListRecentRequest) (*mcp.CallToolResult, EmailsResponse, error) {
	emails, err := c.mb.ListRecent(ctx, c.user(input.UserID), input.MaxResults)
	if err != nil {
		return nil, EmailsResponse{Status: StatusError, ErrorMessage: c.message("list_recent_emails", err)}, nil
	}

	return nil, EmailsResponse{Status: StatusSuccess, Emails: nonNil(emails)}, nil
}

func (c *Capabilities) Search(ctx context.Context, _ *mcp.CallToolRequest, input SearchRequest) (*mcp.CallToolResult, EmailsResponse, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, EmailsResponse{Status: StatusError, ErrorMessage: "A search query is required."}, nil
	}

	emails, err := c.mb.Search(ctx, input.Query, c.user(input.UserID))
	if err != nil {
		return nil, EmailsResponse{Status: StatusError, ErrorMessage: c.message("search_emails", err)}, nil
	}

	return nil, EmailsResponse{Status: StatusSuccess, Emails: nonNil(emails)}, nil
}

func (c *Capabilities) Summarize(ctx context.Context, _ *mcp.CallToolRequest, input SummarizeRequest) (*mcp.CallToolResult, SummaryResponse, error) {
	if strings.TrimSpace(input.EmailID) == "" {
		return nil, SummaryResponse{Status: StatusError, ErrorMessage: "An email ID is required."}, nil
	}

	full, err := c.mb.FetchAndSummarize(ctx, c.user(input.UserID), input.EmailID)
	if err != nil {
		return nil, SummaryResponse{Status: StatusError, ErrorMessage: c.message("summarize_email", err)}, nil
	}

	return nil, SummaryResponse{
		Status:            StatusSuccess,
		Summary:           full.Summary,
		Subject:           full.Subject,
		OriginalBody:      full.OriginalBody,
		SenderEmail:       full.SenderEmail,
		ThreadID:          full.ThreadID,
		OriginalMessageID: full.OriginalMessageID,
		References:        full.References,
	}, nil
}

func (c *Capabilities) GenerateReply(ctx context.Context, _ *mcp.CallToolRequest, input GenerateReplyRequest) (*mcp.CallToolResult, ReplyDraftResponse, error) {
	draft, err := c.writer.GenerateReply(ctx, input.OriginalSubject, input.OriginalBody, input.Instructions)
	if err != nil {
		return nil, ReplyDraftResponse{Status: StatusError, ErrorMessage: c.message("generate_reply", err)}, nil
	}

	return nil, ReplyDraftResponse{Status: StatusSuccess, ReplyBody: strings.TrimSpace(draft)}, nil
}

func (c *Capabilities) SendReply(ctx context.Context, _ *mcp.CallToolRequest, input SendReplyRequest) (*mcp.CallToolResult, SendReplyResponse, error) {
	var missing []string
	for name, v := range map[string]string{
		"to":                  input.To,
		"subject":             input.Subject,
		"reply_body":          input.ReplyBody,
		"thread_id":           input.ThreadID,
		"original_message_id": input.OriginalMessageID,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, SendReplyResponse{
			Status:       StatusError,
			ErrorMessage: fmt.Sprintf("Missing required fields: %s.", strings.Join(missing, ", ")),
		}, nil
	}

	id, err := c.mb.SendReply(ctx, assistant.ReplyMessage{
		UserID:            c.user(input.UserID),
		To:                input.To,
		Sender:            input.Sender,
		Subject:           input.Subject,
		Body:              input.ReplyBody,
		ThreadID:          input.ThreadID,
		OriginalMessageID: input.OriginalMessageID,
		References:        input.References,
	})
	if err != nil {
		return nil, SendReplyResponse{Status: StatusError, ErrorMessage: c.message("send_reply", err)}, nil
	}

	return nil, SendReplyResponse{Status: StatusSuccess, MessageID: id}, nil
}

func (c *Capabilities) UnreadCount(ctx context.Context, _ *mcp.CallToolRequest, input CountRequest) (*mcp.CallToolResult, CountResponse, error) {
	n, err := c.mb.UnreadCount(ctx, c.user(input.UserID))
	if err != nil {
		return nil, CountResponse{Status: StatusError, ErrorMessage: c.message("get_unread_count", err)}, nil
	}

	return nil, CountResponse{Status: StatusSuccess, Count: &n}, nil
}

func (c *Capabilities) TodayCount(ctx context.Context, _ *mcp.CallToolRequest, input CountRequest) (*mcp.CallToolResult, CountResponse, error) {
	n, err := c.mb.RecentCount(ctx, c.user(input.UserID))
	if err != nil {
		return nil, CountResponse{Status: StatusError, ErrorMessage: c.message("get_today_email_count", err)}, nil
	}

	return nil, CountResponse{Status: StatusSuccess, Count: &n}, nil
}

func (c *Capabilities) user(userID string) string {
	if userID == "" {
		return c.userID
	}
	return userID
}

// message returns the text of a capability failure. Other errors are
// logged and reported generically.
func (c *Capabilities) message(toolName string, err error) string {
	var capErr *assistant.CapabilityError
	if errors.As(err, &capErr) {
		return capErr.Message
	}

	c.logger.Error("Tool failed", zap.String("tool", toolName), zap.Error(err))
	return fmt.Sprintf("An unexpected error occurred: %v", err)
}

func nonNil(emails []assistant.EmailSummary) []assistant.EmailSummary {
	if emails == nil {
		return []assistant.EmailSummary{}
	}
	return emails
}
