// Package tool exposes the assistant capabilities as MCP tools.
package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/hal9000y/gmail-assistant/internal/assistant"
)

type chatter interface {
	Handle(ctx context.Context, sessionID, message string) (string, string)
}

// NewServer creates an MCP server with the mailbox tools and the chat tool.
func NewServer(mb assistant.Mailbox, writer assistant.ReplyWriter, chat chatter, userID string, logger *zap.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "gmail-assistant", Version: "v1.0.0"}, nil)

	caps := NewCapabilities(mb, writer, userID, logger)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_recent_emails",
		Description: "List metadata of the most recent inbox emails",
	}, caps.ListRecent)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_emails",
		Description: "Search emails using Gmail search syntax, returns at most a few matches",
	}, caps.Search)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "summarize_email",
		Description: "Fetch an email by ID and summarize it, returning the threading data needed to reply",
	}, caps.Summarize)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_reply",
		Description: "Draft a reply body for an email without greeting or closing lines",
	}, caps.GenerateReply)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "send_reply",
		Description: "Send a reply into the thread of the original email",
	}, caps.SendReply)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_unread_count",
		Description: "Count unread emails in the inbox",
	}, caps.UnreadCount)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_today_email_count",
		Description: "Count emails received in the last 24 hours",
	}, caps.TodayCount)

	if chat != nil {
		mcp.AddTool(server, &mcp.Tool{
			Name:        "chat",
			Description: "Talk to the email assistant in natural language; pass session_id back to keep context",
		}, NewChat(chat).Chat)
	}

	return server
}
