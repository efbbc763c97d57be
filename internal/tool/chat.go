package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewChat creates the conversational tool.
func NewChat(chat chatter) *Chat {
	return &Chat{chat: chat}
}

// Chat forwards a message to the assistant session it names.
type Chat struct {
	chat chatter
}

func (t *Chat) Chat(ctx context.Context, _ *mcp.CallToolRequest, input ChatRequest) (*mcp.CallToolResult, ChatResponse, error) {
	id, reply := t.chat.Handle(ctx, input.SessionID, input.Message)
	return nil, ChatResponse{SessionID: id, Reply: reply}, nil
}
