package assistant

import (
	"context"
	"fmt"
	"strings"
)

// Turn is one completed exchange of the conversation.
type Turn struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

const controllerInstructions = `You are the controller for a Gmail assistant. Analyze the user's message and determine the primary intent and necessary parameters based on the conversation history.

Available intents and their parameters:
- LIST_RECENT: optional 'count' (integer, default 5) to list the most recent emails in the inbox.
- SEARCH: requires 'query' in Gmail search syntax (e.g. "from:a@b.com subject:hello").
- SUMMARIZE_BY_ID: requires 'email_id'.
- SUMMARIZE_LAST: no parameters; summarizes the email in context (last_email.id).
- GENERATE_REPLY: 'reply_instructions' (what the user wants to say); needs a summarized email in context (last_email.originalBody).
- SEND_REPLY: no parameters; the user confirms sending the drafted reply (last_reply_draft and last_email required).
- GET_UNREAD_COUNT: no parameters.
- GET_TODAY_EMAIL_COUNT: no parameters.
- GREETING_OR_OTHER: the message is a greeting, unclear, or outside these capabilities.`

const controllerOutputRules = `Based ONLY on the current user message and the current context, determine the single most likely intent and extract its parameters.
Output your decision STRICTLY as one JSON object with the keys "intent" (string) and "parameters" (object). Use {} when no parameters apply.

Examples:
"list my last 3 emails" -> {"intent": "LIST_RECENT", "parameters": {"count": 3}}
"search for emails from test@test.com" -> {"intent": "SEARCH", "parameters": {"query": "from:test@test.com"}}
"summarize email with id 123" -> {"intent": "SUMMARIZE_BY_ID", "parameters": {"email_id": "123"}}
"summarize that" -> {"intent": "SUMMARIZE_LAST", "parameters": {}}
"draft a reply saying thanks" -> {"intent": "GENERATE_REPLY", "parameters": {"reply_instructions": "saying thanks"}}
"yes send it" -> {"intent": "SEND_REPLY", "parameters": {}}
"how many unread emails do I have" -> {"intent": "GET_UNREAD_COUNT", "parameters": {}}
"how many emails today" -> {"intent": "GET_TODAY_EMAIL_COUNT", "parameters": {}}
"hello there" -> {"intent": "GREETING_OR_OTHER", "parameters": {}}

JSON Response:`

// Classifier turns a user message into a Decision by asking the oracle.
type Classifier struct {
	oracle Oracle
}

// NewClassifier creates a Classifier backed by oracle.
func NewClassifier(oracle Oracle) *Classifier {
	return &Classifier{oracle: oracle}
}

// Classify asks the oracle for the intent of message. Oracle failures come
// back as *OracleUnavailableError, undecodable answers as *ClassificationError.
func (c *Classifier) Classify(ctx context.Context, history []Turn, message string, cc *ConversationContext) (Decision, error) {
	prompt := BuildControllerPrompt(history, message, cc)

	answer, err := c.oracle.Complete(ctx, prompt)
	if err != nil {
		return Decision{}, &OracleUnavailableError{Err: fmt.Errorf("oracle.Complete failed: %w", err)}
	}

	return DecodeDecision(answer)
}

// BuildControllerPrompt renders the controller request: instructions,
// transcript, current message and the context snapshot.
func BuildControllerPrompt(history []Turn, message string, cc *ConversationContext) string {
	if cc == nil {
		cc = NewConversationContext()
	}

	var sb strings.Builder
	sb.WriteString(controllerInstructions)
	sb.WriteString("\n\nConversation History:\n")
	if len(history) == 0 {
		sb.WriteString("(none)\n")
	}
	for _, t := range history {
		fmt.Fprintf(&sb, "User: %s\nAssistant: %s\n", t.User, t.Assistant)
	}
	fmt.Fprintf(&sb, "\nCurrent User message: %q\n", message)
	sb.WriteString("\nCurrent Context (JSON):\n")
	sb.WriteString(cc.Snapshot())
	sb.WriteString("\n\n")
	sb.WriteString(controllerOutputRules)

	return sb.String()
}
