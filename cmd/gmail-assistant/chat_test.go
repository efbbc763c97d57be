package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runnerMock struct {
	handled []string
	resets  []string
	next    int
}

func (m *runnerMock) Handle(_ context.Context, sessionID, message string) (string, string) {
	if sessionID == "" {
		m.next++
		sessionID = strings.Repeat("s", m.next)
	}
	m.handled = append(m.handled, sessionID+":"+message)
	return sessionID, "reply to " + message
}

func (m *runnerMock) Reset(sessionID string) {
	m.resets = append(m.resets, sessionID)
}

func TestREPL(t *testing.T) {
	in := strings.NewReader("list my emails\n\n  summarize that  \n/reset\nhello\n/exit\nignored\n")
	var out bytes.Buffer
	chat := &runnerMock{}

	require.NoError(t, repl(context.Background(), chat, in, &out))

	assert.Equal(t, []string{"s:list my emails", "s:summarize that", "ss:hello"}, chat.handled)
	assert.Equal(t, []string{"s"}, chat.resets)
	assert.Contains(t, out.String(), "reply to list my emails\n")
	assert.Contains(t, out.String(), "Conversation reset.\n")
	assert.NotContains(t, out.String(), "ignored")
}

func TestREPLEndOfInput(t *testing.T) {
	var out bytes.Buffer
	chat := &runnerMock{}

	require.NoError(t, repl(context.Background(), chat, strings.NewReader("hi"), &out))

	assert.Equal(t, []string{"s:hi"}, chat.handled)
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()

	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "chat")

	for _, f := range []string{"config", "env-file", "log-file", "http-addr", "oauth-url"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(f), f)
	}
}
