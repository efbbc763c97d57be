package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

const (
	replPrompt   = "> "
	resetCommand = "/reset"
	exitCommand  = "/exit"
)

func newChatCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the assistant in the terminal",
		Long: `Reads one message per line and prints the assistant reply.
Type /reset to forget the conversation and /exit to quit.
The OAuth callback is served on the HTTP address while the REPL runs.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd.Context(), flags, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runChat(parent context.Context, flags *rootFlags, in io.Reader, out io.Writer) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	a, err := newApp(ctx, flags, true)
	if err != nil {
		return err
	}
	defer a.close()

	a.authorizeIfNeeded()

	httpCtx, cancelHTTP := context.WithCancel(ctx)
	httpDone := make(chan error, 1)
	go func() { httpDone <- a.serveHTTP(httpCtx, &http.Server{Handler: a.mux(false)}) }()
	defer func() {
		cancelHTTP()
		<-httpDone
	}()

	fmt.Fprintln(out, "Gmail assistant ready. Type /reset to start over, /exit to quit.")
	return repl(ctx, a.sessions, in, out)
}

type turnRunner interface {
	Handle(ctx context.Context, sessionID, message string) (string, string)
	Reset(sessionID string)
}

func repl(ctx context.Context, chat turnRunner, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	var sessionID string
	for {
		fmt.Fprint(out, replPrompt)

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			line = strings.TrimSpace(l)
		}

		switch strings.ToLower(line) {
		case "":
			continue
		case exitCommand:
			return nil
		case resetCommand:
			if sessionID != "" {
				chat.Reset(sessionID)
			}
			sessionID = ""
			fmt.Fprintln(out, "Conversation reset.")
			continue
		}

		var reply string
		sessionID, reply = chat.Handle(ctx, sessionID, line)
		fmt.Fprintln(out, reply)
	}
}
