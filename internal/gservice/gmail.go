// Package gservice wraps the Gmail REST API calls the assistant needs.
package gservice

import (
	"context"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// InboxLabel is the system label of the inbox.
const InboxLabel = "INBOX"

type tokenSource interface {
	Ready() error
	TokenSource(ctx context.Context) oauth2.TokenSource
}

// NewGmail creates a Gmail client authenticated through tok. opts are
// passed to every gmail.NewService call after the OAuth HTTP client.
func NewGmail(tok tokenSource, opts ...option.ClientOption) *GMail {
	return &GMail{tok: tok, opts: opts}
}

// GMail issues Gmail API calls with a fresh service per call, so a token
// authorized after startup is picked up without restarting.
type GMail struct {
	tok  tokenSource
	opts []option.ClientOption
}

// Check reports whether an OAuth token is available.
func (m *GMail) Check(_ context.Context) error {
	if err := m.tok.Ready(); err != nil {
		return fmt.Errorf("tok.Ready failed: %w", err)
	}
	return nil
}

func (m *GMail) ListMessages(ctx context.Context, userID string, labelIDs []string, q string, maxResults int64) (*gmail.ListMessagesResponse, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	call := svc.Users.Messages.List(userID).
		MaxResults(maxResults).
		Context(ctx)
	if len(labelIDs) > 0 {
		call = call.LabelIds(labelIDs...)
	}
	if q != "" {
		call = call.Q(q)
	}

	result, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("messages.List failed: %w", err)
	}

	return result, nil
}

// CountMessages pages through every message matching q.
func (m *GMail) CountMessages(ctx context.Context, userID, q string) (int64, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return 0, fmt.Errorf("newSvc failed: %w", err)
	}

	var count int64
	err = svc.Users.Messages.List(userID).
		Q(q).
		MaxResults(500).
		Pages(ctx, func(page *gmail.ListMessagesResponse) error {
			count += int64(len(page.Messages))
			return nil
		})
	if err != nil {
		return 0, fmt.Errorf("messages.List.Pages failed: %w", err)
	}

	return count, nil
}

func (m *GMail) GetMessageMetadata(ctx context.Context, userID, msgID string) (*gmail.Message, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	msg, err := svc.Users.Messages.Get(userID, msgID).
		Format("metadata").
		MetadataHeaders("Subject", "From", "Date").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("messages.Get failed: %w", err)
	}

	return msg, nil
}

func (m *GMail) GetMessage(ctx context.Context, userID, msgID string) (*gmail.Message, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	msg, err := svc.Users.Messages.Get(userID, msgID).
		Format("full").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("messages.Get failed: %w", err)
	}

	return msg, nil
}

func (m *GMail) GetLabel(ctx context.Context, userID, labelID string) (*gmail.Label, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	label, err := svc.Users.Labels.Get(userID, labelID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("labels.Get failed: %w", err)
	}

	return label, nil
}

func (m *GMail) GetProfile(ctx context.Context, userID string) (*gmail.Profile, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	profile, err := svc.Users.GetProfile(userID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("users.GetProfile failed: %w", err)
	}

	return profile, nil
}

// SendMessage posts an RFC 5322 message into threadID.
func (m *GMail) SendMessage(ctx context.Context, userID string, raw []byte, threadID string) (*gmail.Message, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	msg := &gmail.Message{
		Raw:      base64.URLEncoding.EncodeToString(raw),
		ThreadId: threadID,
	}

	sent, err := svc.Users.Messages.Send(userID, msg).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("messages.Send failed: %w", err)
	}

	return sent, nil
}

func (m *GMail) newSvc(ctx context.Context) (*gmail.Service, error) {
	if err := m.tok.Ready(); err != nil {
		return nil, fmt.Errorf("tok.Ready failed: %w", err)
	}

	clt := oauth2.NewClient(ctx, m.tok.TokenSource(ctx))

	opts := append([]option.ClientOption{option.WithHTTPClient(clt)}, m.opts...)
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gmail.NewService failed: %w", err)
	}

	return svc, nil
}
