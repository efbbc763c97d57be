// Package mailbox implements the assistant's mailbox port on top of the
// Gmail API.
package mailbox

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"

	"github.com/hal9000y/gmail-assistant/internal/assistant"
	"github.com/hal9000y/gmail-assistant/internal/auth"
	"github.com/hal9000y/gmail-assistant/internal/gservice"
)

type gmailSvc interface {
	Check(ctx context.Context) error
	ListMessages(ctx context.Context, userID string, labelIDs []string, q string, maxResults int64) (*gmail.ListMessagesResponse, error)
	CountMessages(ctx context.Context, userID, q string) (int64, error)
	GetMessageMetadata(ctx context.Context, userID, msgID string) (*gmail.Message, error)
	GetMessage(ctx context.Context, userID, msgID string) (*gmail.Message, error)
	GetLabel(ctx context.Context, userID, labelID string) (*gmail.Label, error)
	GetProfile(ctx context.Context, userID string) (*gmail.Profile, error)
	SendMessage(ctx context.Context, userID string, raw []byte, threadID string) (*gmail.Message, error)
}

type summarizer interface {
	Summarize(ctx context.Context, subject, body string) (string, error)
}

// Config tunes the Gmail queries.
type Config struct {
	// ListMaxResults caps the count accepted by ListRecent.
	ListMaxResults int64
	// SearchMaxResults is the fixed page size of Search.
	SearchMaxResults int64
	// RecentQuery selects the messages counted by RecentCount.
	RecentQuery string
	// Concurrency bounds parallel metadata fetches.
	Concurrency int
}

// DefaultConfig returns the stock query settings.
func DefaultConfig() Config {
	return Config{
		ListMaxResults:   50,
		SearchMaxResults: 5,
		RecentQuery:      "label:inbox newer_than:1d",
		Concurrency:      5,
	}
}

// Service is the Gmail-backed mailbox.
type Service struct {
	svc    gmailSvc
	sum    summarizer
	cfg    Config
	logger *zap.Logger
}

var _ assistant.Mailbox = (*Service)(nil)

// New creates a mailbox. Zero fields of cfg fall back to DefaultConfig.
func New(svc gmailSvc, sum summarizer, cfg Config, logger *zap.Logger) *Service {
	def := DefaultConfig()
	if cfg.ListMaxResults <= 0 {
		cfg.ListMaxResults = def.ListMaxResults
	}
	if cfg.SearchMaxResults <= 0 {
		cfg.SearchMaxResults = def.SearchMaxResults
	}
	if cfg.RecentQuery == "" {
		cfg.RecentQuery = def.RecentQuery
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{svc: svc, sum: sum, cfg: cfg, logger: logger}
}

// Check reports whether Gmail can be called.
func (s *Service) Check(ctx context.Context) error {
	if err := s.svc.Check(ctx); err != nil {
		return fmt.Errorf("svc.Check failed: %w", err)
	}
	return nil
}

// ListRecent returns metadata of the newest inbox messages.
func (s *Service) ListRecent(ctx context.Context, userID string, maxResults int) ([]assistant.EmailSummary, error) {
	n := s.normalizeMaxResults(maxResults)

	result, err := s.svc.ListMessages(ctx, userID, []string{gservice.InboxLabel}, "", n)
	if err != nil {
		return nil, failure("listing emails", err)
	}

	emails, err := s.summaries(ctx, userID, result.Messages)
	if err != nil {
		return nil, failure("listing emails", err)
	}

	return emails, nil
}

// Search returns metadata of messages matching a Gmail query.
func (s *Service) Search(ctx context.Context, query, userID string) ([]assistant.EmailSummary, error) {
	result, err := s.svc.ListMessages(ctx, userID, nil, query, s.cfg.SearchMaxResults)
	if err != nil {
		return nil, failure("searching emails", err)
	}

	emails, err := s.summaries(ctx, userID, result.Messages)
	if err != nil {
		return nil, failure("searching emails", err)
	}

	s.logger.Debug("Search done", zap.String("query", query), zap.Int("found", len(emails)))

	return emails, nil
}

// UnreadCount returns the number of unread inbox messages.
func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	label, err := s.svc.GetLabel(ctx, userID, gservice.InboxLabel)
	if err != nil {
		return 0, failure("getting unread count", err)
	}

	return label.MessagesUnread, nil
}

// RecentCount returns the number of messages matching the recent query,
// a rolling 24 hour window by default.
func (s *Service) RecentCount(ctx context.Context, userID string) (int64, error) {
	n, err := s.svc.CountMessages(ctx, userID, s.cfg.RecentQuery)
	if err != nil {
		return 0, failure("counting today's emails", err)
	}

	return n, nil
}

func (s *Service) normalizeMaxResults(maxResults int) int64 {
	if maxResults <= 0 {
		return assistant.DefaultListCount
	}
	if int64(maxResults) > s.cfg.ListMaxResults {
		return s.cfg.ListMaxResults
	}
	return int64(maxResults)
}

// summaries fetches metadata for refs concurrently, keeping the listing order.
func (s *Service) summaries(ctx context.Context, userID string, refs []*gmail.Message) ([]assistant.EmailSummary, error) {
	emails := make([]assistant.EmailSummary, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, ref := range refs {
		g.Go(func() error {
			msg, err := s.svc.GetMessageMetadata(gctx, userID, ref.Id)
			if err != nil {
				return fmt.Errorf("get message %s failed: %w", ref.Id, err)
			}
			emails[i] = extractSummary(msg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return emails, nil
}

// failure turns a Gmail error into the message shown to the user.
func failure(action string, err error) error {
	var capErr *assistant.CapabilityError
	if errors.As(err, &capErr) {
		return capErr
	}
	if errors.Is(err, auth.ErrTokenNotSet) {
		return assistant.NewCapabilityError("Failed to get Gmail service.")
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return assistant.NewCapabilityError("An API error occurred %s: %v", action, apiErr)
	}

	return assistant.NewCapabilityError("An unexpected error occurred %s: %v", action, err)
}
