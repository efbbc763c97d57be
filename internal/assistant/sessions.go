package assistant

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type turnHandler interface {
	HandleTurn(ctx context.Context, cc *ConversationContext, history []Turn, message string) string
}

type session struct {
	mu      sync.Mutex
	cc      *ConversationContext
	history []Turn

	// guarded by Sessions.mu
	lastUsed time.Time
	busy     int
}

// Sessions keeps one ConversationContext and history per session id and
// runs turns of the same session one at a time.
type Sessions struct {
	handler      turnHandler
	historyLimit int
	ttl          time.Duration
	now          func() time.Time

	mu    sync.Mutex
	items map[string]*session
}

// NewSessions creates a registry. historyLimit <= 0 keeps the whole history,
// ttl <= 0 never expires idle sessions.
func NewSessions(h turnHandler, historyLimit int, ttl time.Duration) *Sessions {
	return &Sessions{
		handler:      h,
		historyLimit: historyLimit,
		ttl:          ttl,
		now:          time.Now,
		items:        make(map[string]*session),
	}
}

// Handle runs one turn in session id. An empty or unknown id starts a new
// session under a freshly minted id; callers cannot choose ids. The id
// actually used is returned with the reply.
func (s *Sessions) Handle(ctx context.Context, id, message string) (string, string) {
	id, sess := s.acquire(id)
	defer s.release(sess)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	reply := s.handler.HandleTurn(ctx, sess.cc, sess.history, message)

	sess.history = append(sess.history, Turn{User: message, Assistant: reply})
	if s.historyLimit > 0 && len(sess.history) > s.historyLimit {
		sess.history = append([]Turn(nil), sess.history[len(sess.history)-s.historyLimit:]...)
	}

	return id, reply
}

// Reset forgets session id.
func (s *Sessions) Reset(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, id)
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	return len(s.items)
}

// Context returns a copy of the context of session id.
func (s *Sessions) Context(id string) (ConversationContext, bool) {
	s.mu.Lock()
	sess, ok := s.items[id]
	s.mu.Unlock()
	if !ok {
		return ConversationContext{}, false
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	cp := *sess.cc
	if cp.LastEmail != nil {
		e := *cp.LastEmail
		cp.LastEmail = &e
	}
	return cp, true
}

func (s *Sessions) acquire(id string) (string, *session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()

	sess, ok := s.items[id]
	if !ok {
		id = uuid.NewString()
		sess = &session{cc: NewConversationContext()}
		s.items[id] = sess
	}
	sess.busy++
	sess.lastUsed = s.now()

	return id, sess
}

func (s *Sessions) release(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.busy--
	sess.lastUsed = s.now()
}

func (s *Sessions) sweepLocked() {
	if s.ttl <= 0 {
		return
	}
	cutoff := s.now().Add(-s.ttl)
	for id, sess := range s.items {
		if sess.busy == 0 && sess.lastUsed.Before(cutoff) {
			delete(s.items, id)
		}
	}
}
