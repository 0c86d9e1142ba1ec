package core

// sessions.go keeps analyzed uploads in memory between the analyze, convert
// and download steps. Nothing is persisted: a session expires after its TTL
// without access and is removed by the sweeper.

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/catalogconv/internal/tabular"
)

// DefaultSessionTTL is how long an idle session is kept.
const DefaultSessionTTL = 30 * time.Minute

// Session is a snapshot of one conversion session.
type Session struct {
	ID         string
	FileName   string
	Format     tabular.Format
	CreatedAt  time.Time
	LastAccess time.Time

	Source     *SourceTable // Read-only after creation
	Analysis   Analysis
	Conversion *Conversion // Nil until converted
}

// SessionStore is an in-memory, TTL-bounded session map.
type SessionStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session

	// onChange is called with the session count after every change.
	onChange func(n int)
}

// NewSessionStore creates a store whose sessions expire after ttl of
// inactivity. A non-positive ttl selects DefaultSessionTTL.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create stores a new session and returns its id.
func (s *SessionStore) Create(sess Session) string {
	now := s.now()
	sess.ID = uuid.New().String()
	sess.CreatedAt = now
	sess.LastAccess = now

	s.mu.Lock()
	s.sessions[sess.ID] = &sess
	n := len(s.sessions)
	s.mu.Unlock()

	s.notify(n)
	return sess.ID
}

// Get returns a copy of the session and refreshes its access time.
func (s *SessionStore) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || s.expired(sess) {
		return Session{}, ErrSessionNotFound
	}
	sess.LastAccess = s.now()
	return *sess, nil
}

// SetConversion attaches a conversion result to a session.
func (s *SessionStore) SetConversion(id string, conv *Conversion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || s.expired(sess) {
		return ErrSessionNotFound
	}
	sess.Conversion = conv
	sess.LastAccess = s.now()
	return nil
}

// Delete removes a session. Returns false if it did not exist.
func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()

	if ok {
		s.notify(n)
	}
	return ok
}

// Len returns the number of stored sessions, expired or not.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes expired sessions and returns how many were removed.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, id)
			removed++
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	if removed > 0 {
		s.notify(n)
	}
	return removed
}

// StartSweeper removes expired sessions every interval until ctx is done.
func (s *SessionStore) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	slog.Info("session sweeper started", "interval", interval.String(), "ttl", s.ttl.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Info("expired sessions removed", "count", n, "remaining", s.Len())
			}
		}
	}
}

// OnChange registers fn to receive the session count after changes.
func (s *SessionStore) OnChange(fn func(n int)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *SessionStore) notify(n int) {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn(n)
	}
}

func (s *SessionStore) expired(sess *Session) bool {
	return s.now().Sub(sess.LastAccess) > s.ttl
}
