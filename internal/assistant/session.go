package assistant

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Role tags one side of the dialogue.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Entry is one message in a session's history. Entries are never
// mutated in place; history is append-only except for front-truncation.
type Entry struct {
	Role    Role
	Content string
}

type session struct {
	entries  []Entry
	lastSeen time.Time
}

// Sessions maps user identity to a bounded conversation history.
// Entirely in-memory: no durability across restarts. Access is guarded
// by a mutex, and idle sessions are evicted by a janitor so the map
// does not grow without bound.
type Sessions struct {
	mu         sync.RWMutex
	sessions   map[string]*session
	maxHistory int
	idleTTL    time.Duration
	logger     *slog.Logger
}

func NewSessions(maxHistory int, idleTTL time.Duration, logger *slog.Logger) *Sessions {
	if maxHistory < 2 {
		maxHistory = 20
	}
	if idleTTL <= 0 {
		idleTTL = 2 * time.Hour
	}
	return &Sessions{
		sessions:   make(map[string]*session),
		maxHistory: maxHistory,
		idleTTL:    idleTTL,
		logger:     logger.With("component", "sessions"),
	}
}

// History returns a copy of the user's history, empty for unknown users.
func (s *Sessions) History(userID string) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return nil
	}
	out := make([]Entry, len(sess.entries))
	copy(out, sess.entries)
	return out
}

// Append adds one entry to the user's history, creating the session
// lazily on first use.
func (s *Sessions) Append(userID string, role Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		sess = &session{}
		s.sessions[userID] = sess
	}
	sess.entries = append(sess.entries, Entry{Role: role, Content: content})
	sess.lastSeen = time.Now()
}

// Truncate keeps only the most recent maxLen entries.
func (s *Sessions) Truncate(userID string, maxLen int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok || len(sess.entries) <= maxLen {
		return
	}
	sess.entries = sess.entries[len(sess.entries)-maxLen:]
}

// Clear removes the session entirely. Clearing a nonexistent session is
// a no-op.
func (s *Sessions) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Len reports the current history length for a user.
func (s *Sessions) Len(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[userID]; ok {
		return len(sess.entries)
	}
	return 0
}

// MaxHistory is the configured per-session history cap.
func (s *Sessions) MaxHistory() int { return s.maxHistory }

// StartJanitor sweeps idle sessions until ctx is cancelled.
func (s *Sessions) StartJanitor(ctx context.Context) {
	interval := s.idleTTL / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evictIdle(time.Now())
		}
	}
}

func (s *Sessions) evictIdle(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.idleTTL {
			delete(s.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		s.logger.Info("idle sessions evicted", "count", evicted, "remaining", len(s.sessions))
	}
}
