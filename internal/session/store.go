// Package session holds per-conversation state for the lifetime of the
// process. Sessions are owned exclusively by the Store; callers receive
// snapshots, never live references.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"dbchat/internal/domain"
)

// ErrUnknownSession indicates an append to a session that does not exist.
// With the create-or-get discipline this is a server fault, not a user error.
var ErrUnknownSession = errors.New("unknown session")

// DefaultMaxTurns bounds a session's history to the newest N turns.
const DefaultMaxTurns = 100

// Stats is an aggregate snapshot over all live sessions.
type Stats struct {
	ActiveCount int `json:"active_count"`
	TotalTurns  int `json:"total_turns"`
}

// Store is an in-memory session store safe for concurrent use across
// sessions. Within one session the discipline is last-write-wins.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	maxTurns int
}

// NewStore creates an empty store. maxTurns <= 0 selects DefaultMaxTurns.
func NewStore(maxTurns int) *Store {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Store{
		sessions: make(map[string]*domain.Session),
		maxTurns: maxTurns,
	}
}

// CreateOrGet returns a snapshot of the session with the given id,
// creating an empty active session if it is unknown or expired. Known
// active sessions get their last-activity refreshed.
func (s *Store) CreateOrGet(id string) domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	sess, ok := s.sessions[id]
	if !ok || sess.Status != domain.SessionActive {
		sess = &domain.Session{
			SessionID:    id,
			Turns:        []domain.Turn{},
			CreatedAt:    now,
			LastActivity: now,
			Status:       domain.SessionActive,
		}
		s.sessions[id] = sess
	} else {
		sess.LastActivity = now
	}
	return snapshot(sess)
}

// Append adds a turn to the session's log and refreshes last-activity.
func (s *Store) Append(id string, turn domain.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	sess.Turns = append(sess.Turns, turn)
	if len(sess.Turns) > s.maxTurns {
		sess.Turns = sess.Turns[len(sess.Turns)-s.maxTurns:]
	}
	sess.LastActivity = time.Now().UTC()
	return nil
}

// History returns a copy of the session's turns, oldest first. Unknown
// sessions yield an empty slice.
func (s *Store) History(id string) []domain.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return []domain.Turn{}
	}
	turns := make([]domain.Turn, len(sess.Turns))
	copy(turns, sess.Turns)
	return turns
}

// Clear removes the session and all of its turns. Idempotent.
func (s *Store) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Stats reports aggregate counts over the live sessions.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{ActiveCount: len(s.sessions)}
	for _, sess := range s.sessions {
		st.TotalTurns += len(sess.Turns)
	}
	return st
}

// ExpireIdle purges every session whose last activity is older than
// idleTTL and reports how many were removed.
func (s *Store) ExpireIdle(idleTTL time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-idleTTL)
	removed := 0
	for id, sess := range s.sessions {
		if sess.LastActivity.Before(cutoff) {
			sess.Status = domain.SessionExpired
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Close drops all sessions. The store holds nothing durable.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]*domain.Session)
}

func snapshot(sess *domain.Session) domain.Session {
	out := *sess
	out.Turns = make([]domain.Turn, len(sess.Turns))
	copy(out.Turns, sess.Turns)
	return out
}
