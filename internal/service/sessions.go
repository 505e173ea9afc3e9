package service

import (
	"dbchat/internal/domain"
	"dbchat/internal/session"
)

// HistorySnapshot returns the ordered turn sequence for a session,
// empty when unknown.
func (s *Service) HistorySnapshot(sessionID string) []domain.Turn {
	return s.store.History(sessionID)
}

// SessionStats reports aggregate session counts.
func (s *Service) SessionStats() session.Stats {
	return s.store.Stats()
}

// ClearSession removes a session and its turns. Idempotent.
func (s *Service) ClearSession(sessionID string) {
	s.store.Clear(sessionID)
}
