package memory

import (
	"context"
	"sync"

	"quizlive-service/internal/domain"
)

// SessionStore is the in-memory implementation of app.SessionRepository.
// Responses are append-only.
type SessionStore struct {
	mu        sync.RWMutex
	sessions  map[string]domain.Session
	codes     map[string]string
	responses map[string][]domain.Response
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions:  make(map[string]domain.Session),
		codes:     make(map[string]string),
		responses: make(map[string][]domain.Response),
	}
}

func (s *SessionStore) CreateSession(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.codes[session.Code]; taken {
		return domain.ErrCodeInUse
	}
	s.sessions[session.ID] = session
	s.codes[session.Code] = session.ID
	return nil
}

func (s *SessionStore) GetSession(_ context.Context, id string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionStore) GetSessionByCode(ctx context.Context, code string) (domain.Session, error) {
	s.mu.RLock()
	id, ok := s.codes[code]
	s.mu.RUnlock()
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return s.GetSession(ctx, id)
}

func (s *SessionStore) UpdateSession(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; !ok {
		return domain.ErrSessionNotFound
	}
	s.sessions[session.ID] = session
	return nil
}

func (s *SessionStore) CreateResponse(_ context.Context, response domain.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[response.SessionID] = append(s.responses[response.SessionID], response)
	return nil
}

func (s *SessionStore) ResponsesBySession(_ context.Context, sessionID string) ([]domain.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.responses[sessionID]
	out := make([]domain.Response, len(stored))
	copy(out, stored)
	return out, nil
}
