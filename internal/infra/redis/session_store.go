package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quizlive-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SessionStore persists sessions in Redis:
//   - session:{id}            JSON-encoded session
//   - session:code:{code}     code to session id index (SETNX enforces uniqueness)
//   - session:{id}:responses  list of JSON-encoded responses, append-only
//
// A TTL keeps abandoned sessions from accumulating; every update refreshes it.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) CreateSession(ctx context.Context, session domain.Session) error {
	ok, err := s.client.SetNX(ctx, s.codeKey(session.Code), session.ID, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("reserve session code: %w", err)
	}
	if !ok {
		return domain.ErrCodeInUse
	}
	return s.writeSession(ctx, session)
}

func (s *SessionStore) GetSession(ctx context.Context, id string) (domain.Session, error) {
	raw, err := s.client.Get(ctx, s.sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return domain.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return session, nil
}

func (s *SessionStore) GetSessionByCode(ctx context.Context, code string) (domain.Session, error) {
	id, err := s.client.Get(ctx, s.codeKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("get session by code: %w", err)
	}
	return s.GetSession(ctx, id)
}

func (s *SessionStore) UpdateSession(ctx context.Context, session domain.Session) error {
	exists, err := s.client.Exists(ctx, s.sessionKey(session.ID)).Result()
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if exists == 0 {
		return domain.ErrSessionNotFound
	}
	return s.writeSession(ctx, session)
}

func (s *SessionStore) CreateResponse(ctx context.Context, response domain.Response) error {
	raw, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	key := s.responsesKey(response.SessionID)
	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, raw)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append response: %w", err)
	}
	return nil
}

func (s *SessionStore) ResponsesBySession(ctx context.Context, sessionID string) ([]domain.Response, error) {
	raws, err := s.client.LRange(ctx, s.responsesKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	responses := make([]domain.Response, 0, len(raws))
	for _, raw := range raws {
		var response domain.Response
		if err := json.Unmarshal([]byte(raw), &response); err != nil {
			return nil, fmt.Errorf("unmarshal response: %w", err)
		}
		responses = append(responses, response)
	}
	return responses, nil
}

func (s *SessionStore) writeSession(ctx context.Context, session domain.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.sessionKey(session.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	// keep the code index alive as long as the session
	if s.ttl > 0 {
		_ = s.client.Expire(ctx, s.codeKey(session.Code), s.ttl).Err()
	}
	return nil
}

func (s *SessionStore) sessionKey(id string) string {
	return "session:" + id
}

func (s *SessionStore) codeKey(code string) string {
	return "session:code:" + code
}

func (s *SessionStore) responsesKey(sessionID string) string {
	return "session:" + sessionID + ":responses"
}
