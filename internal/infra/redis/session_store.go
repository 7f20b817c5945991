package redis

import (
	"context"
	"sync"
	"time"

	"chat-trivia-service/internal/quiz"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Sessions stay in a local map because the state machine lives in-process;
// Redis only carries a liveness marker per open session.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*quiz.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*quiz.Session),
	}
}

func (s *SessionStore) Put(id string, session *quiz.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(id), "1", s.ttl).Err()
}

func (s *SessionStore) Get(id string) (*quiz.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return
	}
	delete(s.sessions, id)
	_ = s.client.Del(context.Background(), s.key(id)).Err()
}

func (s *SessionStore) key(id string) string {
	return "trivia:session:" + id
}
