package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore is the server-side session registry. A session id is live
// between Create and Revoke (or TTL expiry); a token whose id is no longer
// registered is treated as logged out even if its signature still verifies.
type SessionStore interface {
	Create(ctx context.Context, sessionID string, userID int64, ttl time.Duration) error
	Resolve(ctx context.Context, sessionID string) (int64, bool, error)
	Revoke(ctx context.Context, sessionID string) error
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// redisSessionStore keeps sessions in Redis so logout survives restarts.
type redisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore creates a Redis-backed session registry.
func NewRedisSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

func (s *redisSessionStore) Create(ctx context.Context, sessionID string, userID int64, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionKey(sessionID), userID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (s *redisSessionStore) Resolve(ctx context.Context, sessionID string) (int64, bool, error) {
	userID, err := s.client.Get(ctx, sessionKey(sessionID)).Int64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to resolve session: %w", err)
	}
	return userID, true, nil
}

func (s *redisSessionStore) Revoke(ctx context.Context, sessionID string) error {
	// Del on a missing key is a no-op, which keeps logout idempotent.
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// memorySessionStore is a process-local registry for tests and for running
// without Redis in development.
type memorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
}

type memorySession struct {
	userID    int64
	expiresAt time.Time
}

// NewMemorySessionStore creates an in-process session registry.
func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{sessions: make(map[string]memorySession)}
}

func (s *memorySessionStore) Create(_ context.Context, sessionID string, userID int64, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = memorySession{userID: userID, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *memorySessionStore) Resolve(_ context.Context, sessionID string) (int64, bool, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok || time.Now().After(sess.expiresAt) {
		return 0, false, nil
	}
	return sess.userID, true, nil
}

func (s *memorySessionStore) Revoke(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
