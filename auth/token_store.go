package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/librarium/librarium/core"
)

const redisTokenKeyPrefix = "librarium:token:"

// RedisTokenStore keeps the token allowlist in Redis, sharing revocation
// state across service instances. Entries expire with the token TTL.
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore creates a TokenStore backed by the given Redis client.
func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

// Save stores a token id with the token's TTL.
func (s *RedisTokenStore) Save(ctx context.Context, tokenID string, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, redisTokenKeyPrefix+tokenID, userID, ttl).Err(); err != nil {
		return fmt.Errorf("%w: saving token: %w", core.ErrUnavailable, err)
	}

	return nil
}

// Lookup returns the user id a token was issued for.
func (s *RedisTokenStore) Lookup(ctx context.Context, tokenID string) (string, error) {
	userID, err := s.client.Get(ctx, redisTokenKeyPrefix+tokenID).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: unknown token", core.ErrUnauthorized)
	}

	if err != nil {
		return "", fmt.Errorf("%w: looking up token: %w", core.ErrUnavailable, err)
	}

	return userID, nil
}

// Revoke removes a token id.
func (s *RedisTokenStore) Revoke(ctx context.Context, tokenID string) error {
	if err := s.client.Del(ctx, redisTokenKeyPrefix+tokenID).Err(); err != nil {
		return fmt.Errorf("%w: revoking token: %w", core.ErrUnavailable, err)
	}

	return nil
}

// MemoryTokenStore keeps the token allowlist in process memory. It serves
// single-instance deployments and the tests.
type MemoryTokenStore struct {
	mu      sync.Mutex
	entries map[string]memoryTokenEntry
	now     func() time.Time
}

type memoryTokenEntry struct {
	userID    string
	expiresAt time.Time
}

// NewMemoryTokenStore creates an empty in-memory TokenStore.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		entries: make(map[string]memoryTokenEntry),
		now:     time.Now,
	}
}

// Save stores a token id with the token's TTL.
func (s *MemoryTokenStore) Save(_ context.Context, tokenID string, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[tokenID] = memoryTokenEntry{
		userID:    userID,
		expiresAt: s.now().Add(ttl),
	}

	return nil
}

// Lookup returns the user id a token was issued for.
func (s *MemoryTokenStore) Lookup(_ context.Context, tokenID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[tokenID]
	if !ok || s.now().After(entry.expiresAt) {
		delete(s.entries, tokenID)
		return "", fmt.Errorf("%w: unknown token", core.ErrUnauthorized)
	}

	return entry.userID, nil
}

// Revoke removes a token id.
func (s *MemoryTokenStore) Revoke(_ context.Context, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, tokenID)

	return nil
}
