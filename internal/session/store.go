// Package session tracks which actor a browser session speaks for. The
// HTTP boundary turns a session token into an explicit actor value passed
// into every mutating engine call; nothing downstream reads ambient state.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long an actor session stays valid without renewal.
const DefaultTTL = 12 * time.Hour

// Store persists session-token-to-actor bindings.
type Store interface {
	// Set binds token to actor for ttl.
	Set(ctx context.Context, token, actor string, ttl time.Duration) error
	// Get returns the actor bound to token, or "" when the token is
	// unknown or expired.
	Get(ctx context.Context, token string) (string, error)
	// Delete drops the binding.
	Delete(ctx context.Context, token string) error
}

// NewToken returns a fresh opaque session token.
func NewToken() string {
	return uuid.NewString()
}

// RedisStore keeps sessions in redis so they survive restarts and are
// shared between replicas.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a redis-backed session store.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "labreserve:session:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Set(ctx context.Context, token, actor string, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+token, actor, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, token string) (string, error) {
	actor, err := s.client.Get(ctx, s.prefix+token).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return actor, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.prefix+token).Err()
}

type memoryEntry struct {
	actor   string
	expires time.Time
}

// MemoryStore is the fallback when no redis address is configured. Expiry
// is enforced lazily on read.
type MemoryStore struct {
	mu  sync.RWMutex
	m   map[string]memoryEntry
	now func() time.Time
}

// NewMemoryStore creates an in-process session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Set(_ context.Context, token, actor string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[token] = memoryEntry{actor: actor, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, token string) (string, error) {
	s.mu.RLock()
	entry, ok := s.m[token]
	s.mu.RUnlock()
	if !ok {
		return "", nil
	}
	if s.now().After(entry.expires) {
		s.mu.Lock()
		delete(s.m, token)
		s.mu.Unlock()
		return "", nil
	}
	return entry.actor, nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, token)
	return nil
}
