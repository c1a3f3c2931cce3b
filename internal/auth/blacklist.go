package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist tracks revoked session tokens (by jti) until their natural
// expiry. Logout is the only writer.
type TokenBlacklist interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

type RedisBlacklist struct {
	client *redis.Client
}

func NewRedisBlacklist(client *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{client: client}
}

func (r *RedisBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	exists, err := r.client.Exists(ctx, "shopguard:revoked:"+jti).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

func (r *RedisBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return r.client.Set(ctx, "shopguard:revoked:"+jti, "revoked", ttl).Err()
}

// MemoryBlacklist backs single-node deployments without Redis. Entries are
// pruned lazily on lookup.
type MemoryBlacklist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{revoked: make(map[string]time.Time)}
}

func (m *MemoryBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	until, ok := m.revoked[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(until) {
		delete(m.revoked, jti)
		return false, nil
	}
	return true, nil
}

func (m *MemoryBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	m.revoked[jti] = time.Now().Add(ttl)
	m.mu.Unlock()
	return nil
}
