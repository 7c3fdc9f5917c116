package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList invalidates issued tokens on logout. Entries expire with
// the token they shadow, so the list never grows past the live sessions.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type redisRevocationList struct {
	client *redis.Client
}

// NewRedisRevocationList stores revoked token IDs in Redis with TTL.
func NewRedisRevocationList(client *redis.Client) RevocationList {
	return &redisRevocationList{client: client}
}

func revocationKey(tokenID string) string {
	return fmt.Sprintf("revoked_token:%s", tokenID)
}

func (l *redisRevocationList) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return l.client.Set(ctx, revocationKey(tokenID), "1", ttl).Err()
}

func (l *redisRevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, err := l.client.Get(ctx, revocationKey(tokenID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type memoryRevocationList struct {
	mu      sync.Mutex
	expires map[string]time.Time
}

// NewMemoryRevocationList keeps revoked token IDs in process memory, for
// deployments without Redis.
func NewMemoryRevocationList() RevocationList {
	return &memoryRevocationList{expires: make(map[string]time.Time)}
}

func (l *memoryRevocationList) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.expires[tokenID] = time.Now().Add(ttl)
	l.sweep()
	return nil
}

func (l *memoryRevocationList) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	expiry, ok := l.expires[tokenID]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(l.expires, tokenID)
		return false, nil
	}
	return true, nil
}

// sweep drops expired entries; called under the lock.
func (l *memoryRevocationList) sweep() {
	now := time.Now()
	for id, expiry := range l.expires {
		if now.After(expiry) {
			delete(l.expires, id)
		}
	}
}
