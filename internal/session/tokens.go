package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/storefront/pkg/config"
	redisclient "github.com/angelmondragon/storefront/pkg/redis"
	redislib "github.com/redis/go-redis/v9"
)

var ErrSessionRequired = errors.New("session id is required")

// Vault remembers the bearer token of a signed-in shopper against their session id.
type Vault interface {
	Bind(ctx context.Context, sessionID, token string) error
	Lookup(ctx context.Context, sessionID string) (string, error)
	Revoke(ctx context.Context, sessionID string) error
}

type tokenStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type tokenKeyer interface {
	AuthSessionKey(sessionID string) string
}

// RedisVault keeps tokens in redis so every storefront instance sees the login.
type RedisVault struct {
	store tokenStore
	keyer tokenKeyer
	ttl   time.Duration
}

func NewRedisVault(client *redisclient.Client, cfg config.SessionConfig) (*RedisVault, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if cfg.AuthTTL <= 0 {
		return nil, fmt.Errorf("auth ttl must be positive")
	}
	return &RedisVault{store: client, keyer: client, ttl: cfg.AuthTTL}, nil
}

func (v *RedisVault) Bind(ctx context.Context, sessionID, token string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrSessionRequired
	}
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("token is required")
	}
	return v.store.Set(ctx, v.keyer.AuthSessionKey(sessionID), token, v.ttl)
}

// Lookup returns "" when the session has no bound token.
func (v *RedisVault) Lookup(ctx context.Context, sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", nil
	}
	token, err := v.store.Get(ctx, v.keyer.AuthSessionKey(sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return "", nil
		}
		return "", err
	}
	return token, nil
}

func (v *RedisVault) Revoke(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrSessionRequired
	}
	return v.store.Del(ctx, v.keyer.AuthSessionKey(sessionID))
}

// MemoryVault is the single-instance fallback used when redis is not configured.
type MemoryVault struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

func NewMemoryVault(ttl time.Duration) *MemoryVault {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryVault{entries: map[string]memoryEntry{}, ttl: ttl, now: time.Now}
}

func (v *MemoryVault) Bind(_ context.Context, sessionID, token string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrSessionRequired
	}
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("token is required")
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.entries[sessionID] = memoryEntry{token: token, expiresAt: v.now().Add(v.ttl)}
	return nil
}

func (v *MemoryVault) Lookup(_ context.Context, sessionID string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	entry, ok := v.entries[sessionID]
	if !ok {
		return "", nil
	}
	if !v.now().Before(entry.expiresAt) {
		delete(v.entries, sessionID)
		return "", nil
	}
	return entry.token, nil
}

func (v *MemoryVault) Revoke(_ context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrSessionRequired
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.entries, sessionID)
	return nil
}
