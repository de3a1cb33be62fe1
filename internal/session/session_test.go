package session

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/storefront/pkg/config"
	redislib "github.com/redis/go-redis/v9"
)

var uuidV4 = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

type mapJar struct {
	values map[string]string
	ttls   map[string]time.Duration
	writes int
}

func newMapJar() *mapJar {
	return &mapJar{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (j *mapJar) Get(name string) (string, bool) {
	v, ok := j.values[name]
	return v, ok
}

func (j *mapJar) Set(name, value string, ttl time.Duration) {
	j.writes++
	j.values[name] = value
	j.ttls[name] = ttl
}

func TestGetOrCreateSessionIDMintsOnce(t *testing.T) {
	resolver := NewResolver(config.SessionConfig{CookieName: "sessionId", TTL: 720 * time.Hour})
	jar := newMapJar()

	first := resolver.GetOrCreateSessionID(jar, "")
	if !uuidV4.MatchString(first) {
		t.Fatalf("expected uuid v4, got %q", first)
	}
	if jar.ttls["sessionId"] != 30*24*time.Hour {
		t.Fatalf("expected 30 day ttl, got %s", jar.ttls["sessionId"])
	}

	second := resolver.GetOrCreateSessionID(jar, "")
	if second != first {
		t.Fatalf("session id changed across calls: %q -> %q", first, second)
	}
	if jar.writes != 1 {
		t.Fatalf("existing id must never be overwritten, writes=%d", jar.writes)
	}
}

func TestGetOrCreateSessionIDWithTokenReturnsNone(t *testing.T) {
	resolver := NewResolver(config.SessionConfig{})
	jar := newMapJar()
	if got := resolver.GetOrCreateSessionID(jar, "tok"); got != "" {
		t.Fatalf("expected empty id for signed-in shopper, got %q", got)
	}
	if jar.writes != 0 {
		t.Fatalf("no cookie should be written for signed-in shopper")
	}
	if resolver.CookieName() != config.DefaultSessionCookie {
		t.Fatalf("unexpected default cookie name %q", resolver.CookieName())
	}
}

func TestHTTPCookiesRoundTrip(t *testing.T) {
	resolver := NewResolver(config.SessionConfig{CookieName: "sessionId", TTL: time.Hour})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	jar := NewHTTPCookies(rec, req, true)
	id := resolver.GetOrCreateSessionID(jar, "")

	if again := resolver.GetOrCreateSessionID(jar, ""); again != id {
		t.Fatalf("same-request lookups should see the new cookie")
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected exactly one Set-Cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != "sessionId" || c.Value != id || !c.HttpOnly || !c.Secure || c.Path != "/" || c.MaxAge != 3600 {
		t.Fatalf("unexpected cookie %+v", c)
	}

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(&http.Cookie{Name: "sessionId", Value: id})
	rec2 := httptest.NewRecorder()
	if got := resolver.GetOrCreateSessionID(NewHTTPCookies(rec2, next, false), ""); got != id {
		t.Fatalf("expected persisted id %q, got %q", id, got)
	}
	if len(rec2.Result().Cookies()) != 0 {
		t.Fatalf("persisted id must not be rewritten")
	}
}

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMockStore() *mockStore {
	return &mockStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) AuthSessionKey(sessionID string) string {
	return "auth:" + sessionID
}

func TestRedisVaultLifecycle(t *testing.T) {
	store := newMockStore()
	vault := &RedisVault{store: store, keyer: store, ttl: time.Hour}
	ctx := context.Background()

	if tok, err := vault.Lookup(ctx, "s1"); err != nil || tok != "" {
		t.Fatalf("expected empty lookup, got %q, %v", tok, err)
	}
	if err := vault.Bind(ctx, "s1", "tok-1"); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if store.ttls["auth:s1"] != time.Hour {
		t.Fatalf("ttl not applied")
	}
	if tok, _ := vault.Lookup(ctx, "s1"); tok != "tok-1" {
		t.Fatalf("unexpected token %q", tok)
	}
	if err := vault.Revoke(ctx, "s1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if tok, _ := vault.Lookup(ctx, "s1"); tok != "" {
		t.Fatalf("token survived revoke")
	}
	if err := vault.Bind(ctx, " ", "tok"); err != ErrSessionRequired {
		t.Fatalf("expected ErrSessionRequired, got %v", err)
	}
}

func TestNewRedisVaultRequiresClient(t *testing.T) {
	if _, err := NewRedisVault(nil, config.SessionConfig{AuthTTL: time.Hour}); err == nil {
		t.Fatalf("expected error without client")
	}
}

func TestMemoryVaultExpires(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	vault := NewMemoryVault(time.Minute)
	vault.now = func() time.Time { return now }
	ctx := context.Background()

	if err := vault.Bind(ctx, "s1", "tok"); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if tok, _ := vault.Lookup(ctx, "s1"); tok != "tok" {
		t.Fatalf("unexpected token %q", tok)
	}
	now = now.Add(2 * time.Minute)
	if tok, _ := vault.Lookup(ctx, "s1"); tok != "" {
		t.Fatalf("expired token returned")
	}
}

func TestIdentityKey(t *testing.T) {
	cases := []struct {
		name string
		id   Identity
		want string
	}{
		{"session wins", Identity{Token: "t", SessionID: "s", UserID: "u"}, "session:s"},
		{"user id", Identity{Token: "t", UserID: "u"}, "user:u"},
		{"anonymous nothing", Identity{}, ""},
	}
	for _, tc := range cases {
		if got := tc.id.Key(); got != tc.want {
			t.Fatalf("%s: key = %q, want %q", tc.name, got, tc.want)
		}
	}

	tokenOnly := Identity{Token: "secret-token"}
	key := tokenOnly.Key()
	if key == "" || key == "token:secret-token" {
		t.Fatalf("token key must be a digest, got %q", key)
	}
	if key != (Identity{Token: " secret-token "}).Key() {
		t.Fatalf("token key should ignore surrounding whitespace")
	}

	be := Identity{Token: "t", SessionID: "s", UserID: "u"}.Backend()
	if be.Token != "t" || be.SessionID != "s" {
		t.Fatalf("unexpected backend identity %+v", be)
	}
}
