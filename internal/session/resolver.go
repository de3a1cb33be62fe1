package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/google/uuid"
)

// CookieJar is the persisted client state the resolver reads and writes.
type CookieJar interface {
	Get(name string) (string, bool)
	Set(name, value string, ttl time.Duration)
}

// Resolver hands out anonymous shopper ids.
type Resolver struct {
	cookieName string
	ttl        time.Duration
	newID      func() string
}

func NewResolver(cfg config.SessionConfig) *Resolver {
	name := strings.TrimSpace(cfg.CookieName)
	if name == "" {
		name = config.DefaultSessionCookie
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = config.DefaultSessionTTL
	}
	return &Resolver{cookieName: name, ttl: ttl, newID: uuid.NewString}
}

func (r *Resolver) CookieName() string {
	return r.cookieName
}

// GetOrCreateSessionID returns "" for signed-in shoppers. Otherwise it returns the
// persisted id, minting and storing a new UUID only when none exists yet.
func (r *Resolver) GetOrCreateSessionID(jar CookieJar, token string) string {
	if strings.TrimSpace(token) != "" {
		return ""
	}
	if existing := r.Peek(jar); existing != "" {
		return existing
	}
	id := r.newID()
	jar.Set(r.cookieName, id, r.ttl)
	return id
}

// Peek reads the persisted id without creating one.
func (r *Resolver) Peek(jar CookieJar) string {
	if jar == nil {
		return ""
	}
	value, ok := jar.Get(r.cookieName)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

// HTTPCookies adapts a request/response pair to CookieJar.
type HTTPCookies struct {
	r      *http.Request
	w      http.ResponseWriter
	secure bool
	set    map[string]string
}

func NewHTTPCookies(w http.ResponseWriter, r *http.Request, secure bool) *HTTPCookies {
	return &HTTPCookies{r: r, w: w, secure: secure, set: map[string]string{}}
}

func (c *HTTPCookies) Get(name string) (string, bool) {
	if v, ok := c.set[name]; ok {
		return v, true
	}
	if c.r == nil {
		return "", false
	}
	cookie, err := c.r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func (c *HTTPCookies) Set(name, value string, ttl time.Duration) {
	c.set[name] = value
	if c.w == nil {
		return
	}
	http.SetCookie(c.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
