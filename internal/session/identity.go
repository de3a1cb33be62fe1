package session

import (
	"strings"

	"github.com/angelmondragon/storefront/pkg/backend"
	"github.com/google/uuid"
)

var tokenKeySpace = uuid.MustParse("6f1b3c1e-4d7a-4b8e-9a51-2f0c7d9e8a10")

// Identity is who a request acts for: a signed-in token, an anonymous session, or both
// (a session that logged in keeps its cookie).
type Identity struct {
	Token     string
	SessionID string
	UserID    string
}

func (i Identity) Authenticated() bool {
	return strings.TrimSpace(i.Token) != ""
}

// Backend narrows the identity to what the REST API needs.
func (i Identity) Backend() backend.Identity {
	return backend.Identity{Token: i.Token, SessionID: i.SessionID}
}

// Key is the stable registry key for the shopper's cart store. A session keeps its key
// across login and logout; a token-only caller is keyed by user id, or by a digest of
// the token so the raw credential never becomes a map key.
func (i Identity) Key() string {
	if sid := strings.TrimSpace(i.SessionID); sid != "" {
		return "session:" + sid
	}
	if uid := strings.TrimSpace(i.UserID); uid != "" {
		return "user:" + uid
	}
	if i.Authenticated() {
		return "token:" + uuid.NewSHA1(tokenKeySpace, []byte(strings.TrimSpace(i.Token))).String()
	}
	return ""
}
