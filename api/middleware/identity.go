package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/internal/session"
	pkgauth "github.com/angelmondragon/storefront/pkg/auth"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

const msgSessionExpired = "Your session has expired. Please log in again."

// TokenLookup reads the token bound to a session.
type TokenLookup interface {
	Lookup(ctx context.Context, sessionID string) (string, error)
	Revoke(ctx context.Context, sessionID string) error
}

// Identity resolves who the request acts for. A bearer Authorization header wins over a
// token bound to the session cookie. Guests without a cookie get a fresh session id.
func Identity(resolver *session.Resolver, vault TokenLookup, secureCookies bool, logg *logger.Logger) func(http.Handler) http.Handler {
	now := time.Now
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			jar := session.NewHTTPCookies(w, r, secureCookies)

			id := session.Identity{SessionID: resolver.Peek(jar)}

			fromHeader := bearerToken(r.Header.Get("Authorization"))
			switch {
			case fromHeader != "":
				id.Token = fromHeader
			case id.SessionID != "" && vault != nil:
				token, err := vault.Lookup(ctx, id.SessionID)
				if err != nil {
					// a vault outage degrades the shopper to guest for this request
					logg.Error(logg.WithSessionID(ctx, id.SessionID), "identity.vault_lookup_failed", err)
				}
				id.Token = token
			}

			if id.Token != "" {
				claims, err := pkgauth.InspectToken(id.Token, now())
				switch {
				case errors.Is(err, pkgauth.ErrTokenExpired):
					if fromHeader != "" {
						responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msgSessionExpired))
						return
					}
					if revokeErr := vault.Revoke(ctx, id.SessionID); revokeErr != nil {
						logg.Error(logg.WithSessionID(ctx, id.SessionID), "identity.vault_revoke_failed", revokeErr)
					}
					logg.Info(logg.WithSessionID(ctx, id.SessionID), "identity.token_expired")
					id.Token = ""
				case err == nil:
					id.UserID = claims.ShopperID()
				}
				// opaque tokens are passed through; the backend verifies them
			}

			if !id.Authenticated() && id.SessionID == "" {
				id.SessionID = resolver.GetOrCreateSessionID(jar, "")
			}

			ctx = WithIdentity(ctx, id)
			if logg != nil {
				if id.SessionID != "" {
					ctx = logg.WithSessionID(ctx, id.SessionID)
				}
				if id.UserID != "" {
					ctx = logg.WithUserID(ctx, id.UserID)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(raw string) string {
	token := strings.TrimSpace(raw)
	if strings.EqualFold(token, "bearer") {
		return ""
	}
	if len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
