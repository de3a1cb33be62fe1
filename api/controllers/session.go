package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	cartsvc "github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/session"
	pkgauth "github.com/angelmondragon/storefront/pkg/auth"
	"github.com/angelmondragon/storefront/pkg/backend"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

const (
	msgSignedIn       = "You're signed in."
	msgSignedOut      = "You're signed out."
	msgTokenExpired   = "Your session has expired. Please log in again."
	msgSessionStorage = "We couldn't sign you in right now. Please try again."
)

// SessionVault remembers the bearer token bound to a session cookie.
type SessionVault interface {
	Bind(ctx context.Context, sessionID, token string) error
	Revoke(ctx context.Context, sessionID string) error
}

// CartResolver hands out the per-shopper cart store with its token aligned to the request.
type CartResolver interface {
	Resolve(ctx context.Context, key string, identity backend.Identity) (*cartsvc.Store, error)
}

type loginRequest struct {
	Token string `json:"token" validate:"required,max=4096"`
}

type sessionView struct {
	Authenticated bool             `json:"authenticated"`
	UserID        string           `json:"userId,omitempty"`
	Cart          cartsvc.Snapshot `json:"cart"`
}

// SessionLogin binds the identity provider's token to the shopper's session. The guest
// cart built so far is merged into the user's cart before the response is written.
func SessionLogin(resolver *session.Resolver, vault SessionVault, carts CartResolver, secureCookies bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if vault == nil || carts == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		token := strings.TrimSpace(payload.Token)

		var userID string
		claims, err := pkgauth.InspectToken(token, time.Now())
		switch {
		case errors.Is(err, pkgauth.ErrTokenExpired):
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msgTokenExpired))
			return
		case err == nil:
			userID = claims.ShopperID()
		}

		id := middleware.IdentityFromContext(ctx)
		if id.SessionID == "" {
			id.SessionID = resolver.GetOrCreateSessionID(session.NewHTTPCookies(w, r, secureCookies), "")
		}
		if err := vault.Bind(ctx, id.SessionID, token); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, msgSessionStorage).Public())
			return
		}

		store, err := carts.Resolve(ctx, id.Key(), id.Backend())
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve cart"))
			return
		}
		if err := store.SetToken(ctx, token); err != nil {
			// the login stands; the cart shows whatever the backend holds
			logg.Warn(logg.WithField(ctx, "reason", err.Error()), "session.cart_merge_failed")
		}

		logg.Info(logg.WithUserID(ctx, userID), "session.login")
		responses.WriteSuccessStatus(w, http.StatusOK, msgSignedIn, sessionView{
			Authenticated: true,
			UserID:        userID,
			Cart:          store.Snapshot(),
		})
	}
}

// SessionLogout forgets the session's token. The cookie stays so the shopper continues
// on the same anonymous cart.
func SessionLogout(vault SessionVault, carts CartResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if vault == nil || carts == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}

		id := middleware.IdentityFromContext(ctx)
		if id.SessionID == "" {
			responses.WriteSuccessStatus(w, http.StatusOK, msgSignedOut, sessionView{Cart: cartsvc.Snapshot{}})
			return
		}
		if err := vault.Revoke(ctx, id.SessionID); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session token"))
			return
		}

		guest := session.Identity{SessionID: id.SessionID}
		store, err := carts.Resolve(ctx, guest.Key(), guest.Backend())
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve cart"))
			return
		}

		logg.Info(ctx, "session.logout")
		responses.WriteSuccessStatus(w, http.StatusOK, msgSignedOut, sessionView{Cart: store.Snapshot()})
	}
}
