package middleware

import (
	"context"

	"github.com/angelmondragon/storefront/internal/session"
)

type contextKey string

const (
	ctxIdentity contextKey = "shopper_identity"
)

// IdentityFromContext returns the shopper resolved by the Identity middleware.
func IdentityFromContext(ctx context.Context) session.Identity {
	if ctx == nil {
		return session.Identity{}
	}
	if v, ok := ctx.Value(ctxIdentity).(session.Identity); ok {
		return v
	}
	return session.Identity{}
}

func UserIDFromContext(ctx context.Context) string {
	return IdentityFromContext(ctx).UserID
}

// WithIdentity injects the shopper identity into the context.
func WithIdentity(ctx context.Context, id session.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, id)
}
