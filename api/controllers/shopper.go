package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/pkg/backend"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

const (
	msgLoginRequired = "Please log in to continue."
	maxPathIDLength  = 128
)

// signedInShopper returns the backend identity for routes that need an account.
func signedInShopper(r *http.Request) (backend.Identity, error) {
	id := middleware.IdentityFromContext(r.Context())
	if !id.Authenticated() {
		return backend.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, msgLoginRequired)
	}
	return id.Backend(), nil
}

func pathID(r *http.Request, param, label string) (string, error) {
	raw := strings.TrimSpace(chi.URLParam(r, param))
	if raw == "" || len(raw) > maxPathIDLength {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid "+label)
	}
	return raw, nil
}
