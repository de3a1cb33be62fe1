package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/api/responses"
)

// PublicPing echoes who the request resolved to.
func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := middleware.IdentityFromContext(r.Context())
		payload := map[string]any{"status": "ok", "authenticated": id.Authenticated()}
		if id.UserID != "" {
			payload["user_id"] = id.UserID
		}
		responses.WriteSuccess(w, payload)
	}
}
