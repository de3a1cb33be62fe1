package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/pkg/backend"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/types"
)

// Profiles is the backend surface behind /api/profile.
type Profiles interface {
	GetProfile(ctx context.Context, id backend.Identity) backend.Result[types.UserProfile]
	UpdateProfile(ctx context.Context, id backend.Identity, update backend.ProfileUpdate) backend.Result[types.UserProfile]
}

func ProfileGet(api Profiles, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := signedInShopper(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		res := api.GetProfile(ctx, id)
		if !res.Success {
			responses.WriteError(ctx, logg, w, res.Err())
			return
		}
		responses.WriteSuccess(w, res.Data)
	}
}

// ProfileUpdate edits the shopper's name and phone. Email changes go through the
// identity provider.
func ProfileUpdate(api Profiles, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := signedInShopper(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var payload backend.ProfileUpdate
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		payload.Name = validators.SanitizeString(payload.Name, 120)
		payload.Phone = strings.TrimSpace(payload.Phone)
		if payload.Name == "" && payload.Phone == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Nothing to update."))
			return
		}
		res := api.UpdateProfile(ctx, id, payload)
		if !res.Success {
			responses.WriteError(ctx, logg, w, res.Err())
			return
		}
		responses.WriteSuccessStatus(w, http.StatusOK, "Your profile was updated.", res.Data)
	}
}
