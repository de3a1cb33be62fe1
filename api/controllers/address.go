package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/pkg/backend"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/types"
)

// AddressBook is the backend surface behind the address routes.
type AddressBook interface {
	ListAddresses(ctx context.Context, id backend.Identity) backend.Result[[]types.Address]
	CreateAddress(ctx context.Context, id backend.Identity, addr types.Address) backend.Result[types.Address]
	UpdateAddress(ctx context.Context, id backend.Identity, addressID string, addr types.Address) backend.Result[types.Address]
	DeleteAddress(ctx context.Context, id backend.Identity, addressID string) backend.Result[backend.Ack]
}

const addressIDParam = "addressId"

// AddressList returns the signed-in shopper's address book.
func AddressList(api AddressBook, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := signedInShopper(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		res := api.ListAddresses(ctx, id)
		if !res.Success {
			responses.WriteError(ctx, logg, w, res.Err())
			return
		}
		book := res.Data
		if book == nil {
			book = []types.Address{}
		}
		responses.WriteSuccess(w, map[string]any{"addresses": book})
	}
}

func AddressCreate(api AddressBook, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := signedInShopper(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var payload types.Address
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		payload.ID = ""
		if err := payload.Validate(); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Please complete the address."))
			return
		}
		res := api.CreateAddress(ctx, id, payload)
		if !res.Success {
			responses.WriteError(ctx, logg, w, res.Err())
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, "Address saved.", res.Data)
	}
}

func AddressUpdate(api AddressBook, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := signedInShopper(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		addressID, err := pathID(r, addressIDParam, "address id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var payload types.Address
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		payload.ID = addressID
		res := api.UpdateAddress(ctx, id, addressID, payload)
		if !res.Success {
			responses.WriteError(ctx, logg, w, res.Err())
			return
		}
		responses.WriteSuccessStatus(w, http.StatusOK, "Address updated.", res.Data)
	}
}

func AddressDelete(api AddressBook, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := signedInShopper(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		addressID, err := pathID(r, addressIDParam, "address id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		res := api.DeleteAddress(ctx, id, addressID)
		if !res.Success {
			responses.WriteError(ctx, logg, w, res.Err())
			return
		}
		responses.WriteSuccessStatus(w, http.StatusOK, "Address removed.", map[string]string{"id": addressID})
	}
}
