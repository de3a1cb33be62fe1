package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/pkg/backend"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/types"
)

// Wishlist is the backend surface behind the wishlist routes.
type Wishlist interface {
	ListWishlist(ctx context.Context, id backend.Identity) backend.Result[[]types.WishlistItem]
	RemoveFromWishlist(ctx context.Context, id backend.Identity, productID string) backend.Result[backend.Ack]
}

// WishlistList returns the signed-in shopper's saved products.
func WishlistList(api Wishlist, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := signedInShopper(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		res := api.ListWishlist(ctx, id)
		if !res.Success {
			responses.WriteError(ctx, logg, w, res.Err())
			return
		}
		items := res.Data
		if items == nil {
			items = []types.WishlistItem{}
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

func WishlistRemove(api Wishlist, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := signedInShopper(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		productID, err := pathID(r, "productId", "product id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		res := api.RemoveFromWishlist(ctx, id, productID)
		if !res.Success {
			responses.WriteError(ctx, logg, w, res.Err())
			return
		}
		responses.WriteSuccessStatus(w, http.StatusOK, "Removed from your wishlist.", map[string]string{"productId": productID})
	}
}
