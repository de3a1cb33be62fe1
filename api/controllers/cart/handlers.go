package cart

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	cartsvc "github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/pricing"
	"github.com/angelmondragon/storefront/pkg/backend"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/types"
)

const (
	msgAdded         = "Added to your cart."
	msgRemoved       = "Removed from your cart."
	msgUpdated       = "Your cart was updated."
	msgMovedWishlist = "Moved to your wishlist."
	msgItemNotInCart = "That item is no longer in your cart."
	msgCartNotLoaded = "We couldn't load your cart. Please try again."

	itemIDParam     = "itemId"
	maxItemIDLength = 128
)

// Carts hands out the per-shopper cart store.
type Carts interface {
	Resolve(ctx context.Context, key string, identity backend.Identity) (*cartsvc.Store, error)
}

// CartFetch returns the shopper's cart. The store refreshes from the backend first so the
// response reflects server state.
func CartFetch(carts Carts, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, ok := shopperStore(w, r, carts, logg)
		if !ok {
			return
		}
		if err := store.Refresh(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(store.Snapshot()))
	}
}

func CartAddItem(carts Carts, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload cartsvc.AddArgs
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store, ok := shopperStore(w, r, carts, logg)
		if !ok {
			return
		}
		if _, err := store.AddToCart(r.Context(), payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, msgAdded, newCartView(store.Snapshot()))
	}
}

func CartUpdateItem(carts Carts, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := itemIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.empty() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Nothing to update."))
			return
		}
		store, ok := shopperStore(w, r, carts, logg)
		if !ok {
			return
		}
		if _, err := store.UpdateCartItem(r.Context(), itemID, payload.toArgs()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusOK, msgUpdated, newCartView(store.Snapshot()))
	}
}

func CartRemoveItem(carts Carts, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := itemIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store, ok := shopperStore(w, r, carts, logg)
		if !ok {
			return
		}
		if _, err := store.RemoveFromCart(r.Context(), itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusOK, msgRemoved, newCartView(store.Snapshot()))
	}
}

// CartMoveToWishlist saves a cart line to the wishlist and drops it from the cart.
func CartMoveToWishlist(carts Carts, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := itemIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store, ok := shopperStore(w, r, carts, logg)
		if !ok {
			return
		}
		if !store.Identity().Authenticated() {
			responses.WriteError(r.Context(), logg, w, cartsvc.ErrLoginRequired)
			return
		}

		item, found := findItem(store, itemID)
		if !found {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, msgItemNotInCart))
			return
		}
		if _, err := store.MoveToWishlist(r.Context(), item); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusOK, msgMovedWishlist, newCartView(store.Snapshot()))
	}
}

func shopperStore(w http.ResponseWriter, r *http.Request, carts Carts, logg *logger.Logger) (*cartsvc.Store, bool) {
	if carts == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
		return nil, false
	}
	id := middleware.IdentityFromContext(r.Context())
	store, err := carts.Resolve(r.Context(), id.Key(), id.Backend())
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, msgCartNotLoaded).Public())
		return nil, false
	}
	return store, true
}

func findItem(store *cartsvc.Store, itemID string) (item types.CartItem, ok bool) {
	for _, candidate := range store.Items() {
		if candidate.ID == itemID {
			return candidate, true
		}
	}
	return item, false
}

func itemIDFromPath(r *http.Request) (string, error) {
	raw := strings.TrimSpace(chi.URLParam(r, itemIDParam))
	if raw == "" || len(raw) > maxItemIDLength {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid cart item id")
	}
	return raw, nil
}

// newCartView attaches the locally computed subtotal to the snapshot.
func newCartView(snap cartsvc.Snapshot) cartView {
	return cartView{
		CartID:   snap.CartID,
		Items:    snap.Items,
		Count:    snap.Count,
		Subtotal: pricing.Subtotal(snap.Items),
	}
}
