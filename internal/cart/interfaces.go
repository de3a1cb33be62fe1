package cart

import (
	"context"

	"github.com/angelmondragon/storefront/pkg/backend"
)

// API is the slice of the backend client the cart store drives.
type API interface {
	GetCart(ctx context.Context, id backend.Identity) backend.Result[backend.Cart]
	AddCartItem(ctx context.Context, id backend.Identity, req backend.AddCartItemRequest) backend.Result[backend.Ack]
	RemoveCartItem(ctx context.Context, id backend.Identity, itemID string) backend.Result[backend.Ack]
	UpdateCartItem(ctx context.Context, id backend.Identity, itemID string, req backend.UpdateCartItemRequest) backend.Result[backend.Ack]
	MergeGuestCart(ctx context.Context, token, sessionID string) backend.Result[backend.Ack]
	AddToWishlist(ctx context.Context, id backend.Identity, productID string) backend.Result[backend.Ack]
}
