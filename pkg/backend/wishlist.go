package backend

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront/pkg/types"
)

type wishlistAddRequest struct {
	ProductID string `json:"productId"`
}

func (c *Client) ListWishlist(ctx context.Context, id Identity) Result[[]types.WishlistItem] {
	return call[[]types.WishlistItem](ctx, c, request{
		endpoint: "wishlist.list",
		method:   http.MethodGet,
		path:     "/wishlist",
		identity: id,
	}, nil)
}

func (c *Client) AddToWishlist(ctx context.Context, id Identity, productID string) Result[Ack] {
	return call[Ack](ctx, c, request{
		endpoint: "wishlist.add",
		method:   http.MethodPost,
		path:     "/wishlist",
		body:     wishlistAddRequest{ProductID: productID},
		identity: id,
	}, nil)
}

func (c *Client) RemoveFromWishlist(ctx context.Context, id Identity, productID string) Result[Ack] {
	return call[Ack](ctx, c, request{
		endpoint: "wishlist.remove",
		method:   http.MethodDelete,
		path:     itemPath("/wishlist", productID),
		identity: id,
	}, nil)
}
