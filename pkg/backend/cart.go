package backend

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront/pkg/types"
)

// AddCartItemRequest is the body of POST /cart/items.
type AddCartItemRequest struct {
	ProductVariantID string `json:"productVariantId" validate:"required"`
	Quantity         int    `json:"quantity" validate:"required,min=1"`
}

// UpdateCartItemRequest changes the quantity or the variant of a cart line.
type UpdateCartItemRequest struct {
	Quantity         *int   `json:"quantity,omitempty" validate:"omitempty,min=1"`
	ProductVariantID string `json:"productVariantId,omitempty"`
	Size             string `json:"size,omitempty"`
	MLVolume         int    `json:"ml_volume,omitempty" validate:"omitempty,min=1"`
}

// Cart is the authoritative cart snapshot returned by GET /cart.
type Cart struct {
	CartID string
	Items  []types.CartItem
}

type mergeCartRequest struct {
	SessionID string `json:"sessionId,omitempty"`
}

// PricingRequest asks the backend to price a cart for a coupon and delivery address.
type PricingRequest struct {
	CartID     string `json:"cartId"`
	CouponCode string `json:"couponCode,omitempty"`
	AddressID  string `json:"addressId,omitempty"`
}

func (c *Client) AddCartItem(ctx context.Context, id Identity, req AddCartItemRequest) Result[Ack] {
	return call[Ack](ctx, c, request{
		endpoint: "cart.add_item",
		method:   http.MethodPost,
		path:     "/cart/items",
		body:     req,
		identity: id,
	}, nil)
}

// GetCart fetches the cart for the identity. The cart id travels next to data, not in it.
func (c *Client) GetCart(ctx context.Context, id Identity) Result[Cart] {
	return call(ctx, c, request{
		endpoint: "cart.get",
		method:   http.MethodGet,
		path:     "/cart",
		identity: id,
	}, func(env envelope) (Cart, error) {
		items, err := decodeData[[]types.CartItem](env)
		if err != nil {
			return Cart{}, err
		}
		if items == nil {
			items = []types.CartItem{}
		}
		return Cart{CartID: strings.TrimSpace(env.CartID), Items: items}, nil
	})
}

func (c *Client) RemoveCartItem(ctx context.Context, id Identity, itemID string) Result[Ack] {
	return call[Ack](ctx, c, request{
		endpoint: "cart.remove_item",
		method:   http.MethodDelete,
		path:     itemPath("/cart", itemID),
		identity: id,
	}, nil)
}

func (c *Client) UpdateCartItem(ctx context.Context, id Identity, itemID string, req UpdateCartItemRequest) Result[Ack] {
	return call[Ack](ctx, c, request{
		endpoint: "cart.update_item",
		method:   http.MethodPut,
		path:     itemPath("/cart", itemID),
		body:     req,
		identity: id,
	}, nil)
}

// MergeGuestCart folds the anonymous session cart into the signed-in user's cart.
// The call is authenticated by the token; the guest session travels in the body.
func (c *Client) MergeGuestCart(ctx context.Context, token, sessionID string) Result[Ack] {
	return call[Ack](ctx, c, request{
		endpoint: "cart.merge",
		method:   http.MethodPatch,
		path:     "/cart",
		body:     mergeCartRequest{SessionID: strings.TrimSpace(sessionID)},
		identity: Identity{Token: token},
	}, nil)
}

func (c *Client) GetCartPricing(ctx context.Context, id Identity, req PricingRequest) Result[types.PricingBreakdown] {
	return call[types.PricingBreakdown](ctx, c, request{
		endpoint: "cart.pricing",
		method:   http.MethodPost,
		path:     "/cart/pricing",
		body:     req,
		identity: id,
	}, nil)
}
