package backend

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront/pkg/types"
	"github.com/shopspring/decimal"
)

// InitiateOrderRequest is the body of POST /orders/initiate.
type InitiateOrderRequest struct {
	CartID            string `json:"cartId"`
	ShippingAddressID string `json:"shippingAddressId"`
	BillingAddressID  string `json:"billingAddressId"`
	CouponCode        string `json:"couponCode,omitempty"`
	Notes             string `json:"notes,omitempty"`
}

// InitiateOrderResponse carries either the hosted payment page or only the new order id.
type InitiateOrderResponse struct {
	CheckoutPageURL string `json:"checkoutPageUrl,omitempty"`
	OrderID         string `json:"orderId,omitempty"`
}

// CompleteOrderRequest reports a payment result for an order.
type CompleteOrderRequest struct {
	OrderID         string          `json:"orderId"`
	TransactionID   string          `json:"transactionId"`
	PaymentStatus   string          `json:"paymentStatus"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethod   string          `json:"paymentMethod"`
	GatewayResponse map[string]any  `json:"gatewayResponse,omitempty"`
}

func (c *Client) InitiateOrder(ctx context.Context, id Identity, req InitiateOrderRequest) Result[InitiateOrderResponse] {
	return call[InitiateOrderResponse](ctx, c, request{
		endpoint: "orders.initiate",
		method:   http.MethodPost,
		path:     "/orders/initiate",
		body:     req,
		identity: id,
	}, nil)
}

func (c *Client) CompleteOrder(ctx context.Context, id Identity, req CompleteOrderRequest) Result[Ack] {
	return call[Ack](ctx, c, request{
		endpoint: "orders.complete",
		method:   http.MethodPost,
		path:     "/orders/complete",
		body:     req,
		identity: id,
	}, nil)
}

func (c *Client) ListOrders(ctx context.Context, id Identity) Result[[]types.Order] {
	return call[[]types.Order](ctx, c, request{
		endpoint: "orders.list",
		method:   http.MethodGet,
		path:     "/orders",
		identity: id,
	}, nil)
}

func (c *Client) GetOrder(ctx context.Context, id Identity, orderID string) Result[types.Order] {
	return call[types.Order](ctx, c, request{
		endpoint: "orders.get",
		method:   http.MethodGet,
		path:     itemPath("/orders", orderID),
		identity: id,
	}, nil)
}
