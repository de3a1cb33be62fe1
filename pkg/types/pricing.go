package types

import "github.com/shopspring/decimal"

// ShippingUnavailable is the shipping sentinel meaning no courier serves the address.
var ShippingUnavailable = decimal.NewFromInt(-1)

// AppliedOffer describes the coupon the backend accepted for a pricing quote.
type AppliedOffer struct {
	Code        string          `json:"code"`
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	Discount    decimal.Decimal `json:"discount"`
}

// PricingBreakdown is the checkout price summary. It is derived on every checkout
// view and never persisted.
type PricingBreakdown struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	Shipping       decimal.Decimal `json:"shipping"`
	GST            decimal.Decimal `json:"gst"`
	Total          decimal.Decimal `json:"total"`
	AppliedOffer   *AppliedOffer   `json:"appliedOffer,omitempty"`
	IsFreeShipping bool            `json:"isFreeShipping"`
}

// ShippingAvailable is false when shipping carries the -1 sentinel.
func (p PricingBreakdown) ShippingAvailable() bool {
	return !p.Shipping.Equal(ShippingUnavailable)
}
