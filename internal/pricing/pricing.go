// Package pricing holds the checkout price arithmetic. Amounts are decimals; the -1
// shipping sentinel means no courier serves the address and never counts as a cost.
package pricing

import (
	"fmt"

	"github.com/angelmondragon/storefront/pkg/types"
	"github.com/shopspring/decimal"
)

// Subtotal is the sum of price times quantity over the items, before any adjustment.
func Subtotal(items []types.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Total applies total = subtotal - discount + shipping + gst. Unavailable shipping adds 0.
func Total(subtotal, discount, shipping, gst decimal.Decimal) decimal.Decimal {
	return subtotal.Sub(discount).Add(payableShipping(shipping)).Add(gst)
}

// Compute builds a breakdown from its components.
func Compute(subtotal, discount, shipping, gst decimal.Decimal, offer *types.AppliedOffer) types.PricingBreakdown {
	return types.PricingBreakdown{
		Subtotal:       subtotal,
		Discount:       discount,
		Shipping:       shipping,
		GST:            gst,
		Total:          Total(subtotal, discount, shipping, gst),
		AppliedOffer:   offer,
		IsFreeShipping: shipping.IsZero(),
	}
}

// Normalize recomputes the total from the components so the invariant holds exactly,
// and reports whether the quoted total disagreed.
func Normalize(p types.PricingBreakdown) (types.PricingBreakdown, bool) {
	want := Total(p.Subtotal, p.Discount, p.Shipping, p.GST)
	drifted := !want.Equal(p.Total)
	p.Total = want
	if !p.ShippingAvailable() {
		p.IsFreeShipping = false
	}
	return p, drifted
}

// Validate rejects breakdowns that cannot be shown to a shopper.
func Validate(p types.PricingBreakdown) error {
	if p.Subtotal.IsNegative() {
		return fmt.Errorf("subtotal %s is negative", p.Subtotal)
	}
	if p.Discount.IsNegative() {
		return fmt.Errorf("discount %s is negative", p.Discount)
	}
	if p.GST.IsNegative() {
		return fmt.Errorf("gst %s is negative", p.GST)
	}
	if p.Shipping.IsNegative() && p.ShippingAvailable() {
		return fmt.Errorf("shipping %s is neither a cost nor the unavailable sentinel", p.Shipping)
	}
	if p.Discount.GreaterThan(p.Subtotal) {
		return fmt.Errorf("discount %s exceeds subtotal %s", p.Discount, p.Subtotal)
	}
	return nil
}

func payableShipping(shipping decimal.Decimal) decimal.Decimal {
	if shipping.Equal(types.ShippingUnavailable) {
		return decimal.Zero
	}
	return shipping
}
