package checkout

import (
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/types"
)

const (
	MsgLoginRequired       = "Please log in to place your order."
	MsgCartEmpty           = "Your cart is empty."
	MsgAddressRequired     = "Please select a delivery address."
	MsgShippingUnavailable = "Delivery is not available for the selected address."
)

// Precondition names the first client-side rule an order initiation broke.
type Precondition string

const (
	PreconditionLogin    Precondition = "login"
	PreconditionCart     Precondition = "cart"
	PreconditionAddress  Precondition = "address"
	PreconditionShipping Precondition = "shipping"
)

// PreconditionInput describes what the storefront knows before initiating an order.
// A nil Shipping means pricing has not been computed yet and the shipping rule is skipped.
type PreconditionInput struct {
	Authenticated bool
	CartID        string
	AddressID     string
	Shipping      *decimal.Decimal
}

// ValidatePreconditions checks login, cart, address and shipping in that order and
// returns the first violation with its shopper-facing message.
func ValidatePreconditions(in PreconditionInput) error {
	if !in.Authenticated {
		return violation(pkgerrors.CodeUnauthorized, PreconditionLogin, MsgLoginRequired)
	}
	if strings.TrimSpace(in.CartID) == "" {
		return violation(pkgerrors.CodePrecondition, PreconditionCart, MsgCartEmpty)
	}
	if strings.TrimSpace(in.AddressID) == "" {
		return violation(pkgerrors.CodePrecondition, PreconditionAddress, MsgAddressRequired)
	}
	if in.Shipping != nil && in.Shipping.Equal(types.ShippingUnavailable) {
		return violation(pkgerrors.CodePrecondition, PreconditionShipping, MsgShippingUnavailable)
	}
	return nil
}

// Violated extracts the precondition name from an error built by ValidatePreconditions.
func Violated(err error) (Precondition, bool) {
	typed := pkgerrors.As(err)
	if typed == nil {
		return "", false
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		return "", false
	}
	p, ok := details["precondition"].(Precondition)
	return p, ok
}

func violation(code pkgerrors.Code, p Precondition, msg string) error {
	return pkgerrors.New(code, msg).WithDetails(map[string]any{"precondition": p})
}
