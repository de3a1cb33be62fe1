package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/checkout"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

type placeOrderRequest struct {
	ShippingAddressID string `json:"shippingAddressId" validate:"omitempty,max=128"`
	BillingAddressID  string `json:"billingAddressId,omitempty" validate:"omitempty,max=128"`
	CouponCode        string `json:"couponCode,omitempty" validate:"omitempty,max=64"`
	Notes             string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type placeOrderResponse struct {
	RedirectURL string `json:"redirectUrl"`
	OrderID     string `json:"orderId,omitempty"`
}

// CheckoutView prices the shopper's cart and loads the address book for the checkout
// screen. coupon and addressId come from the query string.
func CheckoutView(svc checkout.Service, carts CartResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil || carts == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		id := middleware.IdentityFromContext(ctx)
		store, err := carts.Resolve(ctx, id.Key(), id.Backend())
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve cart"))
			return
		}

		query := r.URL.Query()
		view, err := svc.LoadView(ctx, id.Backend(), checkout.ViewRequest{
			CartID:     store.CartID(),
			CouponCode: validators.SanitizeString(query.Get("coupon"), 64),
			AddressID:  validators.SanitizeString(query.Get("addressId"), 128),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CheckoutPlace initiates an order for the shopper's cart and returns where to send the
// shopper for payment. Nothing is sent to the backend when a precondition is missing.
func CheckoutPlace(svc checkout.Service, carts CartResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil || carts == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		id := middleware.IdentityFromContext(ctx)
		store, err := carts.Resolve(ctx, id.Key(), id.Backend())
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve cart"))
			return
		}

		cartID := store.CartID()
		if store.Count() == 0 {
			cartID = ""
		}
		req := checkout.Request{
			CartID:            cartID,
			ShippingAddressID: strings.TrimSpace(payload.ShippingAddressID),
			BillingAddressID:  strings.TrimSpace(payload.BillingAddressID),
			CouponCode:        strings.TrimSpace(payload.CouponCode),
			Notes:             validators.SanitizeString(payload.Notes, 500),
		}
		if err := svc.Precheck(id.Backend(), req, nil); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		view, err := svc.LoadView(ctx, id.Backend(), checkout.ViewRequest{
			CartID:     req.CartID,
			CouponCode: req.CouponCode,
			AddressID:  req.ShippingAddressID,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out := svc.Initiate(ctx, id.Backend(), req, view.Pricing)
		if !out.Success {
			failure := out.Err
			if failure == nil {
				failure = pkgerrors.New(pkgerrors.CodeRejected, out.Message)
			}
			responses.WriteError(ctx, logg, w, failure)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, out.Message, placeOrderResponse{
			RedirectURL: out.RedirectURL,
			OrderID:     out.OrderID,
		})
	}
}
