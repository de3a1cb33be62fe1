package controllers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/orderstatus"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

const orderStatusPath = "/order-status/"

// PaymentCallback is where a finished payment lands. It records the callback once and
// redirects to the matching status page; repeats land on payment-already-processed.
func PaymentCallback(callbacks *orderstatus.Callbacks, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		query := r.URL.Query()
		orderID := validators.SanitizeString(query.Get("orderId"), maxPathIDLength)
		status := validators.SanitizeString(query.Get("status"), 32)

		view, err := callbacks.Resolve(ctx, orderID, status)
		if err != nil {
			// without an order id there is nothing to record; the shopper still gets a page
			logg.Warn(logg.WithField(ctx, "reason", err.Error()), "payment_callback.rejected")
		}
		http.Redirect(w, r, OrderStatusURL(view, orderID), http.StatusSeeOther)
	}
}

// OrderStatusURL builds the status page link for a view.
func OrderStatusURL(view orderstatus.View, orderID string) string {
	target := orderStatusPath + string(view)
	if orderID != "" {
		target += "?" + url.Values{"orderId": {orderID}}.Encode()
	}
	return target
}

// OrderStatusPage renders the status page for the {outcome} segment. Unknown outcomes
// render order-failed.
func OrderStatusPage(catalog *orderstatus.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalog == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "status pages unavailable"))
			return
		}
		view := orderstatus.Resolve(chi.URLParam(r, "outcome"))
		query := r.URL.Query()
		page := catalog.Render(view,
			validators.SanitizeString(query.Get("orderId"), maxPathIDLength),
			validators.SanitizeString(query.Get("message"), 300),
		)
		responses.WriteSuccess(w, page)
	}
}
