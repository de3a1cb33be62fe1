package controllers

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/mockpay"
	"github.com/angelmondragon/storefront/pkg/backend"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

// PaymentGateway is the development payment page's backing service.
type PaymentGateway interface {
	Open(ctx context.Context, id backend.Identity, orderID string) (*mockpay.Payment, error)
	SelectMethod(id backend.Identity, orderID, method string, fields map[string]string) error
	Submit(ctx context.Context, id backend.Identity, orderID string) (mockpay.Completion, error)
	Abandon(ctx context.Context, id backend.Identity, orderID string) (mockpay.Completion, error)
}

var paymentMethods = []mockpay.Method{
	mockpay.MethodCreditCard,
	mockpay.MethodDebitCard,
	mockpay.MethodNetbanking,
	mockpay.MethodWallet,
	mockpay.MethodUPI,
}

type paymentView struct {
	OrderID string           `json:"orderId"`
	Amount  decimal.Decimal  `json:"amount"`
	State   string           `json:"state"`
	Methods []mockpay.Method `json:"methods"`
}

type selectMethodRequest struct {
	Method string            `json:"method" validate:"required"`
	Fields map[string]string `json:"fields,omitempty"`
}

func newPaymentView(p *mockpay.Payment) paymentView {
	return paymentView{
		OrderID: p.OrderID(),
		Amount:  p.Amount(),
		State:   p.State().String(),
		Methods: paymentMethods,
	}
}

// MockPaymentOpen starts (or resumes) the simulated payment for an order.
func MockPaymentOpen(gw PaymentGateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if gw == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "mock gateway disabled"))
			return
		}
		orderID, err := pathID(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		id := middleware.IdentityFromContext(ctx)
		payment, err := gw.Open(logg.WithField(ctx, "order_id", orderID), id.Backend(), orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPaymentView(payment))
	}
}

func MockPaymentMethod(gw PaymentGateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if gw == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "mock gateway disabled"))
			return
		}
		orderID, err := pathID(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var payload selectMethodRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := gw.SelectMethod(middleware.IdentityFromContext(ctx).Backend(), orderID, payload.Method, payload.Fields); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusOK, "Payment method selected.", map[string]string{"method": payload.Method})
	}
}

// MockPaymentSubmit blocks for the simulated processing delay and reports where the
// shopper lands next. A client disconnect during the delay cancels the attempt.
func MockPaymentSubmit(gw PaymentGateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if gw == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "mock gateway disabled"))
			return
		}
		orderID, err := pathID(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		id := middleware.IdentityFromContext(ctx)
		done, err := gw.Submit(logg.WithField(ctx, "order_id", orderID), id.Backend(), orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, done)
	}
}

func MockPaymentAbandon(gw PaymentGateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if gw == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "mock gateway disabled"))
			return
		}
		orderID, err := pathID(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		id := middleware.IdentityFromContext(ctx)
		done, err := gw.Abandon(logg.WithField(ctx, "order_id", orderID), id.Backend(), orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusOK, "Payment cancelled.", done)
	}
}
