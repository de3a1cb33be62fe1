package mockpay

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/angelmondragon/storefront/pkg/backend"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/types"
)

const (
	CallbackPath = "/payment/callback"

	// CallbackPending marks a payment the gateway finished but the backend did not record.
	CallbackPending = "pending"

	outcomeAbandoned = "abandoned"
)

// OrderAPI is the backend surface the gateway needs.
type OrderAPI interface {
	GetOrder(ctx context.Context, id backend.Identity, orderID string) backend.Result[types.Order]
	CompleteOrder(ctx context.Context, id backend.Identity, req backend.CompleteOrderRequest) backend.Result[backend.Ack]
}

// Completion is what the shopper is sent to once a payment ends.
type Completion struct {
	Result      Result `json:"result"`
	Recorded    bool   `json:"recorded"`
	RedirectURL string `json:"redirectUrl"`
}

// Gateway keeps one in-flight payment per order and reports terminal results to the
// backend through POST /orders/complete. A payment answers only to the shopper who
// opened it.
type Gateway struct {
	sim     *Simulator
	api     OrderAPI
	metrics *metrics.PaymentMetrics
	logg    *logger.Logger

	mu       sync.Mutex
	payments map[string]*openPayment
}

type openPayment struct {
	payment *Payment
	owner   backend.Identity
}

// ownedBy matches on the session cookie when the opener had one, else on the token.
func (o *openPayment) ownedBy(id backend.Identity) bool {
	if sid := strings.TrimSpace(o.owner.SessionID); sid != "" {
		return sid == strings.TrimSpace(id.SessionID)
	}
	token := strings.TrimSpace(o.owner.Token)
	return token != "" && token == strings.TrimSpace(id.Token)
}

func NewGateway(sim *Simulator, api OrderAPI, m *metrics.PaymentMetrics, logg *logger.Logger) (*Gateway, error) {
	if sim == nil {
		return nil, fmt.Errorf("simulator required")
	}
	if api == nil {
		return nil, fmt.Errorf("order api required")
	}
	return &Gateway{sim: sim, api: api, metrics: m, logg: logg, payments: map[string]*openPayment{}}, nil
}

// Open starts a payment for the order, or returns the one the same shopper already has
// in progress.
func (g *Gateway) Open(ctx context.Context, id backend.Identity, orderID string) (*Payment, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if strings.TrimSpace(id.SessionID) == "" && !id.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Please log in to continue.")
	}

	g.mu.Lock()
	if existing, ok := g.payments[orderID]; ok && !existing.payment.State().Terminal() {
		g.mu.Unlock()
		return g.reuse(existing, id)
	}
	g.mu.Unlock()

	res := g.api.GetOrder(ctx, id, orderID)
	if !res.Success {
		return nil, res.Err()
	}
	if status := res.Data.Status; status != "" && status != types.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "This order is no longer awaiting payment.")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if existing, ok := g.payments[orderID]; ok && !existing.payment.State().Terminal() {
		return g.reuse(existing, id)
	}
	payment := g.sim.Start(orderID, res.Data.Total, nil)
	g.payments[orderID] = &openPayment{payment: payment, owner: id}
	g.logg.Info(g.logg.WithField(ctx, "order_id", orderID), "mockpay.opened")
	return payment, nil
}

func (g *Gateway) reuse(existing *openPayment, id backend.Identity) (*Payment, error) {
	if !existing.ownedBy(id) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "A payment for this order is already in progress.")
	}
	return existing.payment, nil
}

func (g *Gateway) SelectMethod(id backend.Identity, orderID, method string, fields map[string]string) error {
	payment, err := g.lookup(id, orderID)
	if err != nil {
		return err
	}
	m, err := ParseMethod(method)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Please choose a supported payment method.")
	}
	if err := payment.SelectMethod(m, fields); err != nil {
		return transitionError(err)
	}
	return nil
}

// Submit runs the simulated processing and records the outcome with the backend.
func (g *Gateway) Submit(ctx context.Context, id backend.Identity, orderID string) (Completion, error) {
	payment, err := g.lookup(id, orderID)
	if err != nil {
		return Completion{}, err
	}
	result, err := payment.Submit(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Completion{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Payment was interrupted. Please try again.").Public()
		}
		return Completion{}, transitionError(err)
	}
	g.metrics.IncOutcome(string(result.Status))
	return g.complete(ctx, id, payment, result), nil
}

// Abandon ends the payment on the shopper's behalf.
func (g *Gateway) Abandon(ctx context.Context, id backend.Identity, orderID string) (Completion, error) {
	payment, err := g.lookup(id, orderID)
	if err != nil {
		return Completion{}, err
	}
	result, err := payment.Abandon()
	if err != nil {
		return Completion{}, transitionError(err)
	}
	g.metrics.IncOutcome(outcomeAbandoned)
	return g.complete(ctx, id, payment, result), nil
}

// Payment returns the in-flight payment for an order.
func (g *Gateway) Payment(orderID string) (*Payment, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	open, ok := g.payments[strings.TrimSpace(orderID)]
	if !ok {
		return nil, false
	}
	return open.payment, true
}

// lookup hides another shopper's payment behind the same not-found answer.
func (g *Gateway) lookup(id backend.Identity, orderID string) (*Payment, error) {
	g.mu.Lock()
	open, ok := g.payments[strings.TrimSpace(orderID)]
	g.mu.Unlock()
	if !ok || !open.ownedBy(id) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "No payment is in progress for this order.")
	}
	return open.payment, nil
}

func (g *Gateway) complete(ctx context.Context, id backend.Identity, payment *Payment, result Result) Completion {
	orderID := payment.OrderID()
	ctx = g.logg.WithFields(ctx, map[string]any{
		"order_id":       orderID,
		"payment_status": string(result.Status),
		"transaction_id": result.TransactionID,
	})

	res := g.api.CompleteOrder(ctx, id, backend.CompleteOrderRequest{
		OrderID:         orderID,
		TransactionID:   result.TransactionID,
		PaymentStatus:   string(result.Status),
		Amount:          result.Amount,
		PaymentMethod:   string(result.Method),
		GatewayResponse: result.GatewayResponse,
	})

	g.mu.Lock()
	if open, ok := g.payments[orderID]; ok && open.payment == payment {
		delete(g.payments, orderID)
	}
	g.mu.Unlock()

	callbackStatus := string(result.Status)
	if !res.Success {
		callbackStatus = CallbackPending
		g.logg.Warn(g.logg.WithField(ctx, "reason", res.Message), "mockpay.complete_not_recorded")
	} else {
		g.logg.Info(ctx, "mockpay.completed")
	}

	return Completion{
		Result:      result,
		Recorded:    res.Success,
		RedirectURL: CallbackURL(orderID, callbackStatus),
	}
}

// CallbackURL is the storefront route a finished payment lands on.
func CallbackURL(orderID, status string) string {
	q := url.Values{}
	q.Set("orderId", orderID)
	q.Set("status", status)
	return CallbackPath + "?" + q.Encode()
}

func transitionError(err error) error {
	if errors.Is(err, ErrInvalidTransition) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "This payment can't do that right now.")
	}
	if errors.Is(err, ErrUnknownMethod) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Please choose a supported payment method.")
	}
	return err
}
