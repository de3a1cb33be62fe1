package checkout

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/angelmondragon/storefront/internal/pricing"
	"github.com/angelmondragon/storefront/pkg/backend"
	pkgcheckout "github.com/angelmondragon/storefront/pkg/checkout"
	"github.com/angelmondragon/storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/types"
	"golang.org/x/sync/errgroup"
)

const (
	msgRedirecting        = "Redirecting you to payment."
	msgPaymentUnavailable = "We couldn't open the payment page. Please try again."
	msgUnexpectedPricing  = "We couldn't price your cart right now. Please try again."
)

// API is the backend surface used by checkout.
type API interface {
	InitiateOrder(ctx context.Context, id backend.Identity, req backend.InitiateOrderRequest) backend.Result[backend.InitiateOrderResponse]
	GetCartPricing(ctx context.Context, id backend.Identity, req backend.PricingRequest) backend.Result[types.PricingBreakdown]
	ListAddresses(ctx context.Context, id backend.Identity) backend.Result[[]types.Address]
}

// Request is what the shopper submits to place an order.
type Request struct {
	CartID            string `json:"cartId"`
	ShippingAddressID string `json:"shippingAddressId"`
	BillingAddressID  string `json:"billingAddressId,omitempty"`
	CouponCode        string `json:"couponCode,omitempty" validate:"omitempty,max=64"`
	Notes             string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

func (r Request) normalized() Request {
	r.CartID = strings.TrimSpace(r.CartID)
	r.ShippingAddressID = strings.TrimSpace(r.ShippingAddressID)
	r.BillingAddressID = strings.TrimSpace(r.BillingAddressID)
	r.CouponCode = strings.TrimSpace(r.CouponCode)
	r.Notes = strings.TrimSpace(r.Notes)
	if r.BillingAddressID == "" {
		r.BillingAddressID = r.ShippingAddressID
	}
	return r
}

// Outcome is the result of an initiation attempt. On failure nothing navigates and
// Message is what the shopper sees.
type Outcome struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	RedirectURL string `json:"redirectUrl,omitempty"`
	OrderID     string `json:"orderId,omitempty"`
	Err         error  `json:"-"`
}

// ViewRequest selects the cart, coupon and address to price.
type ViewRequest struct {
	CartID     string
	CouponCode string
	AddressID  string
}

// View is everything the checkout screen renders.
type View struct {
	CartID            string                  `json:"cartId"`
	Pricing           *types.PricingBreakdown `json:"pricing,omitempty"`
	Addresses         []types.Address         `json:"addresses"`
	SelectedAddressID string                  `json:"selectedAddressId,omitempty"`
	CanPlaceOrder     bool                    `json:"canPlaceOrder"`
	Blocker           string                  `json:"blocker,omitempty"`
}

// Service runs checkout orchestration against the backend.
type Service interface {
	Precheck(id backend.Identity, req Request, quote *types.PricingBreakdown) error
	Initiate(ctx context.Context, id backend.Identity, req Request, quote *types.PricingBreakdown) Outcome
	LoadView(ctx context.Context, id backend.Identity, req ViewRequest) (View, error)
}

type service struct {
	api         API
	logg        *logger.Logger
	mockGateway bool
	publicURL   string
}

func NewService(api API, logg *logger.Logger, cfg config.CheckoutConfig, publicURL string) (Service, error) {
	if api == nil {
		return nil, fmt.Errorf("backend api required")
	}
	if cfg.MockGatewayEnabled && strings.TrimSpace(publicURL) == "" {
		return nil, fmt.Errorf("public url required when the mock gateway is enabled")
	}
	return &service{
		api:         api,
		logg:        logg,
		mockGateway: cfg.MockGatewayEnabled,
		publicURL:   strings.TrimRight(strings.TrimSpace(publicURL), "/"),
	}, nil
}

// Precheck runs the client-side rules without touching the network.
func (s *service) Precheck(id backend.Identity, req Request, quote *types.PricingBreakdown) error {
	req = req.normalized()
	in := pkgcheckout.PreconditionInput{
		Authenticated: id.Authenticated(),
		CartID:        req.CartID,
		AddressID:     req.ShippingAddressID,
	}
	if quote != nil {
		shipping := quote.Shipping
		in.Shipping = &shipping
	}
	return pkgcheckout.ValidatePreconditions(in)
}

func (s *service) Initiate(ctx context.Context, id backend.Identity, req Request, quote *types.PricingBreakdown) Outcome {
	req = req.normalized()
	if err := s.Precheck(id, req, quote); err != nil {
		if p, ok := pkgcheckout.Violated(err); ok {
			s.logg.Info(s.logg.WithField(ctx, "precondition", string(p)), "checkout.blocked")
		}
		return Outcome{Message: pkgerrors.As(err).Message(), Err: err}
	}

	ctx = s.logg.WithCartID(ctx, req.CartID)
	res := s.api.InitiateOrder(ctx, id, backend.InitiateOrderRequest{
		CartID:            req.CartID,
		ShippingAddressID: req.ShippingAddressID,
		BillingAddressID:  req.BillingAddressID,
		CouponCode:        req.CouponCode,
		Notes:             req.Notes,
	})
	if !res.Success {
		return Outcome{Message: res.Message, Err: res.Err()}
	}

	message := res.Message
	if message == "" {
		message = msgRedirecting
	}
	orderID := strings.TrimSpace(res.Data.OrderID)

	switch {
	case strings.TrimSpace(res.Data.CheckoutPageURL) != "":
		s.logg.Info(s.logg.WithField(ctx, "order_id", orderID), "checkout.redirect_hosted")
		return Outcome{Success: true, Message: message, RedirectURL: strings.TrimSpace(res.Data.CheckoutPageURL), OrderID: orderID}
	case orderID != "" && s.mockGateway:
		s.logg.Info(s.logg.WithField(ctx, "order_id", orderID), "checkout.redirect_mock_gateway")
		return Outcome{Success: true, Message: message, RedirectURL: s.mockGatewayURL(orderID), OrderID: orderID}
	default:
		err := pkgerrors.New(pkgerrors.CodeDependency, msgPaymentUnavailable).Public()
		s.logg.Warn(s.logg.WithField(ctx, "order_id", orderID), "checkout.no_payment_page")
		return Outcome{Message: msgPaymentUnavailable, OrderID: orderID, Err: err}
	}
}

// LoadView prices the cart and loads the address book. With an explicit address both
// calls run concurrently; otherwise the address book is read first so the default
// address can be priced.
func (s *service) LoadView(ctx context.Context, id backend.Identity, req ViewRequest) (View, error) {
	view := View{
		CartID:            strings.TrimSpace(req.CartID),
		Addresses:         []types.Address{},
		SelectedAddressID: strings.TrimSpace(req.AddressID),
	}

	if view.SelectedAddressID != "" {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			book, err := s.loadAddresses(gctx, id)
			view.Addresses = book
			return err
		})
		g.Go(func() error {
			quote, err := s.price(gctx, id, view.CartID, req.CouponCode, view.SelectedAddressID)
			view.Pricing = quote
			return err
		})
		if err := g.Wait(); err != nil {
			return View{}, err
		}
		if _, ok := types.FindAddress(view.Addresses, view.SelectedAddressID); !ok && id.Authenticated() {
			return View{}, pkgerrors.New(pkgerrors.CodeNotFound, "The selected address no longer exists.")
		}
	} else {
		book, err := s.loadAddresses(ctx, id)
		if err != nil {
			return View{}, err
		}
		view.Addresses = book
		if def, ok := types.DefaultAddress(book); ok {
			view.SelectedAddressID = def.ID
		}
		quote, err := s.price(ctx, id, view.CartID, req.CouponCode, view.SelectedAddressID)
		if err != nil {
			return View{}, err
		}
		view.Pricing = quote
	}

	blocker := s.Precheck(id, Request{CartID: view.CartID, ShippingAddressID: view.SelectedAddressID}, view.Pricing)
	view.CanPlaceOrder = blocker == nil
	if blocker != nil {
		view.Blocker = pkgerrors.As(blocker).Message()
	}
	return view, nil
}

// loadAddresses returns an empty book for anonymous shoppers.
func (s *service) loadAddresses(ctx context.Context, id backend.Identity) ([]types.Address, error) {
	if !id.Authenticated() {
		return []types.Address{}, nil
	}
	res := s.api.ListAddresses(ctx, id)
	if !res.Success {
		return nil, res.Err()
	}
	if res.Data == nil {
		return []types.Address{}, nil
	}
	return res.Data, nil
}

// price returns nil without a cart.
func (s *service) price(ctx context.Context, id backend.Identity, cartID, coupon, addressID string) (*types.PricingBreakdown, error) {
	if cartID == "" {
		return nil, nil
	}
	res := s.api.GetCartPricing(ctx, id, backend.PricingRequest{
		CartID:     cartID,
		CouponCode: strings.TrimSpace(coupon),
		AddressID:  addressID,
	})
	if !res.Success {
		return nil, res.Err()
	}
	if err := pricing.Validate(res.Data); err != nil {
		s.logg.Error(s.logg.WithCartID(ctx, cartID), "checkout.invalid_pricing", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, msgUnexpectedPricing).Public()
	}
	quote, drifted := pricing.Normalize(res.Data)
	if drifted {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"cart_id":      cartID,
			"quoted_total": res.Data.Total.String(),
			"total":        quote.Total.String(),
		}), "checkout.pricing_total_drift")
	}
	return &quote, nil
}

func (s *service) mockGatewayURL(orderID string) string {
	return s.publicURL + "/mock-payment/" + url.PathEscape(orderID)
}
