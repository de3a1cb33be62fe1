package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/api/middleware"
	cartsvc "github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/loading"
	"github.com/angelmondragon/storefront/internal/session"
	pkgauth "github.com/angelmondragon/storefront/pkg/auth"
	"github.com/angelmondragon/storefront/pkg/backend"
	"github.com/angelmondragon/storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/types"
)

// fakeBackend answers every backend call the controllers make from in-memory state.
type fakeBackend struct {
	mu sync.Mutex

	cartID    string
	items     []types.CartItem
	merges    []string
	addresses []types.Address
	wishlist  []types.WishlistItem
	profile   types.UserProfile
	products  []types.Product
	lastQuery backend.ProductQuery
	orders    map[string]types.Order
	completed []backend.CompleteOrderRequest

	quote         types.PricingBreakdown
	initiated     []backend.InitiateOrderRequest
	initiateReply backend.Result[backend.InitiateOrderResponse]
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		cartID: "cart-1",
		orders: map[string]types.Order{},
		quote: types.PricingBreakdown{
			Subtotal: decimal.NewFromInt(1000),
			Shipping: decimal.NewFromInt(50),
			GST:      decimal.NewFromInt(180),
			Total:    decimal.NewFromInt(1230),
		},
		initiateReply: backend.Result[backend.InitiateOrderResponse]{
			Success: true,
			Data:    backend.InitiateOrderResponse{OrderID: "ord-1"},
		},
	}
}

func (f *fakeBackend) withItem(quantity int) *fakeBackend {
	f.items = append(f.items, types.CartItem{
		ID:               "ci-1",
		ProductID:        "p-1",
		ProductVariantID: "v-1",
		Quantity:         quantity,
		Price:            decimal.NewFromInt(500),
		Name:             "Linen Shirt",
		Type:             types.ProductTypeClothing,
		Variant:          types.ClothingVariant{Size: "M"},
	})
	return f
}

func (f *fakeBackend) GetCart(context.Context, backend.Identity) backend.Result[backend.Cart] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return backend.Result[backend.Cart]{Success: true, Data: backend.Cart{CartID: f.cartID, Items: append([]types.CartItem{}, f.items...)}}
}

func (f *fakeBackend) AddCartItem(context.Context, backend.Identity, backend.AddCartItemRequest) backend.Result[backend.Ack] {
	return backend.Result[backend.Ack]{Success: true}
}

func (f *fakeBackend) RemoveCartItem(context.Context, backend.Identity, string) backend.Result[backend.Ack] {
	return backend.Result[backend.Ack]{Success: true}
}

func (f *fakeBackend) UpdateCartItem(context.Context, backend.Identity, string, backend.UpdateCartItemRequest) backend.Result[backend.Ack] {
	return backend.Result[backend.Ack]{Success: true}
}

func (f *fakeBackend) MergeGuestCart(_ context.Context, token, sessionID string) backend.Result[backend.Ack] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.merges = append(f.merges, token+"|"+sessionID)
	return backend.Result[backend.Ack]{Success: true}
}

func (f *fakeBackend) AddToWishlist(context.Context, backend.Identity, string) backend.Result[backend.Ack] {
	return backend.Result[backend.Ack]{Success: true}
}

func (f *fakeBackend) GetCartPricing(context.Context, backend.Identity, backend.PricingRequest) backend.Result[types.PricingBreakdown] {
	return backend.Result[types.PricingBreakdown]{Success: true, Data: f.quote}
}

func (f *fakeBackend) InitiateOrder(_ context.Context, _ backend.Identity, req backend.InitiateOrderRequest) backend.Result[backend.InitiateOrderResponse] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initiated = append(f.initiated, req)
	return f.initiateReply
}

func (f *fakeBackend) ListAddresses(context.Context, backend.Identity) backend.Result[[]types.Address] {
	return backend.Result[[]types.Address]{Success: true, Data: f.addresses}
}

func (f *fakeBackend) CreateAddress(_ context.Context, _ backend.Identity, addr types.Address) backend.Result[types.Address] {
	addr.ID = "addr-new"
	f.addresses = append(f.addresses, addr)
	return backend.Result[types.Address]{Success: true, Data: addr}
}

func (f *fakeBackend) UpdateAddress(_ context.Context, _ backend.Identity, addressID string, addr types.Address) backend.Result[types.Address] {
	for i, existing := range f.addresses {
		if existing.ID == addressID {
			f.addresses[i] = addr
			return backend.Result[types.Address]{Success: true, Data: addr}
		}
	}
	return backend.Result[types.Address]{Message: "Address not found", Code: pkgerrors.CodeNotFound}
}

func (f *fakeBackend) DeleteAddress(_ context.Context, _ backend.Identity, addressID string) backend.Result[backend.Ack] {
	kept := f.addresses[:0]
	for _, existing := range f.addresses {
		if existing.ID != addressID {
			kept = append(kept, existing)
		}
	}
	f.addresses = kept
	return backend.Result[backend.Ack]{Success: true}
}

func (f *fakeBackend) ListWishlist(context.Context, backend.Identity) backend.Result[[]types.WishlistItem] {
	return backend.Result[[]types.WishlistItem]{Success: true, Data: f.wishlist}
}

func (f *fakeBackend) RemoveFromWishlist(_ context.Context, _ backend.Identity, productID string) backend.Result[backend.Ack] {
	kept := f.wishlist[:0]
	for _, item := range f.wishlist {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	f.wishlist = kept
	return backend.Result[backend.Ack]{Success: true}
}

func (f *fakeBackend) GetProfile(context.Context, backend.Identity) backend.Result[types.UserProfile] {
	return backend.Result[types.UserProfile]{Success: true, Data: f.profile}
}

func (f *fakeBackend) UpdateProfile(_ context.Context, _ backend.Identity, update backend.ProfileUpdate) backend.Result[types.UserProfile] {
	if update.Name != "" {
		f.profile.Name = update.Name
	}
	if update.Phone != "" {
		f.profile.Phone = update.Phone
	}
	return backend.Result[types.UserProfile]{Success: true, Data: f.profile}
}

func (f *fakeBackend) ListProducts(_ context.Context, _ backend.Identity, q backend.ProductQuery) backend.Result[[]types.Product] {
	f.lastQuery = q
	return backend.Result[[]types.Product]{Success: true, Data: f.products}
}

func (f *fakeBackend) GetProduct(_ context.Context, _ backend.Identity, productID string) backend.Result[types.Product] {
	for _, p := range f.products {
		if p.ID == productID {
			return backend.Result[types.Product]{Success: true, Data: p}
		}
	}
	return backend.Result[types.Product]{Message: "Product not found", Code: pkgerrors.CodeNotFound}
}

func (f *fakeBackend) ListCategories(context.Context, backend.Identity) backend.Result[[]types.Category] {
	return backend.Result[[]types.Category]{Success: true}
}

func (f *fakeBackend) GetOrder(_ context.Context, _ backend.Identity, orderID string) backend.Result[types.Order] {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok {
		return backend.Result[types.Order]{Message: "Order not found", Code: pkgerrors.CodeNotFound}
	}
	return backend.Result[types.Order]{Success: true, Data: order}
}

func (f *fakeBackend) CompleteOrder(_ context.Context, _ backend.Identity, req backend.CompleteOrderRequest) backend.Result[backend.Ack] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, req)
	return backend.Result[backend.Ack]{Success: true}
}

func newRegistry(api cartsvc.API) *cartsvc.Registry {
	return cartsvc.NewRegistry(api, loading.NewGate(), logger.Nop(), config.CartConfig{})
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func (e envelope) decode(t *testing.T, dest any) {
	t.Helper()
	if err := json.Unmarshal(e.Data, dest); err != nil {
		t.Fatalf("decode data %s: %v", e.Data, err)
	}
}

// serve runs handler with the identity already resolved, the way the router does.
func serve(t *testing.T, handler http.Handler, method, target, body string, id session.Identity) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req = req.WithContext(middleware.WithIdentity(req.Context(), id))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	var env envelope
	if resp.Code >= 300 && resp.Code < 400 {
		return resp, env
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, env
}

func signedToken(t *testing.T, userID string, expires time.Time) string {
	t.Helper()
	claims := pkgauth.ShopperClaims{
		UserID:           userID,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(expires)},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}
