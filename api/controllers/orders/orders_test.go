package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/internal/session"
	"github.com/angelmondragon/storefront/pkg/backend"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/types"
)

type stubOrdersAPI struct {
	list     []types.Order
	order    backend.Result[types.Order]
	lastID   string
	lastAuth backend.Identity
}

func (s *stubOrdersAPI) ListOrders(_ context.Context, id backend.Identity) backend.Result[[]types.Order] {
	s.lastAuth = id
	return backend.Result[[]types.Order]{Success: true, Data: s.list}
}

func (s *stubOrdersAPI) GetOrder(_ context.Context, id backend.Identity, orderID string) backend.Result[types.Order] {
	s.lastAuth = id
	s.lastID = orderID
	return s.order
}

type ordersEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Data    struct {
		ID         string        `json:"id"`
		Orders     []types.Order `json:"orders"`
		NextCursor string        `json:"nextCursor"`
	} `json:"data"`
}

func serveOrders(t *testing.T, api API, path string, id session.Identity) (*httptest.ResponseRecorder, ordersEnvelope) {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/api/orders", List(api, nil))
	r.Get("/api/orders/{orderId}", Detail(api, nil))

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), id))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	var env ordersEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, env
}

func TestListRequiresLogin(t *testing.T) {
	resp, env := serveOrders(t, &stubOrdersAPI{}, "/api/orders", session.Identity{SessionID: "s1"})
	if resp.Code != http.StatusUnauthorized || env.Code != string(pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected 401 got %d %s", resp.Code, env.Code)
	}
}

func TestListSortsNewestFirstAndFilters(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	api := &stubOrdersAPI{list: []types.Order{
		{ID: "o1", Status: types.OrderStatusDelivered, CreatedAt: base},
		{ID: "o2", Status: types.OrderStatusPending, CreatedAt: base.Add(48 * time.Hour)},
		{ID: "o3", Status: types.OrderStatusDelivered, CreatedAt: base.Add(24 * time.Hour)},
	}}
	shopper := session.Identity{Token: "tok", SessionID: "s1"}

	resp, env := serveOrders(t, api, "/api/orders", shopper)
	if resp.Code != http.StatusOK || len(env.Data.Orders) != 3 {
		t.Fatalf("unexpected list %d %+v", resp.Code, env.Data.Orders)
	}
	if env.Data.Orders[0].ID != "o2" || env.Data.Orders[2].ID != "o1" {
		t.Fatalf("expected newest first, got %s..%s", env.Data.Orders[0].ID, env.Data.Orders[2].ID)
	}
	if api.lastAuth.Token != "tok" {
		t.Fatalf("token should reach the backend")
	}

	_, env = serveOrders(t, api, "/api/orders?status=DELIVERED", shopper)
	if len(env.Data.Orders) != 2 || env.Data.Orders[0].ID != "o3" {
		t.Fatalf("unexpected filtered list %+v", env.Data.Orders)
	}
}

func TestListPagesWithCursor(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	api := &stubOrdersAPI{list: []types.Order{
		{ID: "o1", CreatedAt: base},
		{ID: "o2", CreatedAt: base.Add(time.Hour)},
		{ID: "o3", CreatedAt: base.Add(time.Hour)},
	}}
	shopper := session.Identity{Token: "tok"}

	_, env := serveOrders(t, api, "/api/orders?limit=2", shopper)
	if len(env.Data.Orders) != 2 || env.Data.Orders[0].ID != "o3" || env.Data.Orders[1].ID != "o2" {
		t.Fatalf("unexpected first page %+v", env.Data.Orders)
	}
	if env.Data.NextCursor == "" {
		t.Fatalf("expected a next cursor")
	}

	_, env = serveOrders(t, api, "/api/orders?limit=2&cursor="+env.Data.NextCursor, shopper)
	if len(env.Data.Orders) != 1 || env.Data.Orders[0].ID != "o1" || env.Data.NextCursor != "" {
		t.Fatalf("unexpected last page %+v next=%q", env.Data.Orders, env.Data.NextCursor)
	}

	resp, _ := serveOrders(t, api, "/api/orders?limit=0", shopper)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for limit=0 got %d", resp.Code)
	}
	resp, _ = serveOrders(t, api, "/api/orders?cursor=%25%25", shopper)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a garbled cursor got %d", resp.Code)
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	resp, _ := serveOrders(t, &stubOrdersAPI{}, "/api/orders?status=lost", session.Identity{Token: "tok"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestDetail(t *testing.T) {
	api := &stubOrdersAPI{order: backend.Result[types.Order]{Success: true, Data: types.Order{ID: "o9", Status: types.OrderStatusConfirmed}}}
	resp, env := serveOrders(t, api, "/api/orders/o9", session.Identity{Token: "tok"})
	if resp.Code != http.StatusOK || env.Data.ID != "o9" {
		t.Fatalf("unexpected detail %d %+v", resp.Code, env.Data)
	}
	if api.lastID != "o9" {
		t.Fatalf("expected order id passed through, got %q", api.lastID)
	}
}

func TestDetailSurfacesBackendRejection(t *testing.T) {
	api := &stubOrdersAPI{order: backend.Result[types.Order]{Message: "Order not found", Code: pkgerrors.CodeNotFound}}
	resp, env := serveOrders(t, api, "/api/orders/missing", session.Identity{Token: "tok"})
	if resp.Code != http.StatusNotFound || env.Message != "Order not found" {
		t.Fatalf("unexpected response %d %q", resp.Code, env.Message)
	}
}
