package orders

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/pkg/backend"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/pagination"
	"github.com/angelmondragon/storefront/pkg/types"
)

// API is the backend surface behind the order history routes.
type API interface {
	ListOrders(ctx context.Context, id backend.Identity) backend.Result[[]types.Order]
	GetOrder(ctx context.Context, id backend.Identity, orderID string) backend.Result[types.Order]
}

var knownStatuses = map[types.OrderStatus]struct{}{
	types.OrderStatusPending:   {},
	types.OrderStatusConfirmed: {},
	types.OrderStatusCancelled: {},
	types.OrderStatusFailed:    {},
	types.OrderStatusShipped:   {},
	types.OrderStatusDelivered: {},
}

// List returns the signed-in shopper's orders, newest first. ?status= narrows the list;
// ?limit= and ?cursor= page through it.
func List(api API, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if api == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders api unavailable"))
			return
		}

		id, err := shopper(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := parseStatusFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor, err := pagination.ParseCursor(r.URL.Query().Get("cursor"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor"))
			return
		}

		res := api.ListOrders(r.Context(), id)
		if !res.Success {
			responses.WriteError(r.Context(), logg, w, res.Err())
			return
		}

		list := make([]types.Order, 0, len(res.Data))
		for _, order := range res.Data {
			if status != "" && order.Status != status {
				continue
			}
			list = append(list, order)
		}
		sort.SliceStable(list, func(i, j int) bool {
			if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
				return list[i].CreatedAt.After(list[j].CreatedAt)
			}
			return list[i].ID > list[j].ID
		})

		page, next := pagination.Page(list, cursor, limit, orderKey)
		body := map[string]any{"orders": page}
		if next != "" {
			body["nextCursor"] = next
		}
		responses.WriteSuccess(w, body)
	}
}

// Detail returns one order of the signed-in shopper.
func Detail(api API, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if api == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders api unavailable"))
			return
		}

		id, err := shopper(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
		if orderID == "" || len(orderID) > 128 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id"))
			return
		}

		res := api.GetOrder(r.Context(), id, orderID)
		if !res.Success {
			responses.WriteError(r.Context(), logg, w, res.Err())
			return
		}
		responses.WriteSuccess(w, res.Data)
	}
}

func orderKey(o types.Order) (time.Time, string) {
	return o.CreatedAt, o.ID
}

func shopper(r *http.Request) (backend.Identity, error) {
	id := middleware.IdentityFromContext(r.Context())
	if !id.Authenticated() {
		return backend.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "Please log in to see your orders.")
	}
	return id.Backend(), nil
}

func parseStatusFilter(r *http.Request) (types.OrderStatus, error) {
	raw := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status")))
	if raw == "" {
		return "", nil
	}
	status := types.OrderStatus(raw)
	if _, ok := knownStatuses[status]; !ok {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unknown order status").
			WithDetails(map[string]string{"status": raw})
	}
	return status, nil
}
