package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/pkg/backend"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/types"
)

// Catalog is the backend surface behind the product routes.
type Catalog interface {
	ListProducts(ctx context.Context, id backend.Identity, q backend.ProductQuery) backend.Result[[]types.Product]
	GetProduct(ctx context.Context, id backend.Identity, productID string) backend.Result[types.Product]
	ListCategories(ctx context.Context, id backend.Identity) backend.Result[[]types.Category]
}

// ProductList accepts ?category=, ?type=clothing|perfume and ?q= filters.
func ProductList(api Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		query := r.URL.Query()

		productType := types.ProductType(strings.ToLower(strings.TrimSpace(query.Get("type"))))
		if productType != "" && !productType.IsValid() {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "type must be clothing or perfume"))
			return
		}

		id := middleware.IdentityFromContext(ctx)
		res := api.ListProducts(ctx, id.Backend(), backend.ProductQuery{
			Category: validators.SanitizeString(query.Get("category"), 64),
			Type:     productType,
			Search:   validators.SanitizeString(query.Get("q"), 100),
		})
		if !res.Success {
			responses.WriteError(ctx, logg, w, res.Err())
			return
		}
		products := res.Data
		if products == nil {
			products = []types.Product{}
		}
		responses.WriteSuccess(w, map[string]any{"products": products})
	}
}

func ProductDetail(api Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		productID, err := pathID(r, "productId", "product id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		id := middleware.IdentityFromContext(ctx)
		res := api.GetProduct(ctx, id.Backend(), productID)
		if !res.Success {
			responses.WriteError(ctx, logg, w, res.Err())
			return
		}
		responses.WriteSuccess(w, res.Data)
	}
}

func CategoryList(api Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := middleware.IdentityFromContext(ctx)
		res := api.ListCategories(ctx, id.Backend())
		if !res.Success {
			responses.WriteError(ctx, logg, w, res.Err())
			return
		}
		categories := res.Data
		if categories == nil {
			categories = []types.Category{}
		}
		responses.WriteSuccess(w, map[string]any{"categories": categories})
	}
}
