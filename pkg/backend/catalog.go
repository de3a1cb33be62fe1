package backend

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/angelmondragon/storefront/pkg/types"
)

// ProductQuery filters the product listing.
type ProductQuery struct {
	Category string
	Type     types.ProductType
	Search   string
}

func (q ProductQuery) values() url.Values {
	values := url.Values{}
	if v := strings.TrimSpace(q.Category); v != "" {
		values.Set("category", v)
	}
	if q.Type.IsValid() {
		values.Set("productType", string(q.Type))
	}
	if v := strings.TrimSpace(q.Search); v != "" {
		values.Set("search", v)
	}
	return values
}

func (c *Client) ListProducts(ctx context.Context, id Identity, q ProductQuery) Result[[]types.Product] {
	return call[[]types.Product](ctx, c, request{
		endpoint: "products.list",
		method:   http.MethodGet,
		path:     "/products",
		query:    q.values(),
		identity: id,
	}, nil)
}

func (c *Client) GetProduct(ctx context.Context, id Identity, productID string) Result[types.Product] {
	return call[types.Product](ctx, c, request{
		endpoint: "products.get",
		method:   http.MethodGet,
		path:     itemPath("/products", productID),
		identity: id,
	}, nil)
}

func (c *Client) ListCategories(ctx context.Context, id Identity) Result[[]types.Category] {
	return call[[]types.Category](ctx, c, request{
		endpoint: "categories.list",
		method:   http.MethodGet,
		path:     "/categories",
		identity: id,
	}, nil)
}
