package backend

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront/pkg/types"
)

func (c *Client) ListAddresses(ctx context.Context, id Identity) Result[[]types.Address] {
	return call[[]types.Address](ctx, c, request{
		endpoint: "addresses.list",
		method:   http.MethodGet,
		path:     "/addresses",
		identity: id,
	}, nil)
}

func (c *Client) CreateAddress(ctx context.Context, id Identity, addr types.Address) Result[types.Address] {
	return call[types.Address](ctx, c, request{
		endpoint: "addresses.create",
		method:   http.MethodPost,
		path:     "/addresses",
		body:     addr,
		identity: id,
	}, nil)
}

func (c *Client) UpdateAddress(ctx context.Context, id Identity, addressID string, addr types.Address) Result[types.Address] {
	return call[types.Address](ctx, c, request{
		endpoint: "addresses.update",
		method:   http.MethodPut,
		path:     itemPath("/addresses", addressID),
		body:     addr,
		identity: id,
	}, nil)
}

func (c *Client) DeleteAddress(ctx context.Context, id Identity, addressID string) Result[Ack] {
	return call[Ack](ctx, c, request{
		endpoint: "addresses.delete",
		method:   http.MethodDelete,
		path:     itemPath("/addresses", addressID),
		identity: id,
	}, nil)
}
