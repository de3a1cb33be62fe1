package backend

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront/pkg/types"
)

// ProfileUpdate holds the editable profile fields.
type ProfileUpdate struct {
	Name  string `json:"name,omitempty" validate:"omitempty,max=120"`
	Phone string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

func (c *Client) GetProfile(ctx context.Context, id Identity) Result[types.UserProfile] {
	return call[types.UserProfile](ctx, c, request{
		endpoint: "users.me",
		method:   http.MethodGet,
		path:     "/users/me",
		identity: id,
	}, nil)
}

func (c *Client) UpdateProfile(ctx context.Context, id Identity, update ProfileUpdate) Result[types.UserProfile] {
	return call[types.UserProfile](ctx, c, request{
		endpoint: "users.update",
		method:   http.MethodPut,
		path:     "/users/me",
		body:     update,
		identity: id,
	}, nil)
}
