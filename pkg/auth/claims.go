package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ShopperClaims are the identity-provider claims the storefront reads from a bearer token.
type ShopperClaims struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// ShopperID prefers the provider's user_id claim and falls back to sub.
func (c *ShopperClaims) ShopperID() string {
	if c == nil {
		return ""
	}
	if id := strings.TrimSpace(c.UserID); id != "" {
		return id
	}
	return strings.TrimSpace(c.Subject)
}
