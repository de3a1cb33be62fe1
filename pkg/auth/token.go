package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken   = errors.New("token is required")
	ErrMalformedToken = errors.New("token is not a valid jwt")
	ErrTokenExpired   = errors.New("token has expired")
)

// InspectToken decodes the claims of a provider-issued token without verifying its
// signature. The backend remains the verifier; the storefront only needs the shopper id
// for logging and a cheap expiry check.
func InspectToken(tokenString string, now time.Time) (*ShopperClaims, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tokenString), "Bearer "))
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	claims := &ShopperClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	if claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}
	return claims, nil
}
