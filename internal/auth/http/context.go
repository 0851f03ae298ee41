// Package http provides the authentication endpoints and the middleware that
// protects the rest of the API.
package http

import (
	"context"

	authDomain "github.com/allisson/tasks/internal/auth/domain"
)

type claimsKey struct{}

// WithClaims stores verified access token claims in the context.
func WithClaims(ctx context.Context, claims *authDomain.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// GetClaims returns the claims stored by AuthenticationMiddleware.
func GetClaims(ctx context.Context) (*authDomain.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*authDomain.Claims)
	return claims, ok && claims != nil
}
