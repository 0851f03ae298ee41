// Package service provides the token primitives used by the auth use cases:
// signed access tokens, opaque refresh tokens and the KMS keeper that unwraps
// the signing secret.
package service

import (
	"context"

	authDomain "github.com/allisson/tasks/internal/auth/domain"
)

// TokenService generates opaque refresh tokens and hashes them for storage.
type TokenService interface {
	// GenerateToken returns a random plain token and its SHA-256 hex hash.
	// The plain token is shown to the client once and never stored.
	GenerateToken() (plainToken string, tokenHash string, err error)

	// HashToken hashes a plain token the same way GenerateToken does.
	HashToken(plainToken string) string
}

// AccessTokenService signs and verifies short-lived access tokens.
type AccessTokenService interface {
	// Sign issues a token for the given claims. IssuedAt and ExpiresAt are
	// set by the service.
	Sign(claims authDomain.Claims) (token string, claimsOut authDomain.Claims, err error)

	// Verify checks signature, algorithm and expiry. Any failure returns
	// authDomain.ErrInvalidToken.
	Verify(token string) (*authDomain.Claims, error)
}

// KMSKeeper is the subset of *secrets.Keeper used to wrap the signing secret.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// KMSService opens keepers for a gocloud.dev secrets URI.
type KMSService interface {
	OpenKeeper(ctx context.Context, keyURI string) (KMSKeeper, error)
}
