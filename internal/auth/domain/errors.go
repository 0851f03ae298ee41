package domain

import (
	"github.com/allisson/tasks/internal/errors"
)

// Authentication errors.
var (
	// ErrInvalidToken covers malformed, expired, revoked or unknown tokens.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid token")

	// ErrRefreshTokenNotFound indicates no stored refresh token matches the hash.
	ErrRefreshTokenNotFound = errors.Wrap(errors.ErrNotFound, "refresh token not found")

	// ErrMissingSigningKey indicates the access token secret is not configured.
	ErrMissingSigningKey = errors.Wrap(errors.ErrInvalidInput, "jwt secret key is required")
)
