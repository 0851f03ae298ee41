// Package domain defines the session token model: short-lived signed access
// tokens and long-lived opaque refresh tokens that are stored hashed.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// TokenTypeBearer is the token type reported to clients.
const TokenTypeBearer = "bearer"

// RefreshToken is the stored form of an opaque refresh token. Only the SHA-256
// hash of the raw value is persisted.
//
// A token is ACTIVE until RevokedAt is set (terminal) or ExpiresAt passes.
// Expiry is evaluated at read time and never written back.
type RefreshToken struct {
	ID        uuid.UUID
	TokenHash string
	UserID    uuid.UUID
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// IsRevoked reports whether the token has been revoked.
func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// IsExpired reports whether the token expired at or before now.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsActive reports whether the token can still be used at now.
func (t *RefreshToken) IsActive(now time.Time) bool {
	return !t.IsRevoked() && !t.IsExpired(now)
}

// Claims are the verified contents of an access token.
type Claims struct {
	Subject   uuid.UUID
	Email     string
	Name      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenPair is returned by sign-up and sign-in. RefreshToken holds the raw
// value and is only ever returned here.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresAt    time.Time
}

// AccessTokenOutput is returned by a refresh.
type AccessTokenOutput struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// SignUpInput contains the data needed to register and log in a user.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
}

// SignInInput contains user credentials.
type SignInInput struct {
	Email    string
	Password string
}
