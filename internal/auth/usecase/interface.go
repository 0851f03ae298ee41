// Package usecase implements sign-up, sign-in and the refresh token lifecycle.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/tasks/internal/auth/domain"
	userDomain "github.com/allisson/tasks/internal/user/domain"
)

// RefreshTokenRepository persists hashed refresh tokens. Implementations
// must honour a transaction carried in the context.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *authDomain.RefreshToken) error

	// GetByTokenHash returns ErrRefreshTokenNotFound when no row matches.
	GetByTokenHash(ctx context.Context, tokenHash string) (*authDomain.RefreshToken, error)

	Revoke(ctx context.Context, id uuid.UUID, revokedAt time.Time) error

	RevokeAllByUserID(ctx context.Context, userID uuid.UUID, revokedAt time.Time) (int64, error)
}

// TokenUseCase issues, verifies and revokes session tokens.
type TokenUseCase interface {
	// SignUp registers a user and issues a token pair in one transaction.
	// A duplicate email returns userDomain.ErrUserAlreadyExists.
	SignUp(ctx context.Context, input authDomain.SignUpInput) (*authDomain.TokenPair, error)

	// SignIn checks credentials and issues a new token pair. An unknown email
	// and a wrong password both return userDomain.ErrInvalidCredentials.
	SignIn(ctx context.Context, input authDomain.SignInInput) (*authDomain.TokenPair, error)

	// IssueTokens signs an access token and stores the hash of a new refresh
	// token. The raw refresh token is only available in the returned pair.
	IssueTokens(ctx context.Context, user *userDomain.User) (*authDomain.TokenPair, error)

	// Refresh returns a new access token for an active refresh token. The
	// refresh token itself is not rotated.
	Refresh(ctx context.Context, refreshToken string) (*authDomain.AccessTokenOutput, error)

	// Revoke marks an active refresh token as revoked. Returns ErrInvalidToken
	// when the token is unknown, expired or already revoked.
	Revoke(ctx context.Context, refreshToken string) error

	// RevokeAll revokes every active refresh token of the user and returns
	// the number of tokens revoked.
	RevokeAll(ctx context.Context, userID uuid.UUID) (int64, error)

	// VerifyAccess validates an access token without touching storage.
	VerifyAccess(ctx context.Context, accessToken string) (*authDomain.Claims, error)

	// VerifyRefresh returns the stored record of an active refresh token.
	VerifyRefresh(ctx context.Context, refreshToken string) (*authDomain.RefreshToken, error)
}
