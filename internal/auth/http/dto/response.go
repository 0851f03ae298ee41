package dto

import (
	"time"

	authDomain "github.com/allisson/tasks/internal/auth/domain"
)

// TokenPairResponse is returned by sign-up and sign-in. The refresh token is
// only ever shown here.
type TokenPairResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"` //nolint:gosec // returned once on issuance
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func MapTokenPairToResponse(pair *authDomain.TokenPair) TokenPairResponse {
	return TokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresAt:    pair.ExpiresAt,
	}
}

// AccessTokenResponse is returned by a refresh.
type AccessTokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func MapAccessTokenToResponse(output *authDomain.AccessTokenOutput) AccessTokenResponse {
	return AccessTokenResponse{
		AccessToken: output.AccessToken,
		TokenType:   output.TokenType,
		ExpiresAt:   output.ExpiresAt,
	}
}

// MessageResponse acknowledges an operation without a resource body.
type MessageResponse struct {
	Message string `json:"message"`
}

// RevokeAllResponse reports how many refresh tokens were revoked.
type RevokeAllResponse struct {
	Revoked int64 `json:"revoked"`
}
