package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	apperrors "github.com/allisson/tasks/internal/errors"
)

const refreshTokenBytes = 32

type tokenService struct{}

// NewTokenService creates a TokenService backed by crypto/rand and SHA-256.
func NewTokenService() TokenService {
	return &tokenService{}
}

// GenerateToken creates a 256-bit random token encoded as unpadded base64url.
func (t *tokenService) GenerateToken() (string, string, error) {
	randomBytes := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random token")
	}

	plainToken := base64.RawURLEncoding.EncodeToString(randomBytes)
	return plainToken, t.HashToken(plainToken), nil
}

// HashToken returns the lowercase hex SHA-256 of the token.
func (t *tokenService) HashToken(plainToken string) string {
	hash := sha256.Sum256([]byte(plainToken))
	return hex.EncodeToString(hash[:])
}
