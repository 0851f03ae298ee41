package service

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	authDomain "github.com/allisson/tasks/internal/auth/domain"
	apperrors "github.com/allisson/tasks/internal/errors"
)

const (
	signingKeySize = 32
	signingKeyInfo = "tasks/access-token/hs256"
)

type accessClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// JWTOption configures a JWTService.
type JWTOption func(*JWTService)

// WithTimeFunc overrides the clock used to stamp and validate tokens.
func WithTimeFunc(timeFunc func() time.Time) JWTOption {
	return func(s *JWTService) {
		s.timeFunc = timeFunc
	}
}

// JWTService signs HS256 access tokens with a key derived from the
// configured secret through HKDF-SHA256.
type JWTService struct {
	signingKey []byte
	ttl        time.Duration
	timeFunc   func() time.Time
}

var _ AccessTokenService = (*JWTService)(nil)

// NewJWTService creates a JWTService. The secret must not be empty.
func NewJWTService(secret []byte, ttl time.Duration, opts ...JWTOption) (*JWTService, error) {
	if len(secret) == 0 {
		return nil, authDomain.ErrMissingSigningKey
	}
	if ttl <= 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "access token ttl must be positive")
	}

	key, err := deriveSigningKey(secret)
	if err != nil {
		return nil, err
	}

	s := &JWTService{
		signingKey: key,
		ttl:        ttl,
		timeFunc:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func deriveSigningKey(secret []byte) ([]byte, error) {
	key := make([]byte, signingKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(signingKeyInfo)), key); err != nil {
		return nil, apperrors.Wrap(err, "failed to derive signing key")
	}
	return key, nil
}

// Sign issues an access token for the claims subject. The returned claims
// carry the issued-at and expiry exactly as encoded (second precision).
func (s *JWTService) Sign(claims authDomain.Claims) (string, authDomain.Claims, error) {
	now := s.timeFunc().UTC().Truncate(time.Second)
	claims.IssuedAt = now
	claims.ExpiresAt = now.Add(s.ttl)

	jti, err := uuid.NewV7()
	if err != nil {
		return "", authDomain.Claims{}, apperrors.Wrap(err, "failed to generate token id")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		Email: claims.Email,
		Name:  claims.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject.String(),
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
			ID:        jti.String(),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", authDomain.Claims{}, apperrors.Wrap(err, "failed to sign access token")
	}
	return signed, claims, nil
}

// Verify parses and validates an access token. It never touches storage.
func (s *JWTService) Verify(tokenString string) (*authDomain.Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&accessClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.timeFunc),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.Wrap(authDomain.ErrInvalidToken, "token expired")
		}
		return nil, authDomain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return nil, authDomain.ErrInvalidToken
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, authDomain.ErrInvalidToken
	}

	out := &authDomain.Claims{
		Subject:   subject,
		Email:     claims.Email,
		Name:      claims.Name,
		ExpiresAt: claims.ExpiresAt.UTC(),
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.UTC()
	}
	return out, nil
}
