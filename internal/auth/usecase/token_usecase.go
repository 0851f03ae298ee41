package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/tasks/internal/auth/domain"
	authService "github.com/allisson/tasks/internal/auth/service"
	"github.com/allisson/tasks/internal/database"
	apperrors "github.com/allisson/tasks/internal/errors"
	userDomain "github.com/allisson/tasks/internal/user/domain"
	userUsecase "github.com/allisson/tasks/internal/user/usecase"
)

type tokenUseCase struct {
	txManager        database.TxManager
	userUseCase      userUsecase.UseCase
	refreshTokenRepo RefreshTokenRepository
	tokenService     authService.TokenService
	accessTokens     authService.AccessTokenService
	refreshTokenTTL  time.Duration
	now              func() time.Time
}

// NewTokenUseCase creates a TokenUseCase. refreshTokenTTL is the lifetime
// of newly issued refresh tokens.
func NewTokenUseCase(
	txManager database.TxManager,
	userUseCase userUsecase.UseCase,
	refreshTokenRepo RefreshTokenRepository,
	tokenService authService.TokenService,
	accessTokens authService.AccessTokenService,
	refreshTokenTTL time.Duration,
) TokenUseCase {
	return &tokenUseCase{
		txManager:        txManager,
		userUseCase:      userUseCase,
		refreshTokenRepo: refreshTokenRepo,
		tokenService:     tokenService,
		accessTokens:     accessTokens,
		refreshTokenTTL:  refreshTokenTTL,
		now:              time.Now,
	}
}

func (t *tokenUseCase) SignUp(ctx context.Context, input authDomain.SignUpInput) (*authDomain.TokenPair, error) {
	var pair *authDomain.TokenPair

	err := t.txManager.WithTx(ctx, func(ctx context.Context) error {
		user, err := t.userUseCase.RegisterUser(ctx, userUsecase.RegisterUserInput{
			Name:     input.Name,
			Email:    input.Email,
			Password: input.Password,
		})
		if err != nil {
			return err
		}

		pair, err = t.IssueTokens(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	return pair, nil
}

func (t *tokenUseCase) SignIn(ctx context.Context, input authDomain.SignInInput) (*authDomain.TokenPair, error) {
	user, err := t.userUseCase.Authenticate(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}
	return t.IssueTokens(ctx, user)
}

func (t *tokenUseCase) IssueTokens(ctx context.Context, user *userDomain.User) (*authDomain.TokenPair, error) {
	accessToken, claims, err := t.accessTokens.Sign(authDomain.Claims{
		Subject: user.ID,
		Email:   user.Email,
		Name:    user.Name,
	})
	if err != nil {
		return nil, err
	}

	plainToken, tokenHash, err := t.tokenService.GenerateToken()
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate refresh token id")
	}

	now := t.now().UTC()
	refreshToken := &authDomain.RefreshToken{
		ID:        id,
		TokenHash: tokenHash,
		UserID:    user.ID,
		ExpiresAt: now.Add(t.refreshTokenTTL),
		CreatedAt: now,
	}
	if err := t.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return nil, err
	}

	return &authDomain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: plainToken,
		TokenType:    authDomain.TokenTypeBearer,
		ExpiresAt:    claims.ExpiresAt,
	}, nil
}

func (t *tokenUseCase) Refresh(ctx context.Context, refreshToken string) (*authDomain.AccessTokenOutput, error) {
	stored, err := t.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := t.userUseCase.GetUserByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, userDomain.ErrUserNotFound) {
			return nil, authDomain.ErrInvalidToken
		}
		return nil, err
	}

	accessToken, claims, err := t.accessTokens.Sign(authDomain.Claims{
		Subject: user.ID,
		Email:   user.Email,
		Name:    user.Name,
	})
	if err != nil {
		return nil, err
	}

	return &authDomain.AccessTokenOutput{
		AccessToken: accessToken,
		TokenType:   authDomain.TokenTypeBearer,
		ExpiresAt:   claims.ExpiresAt,
	}, nil
}

func (t *tokenUseCase) Revoke(ctx context.Context, refreshToken string) error {
	return t.txManager.WithTx(ctx, func(ctx context.Context) error {
		stored, err := t.VerifyRefresh(ctx, refreshToken)
		if err != nil {
			return err
		}
		err = t.refreshTokenRepo.Revoke(ctx, stored.ID, t.now().UTC())
		if errors.Is(err, authDomain.ErrRefreshTokenNotFound) {
			return authDomain.ErrInvalidToken
		}
		return err
	})
}

func (t *tokenUseCase) RevokeAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "user id is required")
	}
	return t.refreshTokenRepo.RevokeAllByUserID(ctx, userID, t.now().UTC())
}

func (t *tokenUseCase) VerifyAccess(_ context.Context, accessToken string) (*authDomain.Claims, error) {
	if accessToken == "" {
		return nil, authDomain.ErrInvalidToken
	}
	return t.accessTokens.Verify(accessToken)
}

func (t *tokenUseCase) VerifyRefresh(ctx context.Context, refreshToken string) (*authDomain.RefreshToken, error) {
	if refreshToken == "" {
		return nil, authDomain.ErrInvalidToken
	}

	stored, err := t.refreshTokenRepo.GetByTokenHash(ctx, t.tokenService.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, authDomain.ErrRefreshTokenNotFound) {
			return nil, authDomain.ErrInvalidToken
		}
		return nil, err
	}

	if !stored.IsActive(t.now().UTC()) {
		return nil, authDomain.ErrInvalidToken
	}

	return stored, nil
}
