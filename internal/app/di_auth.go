package app

import (
	"context"
	"fmt"

	authHTTP "github.com/allisson/tasks/internal/auth/http"
	authRepository "github.com/allisson/tasks/internal/auth/repository"
	authService "github.com/allisson/tasks/internal/auth/service"
	authUseCase "github.com/allisson/tasks/internal/auth/usecase"
)

// KMSService returns the gocloud.dev keeper opener used to unwrap
// JWT_SECRET_KEY.
func (c *Container) KMSService() authService.KMSService {
	kms, _ := c.kmsService.get(func() (authService.KMSService, error) {
		return authService.NewKMSService(), nil
	})
	return kms
}

// AccessTokenService returns the JWT signer. When KMS_KEY_URI is set the
// configured secret is decrypted through the keeper first.
func (c *Container) AccessTokenService() (authService.AccessTokenService, error) {
	return c.accessTokens.get(func() (authService.AccessTokenService, error) {
		secret, err := authService.LoadSigningSecret(
			context.Background(),
			c.KMSService(),
			c.config.JWTSecretKey,
			c.config.KMSKeyURI,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load jwt secret key: %w", err)
		}

		jwtService, err := authService.NewJWTService(secret, c.config.AccessTokenExpiration)
		if err != nil {
			return nil, fmt.Errorf("failed to create jwt service: %w", err)
		}
		return jwtService, nil
	})
}

// RefreshTokenRepository returns the refresh token repository for DB_DRIVER.
func (c *Container) RefreshTokenRepository() (authUseCase.RefreshTokenRepository, error) {
	return c.refreshTokenRepo.get(func() (authUseCase.RefreshTokenRepository, error) {
		db, err := c.driverDB("refresh token repository")
		if err != nil {
			return nil, err
		}
		if c.config.DBDriver == driverMySQL {
			return authRepository.NewMySQLRefreshTokenRepository(db), nil
		}
		return authRepository.NewPostgreSQLRefreshTokenRepository(db), nil
	})
}

// TokenUseCase returns the sign-up/sign-in/refresh/revoke use case, wrapped
// with business metrics when METRICS_ENABLED is set.
func (c *Container) TokenUseCase() (authUseCase.TokenUseCase, error) {
	return c.tokenUseCase.get(c.initTokenUseCase)
}

// TokenHandler returns the /auth HTTP handler.
func (c *Container) TokenHandler() (*authHTTP.TokenHandler, error) {
	return c.tokenHandler.get(func() (*authHTTP.TokenHandler, error) {
		useCase, err := c.TokenUseCase()
		if err != nil {
			return nil, fmt.Errorf("failed to get token use case for token handler: %w", err)
		}
		return authHTTP.NewTokenHandler(useCase, c.Logger()), nil
	})
}

func (c *Container) initTokenUseCase() (authUseCase.TokenUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for token use case: %w", err)
	}

	userUseCase, err := c.UserUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get user use case for token use case: %w", err)
	}

	refreshTokenRepo, err := c.RefreshTokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token repository for token use case: %w", err)
	}

	accessTokens, err := c.AccessTokenService()
	if err != nil {
		return nil, fmt.Errorf("failed to get access token service for token use case: %w", err)
	}

	baseUseCase := authUseCase.NewTokenUseCase(
		txManager,
		userUseCase,
		refreshTokenRepo,
		authService.NewTokenService(),
		accessTokens,
		c.config.RefreshTokenExpiration,
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for token use case: %w", err)
		}
		return authUseCase.NewTokenUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
