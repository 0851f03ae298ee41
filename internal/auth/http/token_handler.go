package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/tasks/internal/auth/domain"
	"github.com/allisson/tasks/internal/auth/http/dto"
	authUseCase "github.com/allisson/tasks/internal/auth/usecase"
	apperrors "github.com/allisson/tasks/internal/errors"
	"github.com/allisson/tasks/internal/httputil"
	customValidation "github.com/allisson/tasks/internal/validation"
)

// TokenHandler serves the /auth endpoints.
type TokenHandler struct {
	tokenUseCase authUseCase.TokenUseCase
	logger       *slog.Logger
}

// NewTokenHandler creates a new token handler.
func NewTokenHandler(tokenUseCase authUseCase.TokenUseCase, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{
		tokenUseCase: tokenUseCase,
		logger:       logger,
	}
}

// SignUpHandler registers a user and returns a token pair.
// POST /api/v1/auth/signup - 201 Created.
func (h *TokenHandler) SignUpHandler(c *gin.Context) {
	var req dto.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	pair, err := h.tokenUseCase.SignUp(c.Request.Context(), authDomain.SignUpInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapTokenPairToResponse(pair))
}

// SignInHandler exchanges credentials for a token pair.
// POST /api/v1/auth/signin - 200 OK.
func (h *TokenHandler) SignInHandler(c *gin.Context) {
	var req dto.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	pair, err := h.tokenUseCase.SignIn(c.Request.Context(), authDomain.SignInInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTokenPairToResponse(pair))
}

// RefreshHandler issues a new access token for a refresh token.
// POST /api/v1/auth/refresh - 200 OK.
func (h *TokenHandler) RefreshHandler(c *gin.Context) {
	refreshToken, ok := h.bindRefreshToken(c)
	if !ok {
		return
	}

	output, err := h.tokenUseCase.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAccessTokenToResponse(output))
}

// LogoutHandler revokes a single refresh token.
// POST /api/v1/auth/logout - 200 OK.
func (h *TokenHandler) LogoutHandler(c *gin.Context) {
	refreshToken, ok := h.bindRefreshToken(c)
	if !ok {
		return
	}

	if err := h.tokenUseCase.Revoke(c.Request.Context(), refreshToken); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Successfully logged out"})
}

// LogoutAllHandler revokes every refresh token of the authenticated user.
// POST /api/v1/auth/logout-all - 200 OK. Requires AuthenticationMiddleware.
func (h *TokenHandler) LogoutAllHandler(c *gin.Context) {
	claims, ok := GetClaims(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	count, err := h.tokenUseCase.RevokeAll(c.Request.Context(), claims.Subject)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("revoked refresh tokens",
		slog.String("user_id", claims.Subject.String()),
		slog.Int64("count", count))

	c.JSON(http.StatusOK, dto.RevokeAllResponse{Revoked: count})
}

func (h *TokenHandler) bindRefreshToken(c *gin.Context) (string, bool) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return "", false
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return "", false
	}

	return req.RefreshToken, true
}
