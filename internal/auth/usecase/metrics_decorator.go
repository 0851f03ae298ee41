package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/tasks/internal/auth/domain"
	"github.com/allisson/tasks/internal/metrics"
	userDomain "github.com/allisson/tasks/internal/user/domain"
)

const metricsDomain = "auth"

// tokenUseCaseWithMetrics decorates TokenUseCase with business metrics.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (t *tokenUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusFor(err)
	t.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	t.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

func (t *tokenUseCaseWithMetrics) SignUp(
	ctx context.Context,
	input authDomain.SignUpInput,
) (*authDomain.TokenPair, error) {
	start := time.Now()
	pair, err := t.next.SignUp(ctx, input)
	t.record(ctx, "signup", start, err)
	return pair, err
}

func (t *tokenUseCaseWithMetrics) SignIn(
	ctx context.Context,
	input authDomain.SignInInput,
) (*authDomain.TokenPair, error) {
	start := time.Now()
	pair, err := t.next.SignIn(ctx, input)
	t.record(ctx, "signin", start, err)
	return pair, err
}

func (t *tokenUseCaseWithMetrics) IssueTokens(
	ctx context.Context,
	user *userDomain.User,
) (*authDomain.TokenPair, error) {
	start := time.Now()
	pair, err := t.next.IssueTokens(ctx, user)
	t.record(ctx, "token_issue", start, err)
	return pair, err
}

func (t *tokenUseCaseWithMetrics) Refresh(
	ctx context.Context,
	refreshToken string,
) (*authDomain.AccessTokenOutput, error) {
	start := time.Now()
	output, err := t.next.Refresh(ctx, refreshToken)
	t.record(ctx, "token_refresh", start, err)
	return output, err
}

func (t *tokenUseCaseWithMetrics) Revoke(ctx context.Context, refreshToken string) error {
	start := time.Now()
	err := t.next.Revoke(ctx, refreshToken)
	t.record(ctx, "token_revoke", start, err)
	return err
}

func (t *tokenUseCaseWithMetrics) RevokeAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	start := time.Now()
	count, err := t.next.RevokeAll(ctx, userID)
	t.record(ctx, "token_revoke_all", start, err)
	return count, err
}

// VerifyAccess runs on every authenticated request and is not recorded.
func (t *tokenUseCaseWithMetrics) VerifyAccess(
	ctx context.Context,
	accessToken string,
) (*authDomain.Claims, error) {
	return t.next.VerifyAccess(ctx, accessToken)
}

func (t *tokenUseCaseWithMetrics) VerifyRefresh(
	ctx context.Context,
	refreshToken string,
) (*authDomain.RefreshToken, error) {
	start := time.Now()
	stored, err := t.next.VerifyRefresh(ctx, refreshToken)
	t.record(ctx, "token_verify_refresh", start, err)
	return stored, err
}
