package http

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "github.com/allisson/tasks/internal/errors"
	"github.com/allisson/tasks/internal/httputil"
)

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterIdleTTL         = time.Hour

	userLimitMessage = "Too many requests. Please retry after the specified delay."
	ipLimitMessage   = "Too many authentication requests from this IP. Please retry later."
)

// limiterStore keeps one token bucket per key. Buckets idle for longer than
// limiterIdleTTL are dropped by the cleanup loop.
type limiterStore struct {
	limiters sync.Map // map[string]*limiterEntry
	rps      float64
	burst    int
	now      func() time.Time
}

type limiterEntry struct {
	limiter    *rate.Limiter
	mu         sync.Mutex
	lastAccess time.Time
}

// newLimiterStore starts the cleanup loop, which stops when ctx is done.
func newLimiterStore(ctx context.Context, rps float64, burst int) *limiterStore {
	s := &limiterStore{rps: rps, burst: burst, now: time.Now}
	go s.cleanupStale(ctx, limiterCleanupInterval)
	return s
}

func (s *limiterStore) getLimiter(key string) *rate.Limiter {
	now := s.now()

	val, loaded := s.limiters.LoadOrStore(key, &limiterEntry{
		limiter:    rate.NewLimiter(rate.Limit(s.rps), s.burst),
		lastAccess: now,
	})
	entry := val.(*limiterEntry)
	if loaded {
		entry.mu.Lock()
		entry.lastAccess = now
		entry.mu.Unlock()
	}
	return entry.limiter
}

func (s *limiterStore) cleanupStale(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(s.now().Add(-limiterIdleTTL))
		}
	}
}

// sweep removes limiters last used before threshold.
func (s *limiterStore) sweep(threshold time.Time) {
	s.limiters.Range(func(key, value any) bool {
		entry := value.(*limiterEntry)
		entry.mu.Lock()
		stale := entry.lastAccess.Before(threshold)
		entry.mu.Unlock()

		if stale {
			s.limiters.Delete(key)
		}
		return true
	})
}

// retryAfterSeconds is the whole number of seconds until limiter has a token, at least 1.
func retryAfterSeconds(limiter *rate.Limiter) int {
	reservation := limiter.Reserve()
	delay := reservation.Delay()
	reservation.Cancel()

	return max(1, int(math.Ceil(delay.Seconds())))
}

// allow consumes a token for key or aborts the request with a 429.
func allow(c *gin.Context, store *limiterStore, key, message string, logger *slog.Logger) bool {
	limiter := store.getLimiter(key)
	if limiter.Allow() {
		return true
	}

	retryAfter := retryAfterSeconds(limiter)
	logger.Debug("rate limit exceeded", slog.Int("retry_after", retryAfter))

	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, httputil.ErrorResponse{
		Error:   "rate_limit_exceeded",
		Message: message,
	})
	return false
}

// RateLimitMiddleware limits authenticated requests per user (access token
// subject). It must run after AuthenticationMiddleware.
func RateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newLimiterStore(ctx, rps, burst)

	return func(c *gin.Context) {
		claims, ok := GetClaims(c.Request.Context())
		if !ok {
			logger.Error("rate limit middleware: no authenticated user in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if allow(c, store, claims.Subject.String(), userLimitMessage, logger) {
			c.Next()
		}
	}
}

// AuthRateLimitMiddleware limits the unauthenticated auth endpoints per
// client IP. c.ClientIP honours X-Forwarded-For and X-Real-IP only for the
// engine's trusted proxies.
func AuthRateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newLimiterStore(ctx, rps, burst)

	return func(c *gin.Context) {
		if allow(c, store, c.ClientIP(), ipLimitMessage, logger) {
			c.Next()
		}
	}
}
