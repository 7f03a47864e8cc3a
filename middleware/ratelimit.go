package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/synapse-notes/backend/services"
	"github.com/synapse-notes/backend/services/ratelimit"
	"github.com/synapse-notes/backend/utils"
	"go.uber.org/zap"
)

// RateLimiter decides whether a subject may make another request
type RateLimiter interface {
	Allow(ctx context.Context, subject string) *ratelimit.Decision
}

// RateLimitMiddleware enforces a per-principal request budget.
// It must run after RequireAuth.
type RateLimitMiddleware struct {
	limiter RateLimiter
	logger  *zap.Logger
	now     func() time.Time
}

// NewRateLimitMiddleware creates a new RateLimitMiddleware
func NewRateLimitMiddleware(limiter RateLimiter, logger *zap.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		logger:  logger,
		now:     time.Now,
	}
}

// Limit rejects the request with 429 once the principal's budget is spent
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		principal := GetPrincipalFromContext(ctx)
		if principal == nil {
			m.logger.Error("principal not found in context",
				zap.String("request_id", requestID))
			_ = utils.WriteUnauthorized(w, msgNoToken)
			return
		}

		decision := m.limiter.Allow(ctx, principal.ID.String())

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			retryAfter := int(math.Ceil(decision.RetryAfter(m.now()).Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

			m.logger.Warn("request blocked by rate limit",
				zap.String("request_id", requestID),
				zap.String("user_id", principal.ID.String()),
				zap.Int("limit", decision.Limit))

			_ = utils.WriteTooManyRequests(w, services.ErrRateLimitExceeded.Message, map[string]interface{}{
				"limit":    decision.Limit,
				"reset_at": decision.ResetAt.UTC().Format(time.RFC3339),
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
