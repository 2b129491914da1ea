package middleware

import (
	"fmt"
	"math"
	"strconv"
	"time"

	redisStore "payment-terminal-bridge/internal/adapter/storage/redis"
	"payment-terminal-bridge/pkg/apperror"
	"payment-terminal-bridge/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RateLimitRule defines a rate limit for an endpoint group.
type RateLimitRule struct {
	Limit  int64
	Window time.Duration
}

// DefaultRateLimitRules returns the limits per endpoint group. Payment
// operations are bounded by the reader anyway; the limit catches runaway
// retry loops on the POS side.
func DefaultRateLimitRules() map[string]RateLimitRule {
	return map[string]RateLimitRule{
		"payments":      {Limit: 60, Window: time.Minute},
		"terminal_read": {Limit: 300, Window: time.Minute},
		"auth_token":    {Limit: 10, Window: time.Minute},
		"operator":      {Limit: 120, Window: time.Minute},
	}
}

// RateLimiter creates a rate-limiting middleware for a given endpoint group.
func RateLimiter(store *redisStore.RateLimitStore, group string, rule RateLimitRule, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identifier := extractIdentifier(c)
		key := fmt.Sprintf("%s:%s", identifier, group)

		result, err := store.Allow(c.Request.Context(), key, rule.Limit, rule.Window)
		if err != nil {
			log.Warn().Err(err).Str("group", group).Msg("rate limit check failed, allowing request (degraded mode)")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			secs := int64(math.Ceil(result.RetryAfter.Seconds()))
			c.Header("Retry-After", strconv.FormatInt(max(secs, 1), 10))
			response.Error(c, apperror.ErrRateLimitExceeded())
			c.Abort()
			return
		}

		c.Next()
	}
}

// extractIdentifier keys authenticated callers by client id and everyone
// else by address.
func extractIdentifier(c *gin.Context) string {
	if id := c.GetString(CtxClientID); id != "" {
		return "client:" + id
	}
	return "ip:" + c.ClientIP()
}
