package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/festhub/festhub-api/internal/api/handler/v1/response"
)

// RateLimiter is a fixed-window limiter keyed by authenticated user, or by
// client IP before authentication. Redis being down fails open: losing the
// limiter should not take registrations with it.
type RateLimiter struct {
	rdb      *redis.Client
	requests int
	window   time.Duration
}

func NewRateLimiter(rdb *redis.Client, requests, windowSeconds int) *RateLimiter {
	return &RateLimiter{
		rdb:      rdb,
		requests: requests,
		window:   time.Duration(windowSeconds) * time.Second,
	}
}

func (l *RateLimiter) Limit() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		key := l.key(ctx)

		count, err := l.rdb.Incr(ctx.Request.Context(), key).Result()
		if err != nil {
			zap.L().Warn("rate limiter unavailable", zap.Error(err))
			ctx.Next()
			return
		}

		if count == 1 {
			if err := l.rdb.Expire(ctx.Request.Context(), key, l.window).Err(); err != nil {
				zap.L().Warn("failed to set rate limit expiry", zap.Error(err))
			}
		}

		if count > int64(l.requests) {
			response.RenderErr(ctx, response.NewErr(429, errors.New("too many requests")))
			return
		}

		ctx.Next()
	}
}

func (l *RateLimiter) key(ctx *gin.Context) string {
	if userID, exists := ctx.Get(ContextKeyUserID); exists {
		return fmt.Sprintf("ratelimit:user:%v", userID)
	}

	return fmt.Sprintf("ratelimit:ip:%v", ctx.ClientIP())
}
