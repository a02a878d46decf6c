package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"lifeline/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// RateLimiter throttles per user (or per IP for unauthenticated calls)
// using a sliding window log in Redis sorted sets. Redis being down fails
// open: requests proceed unthrottled rather than blocking emergencies.
type RateLimiter struct {
	redis    *redis.Client
	requests int
	window   time.Duration
}

func NewRateLimiter(redisClient *redis.Client, requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		redis:    redisClient,
		requests: requests,
		window:   window,
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.redis == nil {
			c.Next()
			return
		}

		key := rl.key(c)
		allowed, remaining, err := rl.check(c.Request.Context(), key)
		if err != nil {
			logrus.Errorf("Rate limit check failed: %v", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "Rate limit exceeded", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) key(c *gin.Context) string {
	if userID := c.GetString("userID"); userID != "" {
		return "rate_limit:user:" + userID
	}
	return "rate_limit:ip:" + c.ClientIP()
}

func (rl *RateLimiter) check(ctx context.Context, key string) (bool, int, error) {
	now := time.Now()

	pipe := rl.redis.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", now.Add(-rl.window).UnixNano()))
	count := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, &redis.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	pipe.Expire(ctx, key, rl.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return true, 0, err
	}

	seen := int(count.Val())
	if seen >= rl.requests {
		return false, 0, nil
	}
	return true, rl.requests - seen - 1, nil
}
