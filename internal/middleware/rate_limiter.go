package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiterConfig controls request throttling.
type RateLimiterConfig struct {
	Rate  rate.Limit
	Burst int
}

// DefaultRateLimiterConfig allows steady coordinator traffic with
// headroom for intake bursts, which arrive in clumps after referrals.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		Rate:  50,
		Burst: 100,
	}
}

// RateLimiter throttles per client IP so one busy integration cannot
// starve the coordinators working the same deployment.
func RateLimiter(config RateLimiterConfig) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)

	limiterFor := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[key]
		if !ok {
			l = rate.NewLimiter(config.Rate, config.Burst)
			limiters[key] = l
		}
		return l
	}

	return func(c *gin.Context) {
		if !limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
