package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/kasioon/search-gateway/internal/errors"
)

// clientLimiter pairs a token bucket with the time it was last touched, so
// idle entries can be swept out of the registry.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitConfig tunes one RateLimit middleware instance
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// RateLimit returns a per-client-IP token-bucket middleware. Each IP gets
// its own limiter, lazily created and swept after 10 minutes of idleness.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	var mu sync.Mutex
	clients := make(map[string]*clientLimiter)

	go func() {
		for range time.Tick(5 * time.Minute) {
			mu.Lock()
			for ip, c := range clients {
				if time.Since(c.lastSeen) > 10*time.Minute {
					delete(clients, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		entry, ok := clients[ip]
		if !ok {
			entry = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)}
			clients[ip] = entry
		}
		entry.lastSeen = time.Now()
		limiter := entry.limiter
		mu.Unlock()

		if !limiter.Allow() {
			retryAfter := int(1 / cfg.RequestsPerSecond)
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Error(errors.NewRateLimitedError("too many requests", retryAfter))
			c.Abort()
			return
		}

		c.Next()
	}
}
