package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/dsyorkd/assisted-console/internal/config"
	"github.com/dsyorkd/assisted-console/internal/logger"
)

// limiterIdleTimeout is how long an unused client limiter is kept
const limiterIdleTimeout = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter manages rate limiting for clients
type RateLimiter struct {
	config    config.RateLimitConfig
	logger    logger.Interface
	limiters  map[string]*clientLimiter
	mutex     sync.Mutex
	lastClean time.Time
	now       func() time.Time
}

// NewRateLimiter creates a new rate limiter. A zero rate disables limiting.
func NewRateLimiter(cfg config.RateLimitConfig, log logger.Interface) *RateLimiter {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	rl := &RateLimiter{
		config:    cfg,
		logger:    log.WithField("component", "ratelimit"),
		limiters:  make(map[string]*clientLimiter),
		lastClean: time.Now(),
		now:       time.Now,
	}

	rl.logger.WithFields(map[string]interface{}{
		"requests_per_second": cfg.RequestsPerSecond,
		"burst":               cfg.Burst,
	}).Info("Rate limiter initialized")

	return rl
}

// RateLimit returns a rate limiting middleware
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.config.RequestsPerSecond <= 0 {
			c.Next()
			return
		}

		clientID := rl.getClientID(c)
		limiter := rl.getLimiter(clientID)

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%g", rl.config.RequestsPerSecond))
		if !limiter.Allow() {
			rl.logger.WithFields(map[string]interface{}{
				"client_id":  clientID,
				"client_ip":  c.ClientIP(),
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"request_id": GetRequestID(c),
			}).Warn("Rate limit exceeded")

			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate Limit Exceeded",
				"message": "Too many requests, please slow down",
				"alerts":  []interface{}{},
			})
			return
		}

		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", int(limiter.Tokens())))
		c.Next()
	}
}

// getClientID prefers the authenticated user over the client address
func (rl *RateLimiter) getClientID(c *gin.Context) string {
	if userID := GetUserID(c); userID != "" {
		return "user:" + userID
	}
	return "ip:" + c.ClientIP()
}

// getLimiter gets or creates a rate limiter for a client
func (rl *RateLimiter) getLimiter(clientID string) *rate.Limiter {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	if now.Sub(rl.lastClean) > limiterIdleTimeout {
		rl.cleanup(now)
	}

	if cl, exists := rl.limiters[clientID]; exists {
		cl.lastSeen = now
		return cl.limiter
	}

	cl := &clientLimiter{
		limiter:  rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.Burst),
		lastSeen: now,
	}
	rl.limiters[clientID] = cl
	return cl.limiter
}

// cleanup removes idle limiters; the caller holds the mutex
func (rl *RateLimiter) cleanup(now time.Time) {
	for clientID, cl := range rl.limiters {
		if now.Sub(cl.lastSeen) > limiterIdleTimeout {
			delete(rl.limiters, clientID)
		}
	}
	rl.lastClean = now
	rl.logger.Debug("Rate limiter cleanup completed", "active_limiters", len(rl.limiters))
}

// GetStats returns rate limiting statistics
func (rl *RateLimiter) GetStats() map[string]interface{} {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	return map[string]interface{}{
		"active_limiters":     len(rl.limiters),
		"requests_per_second": rl.config.RequestsPerSecond,
		"burst":               rl.config.Burst,
	}
}
