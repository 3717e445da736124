package http

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// rateLimiterStore holds per-client rate limiters with periodic cleanup of
// idle entries.
type rateLimiterStore struct {
	mu       sync.Mutex
	limiters map[string]*rateLimiterEntry
	rps      rate.Limit
	burst    int
}

// rateLimiterEntry holds a rate limiter and its last access time.
type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// get returns the limiter for clientIP, creating one on first use.
func (s *rateLimiterStore) get(clientIP string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.limiters[clientIP]
	if !ok {
		entry = &rateLimiterEntry{limiter: rate.NewLimiter(s.rps, s.burst)}
		s.limiters[clientIP] = entry
	}
	entry.lastAccess = time.Now()
	return entry.limiter
}

// cleanupStale periodically drops limiters idle longer than maxIdle.
func (s *rateLimiterStore) cleanupStale(interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-maxIdle)
		s.mu.Lock()
		for ip, entry := range s.limiters {
			if entry.lastAccess.Before(cutoff) {
				delete(s.limiters, ip)
			}
		}
		s.mu.Unlock()
	}
}

// RateLimitMiddleware enforces per-client-IP rate limiting using the token
// bucket algorithm from golang.org/x/time/rate.
//
// Returns 429 Too Many Requests when the limit is exceeded.
func RateLimitMiddleware(rps, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := &rateLimiterStore{
		limiters: make(map[string]*rateLimiterEntry),
		rps:      rate.Limit(rps),
		burst:    burst,
	}

	// Drop limiters for clients idle longer than five minutes.
	go store.cleanupStale(time.Minute, 5*time.Minute)

	return func(c *gin.Context) {
		limiter := store.get(c.ClientIP())
		if !limiter.Allow() {
			logger.Warn("rate limit exceeded", slog.String("client_ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate_limit_exceeded",
			})
			return
		}

		c.Next()
	}
}
