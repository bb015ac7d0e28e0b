package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/turtacn/ClauseWise/internal/interfaces/http/response"
	"github.com/turtacn/ClauseWise/pkg/errors"
)

// RateLimitConfig holds configuration for the per-client limiter.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate for one key.
	RequestsPerSecond float64
	// Burst is the bucket size.
	Burst int
	// KeyFunc picks the bucket; defaults to gin's ClientIP.
	KeyFunc   func(c *gin.Context) string
	SkipPaths []string
	// IdleTTL drops buckets not used for this long.
	IdleTTL time.Duration
}

// DefaultRateLimitConfig returns 10 rps with a burst of 20 per client IP.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 10,
		Burst:             20,
		SkipPaths:         []string{"/healthz", "/readyz", "/metrics"},
		IdleTTL:           10 * time.Minute,
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per key.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	lastGC   time.Time
	now      func() time.Time
}

// NewRateLimiter creates a limiter; a non-positive rate or burst is replaced
// by the defaults.
func NewRateLimiter(rps float64, burst int, idleTTL time.Duration) *RateLimiter {
	def := DefaultRateLimitConfig()
	if rps <= 0 {
		rps = def.RequestsPerSecond
	}
	if burst <= 0 {
		burst = def.Burst
	}
	if idleTTL <= 0 {
		idleTTL = def.IdleTTL
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(rps),
		burst:    burst,
		idleTTL:  idleTTL,
		lastGC:   time.Now(),
		now:      time.Now,
	}
}

// Allow takes one token for key. It returns whether the request may proceed,
// the tokens left and, when denied, how long until a token is available.
func (l *RateLimiter) Allow(key string) (bool, int, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.gc(now)

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now

	r := v.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, 0, delay
	}
	remaining := int(math.Max(0, math.Floor(v.limiter.TokensAt(now))))
	return true, remaining, 0
}

// Len returns the number of tracked keys.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// gc runs at most once per idle TTL under l.mu.
func (l *RateLimiter) gc(now time.Time) {
	if now.Sub(l.lastGC) < l.idleTTL {
		return
	}
	for k, v := range l.visitors {
		if now.Sub(v.lastSeen) >= l.idleTTL {
			delete(l.visitors, k)
		}
	}
	l.lastGC = now
}

// RateLimit rejects requests over the configured rate with 429 and a
// Retry-After header.
func RateLimit(config RateLimitConfig) gin.HandlerFunc {
	return RateLimitWith(NewRateLimiter(config.RequestsPerSecond, config.Burst, config.IdleTTL), config)
}

// RateLimitWith uses an existing limiter.
func RateLimitWith(limiter *RateLimiter, config RateLimitConfig) gin.HandlerFunc {
	keyFunc := config.KeyFunc
	if keyFunc == nil {
		keyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	skip := make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = true
	}
	limitHeader := strconv.Itoa(limiter.burst)

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}
		ok, remaining, retryAfter := limiter.Allow(keyFunc(c))
		c.Header("X-RateLimit-Limit", limitHeader)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !ok {
			secs := int(math.Ceil(retryAfter.Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			response.Error(c, errors.RateLimit("rate limit exceeded"))
			return
		}
		c.Next()
	}
}

//Personal.AI order the ending
