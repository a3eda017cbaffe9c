package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"governance-backend/internal/shared/metrics"
	"governance-backend/internal/shared/server/respond"
)

const (
	// RateLimitGroupDefault applies to every route without a dedicated group.
	RateLimitGroupDefault = "DEFAULT"
	// RateLimitGroupAssess covers routes that fan out to a rating provider.
	RateLimitGroupAssess = "ASSESS"

	idleBucketTTL = 15 * time.Minute
	sweepEvery    = 1024
)

var assessRoutes = map[string]bool{
	"POST /api/v1/agent/governance/assess": true,
	"POST /api/v1/questionnaire/process":   true,
}

// GroupForRoute puts LLM-backed routes in the ASSESS group and everything else in DEFAULT.
func GroupForRoute(c *gin.Context) string {
	if assessRoutes[c.Request.Method+" "+c.FullPath()] {
		return RateLimitGroupAssess
	}
	return RateLimitGroupDefault
}

// RateLimitRule is a token bucket refilled at PerMinute tokens per minute.
type RateLimitRule struct {
	PerMinute int
	Burst     int
}

func (r RateLimitRule) perSecond() float64 {
	return float64(r.PerMinute) / 60.0
}

func (r RateLimitRule) disabled() bool {
	return r.PerMinute <= 0 || r.Burst <= 0
}

// RateLimitConfig selects a rule per request. Groups without a rule are not limited.
type RateLimitConfig struct {
	Rules    map[string]RateLimitRule
	GroupFor func(*gin.Context) string
	Limiter  *RateLimiter
}

// RateLimiter holds one bucket per caller and group.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rateBucket
	calls   int
	now     func() time.Time
}

type rateBucket struct {
	tokens float64
	seen   time.Time
}

// NewRateLimiter builds a limiter; now defaults to time.Now.
func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{buckets: make(map[string]*rateBucket), now: now}
}

// RateLimit rejects callers that exhaust their group's bucket with 429 and Retry-After.
// Callers are keyed by user id, falling back to the client IP.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = NewRateLimiter(nil)
	}
	return func(c *gin.Context) {
		group := RateLimitGroupDefault
		if cfg.GroupFor != nil {
			if g := strings.TrimSpace(cfg.GroupFor(c)); g != "" {
				group = g
			}
		}
		rule, ok := cfg.Rules[group]
		if !ok || rule.disabled() {
			c.Next()
			return
		}

		caller := strings.TrimSpace(UserIDFromContext(c))
		if caller == "" {
			caller = c.ClientIP()
		}
		wait, allowed := limiter.Take(group+"|"+caller, rule)
		if allowed {
			c.Next()
			return
		}

		metrics.IncRateLimited(group)
		waitMs := wait.Milliseconds()
		if waitMs < 1 {
			waitMs = 1
		}
		c.Header("Retry-After", strconv.FormatInt(int64(math.Ceil(float64(waitMs)/1000)), 10))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "Too many requests", gin.H{
			"group":        group,
			"retryAfterMs": waitMs,
		})
	}
}

// Take spends one token from the bucket for key. When the bucket is empty it
// reports how long until the next token is available.
func (l *RateLimiter) Take(key string, rule RateLimitRule) (time.Duration, bool) {
	if l == nil || rule.disabled() {
		return 0, true
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls++
	if l.calls%sweepEvery == 0 {
		l.sweep(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &rateBucket{tokens: float64(rule.Burst), seen: now}
		l.buckets[key] = b
	}
	if elapsed := now.Sub(b.seen).Seconds(); elapsed > 0 {
		b.tokens = math.Min(float64(rule.Burst), b.tokens+elapsed*rule.perSecond())
	}
	b.seen = now

	if b.tokens >= 1 {
		b.tokens--
		return 0, true
	}
	missing := 1 - b.tokens
	wait := time.Duration(math.Ceil(missing/rule.perSecond()*1000)) * time.Millisecond
	return wait, false
}

// Len reports how many buckets are tracked.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *RateLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.seen) > idleBucketTTL {
			delete(l.buckets, key)
		}
	}
}
