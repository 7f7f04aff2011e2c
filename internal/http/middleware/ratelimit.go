package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"golang.org/x/time/rate"
)

// KeyFunc picks the identity a request is counted against. ok=false lets
// the request through uncounted.
type KeyFunc func(c *gin.Context) (key string, ok bool)

// ByClientIP counts per remote address.
func ByClientIP(c *gin.Context) (string, bool) {
	return c.ClientIP(), true
}

type ownerBody struct {
	Owner          string `json:"owner"`
	UserIdentifier string `json:"user_identifier"`
}

// ByOwner counts per task owner from the JSON body. The body is cached on
// the context so the handler can bind it again with ShouldBindBodyWith.
func ByOwner(c *gin.Context) (string, bool) {
	var b ownerBody
	if err := c.ShouldBindBodyWith(&b, binding.JSON); err != nil {
		return "", false
	}
	owner := strings.TrimSpace(b.Owner)
	if owner == "" {
		owner = strings.TrimSpace(b.UserIdentifier)
	}
	return owner, owner != ""
}

type visitor struct {
	lim  *rate.Limiter
	seen time.Time
}

// localLimiter is the in-process token bucket used when Redis is absent.
type localLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	every    rate.Limit
	burst    int
	window   time.Duration
	lastGC   time.Time
}

func newLocalLimiter(maxRequests int, window time.Duration) *localLimiter {
	return &localLimiter{
		visitors: make(map[string]*visitor),
		every:    rate.Every(window / time.Duration(maxRequests)),
		burst:    maxRequests,
		window:   window,
		lastGC:   time.Now(),
	}
}

func (l *localLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastGC) > l.window {
		for k, v := range l.visitors {
			if now.Sub(v.seen) > l.window {
				delete(l.visitors, k)
			}
		}
		l.lastGC = now
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{lim: rate.NewLimiter(l.every, l.burst)}
		l.visitors[key] = v
	}
	v.seen = now
	return v.lim.AllowN(now, 1)
}

// RateLimit limits requests per key. Redis is used when initialised;
// otherwise, or on any Redis error, the in-process limiter decides.
func RateLimit(scope string, maxRequests int, window time.Duration, keyFn KeyFunc) gin.HandlerFunc {
	if maxRequests <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	local := newLocalLimiter(maxRequests, window)

	return func(c *gin.Context) {
		ident, ok := keyFn(c)
		if !ok {
			c.Next()
			return
		}
		endpoint := scope + ":" + c.FullPath()

		allowed := true
		counted := false
		if redisClient != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
			val, err := redisHit(ctx, scope, ident, window)
			cancel()
			if err != nil {
				c.Header("X-RateLimit-Error", "redis-error")
			} else {
				counted = true
				allowed = val <= int64(maxRequests)
				c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
				c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))
			}
		}
		if !counted {
			allowed = local.allow(ident)
		}

		if !allowed {
			RLBlocked.WithLabelValues(endpoint).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues(endpoint).Inc()
		c.Next()
	}
}

// APIRateLimit limits the REST surface per client IP.
func APIRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return RateLimit("api", maxRequests, window, ByClientIP)
}

// ChatRateLimit limits chat relays per owner, so one user cannot flood
// the interpreter webhook.
func ChatRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return RateLimit("chat", maxRequests, window, ByOwner)
}
