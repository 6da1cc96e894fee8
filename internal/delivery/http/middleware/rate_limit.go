package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"careers-backend/internal/delivery/http/response"
	"careers-backend/internal/domain"
	"careers-backend/pkg/redis"
	"careers-backend/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimitConfig describes one fixed-window limit.
type RateLimitConfig struct {
	Limit     int
	Window    time.Duration
	KeyPrefix string
	KeyFunc   func(*gin.Context) string
	// FailClosed rejects requests with 503 when Redis errors instead of
	// falling back to the process-local counter.
	FailClosed bool
}

// GlobalRateLimitConfig applies to every route.
func GlobalRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{Limit: limit, Window: window, KeyPrefix: "rl:ip:", KeyFunc: clientIPKey}
}

// AuthRateLimitConfig is for the email-sending and token-checking auth routes.
func AuthRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{Limit: limit, Window: window, KeyPrefix: "rl:auth:", KeyFunc: clientIPKey, FailClosed: true}
}

// AdminLoginRateLimitConfig guards the password endpoint.
func AdminLoginRateLimitConfig(window time.Duration) RateLimitConfig {
	return RateLimitConfig{Limit: 5, Window: window, KeyPrefix: "rl:admin-login:", KeyFunc: clientIPKey, FailClosed: true}
}

// UploadRateLimitConfig keys uploads by candidate when known, else by IP.
func UploadRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:     limit,
		Window:    window,
		KeyPrefix: "rl:upload:",
		KeyFunc: func(c *gin.Context) string {
			if id, ok := CandidateID(c); ok {
				return id.String()
			}
			return c.ClientIP()
		},
	}
}

func clientIPKey(c *gin.Context) string {
	return c.ClientIP()
}

type windowCounter interface {
	hit(ctx context.Context, key string, window time.Duration) (int, time.Time, error)
}

// KEYS[1] = counter key, ARGV[1] = window in seconds. Returns {count, ttl}.
var fixedWindowScript = goredis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return {count, redis.call('TTL', KEYS[1])}
`)

type redisCounter struct {
	client *goredis.Client
}

func (r redisCounter) hit(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	res, err := fixedWindowScript.Run(ctx, r.client, []string{key}, int(window.Seconds())).Int64Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) < 2 {
		return 0, time.Time{}, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}
	return int(res[0]), time.Now().Add(time.Duration(res[1]) * time.Second), nil
}

type memoryWindow struct {
	count   int
	resetAt time.Time
}

// memoryCounter is the single-process fallback. Expired windows are swept
// every sweepEvery hits rather than by a background goroutine.
type memoryCounter struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
	hits    int
}

const sweepEvery = 1024

var localCounter = &memoryCounter{windows: make(map[string]*memoryWindow)}

func (m *memoryCounter) hit(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.hits++
	if m.hits%sweepEvery == 0 {
		for k, w := range m.windows {
			if now.After(w.resetAt) {
				delete(m.windows, k)
			}
		}
	}

	w, ok := m.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &memoryWindow{resetAt: now.Add(window)}
		m.windows[key] = w
	}
	w.count++
	return w.count, w.resetAt, nil
}

// RateLimitMiddleware counts requests in Redis when it is configured and in
// process memory otherwise.
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := config.KeyPrefix + config.KeyFunc(c)

		var counter windowCounter = localCounter
		if client := redis.Client(); client != nil {
			counter = redisCounter{client: client}
		}

		count, resetAt, err := counter.hit(c.Request.Context(), key, config.Window)
		if err != nil {
			if config.FailClosed {
				logRateLimitError(c, err)
				response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
				c.Abort()
				return
			}
			count, resetAt, _ = localCounter.hit(c.Request.Context(), key, config.Window)
		}

		remaining := config.Limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count > config.Limit {
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			if logger := security.DefaultLogger(); logger != nil {
				logger.LogRateLimitTriggered(c.Request.Context(), c.ClientIP(), c.GetHeader("User-Agent"),
					c.GetString(string(domain.KeyRequestID)), c.FullPath())
			}

			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

func logRateLimitError(c *gin.Context, err error) {
	logger := security.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Log(c.Request.Context(), security.SecurityEvent{
		Event:       security.EventRateLimitTriggered,
		SubjectType: "system",
		IP:          c.ClientIP(),
		RequestID:   c.GetString(string(domain.KeyRequestID)),
		Details:     map[string]interface{}{"error": err.Error()},
	})
}
