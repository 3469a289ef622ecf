package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"rhmaster/internal/requestctx"
	"rhmaster/internal/transport/http/api"
	"rhmaster/internal/transport/http/shared"
)

func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxBytes > 0 && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

type rateBucket struct {
	count int
	reset time.Time
}

type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	clients map[string]*rateBucket
	now     func() time.Time
	sweepAt time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{limit: limit, window: window, clients: map[string]*rateBucket{}, now: time.Now}
}

// allow counts one hit for key and returns the seconds until the window
// resets when the limit is exceeded.
func (rl *rateLimiter) allow(key string) (bool, int) {
	if rl.limit <= 0 {
		return true, 0
	}
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.sweep(now)
	bucket, ok := rl.clients[key]
	if !ok || now.After(bucket.reset) {
		bucket = &rateBucket{reset: now.Add(rl.window)}
		rl.clients[key] = bucket
	}
	bucket.count++
	if bucket.count <= rl.limit {
		return true, 0
	}
	return false, max(int(bucket.reset.Sub(now).Seconds()), 1)
}

// sweep drops expired buckets, at most once per window. Keys include
// caller supplied emails, so the map is bounded by recent traffic only.
func (rl *rateLimiter) sweep(now time.Time) {
	if now.Before(rl.sweepAt) {
		return
	}
	for key, bucket := range rl.clients {
		if now.After(bucket.reset) {
			delete(rl.clients, key)
		}
	}
	rl.sweepAt = now.Add(rl.window)
}

// LoginRateLimit throttles login attempts per client IP and per email.
func LoginRateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	byIP := newRateLimiter(limit, window)
	byEmail := newRateLimiter(limit, window)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, retry := byIP.allow(shared.ClientIP(r))
			if ok {
				if email := loginEmail(r); email != "" {
					ok, retry = byEmail.allow(email)
				}
			}
			if !ok {
				requestctx.Logger(r.Context()).Warn("login rate limit exceeded")
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many login attempts", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func loginEmail(r *http.Request) string {
	if r.Body == nil {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64*1024))
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	var payload struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(payload.Email))
}
