package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pawws/pawws/internal/ctxkeys"
)

// RateLimiter is a sliding window of hits per client key.
type RateLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time // Arrival order, oldest first
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    time.Now,
	}
	go rl.sweepLoop()
	return rl
}

// Allow records a hit for key. Once the budget is spent it refuses and
// reports when the oldest hit leaves the window.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	hits := since(rl.hits[key], now.Add(-rl.window))
	if len(hits) >= rl.limit {
		rl.hits[key] = hits
		return false, hits[0].Add(rl.window).Sub(now)
	}

	rl.hits[key] = append(hits, now)
	return true, 0
}

func since(hits []time.Time, cutoff time.Time) []time.Time {
	i := sort.Search(len(hits), func(i int) bool {
		return hits[i].After(cutoff)
	})
	return hits[i:]
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for range ticker.C {
		rl.sweep()
	}
}

// sweep forgets keys whose newest hit is outside the window.
func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.window)
	for key, hits := range rl.hits {
		if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
			delete(rl.hits, key)
		}
	}
}

// KeyFunc names the budget a request is charged to.
type KeyFunc func(r *http.Request) string

// ByIP charges the client address.
func ByIP(r *http.Request) string {
	return "ip:" + getClientIP(r)
}

// ByDonorOrIP charges signed-in donors their own budget, so donors sharing a
// NAT do not starve each other. Anonymous submissions fall back to the address.
func ByDonorOrIP(r *http.Request) string {
	if user := ctxkeys.User(r.Context()); user != nil {
		return "user:" + user.ID
	}
	return ByIP(r)
}

// RateLimitAuth allows 10 signup or login attempts per 15 minutes per address.
func RateLimitAuth() func(http.HandlerFunc) http.HandlerFunc {
	return RateLimit(NewRateLimiter(10, 15*time.Minute), ByIP)
}

// RateLimitUploads allows 20 proof submissions per hour per donor.
func RateLimitUploads() func(http.HandlerFunc) http.HandlerFunc {
	return RateLimit(NewRateLimiter(20, time.Hour), ByDonorOrIP)
}

// RateLimit answers 429 with Retry-After once key's budget is spent.
func RateLimit(limiter *RateLimiter, key KeyFunc) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			ok, retryAfter := limiter.Allow(k)
			if !ok {
				slog.Warn("rate limit exceeded",
					"key", k,
					"path", r.URL.Path,
					"request_id", ctxkeys.RequestID(r.Context()),
				)
				seconds := int(retryAfter.Round(time.Second) / time.Second)
				w.Header().Set("Retry-After", strconv.Itoa(max(seconds, 1)))
				writeDetail(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
				return
			}
			next(w, r)
		}
	}
}

// getClientIP prefers the first proxy-reported address over RemoteAddr.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
