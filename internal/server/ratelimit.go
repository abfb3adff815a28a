package server

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"resumecoach/internal/errors"

	"golang.org/x/time/rate"
)

// LimiterManager keeps one token bucket per client key (IP or API key)
type LimiterManager struct {
	mu          sync.Mutex
	buckets     map[string]*bucket
	rate        rate.Limit
	burst       int
	evictionAge time.Duration
	done        chan struct{}
	closeOnce   sync.Once
	logger      *errors.Logger
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is the name the server uses for LimiterManager
type RateLimiter = LimiterManager

// NewRateLimiter creates a manager allowing requestsPerMin per key with the
// given burst. Buckets idle for longer than idleWindow are evicted.
func NewRateLimiter(requestsPerMin int, idleWindow time.Duration, burstCapacity int, logger *errors.Logger) *LimiterManager {
	if idleWindow <= 0 {
		idleWindow = 10 * time.Minute
	}
	if burstCapacity <= 0 {
		burstCapacity = 1
	}
	if logger == nil {
		logger = errors.NopLogger()
	}

	m := &LimiterManager{
		buckets:     make(map[string]*bucket),
		rate:        rate.Limit(float64(requestsPerMin) / 60.0),
		burst:       burstCapacity,
		evictionAge: idleWindow,
		done:        make(chan struct{}),
		logger:      logger,
	}

	go m.evictLoop()
	return m
}

func (m *LimiterManager) limiterFor(key string, now time.Time) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(m.rate, m.burst)}
		m.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

// Allow takes a token for key. When none is available it reports how long
// the client should wait before the next token.
func (m *LimiterManager) Allow(key string) (bool, time.Duration) {
	now := time.Now()
	reservation := m.limiterFor(key, now).ReserveN(now, 1)
	if !reservation.OK() {
		return false, 0
	}
	delay := reservation.DelayFrom(now)
	if delay == 0 {
		return true, 0
	}
	reservation.CancelAt(now)
	return false, delay
}

// GetStats returns current rate limiter statistics
func (m *LimiterManager) GetStats() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	return map[string]any{
		"active_limiters": len(m.buckets),
		"rate_per_second": float64(m.rate),
		"rate_per_minute": float64(m.rate) * 60.0,
		"burst_capacity":  m.burst,
		"idle_eviction":   m.evictionAge.String(),
	}
}

func (m *LimiterManager) evictLoop() {
	ticker := time.NewTicker(m.evictionAge)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			m.evictIdle(now)
		case <-m.done:
			return
		}
	}
}

// evictIdle drops buckets not used since evictionAge before now
func (m *LimiterManager) evictIdle(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for key, b := range m.buckets {
		if now.Sub(b.lastSeen) > m.evictionAge {
			delete(m.buckets, key)
			evicted++
		}
	}
	m.logger.Debug("Rate limiter buckets evicted", "evicted", evicted, "remaining", len(m.buckets))
}

// Close stops the eviction goroutine
func (m *LimiterManager) Close() {
	m.closeOnce.Do(func() { close(m.done) })
}

// rateLimitMiddleware rejects requests whose key has exhausted its bucket
func (s *Server) rateLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	if !s.RateLimit.Enabled || s.RateLimiter == nil {
		return func(next http.HandlerFunc) http.HandlerFunc { return next }
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			rateLimitKey, keyType := getRateLimitKey(r, s.RateLimit.ByAPIKey, s.RateLimit.ByIP)
			if rateLimitKey == "" {
				next(w, r)
				return
			}

			allowed, retryAfter := s.RateLimiter.Allow(rateLimitKey)
			if !allowed {
				if retryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				}
				s.observability.Metrics().RecordRateLimitHit(r.Context(), keyType)
				s.Logger.Info("Rate limit exceeded",
					"key_type", keyType,
					"endpoint", r.URL.Path,
					"client_ip", getClientIP(r),
					"request_id", requestID(r))
				writeErrorResponse(w, "Rate limit exceeded", "Too many requests", http.StatusTooManyRequests)
				return
			}

			next(w, r)
		}
	}
}

// getRateLimitKey returns the bucket key and its kind ("api_key" or "ip")
func getRateLimitKey(r *http.Request, byAPIKey, byIP bool) (string, string) {
	if byAPIKey {
		if apiKey := apiKeyFromRequest(r); apiKey != "" {
			return "api:" + apiKey, "api_key"
		}
	}

	if byIP {
		return "ip:" + getClientIP(r), "ip"
	}

	return "", ""
}

// getClientIP prefers proxy headers (X-Forwarded-For, then X-Real-IP) over RemoteAddr
func getClientIP(r *http.Request) string {
	if ip := firstValidIP(r.Header.Get("X-Forwarded-For")); ip != "" {
		return ip
	}
	if ip := firstValidIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// firstValidIP returns the first parseable address in a comma-separated list
func firstValidIP(list string) string {
	for candidate := range strings.SplitSeq(list, ",") {
		candidate = strings.TrimSpace(candidate)
		if net.ParseIP(candidate) != nil {
			return candidate
		}
	}
	return ""
}
