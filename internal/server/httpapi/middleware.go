package httpapi

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/cuivault/internal/common"
	"github.com/dmitrijs2005/cuivault/internal/logging"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// accessLog records one line per request. The query string is never logged
// because view tokens travel in it.
func accessLog(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				log.Info(r.Context(), "http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", status,
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
					"request_id", middleware.GetReqID(r.Context()),
					"remote", clientIP(r),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// multiLimiter keeps one token bucket per client key. Idle buckets are
// dropped after ttl.
type multiLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	entries   map[string]*limBucket
	lastSweep time.Time
	now       func() time.Time
}

type limBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newMultiLimiter(limit rate.Limit, burst int, ttl time.Duration) *multiLimiter {
	return &multiLimiter{
		limit:   limit,
		burst:   burst,
		ttl:     ttl,
		entries: make(map[string]*limBucket),
		now:     time.Now,
	}
}

func (m *multiLimiter) allow(key string) bool {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastSweep) > m.ttl {
		for k, v := range m.entries {
			if now.Sub(v.lastSeen) > m.ttl {
				delete(m.entries, k)
			}
		}
		m.lastSweep = now
	}

	b := m.entries[key]
	if b == nil {
		b = &limBucket{lim: rate.NewLimiter(m.limit, m.burst)}
		m.entries[key] = b
	}
	b.lastSeen = now
	return b.lim.AllowN(now, 1)
}

func (m *multiLimiter) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// clientIP is the host part of RemoteAddr. Proxy headers only count when
// middleware.RealIP ran ahead of it.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// retryAfterSeconds is the wait for one token to refill, at least a second.
func retryAfterSeconds(l rate.Limit) int {
	if l <= 0 {
		return 1
	}
	return max(1, int(math.Ceil(1/float64(l))))
}

// rateLimit answers 429 with Retry-After once a client exceeds its bucket.
func rateLimit(m *multiLimiter) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(retryAfterSeconds(m.limit))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !m.allow(clientIP(r)) {
				w.Header().Set("Retry-After", retryAfter)
				writeError(w, common.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
