package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// defaultIdleTTL is how long a client's bucket survives without requests.
const defaultIdleTTL = 10 * time.Minute

type visitor struct {
	lim  *rate.Limiter
	seen time.Time
}

// IPRateLimiter keeps one token bucket per client address. Buckets idle for
// longer than the TTL are dropped on a later request.
type IPRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*visitor
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewIPRateLimiter allows perMinute requests per client with the given burst.
func NewIPRateLimiter(perMinute, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		limiters:  make(map[string]*visitor),
		limit:     rate.Limit(float64(perMinute) / 60),
		burst:     burst,
		idle:      defaultIdleTTL,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (l *IPRateLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idle {
		l.sweep(now)
	}
	v, ok := l.limiters[key]
	if !ok {
		v = &visitor{lim: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = v
	}
	v.seen = now
	return v.lim
}

// sweep drops idle buckets. Caller holds mu.
func (l *IPRateLimiter) sweep(now time.Time) {
	for key, v := range l.limiters {
		if now.Sub(v.seen) >= l.idle {
			delete(l.limiters, key)
		}
	}
	l.lastSweep = now
}

// Limit rejects requests over the client's budget with 429.
func (l *IPRateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.limiter(clientIP(r)).Allow() {
			w.Header().Set("Retry-After", "60")
			writeDetail(w, http.StatusTooManyRequests, "Request was throttled.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
