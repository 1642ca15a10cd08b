package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"p9e.in/saf/utils"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client IP
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

// NewIPRateLimiter allows perMinute requests per IP with the given burst
func NewIPRateLimiter(perMinute, burst int) *IPRateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &IPRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
		now:      time.Now,
	}
}

func (l *IPRateLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = l.now()
	return v.limiter
}

// Allow consumes one token for ip
func (l *IPRateLimiter) Allow(ip string) bool {
	return l.get(ip).AllowN(l.now(), 1)
}

// Sweep forgets visitors idle for longer than idle and returns how many
func (l *IPRateLimiter) Sweep(idle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for ip, v := range l.visitors {
		if l.now().Sub(v.lastSeen) > idle {
			delete(l.visitors, ip)
			n++
		}
	}
	return n
}

// Middleware rejects requests over the limit with 429
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(ClientIP(r)) {
			utils.WriteError(w, http.StatusTooManyRequests, "too many requests, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}
