package middleware

import (
	"net"
	"net/http"
	"sync"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/handler/http/response"
	"golang.org/x/time/rate"
)

// KeyedRateLimiter hands out one token bucket per key.
type KeyedRateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	r        rate.Limit
	b        int
}

func NewKeyedRateLimiter(r rate.Limit, b int) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		r:        r,
		b:        b,
	}
}

func (l *KeyedRateLimiter) Limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(l.r, l.b)
		l.limiters[key] = limiter
	}

	return limiter
}

// RateLimitByIP rejects clients that exceed r requests per second with bursts of b.
func RateLimitByIP(r rate.Limit, b int) func(http.Handler) http.Handler {
	limiter := NewKeyedRateLimiter(r, b)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !limiter.Limiter(ClientIP(req)).Allow() {
				response.TooManyRequests(w, "Too many requests, slow down")
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

// ClientIP is the remote host without its port.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
