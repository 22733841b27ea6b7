package middleware

import (
	"net/http"
	"strconv"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"dataroom/internal/httputil"
)

// maxTrackedClients bounds the number of per-IP limiters kept in memory.
// The least recently seen client is evicted first.
const maxTrackedClients = 10000

// IPRateLimiter hands out one token bucket per client IP
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

// NewIPRateLimiter creates a limiter allowing perSecond requests per IP with the given burst
func NewIPRateLimiter(perSecond float64, burst int) *IPRateLimiter {
	cache, err := lru.New[string, *rate.Limiter](maxTrackedClients)
	if err != nil {
		// only fails for a non-positive size
		panic(err)
	}
	if burst < 1 {
		burst = 1
	}
	return &IPRateLimiter{
		limiters: cache,
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

func (l *IPRateLimiter) limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, ok := l.limiters.Get(ip); ok {
		return lim
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	l.limiters.Add(ip, lim)
	return lim
}

// Allow reports whether ip may make a request now
func (l *IPRateLimiter) Allow(ip string) bool {
	return l.limiter(ip).Allow()
}

// RateLimit rejects requests over the per-IP limit with 429
func RateLimit(l *IPRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(clientIP(r)) {
				retry := 1
				if l.limit > 0 {
					retry = int(1/float64(l.limit)) + 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				httputil.RespondError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
