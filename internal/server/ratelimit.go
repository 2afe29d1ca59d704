package server

//
// Per-client rate limiting
//

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/wirescope/wirescope/internal/model"
	"golang.org/x/time/rate"
)

// visitorIdleTimeout is the time after which we forget an idle client.
const visitorIdleTimeout = 3 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter is a token bucket rate limiter keyed by client IP address.
type IPRateLimiter struct {
	burst     int
	limit     rate.Limit
	mu        sync.Mutex
	lastPrune time.Time
	timeNow   func() time.Time
	visitors  map[string]*visitor
}

// NewIPRateLimiter creates a new IPRateLimiter allowing each client to
// perform rps requests per second with the given burst.
func NewIPRateLimiter(rps rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		burst:    burst,
		limit:    rps,
		timeNow:  time.Now,
		visitors: map[string]*visitor{},
	}
}

// Allow returns whether the given client may perform a request now.
func (rl *IPRateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.timeNow()
	rl.maybePrune(now)
	v, found := rl.visitors[ip]
	if !found {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// maybePrune removes idle visitors at most once per visitorIdleTimeout.
func (rl *IPRateLimiter) maybePrune(now time.Time) {
	if now.Sub(rl.lastPrune) < visitorIdleTimeout {
		return
	}
	rl.lastPrune = now
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) >= visitorIdleTimeout {
			delete(rl.visitors, ip)
		}
	}
}

// size returns the number of tracked clients.
func (rl *IPRateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// Wrap returns a handler that answers 429 to the clients exceeding the rate.
func (rl *IPRateLimiter) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ip := clientIP(req)
		if !rl.Allow(ip) {
			requestLogger(req.Context()).Warnf("ratelimit: too many requests from %s", ip)
			writeJSON(w, http.StatusTooManyRequests, model.NewErrorResponse(
				model.ErrCodeRateLimited, "Too many requests"))
			return
		}
		next.ServeHTTP(w, req)
	})
}

// clientIP returns the IP address of the client.
func clientIP(req *http.Request) string {
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}
