// Package openapi is the external integration gateway: a separate,
// static-secret-keyed entry point that serves globally-published data with
// field redaction and hard result caps. It never touches session state.
package openapi

import (
	"crypto/subtle"
	"log"
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"talentbridge/portal-service/internal/respond"
)

// apiKeyHeader carries the shared secret.
const apiKeyHeader = "X-API-Key"

// RequireAPIKey validates the caller-provided key against the configured
// secret in constant time. With no secret configured, production refuses all
// access — a misconfigured deployment must fail closed — while development
// allows through with a warning.
func RequireAPIKey(secret string, production bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				if production {
					log.Println("[portal-service] CRITICAL: OPEN_API_KEY not configured in production")
					respond.Error(w, http.StatusUnauthorized, "service misconfigured")
					return
				}
				log.Println("[portal-service] OPEN_API_KEY not configured, skipping validation (dev only)")
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get(apiKeyHeader)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				respond.Error(w, http.StatusUnauthorized, "invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// limiterPool hands out one token bucket per remote host.
type limiterPool struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	perMin   int
}

func (p *limiterPool) get(host string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(p.perMin)/60, p.perMin)
		p.limiters[host] = l
	}
	return l
}

// RateLimit bounds external query cost per remote host.
func RateLimit(requestsPerMinute int) func(http.Handler) http.Handler {
	pool := &limiterPool{limiters: make(map[string]*rate.Limiter), perMin: requestsPerMinute}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			if !pool.get(host).Allow() {
				respond.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
