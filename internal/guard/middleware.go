package guard

import (
	"context"
	"log"
	"net/http"
	"time"

	"talentbridge/portal-service/internal/identity"
)

// SessionCookie carries the signed bearer credential between requests.
const SessionCookie = "portal_session"

type contextKey struct{}

// SessionParser validates a raw session token. Satisfied by identity.Issuer.
type SessionParser interface {
	ParseSession(raw string) (identity.SessionClaims, error)
}

// ClaimsFrom returns the claim set bound to the request, if any. Handlers
// receive claims only through this accessor — never from ambient state.
func ClaimsFrom(ctx context.Context) (identity.SessionClaims, bool) {
	claims, ok := ctx.Value(contextKey{}).(identity.SessionClaims)
	return claims, ok
}

// WithClaims binds a claim set to a context. Exported for handler tests.
func WithClaims(ctx context.Context, claims identity.SessionClaims) context.Context {
	return context.WithValue(ctx, contextKey{}, claims)
}

// Middleware extracts the session cookie, validates it, and runs the coarse
// route-guard decision. Expired or malformed tokens count as no session.
func Middleware(parser SessionParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				claims     identity.SessionClaims
				hasSession bool
			)
			if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
				if parsed, err := parser.ParseSession(cookie.Value); err == nil {
					claims = parsed
					hasSession = true
				}
			}

			decision := Decide(r.URL.Path, hasSession)
			if decision.Kind == Redirect {
				http.Redirect(w, r, decision.Target, http.StatusFound)
				return
			}

			if hasSession {
				r = r.WithContext(WithClaims(r.Context(), claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePortalRole returns middleware enforcing the fine-grained role match
// for one portal area. It runs after Middleware, so an absent claim set here
// means the token failed validation between the two checks.
func RequirePortalRole(required identity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var claimsPtr *identity.SessionClaims
			if claims, ok := ClaimsFrom(r.Context()); ok {
				claimsPtr = &claims
			}

			decision := VerifyRole(required, claimsPtr, r.URL.Path)
			if decision.Kind == Redirect {
				http.Redirect(w, r, decision.Target, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Logging logs method, path, status, and latency for every request.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		log.Printf("[portal-service] %s %s %d %v", r.Method, r.URL.Path, wrapped.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
