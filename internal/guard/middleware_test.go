package guard_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"talentbridge/portal-service/internal/guard"
	"talentbridge/portal-service/internal/identity"
)

type stubParser struct {
	claims identity.SessionClaims
	err    error
}

func (s *stubParser) ParseSession(string) (identity.SessionClaims, error) {
	return s.claims, s.err
}

func okHandler(sawClaims *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := guard.ClaimsFrom(r.Context()); ok && sawClaims != nil {
			*sawClaims = true
		}
		w.WriteHeader(http.StatusOK)
	})
}

// ── Middleware ─────────────────────────────────────────────────────────────

func TestMiddleware_NoCookieOnProtectedPath(t *testing.T) {
	mw := guard.Middleware(&stubParser{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/enterprise/jobs", nil)

	mw(okHandler(nil)).ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?callbackUrl=%2Fenterprise%2Fjobs" {
		t.Errorf("Location = %q", loc)
	}
}

func TestMiddleware_InvalidTokenCountsAsNoSession(t *testing.T) {
	mw := guard.Middleware(&stubParser{err: errors.New("bad token")})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/school", nil)
	req.AddCookie(&http.Cookie{Name: guard.SessionCookie, Value: "tampered"})

	mw(okHandler(nil)).ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302 (invalid token is an absent session)", rec.Code)
	}
}

func TestMiddleware_ValidSessionInjectsClaims(t *testing.T) {
	parser := &stubParser{claims: identity.SessionClaims{
		Subject:   "user-1",
		Role:      identity.RoleEnterprise,
		ExpiresAt: time.Now().Add(time.Hour),
	}}
	mw := guard.Middleware(parser)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/enterprise", nil)
	req.AddCookie(&http.Cookie{Name: guard.SessionCookie, Value: "valid"})

	var sawClaims bool
	mw(okHandler(&sawClaims)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !sawClaims {
		t.Error("handler should see claims in the request context")
	}
}

func TestMiddleware_PublicPathSkipsRedirect(t *testing.T) {
	mw := guard.Middleware(&stubParser{err: errors.New("no session")})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/login", nil)

	mw(okHandler(nil)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

// ── RequirePortalRole ──────────────────────────────────────────────────────

func TestRequirePortalRole_WrongRoleRedirects(t *testing.T) {
	mw := guard.RequirePortalRole(identity.RoleGovernment)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/government", nil)
	req = req.WithContext(guard.WithClaims(req.Context(), identity.SessionClaims{
		Subject: "user-1",
		Role:    identity.RoleSchool,
	}))

	mw(okHandler(nil)).ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/school" {
		t.Errorf("Location = %q, want /school", loc)
	}
}

func TestRequirePortalRole_AdminPasses(t *testing.T) {
	mw := guard.RequirePortalRole(identity.RoleEnterprise)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/enterprise", nil)
	req = req.WithContext(guard.WithClaims(req.Context(), identity.SessionClaims{
		Subject: "admin-1",
		Role:    identity.RoleAdmin,
	}))

	mw(okHandler(nil)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
