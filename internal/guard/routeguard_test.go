package guard_test

import (
	"testing"

	"talentbridge/portal-service/internal/guard"
	"talentbridge/portal-service/internal/identity"
)

// ── Decide — anonymous access ──────────────────────────────────────────────

func TestDecide_AnonymousProtectedPath(t *testing.T) {
	d := guard.Decide("/enterprise/jobs/create", false)
	if d.Kind != guard.Redirect {
		t.Fatal("anonymous /enterprise/jobs/create should redirect")
	}
	want := "/login?callbackUrl=%2Fenterprise%2Fjobs%2Fcreate"
	if d.Target != want {
		t.Errorf("Target = %q, want %q", d.Target, want)
	}
}

func TestDecide_AnonymousProtectedPrefixes(t *testing.T) {
	for _, path := range []string{"/enterprise", "/government", "/school", "/admin", "/government/policies"} {
		if d := guard.Decide(path, false); d.Kind != guard.Redirect {
			t.Errorf("Decide(%q, no session) should redirect", path)
		}
	}
}

func TestDecide_AnonymousPublicPaths(t *testing.T) {
	for _, path := range []string{"/", "/login", "/register", "/api/auth/login", "/health"} {
		if d := guard.Decide(path, false); d.Kind != guard.Allow {
			t.Errorf("Decide(%q, no session) should allow", path)
		}
	}
}

// ── Decide — open gateway defers to key validation ─────────────────────────

func TestDecide_OpenAPIDefers(t *testing.T) {
	for _, path := range []string{"/api/open/jobs", "/api/open/resumes/u-1"} {
		if d := guard.Decide(path, false); d.Kind != guard.Allow {
			t.Errorf("Decide(%q, no session) should allow (gateway validates the key)", path)
		}
	}
}

// ── Decide — static assets ─────────────────────────────────────────────────

func TestDecide_StaticAssets(t *testing.T) {
	for _, path := range []string{"/static/app.css", "/favicon.ico", "/logo.png"} {
		if d := guard.Decide(path, false); d.Kind != guard.Allow {
			t.Errorf("Decide(%q, no session) should allow (static asset)", path)
		}
	}
}

// ── Decide — with session ──────────────────────────────────────────────────

func TestDecide_SessionAllowsProtected(t *testing.T) {
	for _, path := range []string{"/enterprise", "/school/dashboard", "/admin/users"} {
		if d := guard.Decide(path, true); d.Kind != guard.Allow {
			t.Errorf("Decide(%q, session) should allow — role is checked later", path)
		}
	}
}

// ── PortalRole ─────────────────────────────────────────────────────────────

func TestPortalRole(t *testing.T) {
	cases := []struct {
		path string
		role identity.Role
		ok   bool
	}{
		{"/enterprise/jobs", identity.RoleEnterprise, true},
		{"/government", identity.RoleGovernment, true},
		{"/school/stats", identity.RoleSchool, true},
		{"/admin/users", identity.RoleAdmin, true},
		{"/jobs/123", "", false},
		{"/", "", false},
	}
	for _, c := range cases {
		role, ok := guard.PortalRole(c.path)
		if ok != c.ok || role != c.role {
			t.Errorf("PortalRole(%q) = (%q, %v), want (%q, %v)", c.path, role, ok, c.role, c.ok)
		}
	}
}
