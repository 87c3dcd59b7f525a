package guard_test

import (
	"testing"

	"talentbridge/portal-service/internal/guard"
	"talentbridge/portal-service/internal/identity"
)

func claimsFor(role identity.Role) *identity.SessionClaims {
	return &identity.SessionClaims{Subject: "user-1", Role: role}
}

// ── VerifyRole ─────────────────────────────────────────────────────────────

func TestVerifyRole_Match(t *testing.T) {
	d := guard.VerifyRole(identity.RoleSchool, claimsFor(identity.RoleSchool), "/school")
	if d.Kind != guard.Allow {
		t.Error("SCHOOL visiting /school should be allowed")
	}
}

func TestVerifyRole_MismatchRedirectsHome(t *testing.T) {
	d := guard.VerifyRole(identity.RoleGovernment, claimsFor(identity.RoleSchool), "/government/stats")
	if d.Kind != guard.Redirect {
		t.Fatal("SCHOOL visiting /government should redirect")
	}
	if d.Target != "/school" {
		t.Errorf("Target = %q, want /school (own portal, not an error page)", d.Target)
	}
}

func TestVerifyRole_StudentRedirectsToRoot(t *testing.T) {
	d := guard.VerifyRole(identity.RoleEnterprise, claimsFor(identity.RoleStudent), "/enterprise")
	if d.Kind != guard.Redirect || d.Target != "/" {
		t.Errorf("STUDENT visiting /enterprise should redirect to /, got (%v, %q)", d.Kind, d.Target)
	}
}

func TestVerifyRole_AdminBypassesAll(t *testing.T) {
	for _, required := range []identity.Role{
		identity.RoleEnterprise, identity.RoleGovernment, identity.RoleSchool, identity.RoleAdmin,
	} {
		if d := guard.VerifyRole(required, claimsFor(identity.RoleAdmin), "/x"); d.Kind != guard.Allow {
			t.Errorf("ADMIN should pass the %s portal check", required)
		}
	}
}

func TestVerifyRole_NilClaimsGoesToLogin(t *testing.T) {
	d := guard.VerifyRole(identity.RoleEnterprise, nil, "/enterprise/jobs")
	if d.Kind != guard.Redirect {
		t.Fatal("nil claims should redirect")
	}
	want := "/login?callbackUrl=%2Fenterprise%2Fjobs"
	if d.Target != want {
		t.Errorf("Target = %q, want %q (login, not a role default)", d.Target, want)
	}
}

func TestVerifyRole_CaseInsensitiveRole(t *testing.T) {
	claims := &identity.SessionClaims{Subject: "user-1", Role: identity.Role("school")}
	if d := guard.VerifyRole(identity.RoleSchool, claims, "/school"); d.Kind != guard.Allow {
		t.Error("role comparison should be case-insensitive")
	}
}
