package identity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"talentbridge/portal-service/internal/identity"
)

var testSecret = []byte("test-secret-not-for-production")

func baseClaims() identity.SessionClaims {
	now := time.Now()
	return identity.SessionClaims{
		Subject:   "user-1",
		Email:     "student@example.com",
		Role:      identity.RoleStudent,
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}
}

// ── SignToken / ParseToken ─────────────────────────────────────────────────

func TestTokenRoundTrip(t *testing.T) {
	claims := baseClaims()
	claims.Role = identity.RoleEnterprise
	claims.EnterpriseID = "ent-42"

	token, err := identity.SignToken(claims, testSecret)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	got, err := identity.ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if got.Subject != claims.Subject {
		t.Errorf("Subject = %q, want %q", got.Subject, claims.Subject)
	}
	if got.Email != claims.Email {
		t.Errorf("Email = %q, want %q", got.Email, claims.Email)
	}
	if got.Role != identity.RoleEnterprise {
		t.Errorf("Role = %q, want ENTERPRISE", got.Role)
	}
	if got.EnterpriseID != "ent-42" {
		t.Errorf("EnterpriseID = %q, want ent-42", got.EnterpriseID)
	}
}

func TestParseToken_Expired(t *testing.T) {
	claims := baseClaims()
	claims.IssuedAt = time.Now().Add(-2 * time.Hour)
	claims.ExpiresAt = time.Now().Add(-time.Hour)

	token, err := identity.SignToken(claims, testSecret)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	if _, err := identity.ParseToken(token, testSecret); !errors.Is(err, identity.ErrInvalidToken) {
		t.Errorf("ParseToken(expired) = %v, want ErrInvalidToken", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := identity.SignToken(baseClaims(), testSecret)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	if _, err := identity.ParseToken(token, []byte("other-secret")); !errors.Is(err, identity.ErrInvalidToken) {
		t.Errorf("ParseToken(wrong secret) = %v, want ErrInvalidToken", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := identity.ParseToken(raw, testSecret); !errors.Is(err, identity.ErrInvalidToken) {
			t.Errorf("ParseToken(%q) = %v, want ErrInvalidToken", raw, err)
		}
	}
}

// ── TenantID ───────────────────────────────────────────────────────────────

func TestTenantID(t *testing.T) {
	c := identity.SessionClaims{Role: identity.RoleEnterprise, EnterpriseID: "ent-1", SchoolID: "sch-1"}
	if got := c.TenantID(); got != "ent-1" {
		t.Errorf("TenantID(ENTERPRISE) = %q, want ent-1", got)
	}
	c.Role = identity.RoleSchool
	if got := c.TenantID(); got != "sch-1" {
		t.Errorf("TenantID(SCHOOL) = %q, want sch-1", got)
	}
	c.Role = identity.RoleStudent
	if got := c.TenantID(); got != "" {
		t.Errorf("TenantID(STUDENT) = %q, want empty", got)
	}
}

// ── Issuer ─────────────────────────────────────────────────────────────────

type fakeAccounts struct {
	account identity.Account
	err     error
}

func (f *fakeAccounts) FindAccountByEmail(_ context.Context, email string) (identity.Account, error) {
	if f.err != nil {
		return identity.Account{}, f.err
	}
	if email != f.account.Email {
		return identity.Account{}, errors.New("not found")
	}
	return f.account, nil
}

func activeAccount(t *testing.T, password string) identity.Account {
	t.Helper()
	hash, err := identity.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return identity.Account{
		ID:           "user-1",
		Email:        "student@example.com",
		PasswordHash: hash,
		Role:         identity.RoleStudent,
		Status:       "ACTIVE",
	}
}

func TestAuthenticate_Success(t *testing.T) {
	accounts := &fakeAccounts{account: activeAccount(t, "hunter22")}
	issuer := identity.NewIssuer(accounts, "secret", time.Hour)

	claims, token, err := issuer.Authenticate(context.Background(), "student@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("Subject = %q, want user-1", claims.Subject)
	}

	parsed, err := issuer.ParseSession(token)
	if err != nil {
		t.Fatalf("ParseSession: %v", err)
	}
	if parsed.Role != identity.RoleStudent {
		t.Errorf("Role = %q, want STUDENT", parsed.Role)
	}
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	accounts := &fakeAccounts{account: activeAccount(t, "hunter22")}
	issuer := identity.NewIssuer(accounts, "secret", time.Hour)

	_, _, err := issuer.Authenticate(context.Background(), "student@example.com", "wrong")
	if !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Errorf("Authenticate(wrong password) = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthenticate_UnknownEmail(t *testing.T) {
	accounts := &fakeAccounts{account: activeAccount(t, "hunter22")}
	issuer := identity.NewIssuer(accounts, "secret", time.Hour)

	_, _, err := issuer.Authenticate(context.Background(), "nobody@example.com", "hunter22")
	if !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Errorf("Authenticate(unknown email) = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthenticate_InactiveAccount(t *testing.T) {
	account := activeAccount(t, "hunter22")
	account.Status = "DISABLED"
	issuer := identity.NewIssuer(&fakeAccounts{account: account}, "secret", time.Hour)

	_, _, err := issuer.Authenticate(context.Background(), "student@example.com", "hunter22")
	if !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Errorf("Authenticate(inactive) = %v, want ErrInvalidCredentials", err)
	}
}
