package identity

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is the single error returned for every credential
// failure: unknown email, wrong password, or inactive account. Callers must
// not be able to tell which one it was.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Account is the stored identity an issuer authenticates against.
type Account struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	Status       string
	EnterpriseID string
	SchoolID     string
}

// AccountFinder looks up stored accounts by email.
type AccountFinder interface {
	FindAccountByEmail(ctx context.Context, email string) (Account, error)
}

// Issuer validates credentials and mints signed, time-bounded claim sets.
type Issuer struct {
	accounts AccountFinder
	secret   []byte
	ttl      time.Duration
}

// NewIssuer returns a configured Issuer.
func NewIssuer(accounts AccountFinder, secret string, ttl time.Duration) *Issuer {
	return &Issuer{accounts: accounts, secret: []byte(secret), ttl: ttl}
}

// Authenticate verifies email/password and on success returns the claim set
// together with its signed token. bcrypt's comparison is constant-time.
func (i *Issuer) Authenticate(ctx context.Context, email, password string) (SessionClaims, string, error) {
	account, err := i.accounts.FindAccountByEmail(ctx, email)
	if err != nil {
		return SessionClaims{}, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return SessionClaims{}, "", ErrInvalidCredentials
	}

	if account.Status != "ACTIVE" {
		return SessionClaims{}, "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := SessionClaims{
		Subject:      account.ID,
		Email:        account.Email,
		Role:         account.Role,
		EnterpriseID: account.EnterpriseID,
		SchoolID:     account.SchoolID,
		IssuedAt:     now,
		ExpiresAt:    now.Add(i.ttl),
	}

	token, err := SignToken(claims, i.secret)
	if err != nil {
		return SessionClaims{}, "", err
	}
	return claims, token, nil
}

// ParseSession validates a bearer token minted by this issuer.
func (i *Issuer) ParseSession(raw string) (SessionClaims, error) {
	return ParseToken(raw, i.secret)
}

// HashPassword bcrypt-hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
