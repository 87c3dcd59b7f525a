package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the immutable identity bound to a request: who the caller
// is, which role they act as, and which tenant (if any) they belong to. It is
// created only by the issuer and passed by value through every call boundary.
type SessionClaims struct {
	Subject      string
	Email        string
	Role         Role
	EnterpriseID string
	SchoolID     string
	IssuedAt     time.Time
	ExpiresAt    time.Time
}

// TenantID returns the tenant identifier for tenant-bound roles, empty
// otherwise.
func (c SessionClaims) TenantID() string {
	switch c.Role {
	case RoleEnterprise:
		return c.EnterpriseID
	case RoleSchool:
		return c.SchoolID
	}
	return ""
}

// ErrInvalidToken is returned for malformed, tampered, or expired tokens.
// Callers treat all three the same way: as an absent session.
var ErrInvalidToken = errors.New("invalid or expired session token")

type tokenClaims struct {
	Email        string `json:"email"`
	Role         string `json:"role"`
	EnterpriseID string `json:"enterpriseId,omitempty"`
	SchoolID     string `json:"schoolId,omitempty"`
	jwt.RegisteredClaims
}

// SignToken serializes claims into a signed HS256 JWT.
func SignToken(claims SessionClaims, secret []byte) (string, error) {
	tc := tokenClaims{
		Email:        claims.Email,
		Role:         string(claims.Role),
		EnterpriseID: claims.EnterpriseID,
		SchoolID:     claims.SchoolID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tc)
	return token.SignedString(secret)
}

// ParseToken validates a signed token and reconstructs the claim set.
// Expired tokens fail validation; the caller sees ErrInvalidToken either way.
func ParseToken(raw string, secret []byte) (SessionClaims, error) {
	var tc tokenClaims
	token, err := jwt.ParseWithClaims(raw, &tc, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return SessionClaims{}, ErrInvalidToken
	}

	role, err := ParseRole(tc.Role)
	if err != nil {
		return SessionClaims{}, ErrInvalidToken
	}

	claims := SessionClaims{
		Subject:      tc.Subject,
		Email:        tc.Email,
		Role:         role,
		EnterpriseID: tc.EnterpriseID,
		SchoolID:     tc.SchoolID,
	}
	if tc.IssuedAt != nil {
		claims.IssuedAt = tc.IssuedAt.Time
	}
	if tc.ExpiresAt != nil {
		claims.ExpiresAt = tc.ExpiresAt.Time
	}
	return claims, nil
}
