// Package identity owns authentication: credential checks, the signed session
// claim set, and the role vocabulary shared by every portal.
package identity

import (
	"fmt"
	"strings"
)

// Role values mirror the user_role enum in PostgreSQL.
type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleEnterprise Role = "ENTERPRISE"
	RoleSchool     Role = "SCHOOL"
	RoleGovernment Role = "GOVERNMENT"
	RoleAdmin      Role = "ADMIN"
)

// ParseRole normalizes a raw role string to its canonical form. Stored role
// strings have inconsistent casing, so comparison is case-insensitive.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleStudent, RoleEnterprise, RoleSchool, RoleGovernment, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Equal compares two role strings case-insensitively.
func (r Role) Equal(other Role) bool {
	return strings.EqualFold(string(r), string(other))
}

// DefaultPath returns the landing path a role is redirected to after login or
// after visiting another role's portal.
func (r Role) DefaultPath() string {
	switch r {
	case RoleEnterprise:
		return "/enterprise"
	case RoleGovernment:
		return "/government"
	case RoleSchool:
		return "/school"
	case RoleAdmin:
		return "/admin"
	case RoleStudent:
		return "/"
	}
	return "/"
}
