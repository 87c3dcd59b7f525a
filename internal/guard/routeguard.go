// Package guard implements the two-stage access control in front of the
// portal: a coarse route guard that only checks session presence, and a
// fine-grained role verifier that corrects cross-portal visits.
//
// The two stages are deliberately separate. The route guard runs on every
// request and cannot see inside the session; it stops anonymous access. The
// role verifier runs with the parsed claim set and stops a SCHOOL user from
// reading /government pages. Collapsing them into one check would lose the
// layered defense.
package guard

import (
	"net/url"
	"strings"

	"talentbridge/portal-service/internal/identity"
)

// DecisionKind classifies a guard outcome.
type DecisionKind int

const (
	// Allow lets the request continue to the handler.
	Allow DecisionKind = iota
	// Redirect sends the caller to Decision.Target instead.
	Redirect
)

// Decision is the envelope the guard hands to the HTTP layer. The guard never
// navigates itself.
type Decision struct {
	Kind   DecisionKind
	Target string
}

// publicPaths are reachable without a session. Prefix match on the path plus
// a trailing slash, exact match on the path itself.
var publicPaths = []string{
	"/",
	"/login",
	"/register",
	"/api/auth",
	"/health",
}

// protectedPrefixes are the portal areas that require a session.
var protectedPrefixes = []string{
	"/enterprise",
	"/government",
	"/school",
	"/admin",
}

// openAPIPrefix is handled entirely by the gateway's own key validation; the
// route guard defers to it unconditionally.
const openAPIPrefix = "/api/open/"

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func isStaticAsset(path string) bool {
	return strings.HasPrefix(path, "/static/") ||
		strings.HasPrefix(path, "/favicon") ||
		strings.Contains(path, ".")
}

func isProtectedPath(path string) bool {
	for _, p := range protectedPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// Decide performs the coarse allow/redirect check. It never inspects the role
// inside the session — only whether one is present. Fine-grained role checks
// happen in VerifyRole and in the query layer.
func Decide(path string, hasSession bool) Decision {
	if isStaticAsset(path) {
		return Decision{Kind: Allow}
	}
	if strings.HasPrefix(path, openAPIPrefix) {
		return Decision{Kind: Allow}
	}
	if isPublicPath(path) {
		return Decision{Kind: Allow}
	}

	if isProtectedPath(path) {
		if !hasSession {
			return Decision{Kind: Redirect, Target: LoginRedirect(path)}
		}
		return Decision{Kind: Allow}
	}

	return Decision{Kind: Allow}
}

// LoginRedirect builds the login URL preserving the intended destination.
func LoginRedirect(callback string) string {
	return "/login?callbackUrl=" + url.QueryEscape(callback)
}

// PortalRole extracts the role a portal path belongs to, or false for paths
// outside the dashboard areas.
func PortalRole(path string) (identity.Role, bool) {
	trimmed := strings.TrimPrefix(path, "/")
	portal, _, _ := strings.Cut(trimmed, "/")
	switch portal {
	case "enterprise":
		return identity.RoleEnterprise, true
	case "government":
		return identity.RoleGovernment, true
	case "school":
		return identity.RoleSchool, true
	case "admin":
		return identity.RoleAdmin, true
	}
	return "", false
}
