package guard

import "talentbridge/portal-service/internal/identity"

// VerifyRole checks the caller's actual role against the role a view
// requires. A mismatch is corrected silently: the caller is redirected to
// their own portal's landing path, never to an error page. ADMIN passes every
// portal check.
//
// A nil claim set (no session when the check runs) is treated exactly like an
// unauthenticated request and redirected to login, not to a role default.
func VerifyRole(required identity.Role, claims *identity.SessionClaims, originalPath string) Decision {
	if claims == nil {
		return Decision{Kind: Redirect, Target: LoginRedirect(originalPath)}
	}

	if claims.Role.Equal(identity.RoleAdmin) {
		return Decision{Kind: Allow}
	}

	if claims.Role.Equal(required) {
		return Decision{Kind: Allow}
	}

	return Decision{Kind: Redirect, Target: claims.Role.DefaultPath()}
}
