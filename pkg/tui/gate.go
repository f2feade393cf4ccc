package tui

import (
	"errors"

	"github.com/harbourgate/identity-go/pkg/identity"
)

// Gate renders content only when the current user satisfies a role and
// permission requirement. It is a pure view helper with no network access;
// it re-evaluates on every render from the user snapshot it is given.
type Gate struct {
	// RequiredRole is the minimum role, or "" for any signed-in user.
	RequiredRole identity.Role

	// RequiredPermissions must all be held. Empty means no permission
	// requirement.
	RequiredPermissions []identity.Permission

	// UnauthenticatedView replaces the content when nobody is signed in.
	// Defaults to a sign-in prompt.
	UnauthenticatedView string

	// ForbiddenView replaces the content when the signed-in user fails the
	// requirement. Defaults to an access-denied notice.
	ForbiddenView string
}

// Allows reports whether u passes the gate.
func (g Gate) Allows(u *identity.User) bool {
	return identity.HasAccess(u, g.RequiredRole, g.RequiredPermissions)
}

// Render returns content when u passes the gate, and otherwise the
// fallback matching the denial reason. The two reasons render differently
// so a signed-in user is never told to sign in.
func (g Gate) Render(u *identity.User, content string) string {
	err := identity.CheckAccess(u, g.RequiredRole, g.RequiredPermissions)
	switch {
	case err == nil:
		return content
	case errors.Is(err, identity.ErrNotAuthenticated):
		if g.UnauthenticatedView != "" {
			return g.UnauthenticatedView
		}
		return styleWarn.Render("Sign in to view this content.")
	default:
		if g.ForbiddenView != "" {
			return g.ForbiddenView
		}
		return styleError.Render("You do not have access to this content.")
	}
}
