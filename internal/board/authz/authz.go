// Package authz centralizes the effective edit access decision for board
// shapes so the sync engine and transport handlers evaluate one policy
// instead of duplicating capability checks.
package authz

import "github.com/louisbranch/tabletop.space/internal/board/shape"

// Reason codes attached to authorization decisions.
const (
	ReasonAllowGlobalOverride = "ALLOW_GLOBAL_OVERRIDE"
	ReasonAllowActiveToken    = "ALLOW_ACTIVE_TOKEN"
	ReasonAllowDefaultAccess  = "ALLOW_DEFAULT_ACCESS"
	ReasonAllowOwnerGrant     = "ALLOW_OWNER_GRANT"
	ReasonDenyNoGrant         = "DENY_NO_GRANT"
)

// Viewer exposes the identity facts the edit-access policy needs.
type Viewer interface {
	// UserID returns the current user's ID.
	UserID() string
	// AlwaysEdit reports whether the viewer holds the global edit override.
	AlwaysEdit() bool
	// ImpersonatedTokens returns the token IDs the viewer is impersonating.
	ImpersonatedTokens() []string
}

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed    bool
	ReasonCode string
}

// CanEdit reports whether the viewer has effective edit access to the shape.
//
// Access is granted by the first matching rule: global override, active-token
// impersonation, the shape's default edit capability, or an explicit owner
// grant with edit. Everything else is denied.
func CanEdit(viewer Viewer, target shape.Shape) Decision {
	if viewer == nil {
		return Decision{ReasonCode: ReasonDenyNoGrant}
	}
	if viewer.AlwaysEdit() {
		return Decision{Allowed: true, ReasonCode: ReasonAllowGlobalOverride}
	}
	for _, token := range viewer.ImpersonatedTokens() {
		if target.HasActiveToken(token) {
			return Decision{Allowed: true, ReasonCode: ReasonAllowActiveToken}
		}
	}
	if target.DefaultAccess.Edit {
		return Decision{Allowed: true, ReasonCode: ReasonAllowDefaultAccess}
	}
	if owner, ok := target.OwnerByUser(viewer.UserID()); ok && owner.Access.Edit {
		return Decision{Allowed: true, ReasonCode: ReasonAllowOwnerGrant}
	}
	return Decision{ReasonCode: ReasonDenyNoGrant}
}
