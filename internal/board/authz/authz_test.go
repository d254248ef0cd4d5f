package authz

import (
	"testing"

	"github.com/louisbranch/tabletop.space/internal/board/shape"
)

type fakeViewer struct {
	userID     string
	alwaysEdit bool
	tokens     []string
}

func (f fakeViewer) UserID() string               { return f.userID }
func (f fakeViewer) AlwaysEdit() bool             { return f.alwaysEdit }
func (f fakeViewer) ImpersonatedTokens() []string { return f.tokens }

func TestCanEdit(t *testing.T) {
	target := shape.Shape{
		UUID:         "shape-1",
		ActiveTokens: []string{"token-1"},
		Owners: []shape.Owner{
			{User: "owner-edit", Access: shape.FullAccess()},
			{User: "owner-vision", Access: shape.AccessDescriptor{Vision: true}},
		},
	}

	tests := []struct {
		name       string
		viewer     fakeViewer
		target     shape.Shape
		allowed    bool
		reasonCode string
	}{
		{
			name:       "global override allows",
			viewer:     fakeViewer{userID: "anyone", alwaysEdit: true},
			target:     target,
			allowed:    true,
			reasonCode: ReasonAllowGlobalOverride,
		},
		{
			name:       "active token impersonation allows",
			viewer:     fakeViewer{userID: "anyone", tokens: []string{"token-1"}},
			target:     target,
			allowed:    true,
			reasonCode: ReasonAllowActiveToken,
		},
		{
			name:       "inactive token does not allow",
			viewer:     fakeViewer{userID: "anyone", tokens: []string{"token-2"}},
			target:     target,
			allowed:    false,
			reasonCode: ReasonDenyNoGrant,
		},
		{
			name:       "default edit access allows",
			viewer:     fakeViewer{userID: "anyone"},
			target:     shape.Shape{UUID: "shape-2", DefaultAccess: shape.FullAccess()},
			allowed:    true,
			reasonCode: ReasonAllowDefaultAccess,
		},
		{
			name:       "owner with edit allows",
			viewer:     fakeViewer{userID: "owner-edit"},
			target:     target,
			allowed:    true,
			reasonCode: ReasonAllowOwnerGrant,
		},
		{
			name:       "owner without edit is denied",
			viewer:     fakeViewer{userID: "owner-vision"},
			target:     target,
			allowed:    false,
			reasonCode: ReasonDenyNoGrant,
		},
		{
			name:       "stranger is denied",
			viewer:     fakeViewer{userID: "stranger"},
			target:     target,
			allowed:    false,
			reasonCode: ReasonDenyNoGrant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := CanEdit(tt.viewer, tt.target)
			if decision.Allowed != tt.allowed {
				t.Fatalf("allowed = %v, want %v", decision.Allowed, tt.allowed)
			}
			if decision.ReasonCode != tt.reasonCode {
				t.Fatalf("reason = %q, want %q", decision.ReasonCode, tt.reasonCode)
			}
		})
	}
}

func TestCanEditNilViewer(t *testing.T) {
	decision := CanEdit(nil, shape.Shape{DefaultAccess: shape.FullAccess()})
	if decision.Allowed {
		t.Fatal("expected nil viewer to be denied")
	}
}
