package shape

import (
	"strings"

	apperrors "github.com/louisbranch/tabletop.space/internal/errors"
)

var (
	// ErrEmptyShapeID indicates a missing shape ID.
	ErrEmptyShapeID = apperrors.New(apperrors.CodeShapeEmptyID, "shape id is required")
	// ErrEmptyOwnerUser indicates a missing owner user ID.
	ErrEmptyOwnerUser = apperrors.New(apperrors.CodeShapeEmptyOwnerUser, "owner user id is required")
	// ErrInvalidTracker indicates a tracker without an ID.
	ErrInvalidTracker = apperrors.New(apperrors.CodeShapeInvalidTracker, "tracker id is required")
	// ErrInvalidAura indicates an aura without an ID.
	ErrInvalidAura = apperrors.New(apperrors.CodeShapeInvalidAura, "aura id is required")
)

// Owner grants a user explicit access to a shape. Owner lists are sets keyed
// by User; storage and sync layers must never hold two grants for one user.
type Owner struct {
	User   string
	Access AccessDescriptor
}

// OwnerUpdate is a partial owner change; nil fields are left untouched.
type OwnerUpdate struct {
	Access AccessUpdate
}

// Tracker is a numeric counter attached to a shape, hit points being the
// usual case. Temporary marks the UI placeholder row that has not been
// persisted yet.
type Tracker struct {
	ID        string
	Shape     string
	Name      string
	Value     int
	MaxValue  int
	Temporary bool
}

// TrackerUpdate is a partial tracker change; nil fields are left untouched.
type TrackerUpdate struct {
	Name     *string
	Value    *int
	MaxValue *int
}

// Merge returns a copy of the tracker with the update overlaid.
func (t Tracker) Merge(update TrackerUpdate) Tracker {
	if update.Name != nil {
		t.Name = *update.Name
	}
	if update.Value != nil {
		t.Value = *update.Value
	}
	if update.MaxValue != nil {
		t.MaxValue = *update.MaxValue
	}
	return t
}

// Aura is an area-of-effect descriptor attached to a shape. It follows the
// same list protocol as Tracker but carries visual fields instead of a value.
type Aura struct {
	ID        string
	Shape     string
	Name      string
	Radius    int
	Colour    string
	Temporary bool
}

// AuraUpdate is a partial aura change; nil fields are left untouched.
type AuraUpdate struct {
	Name   *string
	Radius *int
	Colour *string
}

// Merge returns a copy of the aura with the update overlaid.
func (a Aura) Merge(update AuraUpdate) Aura {
	if update.Name != nil {
		a.Name = *update.Name
	}
	if update.Radius != nil {
		a.Radius = *update.Radius
	}
	if update.Colour != nil {
		a.Colour = *update.Colour
	}
	return a
}

// Shape is the authoritative-shape slice the selection mirror works from.
// Values of this type handed to the sync layer are snapshots; the sync layer
// deep-copies them again so the authoritative object never becomes observable
// through the mirror.
type Shape struct {
	UUID          string
	Name          string
	DefaultAccess AccessDescriptor
	Owners        []Owner
	ActiveTokens  []string
	Trackers      []Tracker
	Auras         []Aura
}

// Validate checks the shape's identifying fields, including the IDs of its
// sub-entities. Placeholder rows carry generated IDs, so an empty tracker or
// aura ID is always a caller bug.
func (s Shape) Validate() error {
	if strings.TrimSpace(s.UUID) == "" {
		return ErrEmptyShapeID
	}
	for _, owner := range s.Owners {
		if strings.TrimSpace(owner.User) == "" {
			return ErrEmptyOwnerUser
		}
	}
	for _, tracker := range s.Trackers {
		if strings.TrimSpace(tracker.ID) == "" {
			return ErrInvalidTracker
		}
	}
	for _, aura := range s.Auras {
		if strings.TrimSpace(aura.ID) == "" {
			return ErrInvalidAura
		}
	}
	return nil
}

// Clone returns a deep copy of the shape.
func (s Shape) Clone() Shape {
	copied := s
	copied.Owners = append([]Owner(nil), s.Owners...)
	copied.ActiveTokens = append([]string(nil), s.ActiveTokens...)
	copied.Trackers = append([]Tracker(nil), s.Trackers...)
	copied.Auras = append([]Aura(nil), s.Auras...)
	return copied
}

// OwnerByUser returns the owner entry for the user, if present.
func (s Shape) OwnerByUser(user string) (Owner, bool) {
	for _, owner := range s.Owners {
		if owner.User == user {
			return owner, true
		}
	}
	return Owner{}, false
}

// HasActiveToken reports whether the token is in the shape's active-token set.
func (s Shape) HasActiveToken(token string) bool {
	for _, candidate := range s.ActiveTokens {
		if candidate == token {
			return true
		}
	}
	return false
}
