package selection

import "github.com/louisbranch/tabletop.space/internal/board/shape"

// state is the reactive projection of the selected shape. It is exclusively
// owned by the engine: every field is a copy of authoritative data, never a
// live reference, and every read surface returns another copy.
type state struct {
	uuid       string
	parentUUID string
	lastUUID   string

	access       shape.AccessDescriptor
	owners       []shape.Owner
	activeTokens []string

	trackers []shape.Tracker
	auras    []shape.Aura

	// Cursors mark the boundary between the parent segment (inherited
	// entries, always first) and the selected shape's own segment.
	firstRealTrackerIndex int
	firstRealAuraIndex    int
}

// View is a read-only snapshot of the selection mirror for rendering
// collaborators. Slices are copies; mutating a View never touches the engine.
type View struct {
	UUID        string
	ParentUUID  string
	LastUUID    string
	IsComposite bool

	Access shape.AccessDescriptor
	Owners []shape.Owner

	Trackers []shape.Tracker
	Auras    []shape.Aura

	FirstRealTrackerIndex int
	FirstRealAuraIndex    int
}

func (s *state) view() View {
	return View{
		UUID:                  s.uuid,
		ParentUUID:            s.parentUUID,
		LastUUID:              s.lastUUID,
		IsComposite:           s.parentUUID != "",
		Access:                s.access,
		Owners:                append([]shape.Owner(nil), s.owners...),
		Trackers:              append([]shape.Tracker(nil), s.trackers...),
		Auras:                 append([]shape.Aura(nil), s.auras...),
		FirstRealTrackerIndex: s.firstRealTrackerIndex,
		FirstRealAuraIndex:    s.firstRealAuraIndex,
	}
}

// authzShape reconstructs the shape slice the edit-access policy evaluates.
func (s *state) authzShape() shape.Shape {
	return shape.Shape{
		UUID:          s.uuid,
		DefaultAccess: s.access,
		Owners:        s.owners,
		ActiveTokens:  s.activeTokens,
	}
}
