package selection

import (
	"github.com/louisbranch/tabletop.space/internal/board/authz"
	"github.com/louisbranch/tabletop.space/internal/board/shape"
	"github.com/louisbranch/tabletop.space/internal/id"
)

// Engine is the synchronization engine for the active selection. It owns the
// selection mirror and decides, per mutation origin, whether the mutation
// also goes to the gateway.
type Engine struct {
	gateway Gateway
	parents ParentResolver
	viewer  authz.Viewer
	newID   func() string

	st state
}

// Option configures an Engine.
type Option func(*Engine)

// WithIDGenerator overrides placeholder ID generation, mostly for tests.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// NewEngine creates a selection engine with its collaborators injected.
func NewEngine(gateway Gateway, parents ParentResolver, viewer authz.Viewer, opts ...Option) *Engine {
	engine := &Engine{
		gateway: gateway,
		parents: parents,
		viewer:  viewer,
		newID:   id.MustNewID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(engine)
		}
	}
	return engine
}

// Select replaces the mirror with a snapshot of the shape. The shape and, if
// it is a composite child, its parent's trackers and auras are copied by
// value; the mirror never aliases authoritative data. Each list ends with one
// placeholder entry representing an empty editable row.
func (e *Engine) Select(target shape.Shape) {
	if target.UUID == "" {
		return
	}
	snapshot := target.Clone()

	next := state{
		uuid:         snapshot.UUID,
		lastUUID:     e.st.lastUUID,
		access:       snapshot.DefaultAccess,
		owners:       snapshot.Owners,
		activeTokens: snapshot.ActiveTokens,
	}

	var parentTrackers []shape.Tracker
	var parentAuras []shape.Aura
	if e.parents != nil {
		if parent, ok := e.parents.ResolveParent(snapshot.UUID); ok {
			parentClone := parent.Clone()
			next.parentUUID = parentClone.UUID
			parentTrackers = parentClone.Trackers
			parentAuras = parentClone.Auras
		}
	}

	next.trackers = append(parentTrackers, snapshot.Trackers...)
	next.trackers = append(next.trackers, e.placeholderTracker(snapshot.UUID))
	next.firstRealTrackerIndex = len(parentTrackers)

	next.auras = append(parentAuras, snapshot.Auras...)
	next.auras = append(next.auras, e.placeholderAura(snapshot.UUID))
	next.firstRealAuraIndex = len(parentAuras)

	e.st = next
}

// Clear resets the mirror, remembering the cleared UUID so the UI panel can
// stay open if the same shape reappears during a re-sync.
func (e *Engine) Clear() {
	e.st = state{lastUUID: e.st.uuid}
}

// Snapshot returns a read-only copy of the selection mirror.
func (e *Engine) Snapshot() View {
	return e.st.view()
}

// UUID returns the selected shape's ID, or "" when nothing is selected.
func (e *Engine) UUID() string {
	return e.st.uuid
}

// ParentUUID returns the composite parent's ID, or "" for a plain selection.
func (e *Engine) ParentUUID() string {
	return e.st.parentUUID
}

// LastUUID returns the most recently cleared selection's ID.
func (e *Engine) LastUUID() string {
	return e.st.lastUUID
}

// IsComposite reports whether the selected shape is a composite child.
func (e *Engine) IsComposite() bool {
	return e.st.parentUUID != ""
}

// Access returns the selected shape's default access summary.
func (e *Engine) Access() shape.AccessDescriptor {
	return e.st.access
}

// Owners returns a copy of the selected shape's owner grants.
func (e *Engine) Owners() []shape.Owner {
	return append([]shape.Owner(nil), e.st.owners...)
}

// Trackers returns a copy of the ordered tracker list, placeholder included.
func (e *Engine) Trackers() []shape.Tracker {
	return append([]shape.Tracker(nil), e.st.trackers...)
}

// Auras returns a copy of the ordered aura list, placeholder included.
func (e *Engine) Auras() []shape.Aura {
	return append([]shape.Aura(nil), e.st.auras...)
}

func (e *Engine) placeholderTracker(shapeID string) shape.Tracker {
	return shape.Tracker{ID: e.newID(), Shape: shapeID, Temporary: true}
}

func (e *Engine) placeholderAura(shapeID string) shape.Aura {
	return shape.Aura{ID: e.newID(), Shape: shapeID, Temporary: true}
}

// canMutate is the shared gate for every mutating operation: a selection must
// exist and the viewer must hold effective edit access. Failing the gate is a
// silent no-op, an expected race between UI state and a changing selection,
// not an error.
func (e *Engine) canMutate() bool {
	if e.st.uuid == "" {
		return false
	}
	return authz.CanEdit(e.viewer, e.st.authzShape()).Allowed
}
