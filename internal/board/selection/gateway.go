package selection

import "github.com/louisbranch/tabletop.space/internal/board/shape"

// Gateway applies confirmed mutations to the authoritative shape and, when
// forward is set, relays them to remote peers. Calls are fire-and-forget:
// the mirror already reflects the intended result before a call is made, so
// no return value is consumed and failures are the gateway's to report.
type Gateway interface {
	ApplyDefaultAccess(shapeID string, access shape.AccessDescriptor, forward bool)

	ApplyOwnerAdd(shapeID string, owner shape.Owner, forward bool)
	ApplyOwnerUpdate(shapeID string, owner shape.Owner, forward bool)
	ApplyOwnerRemove(shapeID string, user string, forward bool)

	ApplyTrackerPush(shapeID string, tracker shape.Tracker, forward bool)
	ApplyTrackerUpdate(shapeID string, trackerID string, update shape.TrackerUpdate, forward bool)
	ApplyTrackerRemove(shapeID string, trackerID string, forward bool)

	ApplyAuraPush(shapeID string, aura shape.Aura, forward bool)
	ApplyAuraUpdate(shapeID string, auraID string, update shape.AuraUpdate, forward bool)
	ApplyAuraRemove(shapeID string, auraID string, forward bool)
}

// ParentResolver finds the composite parent of a shape, if it has one.
type ParentResolver interface {
	ResolveParent(shapeID string) (shape.Shape, bool)
}

// ParentResolverFunc adapts a function to the ParentResolver interface.
type ParentResolverFunc func(shapeID string) (shape.Shape, bool)

// ResolveParent implements ParentResolver.
func (f ParentResolverFunc) ResolveParent(shapeID string) (shape.Shape, bool) {
	return f(shapeID)
}
