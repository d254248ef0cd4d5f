package selection

import "github.com/louisbranch/tabletop.space/internal/board/shape"

// SetDefaultEditAccess sets the selected shape's default edit capability.
// Granting edit grants movement and vision.
func (e *Engine) SetDefaultEditAccess(value bool, origin Origin) {
	e.setDefaultAccess(e.st.access.WithEdit(value), origin)
}

// SetDefaultMovementAccess sets the selected shape's default movement
// capability. Granting movement grants vision; revoking it revokes edit.
func (e *Engine) SetDefaultMovementAccess(value bool, origin Origin) {
	e.setDefaultAccess(e.st.access.WithMovement(value), origin)
}

// SetDefaultVisionAccess sets the selected shape's default vision capability.
// Revoking vision revokes movement and edit.
func (e *Engine) SetDefaultVisionAccess(value bool, origin Origin) {
	e.setDefaultAccess(e.st.access.WithVision(value), origin)
}

func (e *Engine) setDefaultAccess(next shape.AccessDescriptor, origin Origin) {
	if !e.canMutate() {
		return
	}
	e.st.access = next
	if origin.Forwards() {
		e.gateway.ApplyDefaultAccess(e.st.uuid, next, true)
	}
}

// AddOwner adds an owner grant. Owners are a set keyed by user: adding a user
// that already has a grant is a no-op.
func (e *Engine) AddOwner(owner shape.Owner, origin Origin) {
	if !e.canMutate() {
		return
	}
	if owner.User == "" {
		return
	}
	if _, ok := e.findOwner(owner.User); ok {
		return
	}
	e.st.owners = append(e.st.owners, owner)
	if origin.Forwards() {
		e.gateway.ApplyOwnerAdd(e.st.uuid, owner, true)
	}
}

// UpdateOwner merges the update into the named owner's grant. Unknown users
// are a no-op.
func (e *Engine) UpdateOwner(user string, update shape.OwnerUpdate, origin Origin) {
	if !e.canMutate() {
		return
	}
	index, ok := e.findOwner(user)
	if !ok {
		return
	}
	merged := e.st.owners[index]
	merged.Access = merged.Access.Merge(update.Access)
	e.st.owners[index] = merged
	if origin.Forwards() {
		e.gateway.ApplyOwnerUpdate(e.st.uuid, merged, true)
	}
}

// RemoveOwner removes the named owner's grant. Unknown users are a no-op.
func (e *Engine) RemoveOwner(user string, origin Origin) {
	if !e.canMutate() {
		return
	}
	index, ok := e.findOwner(user)
	if !ok {
		return
	}
	e.st.owners = append(e.st.owners[:index], e.st.owners[index+1:]...)
	if origin.Forwards() {
		e.gateway.ApplyOwnerRemove(e.st.uuid, user, true)
	}
}

func (e *Engine) findOwner(user string) (int, bool) {
	for i, owner := range e.st.owners {
		if owner.User == user {
			return i, true
		}
	}
	return 0, false
}
