package shape

// AccessDescriptor captures the three shape capabilities. The capabilities
// form a total order: Edit implies Movement, Movement implies Vision.
type AccessDescriptor struct {
	Edit     bool
	Movement bool
	Vision   bool
}

// DefaultAccess returns the zero-capability descriptor.
func DefaultAccess() AccessDescriptor {
	return AccessDescriptor{}
}

// FullAccess returns the descriptor with every capability granted.
func FullAccess() AccessDescriptor {
	return AccessDescriptor{Edit: true, Movement: true, Vision: true}
}

// WithEdit returns a descriptor with Edit set to value. Granting Edit grants
// Movement and Vision; revoking Edit leaves the weaker capabilities alone.
func (a AccessDescriptor) WithEdit(value bool) AccessDescriptor {
	a.Edit = value
	if value {
		a.Movement = true
		a.Vision = true
	}
	return a
}

// WithMovement returns a descriptor with Movement set to value. Granting
// Movement grants Vision; revoking Movement revokes Edit.
func (a AccessDescriptor) WithMovement(value bool) AccessDescriptor {
	a.Movement = value
	if value {
		a.Vision = true
	} else {
		a.Edit = false
	}
	return a
}

// WithVision returns a descriptor with Vision set to value. Revoking Vision
// revokes Movement and Edit.
func (a AccessDescriptor) WithVision(value bool) AccessDescriptor {
	a.Vision = value
	if !value {
		a.Movement = false
		a.Edit = false
	}
	return a
}

// Merge overlays the provided partial update onto the descriptor, applying
// capability propagation for each field that is present.
func (a AccessDescriptor) Merge(update AccessUpdate) AccessDescriptor {
	if update.Edit != nil {
		a = a.WithEdit(*update.Edit)
	}
	if update.Movement != nil {
		a = a.WithMovement(*update.Movement)
	}
	if update.Vision != nil {
		a = a.WithVision(*update.Vision)
	}
	return a
}

// Valid reports whether the descriptor respects the capability ordering.
func (a AccessDescriptor) Valid() bool {
	if a.Edit && !(a.Movement && a.Vision) {
		return false
	}
	if a.Movement && !a.Vision {
		return false
	}
	return true
}

// AccessUpdate is a partial access change; nil fields are left untouched.
type AccessUpdate struct {
	Edit     *bool
	Movement *bool
	Vision   *bool
}
