package selection

import "github.com/louisbranch/tabletop.space/internal/board/shape"

// Trackers and auras share one list protocol: a parent segment of inherited
// entries, the selected shape's own segment, and exactly one trailing
// placeholder row. Pushes land before the placeholder (own) or at the segment
// cursor (parent); editing the placeholder promotes it to a real entry and
// appends a fresh one, so the trailing invariant is self-healing.

// PushTracker inserts a tracker owned by ownerShapeID. Pushes addressed to a
// shape that is neither the selection nor its parent are ignored; the
// selection may have changed while the mutation was in flight.
func (e *Engine) PushTracker(tracker shape.Tracker, ownerShapeID string, origin Origin) {
	if !e.canMutate() {
		return
	}
	tracker.Shape = ownerShapeID
	switch {
	case ownerShapeID == e.st.uuid:
		e.st.trackers = insertEntry(e.st.trackers, len(e.st.trackers)-1, tracker)
	case e.st.parentUUID != "" && ownerShapeID == e.st.parentUUID:
		e.st.trackers = insertEntry(e.st.trackers, e.st.firstRealTrackerIndex, tracker)
		e.st.firstRealTrackerIndex++
	default:
		return
	}
	if origin.Forwards() {
		e.gateway.ApplyTrackerPush(ownerShapeID, tracker, true)
	}
}

// UpdateTracker merges the update into the tracker with the given ID. A UI
// edit of the trailing placeholder promotes it: the placeholder becomes a
// real tracker forwarded as a push, and a fresh placeholder is appended.
func (e *Engine) UpdateTracker(trackerID string, update shape.TrackerUpdate, origin Origin) {
	if !e.canMutate() {
		return
	}
	index, ok := e.findTracker(trackerID)
	if !ok {
		return
	}
	merged := e.st.trackers[index].Merge(update)
	if merged.Temporary && origin.Forwards() {
		merged.Temporary = false
		e.st.trackers[index] = merged
		e.gateway.ApplyTrackerPush(merged.Shape, merged, true)
		e.st.trackers = append(e.st.trackers, e.placeholderTracker(e.st.uuid))
		return
	}
	e.st.trackers[index] = merged
	if origin.Forwards() {
		e.gateway.ApplyTrackerUpdate(merged.Shape, trackerID, update, true)
	}
}

// RemoveTracker splices out the tracker with the given ID. Removing a
// parent-segment entry shifts the segment boundary left.
func (e *Engine) RemoveTracker(trackerID string, origin Origin) {
	if !e.canMutate() {
		return
	}
	index, ok := e.findTracker(trackerID)
	if !ok {
		return
	}
	removed := e.st.trackers[index]
	e.st.trackers = spliceEntry(e.st.trackers, index)
	if index < e.st.firstRealTrackerIndex {
		e.st.firstRealTrackerIndex--
	}
	if origin.Forwards() {
		e.gateway.ApplyTrackerRemove(removed.Shape, trackerID, true)
	}
}

// PushAura inserts an aura owned by ownerShapeID. Same protocol as
// PushTracker.
func (e *Engine) PushAura(aura shape.Aura, ownerShapeID string, origin Origin) {
	if !e.canMutate() {
		return
	}
	aura.Shape = ownerShapeID
	switch {
	case ownerShapeID == e.st.uuid:
		e.st.auras = insertEntry(e.st.auras, len(e.st.auras)-1, aura)
	case e.st.parentUUID != "" && ownerShapeID == e.st.parentUUID:
		e.st.auras = insertEntry(e.st.auras, e.st.firstRealAuraIndex, aura)
		e.st.firstRealAuraIndex++
	default:
		return
	}
	if origin.Forwards() {
		e.gateway.ApplyAuraPush(ownerShapeID, aura, true)
	}
}

// UpdateAura merges the update into the aura with the given ID, promoting the
// trailing placeholder on a UI edit. Same protocol as UpdateTracker.
func (e *Engine) UpdateAura(auraID string, update shape.AuraUpdate, origin Origin) {
	if !e.canMutate() {
		return
	}
	index, ok := e.findAura(auraID)
	if !ok {
		return
	}
	merged := e.st.auras[index].Merge(update)
	if merged.Temporary && origin.Forwards() {
		merged.Temporary = false
		e.st.auras[index] = merged
		e.gateway.ApplyAuraPush(merged.Shape, merged, true)
		e.st.auras = append(e.st.auras, e.placeholderAura(e.st.uuid))
		return
	}
	e.st.auras[index] = merged
	if origin.Forwards() {
		e.gateway.ApplyAuraUpdate(merged.Shape, auraID, update, true)
	}
}

// RemoveAura splices out the aura with the given ID. Same protocol as
// RemoveTracker.
func (e *Engine) RemoveAura(auraID string, origin Origin) {
	if !e.canMutate() {
		return
	}
	index, ok := e.findAura(auraID)
	if !ok {
		return
	}
	removed := e.st.auras[index]
	e.st.auras = spliceEntry(e.st.auras, index)
	if index < e.st.firstRealAuraIndex {
		e.st.firstRealAuraIndex--
	}
	if origin.Forwards() {
		e.gateway.ApplyAuraRemove(removed.Shape, auraID, true)
	}
}

func (e *Engine) findTracker(trackerID string) (int, bool) {
	for i, tracker := range e.st.trackers {
		if tracker.ID == trackerID {
			return i, true
		}
	}
	return 0, false
}

func (e *Engine) findAura(auraID string) (int, bool) {
	for i, aura := range e.st.auras {
		if aura.ID == auraID {
			return i, true
		}
	}
	return 0, false
}

// insertEntry inserts entry at index, shifting the tail right. The result is
// a fresh backing array when growth occurs; callers must use the return value.
func insertEntry[T any](list []T, index int, entry T) []T {
	if index < 0 {
		index = 0
	}
	if index > len(list) {
		index = len(list)
	}
	list = append(list, entry)
	copy(list[index+1:], list[index:])
	list[index] = entry
	return list
}

// spliceEntry removes the entry at index, shifting the tail left.
func spliceEntry[T any](list []T, index int) []T {
	return append(list[:index], list[index+1:]...)
}
