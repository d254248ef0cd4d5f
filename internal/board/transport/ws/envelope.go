package ws

import (
	"encoding/json"
	"fmt"

	"github.com/louisbranch/tabletop.space/internal/board/shape"
)

// Envelope is the wire frame relayed between board peers. Payload carries a
// kind-specific JSON document.
type Envelope struct {
	Kind    string          `json:"kind"`
	ShapeID string          `json:"shape_id"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Envelope kinds, one per relayed mutation.
const (
	KindDefaultAccess = "access.default"
	KindOwnerAdd      = "owner.add"
	KindOwnerUpdate   = "owner.update"
	KindOwnerRemove   = "owner.remove"
	KindTrackerPush   = "tracker.push"
	KindTrackerUpdate = "tracker.update"
	KindTrackerRemove = "tracker.remove"
	KindAuraPush      = "aura.push"
	KindAuraUpdate    = "aura.update"
	KindAuraRemove    = "aura.remove"
)

// NewEnvelope builds an envelope with the payload marshalled in place.
func NewEnvelope(kind string, shapeID string, payload any) (Envelope, error) {
	env := Envelope{Kind: kind, ShapeID: shapeID}
	if payload == nil {
		return env, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	env.Payload = raw
	return env, nil
}

// AccessPayload is the wire form of an access descriptor.
type AccessPayload struct {
	Edit     bool `json:"edit"`
	Movement bool `json:"movement"`
	Vision   bool `json:"vision"`
}

// AccessPayloadFrom converts a descriptor to its wire form.
func AccessPayloadFrom(access shape.AccessDescriptor) AccessPayload {
	return AccessPayload{Edit: access.Edit, Movement: access.Movement, Vision: access.Vision}
}

// Descriptor converts the payload back to a domain descriptor.
func (p AccessPayload) Descriptor() shape.AccessDescriptor {
	return shape.AccessDescriptor{Edit: p.Edit, Movement: p.Movement, Vision: p.Vision}
}

// OwnerPayload is the wire form of an owner grant.
type OwnerPayload struct {
	User   string        `json:"user"`
	Access AccessPayload `json:"access"`
}

// OwnerPayloadFrom converts an owner grant to its wire form.
func OwnerPayloadFrom(owner shape.Owner) OwnerPayload {
	return OwnerPayload{User: owner.User, Access: AccessPayloadFrom(owner.Access)}
}

// Owner converts the payload back to a domain owner grant.
func (p OwnerPayload) Owner() shape.Owner {
	return shape.Owner{User: p.User, Access: p.Access.Descriptor()}
}

// OwnerRemovePayload identifies the grant being revoked.
type OwnerRemovePayload struct {
	User string `json:"user"`
}

// TrackerPayload is the wire form of a full tracker record.
type TrackerPayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Value    int    `json:"value"`
	MaxValue int    `json:"max_value"`
}

// TrackerPayloadFrom converts a tracker to its wire form. Placeholder rows
// never cross the wire, so Temporary has no wire field.
func TrackerPayloadFrom(tracker shape.Tracker) TrackerPayload {
	return TrackerPayload{ID: tracker.ID, Name: tracker.Name, Value: tracker.Value, MaxValue: tracker.MaxValue}
}

// Tracker converts the payload back to a domain tracker on the given shape.
func (p TrackerPayload) Tracker(shapeID string) shape.Tracker {
	return shape.Tracker{ID: p.ID, Shape: shapeID, Name: p.Name, Value: p.Value, MaxValue: p.MaxValue}
}

// TrackerUpdatePayload is the wire form of a partial tracker change.
type TrackerUpdatePayload struct {
	ID       string  `json:"id"`
	Name     *string `json:"name,omitempty"`
	Value    *int    `json:"value,omitempty"`
	MaxValue *int    `json:"max_value,omitempty"`
}

// Update converts the payload to a domain tracker update.
func (p TrackerUpdatePayload) Update() shape.TrackerUpdate {
	return shape.TrackerUpdate{Name: p.Name, Value: p.Value, MaxValue: p.MaxValue}
}

// AuraPayload is the wire form of a full aura record.
type AuraPayload struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Radius int    `json:"radius"`
	Colour string `json:"colour"`
}

// AuraPayloadFrom converts an aura to its wire form.
func AuraPayloadFrom(aura shape.Aura) AuraPayload {
	return AuraPayload{ID: aura.ID, Name: aura.Name, Radius: aura.Radius, Colour: aura.Colour}
}

// Aura converts the payload back to a domain aura on the given shape.
func (p AuraPayload) Aura(shapeID string) shape.Aura {
	return shape.Aura{ID: p.ID, Shape: shapeID, Name: p.Name, Radius: p.Radius, Colour: p.Colour}
}

// AuraUpdatePayload is the wire form of a partial aura change.
type AuraUpdatePayload struct {
	ID     string  `json:"id"`
	Name   *string `json:"name,omitempty"`
	Radius *int    `json:"radius,omitempty"`
	Colour *string `json:"colour,omitempty"`
}

// Update converts the payload to a domain aura update.
func (p AuraUpdatePayload) Update() shape.AuraUpdate {
	return shape.AuraUpdate{Name: p.Name, Radius: p.Radius, Colour: p.Colour}
}

// RemovePayload identifies the entity being removed.
type RemovePayload struct {
	ID string `json:"id"`
}
