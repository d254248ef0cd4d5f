// Package gateway applies confirmed board mutations to the authoritative
// store, relays forwarded ones to remote peers, and records an audit trail.
package gateway

import (
	"context"
	"log"

	"github.com/louisbranch/tabletop.space/internal/board/shape"
	"github.com/louisbranch/tabletop.space/internal/board/storage"
	"github.com/louisbranch/tabletop.space/internal/board/transport/ws"
	"github.com/louisbranch/tabletop.space/internal/telemetry"
)

// Broadcaster relays an envelope to connected peers.
type Broadcaster interface {
	Broadcast(env ws.Envelope)
}

// Gateway is the authoritative sink for board mutations. Calls are
// fire-and-forget: callers have already applied the mutation to their local
// mirror, so failures are logged rather than returned.
type Gateway struct {
	store   storage.ShapeStore
	relay   Broadcaster
	emitter *telemetry.Emitter
	logger  *log.Logger
}

// New creates a gateway. The relay and emitter may be nil, in which case
// forwarding and auditing become no-ops.
func New(store storage.ShapeStore, relay Broadcaster, emitter *telemetry.Emitter, logger *log.Logger) *Gateway {
	return &Gateway{store: store, relay: relay, emitter: emitter, logger: logger}
}

// ApplyDefaultAccess persists a new default access descriptor.
func (g *Gateway) ApplyDefaultAccess(shapeID string, access shape.AccessDescriptor, forward bool) {
	ctx := context.Background()
	if err := g.store.SetDefaultAccess(ctx, shapeID, access); err != nil {
		g.logger.Printf("set default access for shape %s: %v", shapeID, err)
		return
	}
	g.audit(ctx, ws.KindDefaultAccess, shapeID, "", forward)
	if forward {
		g.forward(ws.KindDefaultAccess, shapeID, ws.AccessPayloadFrom(access))
	}
}

// ApplyOwnerAdd persists a new owner grant.
func (g *Gateway) ApplyOwnerAdd(shapeID string, owner shape.Owner, forward bool) {
	g.putOwner(ws.KindOwnerAdd, shapeID, owner, forward)
}

// ApplyOwnerUpdate persists a changed owner grant.
func (g *Gateway) ApplyOwnerUpdate(shapeID string, owner shape.Owner, forward bool) {
	g.putOwner(ws.KindOwnerUpdate, shapeID, owner, forward)
}

func (g *Gateway) putOwner(kind string, shapeID string, owner shape.Owner, forward bool) {
	ctx := context.Background()
	if err := g.store.PutOwner(ctx, shapeID, owner); err != nil {
		g.logger.Printf("put owner %s on shape %s: %v", owner.User, shapeID, err)
		return
	}
	g.audit(ctx, kind, shapeID, owner.User, forward)
	if forward {
		g.forward(kind, shapeID, ws.OwnerPayloadFrom(owner))
	}
}

// ApplyOwnerRemove revokes an owner grant.
func (g *Gateway) ApplyOwnerRemove(shapeID string, user string, forward bool) {
	ctx := context.Background()
	if err := g.store.RemoveOwner(ctx, shapeID, user); err != nil {
		g.logger.Printf("remove owner %s from shape %s: %v", user, shapeID, err)
		return
	}
	g.audit(ctx, ws.KindOwnerRemove, shapeID, user, forward)
	if forward {
		g.forward(ws.KindOwnerRemove, shapeID, ws.OwnerRemovePayload{User: user})
	}
}

// ApplyTrackerPush persists a new tracker.
func (g *Gateway) ApplyTrackerPush(shapeID string, tracker shape.Tracker, forward bool) {
	ctx := context.Background()
	tracker.Shape = shapeID
	if err := g.store.PutTracker(ctx, tracker); err != nil {
		g.logger.Printf("put tracker %s on shape %s: %v", tracker.ID, shapeID, err)
		return
	}
	g.audit(ctx, ws.KindTrackerPush, shapeID, tracker.ID, forward)
	if forward {
		g.forward(ws.KindTrackerPush, shapeID, ws.TrackerPayloadFrom(tracker))
	}
}

// ApplyTrackerUpdate merges a partial change into the stored tracker.
func (g *Gateway) ApplyTrackerUpdate(shapeID string, trackerID string, update shape.TrackerUpdate, forward bool) {
	ctx := context.Background()
	current, err := g.store.GetTracker(ctx, shapeID, trackerID)
	if err != nil {
		g.logger.Printf("load tracker %s on shape %s: %v", trackerID, shapeID, err)
		return
	}
	if err := g.store.PutTracker(ctx, current.Merge(update)); err != nil {
		g.logger.Printf("put tracker %s on shape %s: %v", trackerID, shapeID, err)
		return
	}
	g.audit(ctx, ws.KindTrackerUpdate, shapeID, trackerID, forward)
	if forward {
		g.forward(ws.KindTrackerUpdate, shapeID, ws.TrackerUpdatePayload{
			ID:       trackerID,
			Name:     update.Name,
			Value:    update.Value,
			MaxValue: update.MaxValue,
		})
	}
}

// ApplyTrackerRemove deletes a tracker.
func (g *Gateway) ApplyTrackerRemove(shapeID string, trackerID string, forward bool) {
	ctx := context.Background()
	if err := g.store.RemoveTracker(ctx, shapeID, trackerID); err != nil {
		g.logger.Printf("remove tracker %s from shape %s: %v", trackerID, shapeID, err)
		return
	}
	g.audit(ctx, ws.KindTrackerRemove, shapeID, trackerID, forward)
	if forward {
		g.forward(ws.KindTrackerRemove, shapeID, ws.RemovePayload{ID: trackerID})
	}
}

// ApplyAuraPush persists a new aura.
func (g *Gateway) ApplyAuraPush(shapeID string, aura shape.Aura, forward bool) {
	ctx := context.Background()
	aura.Shape = shapeID
	if err := g.store.PutAura(ctx, aura); err != nil {
		g.logger.Printf("put aura %s on shape %s: %v", aura.ID, shapeID, err)
		return
	}
	g.audit(ctx, ws.KindAuraPush, shapeID, aura.ID, forward)
	if forward {
		g.forward(ws.KindAuraPush, shapeID, ws.AuraPayloadFrom(aura))
	}
}

// ApplyAuraUpdate merges a partial change into the stored aura.
func (g *Gateway) ApplyAuraUpdate(shapeID string, auraID string, update shape.AuraUpdate, forward bool) {
	ctx := context.Background()
	current, err := g.store.GetAura(ctx, shapeID, auraID)
	if err != nil {
		g.logger.Printf("load aura %s on shape %s: %v", auraID, shapeID, err)
		return
	}
	if err := g.store.PutAura(ctx, current.Merge(update)); err != nil {
		g.logger.Printf("put aura %s on shape %s: %v", auraID, shapeID, err)
		return
	}
	g.audit(ctx, ws.KindAuraUpdate, shapeID, auraID, forward)
	if forward {
		g.forward(ws.KindAuraUpdate, shapeID, ws.AuraUpdatePayload{
			ID:     auraID,
			Name:   update.Name,
			Radius: update.Radius,
			Colour: update.Colour,
		})
	}
}

// ApplyAuraRemove deletes an aura.
func (g *Gateway) ApplyAuraRemove(shapeID string, auraID string, forward bool) {
	ctx := context.Background()
	if err := g.store.RemoveAura(ctx, shapeID, auraID); err != nil {
		g.logger.Printf("remove aura %s from shape %s: %v", auraID, shapeID, err)
		return
	}
	g.audit(ctx, ws.KindAuraRemove, shapeID, auraID, forward)
	if forward {
		g.forward(ws.KindAuraRemove, shapeID, ws.RemovePayload{ID: auraID})
	}
}

func (g *Gateway) forward(kind string, shapeID string, payload any) {
	if g.relay == nil {
		return
	}
	env, err := ws.NewEnvelope(kind, shapeID, payload)
	if err != nil {
		g.logger.Printf("build %s envelope for shape %s: %v", kind, shapeID, err)
		return
	}
	g.relay.Broadcast(env)
}

func (g *Gateway) audit(ctx context.Context, eventName string, shapeID string, entityID string, forwarded bool) {
	if err := g.emitter.Emit(ctx, storage.AuditEvent{
		EventName: eventName,
		ShapeID:   shapeID,
		EntityID:  entityID,
		Forwarded: forwarded,
	}); err != nil {
		g.logger.Printf("audit %s for shape %s: %v", eventName, shapeID, err)
	}
}
