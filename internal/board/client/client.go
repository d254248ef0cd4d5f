// Package client mirrors relayed board mutations into a local selection
// engine. It is the peer-side counterpart of the server's relay loop: the
// server fans envelopes out, this package feeds them into the engine tagged
// OriginRemote so nothing loops back to the gateway.
package client

import (
	"context"
	"encoding/json"
	"log"

	"github.com/louisbranch/tabletop.space/internal/board/content"
	"github.com/louisbranch/tabletop.space/internal/board/selection"
	"github.com/louisbranch/tabletop.space/internal/board/shape"
	"github.com/louisbranch/tabletop.space/internal/board/transport/ws"
	"github.com/louisbranch/tabletop.space/internal/id"
)

// Client applies envelopes received from the peer hub to a local selection
// engine and exposes the preset helpers a rendering collaborator calls.
type Client struct {
	engine  *selection.Engine
	catalog content.Catalog
	newID   func() string
	logger  *log.Logger
}

// New creates a client around the given engine and preset catalog.
func New(engine *selection.Engine, catalog content.Catalog, logger *log.Logger) *Client {
	return &Client{engine: engine, catalog: catalog, newID: id.MustNewID, logger: logger}
}

// Run drains envelopes until the context ends or the channel closes.
func (c *Client) Run(ctx context.Context, envelopes <-chan ws.Envelope) {
	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-envelopes:
			if !ok {
				return
			}
			c.Apply(env)
		}
	}
}

// Apply mirrors one relayed mutation into the engine. Envelopes addressed to
// shapes unrelated to the selection are skipped; the selection may have
// changed while the envelope was in flight.
func (c *Client) Apply(env ws.Envelope) {
	switch env.Kind {
	case ws.KindDefaultAccess:
		if env.ShapeID != c.engine.UUID() {
			return
		}
		var payload ws.AccessPayload
		if !c.decode(env, &payload) {
			return
		}
		c.applyAccess(payload.Descriptor())
	case ws.KindOwnerAdd:
		if env.ShapeID != c.engine.UUID() {
			return
		}
		var payload ws.OwnerPayload
		if !c.decode(env, &payload) {
			return
		}
		c.engine.AddOwner(payload.Owner(), selection.OriginRemote)
	case ws.KindOwnerUpdate:
		if env.ShapeID != c.engine.UUID() {
			return
		}
		var payload ws.OwnerPayload
		if !c.decode(env, &payload) {
			return
		}
		owner := payload.Owner()
		c.engine.UpdateOwner(owner.User, shape.OwnerUpdate{Access: shape.AccessUpdate{
			Edit:     &owner.Access.Edit,
			Movement: &owner.Access.Movement,
			Vision:   &owner.Access.Vision,
		}}, selection.OriginRemote)
	case ws.KindOwnerRemove:
		if env.ShapeID != c.engine.UUID() {
			return
		}
		var payload ws.OwnerRemovePayload
		if !c.decode(env, &payload) {
			return
		}
		c.engine.RemoveOwner(payload.User, selection.OriginRemote)
	case ws.KindTrackerPush:
		var payload ws.TrackerPayload
		if !c.decode(env, &payload) {
			return
		}
		c.engine.PushTracker(payload.Tracker(env.ShapeID), env.ShapeID, selection.OriginRemote)
	case ws.KindTrackerUpdate:
		var payload ws.TrackerUpdatePayload
		if !c.decode(env, &payload) {
			return
		}
		c.engine.UpdateTracker(payload.ID, payload.Update(), selection.OriginRemote)
	case ws.KindTrackerRemove:
		var payload ws.RemovePayload
		if !c.decode(env, &payload) {
			return
		}
		c.engine.RemoveTracker(payload.ID, selection.OriginRemote)
	case ws.KindAuraPush:
		var payload ws.AuraPayload
		if !c.decode(env, &payload) {
			return
		}
		c.engine.PushAura(payload.Aura(env.ShapeID), env.ShapeID, selection.OriginRemote)
	case ws.KindAuraUpdate:
		var payload ws.AuraUpdatePayload
		if !c.decode(env, &payload) {
			return
		}
		c.engine.UpdateAura(payload.ID, payload.Update(), selection.OriginRemote)
	case ws.KindAuraRemove:
		var payload ws.RemovePayload
		if !c.decode(env, &payload) {
			return
		}
		c.engine.RemoveAura(payload.ID, selection.OriginRemote)
	default:
		c.logger.Printf("discarding envelope with unknown kind %q", env.Kind)
	}
}

// applyAccess replays a full descriptor through the per-capability setters,
// weakest first. Propagation only raises weaker capabilities or lowers
// stronger ones, so this order reproduces any valid descriptor exactly.
func (c *Client) applyAccess(access shape.AccessDescriptor) {
	c.engine.SetDefaultVisionAccess(access.Vision, selection.OriginRemote)
	c.engine.SetDefaultMovementAccess(access.Movement, selection.OriginRemote)
	c.engine.SetDefaultEditAccess(access.Edit, selection.OriginRemote)
}

// PushAuraPreset seeds a new aura on the selection from a named catalog
// preset. It reports false when no preset by that name exists; the push
// itself follows the engine's usual gating.
func (c *Client) PushAuraPreset(name string) bool {
	preset, ok := c.catalog.PresetByName(name)
	if !ok {
		return false
	}
	aura := preset.Aura(c.newID(), c.engine.UUID())
	c.engine.PushAura(aura, aura.Shape, selection.OriginUI)
	return true
}

func (c *Client) decode(env ws.Envelope, payload any) bool {
	if err := json.Unmarshal(env.Payload, payload); err != nil {
		c.logger.Printf("decode %s payload for shape %s: %v", env.Kind, env.ShapeID, err)
		return false
	}
	return true
}
