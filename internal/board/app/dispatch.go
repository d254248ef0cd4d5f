package server

import (
	"encoding/json"
	"log"

	"github.com/louisbranch/tabletop.space/internal/board/gateway"
	"github.com/louisbranch/tabletop.space/internal/board/transport/ws"
)

// dispatch applies one peer envelope through the gateway. Peer mutations are
// always forwarded so every other peer converges on the same state.
func dispatch(gw *gateway.Gateway, env ws.Envelope, logger *log.Logger) {
	switch env.Kind {
	case ws.KindDefaultAccess:
		var payload ws.AccessPayload
		if !decode(env, &payload, logger) {
			return
		}
		gw.ApplyDefaultAccess(env.ShapeID, payload.Descriptor(), true)
	case ws.KindOwnerAdd:
		var payload ws.OwnerPayload
		if !decode(env, &payload, logger) {
			return
		}
		gw.ApplyOwnerAdd(env.ShapeID, payload.Owner(), true)
	case ws.KindOwnerUpdate:
		var payload ws.OwnerPayload
		if !decode(env, &payload, logger) {
			return
		}
		gw.ApplyOwnerUpdate(env.ShapeID, payload.Owner(), true)
	case ws.KindOwnerRemove:
		var payload ws.OwnerRemovePayload
		if !decode(env, &payload, logger) {
			return
		}
		gw.ApplyOwnerRemove(env.ShapeID, payload.User, true)
	case ws.KindTrackerPush:
		var payload ws.TrackerPayload
		if !decode(env, &payload, logger) {
			return
		}
		gw.ApplyTrackerPush(env.ShapeID, payload.Tracker(env.ShapeID), true)
	case ws.KindTrackerUpdate:
		var payload ws.TrackerUpdatePayload
		if !decode(env, &payload, logger) {
			return
		}
		gw.ApplyTrackerUpdate(env.ShapeID, payload.ID, payload.Update(), true)
	case ws.KindTrackerRemove:
		var payload ws.RemovePayload
		if !decode(env, &payload, logger) {
			return
		}
		gw.ApplyTrackerRemove(env.ShapeID, payload.ID, true)
	case ws.KindAuraPush:
		var payload ws.AuraPayload
		if !decode(env, &payload, logger) {
			return
		}
		gw.ApplyAuraPush(env.ShapeID, payload.Aura(env.ShapeID), true)
	case ws.KindAuraUpdate:
		var payload ws.AuraUpdatePayload
		if !decode(env, &payload, logger) {
			return
		}
		gw.ApplyAuraUpdate(env.ShapeID, payload.ID, payload.Update(), true)
	case ws.KindAuraRemove:
		var payload ws.RemovePayload
		if !decode(env, &payload, logger) {
			return
		}
		gw.ApplyAuraRemove(env.ShapeID, payload.ID, true)
	default:
		logger.Printf("discarding envelope with unknown kind %q", env.Kind)
	}
}

func decode(env ws.Envelope, payload any, logger *log.Logger) bool {
	if err := json.Unmarshal(env.Payload, payload); err != nil {
		logger.Printf("decode %s payload for shape %s: %v", env.Kind, env.ShapeID, err)
		return false
	}
	return true
}
