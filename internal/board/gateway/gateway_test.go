package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/louisbranch/tabletop.space/internal/board/shape"
	"github.com/louisbranch/tabletop.space/internal/board/storage"
	"github.com/louisbranch/tabletop.space/internal/board/storage/memory"
	"github.com/louisbranch/tabletop.space/internal/board/transport/ws"
	"github.com/louisbranch/tabletop.space/internal/telemetry"
)

type fakeBroadcaster struct {
	envelopes []ws.Envelope
}

func (f *fakeBroadcaster) Broadcast(env ws.Envelope) {
	f.envelopes = append(f.envelopes, env)
}

func newTestGateway(t *testing.T) (*Gateway, *memory.Store, *fakeBroadcaster) {
	t.Helper()
	store := memory.NewStore()
	relay := &fakeBroadcaster{}
	emitter := telemetry.NewEmitter(store)
	logger := log.New(io.Discard, "", 0)
	return New(store, relay, emitter, logger), store, relay
}

func seedShape(t *testing.T, store *memory.Store, shapeID string) {
	t.Helper()
	if err := store.PutShape(context.Background(), shape.Shape{UUID: shapeID}); err != nil {
		t.Fatalf("seed shape: %v", err)
	}
}

func TestApplyDefaultAccessPersistsAndForwards(t *testing.T) {
	gw, store, relay := newTestGateway(t)
	seedShape(t, store, "shape-1")

	gw.ApplyDefaultAccess("shape-1", shape.FullAccess(), true)

	got, err := store.GetShape(context.Background(), "shape-1")
	if err != nil {
		t.Fatalf("get shape: %v", err)
	}
	if got.DefaultAccess != shape.FullAccess() {
		t.Fatalf("access = %+v, want full access", got.DefaultAccess)
	}

	if len(relay.envelopes) != 1 || relay.envelopes[0].Kind != ws.KindDefaultAccess {
		t.Fatalf("envelopes = %+v, want one access.default", relay.envelopes)
	}
	var payload ws.AccessPayload
	if err := json.Unmarshal(relay.envelopes[0].Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if !payload.Edit || !payload.Movement || !payload.Vision {
		t.Fatalf("payload = %+v, want full access", payload)
	}
}

func TestUnforwardedMutationDoesNotBroadcast(t *testing.T) {
	gw, store, relay := newTestGateway(t)
	seedShape(t, store, "shape-1")

	gw.ApplyDefaultAccess("shape-1", shape.DefaultAccess(), false)

	if len(relay.envelopes) != 0 {
		t.Fatalf("envelopes = %+v, want none for unforwarded mutation", relay.envelopes)
	}
}

func TestApplyOwnerLifecycle(t *testing.T) {
	gw, store, relay := newTestGateway(t)
	seedShape(t, store, "shape-1")
	ctx := context.Background()

	gw.ApplyOwnerAdd("shape-1", shape.Owner{User: "user-1", Access: shape.AccessDescriptor{Vision: true}}, true)
	gw.ApplyOwnerUpdate("shape-1", shape.Owner{User: "user-1", Access: shape.FullAccess()}, true)

	got, err := store.GetShape(ctx, "shape-1")
	if err != nil {
		t.Fatalf("get shape: %v", err)
	}
	if len(got.Owners) != 1 || !got.Owners[0].Access.Edit {
		t.Fatalf("owners = %+v, want one grant with edit", got.Owners)
	}

	gw.ApplyOwnerRemove("shape-1", "user-1", true)
	got, err = store.GetShape(ctx, "shape-1")
	if err != nil {
		t.Fatalf("get shape: %v", err)
	}
	if len(got.Owners) != 0 {
		t.Fatalf("owners = %+v, want none after removal", got.Owners)
	}

	kinds := envelopeKinds(relay)
	want := []string{ws.KindOwnerAdd, ws.KindOwnerUpdate, ws.KindOwnerRemove}
	if len(kinds) != len(want) {
		t.Fatalf("envelope kinds = %v, want %v", kinds, want)
	}
	for i, kind := range want {
		if kinds[i] != kind {
			t.Fatalf("envelope kinds = %v, want %v", kinds, want)
		}
	}
}

func TestApplyTrackerUpdateMergesStoredRecord(t *testing.T) {
	gw, store, relay := newTestGateway(t)
	seedShape(t, store, "shape-1")
	ctx := context.Background()

	gw.ApplyTrackerPush("shape-1", shape.Tracker{ID: "trk-1", Name: "HP", Value: 10, MaxValue: 10}, false)

	value := 4
	gw.ApplyTrackerUpdate("shape-1", "trk-1", shape.TrackerUpdate{Value: &value}, true)

	got, err := store.GetTracker(ctx, "shape-1", "trk-1")
	if err != nil {
		t.Fatalf("get tracker: %v", err)
	}
	if got.Value != 4 || got.MaxValue != 10 || got.Name != "HP" {
		t.Fatalf("tracker = %+v, want merged value 4 of 10", got)
	}

	if len(relay.envelopes) != 1 || relay.envelopes[0].Kind != ws.KindTrackerUpdate {
		t.Fatalf("envelopes = %+v, want one tracker.update", relay.envelopes)
	}
	var payload ws.TrackerUpdatePayload
	if err := json.Unmarshal(relay.envelopes[0].Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.ID != "trk-1" || payload.Value == nil || *payload.Value != 4 || payload.Name != nil {
		t.Fatalf("payload = %+v, want only value set", payload)
	}
}

func TestApplyTrackerUpdateMissingRecordIsLoggedNoOp(t *testing.T) {
	gw, store, relay := newTestGateway(t)
	seedShape(t, store, "shape-1")

	value := 4
	gw.ApplyTrackerUpdate("shape-1", "missing", shape.TrackerUpdate{Value: &value}, true)

	if len(relay.envelopes) != 0 {
		t.Fatalf("envelopes = %+v, want none for failed update", relay.envelopes)
	}
	if len(store.AuditEvents()) != 0 {
		t.Fatalf("audit events = %+v, want none for failed update", store.AuditEvents())
	}
}

func TestApplyAuraLifecycle(t *testing.T) {
	gw, store, relay := newTestGateway(t)
	seedShape(t, store, "shape-1")
	ctx := context.Background()

	gw.ApplyAuraPush("shape-1", shape.Aura{ID: "aura-1", Name: "Torch", Radius: 30, Colour: "#ffaa00"}, true)

	radius := 60
	gw.ApplyAuraUpdate("shape-1", "aura-1", shape.AuraUpdate{Radius: &radius}, true)

	got, err := store.GetAura(ctx, "shape-1", "aura-1")
	if err != nil {
		t.Fatalf("get aura: %v", err)
	}
	if got.Radius != 60 || got.Colour != "#ffaa00" {
		t.Fatalf("aura = %+v, want merged radius 60", got)
	}

	gw.ApplyAuraRemove("shape-1", "aura-1", true)
	if _, err := store.GetAura(ctx, "shape-1", "aura-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound after removal", err)
	}

	kinds := envelopeKinds(relay)
	want := []string{ws.KindAuraPush, ws.KindAuraUpdate, ws.KindAuraRemove}
	if len(kinds) != len(want) {
		t.Fatalf("envelope kinds = %v, want %v", kinds, want)
	}
}

func TestAuditTrailRecordsEveryMutation(t *testing.T) {
	gw, store, _ := newTestGateway(t)
	seedShape(t, store, "shape-1")

	gw.ApplyTrackerPush("shape-1", shape.Tracker{ID: "trk-1", Name: "HP"}, true)
	gw.ApplyTrackerRemove("shape-1", "trk-1", false)

	events := store.AuditEvents()
	if len(events) != 2 {
		t.Fatalf("audit events = %d, want 2", len(events))
	}
	if events[0].EventName != ws.KindTrackerPush || !events[0].Forwarded {
		t.Fatalf("first event = %+v, want forwarded tracker.push", events[0])
	}
	if events[1].EventName != ws.KindTrackerRemove || events[1].Forwarded {
		t.Fatalf("second event = %+v, want unforwarded tracker.remove", events[1])
	}
	if events[0].Timestamp.IsZero() {
		t.Fatal("audit timestamp not stamped")
	}
}

func TestNilRelayIsNoOp(t *testing.T) {
	store := memory.NewStore()
	gw := New(store, nil, telemetry.NewEmitter(store), log.New(io.Discard, "", 0))
	seedShape(t, store, "shape-1")

	gw.ApplyTrackerPush("shape-1", shape.Tracker{ID: "trk-1"}, true)

	got, err := store.GetTracker(context.Background(), "shape-1", "trk-1")
	if err != nil {
		t.Fatalf("get tracker: %v", err)
	}
	if got.ID != "trk-1" {
		t.Fatalf("tracker = %+v, want trk-1 persisted", got)
	}
}

func envelopeKinds(relay *fakeBroadcaster) []string {
	kinds := make([]string, 0, len(relay.envelopes))
	for _, env := range relay.envelopes {
		kinds = append(kinds, env.Kind)
	}
	return kinds
}
