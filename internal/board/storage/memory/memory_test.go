package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/louisbranch/tabletop.space/internal/board/shape"
	"github.com/louisbranch/tabletop.space/internal/board/storage"
)

func TestShapeRoundTrip(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	record := shape.Shape{
		UUID:          "shape-1",
		Name:          "Goblin",
		DefaultAccess: shape.AccessDescriptor{Vision: true},
		Owners:        []shape.Owner{{User: "user-1", Access: shape.FullAccess()}},
		Trackers:      []shape.Tracker{{ID: "trk-1", Shape: "shape-1", Name: "HP", Value: 7, MaxValue: 7}},
		Auras:         []shape.Aura{{ID: "aura-1", Shape: "shape-1", Name: "Torch", Radius: 30, Colour: "#ffaa00"}},
	}
	if err := store.PutShape(ctx, record); err != nil {
		t.Fatalf("put shape: %v", err)
	}

	got, err := store.GetShape(ctx, "shape-1")
	if err != nil {
		t.Fatalf("get shape: %v", err)
	}
	if got.Name != "Goblin" || len(got.Owners) != 1 || len(got.Trackers) != 1 || len(got.Auras) != 1 {
		t.Fatalf("shape = %+v, want full round trip", got)
	}

	// The store must hand out copies, not its internal record.
	got.Trackers[0].Value = -1
	again, err := store.GetShape(ctx, "shape-1")
	if err != nil {
		t.Fatalf("get shape again: %v", err)
	}
	if again.Trackers[0].Value != 7 {
		t.Fatal("store leaked its internal record")
	}
}

func TestGetShapeNotFound(t *testing.T) {
	store := NewStore()
	if _, err := store.GetShape(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestPutShapeRejectsInvalid(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if err := store.PutShape(ctx, shape.Shape{}); err == nil {
		t.Fatal("expected invalid shape to be rejected")
	}

	blankTracker := shape.Shape{UUID: "shape-1", Trackers: []shape.Tracker{{Name: "HP"}}}
	if err := store.PutShape(ctx, blankTracker); !errors.Is(err, shape.ErrInvalidTracker) {
		t.Fatalf("error = %v, want %v", err, shape.ErrInvalidTracker)
	}

	blankAura := shape.Shape{UUID: "shape-1", Auras: []shape.Aura{{Name: "Torch"}}}
	if err := store.PutShape(ctx, blankAura); !errors.Is(err, shape.ErrInvalidAura) {
		t.Fatalf("error = %v, want %v", err, shape.ErrInvalidAura)
	}
}

func TestOwnerUpsertAndRemove(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	seedShape(t, store, "shape-1")

	if err := store.PutOwner(ctx, "shape-1", shape.Owner{User: "user-1", Access: shape.AccessDescriptor{Vision: true}}); err != nil {
		t.Fatalf("put owner: %v", err)
	}
	if err := store.PutOwner(ctx, "shape-1", shape.Owner{User: "user-1", Access: shape.FullAccess()}); err != nil {
		t.Fatalf("upsert owner: %v", err)
	}

	got, err := store.GetShape(ctx, "shape-1")
	if err != nil {
		t.Fatalf("get shape: %v", err)
	}
	if len(got.Owners) != 1 {
		t.Fatalf("owner count = %d, want 1 after upsert", len(got.Owners))
	}
	if !got.Owners[0].Access.Edit {
		t.Fatalf("owner access = %+v, want upserted full access", got.Owners[0].Access)
	}

	if err := store.RemoveOwner(ctx, "shape-1", "user-1"); err != nil {
		t.Fatalf("remove owner: %v", err)
	}
	if err := store.RemoveOwner(ctx, "shape-1", "user-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound for repeated removal", err)
	}
}

func TestTrackerLifecycle(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	seedShape(t, store, "shape-1")

	tracker := shape.Tracker{ID: "trk-1", Shape: "shape-1", Name: "HP", Value: 10, MaxValue: 10}
	if err := store.PutTracker(ctx, tracker); err != nil {
		t.Fatalf("put tracker: %v", err)
	}

	tracker.Value = 4
	if err := store.PutTracker(ctx, tracker); err != nil {
		t.Fatalf("upsert tracker: %v", err)
	}

	got, err := store.GetTracker(ctx, "shape-1", "trk-1")
	if err != nil {
		t.Fatalf("get tracker: %v", err)
	}
	if got.Value != 4 {
		t.Fatalf("tracker value = %d, want 4", got.Value)
	}

	if err := store.RemoveTracker(ctx, "shape-1", "trk-1"); err != nil {
		t.Fatalf("remove tracker: %v", err)
	}
	if _, err := store.GetTracker(ctx, "shape-1", "trk-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound after removal", err)
	}
}

func TestAuraLifecycle(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	seedShape(t, store, "shape-1")

	aura := shape.Aura{ID: "aura-1", Shape: "shape-1", Name: "Torch", Radius: 30}
	if err := store.PutAura(ctx, aura); err != nil {
		t.Fatalf("put aura: %v", err)
	}

	aura.Radius = 15
	if err := store.PutAura(ctx, aura); err != nil {
		t.Fatalf("upsert aura: %v", err)
	}

	got, err := store.GetAura(ctx, "shape-1", "aura-1")
	if err != nil {
		t.Fatalf("get aura: %v", err)
	}
	if got.Radius != 15 {
		t.Fatalf("aura radius = %d, want 15", got.Radius)
	}

	if err := store.RemoveAura(ctx, "shape-1", "aura-1"); err != nil {
		t.Fatalf("remove aura: %v", err)
	}
	if err := store.RemoveAura(ctx, "shape-1", "aura-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound after removal", err)
	}
}

func TestAuditEvents(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if err := store.AppendAuditEvent(ctx, storage.AuditEvent{EventName: "tracker.push", ShapeID: "shape-1"}); err != nil {
		t.Fatalf("append audit: %v", err)
	}
	events := store.AuditEvents()
	if len(events) != 1 || events[0].EventName != "tracker.push" {
		t.Fatalf("audit events = %+v, want one tracker.push", events)
	}
}

func seedShape(t *testing.T, store *Store, shapeID string) {
	t.Helper()
	if err := store.PutShape(context.Background(), shape.Shape{UUID: shapeID}); err != nil {
		t.Fatalf("seed shape: %v", err)
	}
}
