package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/louisbranch/tabletop.space/internal/board/storage"
)

type fakeAuditStore struct {
	events []storage.AuditEvent
	err    error
}

func (f *fakeAuditStore) AppendAuditEvent(ctx context.Context, event storage.AuditEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func TestEmitRecordsEvent(t *testing.T) {
	store := &fakeAuditStore{}
	emitter := NewEmitter(store)

	event := storage.AuditEvent{
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		EventName: "tracker.push",
		ShapeID:   "shape-1",
		EntityID:  "trk-1",
		Forwarded: true,
	}
	if err := emitter.Emit(context.Background(), event); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(store.events) != 1 {
		t.Fatalf("events = %d, want 1", len(store.events))
	}
	if store.events[0] != event {
		t.Fatalf("event = %+v, want %+v", store.events[0], event)
	}
}

func TestEmitStampsZeroTimestamp(t *testing.T) {
	store := &fakeAuditStore{}
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	emitter := NewEmitter(store)
	emitter.clock = func() time.Time { return now }

	if err := emitter.Emit(context.Background(), storage.AuditEvent{EventName: "aura.remove"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if !store.events[0].Timestamp.Equal(now) {
		t.Fatalf("timestamp = %v, want %v", store.events[0].Timestamp, now)
	}
}

func TestEmitPropagatesStoreError(t *testing.T) {
	wantErr := errors.New("append failed")
	emitter := NewEmitter(&fakeAuditStore{err: wantErr})

	if err := emitter.Emit(context.Background(), storage.AuditEvent{EventName: "owner.add"}); !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want %v", err, wantErr)
	}
}

func TestEmitNilSafe(t *testing.T) {
	var emitter *Emitter
	if err := emitter.Emit(context.Background(), storage.AuditEvent{}); err != nil {
		t.Fatalf("nil emitter emit: %v", err)
	}
	if err := NewEmitter(nil).Emit(context.Background(), storage.AuditEvent{}); err != nil {
		t.Fatalf("nil store emit: %v", err)
	}
}
