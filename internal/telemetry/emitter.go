// Package telemetry records board audit events through an injected store.
package telemetry

import (
	"context"
	"time"

	"github.com/louisbranch/tabletop.space/internal/board/storage"
)

// Emitter records board mutation audit events.
type Emitter struct {
	store storage.AuditStore
	clock func() time.Time
}

// NewEmitter creates a new audit emitter.
func NewEmitter(store storage.AuditStore) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// Emit records an audit event. It is a no-op when the store is nil.
func (e *Emitter) Emit(ctx context.Context, event storage.AuditEvent) error {
	if e == nil || e.store == nil {
		return nil
	}
	if event.Timestamp.IsZero() {
		if e.clock == nil {
			event.Timestamp = time.Now().UTC()
		} else {
			event.Timestamp = e.clock().UTC()
		}
	}
	return e.store.AppendAuditEvent(ctx, event)
}
