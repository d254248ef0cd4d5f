// Package storage defines the persistence interfaces for board shapes and
// the mutation audit log.
package storage

import (
	"context"
	"time"

	"github.com/louisbranch/tabletop.space/internal/board/shape"
	apperrors "github.com/louisbranch/tabletop.space/internal/errors"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// ShapeStore persists authoritative shape records and their sub-entities.
type ShapeStore interface {
	PutShape(ctx context.Context, record shape.Shape) error
	GetShape(ctx context.Context, shapeID string) (shape.Shape, error)
	DeleteShape(ctx context.Context, shapeID string) error

	SetDefaultAccess(ctx context.Context, shapeID string, access shape.AccessDescriptor) error

	PutOwner(ctx context.Context, shapeID string, owner shape.Owner) error
	RemoveOwner(ctx context.Context, shapeID string, user string) error

	PutTracker(ctx context.Context, tracker shape.Tracker) error
	GetTracker(ctx context.Context, shapeID string, trackerID string) (shape.Tracker, error)
	RemoveTracker(ctx context.Context, shapeID string, trackerID string) error

	PutAura(ctx context.Context, aura shape.Aura) error
	GetAura(ctx context.Context, shapeID string, auraID string) (shape.Aura, error)
	RemoveAura(ctx context.Context, shapeID string, auraID string) error
}

// AuditEvent records one applied mutation for operational review.
type AuditEvent struct {
	Timestamp time.Time
	EventName string
	ShapeID   string
	EntityID  string
	Forwarded bool
}

// AuditStore persists mutation audit events.
type AuditStore interface {
	AppendAuditEvent(ctx context.Context, event AuditEvent) error
}
