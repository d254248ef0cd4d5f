// Package memory provides an in-memory shape store for tests and
// single-process deployments.
package memory

import (
	"context"
	"sync"

	"github.com/louisbranch/tabletop.space/internal/board/shape"
	"github.com/louisbranch/tabletop.space/internal/board/storage"
)

// Store is a mutex-guarded in-memory implementation of storage.ShapeStore
// and storage.AuditStore.
type Store struct {
	mu     sync.RWMutex
	shapes map[string]shape.Shape
	audit  []storage.AuditEvent
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{shapes: map[string]shape.Shape{}}
}

// PutShape stores a deep copy of the record.
func (s *Store) PutShape(_ context.Context, record shape.Shape) error {
	if err := record.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shapes[record.UUID] = record.Clone()
	return nil
}

// GetShape returns a deep copy of the stored record.
func (s *Store) GetShape(_ context.Context, shapeID string) (shape.Shape, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.shapes[shapeID]
	if !ok {
		return shape.Shape{}, storage.ErrNotFound
	}
	return record.Clone(), nil
}

// DeleteShape removes the record; deleting a missing shape is an error.
func (s *Store) DeleteShape(_ context.Context, shapeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shapes[shapeID]; !ok {
		return storage.ErrNotFound
	}
	delete(s.shapes, shapeID)
	return nil
}

// SetDefaultAccess replaces the shape's default access descriptor.
func (s *Store) SetDefaultAccess(_ context.Context, shapeID string, access shape.AccessDescriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.shapes[shapeID]
	if !ok {
		return storage.ErrNotFound
	}
	record.DefaultAccess = access
	s.shapes[shapeID] = record
	return nil
}

// PutOwner upserts an owner grant keyed by user.
func (s *Store) PutOwner(_ context.Context, shapeID string, owner shape.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.shapes[shapeID]
	if !ok {
		return storage.ErrNotFound
	}
	record = record.Clone()
	replaced := false
	for i, existing := range record.Owners {
		if existing.User == owner.User {
			record.Owners[i] = owner
			replaced = true
			break
		}
	}
	if !replaced {
		record.Owners = append(record.Owners, owner)
	}
	s.shapes[shapeID] = record
	return nil
}

// RemoveOwner removes an owner grant by user; missing users are an error.
func (s *Store) RemoveOwner(_ context.Context, shapeID string, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.shapes[shapeID]
	if !ok {
		return storage.ErrNotFound
	}
	record = record.Clone()
	for i, existing := range record.Owners {
		if existing.User == user {
			record.Owners = append(record.Owners[:i], record.Owners[i+1:]...)
			s.shapes[shapeID] = record
			return nil
		}
	}
	return storage.ErrNotFound
}

// PutTracker upserts a tracker on its owning shape.
func (s *Store) PutTracker(_ context.Context, tracker shape.Tracker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.shapes[tracker.Shape]
	if !ok {
		return storage.ErrNotFound
	}
	record = record.Clone()
	replaced := false
	for i, existing := range record.Trackers {
		if existing.ID == tracker.ID {
			record.Trackers[i] = tracker
			replaced = true
			break
		}
	}
	if !replaced {
		record.Trackers = append(record.Trackers, tracker)
	}
	s.shapes[tracker.Shape] = record
	return nil
}

// GetTracker returns a tracker by shape and tracker ID.
func (s *Store) GetTracker(_ context.Context, shapeID string, trackerID string) (shape.Tracker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.shapes[shapeID]
	if !ok {
		return shape.Tracker{}, storage.ErrNotFound
	}
	for _, tracker := range record.Trackers {
		if tracker.ID == trackerID {
			return tracker, nil
		}
	}
	return shape.Tracker{}, storage.ErrNotFound
}

// RemoveTracker removes a tracker by shape and tracker ID.
func (s *Store) RemoveTracker(_ context.Context, shapeID string, trackerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.shapes[shapeID]
	if !ok {
		return storage.ErrNotFound
	}
	record = record.Clone()
	for i, tracker := range record.Trackers {
		if tracker.ID == trackerID {
			record.Trackers = append(record.Trackers[:i], record.Trackers[i+1:]...)
			s.shapes[shapeID] = record
			return nil
		}
	}
	return storage.ErrNotFound
}

// PutAura upserts an aura on its owning shape.
func (s *Store) PutAura(_ context.Context, aura shape.Aura) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.shapes[aura.Shape]
	if !ok {
		return storage.ErrNotFound
	}
	record = record.Clone()
	replaced := false
	for i, existing := range record.Auras {
		if existing.ID == aura.ID {
			record.Auras[i] = aura
			replaced = true
			break
		}
	}
	if !replaced {
		record.Auras = append(record.Auras, aura)
	}
	s.shapes[aura.Shape] = record
	return nil
}

// GetAura returns an aura by shape and aura ID.
func (s *Store) GetAura(_ context.Context, shapeID string, auraID string) (shape.Aura, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.shapes[shapeID]
	if !ok {
		return shape.Aura{}, storage.ErrNotFound
	}
	for _, aura := range record.Auras {
		if aura.ID == auraID {
			return aura, nil
		}
	}
	return shape.Aura{}, storage.ErrNotFound
}

// RemoveAura removes an aura by shape and aura ID.
func (s *Store) RemoveAura(_ context.Context, shapeID string, auraID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.shapes[shapeID]
	if !ok {
		return storage.ErrNotFound
	}
	record = record.Clone()
	for i, aura := range record.Auras {
		if aura.ID == auraID {
			record.Auras = append(record.Auras[:i], record.Auras[i+1:]...)
			s.shapes[shapeID] = record
			return nil
		}
	}
	return storage.ErrNotFound
}

// AppendAuditEvent records a mutation audit event.
func (s *Store) AppendAuditEvent(_ context.Context, event storage.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, event)
	return nil
}

// AuditEvents returns a copy of the recorded audit events.
func (s *Store) AuditEvents() []storage.AuditEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]storage.AuditEvent(nil), s.audit...)
}
