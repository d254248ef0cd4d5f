// Package sqlite provides the SQLite-backed shape and audit store.
//
// Placeholders are never persisted: the sync layer only hands real entities
// to the gateway, so tracker and aura rows carry no temporary flag.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/louisbranch/tabletop.space/internal/board/shape"
	"github.com/louisbranch/tabletop.space/internal/board/storage"
	"github.com/louisbranch/tabletop.space/internal/board/storage/sqlite/migrations"
	apperrors "github.com/louisbranch/tabletop.space/internal/errors"
	"github.com/louisbranch/tabletop.space/internal/platform/storage/sqlitemigrate"
)

// Store is a SQLite-backed implementation of storage.ShapeStore and
// storage.AuditStore.
type Store struct {
	sqlDB *sql.DB
	clock func() time.Time
}

// Open opens a SQLite board store at the provided path, applying embedded
// migrations before the store is handed to higher layers.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, apperrors.New(apperrors.CodeStorageUnavailable, "storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageUnavailable, "open sqlite db", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, apperrors.Wrap(apperrors.CodeStorageUnavailable, "ping sqlite db", err)
	}

	if err := sqlitemigrate.Migrate(sqlDB, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, apperrors.Wrap(apperrors.CodeStorageUnavailable, "run migrations", err)
	}

	return &Store{sqlDB: sqlDB, clock: time.Now}, nil
}

// Close closes the underlying SQLite database.
//
// Close is intentionally nil-safe so callers can defer it in all startup paths.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

// PutShape replaces the shape record and all of its sub-entities in one
// transaction.
func (s *Store) PutShape(ctx context.Context, record shape.Shape) error {
	if err := record.Validate(); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put shape: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO shapes (uuid, name, access_edit, access_movement, access_vision, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(uuid) DO UPDATE SET
    name = excluded.name,
    access_edit = excluded.access_edit,
    access_movement = excluded.access_movement,
    access_vision = excluded.access_vision,
    updated_at = excluded.updated_at`,
		record.UUID, record.Name,
		boolToInt(record.DefaultAccess.Edit), boolToInt(record.DefaultAccess.Movement), boolToInt(record.DefaultAccess.Vision),
		toMillis(s.clock()),
	); err != nil {
		return fmt.Errorf("upsert shape: %w", err)
	}

	for _, table := range []string{"shape_owners", "shape_tokens", "trackers", "auras"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE shape_uuid = ?", record.UUID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, owner := range record.Owners {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO shape_owners (shape_uuid, user_id, access_edit, access_movement, access_vision)
VALUES (?, ?, ?, ?, ?)`,
			record.UUID, owner.User,
			boolToInt(owner.Access.Edit), boolToInt(owner.Access.Movement), boolToInt(owner.Access.Vision),
		); err != nil {
			return fmt.Errorf("insert owner %s: %w", owner.User, err)
		}
	}

	for _, token := range record.ActiveTokens {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO shape_tokens (shape_uuid, token_id) VALUES (?, ?)`, record.UUID, token); err != nil {
			return fmt.Errorf("insert token %s: %w", token, err)
		}
	}

	for _, tracker := range record.Trackers {
		if err := insertTracker(ctx, tx, tracker); err != nil {
			return err
		}
	}

	for _, aura := range record.Auras {
		if err := insertAura(ctx, tx, aura); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit put shape: %w", err)
	}
	return nil
}

// GetShape loads the shape record with all of its sub-entities.
func (s *Store) GetShape(ctx context.Context, shapeID string) (shape.Shape, error) {
	var record shape.Shape
	var edit, movement, vision int
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT uuid, name, access_edit, access_movement, access_vision
FROM shapes WHERE uuid = ?`, shapeID)
	if err := row.Scan(&record.UUID, &record.Name, &edit, &movement, &vision); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return shape.Shape{}, storage.ErrNotFound
		}
		return shape.Shape{}, fmt.Errorf("scan shape: %w", err)
	}
	record.DefaultAccess = shape.AccessDescriptor{Edit: edit != 0, Movement: movement != 0, Vision: vision != 0}

	owners, err := s.loadOwners(ctx, shapeID)
	if err != nil {
		return shape.Shape{}, err
	}
	record.Owners = owners

	tokens, err := s.loadTokens(ctx, shapeID)
	if err != nil {
		return shape.Shape{}, err
	}
	record.ActiveTokens = tokens

	trackers, err := s.loadTrackers(ctx, shapeID)
	if err != nil {
		return shape.Shape{}, err
	}
	record.Trackers = trackers

	auras, err := s.loadAuras(ctx, shapeID)
	if err != nil {
		return shape.Shape{}, err
	}
	record.Auras = auras

	return record, nil
}

// DeleteShape removes the shape and its sub-entity rows.
func (s *Store) DeleteShape(ctx context.Context, shapeID string) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete shape: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"shape_owners", "shape_tokens", "trackers", "auras"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE shape_uuid = ?", shapeID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	result, err := tx.ExecContext(ctx, "DELETE FROM shapes WHERE uuid = ?", shapeID)
	if err != nil {
		return fmt.Errorf("delete shape: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return err
	}
	return tx.Commit()
}

// SetDefaultAccess replaces the shape's default access descriptor.
func (s *Store) SetDefaultAccess(ctx context.Context, shapeID string, access shape.AccessDescriptor) error {
	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE shapes SET access_edit = ?, access_movement = ?, access_vision = ?, updated_at = ?
WHERE uuid = ?`,
		boolToInt(access.Edit), boolToInt(access.Movement), boolToInt(access.Vision),
		toMillis(s.clock()), shapeID,
	)
	if err != nil {
		return fmt.Errorf("set default access: %w", err)
	}
	return requireAffected(result)
}

// PutOwner upserts an owner grant keyed by user.
func (s *Store) PutOwner(ctx context.Context, shapeID string, owner shape.Owner) error {
	if err := s.requireShape(ctx, shapeID); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO shape_owners (shape_uuid, user_id, access_edit, access_movement, access_vision)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(shape_uuid, user_id) DO UPDATE SET
    access_edit = excluded.access_edit,
    access_movement = excluded.access_movement,
    access_vision = excluded.access_vision`,
		shapeID, owner.User,
		boolToInt(owner.Access.Edit), boolToInt(owner.Access.Movement), boolToInt(owner.Access.Vision),
	); err != nil {
		return fmt.Errorf("put owner: %w", err)
	}
	return nil
}

// RemoveOwner removes an owner grant by user.
func (s *Store) RemoveOwner(ctx context.Context, shapeID string, user string) error {
	result, err := s.sqlDB.ExecContext(ctx,
		"DELETE FROM shape_owners WHERE shape_uuid = ? AND user_id = ?", shapeID, user)
	if err != nil {
		return fmt.Errorf("remove owner: %w", err)
	}
	return requireAffected(result)
}

// PutTracker upserts a tracker on its owning shape.
func (s *Store) PutTracker(ctx context.Context, tracker shape.Tracker) error {
	if err := s.requireShape(ctx, tracker.Shape); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO trackers (id, shape_uuid, name, value, max_value)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    value = excluded.value,
    max_value = excluded.max_value`,
		tracker.ID, tracker.Shape, tracker.Name, tracker.Value, tracker.MaxValue,
	); err != nil {
		return fmt.Errorf("put tracker: %w", err)
	}
	return nil
}

// GetTracker returns a tracker by shape and tracker ID.
func (s *Store) GetTracker(ctx context.Context, shapeID string, trackerID string) (shape.Tracker, error) {
	var tracker shape.Tracker
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, shape_uuid, name, value, max_value
FROM trackers WHERE shape_uuid = ? AND id = ?`, shapeID, trackerID)
	if err := row.Scan(&tracker.ID, &tracker.Shape, &tracker.Name, &tracker.Value, &tracker.MaxValue); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return shape.Tracker{}, storage.ErrNotFound
		}
		return shape.Tracker{}, fmt.Errorf("scan tracker: %w", err)
	}
	return tracker, nil
}

// RemoveTracker removes a tracker by shape and tracker ID.
func (s *Store) RemoveTracker(ctx context.Context, shapeID string, trackerID string) error {
	result, err := s.sqlDB.ExecContext(ctx,
		"DELETE FROM trackers WHERE shape_uuid = ? AND id = ?", shapeID, trackerID)
	if err != nil {
		return fmt.Errorf("remove tracker: %w", err)
	}
	return requireAffected(result)
}

// PutAura upserts an aura on its owning shape.
func (s *Store) PutAura(ctx context.Context, aura shape.Aura) error {
	if err := s.requireShape(ctx, aura.Shape); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO auras (id, shape_uuid, name, radius, colour)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    radius = excluded.radius,
    colour = excluded.colour`,
		aura.ID, aura.Shape, aura.Name, aura.Radius, aura.Colour,
	); err != nil {
		return fmt.Errorf("put aura: %w", err)
	}
	return nil
}

// GetAura returns an aura by shape and aura ID.
func (s *Store) GetAura(ctx context.Context, shapeID string, auraID string) (shape.Aura, error) {
	var aura shape.Aura
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, shape_uuid, name, radius, colour
FROM auras WHERE shape_uuid = ? AND id = ?`, shapeID, auraID)
	if err := row.Scan(&aura.ID, &aura.Shape, &aura.Name, &aura.Radius, &aura.Colour); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return shape.Aura{}, storage.ErrNotFound
		}
		return shape.Aura{}, fmt.Errorf("scan aura: %w", err)
	}
	return aura, nil
}

// RemoveAura removes an aura by shape and aura ID.
func (s *Store) RemoveAura(ctx context.Context, shapeID string, auraID string) error {
	result, err := s.sqlDB.ExecContext(ctx,
		"DELETE FROM auras WHERE shape_uuid = ? AND id = ?", shapeID, auraID)
	if err != nil {
		return fmt.Errorf("remove aura: %w", err)
	}
	return requireAffected(result)
}

// AppendAuditEvent records a mutation audit event.
func (s *Store) AppendAuditEvent(ctx context.Context, event storage.AuditEvent) error {
	timestamp := event.Timestamp
	if timestamp.IsZero() {
		timestamp = s.clock()
	}
	if _, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO audit_events (ts, event_name, shape_uuid, entity_id, forwarded)
VALUES (?, ?, ?, ?, ?)`,
		toMillis(timestamp), event.EventName, event.ShapeID, event.EntityID, boolToInt(event.Forwarded),
	); err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// ListAuditEvents returns audit events for a shape, oldest first.
func (s *Store) ListAuditEvents(ctx context.Context, shapeID string) ([]storage.AuditEvent, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT ts, event_name, shape_uuid, entity_id, forwarded
FROM audit_events WHERE shape_uuid = ? ORDER BY id`, shapeID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []storage.AuditEvent
	for rows.Next() {
		var event storage.AuditEvent
		var ts int64
		var forwarded int
		if err := rows.Scan(&ts, &event.EventName, &event.ShapeID, &event.EntityID, &forwarded); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Timestamp = fromMillis(ts)
		event.Forwarded = forwarded != 0
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

func (s *Store) requireShape(ctx context.Context, shapeID string) error {
	var found int
	row := s.sqlDB.QueryRowContext(ctx, "SELECT 1 FROM shapes WHERE uuid = ?", shapeID)
	if err := row.Scan(&found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("check shape: %w", err)
	}
	return nil
}

func (s *Store) loadOwners(ctx context.Context, shapeID string) ([]shape.Owner, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT user_id, access_edit, access_movement, access_vision
FROM shape_owners WHERE shape_uuid = ? ORDER BY user_id`, shapeID)
	if err != nil {
		return nil, fmt.Errorf("load owners: %w", err)
	}
	defer rows.Close()

	var owners []shape.Owner
	for rows.Next() {
		var owner shape.Owner
		var edit, movement, vision int
		if err := rows.Scan(&owner.User, &edit, &movement, &vision); err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		owner.Access = shape.AccessDescriptor{Edit: edit != 0, Movement: movement != 0, Vision: vision != 0}
		owners = append(owners, owner)
	}
	return owners, rows.Err()
}

func (s *Store) loadTokens(ctx context.Context, shapeID string) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT token_id FROM shape_tokens WHERE shape_uuid = ? ORDER BY token_id", shapeID)
	if err != nil {
		return nil, fmt.Errorf("load tokens: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

func (s *Store) loadTrackers(ctx context.Context, shapeID string) ([]shape.Tracker, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, shape_uuid, name, value, max_value
FROM trackers WHERE shape_uuid = ? ORDER BY rowid`, shapeID)
	if err != nil {
		return nil, fmt.Errorf("load trackers: %w", err)
	}
	defer rows.Close()

	var trackers []shape.Tracker
	for rows.Next() {
		var tracker shape.Tracker
		if err := rows.Scan(&tracker.ID, &tracker.Shape, &tracker.Name, &tracker.Value, &tracker.MaxValue); err != nil {
			return nil, fmt.Errorf("scan tracker: %w", err)
		}
		trackers = append(trackers, tracker)
	}
	return trackers, rows.Err()
}

func (s *Store) loadAuras(ctx context.Context, shapeID string) ([]shape.Aura, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, shape_uuid, name, radius, colour
FROM auras WHERE shape_uuid = ? ORDER BY rowid`, shapeID)
	if err != nil {
		return nil, fmt.Errorf("load auras: %w", err)
	}
	defer rows.Close()

	var auras []shape.Aura
	for rows.Next() {
		var aura shape.Aura
		if err := rows.Scan(&aura.ID, &aura.Shape, &aura.Name, &aura.Radius, &aura.Colour); err != nil {
			return nil, fmt.Errorf("scan aura: %w", err)
		}
		auras = append(auras, aura)
	}
	return auras, rows.Err()
}

func insertTracker(ctx context.Context, tx *sql.Tx, tracker shape.Tracker) error {
	if _, err := tx.ExecContext(ctx, `
INSERT INTO trackers (id, shape_uuid, name, value, max_value)
VALUES (?, ?, ?, ?, ?)`,
		tracker.ID, tracker.Shape, tracker.Name, tracker.Value, tracker.MaxValue,
	); err != nil {
		return fmt.Errorf("insert tracker %s: %w", tracker.ID, err)
	}
	return nil
}

func insertAura(ctx context.Context, tx *sql.Tx, aura shape.Aura) error {
	if _, err := tx.ExecContext(ctx, `
INSERT INTO auras (id, shape_uuid, name, radius, colour)
VALUES (?, ?, ?, ?, ?)`,
		aura.ID, aura.Shape, aura.Name, aura.Radius, aura.Colour,
	); err != nil {
		return fmt.Errorf("insert aura %s: %w", aura.ID, err)
	}
	return nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
