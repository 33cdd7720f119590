package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/linkview/internal/ir"
)

// Object is a stored object: its identity, scalar properties and creation
// order.
type Object struct {
	Ref     ir.ObjectRef
	Payload ir.IRObject
	Seq     int64
}

// InsertObject stores a new object with an explicit id.
// Returns ErrObjectExists if the id is taken.
func (s *Store) InsertObject(ctx context.Context, objectType, id string, payload ir.IRObject) (ir.ObjectRef, error) {
	tx, err := s.writer()
	if err != nil {
		return ir.ObjectRef{}, err
	}
	if objectType == "" || id == "" {
		return ir.ObjectRef{}, fmt.Errorf("insert object: type and id are required")
	}

	payloadJSON, err := marshalPayload(payload)
	if err != nil {
		return ir.ObjectRef{}, fmt.Errorf("insert object %s: %w", id, err)
	}

	exists, err := objectExists(ctx, tx, id)
	if err != nil {
		return ir.ObjectRef{}, fmt.Errorf("insert object %s: %w", id, err)
	}
	if exists {
		return ir.ObjectRef{}, fmt.Errorf("insert object %s: %w", id, ErrObjectExists)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE store_meta SET value = value + 1 WHERE key = 'object_seq'`); err != nil {
		return ir.ObjectRef{}, fmt.Errorf("insert object %s: next seq: %w", id, err)
	}
	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT value FROM store_meta WHERE key = 'object_seq'`).Scan(&seq); err != nil {
		return ir.ObjectRef{}, fmt.Errorf("insert object %s: read seq: %w", id, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO objects (id, object_type, payload, seq)
		VALUES (?, ?, ?, ?)
	`, id, objectType, payloadJSON, seq)
	if err != nil {
		return ir.ObjectRef{}, fmt.Errorf("insert object %s: %w", id, err)
	}

	return ir.ObjectRef{ID: id, Type: objectType}, nil
}

// CreateObject stores a new object under an id from the store's IDGenerator.
func (s *Store) CreateObject(ctx context.Context, objectType string, payload ir.IRObject) (ir.ObjectRef, error) {
	return s.InsertObject(ctx, objectType, s.ids.Generate(), payload)
}

// ReadObject returns the object with the given id.
// Returns an error wrapping ErrObjectNotFound if it does not exist.
func (s *Store) ReadObject(ctx context.Context, id string) (Object, error) {
	q, err := s.reader()
	if err != nil {
		return Object{}, err
	}
	row := q.QueryRowContext(ctx, `
		SELECT id, object_type, payload, seq FROM objects WHERE id = ?
	`, id)

	obj, err := scanObject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Object{}, fmt.Errorf("read object %s: %w", id, ErrObjectNotFound)
	}
	if err != nil {
		return Object{}, fmt.Errorf("read object %s: %w", id, err)
	}
	return obj, nil
}

// ObjectsOfType returns every object of a type in creation order.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ObjectsOfType(ctx context.Context, objectType string) ([]Object, error) {
	q, err := s.reader()
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, `
		SELECT id, object_type, payload, seq
		FROM objects
		WHERE object_type = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, objectType)
	if err != nil {
		return nil, fmt.Errorf("objects of type %s: %w", objectType, err)
	}
	defer rows.Close()

	objects := []Object{}
	for rows.Next() {
		obj, err := scanObject(rows)
		if err != nil {
			return nil, fmt.Errorf("objects of type %s: %w", objectType, err)
		}
		objects = append(objects, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate objects: %w", err)
	}
	return objects, nil
}

// DeleteObject removes an object. Every list that links to it loses those
// entries, with later positions moving down; the lists it owns are dropped,
// which detaches any LinkView over them.
func (s *Store) DeleteObject(ctx context.Context, id string) error {
	tx, err := s.writer()
	if err != nil {
		return err
	}

	exists, err := objectExists(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("delete object %s: %w", id, err)
	}
	if !exists {
		return fmt.Errorf("delete object %s: %w", id, ErrObjectNotFound)
	}

	type entry struct {
		owner string
		field string
		pos   int
	}
	// Descending positions keep earlier positions valid while removing.
	rows, err := tx.QueryContext(ctx, `
		SELECT owner_id, field, pos
		FROM links
		WHERE target_id = ?
		ORDER BY owner_id, field, pos DESC
	`, id)
	if err != nil {
		return fmt.Errorf("delete object %s: find referrers: %w", id, err)
	}
	var entries []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.owner, &e.field, &e.pos); err != nil {
			rows.Close()
			return fmt.Errorf("delete object %s: scan referrer: %w", id, err)
		}
		entries = append(entries, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("delete object %s: iterate referrers: %w", id, err)
	}

	for _, e := range entries {
		if err := removeLink(ctx, tx, e.owner, e.field, e.pos); err != nil {
			return fmt.Errorf("delete object %s: %w", id, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM links WHERE owner_id = ?`, id); err != nil {
		return fmt.Errorf("delete object %s: drop owned lists: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM objects WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete object %s: %w", id, err)
	}

	s.logger.Debug("object deleted", "object_id", id, "unlinked", len(entries))
	return nil
}

// DropType deletes every object of a type and returns how many there were.
func (s *Store) DropType(ctx context.Context, objectType string) (int, error) {
	if _, err := s.writer(); err != nil {
		return 0, err
	}
	objects, err := s.ObjectsOfType(ctx, objectType)
	if err != nil {
		return 0, fmt.Errorf("drop type %s: %w", objectType, err)
	}
	for _, obj := range objects {
		if err := s.DeleteObject(ctx, obj.Ref.ID); err != nil {
			return 0, fmt.Errorf("drop type %s: %w", objectType, err)
		}
	}
	s.logger.Debug("type dropped", "type", objectType, "count", len(objects))
	return len(objects), nil
}

// LinkView returns the list stored under property on owner. The view pins
// the owner on its first attachment check.
func (s *Store) LinkView(owner ir.ObjectRef, property string) *LinkView {
	return &LinkView{store: s, owner: owner, field: property}
}

// ObjectLinkView returns the list stored under property on a loaded
// object, pinned to that object.
func (s *Store) ObjectLinkView(owner Object, property string) *LinkView {
	return &LinkView{store: s, owner: owner.Ref, field: property, seq: owner.Seq}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanObject(row scanner) (Object, error) {
	var (
		obj         Object
		payloadJSON string
	)
	if err := row.Scan(&obj.Ref.ID, &obj.Ref.Type, &payloadJSON, &obj.Seq); err != nil {
		return Object{}, err
	}
	payload, err := unmarshalPayload(payloadJSON)
	if err != nil {
		return Object{}, err
	}
	obj.Payload = payload
	return obj, nil
}

func objectExists(ctx context.Context, q querier, id string) (bool, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM objects WHERE id = ?`, id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
