package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/linkview/internal/ir"
)

// LinkView is one ordered list property of one object. It implements
// list.Links. Bounds are not checked beyond what the database enforces;
// callers check indexes against Size first.
//
// A view is bound to one incarnation of its owner, identified by the
// owner's creation seq. Deleting the owner and creating another object
// under the same id does not reattach the view.
type LinkView struct {
	store *Store
	owner ir.ObjectRef
	field string
	seq   int64 // 0 until pinned
}

// Owner returns the object holding the list.
func (v *LinkView) Owner() ir.ObjectRef {
	return v.owner
}

// Property returns the list's property name.
func (v *LinkView) Property() string {
	return v.field
}

// IsAttached reports whether the store is open and the owner the view was
// bound to still exists. An unpinned view pins the owner it finds here.
func (v *LinkView) IsAttached(ctx context.Context) (bool, error) {
	q, err := v.store.reader()
	if errors.Is(err, ErrClosed) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var (
		objectType string
		seq        int64
	)
	err = q.QueryRowContext(ctx, `SELECT object_type, seq FROM objects WHERE id = ?`, v.owner.ID).Scan(&objectType, &seq)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check owner %s: %w", v.owner, err)
	}
	if objectType != v.owner.Type {
		return false, nil
	}
	if v.seq == 0 {
		v.seq = seq
	}
	return seq == v.seq, nil
}

// Size returns the number of links.
func (v *LinkView) Size(ctx context.Context) (int, error) {
	q, err := v.store.reader()
	if err != nil {
		return 0, err
	}
	return countLinks(ctx, q, v.owner.ID, v.field)
}

// Get returns the reference at index.
func (v *LinkView) Get(ctx context.Context, index int) (ir.ObjectRef, error) {
	q, err := v.store.reader()
	if err != nil {
		return ir.ObjectRef{}, err
	}

	var ref ir.ObjectRef
	err = q.QueryRowContext(ctx, `
		SELECT o.id, o.object_type
		FROM links l
		JOIN objects o ON o.id = l.target_id
		WHERE l.owner_id = ? AND l.field = ? AND l.pos = ?
	`, v.owner.ID, v.field, index).Scan(&ref.ID, &ref.Type)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.ObjectRef{}, fmt.Errorf("get %s.%s[%d]: no link at position", v.owner, v.field, index)
	}
	if err != nil {
		return ir.ObjectRef{}, fmt.Errorf("get %s.%s[%d]: %w", v.owner, v.field, index, err)
	}
	return ref, nil
}

// Set replaces the reference at index.
func (v *LinkView) Set(ctx context.Context, index int, ref ir.ObjectRef) error {
	tx, err := v.store.writer()
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE links SET target_id = ?
		WHERE owner_id = ? AND field = ? AND pos = ?
	`, ref.ID, v.owner.ID, v.field, index)
	if err != nil {
		return fmt.Errorf("set %s.%s[%d]: %w", v.owner, v.field, index, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set %s.%s[%d]: rows affected: %w", v.owner, v.field, index, err)
	}
	if n == 0 {
		return fmt.Errorf("set %s.%s[%d]: no link at position", v.owner, v.field, index)
	}
	return nil
}

// Add appends a reference.
func (v *LinkView) Add(ctx context.Context, ref ir.ObjectRef) error {
	tx, err := v.store.writer()
	if err != nil {
		return err
	}
	size, err := countLinks(ctx, tx, v.owner.ID, v.field)
	if err != nil {
		return err
	}
	if err := insertLinkRow(ctx, tx, v.owner.ID, v.field, size, ref.ID); err != nil {
		return fmt.Errorf("add %s.%s: %w", v.owner, v.field, err)
	}
	return nil
}

// Insert places a reference at index, moving later entries up by one.
func (v *LinkView) Insert(ctx context.Context, index int, ref ir.ObjectRef) error {
	tx, err := v.store.writer()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE links SET pos = pos + 1
		WHERE owner_id = ? AND field = ? AND pos >= ?
	`, v.owner.ID, v.field, index)
	if err != nil {
		return fmt.Errorf("insert %s.%s[%d]: shift: %w", v.owner, v.field, index, err)
	}
	if err := insertLinkRow(ctx, tx, v.owner.ID, v.field, index, ref.ID); err != nil {
		return fmt.Errorf("insert %s.%s[%d]: %w", v.owner, v.field, index, err)
	}
	return nil
}

// Remove deletes the reference at index, moving later entries down by one.
// The target object itself is untouched.
func (v *LinkView) Remove(ctx context.Context, index int) error {
	tx, err := v.store.writer()
	if err != nil {
		return err
	}
	return removeLink(ctx, tx, v.owner.ID, v.field, index)
}

func countLinks(ctx context.Context, q querier, owner, field string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM links WHERE owner_id = ? AND field = ?
	`, owner, field).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count links %s.%s: %w", owner, field, err)
	}
	return n, nil
}

func insertLinkRow(ctx context.Context, tx *sql.Tx, owner, field string, pos int, target string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO links (owner_id, field, pos, target_id)
		VALUES (?, ?, ?, ?)
	`, owner, field, pos, target)
	return err
}

func removeLink(ctx context.Context, tx *sql.Tx, owner, field string, pos int) error {
	res, err := tx.ExecContext(ctx, `
		DELETE FROM links WHERE owner_id = ? AND field = ? AND pos = ?
	`, owner, field, pos)
	if err != nil {
		return fmt.Errorf("remove %s.%s[%d]: %w", owner, field, pos, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove %s.%s[%d]: rows affected: %w", owner, field, pos, err)
	}
	if n == 0 {
		return fmt.Errorf("remove %s.%s[%d]: no link at position", owner, field, pos)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE links SET pos = pos - 1
		WHERE owner_id = ? AND field = ? AND pos > ?
	`, owner, field, pos)
	if err != nil {
		return fmt.Errorf("remove %s.%s[%d]: shift: %w", owner, field, pos, err)
	}
	return nil
}
