package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// UnitRepo handles mini units.
type UnitRepo struct {
	q sqlx.ExtContext
}

// Create inserts a pending unit under a node and returns it.
func (r *UnitRepo) Create(ctx context.Context, nodeID, learnerID int64, title, description string, estimatedMinutes int) (*Unit, error) {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO units (node_id, learner_id, title, description, estimated_minutes, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		nodeID, learnerID, title, description, estimatedMinutes, UnitPending)
	if err != nil {
		return nil, fmt.Errorf("insert unit: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("unit id: %w", err)
	}
	return r.ByID(ctx, id)
}

// ByID returns one unit or ErrNotFound.
func (r *UnitRepo) ByID(ctx context.Context, id int64) (*Unit, error) {
	var u Unit
	err := sqlx.GetContext(ctx, r.q, &u, `SELECT * FROM units WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("unit %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get unit: %w", err)
	}
	return &u, nil
}

// ListByNode returns a node's units ordered by id.
func (r *UnitRepo) ListByNode(ctx context.Context, nodeID int64) ([]Unit, error) {
	var out []Unit
	err := sqlx.SelectContext(ctx, r.q, &out,
		`SELECT * FROM units WHERE node_id = ? ORDER BY id ASC`, nodeID)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	return out, nil
}

// NextPendingChild returns the highest-priority pending unit whose node is a
// pending remediation child, ordered by parent position then unit id.
func (r *UnitRepo) NextPendingChild(ctx context.Context, learnerID int64) (*Unit, error) {
	var u Unit
	err := sqlx.GetContext(ctx, r.q, &u, `
		SELECT u.* FROM units u
		JOIN nodes n ON n.id = u.node_id
		JOIN nodes p ON p.id = n.parent_id
		WHERE u.learner_id = ? AND u.status = ? AND n.status = ?
		ORDER BY p.position ASC, u.id ASC
		LIMIT 1`, learnerID, UnitPending, NodePending)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("next pending child unit: %w", err)
	}
	return &u, nil
}

// NextPendingTopLevel returns the highest-priority pending unit whose node
// is a pending top-level entry, ordered by node position then unit id.
func (r *UnitRepo) NextPendingTopLevel(ctx context.Context, learnerID int64) (*Unit, error) {
	var u Unit
	err := sqlx.GetContext(ctx, r.q, &u, `
		SELECT u.* FROM units u
		JOIN nodes n ON n.id = u.node_id
		WHERE u.learner_id = ? AND u.status = ? AND n.status = ? AND n.parent_id IS NULL
		ORDER BY n.position ASC, u.id ASC
		LIMIT 1`, learnerID, UnitPending, NodePending)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("next pending top-level unit: %w", err)
	}
	return &u, nil
}

// SetDone marks a unit done.
func (r *UnitRepo) SetDone(ctx context.Context, id int64) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE units SET status = ? WHERE id = ?`, UnitDone, id)
	if err != nil {
		return fmt.Errorf("mark unit done: %w", err)
	}
	return nil
}

// AttachContent sets a unit's content reference. The reference is set at
// most once: a second attach is a consistency violation, never a silent
// replacement.
func (r *UnitRepo) AttachContent(ctx context.Context, unitID, contentID int64) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE units SET content_id = ? WHERE id = ? AND content_id IS NULL`,
		contentID, unitID)
	if err != nil {
		return fmt.Errorf("attach content: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("attach content: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("unit %d: content already attached", unitID)
	}
	return nil
}

// Counts returns (done, total) unit counts for the learner.
func (r *UnitRepo) Counts(ctx context.Context, learnerID int64) (done, total int, err error) {
	err = sqlx.GetContext(ctx, r.q, &total,
		`SELECT COUNT(*) FROM units WHERE learner_id = ?`, learnerID)
	if err != nil {
		return 0, 0, fmt.Errorf("count units: %w", err)
	}
	err = sqlx.GetContext(ctx, r.q, &done,
		`SELECT COUNT(*) FROM units WHERE learner_id = ? AND status = ?`,
		learnerID, UnitDone)
	if err != nil {
		return 0, 0, fmt.Errorf("count done units: %w", err)
	}
	return done, total, nil
}
