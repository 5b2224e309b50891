package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// NodeRepo handles roadmap nodes. Mutations that touch sibling positions
// must run on a transaction-bound repo under the learner's lock.
type NodeRepo struct {
	q sqlx.ExtContext
}

// NewNode is the input for node creation.
type NewNode struct {
	Subtopic    string
	Description string
	Resources   []string
}

// ByID returns one node or ErrNotFound.
func (r *NodeRepo) ByID(ctx context.Context, id int64) (*Node, error) {
	var n Node
	err := sqlx.GetContext(ctx, r.q, &n, `SELECT * FROM nodes WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("node %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get node: %w", err)
	}
	return &n, nil
}

// ListByLearner returns the learner's full roadmap ordered by position.
func (r *NodeRepo) ListByLearner(ctx context.Context, learnerID int64) ([]Node, error) {
	var out []Node
	err := sqlx.SelectContext(ctx, r.q, &out,
		`SELECT * FROM nodes WHERE learner_id = ? ORDER BY position ASC`, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	return out, nil
}

// MaxPosition returns the highest position among the learner's nodes,
// or 0 when none exist.
func (r *NodeRepo) MaxPosition(ctx context.Context, learnerID int64) (int, error) {
	var max sql.NullInt64
	err := sqlx.GetContext(ctx, r.q, &max,
		`SELECT MAX(position) FROM nodes WHERE learner_id = ?`, learnerID)
	if err != nil {
		return 0, fmt.Errorf("max position: %w", err)
	}
	return int(max.Int64), nil
}

// InsertTopLevelBatch appends top-level nodes starting at max(position)+1.
// All-or-nothing when run on a transaction.
func (r *NodeRepo) InsertTopLevelBatch(ctx context.Context, learnerID int64, topic string, items []NewNode) ([]int64, error) {
	max, err := r.MaxPosition(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(items))
	for i, item := range items {
		res, err := r.q.ExecContext(ctx, `
			INSERT INTO nodes (learner_id, topic, subtopic, description, resources, position, status, parent_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, NULL)`,
			learnerID, topic, item.Subtopic, item.Description,
			JSONList(item.Resources), max+1+i, NodePending)
		if err != nil {
			return nil, fmt.Errorf("insert node %q: %w", item.Subtopic, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("node id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// AppendChildren shifts every sibling after the parent by len(children) and
// inserts the children at parent.position+1 .. parent.position+len(children).
// Must run on a transaction under the learner's lock.
func (r *NodeRepo) AppendChildren(ctx context.Context, parent *Node, children []NewNode) ([]int64, error) {
	if len(children) == 0 {
		return nil, nil
	}

	_, err := r.q.ExecContext(ctx, `
		UPDATE nodes SET position = position + ?
		WHERE learner_id = ? AND position > ?`,
		len(children), parent.LearnerID, parent.Position)
	if err != nil {
		return nil, fmt.Errorf("shift siblings: %w", err)
	}

	ids := make([]int64, 0, len(children))
	for i, child := range children {
		res, err := r.q.ExecContext(ctx, `
			INSERT INTO nodes (learner_id, topic, subtopic, description, resources, position, status, parent_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			parent.LearnerID, parent.Topic, child.Subtopic, child.Description,
			JSONList(child.Resources), parent.Position+1+i, NodePending, parent.ID)
		if err != nil {
			return nil, fmt.Errorf("insert child %q: %w", child.Subtopic, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("child id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// SetStatus applies a node status transition. A node goes done from
// pending (its own work passed) or from split (all remediation children
// finished, see bubble-up); it goes split only from pending. Done is final.
func (r *NodeRepo) SetStatus(ctx context.Context, id int64, status NodeStatus) error {
	var query string
	switch status {
	case NodeDone:
		query = `UPDATE nodes SET status = 'done' WHERE id = ? AND status IN ('pending', 'split')`
	case NodeSplit:
		query = `UPDATE nodes SET status = 'split' WHERE id = ? AND status = 'pending'`
	default:
		return fmt.Errorf("node %d: invalid target status %q", id, status)
	}

	res, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("set node status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set node status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("node %d: status is terminal or node missing", id)
	}
	return nil
}

// FirstPendingTopLevelWithoutUnit returns the earliest-position pending
// top-level node that has no unit yet, or ErrNotFound.
func (r *NodeRepo) FirstPendingTopLevelWithoutUnit(ctx context.Context, learnerID int64) (*Node, error) {
	var n Node
	err := sqlx.GetContext(ctx, r.q, &n, `
		SELECT n.* FROM nodes n
		WHERE n.learner_id = ? AND n.status = ? AND n.parent_id IS NULL
		  AND NOT EXISTS (SELECT 1 FROM units u WHERE u.node_id = n.id)
		ORDER BY n.position ASC
		LIMIT 1`, learnerID, NodePending)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pending node without unit: %w", err)
	}
	return &n, nil
}

// HasPendingNodes reports whether any node of the learner is still pending.
func (r *NodeRepo) HasPendingNodes(ctx context.Context, learnerID int64) (bool, error) {
	var count int
	err := sqlx.GetContext(ctx, r.q, &count,
		`SELECT COUNT(*) FROM nodes WHERE learner_id = ? AND status = ?`,
		learnerID, NodePending)
	if err != nil {
		return false, fmt.Errorf("count pending nodes: %w", err)
	}
	return count > 0, nil
}

// AllSiblingsDone reports whether every child of parentID is done. Split
// siblings count as not done: a split node resolves through its own
// children, not alongside them.
func (r *NodeRepo) AllSiblingsDone(ctx context.Context, parentID int64) (bool, error) {
	var notDone int
	err := sqlx.GetContext(ctx, r.q, &notDone,
		`SELECT COUNT(*) FROM nodes WHERE parent_id = ? AND status != ?`,
		parentID, NodeDone)
	if err != nil {
		return false, fmt.Errorf("count undone siblings: %w", err)
	}
	return notDone == 0, nil
}

// DeleteStale removes the learner's not-done nodes together with their
// units, contents and attempts. Used before regenerating a roadmap so
// completed work survives. Must run on a transaction.
func (r *NodeRepo) DeleteStale(ctx context.Context, learnerID int64) error {
	steps := []string{
		`DELETE FROM attempts WHERE unit_id IN (
			SELECT u.id FROM units u JOIN nodes n ON n.id = u.node_id
			WHERE n.learner_id = ? AND n.status != 'done')`,
		`DELETE FROM contents WHERE unit_id IN (
			SELECT u.id FROM units u JOIN nodes n ON n.id = u.node_id
			WHERE n.learner_id = ? AND n.status != 'done')`,
		`DELETE FROM units WHERE node_id IN (
			SELECT id FROM nodes WHERE learner_id = ? AND status != 'done')`,
		// Children before parents so the self-referencing FK holds.
		`DELETE FROM nodes WHERE learner_id = ? AND status != 'done' AND parent_id IS NOT NULL`,
		`DELETE FROM nodes WHERE learner_id = ? AND status != 'done'`,
	}
	for _, stmt := range steps {
		if _, err := r.q.ExecContext(ctx, stmt, learnerID); err != nil {
			return fmt.Errorf("delete stale roadmap: %w", err)
		}
	}
	return nil
}

// DeleteAll removes every node of the learner together with all dependent
// rows. Part of the whole-learner reset. Must run on a transaction.
func (r *NodeRepo) DeleteAll(ctx context.Context, learnerID int64) error {
	steps := []string{
		`DELETE FROM attempts WHERE learner_id = ?`,
		`DELETE FROM contents WHERE unit_id IN (SELECT id FROM units WHERE learner_id = ?)`,
		`DELETE FROM units WHERE learner_id = ?`,
		`DELETE FROM nodes WHERE learner_id = ? AND parent_id IS NOT NULL`,
		`DELETE FROM nodes WHERE learner_id = ?`,
		`DELETE FROM learning_status WHERE learner_id = ?`,
	}
	for _, stmt := range steps {
		if _, err := r.q.ExecContext(ctx, stmt, learnerID); err != nil {
			return fmt.Errorf("reset learner: %w", err)
		}
	}
	return nil
}
