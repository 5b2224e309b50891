package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// AttemptRepo is the append-only quiz attempt log.
type AttemptRepo struct {
	q sqlx.ExtContext
}

// Append records one answered question. Attempt rows are never updated.
func (r *AttemptRepo) Append(ctx context.Context, a *Attempt) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO attempts (learner_id, unit_id, batch_id, question, submitted, correct, difficulty)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.LearnerID, a.UnitID, a.BatchID, a.Question, a.Submitted, a.Correct, a.Difficulty)
	if err != nil {
		return fmt.Errorf("append attempt: %w", err)
	}
	return nil
}

// ListByUnit returns a unit's attempts in insertion order.
func (r *AttemptRepo) ListByUnit(ctx context.Context, unitID int64) ([]Attempt, error) {
	var out []Attempt
	err := sqlx.SelectContext(ctx, r.q, &out,
		`SELECT * FROM attempts WHERE unit_id = ? ORDER BY id ASC`, unitID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return out, nil
}

// CountByLearner returns the number of logged attempts for a learner.
func (r *AttemptRepo) CountByLearner(ctx context.Context, learnerID int64) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.q, &count,
		`SELECT COUNT(*) FROM attempts WHERE learner_id = ?`, learnerID)
	if err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return count, nil
}
