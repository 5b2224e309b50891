package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// LearnerRepo handles learner profiles and learning status.
type LearnerRepo struct {
	q sqlx.ExtContext
}

// Create inserts a learner profile and returns it with its assigned id.
func (r *LearnerRepo) Create(ctx context.Context, l *Learner) (*Learner, error) {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO learners (name, strengths, weaknesses, interests, course, year)
		VALUES (?, ?, ?, ?, ?, ?)`,
		l.Name, l.Strengths, l.Weaknesses, l.Interests, l.Course, l.Year)
	if err != nil {
		return nil, fmt.Errorf("insert learner: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("learner id: %w", err)
	}
	return r.ByID(ctx, id)
}

// ByID returns one learner or ErrNotFound.
func (r *LearnerRepo) ByID(ctx context.Context, id int64) (*Learner, error) {
	var l Learner
	err := sqlx.GetContext(ctx, r.q, &l, `SELECT * FROM learners WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("learner %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get learner: %w", err)
	}
	return &l, nil
}

// List returns all learners ordered by id.
func (r *LearnerRepo) List(ctx context.Context) ([]Learner, error) {
	var out []Learner
	err := sqlx.SelectContext(ctx, r.q, &out, `SELECT * FROM learners ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list learners: %w", err)
	}
	return out, nil
}

// CurrentTopic returns the learner's current topic, or "" when none is set.
func (r *LearnerRepo) CurrentTopic(ctx context.Context, learnerID int64) (string, error) {
	var topic string
	err := sqlx.GetContext(ctx, r.q, &topic,
		`SELECT current_topic FROM learning_status WHERE learner_id = ?`, learnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get learning status: %w", err)
	}
	return topic, nil
}

// SetCurrentTopic upserts the learner's current topic.
func (r *LearnerRepo) SetCurrentTopic(ctx context.Context, learnerID int64, topic string) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO learning_status (learner_id, current_topic, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (learner_id)
		DO UPDATE SET current_topic = excluded.current_topic, updated_at = CURRENT_TIMESTAMP`,
		learnerID, topic)
	if err != nil {
		return fmt.Errorf("upsert learning status: %w", err)
	}
	return nil
}
