package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ContentRepo handles generated lesson content. Rows are write-once; the
// unique unit_id constraint rejects a second generation for the same unit.
type ContentRepo struct {
	q sqlx.ExtContext
}

// Create inserts a content row for a unit and returns it.
func (r *ContentRepo) Create(ctx context.Context, c *Content) (*Content, error) {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO contents (unit_id, lesson_text, resources, videos, quiz)
		VALUES (?, ?, ?, ?, ?)`,
		c.UnitID, c.LessonText, c.Resources, c.Videos, c.Quiz)
	if err != nil {
		return nil, fmt.Errorf("insert content: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("content id: %w", err)
	}
	return r.ByID(ctx, id)
}

// ByID returns one content row or ErrNotFound.
func (r *ContentRepo) ByID(ctx context.Context, id int64) (*Content, error) {
	var c Content
	err := sqlx.GetContext(ctx, r.q, &c, `SELECT * FROM contents WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("content %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get content: %w", err)
	}
	return &c, nil
}

// ByUnitID returns the content cached for a unit or ErrNotFound.
func (r *ContentRepo) ByUnitID(ctx context.Context, unitID int64) (*Content, error) {
	var c Content
	err := sqlx.GetContext(ctx, r.q, &c, `SELECT * FROM contents WHERE unit_id = ?`, unitID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("content for unit %d: %w", unitID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get content by unit: %w", err)
	}
	return &c, nil
}
