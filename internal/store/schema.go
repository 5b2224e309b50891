package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is applied in order at Open. Statements are idempotent so opening
// an existing database is safe.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS learners (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL,
		strengths   TEXT NOT NULL DEFAULT '',
		weaknesses  TEXT NOT NULL DEFAULT '',
		interests   TEXT NOT NULL DEFAULT '',
		course      TEXT NOT NULL DEFAULT '',
		year        TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS learning_status (
		learner_id    INTEGER PRIMARY KEY REFERENCES learners(id),
		current_topic TEXT NOT NULL DEFAULT '',
		updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS nodes (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		learner_id  INTEGER NOT NULL REFERENCES learners(id),
		topic       TEXT NOT NULL,
		subtopic    TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		resources   TEXT NOT NULL DEFAULT '[]',
		position    INTEGER NOT NULL,
		status      TEXT NOT NULL DEFAULT 'pending',
		parent_id   INTEGER REFERENCES nodes(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_nodes_learner_position
		ON nodes(learner_id, position)`,
	`CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id)`,

	`CREATE TABLE IF NOT EXISTS units (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		node_id           INTEGER NOT NULL REFERENCES nodes(id),
		learner_id        INTEGER NOT NULL REFERENCES learners(id),
		title             TEXT NOT NULL,
		description       TEXT NOT NULL DEFAULT '',
		estimated_minutes INTEGER NOT NULL DEFAULT 50,
		status            TEXT NOT NULL DEFAULT 'pending',
		content_id        INTEGER REFERENCES contents(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_units_learner_status
		ON units(learner_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_units_node ON units(node_id)`,

	`CREATE TABLE IF NOT EXISTS contents (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		unit_id     INTEGER NOT NULL UNIQUE REFERENCES units(id),
		lesson_text TEXT NOT NULL,
		resources   TEXT NOT NULL DEFAULT '[]',
		videos      TEXT NOT NULL DEFAULT '[]',
		quiz        TEXT NOT NULL DEFAULT '[]',
		created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS attempts (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		learner_id INTEGER NOT NULL REFERENCES learners(id),
		unit_id    INTEGER NOT NULL REFERENCES units(id),
		batch_id   TEXT NOT NULL,
		question   TEXT NOT NULL,
		submitted  TEXT NOT NULL DEFAULT '',
		correct    BOOLEAN NOT NULL,
		difficulty TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attempts_unit ON attempts(unit_id)`,

	`CREATE TABLE IF NOT EXISTS llm_requests (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		provider      TEXT NOT NULL,
		model         TEXT NOT NULL,
		purpose       TEXT NOT NULL,
		input_tokens  INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms    INTEGER NOT NULL DEFAULT 0,
		success       BOOLEAN NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body  TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

func createSchema(db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
