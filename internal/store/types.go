package store

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a referenced learner, node, unit or content
// row does not exist.
var ErrNotFound = errors.New("not found")

// NodeStatus is the lifecycle state of a roadmap node. Done and Split are
// terminal; there are no reverse transitions.
type NodeStatus string

const (
	NodePending NodeStatus = "pending"
	NodeDone    NodeStatus = "done"
	NodeSplit   NodeStatus = "split"
)

// UnitStatus is the lifecycle state of a mini unit. A failing attempt never
// moves the unit itself; it marks the owning node split instead.
type UnitStatus string

const (
	UnitPending UnitStatus = "pending"
	UnitDone    UnitStatus = "done"
)

// Learner is a student profile. All curriculum entities are scoped to one
// learner.
type Learner struct {
	ID         int64     `db:"id"`
	Name       string    `db:"name"`
	Strengths  string    `db:"strengths"`
	Weaknesses string    `db:"weaknesses"`
	Interests  string    `db:"interests"`
	Course     string    `db:"course"`
	Year       string    `db:"year"`
	CreatedAt  time.Time `db:"created_at"`
}

// LearningStatus tracks the topic a learner is currently working through.
type LearningStatus struct {
	LearnerID    int64     `db:"learner_id"`
	CurrentTopic string    `db:"current_topic"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Node is one topic entry in a learner's roadmap. Nodes form a forest per
// learner: parent_id is null for top-level entries and references the split
// node for remediation children.
type Node struct {
	ID          int64      `db:"id"`
	LearnerID   int64      `db:"learner_id"`
	Topic       string     `db:"topic"`
	Subtopic    string     `db:"subtopic"`
	Description string     `db:"description"`
	Resources   JSONList   `db:"resources"`
	Position    int        `db:"position"`
	Status      NodeStatus `db:"status"`
	ParentID    *int64     `db:"parent_id"`
}

// Unit is one assignable piece of work (lesson + quiz) under a node.
type Unit struct {
	ID               int64      `db:"id"`
	NodeID           int64      `db:"node_id"`
	LearnerID        int64      `db:"learner_id"`
	Title            string     `db:"title"`
	Description      string     `db:"description"`
	EstimatedMinutes int        `db:"estimated_minutes"`
	Status           UnitStatus `db:"status"`
	ContentID        *int64     `db:"content_id"`
}

// QuizItem is a single multiple-choice question inside generated content.
type QuizItem struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Difficulty    string   `json:"difficulty"`
	Rationale     string   `json:"rationale"`
}

// Content is the cached lesson and quiz for a unit. Rows are immutable once
// created; regeneration never replaces an existing row.
type Content struct {
	ID         int64     `db:"id"`
	UnitID     int64     `db:"unit_id"`
	LessonText string    `db:"lesson_text"`
	Resources  JSONList  `db:"resources"`
	Videos     JSONList  `db:"videos"`
	Quiz       QuizJSON  `db:"quiz"`
	CreatedAt  time.Time `db:"created_at"`
}

// Attempt is one append-only quiz answer record. Attempts are deleted only
// by a whole-learner reset.
type Attempt struct {
	ID         int64     `db:"id"`
	LearnerID  int64     `db:"learner_id"`
	UnitID     int64     `db:"unit_id"`
	BatchID    string    `db:"batch_id"`
	Question   string    `db:"question"`
	Submitted  string    `db:"submitted"`
	Correct    bool      `db:"correct"`
	Difficulty string    `db:"difficulty"`
	CreatedAt  time.Time `db:"created_at"`
}

// JSONList stores a string slice as a JSON text column.
type JSONList []string

// Value implements driver.Valuer.
func (l JSONList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *JSONList) Scan(src any) error {
	return scanJSON(src, (*[]string)(l))
}

// QuizJSON stores an ordered quiz as a JSON text column.
type QuizJSON []QuizItem

// Value implements driver.Valuer.
func (q QuizJSON) Value() (driver.Value, error) {
	if q == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]QuizItem(q))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (q *QuizJSON) Scan(src any) error {
	return scanJSON(src, (*[]QuizItem)(q))
}

func scanJSON(src, dest any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dest)
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dest)
	default:
		return errors.New("unsupported JSON column type")
	}
}
