// Package grading scores quiz attempts and drives the resulting status
// transitions: passing marks the unit and its node done (bubbling
// completion upward), failing marks the node split and hands it to the
// remediation planner.
package grading

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/dhanush/skillpath/internal/remediation"
	"github.com/dhanush/skillpath/internal/store"
)

// ErrInvalidInput marks a rejected attempt payload. Nothing is persisted
// when it is returned.
var ErrInvalidInput = errors.New("invalid input")

// Config holds grading settings.
type Config struct {
	// PassThreshold is the minimum score percentage that counts as a pass.
	PassThreshold int
}

// DefaultConfig returns sensible defaults for grading.
func DefaultConfig() Config {
	return Config{PassThreshold: 60}
}

// QuestionResult is the outcome of one graded question.
type QuestionResult struct {
	Question      string
	Submitted     string
	CorrectAnswer string
	Correct       bool
	Difficulty    string
}

// Result is the outcome of one graded attempt.
type Result struct {
	UnitID   int64
	NodeID   int64
	BatchID  string
	Correct  int
	Total    int
	ScorePct int
	Passed   bool

	Questions []QuestionResult

	// Split is set when the attempt failed and a remediation branch was
	// created.
	Split *remediation.SplitResult
}

// Engine grades attempts against a unit's cached quiz.
type Engine struct {
	store   *store.Store
	planner *remediation.Planner
	cfg     Config
}

// NewEngine creates a grading engine.
func NewEngine(s *store.Store, planner *remediation.Planner, cfg Config) *Engine {
	return &Engine{store: s, planner: planner, cfg: cfg}
}

// Grade scores the submitted answers against the unit's quiz, appends one
// attempt record per question and applies the pass or fail transition.
// Validation failures reject the request before anything is written.
func (e *Engine) Grade(ctx context.Context, unitID int64, answers []string) (*Result, error) {
	unit, err := e.store.Units().ByID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if unit.Status == store.UnitDone {
		return nil, fmt.Errorf("unit %d already completed: %w", unitID, ErrInvalidInput)
	}

	content, err := e.store.Contents().ByUnitID(ctx, unit.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("unit %d has no generated content: %w", unitID, ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}

	quiz := content.Quiz
	if len(answers) != len(quiz) {
		return nil, fmt.Errorf("expected %d answers, got %d: %w", len(quiz), len(answers), ErrInvalidInput)
	}

	node, err := e.store.Nodes().ByID(ctx, unit.NodeID)
	if err != nil {
		return nil, err
	}
	if node.Status != store.NodePending {
		// A split node's original unit is retired: progress runs through
		// the remediation children, never a retake of the parent quiz.
		return nil, fmt.Errorf("node %d already %s: %w", node.ID, node.Status, ErrInvalidInput)
	}

	result := &Result{
		UnitID:  unit.ID,
		NodeID:  node.ID,
		BatchID: uuid.NewString(),
		Total:   len(quiz),
	}

	for i, q := range quiz {
		correct := answersMatch(answers[i], q.CorrectAnswer)
		if correct {
			result.Correct++
		}
		result.Questions = append(result.Questions, QuestionResult{
			Question:      q.Question,
			Submitted:     answers[i],
			CorrectAnswer: q.CorrectAnswer,
			Correct:       correct,
			Difficulty:    q.Difficulty,
		})
	}

	result.ScorePct = scorePct(result.Correct, result.Total)
	result.Passed = result.ScorePct >= e.cfg.PassThreshold

	unlock := e.store.LockLearner(unit.LearnerID)
	err = e.store.InTx(ctx, func(tx *store.Tx) error {
		for _, q := range result.Questions {
			attempt := &store.Attempt{
				LearnerID:  unit.LearnerID,
				UnitID:     unit.ID,
				BatchID:    result.BatchID,
				Question:   q.Question,
				Submitted:  q.Submitted,
				Correct:    q.Correct,
				Difficulty: q.Difficulty,
			}
			if err := tx.Attempts().Append(ctx, attempt); err != nil {
				return err
			}
		}

		if !result.Passed {
			// The unit stays pending: further progress runs through the
			// remediation children, the failed unit is never retried.
			return tx.Nodes().SetStatus(ctx, node.ID, store.NodeSplit)
		}

		if err := tx.Units().SetDone(ctx, unit.ID); err != nil {
			return err
		}
		if err := tx.Nodes().SetStatus(ctx, node.ID, store.NodeDone); err != nil {
			return err
		}
		return bubbleUp(ctx, tx, node)
	})
	unlock()
	if err != nil {
		return nil, fmt.Errorf("grade unit %d: %w", unitID, err)
	}

	if !result.Passed {
		split, err := e.planner.Split(ctx, node)
		if err != nil {
			return nil, err
		}
		result.Split = split
	}

	return result, nil
}

// bubbleUp walks from a just-completed node toward the root, marking each
// parent done while all of its children are done.
func bubbleUp(ctx context.Context, tx *store.Tx, node *store.Node) error {
	for node.ParentID != nil {
		allDone, err := tx.Nodes().AllSiblingsDone(ctx, *node.ParentID)
		if err != nil {
			return err
		}
		if !allDone {
			return nil
		}
		if err := tx.Nodes().SetStatus(ctx, *node.ParentID, store.NodeDone); err != nil {
			return err
		}
		node, err = tx.Nodes().ByID(ctx, *node.ParentID)
		if err != nil {
			return err
		}
	}
	return nil
}

// answersMatch compares a submitted answer to the correct one after
// trimming and case-folding both.
func answersMatch(submitted, correct string) bool {
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(correct))
}

// scorePct rounds 100*correct/total to the nearest integer, 0 when the
// quiz is empty.
func scorePct(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}
