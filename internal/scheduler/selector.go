// Package scheduler picks the next unit of work for a learner.
//
// Priority order: pending units under remediation children first (a learner
// finishes a remediation branch before resuming the main sequence), then
// pending top-level units, then lazy creation of a first unit for the
// earliest pending top-level node. When nothing is selectable the
// curriculum is complete.
package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/dhanush/skillpath/internal/sessions"
	"github.com/dhanush/skillpath/internal/store"
)

// Config holds unit selection settings.
type Config struct {
	// UnitEstimatedMinutes is assigned to lazily created units.
	UnitEstimatedMinutes int
}

// DefaultConfig returns sensible defaults for unit selection.
func DefaultConfig() Config {
	return Config{UnitEstimatedMinutes: 50}
}

// Selection is the outcome of a next-unit request. When Complete is true
// the other fields are nil: every node of the curriculum is resolved.
type Selection struct {
	Unit     *store.Unit
	Node     *store.Node
	Content  *store.Content
	Complete bool
}

// Selector implements the next-unit policy on top of the store and the
// content cache.
type Selector struct {
	store *store.Store
	cache *sessions.Cache
	cfg   Config
}

// NewSelector creates a unit selector.
func NewSelector(s *store.Store, cache *sessions.Cache, cfg Config) *Selector {
	return &Selector{store: s, cache: cache, cfg: cfg}
}

// Next returns the learner's next unit with its content attached,
// creating the unit first when the chosen node has none. At most one
// creation round happens per call; the retry is a bounded loop, not
// recursion.
func (s *Selector) Next(ctx context.Context, learnerID int64) (*Selection, error) {
	if _, err := s.store.Learners().ByID(ctx, learnerID); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < 2; attempt++ {
		unit, created, err := s.pick(ctx, learnerID)
		if err != nil {
			return nil, err
		}
		if unit == nil && !created {
			return &Selection{Complete: true}, nil
		}
		if unit == nil {
			// A unit was created for a bare node; re-evaluate once so
			// the normal priority order decides whether it is next.
			continue
		}

		content, err := s.cache.EnsureContent(ctx, unit)
		if err != nil {
			return nil, err
		}

		// Re-read: EnsureContent attached the content reference.
		unit, err = s.store.Units().ByID(ctx, unit.ID)
		if err != nil {
			return nil, err
		}
		node, err := s.store.Nodes().ByID(ctx, unit.NodeID)
		if err != nil {
			return nil, err
		}

		return &Selection{Unit: unit, Node: node, Content: content}, nil
	}

	return nil, fmt.Errorf("learner %d: no selectable unit after creating one", learnerID)
}

// pick runs the decide-and-write step under the learner's lock. It returns
// the selected unit, or (nil, true) when a unit was created and selection
// should re-run, or (nil, false) when the curriculum is complete.
func (s *Selector) pick(ctx context.Context, learnerID int64) (*store.Unit, bool, error) {
	unlock := s.store.LockLearner(learnerID)
	defer unlock()

	unit, err := s.store.Units().NextPendingChild(ctx, learnerID)
	if err == nil {
		return unit, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	unit, err = s.store.Units().NextPendingTopLevel(ctx, learnerID)
	if err == nil {
		return unit, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	node, err := s.store.Nodes().FirstPendingTopLevelWithoutUnit(ctx, learnerID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	_, err = s.store.Units().Create(ctx, node.ID, learnerID,
		node.Subtopic+" - Part 1", node.Description, s.cfg.UnitEstimatedMinutes)
	if err != nil {
		return nil, false, err
	}
	return nil, true, nil
}
