// Package progress derives completion statistics. Nothing here is stored:
// every report is computed from unit counts on demand.
package progress

import (
	"context"

	"github.com/dhanush/skillpath/internal/store"
)

// Report is a learner's completion snapshot.
type Report struct {
	Done    int
	Total   int
	Percent int
	Topic   string
}

// Tracker computes progress reports.
type Tracker struct {
	store *store.Store
}

// NewTracker creates a progress tracker.
func NewTracker(s *store.Store) *Tracker {
	return &Tracker{store: s}
}

// Progress returns done/total unit counts and an integer percentage
// (floor division, 0 when no units exist).
func (t *Tracker) Progress(ctx context.Context, learnerID int64) (*Report, error) {
	if _, err := t.store.Learners().ByID(ctx, learnerID); err != nil {
		return nil, err
	}

	done, total, err := t.store.Units().Counts(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	topic, err := t.store.Learners().CurrentTopic(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	report := &Report{Done: done, Total: total, Topic: topic}
	if total > 0 {
		report.Percent = 100 * done / total
	}
	return report, nil
}
