package progress

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dhanush/skillpath/internal/store"
)

func newFixture(t *testing.T) (*store.Store, *Tracker, int64, int64) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	l, err := s.Learners().Create(ctx, &store.Learner{Name: "Dhanush"})
	if err != nil {
		t.Fatalf("create learner: %v", err)
	}
	var ids []int64
	err = s.InTx(ctx, func(tx *store.Tx) error {
		ids, err = tx.Nodes().InsertTopLevelBatch(ctx, l.ID, "SQL", []store.NewNode{{Subtopic: "Joins"}})
		return err
	})
	if err != nil {
		t.Fatalf("seed node: %v", err)
	}
	return s, NewTracker(s), l.ID, ids[0]
}

func TestProgress_ZeroWhenNoUnits(t *testing.T) {
	_, tracker, learnerID, _ := newFixture(t)

	report, err := tracker.Progress(context.Background(), learnerID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if report.Total != 0 || report.Done != 0 || report.Percent != 0 {
		t.Errorf("report = %+v, want all zero", report)
	}
}

func TestProgress_FloorsPercentage(t *testing.T) {
	s, tracker, learnerID, nodeID := newFixture(t)
	ctx := context.Background()

	var unitIDs []int64
	for i := 0; i < 3; i++ {
		u, err := s.Units().Create(ctx, nodeID, learnerID, "Unit", "", 50)
		if err != nil {
			t.Fatalf("create unit: %v", err)
		}
		unitIDs = append(unitIDs, u.ID)
	}
	if err := s.Units().SetDone(ctx, unitIDs[0]); err != nil {
		t.Fatalf("set done: %v", err)
	}

	report, err := tracker.Progress(ctx, learnerID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if report.Done != 1 || report.Total != 3 {
		t.Errorf("counts = %d/%d, want 1/3", report.Done, report.Total)
	}
	if report.Percent != 33 {
		t.Errorf("percent = %d, want floor(100/3) = 33", report.Percent)
	}

	if err := s.Units().SetDone(ctx, unitIDs[1]); err != nil {
		t.Fatalf("set done: %v", err)
	}
	report, err = tracker.Progress(ctx, learnerID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if report.Percent != 66 {
		t.Errorf("percent = %d, want floor(200/3) = 66", report.Percent)
	}
}

func TestProgress_IncludesCurrentTopic(t *testing.T) {
	s, tracker, learnerID, _ := newFixture(t)
	ctx := context.Background()

	if err := s.Learners().SetCurrentTopic(ctx, learnerID, "SQL"); err != nil {
		t.Fatalf("set topic: %v", err)
	}
	report, err := tracker.Progress(ctx, learnerID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if report.Topic != "SQL" {
		t.Errorf("topic = %q, want SQL", report.Topic)
	}
}

func TestProgress_UnknownLearner(t *testing.T) {
	_, tracker, _, _ := newFixture(t)

	if _, err := tracker.Progress(context.Background(), 42); err == nil {
		t.Fatal("expected error for unknown learner")
	}
}
