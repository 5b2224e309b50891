package grading

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/dhanush/skillpath/internal/llm"
	"github.com/dhanush/skillpath/internal/remediation"
	"github.com/dhanush/skillpath/internal/sessions"
	"github.com/dhanush/skillpath/internal/store"
)

func newFixture(t *testing.T) (*store.Store, *Engine) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	// Empty mock: splits and pre-generation use deterministic fallbacks.
	mock := llm.NewMockProvider()
	cache := sessions.NewCache(s, mock, sessions.DefaultConfig())
	planner := remediation.NewPlanner(s, mock, cache, remediation.DefaultConfig())
	return s, NewEngine(s, planner, DefaultConfig())
}

func seedLearner(t *testing.T, s *store.Store, subtopics ...string) (int64, []int64) {
	t.Helper()
	ctx := context.Background()

	l, err := s.Learners().Create(ctx, &store.Learner{Name: "Dhanush"})
	if err != nil {
		t.Fatalf("create learner: %v", err)
	}
	items := make([]store.NewNode, len(subtopics))
	for i, st := range subtopics {
		items[i] = store.NewNode{Subtopic: st}
	}
	var ids []int64
	err = s.InTx(ctx, func(tx *store.Tx) error {
		ids, err = tx.Nodes().InsertTopLevelBatch(ctx, l.ID, "SQL", items)
		return err
	})
	if err != nil {
		t.Fatalf("seed nodes: %v", err)
	}
	return l.ID, ids
}

// seedGradableUnit creates a unit with an n-question quiz where the correct
// answer to question i is "answer i".
func seedGradableUnit(t *testing.T, s *store.Store, nodeID, learnerID int64, n int) *store.Unit {
	t.Helper()
	ctx := context.Background()

	unit, err := s.Units().Create(ctx, nodeID, learnerID, "Quiz Unit", "", 50)
	if err != nil {
		t.Fatalf("create unit: %v", err)
	}

	quiz := make(store.QuizJSON, n)
	for i := range quiz {
		quiz[i] = store.QuizItem{
			Question:      fmt.Sprintf("question %d", i),
			Options:       []string{fmt.Sprintf("answer %d", i), "wrong"},
			CorrectAnswer: fmt.Sprintf("answer %d", i),
			Difficulty:    "Easy",
		}
	}
	content, err := s.Contents().Create(ctx, &store.Content{
		UnitID: unit.ID, LessonText: "lesson", Quiz: quiz,
	})
	if err != nil {
		t.Fatalf("create content: %v", err)
	}
	if err := s.Units().AttachContent(ctx, unit.ID, content.ID); err != nil {
		t.Fatalf("attach content: %v", err)
	}
	return unit
}

// answerSheet returns n answers of which the first correct are right.
func answerSheet(n, correct int) []string {
	answers := make([]string, n)
	for i := range answers {
		if i < correct {
			answers[i] = fmt.Sprintf("answer %d", i)
		} else {
			answers[i] = "wrong guess"
		}
	}
	return answers
}

func TestGrade_PassMarksUnitAndNodeDone(t *testing.T) {
	s, e := newFixture(t)
	learnerID, ids := seedLearner(t, s, "Joins")
	unit := seedGradableUnit(t, s, ids[0], learnerID, 10)
	ctx := context.Background()

	result, err := e.Grade(ctx, unit.ID, answerSheet(10, 7))
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if result.ScorePct != 70 {
		t.Errorf("score = %d, want 70", result.ScorePct)
	}
	if !result.Passed {
		t.Fatal("expected pass")
	}
	if result.Split != nil {
		t.Error("pass must not split")
	}

	reloadedUnit, _ := s.Units().ByID(ctx, unit.ID)
	if reloadedUnit.Status != store.UnitDone {
		t.Errorf("unit status = %s, want done", reloadedUnit.Status)
	}
	node, _ := s.Nodes().ByID(ctx, ids[0])
	if node.Status != store.NodeDone {
		t.Errorf("node status = %s, want done", node.Status)
	}

	attempts, err := s.Attempts().ListByUnit(ctx, unit.ID)
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(attempts) != 10 {
		t.Errorf("attempts = %d, want one per question", len(attempts))
	}
	for _, a := range attempts {
		if a.BatchID != result.BatchID {
			t.Errorf("attempt batch = %q, want %q", a.BatchID, result.BatchID)
		}
	}
}

func TestGrade_FailSplitsNode(t *testing.T) {
	s, e := newFixture(t)
	learnerID, ids := seedLearner(t, s, "Joins", "Indexes", "Views")
	unit := seedGradableUnit(t, s, ids[0], learnerID, 10)
	ctx := context.Background()

	result, err := e.Grade(ctx, unit.ID, answerSheet(10, 5))
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if result.ScorePct != 50 {
		t.Errorf("score = %d, want 50", result.ScorePct)
	}
	if result.Passed {
		t.Fatal("expected fail")
	}
	if result.Split == nil {
		t.Fatal("fail must produce a split")
	}
	if len(result.Split.NodeIDs) != 2 {
		t.Fatalf("fallback split created %d children, want 2", len(result.Split.NodeIDs))
	}

	node, _ := s.Nodes().ByID(ctx, ids[0])
	if node.Status != store.NodeSplit {
		t.Errorf("node status = %s, want split", node.Status)
	}
	// The failed unit stays pending.
	reloadedUnit, _ := s.Units().ByID(ctx, unit.ID)
	if reloadedUnit.Status != store.UnitPending {
		t.Errorf("unit status = %s, want pending", reloadedUnit.Status)
	}

	// Children sit at parent position+1/+2; later siblings shifted by 2.
	nodes, err := s.Nodes().ListByLearner(ctx, learnerID)
	if err != nil {
		t.Fatalf("list nodes: %v", err)
	}
	byPos := map[int]store.Node{}
	for _, n := range nodes {
		byPos[n.Position] = n
	}
	if byPos[2].ParentID == nil || *byPos[2].ParentID != ids[0] {
		t.Errorf("position 2 is not a child of the split node")
	}
	if byPos[3].ParentID == nil || *byPos[3].ParentID != ids[0] {
		t.Errorf("position 3 is not a child of the split node")
	}
	if byPos[4].Subtopic != "Indexes" || byPos[5].Subtopic != "Views" {
		t.Errorf("later siblings not shifted: %v / %v", byPos[4].Subtopic, byPos[5].Subtopic)
	}

	// Each child carries one unit with pre-generated content.
	for _, childID := range result.Split.NodeIDs {
		units, err := s.Units().ListByNode(ctx, childID)
		if err != nil {
			t.Fatalf("list units: %v", err)
		}
		if len(units) != 1 {
			t.Fatalf("child %d has %d units, want 1", childID, len(units))
		}
		if units[0].ContentID == nil {
			t.Errorf("child unit %d has no content", units[0].ID)
		}
	}
}

func TestGrade_BubbleUpMarksSplitParentDone(t *testing.T) {
	s, e := newFixture(t)
	learnerID, ids := seedLearner(t, s, "Joins")
	unit := seedGradableUnit(t, s, ids[0], learnerID, 10)
	ctx := context.Background()

	// Fail the top-level unit to create two remediation children.
	result, err := e.Grade(ctx, unit.ID, answerSheet(10, 0))
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	childNodes := result.Split.NodeIDs

	// Pass the first child: parent must stay split.
	childUnits, _ := s.Units().ListByNode(ctx, childNodes[0])
	pass(t, e, s, childUnits[0].ID)
	parent, _ := s.Nodes().ByID(ctx, ids[0])
	if parent.Status != store.NodeSplit {
		t.Fatalf("parent done with one child remaining (status %s)", parent.Status)
	}

	// Pass the second child: completion bubbles up.
	childUnits, _ = s.Units().ListByNode(ctx, childNodes[1])
	pass(t, e, s, childUnits[0].ID)
	parent, _ = s.Nodes().ByID(ctx, ids[0])
	if parent.Status != store.NodeDone {
		t.Errorf("parent status = %s, want done after all children pass", parent.Status)
	}
}

// pass grades a child unit with all answers correct. Child units carry the
// one-question placeholder quiz whose answer is the unit title minus the
// part suffix.
func pass(t *testing.T, e *Engine, s *store.Store, unitID int64) {
	t.Helper()
	ctx := context.Background()

	content, err := s.Contents().ByUnitID(ctx, unitID)
	if err != nil {
		t.Fatalf("content for unit %d: %v", unitID, err)
	}
	answers := make([]string, len(content.Quiz))
	for i, q := range content.Quiz {
		answers[i] = q.CorrectAnswer
	}
	result, err := e.Grade(ctx, unitID, answers)
	if err != nil {
		t.Fatalf("grade unit %d: %v", unitID, err)
	}
	if !result.Passed {
		t.Fatalf("unit %d: expected pass, score %d", unitID, result.ScorePct)
	}
}

func TestGrade_NormalizesAnswers(t *testing.T) {
	s, e := newFixture(t)
	learnerID, ids := seedLearner(t, s, "Joins")
	unit := seedGradableUnit(t, s, ids[0], learnerID, 1)

	result, err := e.Grade(context.Background(), unit.ID, []string{"  ANSWER 0  "})
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if result.Correct != 1 {
		t.Errorf("trimmed, case-folded answer not accepted")
	}
}

func TestGrade_RejectsWrongAnswerCount(t *testing.T) {
	s, e := newFixture(t)
	learnerID, ids := seedLearner(t, s, "Joins")
	unit := seedGradableUnit(t, s, ids[0], learnerID, 10)
	ctx := context.Background()

	_, err := e.Grade(ctx, unit.ID, answerSheet(7, 7))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}

	// Rejection happens before any write.
	attempts, _ := s.Attempts().ListByUnit(ctx, unit.ID)
	if len(attempts) != 0 {
		t.Errorf("attempts persisted despite rejection: %d", len(attempts))
	}
	node, _ := s.Nodes().ByID(ctx, ids[0])
	if node.Status != store.NodePending {
		t.Errorf("node mutated despite rejection: %s", node.Status)
	}
}

func TestGrade_UnknownUnit(t *testing.T) {
	_, e := newFixture(t)

	_, err := e.Grade(context.Background(), 999, []string{"a"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGrade_RejectsCompletedUnit(t *testing.T) {
	s, e := newFixture(t)
	learnerID, ids := seedLearner(t, s, "Joins")
	unit := seedGradableUnit(t, s, ids[0], learnerID, 2)
	ctx := context.Background()

	if _, err := e.Grade(ctx, unit.ID, []string{"answer 0", "answer 1"}); err != nil {
		t.Fatalf("grade: %v", err)
	}
	_, err := e.Grade(ctx, unit.ID, []string{"answer 0", "answer 1"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput for regrade", err)
	}
}

func TestGrade_RejectsSplitNodeUnit(t *testing.T) {
	s, e := newFixture(t)
	learnerID, ids := seedLearner(t, s, "Joins")
	unit := seedGradableUnit(t, s, ids[0], learnerID, 10)
	ctx := context.Background()

	result, err := e.Grade(ctx, unit.ID, answerSheet(10, 0))
	if err != nil {
		t.Fatalf("grade: %v", err)
	}

	// The split node's unit is retired: a perfect retake must not mark
	// the node done ahead of its children, and a failing retake must not
	// re-split it.
	for _, answers := range [][]string{answerSheet(10, 10), answerSheet(10, 0)} {
		if _, err := e.Grade(ctx, unit.ID, answers); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("err = %v, want ErrInvalidInput for retired unit", err)
		}
	}

	node, _ := s.Nodes().ByID(ctx, ids[0])
	if node.Status != store.NodeSplit {
		t.Errorf("node status = %s, want split", node.Status)
	}
	attempts, _ := s.Attempts().ListByUnit(ctx, unit.ID)
	if len(attempts) != 10 {
		t.Errorf("attempts = %d, want only the original batch", len(attempts))
	}

	// Completion still bubbles up through the children afterwards.
	for _, childID := range result.Split.NodeIDs {
		childUnits, _ := s.Units().ListByNode(ctx, childID)
		pass(t, e, s, childUnits[0].ID)
	}
	node, _ = s.Nodes().ByID(ctx, ids[0])
	if node.Status != store.NodeDone {
		t.Errorf("node status = %s, want done after children pass", node.Status)
	}
}

func TestScorePct(t *testing.T) {
	tests := []struct {
		correct, total, want int
	}{
		{7, 10, 70},
		{5, 10, 50},
		{2, 3, 67},
		{1, 3, 33},
		{0, 0, 0},
		{3, 3, 100},
	}
	for _, tt := range tests {
		if got := scorePct(tt.correct, tt.total); got != tt.want {
			t.Errorf("scorePct(%d, %d) = %d, want %d", tt.correct, tt.total, got, tt.want)
		}
	}
}
