// Package remediation turns a failed roadmap node into a remediation
// branch: the node's subtopic is decomposed into simpler children that are
// inserted directly after it, each with its own ready-to-study unit.
package remediation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dhanush/skillpath/internal/llm"
	"github.com/dhanush/skillpath/internal/store"
)

// ContentEnsurer pre-generates a unit's content. *sessions.Cache
// implements it.
type ContentEnsurer interface {
	EnsureContentByID(ctx context.Context, unitID int64) (*store.Content, error)
}

// SplitResult reports what a split created.
type SplitResult struct {
	NodeIDs []int64
	UnitIDs []int64
	// Roadmap is the learner's full node sequence after the split, with
	// positions already shifted.
	Roadmap []store.Node
}

// Planner decomposes failed nodes and mutates the roadmap.
type Planner struct {
	store    *store.Store
	provider llm.Provider
	cache    ContentEnsurer
	cfg      Config
}

// NewPlanner creates a remediation planner.
func NewPlanner(s *store.Store, provider llm.Provider, cache ContentEnsurer, cfg Config) *Planner {
	return &Planner{store: s, provider: provider, cache: cache, cfg: cfg}
}

type childOutput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type splitOutput struct {
	Subtopics []childOutput `json:"subtopics"`
}

// Split inserts simplified children directly after the node and shifts
// every later sibling by the child count, in one transaction. Each child
// gets one unit whose content is generated eagerly, so the next-unit
// request after a failed quiz does not wait on the generators.
func (p *Planner) Split(ctx context.Context, node *store.Node) (*SplitResult, error) {
	children := p.decompose(ctx, node)

	titles := make([]string, len(children))
	for i, c := range children {
		titles[i] = c.Subtopic
	}

	unlock := p.store.LockLearner(node.LearnerID)

	var nodeIDs, unitIDs []int64
	err := p.store.InTx(ctx, func(tx *store.Tx) error {
		var err error
		nodeIDs, err = tx.Nodes().AppendChildren(ctx, node, children)
		if err != nil {
			return err
		}
		for i, id := range nodeIDs {
			unit, err := tx.Units().Create(ctx, id, node.LearnerID,
				titles[i]+" - Part 1", children[i].Description, p.cfg.UnitEstimatedMinutes)
			if err != nil {
				return err
			}
			unitIDs = append(unitIDs, unit.ID)
		}
		return nil
	})
	unlock()
	if err != nil {
		return nil, fmt.Errorf("split node %d: %w", node.ID, err)
	}

	// Pre-generate outside the lock; generator latency must not block
	// other mutations for this learner. Best-effort: a unit left without
	// content here is generated lazily on its first selection.
	for _, unitID := range unitIDs {
		if _, err := p.cache.EnsureContentByID(ctx, unitID); err != nil {
			fmt.Fprintf(os.Stderr, "warning: pre-generate unit %d: %v\n", unitID, err)
		}
	}

	roadmap, err := p.store.Nodes().ListByLearner(ctx, node.LearnerID)
	if err != nil {
		return nil, err
	}

	return &SplitResult{NodeIDs: nodeIDs, UnitIDs: unitIDs, Roadmap: roadmap}, nil
}

// decompose asks the model for simplified sub-parts, falling back to a
// deterministic two-way split when the result is missing or too small.
func (p *Planner) decompose(ctx context.Context, node *store.Node) []store.NewNode {
	ctx = llm.WithPurpose(ctx, "split")

	resp, err := p.provider.Generate(ctx, llm.Request{
		System: splitSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildSplitUserMessage(node.Subtopic, node.Description, p.cfg.MinChildren, p.cfg.MaxChildren)},
		},
		Schema:      SplitSchema,
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
	})
	if err != nil {
		return fallbackSplit(node.Subtopic)
	}

	var out splitOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return fallbackSplit(node.Subtopic)
	}

	children := make([]store.NewNode, 0, len(out.Subtopics))
	for _, c := range out.Subtopics {
		if c.Title == "" {
			continue
		}
		children = append(children, store.NewNode{
			Subtopic:    c.Title,
			Description: c.Description,
		})
	}
	if len(children) < p.cfg.MinChildren {
		return fallbackSplit(node.Subtopic)
	}
	if len(children) > p.cfg.MaxChildren {
		children = children[:p.cfg.MaxChildren]
	}
	return children
}

func fallbackSplit(subtopic string) []store.NewNode {
	return []store.NewNode{
		{
			Subtopic:    subtopic + " - Part A",
			Description: "First half of " + subtopic + ", starting from the basics.",
		},
		{
			Subtopic:    subtopic + " - Part B",
			Description: "Second half of " + subtopic + ", building on Part A.",
		},
	}
}
