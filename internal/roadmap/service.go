package roadmap

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dhanush/skillpath/internal/llm"
	"github.com/dhanush/skillpath/internal/store"
)

// Service selects a study topic for a learner, decomposes it into an
// ordered roadmap and persists the result.
type Service struct {
	store    *store.Store
	provider llm.Provider
	cfg      Config
}

// NewService creates a roadmap service.
func NewService(s *store.Store, provider llm.Provider, cfg Config) *Service {
	return &Service{store: s, provider: provider, cfg: cfg}
}

type topicProfile struct {
	Name       string
	Strengths  string
	Weaknesses string
	Interests  string
	Course     string
	Year       string
}

type subtopicOutput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Resources   []string `json:"resources"`
}

type decomposeOutput struct {
	Subtopics []subtopicOutput `json:"subtopics"`
}

// Generate builds a fresh roadmap for the learner: pick a topic from the
// profile, decompose it into subtopics, replace the learner's not-done
// nodes with the new sequence and record the topic as current. Completed
// nodes survive regeneration.
func (s *Service) Generate(ctx context.Context, learnerID int64) (*Plan, error) {
	learner, err := s.store.Learners().ByID(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	current, err := s.store.Learners().CurrentTopic(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	topic := s.SelectTopic(ctx, learner, current)
	subtopics := s.Decompose(ctx, topic)

	items := make([]store.NewNode, 0, len(subtopics))
	for _, st := range subtopics {
		items = append(items, store.NewNode{
			Subtopic:    st.Title,
			Description: st.Description,
			Resources:   st.Resources,
		})
	}

	unlock := s.store.LockLearner(learnerID)
	defer unlock()

	var ids []int64
	err = s.store.InTx(ctx, func(tx *store.Tx) error {
		if err := tx.Nodes().DeleteStale(ctx, learnerID); err != nil {
			return err
		}
		ids, err = tx.Nodes().InsertTopLevelBatch(ctx, learnerID, topic, items)
		if err != nil {
			return err
		}
		return tx.Learners().SetCurrentTopic(ctx, learnerID, topic)
	})
	if err != nil {
		return nil, fmt.Errorf("persist roadmap: %w", err)
	}

	nodes, err := s.store.Nodes().ListByLearner(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	return &Plan{Topic: topic, NodeIDs: ids, Nodes: nodes}, nil
}

// SelectTopic asks the model for one short topic addressing the learner's
// weaknesses. When the reply matches the topic the learner already studies,
// one alternate request is made. Model failure falls back to a topic
// derived from the learner's interests.
func (s *Service) SelectTopic(ctx context.Context, learner *store.Learner, current string) string {
	profile := topicProfile{
		Name:       learner.Name,
		Strengths:  learner.Strengths,
		Weaknesses: learner.Weaknesses,
		Interests:  learner.Interests,
		Course:     learner.Course,
		Year:       learner.Year,
	}

	topic := s.askTopic(ctx, buildTopicUserMessage(profile))
	if topic != "" && current != "" && sameTopic(topic, current) {
		topic = s.askTopic(ctx, buildAlternateTopicUserMessage(profile, current))
		if topic != "" && sameTopic(topic, current) {
			topic = ""
		}
	}
	if topic == "" {
		return fallbackTopic(learner.Interests)
	}
	return topic
}

func (s *Service) askTopic(ctx context.Context, userMsg string) string {
	ctx = llm.WithPurpose(ctx, "topic")

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: topicSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMsg},
		},
		MaxTokens:   64,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return ""
	}

	return cleanTopic(decodeText(resp.Content))
}

// Decompose breaks a topic into ordered subtopics. A failed or undersized
// decomposition falls back to a single "<topic> Basics" entry.
func (s *Service) Decompose(ctx context.Context, topic string) []Subtopic {
	ctx = llm.WithPurpose(ctx, "roadmap")

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: decomposeSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildDecomposeUserMessage(topic, s.cfg.MinSubtopics, s.cfg.MaxSubtopics)},
		},
		Schema:      DecomposeSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return fallbackSubtopics(topic)
	}

	var out decomposeOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil || len(out.Subtopics) == 0 {
		return fallbackSubtopics(topic)
	}

	subtopics := make([]Subtopic, 0, len(out.Subtopics))
	for _, st := range out.Subtopics {
		if st.Title == "" {
			continue
		}
		subtopics = append(subtopics, Subtopic{
			Title:       st.Title,
			Description: st.Description,
			Resources:   st.Resources,
		})
	}
	if len(subtopics) == 0 {
		return fallbackSubtopics(topic)
	}
	if len(subtopics) > s.cfg.MaxSubtopics {
		subtopics = subtopics[:s.cfg.MaxSubtopics]
	}
	return subtopics
}

func fallbackSubtopics(topic string) []Subtopic {
	return []Subtopic{{
		Title:       topic + " Basics",
		Description: "Core concepts of " + topic + ".",
	}}
}

// decodeText unwraps a raw-text model response. Providers wrap plain text
// as a JSON string; anything else is used verbatim.
func decodeText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
