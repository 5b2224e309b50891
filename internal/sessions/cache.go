package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/dhanush/skillpath/internal/llm"
	"github.com/dhanush/skillpath/internal/store"
)

// Cache generates and caches the lesson, resource links and quiz for a
// unit. Content is generated at most once per unit: once a content row
// exists it is returned with zero external calls, and concurrent requests
// for the same unit share one generation.
type Cache struct {
	store    *store.Store
	provider llm.Provider
	cfg      Config

	group singleflight.Group
}

// NewCache creates a content cache.
func NewCache(s *store.Store, provider llm.Provider, cfg Config) *Cache {
	return &Cache{store: s, provider: provider, cfg: cfg}
}

// EnsureContent returns the unit's cached content, generating and
// persisting it first when missing. Generator failures degrade to
// deterministic placeholder content; only storage errors propagate.
func (c *Cache) EnsureContent(ctx context.Context, unit *store.Unit) (*store.Content, error) {
	if unit.ContentID != nil {
		return c.store.Contents().ByID(ctx, *unit.ContentID)
	}

	v, err, _ := c.group.Do(strconv.FormatInt(unit.ID, 10), func() (any, error) {
		return c.generateAndStore(ctx, unit)
	})
	if err != nil {
		return nil, err
	}
	return v.(*store.Content), nil
}

// EnsureContentByID looks the unit up first. Convenience for callers that
// only hold an id.
func (c *Cache) EnsureContentByID(ctx context.Context, unitID int64) (*store.Content, error) {
	unit, err := c.store.Units().ByID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	return c.EnsureContent(ctx, unit)
}

func (c *Cache) generateAndStore(ctx context.Context, unit *store.Unit) (*store.Content, error) {
	// A losing caller may arrive after the winner committed; serve the
	// existing row instead of generating again.
	existing, err := c.store.Contents().ByUnitID(ctx, unit.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	node, err := c.store.Nodes().ByID(ctx, unit.NodeID)
	if err != nil {
		return nil, err
	}

	shape := c.cfg.TopLevelQuiz
	if node.ParentID != nil {
		shape = c.cfg.ChildQuiz
	}

	lesson := c.generateLesson(ctx, unit.Title, node.Description)
	links := c.generateLinks(ctx, unit.Title)
	videos := c.generateVideos(ctx, unit.Title)
	quiz := c.generateQuiz(ctx, unit.Title, lesson, shape)

	var content *store.Content
	err = c.store.InTx(ctx, func(tx *store.Tx) error {
		content, err = tx.Contents().Create(ctx, &store.Content{
			UnitID:     unit.ID,
			LessonText: lesson,
			Resources:  links,
			Videos:     videos,
			Quiz:       quiz,
		})
		if err != nil {
			return err
		}
		return tx.Units().AttachContent(ctx, unit.ID, content.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("cache content for unit %d: %w", unit.ID, err)
	}
	return content, nil
}

func (c *Cache) generateLesson(ctx context.Context, title, description string) string {
	ctx = llm.WithPurpose(ctx, "lesson")

	resp, err := c.provider.Generate(ctx, llm.Request{
		System: lessonSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildLessonUserMessage(title, description)},
		},
		MaxTokens:   c.cfg.LessonMaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return fallbackLesson(title)
	}

	lesson := strings.TrimSpace(decodeText(resp.Content))
	if lesson == "" {
		return fallbackLesson(title)
	}
	return lesson
}

type quizOutput struct {
	Questions []store.QuizItem `json:"questions"`
}

func (c *Cache) generateQuiz(ctx context.Context, title, lesson string, shape QuizShape) []store.QuizItem {
	ctx = llm.WithPurpose(ctx, "quiz")

	resp, err := c.provider.Generate(ctx, llm.Request{
		System: quizSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildQuizUserMessage(title, lesson, shape)},
		},
		Schema:      QuizSchema,
		MaxTokens:   c.cfg.QuizMaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return fallbackQuiz(title)
	}

	var out quizOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil || len(out.Questions) == 0 {
		return fallbackQuiz(title)
	}

	questions := out.Questions
	if max := shape.Total(); len(questions) > max {
		questions = questions[:max]
	}
	return questions
}

type linksOutput struct {
	Links []string `json:"links"`
}

func (c *Cache) generateLinks(ctx context.Context, title string) []string {
	return c.askLinks(ctx, buildLinksUserMessage(title), nil)
}

func (c *Cache) generateVideos(ctx context.Context, title string) []string {
	return c.askLinks(ctx, buildVideosUserMessage(title), isYouTubeURL)
}

// askLinks requests a URL list, returning an empty slice on any failure.
// Links are best-effort garnish on a unit, never required. When the keep
// filter rejects every link, the unfiltered list is returned instead.
func (c *Cache) askLinks(ctx context.Context, userMsg string, keep func(string) bool) []string {
	ctx = llm.WithPurpose(ctx, "links")

	resp, err := c.provider.Generate(ctx, llm.Request{
		System: linksSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMsg},
		},
		Schema:      LinksSchema,
		MaxTokens:   c.cfg.LinksMaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return nil
	}

	var out linksOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil
	}

	all := make([]string, 0, len(out.Links))
	kept := make([]string, 0, len(out.Links))
	for _, l := range out.Links {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		all = append(all, l)
		if keep == nil || keep(l) {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		return all
	}
	return kept
}

func isYouTubeURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	return host == "youtube.com" || host == "youtu.be" || host == "m.youtube.com"
}

func decodeText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
