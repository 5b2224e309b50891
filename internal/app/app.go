// Package app wires the store, the LLM provider and the domain services
// into one handle the CLI commands share.
package app

import (
	"context"
	"fmt"

	"github.com/dhanush/skillpath/internal/grading"
	"github.com/dhanush/skillpath/internal/llm"
	"github.com/dhanush/skillpath/internal/progress"
	"github.com/dhanush/skillpath/internal/remediation"
	"github.com/dhanush/skillpath/internal/roadmap"
	"github.com/dhanush/skillpath/internal/scheduler"
	"github.com/dhanush/skillpath/internal/sessions"
	"github.com/dhanush/skillpath/internal/store"
)

// App bundles every service the CLI needs.
type App struct {
	Store    *store.Store
	Provider llm.Provider

	Roadmap  *roadmap.Service
	Cache    *sessions.Cache
	Selector *scheduler.Selector
	Planner  *remediation.Planner
	Grader   *grading.Engine
	Progress *progress.Tracker
}

// New opens the database at dbPath, builds the LLM provider from the
// environment and wires the services with default configuration.
func New(ctx context.Context, dbPath string) (*App, error) {
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	provider, err := llm.NewProviderFromEnv(ctx, s.EventRepo())
	if err != nil {
		s.Close()
		return nil, err
	}

	return Wire(s, provider), nil
}

// Wire assembles the services on an existing store and provider. Tests use
// this with a mock provider and an in-memory store.
func Wire(s *store.Store, provider llm.Provider) *App {
	cache := sessions.NewCache(s, provider, sessions.DefaultConfig())
	planner := remediation.NewPlanner(s, provider, cache, remediation.DefaultConfig())

	return &App{
		Store:    s,
		Provider: provider,
		Roadmap:  roadmap.NewService(s, provider, roadmap.DefaultConfig()),
		Cache:    cache,
		Selector: scheduler.NewSelector(s, cache, scheduler.DefaultConfig()),
		Planner:  planner,
		Grader:   grading.NewEngine(s, planner, grading.DefaultConfig()),
		Progress: progress.NewTracker(s),
	}
}

// Close releases the underlying store.
func (a *App) Close() error {
	return a.Store.Close()
}
