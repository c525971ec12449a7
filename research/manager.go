// Copyright 2025 The NLP Odyssey Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package research

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nlpodyssey/deepresearch/progress"
	"github.com/nlpodyssey/openai-agents-go/agents"
	"github.com/nlpodyssey/openai-agents-go/tracing"
	"golang.org/x/sync/errgroup"
)

const (
	TraceWorkflowName = "Financial deep research trace"

	DefaultSearchConcurrency = 8
)

// Manager runs the whole explore-exploit flow in-process, calling the
// agents directly.
//
// The zero value is not valid, use NewManager.
type Manager struct {
	Agents Agents
	Runner agents.Runner
	Opts   Options

	// Maximum number of searches in flight for a single sub-topic.
	SearchConcurrency int

	Publisher progress.Publisher
	Logger    *slog.Logger

	// Optional clock, used to stamp events.
	Now func() time.Time
}

type ManagerParams struct {
	Models            Models
	RunConfig         agents.RunConfig
	Opts              Options
	SearchConcurrency int
	Publisher         progress.Publisher
	Logger            *slog.Logger
}

func NewManager(params ManagerParams) *Manager {
	return &Manager{
		Agents:            NewAgents(params.Models),
		Runner:            agents.Runner{Config: params.RunConfig},
		Opts:              params.Opts,
		SearchConcurrency: cmp.Or(params.SearchConcurrency, DefaultSearchConcurrency),
		Publisher:         params.Publisher,
		Logger:            params.Logger,
		Now:               time.Now,
	}
}

func (m *Manager) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return agents.Logger()
}

// Run researches the query and returns the synthesized, verified report.
func (m *Manager) Run(ctx context.Context, query string) (*Result, error) {
	var result *Result
	err := tracing.RunTrace(ctx, tracing.TraceParams{
		WorkflowName: TraceWorkflowName,
		Metadata:     map[string]any{"query": query},
	}, func(ctx context.Context, _ tracing.Trace) (err error) {
		result, err = Run[context.Context](ctx, m, query, m.Opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (m *Manager) Explore(ctx context.Context, query string) (*ExplorationPlan, error) {
	result, err := m.Runner.Run(ctx, m.Agents.ExploreOrchestrator, ExploreInput(query))
	if err != nil {
		return nil, err
	}
	plan, ok := result.FinalOutput.(ExplorationPlan)
	if !ok {
		return nil, fmt.Errorf("unexpected exploration output type %T", result.FinalOutput)
	}
	m.logger().Debug("exploration planned", slog.Int("sub_topics", len(plan.SubTopics)))
	return &plan, nil
}

func (m *Manager) PlanExploit(ctx context.Context, req ExploitRequest) (*SearchPlan, error) {
	result, err := m.Runner.Run(ctx, m.Agents.ExploitOrchestrator, ExploitInput(req))
	if err != nil {
		return nil, err
	}
	plan, ok := result.FinalOutput.(SearchPlan)
	if !ok {
		return nil, fmt.Errorf("unexpected search plan output type %T", result.FinalOutput)
	}
	plan.SubTopic = req.SubTopic.Name
	return &plan, nil
}

func (m *Manager) SearchAll(ctx context.Context, plan SearchPlan) []string {
	var (
		mu      sync.Mutex
		results = make([]string, 0, len(plan.Searches))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cmp.Or(m.SearchConcurrency, DefaultSearchConcurrency))
	for _, item := range plan.Searches {
		g.Go(func() error {
			out, err := m.Search(gctx, item)
			if err != nil {
				// A failed search only loses its own result.
				m.logger().Warn("search failed",
					slog.String("sub_topic", plan.SubTopic),
					slog.String("query", item.Query),
					slog.String("error", err.Error()))
				m.Emit(ctx, progress.NewEvent(progress.SearchFailed, map[string]any{
					"sub_topic": plan.SubTopic,
					"query":     item.Query,
					"error":     err.Error(),
				}))
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			results = append(results, out)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Search runs a single search through the search agent.
func (m *Manager) Search(ctx context.Context, item SearchItem) (string, error) {
	result, err := m.Runner.Run(ctx, m.Agents.Search, SearchInput(item))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%v", result.FinalOutput), nil
}

func (m *Manager) WriteReport(ctx context.Context, req ReportRequest) (*ReportData, error) {
	result, err := m.Runner.Run(ctx, m.Agents.WriterWithAnalysts(), ReportInput(req))
	if err != nil {
		return nil, err
	}
	report, ok := result.FinalOutput.(ReportData)
	if !ok {
		return nil, fmt.Errorf("unexpected report output type %T", result.FinalOutput)
	}
	return &report, nil
}

func (m *Manager) Verify(ctx context.Context, report ReportData) (*VerificationResult, error) {
	result, err := m.Runner.Run(ctx, m.Agents.Verifier, report.MarkdownReport)
	if err != nil {
		return nil, err
	}
	verification, ok := result.FinalOutput.(VerificationResult)
	if !ok {
		return nil, fmt.Errorf("unexpected verification output type %T", result.FinalOutput)
	}
	return &verification, nil
}

func (m *Manager) Span(ctx context.Context, name string, fn func(context.Context) error) error {
	return tracing.CustomSpan(ctx, tracing.CustomSpanParams{Name: name}, func(ctx context.Context, _ tracing.Span) error {
		return fn(ctx)
	})
}

func (m *Manager) Emit(ctx context.Context, event progress.Event) {
	if m.Publisher == nil {
		return
	}
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	if err := m.Publisher.Publish(ctx, event.Stamped(now())); err != nil {
		m.logger().Warn("failed to publish progress event",
			slog.String("type", string(event.Type)),
			slog.String("error", err.Error()))
	}
}
