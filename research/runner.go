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
	"fmt"

	"github.com/nlpodyssey/deepresearch/progress"
)

// Phases are the side-effecting steps of a research run. C is the context
// type of the host: context.Context in-process, workflow.Context when the
// run is hosted by the workflow engine.
type Phases[C any] interface {
	Explore(ctx C, query string) (*ExplorationPlan, error)
	PlanExploit(ctx C, req ExploitRequest) (*SearchPlan, error)

	// SearchAll runs every search of the plan concurrently and returns the
	// successful results in completion order. Failed searches are dropped.
	SearchAll(ctx C, plan SearchPlan) []string

	WriteReport(ctx C, req ReportRequest) (*ReportData, error)
	Verify(ctx C, report ReportData) (*VerificationResult, error)

	// Span runs fn inside a named tracing unit.
	Span(ctx C, name string, fn func(C) error) error

	// Emit publishes a progress event. Implementations must not fail the run.
	Emit(ctx C, event progress.Event)
}

// Run executes the explore, exploit and synthesize phases on the given host.
func Run[C any](ctx C, phases Phases[C], query string, opts Options) (*Result, error) {
	result, err := run(ctx, phases, query, opts.withDefaults())
	if err != nil {
		phases.Emit(ctx, progress.NewEvent(progress.ResearchFailed, map[string]any{
			"error": err.Error(),
		}))
		return nil, err
	}
	phases.Emit(ctx, progress.NewEvent(progress.ResearchCompleted, map[string]any{
		"iterations":     len(result.Summaries),
		"search_results": len(result.SearchResults),
		"verified":       result.Verification.Verified,
	}))
	return result, nil
}

func run[C any](ctx C, phases Phases[C], query string, opts Options) (*Result, error) {
	phases.Emit(ctx, progress.NewEvent(progress.ResearchStarted, map[string]any{
		"query": query,
	}))

	// Phase 1: identify sub-topics.
	plan, err := phases.Explore(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("explore: %w", err)
	}
	phases.Emit(ctx, progress.NewEvent(progress.ExploreCompleted, map[string]any{
		"sub_topics": len(plan.SubTopics),
	}))

	// Phase 2: exploit sub-topics iteratively.
	result := &Result{Query: query}
	depths := newDepthTracker(opts.MaxDepthPerTopic)
	topics := SortSubTopics(plan.SubTopics)

	for iteration := range opts.MaxIterations {
		eligible := depths.eligible(topics)
		if len(eligible) == 0 && len(topics) > 0 {
			break
		}

		var ir *IterationResult
		err = phases.Span(ctx, fmt.Sprintf("Research iteration %d", iteration+1), func(ctx C) (err error) {
			ir, err = exploitSubTopics(ctx, phases, query, eligible, iteration, result.Summaries, depths, opts)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("iteration %d: %w", iteration+1, err)
		}

		result.SearchResults = append(result.SearchResults, ir.SearchResults...)
		result.Summaries = append(result.Summaries, ir.Summary)
		phases.Emit(ctx, progress.NewEvent(progress.IterationCompleted, map[string]any{
			"iteration":      ir.Number,
			"search_results": len(ir.SearchResults),
		}))

		if !ShouldContinue(*ir, iteration, opts) {
			break
		}
	}

	// Phase 3: synthesize and verify.
	report, err := phases.WriteReport(ctx, ReportRequest{
		Query:         query,
		Summaries:     result.Summaries,
		SearchResults: result.SearchResults,
	})
	if err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	result.Report = *report
	phases.Emit(ctx, progress.NewEvent(progress.ReportWritten, map[string]any{
		"short_summary": report.ShortSummary,
	}))

	verification, err := phases.Verify(ctx, *report)
	if err != nil {
		return nil, fmt.Errorf("verify report: %w", err)
	}
	result.Verification = *verification
	phases.Emit(ctx, progress.NewEvent(progress.VerificationCompleted, map[string]any{
		"verified": verification.Verified,
		"issues":   verification.Issues,
	}))

	return result, nil
}

func exploitSubTopics[C any](
	ctx C,
	phases Phases[C],
	query string,
	topics []SubTopic,
	iteration int,
	previous []string,
	depths *depthTracker,
	opts Options,
) (*IterationResult, error) {
	phases.Emit(ctx, progress.NewEvent(progress.IterationStarted, map[string]any{
		"iteration":  iteration + 1,
		"sub_topics": len(topics),
	}))

	ir := &IterationResult{Number: iteration + 1}
	summary := newIterationSummary(ir.Number, opts.PreviewLength)
	previousResearch := TruncateSummaries(previous, opts.SummaryWindow)

	for _, topic := range topics {
		err := phases.Span(ctx, "Researching sub-topic: "+topic.Name, func(ctx C) error {
			plan, err := phases.PlanExploit(ctx, ExploitRequest{
				Query:            query,
				SubTopic:         topic,
				Iteration:        iteration,
				PreviousResearch: previousResearch,
			})
			if err != nil {
				return fmt.Errorf("plan sub-topic %q: %w", topic.Name, err)
			}
			plan.SubTopic = topic.Name

			var found []string
			err = phases.Span(ctx, "Search the web", func(ctx C) error {
				found = phases.SearchAll(ctx, *plan)
				return nil
			})
			if err != nil {
				return err
			}
			depths.visit(topic)

			ir.SearchResults = append(ir.SearchResults, found...)
			summary.addTopic(topic.Name, found)
			phases.Emit(ctx, progress.NewEvent(progress.SubTopicCompleted, map[string]any{
				"iteration":      ir.Number,
				"sub_topic":      topic.Name,
				"searches":       len(plan.Searches),
				"search_results": len(found),
			}))
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	ir.Summary = summary.String()
	return ir, nil
}
