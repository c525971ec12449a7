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

// Package durable hosts the research loop on Temporal. The loop itself is
// research.Run; this package supplies the workflow-side Phases, where every
// agent call is an activity.
package durable

import (
	"time"

	"github.com/nlpodyssey/deepresearch/progress"
	"github.com/nlpodyssey/deepresearch/research"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	TaskQueue        = "financial-deep-research-task-queue"
	WorkflowIDPrefix = "financial-deep-research-"
)

// Request is the input of FinancialDeepResearchWorkflow.
type Request struct {
	Query string           `json:"query"`
	Opts  research.Options `json:"opts"`
}

var (
	agentActivityOptions = workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}

	// A failed search is dropped, never retried.
	searchActivityOptions = workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}

	emitActivityOptions = workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
)

// FinancialDeepResearchWorkflow researches a financial question with the
// explore-exploit loop and returns the verified report.
func FinancialDeepResearchWorkflow(ctx workflow.Context, req Request) (*research.Result, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting financial deep research", "query", req.Query)

	ctx = workflow.WithActivityOptions(ctx, agentActivityOptions)
	phases := &workflowPhases{}
	result, err := research.Run[workflow.Context](ctx, phases, req.Query, req.Opts)
	phases.drain(ctx)
	if err != nil {
		logger.Error("Financial deep research failed", "error", err)
		return nil, err
	}

	logger.Info("Financial deep research completed",
		"iterations", len(result.Summaries),
		"search_results", len(result.SearchResults),
		"verified", result.Verification.Verified)
	return result, nil
}

// workflowPhases implements research.Phases on top of activities.
type workflowPhases struct {
	// Progress activities not awaited yet.
	pending []workflow.Future
}

// Method expressions on a nil receiver name the registered activities.
var acts *Activities

func (*workflowPhases) Explore(ctx workflow.Context, query string) (*research.ExplorationPlan, error) {
	var plan research.ExplorationPlan
	if err := workflow.ExecuteActivity(ctx, acts.ExploreActivity, query).Get(ctx, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (*workflowPhases) PlanExploit(ctx workflow.Context, req research.ExploitRequest) (*research.SearchPlan, error) {
	var plan research.SearchPlan
	if err := workflow.ExecuteActivity(ctx, acts.PlanExploitActivity, req).Get(ctx, &plan); err != nil {
		return nil, err
	}
	plan.SubTopic = req.SubTopic.Name
	return &plan, nil
}

func (p *workflowPhases) SearchAll(ctx workflow.Context, plan research.SearchPlan) []string {
	searchCtx := workflow.WithActivityOptions(ctx, searchActivityOptions)
	logger := workflow.GetLogger(ctx)

	results := make([]string, 0, len(plan.Searches))
	selector := workflow.NewSelector(ctx)
	for _, item := range plan.Searches {
		future := workflow.ExecuteActivity(searchCtx, acts.SearchActivity, item)
		selector.AddFuture(future, func(f workflow.Future) {
			var out string
			if err := f.Get(ctx, &out); err != nil {
				logger.Warn("Search failed", "sub_topic", plan.SubTopic, "query", item.Query, "error", err)
				p.Emit(ctx, progress.NewEvent(progress.SearchFailed, map[string]any{
					"sub_topic": plan.SubTopic,
					"query":     item.Query,
					"error":     err.Error(),
				}))
				return
			}
			results = append(results, out)
		})
	}
	for range plan.Searches {
		selector.Select(ctx)
	}
	return results
}

func (*workflowPhases) WriteReport(ctx workflow.Context, req research.ReportRequest) (*research.ReportData, error) {
	var report research.ReportData
	if err := workflow.ExecuteActivity(ctx, acts.WriteReportActivity, req).Get(ctx, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (*workflowPhases) Verify(ctx workflow.Context, report research.ReportData) (*research.VerificationResult, error) {
	var verification research.VerificationResult
	if err := workflow.ExecuteActivity(ctx, acts.VerifyActivity, report).Get(ctx, &verification); err != nil {
		return nil, err
	}
	return &verification, nil
}

// Span only logs: tracing happens inside the activities, where the agent
// runs create their own traces.
func (*workflowPhases) Span(ctx workflow.Context, name string, fn func(workflow.Context) error) error {
	workflow.GetLogger(ctx).Debug(name)
	return fn(ctx)
}

// Emit fires a progress activity without waiting for it.
func (p *workflowPhases) Emit(ctx workflow.Context, event progress.Event) {
	emitCtx := workflow.WithActivityOptions(ctx, emitActivityOptions)
	f := workflow.ExecuteActivity(emitCtx, acts.EmitProgressActivity, event.Stamped(workflow.Now(ctx)))
	p.pending = append(p.pending, f)
}

// drain waits for outstanding progress activities, ignoring their errors.
func (p *workflowPhases) drain(ctx workflow.Context) {
	for _, f := range p.pending {
		_ = f.Get(ctx, nil)
	}
	p.pending = nil
}
