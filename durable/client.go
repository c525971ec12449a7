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

package durable

import (
	"cmp"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nlpodyssey/deepresearch/research"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
)

// NewWorker creates a worker polling taskQueue, with the research workflow
// and activities registered on it. The worker is not started.
func NewWorker(c client.Client, taskQueue string, activities *Activities, options worker.Options) worker.Worker {
	w := worker.New(c, cmp.Or(taskQueue, TaskQueue), options)
	Register(w, activities)
	return w
}

// Register adds the research workflow and activities to a registry.
func Register(r worker.Registry, activities *Activities) {
	r.RegisterWorkflowWithOptions(FinancialDeepResearchWorkflow, workflow.RegisterOptions{
		Name: "FinancialDeepResearchWorkflow",
	})
	r.RegisterActivity(activities)
}

// NewWorkflowID returns a fresh workflow ID for a research run.
func NewWorkflowID() string {
	return WorkflowIDPrefix + uuid.NewString()
}

type ExecuteParams struct {
	// Optional workflow ID. Default: NewWorkflowID().
	WorkflowID string

	// Optional task queue. Default: TaskQueue.
	TaskQueue string

	Query string
	Opts  research.Options
}

// Execute starts a research workflow and waits for its result.
func Execute(ctx context.Context, c client.Client, params ExecuteParams) (*research.Result, string, error) {
	workflowID := cmp.Or(params.WorkflowID, NewWorkflowID())
	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: cmp.Or(params.TaskQueue, TaskQueue),
	}, FinancialDeepResearchWorkflow, Request{
		Query: params.Query,
		Opts:  params.Opts,
	})
	if err != nil {
		return nil, workflowID, fmt.Errorf("start workflow: %w", err)
	}

	var result research.Result
	if err := run.Get(ctx, &result); err != nil {
		return nil, workflowID, fmt.Errorf("workflow %s: %w", workflowID, err)
	}
	return &result, workflowID, nil
}
