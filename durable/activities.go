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
	"context"
	"time"

	"github.com/nlpodyssey/deepresearch/progress"
	"github.com/nlpodyssey/deepresearch/research"
	"go.temporal.io/sdk/activity"
)

// Activities wraps every agent call of a research run, so that the workflow
// itself stays deterministic. Register an instance with the worker; workflow
// code refers to the methods through a nil *Activities.
type Activities struct {
	Manager   *research.Manager
	Publisher progress.Publisher
}

func NewActivities(manager *research.Manager, publisher progress.Publisher) *Activities {
	return &Activities{Manager: manager, Publisher: publisher}
}

func (a *Activities) ExploreActivity(ctx context.Context, query string) (*research.ExplorationPlan, error) {
	return a.Manager.Explore(ctx, query)
}

func (a *Activities) PlanExploitActivity(ctx context.Context, req research.ExploitRequest) (*research.SearchPlan, error) {
	return a.Manager.PlanExploit(ctx, req)
}

func (a *Activities) SearchActivity(ctx context.Context, item research.SearchItem) (string, error) {
	return a.Manager.Search(ctx, item)
}

func (a *Activities) WriteReportActivity(ctx context.Context, req research.ReportRequest) (*research.ReportData, error) {
	return a.Manager.WriteReport(ctx, req)
}

func (a *Activities) VerifyActivity(ctx context.Context, report research.ReportData) (*research.VerificationResult, error) {
	return a.Manager.Verify(ctx, report)
}

// EmitProgressActivity forwards a workflow progress event to the publisher.
// Publishing errors are logged and swallowed.
func (a *Activities) EmitProgressActivity(ctx context.Context, event progress.Event) error {
	if a.Publisher == nil {
		return nil
	}
	event = event.Stamped(time.Now())
	publisher := progress.WithMetadata(a.Publisher, map[string]any{
		"run_id": activity.GetInfo(ctx).WorkflowExecution.ID,
	})
	if err := publisher.Publish(ctx, event); err != nil {
		activity.GetLogger(ctx).Warn("failed to publish progress event",
			"type", string(event.Type), "error", err)
	}
	return nil
}
