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

package main

import (
	"fmt"

	"github.com/nlpodyssey/deepresearch/durable"
	"github.com/spf13/cobra"
)

func newStartCmd(a *app) *cobra.Command {
	var (
		render     bool
		workflowID string
	)
	cmd := &cobra.Command{
		Use:   "start [query]",
		Short: "Run a research as a Temporal workflow and wait for it",
		Long: `Start a financial deep research workflow on Temporal, wait for it to
complete, then print and store the result.

A worker must be polling the configured task queue.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			query, err := readQuery(args, cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			c, err := a.dialTemporal()
			if err != nil {
				return err
			}
			defer c.Close()

			result, id, err := durable.Execute(ctx, c, durable.ExecuteParams{
				WorkflowID: workflowID,
				TaskQueue:  a.cfg.Temporal.TaskQueue,
				Query:      query,
				Opts:       a.cfg.Options(),
			})
			if err != nil {
				return fmt.Errorf("research failed: %w", err)
			}
			a.logger.Info("workflow completed", "workflow_id", id)

			if err := printResult(cmd.OutOrStdout(), result, render); err != nil {
				return err
			}
			if storeConfigured(a.cfg) {
				a.saveResult(ctx, id, result)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&render, "render", false, "render the markdown report for the terminal")
	cmd.Flags().StringVar(&workflowID, "workflow-id", "", "workflow ID (default: generated)")
	return cmd
}
