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

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	var render bool
	cmd := &cobra.Command{
		Use:   "run [query]",
		Short: "Run a research in this process",
		Long: `Run a financial deep research in this process and print the result.

When no query is given as arguments it is read from standard input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			defer shutdownTracing(ctx)

			query, err := readQuery(args, cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			manager := a.newManager(a.publishers())
			result, err := manager.Run(ctx, query)
			if err != nil {
				return fmt.Errorf("research failed: %w", err)
			}

			if err := printResult(cmd.OutOrStdout(), result, render); err != nil {
				return err
			}
			if storeConfigured(a.cfg) {
				a.saveResult(ctx, uuid.NewString(), result)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&render, "render", false, "render the markdown report for the terminal")
	return cmd
}
