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
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/nlpodyssey/deepresearch/config"
	"github.com/nlpodyssey/openai-agents-go/agents"
	"github.com/nlpodyssey/openai-agents-go/tracing"
	"github.com/nlpodyssey/openai-agents-go/tracing/wrappers/traceloop"
	"github.com/spf13/cobra"
)

// app holds what every subcommand shares once the root command has run.
type app struct {
	configFile string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "deepresearch",
		Short: "Explore-then-exploit financial research with agents",
		Long: `deepresearch answers a financial question in three phases:
it explores the question to find sub-topics, iteratively exploits each
sub-topic with focused web searches, then writes and verifies a report.

Runs can execute in-process ("run") or durably on Temporal ("worker" and
"start").`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default ./deepresearch.yaml or $XDG_CONFIG_HOME/deepresearch/config.yaml)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	cmd.AddCommand(newRunCmd(a))
	cmd.AddCommand(newWorkerCmd(a))
	cmd.AddCommand(newStartCmd(a))
	cmd.AddCommand(newReportsCmd(a))
	return cmd
}

func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg

	a.logger, err = newLogger(cfg.Log)
	if err != nil {
		return err
	}
	agents.SetLogger(a.logger)

	return setupTracing(ctx, cfg.Tracing)
}

func newLogger(cfg config.LogConfig) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler), nil
}

func setupTracing(ctx context.Context, cfg config.TracingConfig) error {
	if cfg.Disabled {
		tracing.SetTracingDisabled(true)
		return nil
	}
	if cfg.TraceloopAPIKey == "" {
		return nil
	}
	processor, err := traceloop.NewTracingProcessor(ctx, traceloop.ProcessorParams{
		APIKey:  cfg.TraceloopAPIKey,
		BaseURL: cfg.TraceloopBaseURL,
		Metadata: map[string]any{
			"app": "deepresearch",
		},
		Tags: []string{"financial-deep-research"},
	})
	if err != nil {
		return fmt.Errorf("failed to create Traceloop processor: %w", err)
	}
	tracing.AddTraceProcessor(processor)
	return nil
}

// shutdownTracing flushes pending spans before the process exits.
func shutdownTracing(ctx context.Context) {
	tracing.GetTraceProvider().Shutdown(ctx)
}
