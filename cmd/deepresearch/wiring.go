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
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/nlpodyssey/deepresearch/config"
	"github.com/nlpodyssey/deepresearch/progress"
	"github.com/nlpodyssey/deepresearch/reportstore"
	"github.com/nlpodyssey/deepresearch/research"
	"github.com/nlpodyssey/openai-agents-go/agents"
)

const defaultQuery = "Write up an analysis of Apple Inc.'s most recent quarter."

// publishers builds the progress fan-out configured for this process.
// Extra publishers (e.g. a metrics collector) are appended as given.
func (a *app) publishers(extra ...progress.Publisher) progress.Publisher {
	var ps progress.Multi
	if a.cfg.Progress.Console {
		ps = append(ps, progress.NewConsolePrinter(os.Stderr, a.logger.Enabled(context.Background(), slog.LevelDebug)))
	}
	if url := a.cfg.Progress.WebhookURL; url != "" {
		ps = append(ps, progress.NewHTTPPublisher(url, nil))
	}
	ps = append(ps, extra...)
	if len(ps) == 0 {
		return progress.Discard
	}
	return ps
}

func (a *app) openStore(ctx context.Context) (reportstore.Store, error) {
	cfg := a.cfg.Store
	if cfg.Driver == "sqlite" && !strings.HasPrefix(cfg.DSN, "file:") {
		if err := os.MkdirAll(filepath.Dir(cfg.DSN), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	store, err := reportstore.Open(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open report store: %w", err)
	}
	return store, nil
}

func (a *app) newManager(publisher progress.Publisher) *research.Manager {
	return research.NewManager(research.ManagerParams{
		Models:            a.cfg.ResearchModels(),
		RunConfig:         agents.RunConfig{},
		Opts:              a.cfg.Options(),
		SearchConcurrency: a.cfg.Research.SearchConcurrency,
		Publisher:         publisher,
		Logger:            a.logger,
	})
}

// saveResult stores a finished run. Storage failures are logged: the report
// has already been printed and should not turn into a failed command.
func (a *app) saveResult(ctx context.Context, id string, result *research.Result) {
	store, err := a.openStore(ctx)
	if err != nil {
		a.logger.Warn("report not saved", "error", err)
		return
	}
	defer func() {
		if err := store.Close(); err != nil {
			a.logger.Warn("failed to close report store", "error", err)
		}
	}()

	err = store.Save(ctx, reportstore.Record{
		ID:        id,
		Query:     result.Query,
		CreatedAt: time.Now(),
		Result:    *result,
	})
	if err != nil {
		a.logger.Warn("report not saved", "id", id, "error", err)
		return
	}
	a.logger.Info("report saved", "id", id)
}

// readQuery joins args into a query, or prompts on r when there are none.
func readQuery(args []string, r io.Reader, w io.Writer) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	_, _ = fmt.Fprint(w, "Enter a financial research query: ")
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("error reading query: %w", err)
	}
	if q := strings.TrimSpace(line); q != "" {
		return q, nil
	}
	return defaultQuery, nil
}

// printResult writes the result text, rendering the markdown report in the
// terminal when render is set.
func printResult(w io.Writer, result *research.Result, render bool) error {
	if !render {
		_, err := fmt.Fprintln(w, result.String())
		return err
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	rendered, err := renderer.Render(result.Report.MarkdownReport)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	var b strings.Builder
	b.WriteString("=====RESEARCH SUMMARY=====\n\n")
	b.WriteString(research.FormatSummaries(result.Summaries))
	b.WriteString("\n\n=====FINAL REPORT=====\n")
	b.WriteString(rendered)
	b.WriteString("\n=====FOLLOW UP QUESTIONS=====\n\n")
	b.WriteString(strings.Join(result.Report.FollowUpQuestions, "\n"))
	b.WriteString("\n\n=====VERIFICATION=====\n\n")
	b.WriteString(result.Verification.String())
	b.WriteString("\n")

	_, err = io.WriteString(w, b.String())
	return err
}

// storeConfigured reports whether results should be persisted.
func storeConfigured(cfg *config.Config) bool {
	return cfg.Store.Driver != "none"
}
