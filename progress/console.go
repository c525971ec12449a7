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

package progress

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ConsolePrinter prints research progress as short human-readable lines.
// Runs are told apart by the "run_id" metadata key: each run keeps its own
// counters, and its lines are prefixed with "[run_id] ".
type ConsolePrinter struct {
	mu      sync.Mutex
	w       io.Writer
	verbose bool
	runs    map[string]*consoleRun
}

type consoleRun struct {
	startTime time.Time
	searches  int
	failed    int
}

func NewConsolePrinter(w io.Writer, verbose bool) *ConsolePrinter {
	return &ConsolePrinter{
		w:       w,
		verbose: verbose,
		runs:    make(map[string]*consoleRun),
	}
}

func (p *ConsolePrinter) Publish(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	id, _ := event.Metadata["run_id"].(string)
	prefix := ""
	if id != "" {
		prefix = "[" + id + "] "
	}
	printf := func(format string, args ...any) {
		_, _ = fmt.Fprintf(p.w, prefix+format, args...)
	}

	switch event.Type {
	case ResearchStarted:
		p.run(id).startTime = event.Timestamp
		printf("Starting financial deep research for: %s\n", shorten(fmt.Sprint(event.Payload["query"]), 240))
	case ExploreCompleted:
		printf("Identified %d sub-topics\n", event.Int("sub_topics"))
	case IterationStarted:
		printf("Research iteration %d: %d sub-topics\n", event.Int("iteration"), event.Int("sub_topics"))
	case SubTopicCompleted:
		p.run(id).searches += event.Int("search_results")
		printf("  %s: %d/%d searches returned results\n",
			event.Payload["sub_topic"], event.Int("search_results"), event.Int("searches"))
	case SearchFailed:
		p.run(id).failed++
		if p.verbose {
			printf("  search %q failed: %v\n", event.Payload["query"], event.Payload["error"])
		}
	case IterationCompleted:
		if p.verbose {
			printf("Iteration %d completed with %d results\n", event.Int("iteration"), event.Int("search_results"))
		}
	case ReportWritten:
		printf("Report written\n")
	case VerificationCompleted:
		printf("Verification completed (verified: %v)\n", event.Payload["verified"])
	case ResearchCompleted:
		run := p.run(id)
		delete(p.runs, id)
		printf("---\n")
		printf("Research summary\n")
		printf("  search results: %d\n", run.searches)
		printf("  failed searches: %d\n", run.failed)
		if !run.startTime.IsZero() {
			printf("  runtime: %s\n", event.Timestamp.Sub(run.startTime).Truncate(time.Millisecond))
		}
	case ResearchFailed:
		delete(p.runs, id)
		printf("---\n")
		printf("Research failed: %v\n", event.Payload["error"])
	}
	return nil
}

// run returns the state of the given run, creating it for runs whose start
// event was never seen.
func (p *ConsolePrinter) run(id string) *consoleRun {
	r, ok := p.runs[id]
	if !ok {
		r = &consoleRun{}
		p.runs[id] = r
	}
	return r
}

func shorten(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}
