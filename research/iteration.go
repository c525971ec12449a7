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
	"fmt"
	"slices"
	"strings"
)

const (
	noPreviousResearch = "No previous research available."
	noIterations       = "No research iterations completed."
)

// Options bound the exploit loop and the context passed to downstream agents.
type Options struct {
	// Maximum number of exploit iterations. Default: 3.
	MaxIterations int

	// Maximum number of iterations a single sub-topic may be exploited in.
	// Zero, the default, disables the cap. A negative value selects the
	// default.
	MaxDepthPerTopic int

	// How many of the most recent iteration summaries are shown to the
	// exploit orchestrator. Default: 2.
	SummaryWindow int

	// Maximum number of characters of the first search result quoted in an
	// iteration summary. Default: 200.
	PreviewLength int

	// An iteration yielding fewer results than this stops the loop. Default: 3.
	MinNewResults int

	// Iterations with a 0-based index below this value may be followed by
	// another one. Default: 2.
	EagerIterations int
}

// DefaultOptions returns the stock loop limits.
func DefaultOptions() Options {
	return Options{
		MaxIterations:    3,
		MaxDepthPerTopic: 0,
		SummaryWindow:    2,
		PreviewLength:    200,
		MinNewResults:    3,
		EagerIterations:  2,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	o.MaxIterations = cmp.Or(max(o.MaxIterations, 0), d.MaxIterations)
	if o.MaxDepthPerTopic < 0 {
		o.MaxDepthPerTopic = d.MaxDepthPerTopic
	}
	o.SummaryWindow = cmp.Or(max(o.SummaryWindow, 0), d.SummaryWindow)
	o.PreviewLength = cmp.Or(max(o.PreviewLength, 0), d.PreviewLength)
	o.MinNewResults = cmp.Or(max(o.MinNewResults, 0), d.MinNewResults)
	o.EagerIterations = cmp.Or(max(o.EagerIterations, 0), d.EagerIterations)
	return o
}

func effectivePriority(t SubTopic) int {
	if t.Priority <= 0 {
		return 1
	}
	return t.Priority
}

// SortSubTopics returns a copy of topics ordered by ascending priority.
// Topics sharing a priority keep their original relative order.
func SortSubTopics(topics []SubTopic) []SubTopic {
	sorted := slices.Clone(topics)
	slices.SortStableFunc(sorted, func(a, b SubTopic) int {
		return cmp.Compare(effectivePriority(a), effectivePriority(b))
	})
	return sorted
}

// TruncateSummaries renders only the last window summaries, numbered by
// their position in the full history.
func TruncateSummaries(summaries []string, window int) string {
	if len(summaries) == 0 {
		return noPreviousResearch
	}
	start := 0
	if window > 0 && len(summaries) > window {
		start = len(summaries) - window
	}

	var b strings.Builder
	b.WriteString("Recent Research Findings:\n")
	for i, s := range summaries[start:] {
		_, _ = fmt.Fprintf(&b, "\nIteration %d:\n%s\n", start+i+1, s)
	}
	return b.String()
}

// FormatSummaries renders every iteration summary for the final output.
func FormatSummaries(summaries []string) string {
	if len(summaries) == 0 {
		return noIterations
	}
	var b strings.Builder
	b.WriteString("Research Process:\n")
	for i, s := range summaries {
		_, _ = fmt.Fprintf(&b, "\nIteration %d:\n%s\n", i+1, s)
	}
	return b.String()
}

// Preview returns s unchanged if it has at most n runes, otherwise its
// first n runes followed by an ellipsis.
func Preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// ShouldContinue decides whether another iteration follows the given 0-based one.
func ShouldContinue(result IterationResult, iteration int, opts Options) bool {
	opts = opts.withDefaults()
	if iteration >= opts.MaxIterations-1 {
		return false
	}
	// Diminishing returns.
	if len(result.SearchResults) < opts.MinNewResults {
		return false
	}
	return iteration < opts.EagerIterations
}

// depthTracker counts how many iterations each sub-topic was exploited in.
type depthTracker struct {
	limit  int
	depths map[string]int
}

func newDepthTracker(limit int) *depthTracker {
	return &depthTracker{limit: limit, depths: make(map[string]int)}
}

// eligible filters out topics that reached the depth limit.
func (d *depthTracker) eligible(topics []SubTopic) []SubTopic {
	if d.limit <= 0 {
		return topics
	}
	out := make([]SubTopic, 0, len(topics))
	for _, t := range topics {
		if d.depths[t.Name] < d.limit {
			out = append(out, t)
		}
	}
	return out
}

func (d *depthTracker) visit(t SubTopic) {
	d.depths[t.Name]++
}

// iterationSummary accumulates the per-topic lines of an iteration summary.
type iterationSummary struct {
	b             strings.Builder
	previewLength int
}

func newIterationSummary(number, previewLength int) *iterationSummary {
	s := &iterationSummary{previewLength: previewLength}
	_, _ = fmt.Fprintf(&s.b, "Iteration %d Results:", number)
	return s
}

func (s *iterationSummary) addTopic(name string, results []string) {
	_, _ = fmt.Fprintf(&s.b, "\n- %s: %d search results", name, len(results))
	if len(results) > 0 {
		_, _ = fmt.Fprintf(&s.b, "\n  Preview: %s", Preview(results[0], s.previewLength))
	}
}

func (s *iterationSummary) String() string {
	return s.b.String()
}
