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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortSubTopics(t *testing.T) {
	topics := []SubTopic{
		{Name: "low", Priority: 3},
		{Name: "high-a", Priority: 1},
		{Name: "unset", Priority: 0},
		{Name: "medium", Priority: 2},
		{Name: "high-b", Priority: 1},
	}

	sorted := SortSubTopics(topics)

	var names []string
	for _, topic := range sorted {
		names = append(names, topic.Name)
	}
	assert.Equal(t, []string{"high-a", "unset", "high-b", "medium", "low"}, names)
	assert.Equal(t, "low", topics[0].Name, "input must not be reordered")
}

func TestTruncateSummaries(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "No previous research available.", TruncateSummaries(nil, 2))
	})

	t.Run("within window", func(t *testing.T) {
		got := TruncateSummaries([]string{"first"}, 2)
		assert.Equal(t, "Recent Research Findings:\n\nIteration 1:\nfirst\n", got)
	})

	t.Run("keeps original numbering", func(t *testing.T) {
		got := TruncateSummaries([]string{"first", "second", "third"}, 2)
		assert.Equal(t, "Recent Research Findings:\n\nIteration 2:\nsecond\n\nIteration 3:\nthird\n", got)
	})
}

func TestFormatSummaries(t *testing.T) {
	assert.Equal(t, "No research iterations completed.", FormatSummaries(nil))
	assert.Equal(t,
		"Research Process:\n\nIteration 1:\na\n\nIteration 2:\nb\n",
		FormatSummaries([]string{"a", "b"}))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", Preview("short", 10))
	assert.Equal(t, "exact", Preview("exact", 5))
	assert.Equal(t, "abc...", Preview("abcdef", 3))
	assert.Equal(t, "日本...", Preview("日本語の文", 2))
}

func TestShouldContinue(t *testing.T) {
	results := func(n int) IterationResult {
		return IterationResult{SearchResults: make([]string, n)}
	}
	opts := DefaultOptions()

	testCases := []struct {
		name      string
		result    IterationResult
		iteration int
		want      bool
	}{
		{"first iteration with enough results", results(3), 0, true},
		{"second iteration with enough results", results(5), 1, true},
		{"last allowed iteration", results(10), 2, false},
		{"diminishing returns", results(2), 0, false},
		{"no results", results(0), 1, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ShouldContinue(tc.result, tc.iteration, opts))
		})
	}

	t.Run("eager iterations bound", func(t *testing.T) {
		o := opts
		o.MaxIterations = 10
		o.EagerIterations = 1
		assert.True(t, ShouldContinue(results(3), 0, o))
		assert.False(t, ShouldContinue(results(3), 1, o))
	})
}

func TestOptionsWithDefaults(t *testing.T) {
	assert.Equal(t, DefaultOptions(), Options{MaxDepthPerTopic: -1}.withDefaults())

	o := Options{MaxIterations: 5, MaxDepthPerTopic: 0}.withDefaults()
	assert.Equal(t, 5, o.MaxIterations)
	assert.Equal(t, 0, o.MaxDepthPerTopic, "zero disables the depth cap")
}

func TestDepthTracker(t *testing.T) {
	a := SubTopic{Name: "a"}
	b := SubTopic{Name: "b"}

	d := newDepthTracker(1)
	assert.Equal(t, []SubTopic{a, b}, d.eligible([]SubTopic{a, b}))
	d.visit(a)
	assert.Equal(t, []SubTopic{b}, d.eligible([]SubTopic{a, b}))

	unlimited := newDepthTracker(0)
	unlimited.visit(a)
	unlimited.visit(a)
	assert.Equal(t, []SubTopic{a}, unlimited.eligible([]SubTopic{a}))
}

func TestIterationSummary(t *testing.T) {
	s := newIterationSummary(2, 5)
	s.addTopic("Revenue", []string{"0123456789", "other"})
	s.addTopic("Risks", nil)

	assert.Equal(t,
		"Iteration 2 Results:\n- Revenue: 2 search results\n  Preview: 01234...\n- Risks: 0 search results",
		s.String())
}
