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

func TestExploreInput(t *testing.T) {
	assert.Equal(t, "Query: How is ACME doing?", ExploreInput("How is ACME doing?"))
}

func TestExploitInput(t *testing.T) {
	got := ExploitInput(ExploitRequest{
		Query:            "How is ACME doing?",
		SubTopic:         SubTopic{Name: "Revenue", Description: "Top line growth"},
		Iteration:        1,
		PreviousResearch: "No previous research available.",
	})

	assert.Contains(t, got, "Original Query: How is ACME doing?\n")
	assert.Contains(t, got, "Sub-topic to research: Revenue\n")
	assert.Contains(t, got, "Sub-topic description: Top line growth\n")
	assert.Contains(t, got, "Research iteration: 2\n")
	assert.Contains(t, got, "Previous Research Summary:\nNo previous research available.\n")
}

func TestSearchInput(t *testing.T) {
	got := SearchInput(SearchItem{Query: "ACME 10-Q", Reason: "latest numbers"})
	assert.Equal(t, "Search term: ACME 10-Q\nReason: latest numbers", got)
}

func TestReportInput(t *testing.T) {
	got := ReportInput(ReportRequest{
		Query:         "How is ACME doing?",
		Summaries:     []string{"Iteration 1 Results:", "Iteration 2 Results:"},
		SearchResults: []string{`said "up"`, "flat"},
	})

	assert.Contains(t, got, "Original query: How is ACME doing?\n")
	assert.Contains(t, got, "Research Summary:\nIteration 1 Results:\n\nIteration 2 Results:\n")
	assert.Contains(t, got, "All search results from 2 research iterations:\n[\"said \\\"up\\\"\", \"flat\"]")
}

func TestResultString(t *testing.T) {
	r := Result{
		Summaries: []string{"Iteration 1 Results:"},
		Report: ReportData{
			MarkdownReport:    "# Report",
			FollowUpQuestions: []string{"Q1?", "Q2?"},
		},
		Verification: VerificationResult{Verified: false, Issues: "missing sources"},
	}

	want := "=====RESEARCH SUMMARY=====\n\n" +
		"Research Process:\n\nIteration 1:\nIteration 1 Results:\n" +
		"\n\n=====FINAL REPORT=====\n\n# Report" +
		"\n\n=====FOLLOW UP QUESTIONS=====\n\nQ1?\nQ2?" +
		"\n\n=====VERIFICATION=====\n\nVerified: False\nIssues: missing sources"
	assert.Equal(t, want, r.String())
}

func TestVerificationResultString(t *testing.T) {
	assert.Equal(t, "Verified: True\nIssues: ", VerificationResult{Verified: true}.String())
	assert.Equal(t, "Verified: False\nIssues: thin sourcing", VerificationResult{Issues: "thin sourcing"}.String())
}
