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
	"fmt"
	"strings"
)

// ResearchMode tells an orchestrator agent which half of the loop it serves.
type ResearchMode string

const (
	ModeExplore ResearchMode = "explore"
	ModeExploit ResearchMode = "exploit"
)

// SubTopic is a research direction identified during exploration.
type SubTopic struct {
	Name        string `json:"name" jsonschema_description:"The name/title of the sub-topic."`
	Description string `json:"description" jsonschema_description:"Brief description of what this sub-topic covers."`
	Priority    int    `json:"priority" jsonschema_description:"Priority level (1=high, 2=medium, 3=low)."`
}

// ExplorationPlan is the output of the explore orchestrator.
type ExplorationPlan struct {
	SubTopics []SubTopic   `json:"sub_topics" jsonschema_description:"List of sub-topics to research in detail."`
	Mode      ResearchMode `json:"mode" jsonschema:"enum=explore,enum=exploit" jsonschema_description:"The research mode used to generate this plan."`
}

type SearchItem struct {
	Reason   string `json:"reason" jsonschema_description:"Your reasoning for why this search is relevant."`
	Query    string `json:"query" jsonschema_description:"The search term to feed into a web (or file) search."`
	Priority int    `json:"priority" jsonschema_description:"Priority level for this search (1=high, 2=medium, 3=low)."`
}

// SearchPlan is the output of the exploit orchestrator for a single sub-topic.
// SubTopic is always overwritten with the name of the topic the plan was made for.
type SearchPlan struct {
	Searches []SearchItem `json:"searches" jsonschema_description:"A list of searches to perform."`
	Mode     ResearchMode `json:"mode" jsonschema:"enum=explore,enum=exploit" jsonschema_description:"The research mode used to generate this plan."`
	SubTopic string       `json:"sub_topic" jsonschema_description:"The specific sub-topic being researched."`
}

type AnalysisSummary struct {
	Summary string `json:"summary" jsonschema_description:"Short text summary for this aspect of the analysis."`
}

type ReportData struct {
	ShortSummary      string   `json:"short_summary" jsonschema_description:"A short 2-3 sentence executive summary."`
	MarkdownReport    string   `json:"markdown_report" jsonschema_description:"The full markdown report."`
	FollowUpQuestions []string `json:"follow_up_questions" jsonschema_description:"Suggested follow-up questions for further research."`
}

type VerificationResult struct {
	Verified bool   `json:"verified" jsonschema_description:"Whether the report seems coherent and plausible."`
	Issues   string `json:"issues" jsonschema_description:"If not verified, describe the main issues or concerns."`
}

// String renders the verification section body, with the flag spelled
// True or False.
func (v VerificationResult) String() string {
	verified := "False"
	if v.Verified {
		verified = "True"
	}
	return fmt.Sprintf("Verified: %s\nIssues: %s", verified, v.Issues)
}

// IterationResult collects what one exploit iteration produced.
type IterationResult struct {
	// 1-based iteration number.
	Number        int      `json:"number"`
	SearchResults []string `json:"search_results"`
	Summary       string   `json:"summary"`
}

// Result is the outcome of a complete research run.
type Result struct {
	Query         string             `json:"query"`
	Summaries     []string           `json:"summaries"`
	SearchResults []string           `json:"search_results"`
	Report        ReportData         `json:"report"`
	Verification  VerificationResult `json:"verification"`
}

// String renders the result in the four-section plain text layout.
func (r Result) String() string {
	var b strings.Builder
	b.WriteString("=====RESEARCH SUMMARY=====\n\n")
	b.WriteString(FormatSummaries(r.Summaries))
	b.WriteString("\n\n=====FINAL REPORT=====\n\n")
	b.WriteString(r.Report.MarkdownReport)
	b.WriteString("\n\n=====FOLLOW UP QUESTIONS=====\n\n")
	b.WriteString(strings.Join(r.Report.FollowUpQuestions, "\n"))
	b.WriteString("\n\n=====VERIFICATION=====\n\n")
	b.WriteString(r.Verification.String())
	return b.String()
}
