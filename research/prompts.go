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

const ExplorePrompt = "You are a financial deep research orchestrator in EXPLORATION mode. Given a request for financial analysis, " +
	"identify 3-5 high-level sub-topics or themes that need to be researched. Focus on broad areas that would " +
	"provide comprehensive coverage of the topic. Each search should explore a different aspect or angle. " +
	"Output between 3 and 5 search terms that represent major research directions."

const ExploitPrompt = "You are a financial deep research orchestrator in EXPLOITATION mode. Given a specific sub-topic or theme " +
	"that was identified during exploration, create detailed searches to deeply research this specific area. " +
	"You will be provided with previous research findings to help you avoid duplication and build upon existing knowledge. " +
	"Focus on recent news, official filings, analyst commentary, and specific data points that add new value. " +
	"Avoid searches that would duplicate previous findings. Instead, look for gaps, contradictions, or deeper insights. " +
	"Output between 5 and 10 search terms that dive deep into this specific sub-topic while building on previous research."

// Given a search term, use web search to pull back a brief summary.
// Summaries should be concise but capture the main financial points.
const SearchInstructions = "You are a research assistant specializing in financial topics. " +
	"Given a search term, use web search to retrieve up-to-date context and " +
	"produce a short summary of at most 300 words. Focus on key numbers, events, " +
	"or quotes that will be useful to a financial analyst."

const FinancialsPrompt = "You are a financial analyst focused on company fundamentals such as revenue, " +
	"profit, margins and growth trajectory. Given a collection of web (and optional file) " +
	"search results about a company, write a concise analysis of its recent financial " +
	"performance. Pull out key metrics or quotes. Keep it under 2 paragraphs."

const RiskPrompt = "You are a risk analyst looking for potential red flags in a company's outlook. " +
	"Given background research, produce a short analysis of risks such as competitive threats, " +
	"regulatory issues, supply chain problems, or slowing growth. Keep it under 2 paragraphs."

const WriterPrompt = "You are a senior financial analyst. You will be provided with the original query and " +
	"a set of raw search summaries. Your task is to synthesize these into a long-form markdown " +
	"report (at least several paragraphs) including a short executive summary and follow-up " +
	"questions. If needed, you can call the available analysis tools (e.g. fundamentals_analysis, " +
	"risk_analysis) to get short specialist write-ups to incorporate."

// Sanity-checks a synthesized report for consistency and recall.
const VerifierPrompt = "You are a meticulous auditor. You have been handed a financial analysis report. " +
	"Your job is to verify the report is internally consistent, clearly sourced, and makes " +
	"no unsupported claims. Point out any issues or uncertainties."

// ExploitRequest carries what the exploit orchestrator needs to plan one sub-topic.
type ExploitRequest struct {
	Query    string   `json:"query"`
	SubTopic SubTopic `json:"sub_topic"`
	// 0-based iteration index.
	Iteration int `json:"iteration"`
	// Already truncated previous research summary.
	PreviousResearch string `json:"previous_research"`
}

// ReportRequest carries everything the writer synthesizes into the final report.
type ReportRequest struct {
	Query         string   `json:"query"`
	Summaries     []string `json:"summaries"`
	SearchResults []string `json:"search_results"`
}

func ExploreInput(query string) string {
	return "Query: " + query
}

func ExploitInput(req ExploitRequest) string {
	return fmt.Sprintf(`Original Query: %s
Sub-topic to research: %s
Sub-topic description: %s
Research iteration: %d

Previous Research Summary:
%s

Based on the previous research findings, create detailed searches to:
1. Fill any gaps in the current research for this sub-topic
2. Deepen understanding of key findings from previous iterations
3. Explore new angles or recent developments not yet covered
4. Verify or contradict previous findings if needed

Focus on searches that will add new value beyond what has already been researched.`,
		req.Query, req.SubTopic.Name, req.SubTopic.Description, req.Iteration+1, req.PreviousResearch)
}

func SearchInput(item SearchItem) string {
	return fmt.Sprintf("Search term: %s\nReason: %s", item.Query, item.Reason)
}

func ReportInput(req ReportRequest) string {
	quoted := make([]string, len(req.SearchResults))
	for i, r := range req.SearchResults {
		quoted[i] = fmt.Sprintf("%q", r)
	}
	return fmt.Sprintf(`Original query: %s

Research Summary:
%s

All search results from %d research iterations:
[%s]

Please synthesize all this information into a comprehensive financial report.`,
		req.Query, strings.Join(req.Summaries, "\n\n"), len(req.Summaries), strings.Join(quoted, ", "))
}
