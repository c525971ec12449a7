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
	"context"
	"fmt"

	"github.com/nlpodyssey/openai-agents-go/agents"
	"github.com/nlpodyssey/openai-agents-go/modelsettings"
)

// Models selects the model name for each agent role.
// Empty fields fall back to DefaultModels.
type Models struct {
	Orchestrator string
	Search       string
	Analyst      string
	Writer       string
	Verifier     string
}

func DefaultModels() Models {
	return Models{
		Orchestrator: "o3-mini",
		Search:       "gpt-4o",
		Analyst:      "gpt-4o",
		Writer:       "gpt-4.1",
		Verifier:     "gpt-4o",
	}
}

func (m Models) withDefaults() Models {
	d := DefaultModels()
	return Models{
		Orchestrator: cmp.Or(m.Orchestrator, d.Orchestrator),
		Search:       cmp.Or(m.Search, d.Search),
		Analyst:      cmp.Or(m.Analyst, d.Analyst),
		Writer:       cmp.Or(m.Writer, d.Writer),
		Verifier:     cmp.Or(m.Verifier, d.Verifier),
	}
}

// Agents is the full cast of a research run.
type Agents struct {
	ExploreOrchestrator *agents.Agent
	ExploitOrchestrator *agents.Agent
	Search              *agents.Agent
	Financials          *agents.Agent
	Risk                *agents.Agent
	Writer              *agents.Agent
	Verifier            *agents.Agent
}

// NewOrchestratorAgent creates an orchestrator agent for the given mode.
func NewOrchestratorAgent(mode ResearchMode, model string) *agents.Agent {
	a := agents.New(fmt.Sprintf("FinancialOrchestratorAgent_%s", mode)).WithModel(model)
	if mode == ModeExplore {
		return a.WithInstructions(ExplorePrompt).WithOutputType(agents.OutputType[ExplorationPlan]())
	}
	return a.WithInstructions(ExploitPrompt).WithOutputType(agents.OutputType[SearchPlan]())
}

func NewSearchAgent(model string) *agents.Agent {
	return agents.New("FinancialSearchAgent").
		WithInstructions(SearchInstructions).
		WithTools(agents.WebSearchTool{}).
		WithModelSettings(modelsettings.ModelSettings{
			ToolChoice: modelsettings.ToolChoiceRequired,
		}).
		WithModel(model)
}

// A sub-agent focused on analyzing a company's fundamentals.
func NewFinancialsAgent(model string) *agents.Agent {
	return agents.New("FundamentalsAnalystAgent").
		WithInstructions(FinancialsPrompt).
		WithOutputType(agents.OutputType[AnalysisSummary]()).
		WithModel(model)
}

func NewRiskAgent(model string) *agents.Agent {
	return agents.New("RiskAnalystAgent").
		WithInstructions(RiskPrompt).
		WithOutputType(agents.OutputType[AnalysisSummary]()).
		WithModel(model)
}

// NewWriterAgent returns the writer without tools: the analyst tools are
// attached per run by WriterWithAnalysts.
func NewWriterAgent(model string) *agents.Agent {
	return agents.New("FinancialWriterAgent").
		WithInstructions(WriterPrompt).
		WithOutputType(agents.OutputType[ReportData]()).
		WithModel(model)
}

func NewVerifierAgent(model string) *agents.Agent {
	return agents.New("VerificationAgent").
		WithInstructions(VerifierPrompt).
		WithOutputType(agents.OutputType[VerificationResult]()).
		WithModel(model)
}

// NewAgents builds every agent of a research run.
func NewAgents(models Models) Agents {
	models = models.withDefaults()
	return Agents{
		ExploreOrchestrator: NewOrchestratorAgent(ModeExplore, models.Orchestrator),
		ExploitOrchestrator: NewOrchestratorAgent(ModeExploit, models.Orchestrator),
		Search:              NewSearchAgent(models.Search),
		Financials:          NewFinancialsAgent(models.Analyst),
		Risk:                NewRiskAgent(models.Analyst),
		Writer:              NewWriterAgent(models.Writer),
		Verifier:            NewVerifierAgent(models.Verifier),
	}
}

// summaryExtractor makes an analyst tool return just its summary text, so
// the writer can drop it inline.
func summaryExtractor(_ context.Context, runResult agents.RunResult) (string, error) {
	summary, ok := runResult.FinalOutput.(AnalysisSummary)
	if !ok {
		return "", fmt.Errorf("unexpected analyst output type %T", runResult.FinalOutput)
	}
	return summary.Summary, nil
}

// WriterWithAnalysts clones the writer and exposes the specialist analysts
// to it as tools. The shared writer definition is left untouched.
func (a Agents) WriterWithAnalysts() *agents.Agent {
	fundamentalsTool := a.Financials.AsTool(agents.AgentAsToolParams{
		ToolName:              "fundamentals_analysis",
		ToolDescription:       "Use to get a short write-up of key financial metrics",
		CustomOutputExtractor: summaryExtractor,
	})
	riskTool := a.Risk.AsTool(agents.AgentAsToolParams{
		ToolName:              "risk_analysis",
		ToolDescription:       "Use to get a short write-up of potential red flags",
		CustomOutputExtractor: summaryExtractor,
	})

	writer := new(agents.Agent)
	*writer = *a.Writer
	writer.Tools = []agents.Tool{fundamentalsTool, riskTool}
	return writer
}
