package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/spectra-sec/spectra/src/concurrent"
	"github.com/spectra-sec/spectra/src/models"
	"github.com/spectra-sec/spectra/src/stream"
	"github.com/spectra-sec/spectra/src/tools"
)

const (
	synthesisInputCeiling = 60000

	classifierTemplate = `You are a query router. Given the user's security question, determine which specialist agent(s) should handle it.

Available agents:
%s
- general: Handles queries that don't clearly match any specialist.

ROUTING RULES:
- For simple single-domain questions, return ONE agent name.
- For cross-domain correlation queries (e.g., "risk posture of endpoint X", "correlate alerts with vulnerabilities"), return "correlation".
- For multi-domain questions that need separate answers (e.g., "show alerts and list assets"), return multiple agent names separated by commas.
- When unsure, prefer "correlation" for complex multi-domain queries.

Respond with ONLY the agent name(s), comma-separated if multiple. Examples:
- "alert_triage"
- "threat_hunt"
- "correlation"
- "alert_triage,vulnerability"
- "general"

Nothing else.`
)

// ToolSource provides the discovered tool catalog, typically the MCP client.
type ToolSource interface {
	DiscoverTools(ctx context.Context) []tools.Descriptor
}

// Match is one classifier decision. Recovered marks names that were not an
// exact token in the classifier output but were found embedded in it.
type Match struct {
	Name      string
	Recovered bool
}

// Classification is the routing decision for one query.
type Classification struct {
	Matches []Match
	// Fallback is set when keyword routing decided instead of the LLM.
	Fallback bool
}

// Thought records how the orchestrator arrived at an answer.
type Thought struct {
	Classification string              `json:"classification"`
	Reason         string              `json:"reason"`
	ToolCalls      []models.CallRecord `json:"tool_calls"`
}

// Envelope is the final answer returned for one query.
type Envelope struct {
	QueryID   string   `json:"query_id"`
	Result    string   `json:"result"`
	Agent     string   `json:"agent"`
	ToolsUsed []string `json:"tools_used"`
	Thought   Thought  `json:"thought_process"`
}

// Orchestrator classifies queries, routes them to specialists, and
// synthesizes multi-agent results.
type Orchestrator struct {
	registry *Registry
	engine   models.Engine
	source   ToolSource
	logger   *slog.Logger
	newID    func() string
}

func NewOrchestrator(registry *Registry, engine models.Engine, source ToolSource) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		engine:   engine,
		source:   source,
		logger:   slog.Default(),
		newID:    uuid.NewString,
	}
}

// Classify decides which agent(s) should handle the query. The LLM decides
// when it can; keyword matching decides when the LLM call fails or yields no
// recognizable agent name.
func (o *Orchestrator) Classify(ctx context.Context, query string) Classification {
	prompt := fmt.Sprintf(classifierTemplate, o.registry.RoutingList())
	raw, err := o.engine.SimpleCall(ctx, prompt, "User query: "+query)
	if err != nil {
		o.logger.Warn("LLM classification failed, using keyword routing", "error", err)
		return Classification{Matches: []Match{{Name: KeywordClassify(query)}}, Fallback: true}
	}

	matches := o.parseClassification(raw)
	if len(matches) == 0 {
		o.logger.Warn("classifier returned no usable agent names", "raw", raw)
		return Classification{Matches: []Match{{Name: KeywordClassify(query)}}, Fallback: true}
	}
	o.logger.Info("LLM classified query", "agents", matchNames(matches))
	return Classification{Matches: matches}
}

// parseClassification validates comma-separated agent names from the
// classifier. Unknown tokens are searched for an embedded known name before
// being dropped.
func (o *Orchestrator) parseClassification(raw string) []Match {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	cleaned = strings.Trim(cleaned, `"'`)

	var matches []Match
	seen := make(map[string]struct{})
	add := func(name string, recovered bool) {
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		matches = append(matches, Match{Name: name, Recovered: recovered})
	}

	for _, token := range strings.Split(cleaned, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if token == GeneralAgentName {
			add(GeneralAgentName, false)
			continue
		}
		if _, ok := o.registry.Get(token); ok {
			add(token, false)
			continue
		}
		for _, name := range o.registry.Names() {
			if strings.Contains(token, name) {
				add(name, true)
				break
			}
		}
	}
	return matches
}

// Process answers one query without progress streaming.
func (o *Orchestrator) Process(ctx context.Context, query string, history []models.Turn) Envelope {
	return o.run(ctx, query, history, nil)
}

// ProcessStream answers one query, emitting progress events on st. The stream
// is closed with a terminal result event before returning.
func (o *Orchestrator) ProcessStream(ctx context.Context, query string, history []models.Turn, st *stream.Stream) Envelope {
	env := o.run(ctx, query, history, st)
	st.Result("success", env)
	return env
}

func (o *Orchestrator) run(ctx context.Context, query string, history []models.Turn, st *stream.Stream) Envelope {
	catalog := o.source.DiscoverTools(ctx)
	o.logger.Info("orchestrator processing query", "tools", len(catalog))

	cls := o.Classify(ctx, query)

	var specialists []Spec
	for _, m := range cls.Matches {
		if m.Name == GeneralAgentName {
			continue
		}
		if spec, ok := o.registry.Get(m.Name); ok {
			specialists = append(specialists, spec)
		}
	}

	if len(specialists) == 0 {
		return o.runGeneral(ctx, query, history, catalog, st,
			GeneralAgentName, "No specialist agent matched")
	}

	if len(specialists) == 1 {
		spec := specialists[0]
		o.logger.Info("routing to specialist", "agent", spec.Name)
		st.AgentStart(spec.Name)
		res := Run(ctx, spec, query, history, o.engine, catalog, observerFor(st, spec.Name))
		st.AgentComplete(spec.Name)

		if res.Failed {
			o.logger.Warn("specialist failed, falling back to general", "agent", spec.Name)
			return o.runGeneral(ctx, query, history, catalog, st,
				fmt.Sprintf("%s (fallback to general)", spec.Name),
				fmt.Sprintf("%s agent returned an error", spec.Name))
		}
		return Envelope{
			QueryID:   o.newID(),
			Result:    res.Content,
			Agent:     res.AgentName,
			ToolsUsed: res.ToolsCalled,
			Thought: Thought{
				Classification: res.AgentName,
				Reason:         fmt.Sprintf("Routed to %s specialist", res.AgentName),
				ToolCalls:      res.Calls,
			},
		}
	}

	return o.runFanOut(ctx, query, history, catalog, st, specialists)
}

func (o *Orchestrator) runFanOut(ctx context.Context, query string, history []models.Turn, catalog []tools.Descriptor, st *stream.Stream, specialists []Spec) Envelope {
	names := specNames(specialists)
	o.logger.Info("multi-agent routing", "agents", names)

	results := concurrent.FanOut(ctx, specialists, func(ctx context.Context, spec Spec) Result {
		st.AgentStart(spec.Name)
		res := Run(ctx, spec, query, history, o.engine, catalog, observerFor(st, spec.Name))
		st.AgentComplete(spec.Name)
		return res
	})

	var succeeded []Result
	for _, res := range results {
		if res.Failed {
			o.logger.Warn("agent failed in fan-out", "agent", res.AgentName)
			continue
		}
		succeeded = append(succeeded, res)
	}

	if len(succeeded) == 0 {
		return o.runGeneral(ctx, query, history, catalog, st,
			fmt.Sprintf("%s (all failed, fallback to general)", strings.Join(names, ", ")),
			"All specialist agents failed")
	}

	if len(succeeded) == 1 {
		res := succeeded[0]
		return Envelope{
			QueryID:   o.newID(),
			Result:    res.Content,
			Agent:     res.AgentName,
			ToolsUsed: res.ToolsCalled,
			Thought: Thought{
				Classification: res.AgentName,
				Reason:         fmt.Sprintf("Multi-agent routing (%s), one succeeded", strings.Join(names, ", ")),
				ToolCalls:      res.Calls,
			},
		}
	}

	var labels []string
	var toolsUsed []string
	var calls []models.CallRecord
	seen := make(map[string]struct{})
	for _, res := range succeeded {
		labels = append(labels, res.AgentName)
		for _, t := range res.ToolsCalled {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			toolsUsed = append(toolsUsed, t)
		}
		calls = append(calls, res.Calls...)
	}

	label := strings.Join(labels, " + ")
	return Envelope{
		QueryID:   o.newID(),
		Result:    o.synthesize(ctx, query, succeeded),
		Agent:     label,
		ToolsUsed: toolsUsed,
		Thought: Thought{
			Classification: label,
			Reason:         fmt.Sprintf("Parallel execution of %d agents, then synthesis", len(labels)),
			ToolCalls:      calls,
		},
	}
}

// synthesize merges findings from several agents into one report. When the
// synthesis call itself fails, the findings are concatenated instead of lost.
func (o *Orchestrator) synthesize(ctx context.Context, query string, results []Result) string {
	sections := make([]string, 0, len(results))
	for _, res := range results {
		sections = append(sections, fmt.Sprintf("=== %s AGENT FINDINGS ===\n%s",
			strings.ToUpper(res.AgentName), res.Content))
	}
	combined := strings.Join(sections, "\n\n")
	if len(combined) > synthesisInputCeiling {
		combined = clampRunes(combined, synthesisInputCeiling) + "\n\n... [truncated]"
	}

	prompt := fmt.Sprintf("User Query: %s\n\nAgent Findings:\n%s\n\nSynthesize these findings into a single comprehensive response.",
		query, combined)
	answer, err := o.engine.SimpleCall(ctx, synthesisInstructions, prompt)
	if err != nil {
		o.logger.Error("synthesis failed, concatenating findings", "error", err)
		contents := make([]string, 0, len(results))
		for _, res := range results {
			contents = append(contents, res.Content)
		}
		return strings.Join(contents, "\n\n---\n\n")
	}
	return answer
}

func (o *Orchestrator) runGeneral(ctx context.Context, query string, history []models.Turn, catalog []tools.Descriptor, st *stream.Stream, classification, reason string) Envelope {
	o.logger.Info("running general agent", "tools", len(catalog))
	spec := Spec{
		Name:         GeneralAgentName,
		Instructions: generalInstructions,
	}
	toolNames := make([]string, 0, len(catalog))
	for _, d := range catalog {
		toolNames = append(toolNames, d.Name)
	}
	spec.ToolNames = toolNames

	st.AgentStart(GeneralAgentName)
	res := Run(ctx, spec, query, history, o.engine, catalog, observerFor(st, GeneralAgentName))
	st.AgentComplete(GeneralAgentName)

	return Envelope{
		QueryID:   o.newID(),
		Result:    res.Content,
		Agent:     GeneralAgentName,
		ToolsUsed: res.ToolsCalled,
		Thought: Thought{
			Classification: classification,
			Reason:         reason,
			ToolCalls:      res.Calls,
		},
	}
}

// clampRunes cuts s to at most limit bytes without splitting a rune.
func clampRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

func specNames(specs []Spec) []string {
	out := make([]string, 0, len(specs))
	for _, s := range specs {
		out = append(out, s.Name)
	}
	return out
}

func matchNames(matches []Match) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Name)
	}
	return out
}

// streamObserver forwards tool progress to the event stream. A nil stream
// drops everything, so non-streaming runs share the same path.
type streamObserver struct {
	st    *stream.Stream
	agent string
}

func observerFor(st *stream.Stream, agent string) models.ToolObserver {
	return streamObserver{st: st, agent: agent}
}

func (o streamObserver) OnToolCall(tool string)   { o.st.ToolCall(o.agent, tool) }
func (o streamObserver) OnToolResult(tool string) { o.st.ToolResult(o.agent, tool) }
