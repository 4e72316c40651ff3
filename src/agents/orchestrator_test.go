package agents

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spectra-sec/spectra/src/models"
	"github.com/spectra-sec/spectra/src/stream"
	"github.com/spectra-sec/spectra/src/tools"
)

// fakeEngine scripts the classifier, the per-agent loop, and synthesis. The
// two SimpleCall uses are told apart by their system prompts.
type fakeEngine struct {
	classifyReply string
	classifyErr   error
	synthReply    string
	synthErr      error
	loop          func(req models.Request) models.Outcome

	mu          sync.Mutex
	synthPrompt string
}

func (f *fakeEngine) RunAgentLoop(_ context.Context, req models.Request) models.Outcome {
	if f.loop != nil {
		return f.loop(req)
	}
	return models.Outcome{Text: "ok"}
}

func (f *fakeEngine) SimpleCall(_ context.Context, system, user string) (string, error) {
	if strings.Contains(system, "query router") {
		return f.classifyReply, f.classifyErr
	}
	f.mu.Lock()
	f.synthPrompt = user
	f.mu.Unlock()
	return f.synthReply, f.synthErr
}

type fakeSource struct {
	catalog []tools.Descriptor
}

func (f fakeSource) DiscoverTools(context.Context) []tools.Descriptor {
	return f.catalog
}

func fullCatalog() []tools.Descriptor {
	names := []string{
		"purple_ai", "powerquery", "get_timestamp_range", "iso_to_unix_timestamp",
		"get_alert", "list_alerts", "search_alerts", "get_alert_notes", "get_alert_history",
		"get_vulnerability", "list_vulnerabilities", "search_vulnerabilities",
		"get_vulnerability_notes", "get_vulnerability_history",
		"get_misconfiguration", "list_misconfigurations", "search_misconfigurations",
		"get_misconfiguration_notes", "get_misconfiguration_history",
		"get_inventory_item", "list_inventory_items", "search_inventory_items",
	}
	catalog := make([]tools.Descriptor, 0, len(names))
	for _, n := range names {
		catalog = append(catalog, tools.Descriptor{Name: n})
	}
	return catalog
}

func newTestOrchestrator(engine models.Engine, catalog []tools.Descriptor) *Orchestrator {
	o := NewOrchestrator(NewRegistry(), engine, fakeSource{catalog: catalog})
	o.newID = func() string { return "qid-1" }
	return o
}

func TestKeywordClassify(t *testing.T) {
	cases := map[string]string{
		"show critical alerts":                  "alert_triage",
		"correlate alerts with vulnerabilities": "correlation",
		"hunt for lateral movement":             "threat_hunt",
		"list open CVEs":                        "vulnerability",
		"aws iam issues":                        "posture",
		"find all windows servers":              "asset_intel",
		"how are you today":                     GeneralAgentName,
	}
	for query, want := range cases {
		assert.Equal(t, want, KeywordClassify(query), "query %q", query)
	}
}

func TestClassifyParsesCommaSeparatedNames(t *testing.T) {
	engine := &fakeEngine{classifyReply: `"alert_triage, vulnerability"`}
	o := newTestOrchestrator(engine, fullCatalog())

	cls := o.Classify(context.Background(), "alerts and cves")
	require.Len(t, cls.Matches, 2)
	assert.False(t, cls.Fallback)
	assert.Equal(t, Match{Name: "alert_triage"}, cls.Matches[0])
	assert.Equal(t, Match{Name: "vulnerability"}, cls.Matches[1])
}

func TestClassifyRecoversEmbeddedName(t *testing.T) {
	engine := &fakeEngine{classifyReply: "I would route this to alert_triage."}
	o := newTestOrchestrator(engine, fullCatalog())

	cls := o.Classify(context.Background(), "alerts")
	require.Len(t, cls.Matches, 1)
	assert.Equal(t, Match{Name: "alert_triage", Recovered: true}, cls.Matches[0])
}

func TestClassifyFallsBackOnError(t *testing.T) {
	engine := &fakeEngine{classifyErr: errors.New("LLM not configured")}
	o := newTestOrchestrator(engine, fullCatalog())

	cls := o.Classify(context.Background(), "show critical alerts")
	require.Len(t, cls.Matches, 1)
	assert.True(t, cls.Fallback)
	assert.Equal(t, "alert_triage", cls.Matches[0].Name)
}

func TestClassifyFallsBackOnGarbage(t *testing.T) {
	engine := &fakeEngine{classifyReply: "quantum_defense_unit"}
	o := newTestOrchestrator(engine, fullCatalog())

	cls := o.Classify(context.Background(), "correlate alerts with vulnerabilities")
	require.True(t, cls.Fallback)
	assert.Equal(t, "correlation", cls.Matches[0].Name)
}

func TestProcessSingleSpecialist(t *testing.T) {
	engine := &fakeEngine{
		classifyReply: "alert_triage",
		loop: func(req models.Request) models.Outcome {
			return models.Outcome{Text: "12 critical alerts", ToolsCalled: []string{"list_alerts"},
				Calls: []models.CallRecord{{Tool: "list_alerts"}}}
		},
	}
	o := newTestOrchestrator(engine, fullCatalog())

	env := o.Process(context.Background(), "show critical alerts", nil)
	assert.Equal(t, "qid-1", env.QueryID)
	assert.Equal(t, "alert_triage", env.Agent)
	assert.Equal(t, "12 critical alerts", env.Result)
	assert.Equal(t, []string{"list_alerts"}, env.ToolsUsed)
	assert.Equal(t, "alert_triage", env.Thought.Classification)
	assert.Equal(t, "Routed to alert_triage specialist", env.Thought.Reason)
	require.Len(t, env.Thought.ToolCalls, 1)
}

func TestProcessGeneralWhenNoSpecialistMatches(t *testing.T) {
	engine := &fakeEngine{
		classifyReply: "general",
		loop: func(req models.Request) models.Outcome {
			// the general agent must see the full catalog
			if len(req.Tools) != len(fullCatalog()) {
				return models.Outcome{Err: &models.BackendError{Provider: "test", Detail: "wrong catalog"}}
			}
			return models.Outcome{Text: "general answer"}
		},
	}
	o := newTestOrchestrator(engine, fullCatalog())

	env := o.Process(context.Background(), "hello", nil)
	assert.Equal(t, GeneralAgentName, env.Agent)
	assert.Equal(t, "general answer", env.Result)
	assert.Equal(t, GeneralAgentName, env.Thought.Classification)
	assert.Equal(t, "No specialist agent matched", env.Thought.Reason)
}

func TestProcessSpecialistFailureFallsBackToGeneral(t *testing.T) {
	engine := &fakeEngine{classifyReply: "alert_triage"}
	engine.loop = func(req models.Request) models.Outcome {
		if strings.Contains(req.Instructions, "Alert Triage") {
			return models.Outcome{
				Text: "OpenAI Error (500): boom",
				Err:  &models.BackendError{Provider: "OpenAI", Status: 500, Detail: "boom"},
			}
		}
		return models.Outcome{Text: "general saved it"}
	}
	o := newTestOrchestrator(engine, fullCatalog())

	env := o.Process(context.Background(), "show critical alerts", nil)
	assert.Equal(t, GeneralAgentName, env.Agent)
	assert.Equal(t, "general saved it", env.Result)
	assert.Equal(t, "alert_triage (fallback to general)", env.Thought.Classification)
	assert.Equal(t, "alert_triage agent returned an error", env.Thought.Reason)
}

func TestProcessEmptyToolIntersectionFails(t *testing.T) {
	engine := &fakeEngine{classifyReply: "alert_triage"}
	engine.loop = func(req models.Request) models.Outcome {
		return models.Outcome{Text: "general answer"}
	}
	// catalog has no alert tools, so the specialist fails before the loop
	o := newTestOrchestrator(engine, []tools.Descriptor{{Name: "purple_ai"}})

	env := o.Process(context.Background(), "show critical alerts", nil)
	assert.Equal(t, GeneralAgentName, env.Agent)
	assert.Equal(t, "alert_triage (fallback to general)", env.Thought.Classification)
}

func TestProcessMultiAgentSynthesis(t *testing.T) {
	engine := &fakeEngine{
		classifyReply: "alert_triage,vulnerability",
		synthReply:    "unified report",
	}
	engine.loop = func(req models.Request) models.Outcome {
		if strings.Contains(req.Instructions, "Alert Triage") {
			return models.Outcome{Text: "alert findings", ToolsCalled: []string{"list_alerts", "purple_ai"}}
		}
		return models.Outcome{Text: "vuln findings", ToolsCalled: []string{"list_vulnerabilities", "purple_ai"}}
	}
	o := newTestOrchestrator(engine, fullCatalog())

	env := o.Process(context.Background(), "alerts and cves", nil)
	assert.Equal(t, "alert_triage + vulnerability", env.Agent)
	assert.Equal(t, "unified report", env.Result)
	// union keeps first-seen order and drops duplicates
	assert.Equal(t, []string{"list_alerts", "purple_ai", "list_vulnerabilities"}, env.ToolsUsed)
	assert.Equal(t, "Parallel execution of 2 agents, then synthesis", env.Thought.Reason)

	engine.mu.Lock()
	prompt := engine.synthPrompt
	engine.mu.Unlock()
	assert.Contains(t, prompt, "=== ALERT_TRIAGE AGENT FINDINGS ===")
	assert.Contains(t, prompt, "=== VULNERABILITY AGENT FINDINGS ===")
	assert.Contains(t, prompt, "User Query: alerts and cves")
}

func TestProcessMultiAgentSingleSurvivorVerbatim(t *testing.T) {
	engine := &fakeEngine{classifyReply: "alert_triage,vulnerability"}
	engine.loop = func(req models.Request) models.Outcome {
		if strings.Contains(req.Instructions, "Alert Triage") {
			return models.Outcome{Err: &models.BackendError{Provider: "OpenAI", Detail: "down"}}
		}
		return models.Outcome{Text: "vuln findings", ToolsCalled: []string{"list_vulnerabilities"}}
	}
	o := newTestOrchestrator(engine, fullCatalog())

	env := o.Process(context.Background(), "alerts and cves", nil)
	assert.Equal(t, "vulnerability", env.Agent)
	assert.Equal(t, "vuln findings", env.Result)
	assert.Equal(t, "Multi-agent routing (alert_triage, vulnerability), one succeeded", env.Thought.Reason)
}

func TestProcessMultiAgentAllFailedFallsBackToGeneral(t *testing.T) {
	engine := &fakeEngine{classifyReply: "alert_triage,vulnerability"}
	engine.loop = func(req models.Request) models.Outcome {
		if strings.Contains(req.Instructions, "SOC (Security Operations Center) analyst assistant") {
			return models.Outcome{Text: "general answer"}
		}
		return models.Outcome{Err: &models.BackendError{Provider: "OpenAI", Detail: "down"}}
	}
	o := newTestOrchestrator(engine, fullCatalog())

	env := o.Process(context.Background(), "alerts and cves", nil)
	assert.Equal(t, GeneralAgentName, env.Agent)
	assert.Equal(t, "alert_triage, vulnerability (all failed, fallback to general)", env.Thought.Classification)
	assert.Equal(t, "All specialist agents failed", env.Thought.Reason)
}

func TestSynthesisFailureConcatenates(t *testing.T) {
	engine := &fakeEngine{
		classifyReply: "alert_triage,vulnerability",
		synthErr:      errors.New("synthesis down"),
	}
	engine.loop = func(req models.Request) models.Outcome {
		if strings.Contains(req.Instructions, "Alert Triage") {
			return models.Outcome{Text: "alert findings"}
		}
		return models.Outcome{Text: "vuln findings"}
	}
	o := newTestOrchestrator(engine, fullCatalog())

	env := o.Process(context.Background(), "alerts and cves", nil)
	assert.Equal(t, "alert findings\n\n---\n\nvuln findings", env.Result)
}

func TestProcessStreamEmitsLifecycleEvents(t *testing.T) {
	engine := &fakeEngine{
		classifyReply: "alert_triage",
		loop: func(req models.Request) models.Outcome {
			if req.Observer != nil {
				req.Observer.OnToolCall("list_alerts")
				req.Observer.OnToolResult("list_alerts")
			}
			return models.Outcome{Text: "done"}
		},
	}
	o := newTestOrchestrator(engine, fullCatalog())

	st := stream.New()
	go o.ProcessStream(context.Background(), "show critical alerts", nil, st)

	var types []string
	for event := range st.Events() {
		types = append(types, event.Type)
	}
	assert.Equal(t, []string{"agent_start", "tool_call", "tool_result", "agent_complete", "result"}, types)
}

func TestRegistryOrderAndRoutingList(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{
		"alert_triage", "threat_hunt", "vulnerability", "asset_intel", "posture", "correlation",
	}, r.Names())

	list := r.RoutingList()
	assert.True(t, strings.HasPrefix(list, "- alert_triage: "))
	assert.Contains(t, list, "- correlation: ")

	spec, ok := r.Get("CORRELATION")
	require.True(t, ok)
	assert.Len(t, spec.ToolNames, 22)
}

func TestClampRunesNeverSplitsARune(t *testing.T) {
	assert.Equal(t, "a", clampRunes("aé", 2))
	assert.Equal(t, "世", clampRunes("世界", 4))
	assert.Equal(t, "abc", clampRunes("abc", 10))
	assert.Equal(t, "", clampRunes("é", 1))
}
