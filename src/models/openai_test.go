package models

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spectra-sec/spectra/src/config"
	"github.com/spectra-sec/spectra/src/mcp"
	"github.com/spectra-sec/spectra/src/tools"
)

func openaiTestEngine(t *testing.T, handler http.HandlerFunc, caller ToolCaller) *openaiEngine {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	exec := newTestExecutor(caller, time.Now())
	return newOpenAIEngine(config.Config{
		Provider: config.ProviderOpenAI,
		APIKey:   "test-key",
		Model:    "gpt-4o",
		BaseURL:  srv.URL,
	}, exec)
}

func assistantTurn(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{{
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	}
}

func toolCallTurn(name, arguments string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{{
			"message": map[string]any{
				"role": "assistant",
				"tool_calls": []map[string]any{{
					"id":   "call_1",
					"type": "function",
					"function": map[string]any{
						"name":      name,
						"arguments": arguments,
					},
				}},
			},
			"finish_reason": "tool_calls",
		}},
	}
}

func TestOpenAITerminalAnswer(t *testing.T) {
	engine := openaiTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(assistantTurn("All clear."))
	}, &fakeCaller{})

	out := engine.RunAgentLoop(context.Background(), Request{
		Instructions: "sys",
		Query:        "status?",
	})
	if out.Failed() {
		t.Fatalf("unexpected failure: %v", out.Err)
	}
	if out.Text != "All clear." {
		t.Fatalf("unexpected text %q", out.Text)
	}
	if len(out.ToolsCalled) != 0 {
		t.Fatalf("no tools should have run: %v", out.ToolsCalled)
	}
}

func TestOpenAIToolLoop(t *testing.T) {
	var requests []map[string]any
	caller := &fakeCaller{results: map[string]mcp.Envelope{"list_alerts": textEnvelope("12 open alerts")}}

	engine := openaiTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		requests = append(requests, body)
		if len(requests) == 1 {
			json.NewEncoder(w).Encode(toolCallTurn("list_alerts", `{"first":12}`))
			return
		}
		json.NewEncoder(w).Encode(assistantTurn("Found 12 open alerts."))
	}, caller)

	out := engine.RunAgentLoop(context.Background(), Request{
		Instructions: "sys",
		Query:        "open alerts?",
		Tools:        []tools.Descriptor{{Name: "list_alerts"}},
	})
	if out.Failed() {
		t.Fatalf("unexpected failure: %v", out.Err)
	}
	if out.Text != "Found 12 open alerts." {
		t.Fatalf("unexpected text %q", out.Text)
	}
	if len(out.ToolsCalled) != 1 || out.ToolsCalled[0] != "list_alerts" {
		t.Fatalf("unexpected tools %v", out.ToolsCalled)
	}

	// the second request must carry the tool result back to the model
	if len(requests) != 2 {
		t.Fatalf("expected 2 backend calls, got %d", len(requests))
	}
	messages := requests[1]["messages"].([]any)
	last := messages[len(messages)-1].(map[string]any)
	if last["role"] != "tool" || last["tool_call_id"] != "call_1" {
		t.Fatalf("tool result not threaded: %+v", last)
	}
	if !strings.Contains(last["content"].(string), "12 open alerts") {
		t.Fatalf("tool output missing: %+v", last)
	}
}

func TestOpenAIMaxIterations(t *testing.T) {
	caller := &fakeCaller{results: map[string]mcp.Envelope{"purple_ai": textEnvelope("still looking")}}
	engine := openaiTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(toolCallTurn("purple_ai", `{"question":"more"}`))
	}, caller)

	out := engine.RunAgentLoop(context.Background(), Request{
		Instructions:  "sys",
		Query:         "hunt",
		Tools:         []tools.Descriptor{{Name: "purple_ai"}},
		MaxIterations: 3,
	})
	if out.Failed() {
		t.Fatalf("exhaustion is not a backend failure: %v", out.Err)
	}
	if out.Text != maxIterationsMessage {
		t.Fatalf("unexpected text %q", out.Text)
	}
	if len(caller.calls) != 3 {
		t.Fatalf("expected 3 tool calls before giving up, got %d", len(caller.calls))
	}
}

func TestOpenAIBackendError(t *testing.T) {
	engine := openaiTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"upstream exploded","type":"server_error"}}`))
	}, &fakeCaller{})

	out := engine.RunAgentLoop(context.Background(), Request{Instructions: "sys", Query: "q"})
	if !out.Failed() {
		t.Fatalf("expected failure")
	}
	if out.Err.Provider != "OpenAI" || out.Err.Status != http.StatusInternalServerError {
		t.Fatalf("unexpected error %+v", out.Err)
	}
	if !strings.Contains(out.Text, "OpenAI Error (500)") {
		t.Fatalf("conversational error missing: %q", out.Text)
	}
}

func TestOpenAISimpleCall(t *testing.T) {
	engine := openaiTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if _, hasTools := body["tools"]; hasTools {
			t.Errorf("simple call must not declare tools")
		}
		json.NewEncoder(w).Encode(assistantTurn("alert_triage"))
	}, &fakeCaller{})

	got, err := engine.SimpleCall(context.Background(), "router", "User query: alerts")
	if err != nil {
		t.Fatalf("SimpleCall: %v", err)
	}
	if got != "alert_triage" {
		t.Fatalf("unexpected answer %q", got)
	}
}
