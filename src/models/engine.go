// Package models implements the provider tool-calling engines: the bounded
// agent loop that alternates between the LLM backend and the MCP tool
// executor, rendered onto each provider's wire protocol.
package models

import (
	"context"
	"fmt"

	"github.com/spectra-sec/spectra/src/config"
	"github.com/spectra-sec/spectra/src/tools"
)

const (
	// DefaultMaxIterations bounds the backend round trips for one request.
	DefaultMaxIterations = 10

	maxIterationsMessage = "Max iterations reached. Please try a more specific query."
	notConfiguredMessage = "LLM not configured. Set an API key to enable analysis."

	defaultMaxTokens = 4096
)

// Turn is one prior conversation exchange supplied as context.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Request describes one agent-loop run.
type Request struct {
	Instructions  string
	Query         string
	Tools         []tools.Descriptor
	History       []Turn
	MaxIterations int
	Observer      ToolObserver
}

func (r Request) maxIterations() int {
	if r.MaxIterations > 0 {
		return r.MaxIterations
	}
	return DefaultMaxIterations
}

// ToolObserver receives progress notifications as tools run. Implementations
// must tolerate concurrent calls.
type ToolObserver interface {
	OnToolCall(tool string)
	OnToolResult(tool string)
}

// BackendError carries a structured backend failure: the provider that raised
// it, the HTTP status when one exists, and the provider's message.
type BackendError struct {
	Provider string
	Status   int
	Detail   string
}

func (e *BackendError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s error (%d): %s", e.Provider, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s error: %s", e.Provider, e.Detail)
}

// conversational renders the error the way it is surfaced in agent output.
func (e *BackendError) conversational() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s Error (%d): %s", e.Provider, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s Error: %s", e.Provider, e.Detail)
}

// Outcome is the result of one agent-loop run. Err is set when the backend
// itself failed; tool failures are reported to the model inside the loop and
// never fail the run.
type Outcome struct {
	Text        string
	ToolsCalled []string
	Calls       []CallRecord
	Err         *BackendError
}

// Failed reports whether the backend failed.
func (o Outcome) Failed() bool { return o.Err != nil }

// Engine runs LLM requests for one configured provider.
type Engine interface {
	// RunAgentLoop alternates between the backend and the tool executor
	// until the backend answers without tool calls or the iteration bound
	// is hit.
	RunAgentLoop(ctx context.Context, req Request) Outcome

	// SimpleCall sends a single prompt with no tools and returns the text.
	SimpleCall(ctx context.Context, system, user string) (string, error)
}

// NewEngine builds the engine for the configured provider. A missing API key
// yields an engine that answers every request with a fixed not-configured
// message instead of erroring at startup.
func NewEngine(ctx context.Context, cfg config.Config, exec *Executor) (Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		return notConfigured{}, nil
	}
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return newAnthropicEngine(cfg, exec), nil
	case config.ProviderGemini:
		return newGeminiEngine(ctx, cfg, exec)
	default:
		return newOpenAIEngine(cfg, exec), nil
	}
}

// notConfigured stands in when no API key is present. Agent runs get a fixed
// message; SimpleCall errors so classification falls back to keywords.
type notConfigured struct{}

func (notConfigured) RunAgentLoop(context.Context, Request) Outcome {
	return Outcome{Text: notConfiguredMessage}
}

func (notConfigured) SimpleCall(context.Context, string, string) (string, error) {
	return "", fmt.Errorf("LLM not configured")
}

// failedOutcome packages a backend error as both structured data and
// conversation-visible text.
func failedOutcome(trace *Trace, err *BackendError) Outcome {
	return Outcome{
		Text:        err.conversational(),
		ToolsCalled: trace.Tools(),
		Calls:       trace.Calls(),
		Err:         err,
	}
}

// exhaustedOutcome is returned when the iteration bound is hit without a
// terminal answer.
func exhaustedOutcome(trace *Trace) Outcome {
	return Outcome{
		Text:        maxIterationsMessage,
		ToolsCalled: trace.Tools(),
		Calls:       trace.Calls(),
	}
}
