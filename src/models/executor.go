package models

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spectra-sec/spectra/src/mcp"
)

const (
	maxToolResultChars = 50000
	truncationMarker   = "\n\n... [truncated]"

	// purpleAITool answers natural-language questions and often proposes a
	// follow-up PowerQuery; powerQueryTool executes one.
	purpleAITool   = "purple_ai"
	powerQueryTool = "powerquery"

	// powerQueryWindowDays is the trailing window used when the model did
	// not anchor the query to a time range itself.
	powerQueryWindowDays = 14
)

// ToolCaller is the slice of the MCP client the executor needs.
type ToolCaller interface {
	CallTool(ctx context.Context, name string, arguments map[string]any) (mcp.Envelope, error)
}

// Executor turns tool invocations requested by the model into MCP calls and
// renders their results as text for the conversation. Tool failures are
// reported back to the model as text, never as loop-fatal errors.
type Executor struct {
	caller ToolCaller
	logger *slog.Logger
	now    func() time.Time
}

// NewExecutor wraps a tool caller, typically the MCP session client.
func NewExecutor(caller ToolCaller) *Executor {
	return &Executor{
		caller: caller,
		logger: slog.Default(),
		now:    time.Now,
	}
}

// Run executes one tool call with observer notifications around it.
func (e *Executor) Run(ctx context.Context, trace *Trace, obs ToolObserver, name string, args map[string]any) string {
	if obs != nil {
		obs.OnToolCall(name)
	}
	result := e.Execute(ctx, trace, name, args)
	if obs != nil {
		obs.OnToolResult(name)
	}
	return result
}

// Execute records the call, invokes the tool, and renders its result. Results
// above the size ceiling are cut with a marker so the model knows data was
// dropped.
func (e *Executor) Execute(ctx context.Context, trace *Trace, name string, args map[string]any) string {
	trace.Record(name, args)
	e.logger.Info("executing tool", "tool", name, "args", SummarizeArgs(args))

	env, err := e.caller.CallTool(ctx, name, args)
	if err != nil {
		e.logger.Warn("tool call failed", "tool", name, "error", err)
		return fmt.Sprintf("Tool error: %v", err)
	}
	if env.Error != nil {
		return fmt.Sprintf("Error: %s", env.Error.Message)
	}

	text := mcp.ExtractText(env)
	if strings.TrimSpace(text) == "" {
		return "No data returned"
	}
	if name == purpleAITool {
		text = e.chainPowerQuery(ctx, trace, text)
	}
	return truncate(text)
}

// chainPowerQuery runs a PowerQuery found in Purple AI output and appends its
// results, so the model sees data instead of an unexecuted query. Chain
// failures are noted inline rather than discarding the original answer.
func (e *Executor) chainPowerQuery(ctx context.Context, trace *Trace, text string) string {
	query := DetectPowerQuery(text)
	if query == "" {
		return text
	}

	to := e.now().UTC().Truncate(time.Second)
	from := to.AddDate(0, 0, -powerQueryWindowDays)
	args := map[string]any{
		"query":          query,
		"start_datetime": from.Format(time.RFC3339),
		"end_datetime":   to.Format(time.RFC3339),
	}
	trace.Record(powerQueryTool, args)
	e.logger.Info("auto-executing detected PowerQuery", "query", query)

	env, err := e.caller.CallTool(ctx, powerQueryTool, args)
	if err != nil {
		return fmt.Sprintf("%s\n\n(Note: PowerQuery execution failed: %v)", text, err)
	}
	if env.Error != nil {
		return fmt.Sprintf("%s\n\n(Note: PowerQuery execution failed: %s)", text, env.Error.Message)
	}
	results := mcp.ExtractText(env)
	if strings.TrimSpace(results) == "" {
		return text
	}
	return text + "\n\n---\n\n**Query Results:**\n\n" + results
}

func truncate(text string) string {
	if len(text) <= maxToolResultChars {
		return text
	}
	cut := maxToolResultChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + truncationMarker
}

// SummarizeArgs renders arguments for logs: sorted keys, long values clamped.
func SummarizeArgs(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := fmt.Sprintf("%v", args[k])
		if len(v) > 60 {
			v = v[:57] + "..."
		}
		parts = append(parts, k+"="+v)
	}
	summary := strings.Join(parts, ", ")
	if len(summary) > 120 {
		summary = summary[:117] + "..."
	}
	return summary
}
