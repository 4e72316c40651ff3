package agents

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spectra-sec/spectra/src/models"
	"github.com/spectra-sec/spectra/src/tools"
)

// Result is one agent's answer to a query. Failed results carry a diagnostic
// in Content and are candidates for the general-agent fallback.
type Result struct {
	AgentName   string
	Content     string
	ToolsCalled []string
	Calls       []models.CallRecord
	Failed      bool
}

// Run executes one agent against the query. The agent sees only the
// intersection of its declared tools and the discovered catalog; an empty
// intersection fails fast instead of running a toolless loop.
func Run(ctx context.Context, spec Spec, query string, history []models.Turn, engine models.Engine, catalog []tools.Descriptor, obs models.ToolObserver) Result {
	agentTools := tools.FilterByName(catalog, spec.ToolNames)
	if len(agentTools) == 0 && len(spec.ToolNames) > 0 {
		slog.Warn("agent has no matching tools", "agent", spec.Name, "available", len(catalog))
		return Result{
			AgentName: spec.Name,
			Content:   fmt.Sprintf("No tools available for %s agent.", spec.Name),
			Failed:    true,
		}
	}

	slog.Info("agent executing", "agent", spec.Name, "tools", len(agentTools))
	out := engine.RunAgentLoop(ctx, models.Request{
		Instructions: spec.Instructions,
		Query:        query,
		Tools:        agentTools,
		History:      history,
		Observer:     obs,
	})
	if out.Failed() {
		slog.Error("agent backend failure", "agent", spec.Name, "error", out.Err)
	}
	return Result{
		AgentName:   spec.Name,
		Content:     out.Text,
		ToolsCalled: out.ToolsCalled,
		Calls:       out.Calls,
		Failed:      out.Failed(),
	}
}
