// Command spectra answers a security-analyst query by routing it through the
// orchestrator against an MCP tool server and the configured LLM provider.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/spectra-sec/spectra/src/agents"
	"github.com/spectra-sec/spectra/src/config"
	"github.com/spectra-sec/spectra/src/mcp"
	"github.com/spectra-sec/spectra/src/models"
	"github.com/spectra-sec/spectra/src/stream"
)

func main() {
	streaming := flag.Bool("stream", false, "print progress events in SSE format")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	query := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: spectra [-stream] <query>")
		os.Exit(2)
	}

	if err := run(context.Background(), query, *streaming); err != nil {
		slog.Error("query failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, query string, streaming bool) error {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}

	client := mcp.New(cfg.MCPServerURL)
	engine, err := models.NewEngine(ctx, cfg, models.NewExecutor(client))
	if err != nil {
		return err
	}

	orch := agents.NewOrchestrator(agents.NewRegistry(), engine, client)

	if streaming {
		st := stream.New()
		go orch.ProcessStream(ctx, query, nil, st)
		for event := range st.Events() {
			fmt.Print(event.SSE())
		}
		return nil
	}

	envelope := orch.Process(ctx, query, nil)
	out, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
