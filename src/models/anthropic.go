package models

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/spectra-sec/spectra/src/config"
	"github.com/spectra-sec/spectra/src/tools"
)

type anthropicEngine struct {
	client anthropic.Client
	model  anthropic.Model
	exec   *Executor
}

func newAnthropicEngine(cfg config.Config, exec *Executor) *anthropicEngine {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &anthropicEngine{
		client: anthropic.NewClient(opts...),
		model:  anthropic.Model(cfg.Model),
		exec:   exec,
	}
}

func (e *anthropicEngine) RunAgentLoop(ctx context.Context, req Request) Outcome {
	trace := &Trace{}

	messages := anthropicHistory(req.History)
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(req.Query)))
	var declared []anthropic.ToolUnionParam
	if len(req.Tools) > 0 {
		declared = tools.ToAnthropic(req.Tools)
	}

	for i := 0; i < req.maxIterations(); i++ {
		msg, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     e.model,
			MaxTokens: defaultMaxTokens,
			System:    []anthropic.TextBlockParam{{Text: req.Instructions}},
			Messages:  messages,
			Tools:     declared,
		})
		if err != nil {
			return failedOutcome(trace, anthropicError(err))
		}

		var texts []string
		var results []anthropic.ContentBlockParamUnion
		for _, block := range msg.Content {
			switch b := block.AsAny().(type) {
			case anthropic.TextBlock:
				texts = append(texts, b.Text)
			case anthropic.ToolUseBlock:
				args := map[string]any{}
				if raw := b.JSON.Input.Raw(); raw != "" {
					_ = json.Unmarshal([]byte(raw), &args)
				}
				result := e.exec.Run(ctx, trace, req.Observer, b.Name, args)
				results = append(results, anthropic.NewToolResultBlock(b.ID, result, false))
			}
		}

		if len(results) == 0 {
			return Outcome{
				Text:        strings.Join(texts, "\n"),
				ToolsCalled: trace.Tools(),
				Calls:       trace.Calls(),
			}
		}
		messages = append(messages, msg.ToParam())
		messages = append(messages, anthropic.NewUserMessage(results...))
	}
	return exhaustedOutcome(trace)
}

func (e *anthropicEngine) SimpleCall(ctx context.Context, system, user string) (string, error) {
	msg, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     e.model,
		MaxTokens: 1024,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(user))},
	})
	if err != nil {
		return "", anthropicError(err)
	}
	var texts []string
	for _, block := range msg.Content {
		if b, ok := block.AsAny().(anthropic.TextBlock); ok {
			texts = append(texts, b.Text)
		}
	}
	return strings.Join(texts, "\n"), nil
}

func anthropicHistory(history []Turn) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(history))
	for _, turn := range history {
		if turn.Role == "user" {
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(turn.Text)))
		} else {
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(turn.Text)))
		}
	}
	return out
}

func anthropicError(err error) *BackendError {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		return &BackendError{Provider: "Anthropic", Status: apierr.StatusCode, Detail: apierr.Error()}
	}
	return &BackendError{Provider: "Anthropic", Detail: err.Error()}
}
