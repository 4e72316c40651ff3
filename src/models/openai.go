package models

import (
	"context"
	"encoding/json"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/spectra-sec/spectra/src/config"
	"github.com/spectra-sec/spectra/src/tools"
)

type openaiEngine struct {
	client *openai.Client
	model  string
	exec   *Executor
}

func newOpenAIEngine(cfg config.Config, exec *Executor) *openaiEngine {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &openaiEngine{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		exec:   exec,
	}
}

func (e *openaiEngine) RunAgentLoop(ctx context.Context, req Request) Outcome {
	trace := &Trace{}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: req.Instructions,
	})
	for _, turn := range req.History {
		role := openai.ChatMessageRoleAssistant
		if turn.Role == "user" {
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Text})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Query,
	})

	request := openai.ChatCompletionRequest{Model: e.model}
	if len(req.Tools) > 0 {
		request.Tools = tools.ToOpenAI(req.Tools)
		request.ToolChoice = "auto"
	}

	for i := 0; i < req.maxIterations(); i++ {
		request.Messages = messages
		resp, err := e.client.CreateChatCompletion(ctx, request)
		if err != nil {
			return failedOutcome(trace, openaiError(err))
		}
		if len(resp.Choices) == 0 {
			return failedOutcome(trace, &BackendError{Provider: "OpenAI", Detail: "empty response"})
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			return Outcome{
				Text:        msg.Content,
				ToolsCalled: trace.Tools(),
				Calls:       trace.Calls(),
			}
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			args := map[string]any{}
			if call.Function.Arguments != "" {
				_ = json.Unmarshal([]byte(call.Function.Arguments), &args)
			}
			result := e.exec.Run(ctx, trace, req.Observer, call.Function.Name, args)
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}
	return exhaustedOutcome(trace)
}

func (e *openaiEngine) SimpleCall(ctx context.Context, system, user string) (string, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", openaiError(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

func openaiError(err error) *BackendError {
	var apierr *openai.APIError
	if errors.As(err, &apierr) {
		return &BackendError{Provider: "OpenAI", Status: apierr.HTTPStatusCode, Detail: apierr.Message}
	}
	return &BackendError{Provider: "OpenAI", Detail: err.Error()}
}
