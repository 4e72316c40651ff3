package models

import (
	"context"
	"errors"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/spectra-sec/spectra/src/config"
	"github.com/spectra-sec/spectra/src/tools"
)

type geminiEngine struct {
	client *genai.Client
	model  string
	exec   *Executor
}

func newGeminiEngine(ctx context.Context, cfg config.Config, exec *Executor) (*geminiEngine, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &geminiEngine{client: client, model: cfg.Model, exec: exec}, nil
}

func (e *geminiEngine) generativeModel(system string, descriptors []tools.Descriptor) *genai.GenerativeModel {
	model := e.client.GenerativeModel(e.model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	model.SetMaxOutputTokens(defaultMaxTokens)
	if len(descriptors) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: tools.ToGemini(descriptors)}}
	}
	return model
}

func (e *geminiEngine) RunAgentLoop(ctx context.Context, req Request) Outcome {
	trace := &Trace{}

	session := e.generativeModel(req.Instructions, req.Tools).StartChat()
	session.History = geminiHistory(req.History)

	parts := []genai.Part{genai.Text(req.Query)}
	for i := 0; i < req.maxIterations(); i++ {
		resp, err := session.SendMessage(ctx, parts...)
		if err != nil {
			return failedOutcome(trace, geminiError(err))
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return failedOutcome(trace, &BackendError{Provider: "Google", Detail: "empty response"})
		}

		var texts []string
		var responses []genai.Part
		for _, part := range resp.Candidates[0].Content.Parts {
			switch p := part.(type) {
			case genai.Text:
				texts = append(texts, string(p))
			case genai.FunctionCall:
				result := e.exec.Run(ctx, trace, req.Observer, p.Name, p.Args)
				responses = append(responses, genai.FunctionResponse{
					Name:     p.Name,
					Response: map[string]any{"result": result},
				})
			}
		}

		if len(responses) == 0 {
			return Outcome{
				Text:        strings.Join(texts, "\n"),
				ToolsCalled: trace.Tools(),
				Calls:       trace.Calls(),
			}
		}
		parts = responses
	}
	return exhaustedOutcome(trace)
}

func (e *geminiEngine) SimpleCall(ctx context.Context, system, user string) (string, error) {
	resp, err := e.generativeModel(system, nil).GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", geminiError(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("empty response")
	}
	var texts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			texts = append(texts, string(t))
		}
	}
	return strings.Join(texts, "\n"), nil
}

func geminiHistory(history []Turn) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		role := "model"
		if turn.Role == "user" {
			role = "user"
		}
		out = append(out, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(turn.Text)}})
	}
	return out
}

func geminiError(err error) *BackendError {
	var apierr *googleapi.Error
	if errors.As(err, &apierr) {
		return &BackendError{Provider: "Google", Status: apierr.Code, Detail: apierr.Message}
	}
	return &BackendError{Provider: "Google", Detail: err.Error()}
}
