package models

import (
	"context"
	"testing"

	"github.com/spectra-sec/spectra/src/config"
)

func TestNotConfiguredEngine(t *testing.T) {
	engine, err := NewEngine(context.Background(), config.Config{Provider: config.ProviderOpenAI}, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	out := engine.RunAgentLoop(context.Background(), Request{Query: "anything"})
	if out.Failed() {
		t.Fatalf("not-configured runs are not backend failures")
	}
	if out.Text != notConfiguredMessage {
		t.Fatalf("unexpected text %q", out.Text)
	}

	if _, err := engine.SimpleCall(context.Background(), "sys", "user"); err == nil {
		t.Fatalf("SimpleCall must error so classification falls back to keywords")
	}
}

func TestNewEngineRejectsUnknownProvider(t *testing.T) {
	_, err := NewEngine(context.Background(), config.Config{Provider: "llama-farm", APIKey: "k"}, nil)
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestBackendErrorRendering(t *testing.T) {
	e := &BackendError{Provider: "OpenAI", Status: 429, Detail: "rate limited"}
	if e.Error() != "OpenAI error (429): rate limited" {
		t.Fatalf("unexpected Error() %q", e.Error())
	}
	if e.conversational() != "OpenAI Error (429): rate limited" {
		t.Fatalf("unexpected conversational %q", e.conversational())
	}

	e = &BackendError{Provider: "Google", Detail: "boom"}
	if e.Error() != "Google error: boom" {
		t.Fatalf("unexpected Error() %q", e.Error())
	}
}
