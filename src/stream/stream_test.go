package stream

import (
	"strings"
	"testing"
)

func TestEmitAndClose(t *testing.T) {
	s := New()
	s.AgentStart("alert_triage")
	s.ToolCall("alert_triage", "list_alerts")
	s.Result("success", "done")

	var types []string
	for event := range s.Events() {
		types = append(types, event.Type)
	}
	want := []string{"agent_start", "tool_call", "result"}
	if len(types) != len(want) {
		t.Fatalf("got %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("got %v, want %v", types, want)
		}
	}
}

func TestEmitAfterCloseIsDropped(t *testing.T) {
	s := New()
	s.Close()
	s.Emit("tool_call", nil)
	s.Close() // idempotent

	count := 0
	for range s.Events() {
		count++
	}
	if count != 0 {
		t.Fatalf("expected no events, got %d", count)
	}
}

func TestNilStreamIsSafe(t *testing.T) {
	var s *Stream
	s.AgentStart("x")
	s.ToolCall("x", "y")
	s.ToolResult("x", "y")
	s.AgentComplete("x")
	s.Error("boom")
	s.Close()
	if s.Events() != nil {
		t.Fatalf("nil stream must expose nil channel")
	}
}

func TestSSEFormat(t *testing.T) {
	e := Event{Type: "tool_call", Data: map[string]any{"agent": "posture", "tool": "list_misconfigurations"}}
	got := e.SSE()
	if !strings.HasPrefix(got, "event: tool_call\ndata: {") {
		t.Fatalf("unexpected prefix: %q", got)
	}
	if !strings.HasSuffix(got, "}\n\n") {
		t.Fatalf("missing terminator: %q", got)
	}
	if !strings.Contains(got, `"agent":"posture"`) {
		t.Fatalf("payload missing: %q", got)
	}
}

func TestResultSurvivesFullBuffer(t *testing.T) {
	s := New()
	for i := 0; i < 100; i++ {
		s.ToolCall("threat_hunt", "powerquery")
	}

	done := make(chan struct{})
	go func() {
		s.Result("success", "final answer")
		close(done)
	}()

	var last Event
	for event := range s.Events() {
		last = event
	}
	<-done

	if last.Type != "result" {
		t.Fatalf("terminal event lost, last was %q", last.Type)
	}
	if last.Data["result"] != "final answer" {
		t.Fatalf("unexpected payload %v", last.Data)
	}
}

func TestErrorClosesStream(t *testing.T) {
	s := New()
	s.Error("backend down")

	event, ok := <-s.Events()
	if !ok || event.Type != "error" {
		t.Fatalf("expected error event, got %+v ok=%v", event, ok)
	}
	if _, ok := <-s.Events(); ok {
		t.Fatalf("stream must be closed after Error")
	}
}
