// Package stream carries progress events from a running query to an SSE
// consumer.
package stream

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Event is one progress notification.
type Event struct {
	Type      string         `json:"type"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

// SSE renders the event in Server-Sent-Events wire format.
func (e Event) SSE() string {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		payload = []byte("{}")
	}
	return fmt.Sprintf("event: %s\ndata: %s\n\n", e.Type, payload)
}

// Stream is a bounded event channel with idempotent close. All methods are
// safe on a nil receiver, so producers need no streaming/non-streaming split.
type Stream struct {
	mu     sync.Mutex
	ch     chan Event
	closed bool
}

func New() *Stream {
	return &Stream{ch: make(chan Event, 64)}
}

// Events exposes the consumer side. The channel is closed when the query
// finishes or fails.
func (s *Stream) Events() <-chan Event {
	if s == nil {
		return nil
	}
	return s.ch
}

// Emit publishes an event, dropping it if the stream is closed or the
// consumer has fallen behind.
func (s *Stream) Emit(eventType string, data map[string]any) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- Event{Type: eventType, Data: data, Timestamp: time.Now().UTC()}:
	default:
	}
}

// emitFinal publishes a terminal event and closes the stream. Unlike Emit it
// blocks until the consumer takes the event, so the final result or error is
// never lost to a full buffer.
func (s *Stream) emitFinal(eventType string, data map[string]any) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.ch <- Event{Type: eventType, Data: data, Timestamp: time.Now().UTC()}
	s.closed = true
	close(s.ch)
}

// Close shuts the stream; later emits are dropped.
func (s *Stream) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

func (s *Stream) AgentStart(agent string) {
	s.Emit("agent_start", map[string]any{"agent": agent, "status": "starting"})
}

func (s *Stream) ToolCall(agent, tool string) {
	s.Emit("tool_call", map[string]any{"agent": agent, "tool": tool, "status": "calling"})
}

func (s *Stream) ToolResult(agent, tool string) {
	s.Emit("tool_result", map[string]any{"agent": agent, "tool": tool, "status": "complete"})
}

func (s *Stream) AgentComplete(agent string) {
	s.Emit("agent_complete", map[string]any{"agent": agent, "status": "complete"})
}

// Result publishes the final payload and closes the stream.
func (s *Stream) Result(status string, content any) {
	s.emitFinal("result", map[string]any{"status": status, "result": content})
}

// Error publishes a terminal error and closes the stream.
func (s *Stream) Error(message string) {
	s.emitFinal("error", map[string]any{"status": "error", "message": message})
}
