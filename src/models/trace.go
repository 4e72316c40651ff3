package models

import "sync"

// CallRecord is one tool invocation made during an agent-loop run. Args holds
// a clamped summary rather than the raw payload so traces stay small enough to
// ship in response envelopes.
type CallRecord struct {
	Tool string `json:"tool"`
	Args string `json:"args"`
}

// Trace accumulates tool invocations across a run. It is safe for concurrent
// use; Gemini can request several function calls in one turn.
type Trace struct {
	mu    sync.Mutex
	calls []CallRecord
}

// Record appends one invocation.
func (t *Trace) Record(tool string, args map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, CallRecord{Tool: tool, Args: SummarizeArgs(args)})
}

// Calls returns the invocations in order.
func (t *Trace) Calls() []CallRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]CallRecord(nil), t.calls...)
}

// Tools returns the distinct tool names in first-use order.
func (t *Trace) Tools() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	seen := make(map[string]struct{}, len(t.calls))
	var names []string
	for _, c := range t.calls {
		if _, ok := seen[c.Tool]; ok {
			continue
		}
		seen[c.Tool] = struct{}{}
		names = append(names, c.Tool)
	}
	return names
}
