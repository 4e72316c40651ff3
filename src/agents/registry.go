package agents

import (
	"fmt"
	"strings"
	"sync"
)

// Registry holds the registered specialists keyed by lowercase name,
// preserving registration order for routing prompts and iteration.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	byName map[string]Spec
}

// NewRegistry returns a registry preloaded with the builtin specialists.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Spec)}
	for _, spec := range Builtins() {
		r.Register(spec)
	}
	return r
}

// Register adds or replaces a specialist. Names are case-insensitive.
func (r *Registry) Register(spec Spec) {
	name := strings.ToLower(spec.Name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[name]; !exists {
		r.order = append(r.order, name)
	}
	r.byName[name] = spec
}

// Get looks up a specialist by name.
func (r *Registry) Get(name string) (Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.byName[strings.ToLower(name)]
	return spec, ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// All returns the specialists in registration order.
func (r *Registry) All() []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Spec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// RoutingList renders the one-line-per-agent list used in the classifier
// prompt.
func (r *Registry) RoutingList() string {
	var b strings.Builder
	for _, spec := range r.All() {
		fmt.Fprintf(&b, "- %s: %s\n", spec.Name, spec.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}
