// Package tools holds the provider-agnostic tool descriptor discovered from the
// MCP server and the pure adapters that reshape it into each LLM provider's
// tool-declaration format.
package tools

// Descriptor mirrors the MCP tool description payload.
type Descriptor struct {
	Name        string
	Description string
	Schema      map[string]any
}

// FilterByName returns the descriptors whose names appear in allowed, preserving
// the order of the input catalog.
func FilterByName(catalog []Descriptor, allowed []string) []Descriptor {
	set := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		set[name] = struct{}{}
	}
	var out []Descriptor
	for _, d := range catalog {
		if _, ok := set[d.Name]; ok {
			out = append(out, d)
		}
	}
	return out
}
