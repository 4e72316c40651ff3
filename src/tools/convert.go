package tools

import (
	anthropic "github.com/anthropics/anthropic-sdk-go"
	genai "github.com/google/generative-ai-go/genai"
	openai "github.com/sashabaranov/go-openai"
)

// emptyObjectSchema is advertised when a tool declares no parameters. Providers
// reject tool declarations without a parameter schema.
func emptyObjectSchema() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

// ToOpenAI converts descriptors into OpenAI function-calling declarations.
func ToOpenAI(descriptors []Descriptor) []openai.Tool {
	out := make([]openai.Tool, 0, len(descriptors))
	for _, d := range descriptors {
		schema := d.Schema
		if len(schema) == 0 {
			schema = emptyObjectSchema()
		}
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  schema,
			},
		})
	}
	return out
}

// ToAnthropic converts descriptors into Anthropic tool_use declarations.
func ToAnthropic(descriptors []Descriptor) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(descriptors))
	for _, d := range descriptors {
		schema := d.Schema
		if len(schema) == 0 {
			schema = emptyObjectSchema()
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        d.Name,
			Description: anthropic.String(d.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: schema["properties"],
				Required:   stringSlice(schema["required"]),
			},
		}})
	}
	return out
}

// ToGemini converts descriptors into Gemini functionDeclarations. The Gemini
// API rejects JSON Schema keywords it does not model (additionalProperties in
// particular), so conversion into genai.Schema drops anything without a
// matching field instead of passing it through.
func ToGemini(descriptors []Descriptor) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, &genai.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  geminiSchema(d.Schema),
		})
	}
	return out
}

func geminiSchema(m map[string]any) *genai.Schema {
	if len(m) == 0 {
		return &genai.Schema{Type: genai.TypeObject}
	}
	s := &genai.Schema{Type: genai.TypeObject}
	if t, ok := m["type"].(string); ok {
		s.Type = geminiType(t)
	}
	if desc, ok := m["description"].(string); ok {
		s.Description = desc
	}
	if format, ok := m["format"].(string); ok {
		s.Format = format
	}
	s.Enum = stringSlice(m["enum"])
	s.Required = stringSlice(m["required"])
	if items, ok := m["items"].(map[string]any); ok {
		s.Items = geminiSchema(items)
	}
	if props, ok := m["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			pm, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			s.Properties[name] = geminiSchema(pm)
		}
	}
	return s
}

func geminiType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeUnspecified
	}
}

func stringSlice(v any) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
