package mcp

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// Envelope is the JSON-RPC response envelope returned by the MCP server.
// Exactly one of Result and Error is populated on a well-formed response.
type Envelope struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *RPCError       `json:"error,omitempty"`
}

// RPCError is the JSON-RPC error payload.
type RPCError struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
}

func (e *RPCError) String() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// ExtractText pulls the human-readable text out of a tool result envelope.
// MCP tool results carry a content array of typed items; text items are joined
// with newlines. Results without a content array are rendered as compact JSON.
func ExtractText(env Envelope) string {
	if len(env.Result) == 0 {
		return ""
	}
	content := gjson.GetBytes(env.Result, "content")
	if !content.Exists() {
		return strings.TrimSpace(string(env.Result))
	}
	var texts []string
	content.ForEach(func(_, item gjson.Result) bool {
		if item.Get("type").String() == "text" {
			texts = append(texts, item.Get("text").String())
		}
		return true
	})
	return strings.Join(texts, "\n")
}
