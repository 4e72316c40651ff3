// Package mcp implements a session-aware client for an MCP tool server speaking
// JSON-RPC over HTTP, where responses arrive either as a single JSON object or
// as a Server-Sent-Event stream.
package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/spectra-sec/spectra/src/tools"
)

const (
	protocolVersion = "2024-11-05"
	sessionHeader   = "mcp-session-id"

	defaultToolCacheTTL = 5 * time.Minute
	handshakeTimeout    = 30 * time.Second
	notifyTimeout       = 10 * time.Second
)

// HandshakeError indicates the session to the tool server could not be
// established.
type HandshakeError struct {
	Detail string
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("mcp handshake failed: %s", e.Detail)
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// Client owns one session to an MCP tool server. The session token obtained on
// the first successful handshake is reused for all later requests; concurrent
// first use performs at most one handshake. The discovered tool catalog is
// cached with a freshness window and served stale when the server is
// transiently unreachable.
type Client struct {
	httpc  *http.Client
	logger *slog.Logger

	initMu sync.Mutex // serializes session acquisition

	mu        sync.Mutex // guards the fields below
	serverURL string
	sessionID string
	requestID int64
	cache     []tools.Descriptor
	cacheTime time.Time
	cacheTTL  time.Duration
	now       func() time.Time
}

// New creates a client for the given server base URL.
func New(serverURL string) *Client {
	return &Client{
		httpc:     &http.Client{Timeout: 120 * time.Second},
		logger:    slog.Default(),
		serverURL: strings.TrimRight(serverURL, "/"),
		cacheTTL:  defaultToolCacheTTL,
		now:       time.Now,
	}
}

// Reset points the client at a new server address, dropping the session token
// and the tool cache.
func (c *Client) Reset(serverURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.serverURL = strings.TrimRight(serverURL, "/")
	c.sessionID = ""
	c.cache = nil
	c.cacheTime = time.Time{}
}

func (c *Client) nextID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requestID++
	return c.requestID
}

func (c *Client) endpoint() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serverURL + "/mcp"
}

func (c *Client) session() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *Client) post(ctx context.Context, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	if sid := c.session(); sid != "" {
		req.Header.Set(sessionHeader, sid)
	}
	return c.httpc.Do(req)
}

// parseResponse handles the two transport shapes the server may answer with: a
// plain JSON envelope, or an SSE stream whose data lines each carry a JSON-RPC
// envelope. For streams, the last line bearing a result or error key wins;
// intermediate lines may be partial or keepalive frames.
func parseResponse(resp *http.Response) (Envelope, error) {
	defer resp.Body.Close()

	if strings.Contains(resp.Header.Get("Content-Type"), "text/event-stream") {
		var last []byte
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			data, ok := strings.CutPrefix(line, "data: ")
			if !ok || strings.TrimSpace(data) == "" {
				continue
			}
			if !gjson.Valid(data) {
				continue
			}
			if gjson.Get(data, "result").Exists() || gjson.Get(data, "error").Exists() {
				last = []byte(data)
			}
		}
		if err := scanner.Err(); err != nil {
			return Envelope{}, fmt.Errorf("read SSE stream: %w", err)
		}
		if last == nil {
			return Envelope{Error: &RPCError{Message: "No valid response in SSE stream"}}, nil
		}
		var env Envelope
		if err := json.Unmarshal(last, &env); err != nil {
			return Envelope{}, fmt.Errorf("decode SSE envelope: %w", err)
		}
		return env, nil
	}

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return Envelope{}, fmt.Errorf("decode response: %w", err)
	}
	return env, nil
}

// Initialize performs the protocol handshake and captures the session token
// from the response transport. It does not check for an existing session; use
// the higher-level calls for lazy session management.
func (c *Client) Initialize(ctx context.Context) (Envelope, error) {
	ctx, cancel := context.WithTimeout(ctx, handshakeTimeout)
	defer cancel()

	request := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID(),
		Method:  "initialize",
		Params: map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities":    map[string]any{},
			"clientInfo":      map[string]any{"name": "spectra", "version": "1.0.0"},
		},
	}
	resp, err := c.post(ctx, request)
	if err != nil {
		return Envelope{}, &HandshakeError{Detail: err.Error()}
	}
	env, err := parseResponse(resp)
	if err != nil {
		return Envelope{}, &HandshakeError{Detail: err.Error()}
	}
	if env.Error != nil {
		return env, &HandshakeError{Detail: env.Error.Message}
	}

	c.mu.Lock()
	c.sessionID = resp.Header.Get(sessionHeader)
	c.mu.Unlock()
	return env, nil
}

// notifyInitialized sends the one-way initialized notification. It has no
// response contract, so failures are swallowed.
func (c *Client) notifyInitialized(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	notification := rpcRequest{JSONRPC: "2.0", Method: "notifications/initialized"}
	resp, err := c.post(ctx, notification)
	if err != nil {
		c.logger.Debug("initialized notification failed", "error", err)
		return
	}
	resp.Body.Close()
}

// ensureSession establishes the session if none exists yet. The lock makes
// concurrent first use hand every caller the single winning handshake.
func (c *Client) ensureSession(ctx context.Context) error {
	c.initMu.Lock()
	defer c.initMu.Unlock()

	if c.session() != "" {
		return nil
	}
	if _, err := c.Initialize(ctx); err != nil {
		return err
	}
	c.notifyInitialized(ctx)
	return nil
}

// ListTools fetches the full tool catalog, lazily establishing the session.
func (c *Client) ListTools(ctx context.Context) ([]tools.Descriptor, error) {
	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}

	request := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID(),
		Method:  "tools/list",
		Params:  map[string]any{},
	}
	resp, err := c.post(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("tools/list: %w", err)
	}
	env, err := parseResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("tools/list: %w", err)
	}
	if env.Error != nil {
		return nil, fmt.Errorf("tools/list: %s", env.Error.Message)
	}

	var payload struct {
		Tools []struct {
			Name        string         `json:"name"`
			Description string         `json:"description"`
			InputSchema map[string]any `json:"inputSchema"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(env.Result, &payload); err != nil {
		return nil, fmt.Errorf("decode tool catalog: %w", err)
	}

	catalog := make([]tools.Descriptor, 0, len(payload.Tools))
	for _, t := range payload.Tools {
		if t.Name == "" {
			continue
		}
		catalog = append(catalog, tools.Descriptor{
			Name:        t.Name,
			Description: t.Description,
			Schema:      t.InputSchema,
		})
	}
	return catalog, nil
}

// DiscoverTools returns the tool catalog, serving a cached copy while it is
// inside the freshness window. When a fetch fails, a stale cache is preferred
// over failing the caller; an empty catalog is returned only when both the
// fetch and the cache are unavailable. Tool catalogs change rarely, but the
// server may be transiently unreachable.
func (c *Client) DiscoverTools(ctx context.Context) []tools.Descriptor {
	c.mu.Lock()
	cached := c.cache
	fresh := len(c.cache) > 0 && c.now().Sub(c.cacheTime) < c.cacheTTL
	c.mu.Unlock()

	if fresh {
		return append([]tools.Descriptor(nil), cached...)
	}

	catalog, err := c.ListTools(ctx)
	if err != nil {
		c.logger.Warn("tool discovery failed", "error", err)
		if len(cached) > 0 {
			return append([]tools.Descriptor(nil), cached...)
		}
		return nil
	}

	c.mu.Lock()
	c.cache = catalog
	c.cacheTime = c.now()
	c.mu.Unlock()

	c.logger.Info("discovered MCP tools", "count", len(catalog))
	return append([]tools.Descriptor(nil), catalog...)
}

// CallTool invokes one tool by name. The raw result envelope is returned;
// interpreting success and error payloads is the caller's responsibility.
func (c *Client) CallTool(ctx context.Context, name string, arguments map[string]any) (Envelope, error) {
	if err := c.ensureSession(ctx); err != nil {
		return Envelope{}, err
	}

	c.logger.Info("MCP tool call", "tool", name)

	if arguments == nil {
		arguments = map[string]any{}
	}
	request := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID(),
		Method:  "tools/call",
		Params: map[string]any{
			"name":      name,
			"arguments": arguments,
		},
	}
	resp, err := c.post(ctx, request)
	if err != nil {
		return Envelope{}, fmt.Errorf("tools/call %s: %w", name, err)
	}
	env, err := parseResponse(resp)
	if err != nil {
		return Envelope{}, fmt.Errorf("tools/call %s: %w", name, err)
	}
	return env, nil
}
