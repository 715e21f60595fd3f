package tool

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultHTTPTimeout bounds each request end to end.
	DefaultHTTPTimeout = 30 * time.Second

	// MaxResponseBytes caps how much of a response body is read into
	// the tool result, keeping oversized responses out of the prompt.
	MaxResponseBytes = 1 << 20
)

// HTTPTool is a tool for making HTTP requests.
//
// It supports GET and POST methods and returns the HTTP response
// including status code, headers, and body.
//
// Input Parameters:
//   - method: HTTP method ("GET" or "POST", defaults to "GET")
//   - url: Target URL (required)
//   - headers: Optional map of HTTP headers
//   - body: Optional request body (for POST requests)
//
// Output:
//   - status_code: HTTP status code (e.g., 200, 404)
//   - headers: Response headers as map
//   - body: Response body as string
type HTTPTool struct {
	client *http.Client
}

// NewHTTPTool creates a new HTTP tool. Requests time out after
// DefaultHTTPTimeout; a shorter deadline on the context still applies.
func NewHTTPTool() *HTTPTool {
	return &HTTPTool{
		client: &http.Client{Timeout: DefaultHTTPTimeout},
	}
}

// Name returns the tool identifier.
func (h *HTTPTool) Name() string {
	return "http_request"
}

// Description tells the model what the tool does.
func (h *HTTPTool) Description() string {
	return "Make an HTTP GET or POST request and return the status code, headers, and body."
}

// Schema returns the input parameter schema.
func (h *HTTPTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "Target URL",
			},
			"method": map[string]interface{}{
				"type":        "string",
				"description": "HTTP method, GET or POST. Defaults to GET.",
				"enum":        []string{"GET", "POST"},
			},
			"headers": map[string]interface{}{
				"type":        "object",
				"description": "HTTP headers to send",
			},
			"body": map[string]interface{}{
				"type":        "string",
				"description": "Request body for POST requests",
			},
		},
		"required": []string{"url"},
	}
}

// Call executes an HTTP request with the provided parameters.
func (h *HTTPTool) Call(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	urlStr, ok := input["url"].(string)
	if !ok || urlStr == "" {
		return nil, fmt.Errorf("url parameter required (string)")
	}

	method := "GET"
	if m, ok := input["method"].(string); ok && m != "" {
		method = strings.ToUpper(m)
	}
	if method != "GET" && method != "POST" {
		return nil, fmt.Errorf("unsupported HTTP method: %s (supported: GET, POST)", method)
	}

	var body io.Reader
	if bodyStr, ok := input["body"].(string); ok && bodyStr != "" {
		body = bytes.NewBufferString(bodyStr)
	}

	req, err := http.NewRequestWithContext(ctx, method, urlStr, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if headers, ok := input["headers"].(map[string]interface{}); ok {
		for key, value := range headers {
			if valueStr, ok := value.(string); ok {
				req.Header.Set(key, valueStr)
			}
		}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	respHeaders := make(map[string]interface{})
	for key, values := range resp.Header {
		if len(values) == 1 {
			respHeaders[key] = values[0]
		} else {
			respHeaders[key] = values
		}
	}

	return map[string]interface{}{
		"status_code": resp.StatusCode,
		"headers":     respHeaders,
		"body":        string(respBody),
	}, nil
}
