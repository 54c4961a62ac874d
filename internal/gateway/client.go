// Package gateway calls tools on the local agent gateway over its
// /tools/invoke HTTP endpoint.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aatumaykin/nexrecipes/internal/config"
	"github.com/aatumaykin/nexrecipes/internal/logger"
	"github.com/aatumaykin/nexrecipes/internal/retry"
	"github.com/aatumaykin/nexrecipes/internal/version"
)

const (
	// DefaultHost is the only address the gateway listens on for tool calls
	DefaultHost = "127.0.0.1"
	// DefaultTimeout bounds a single tools/invoke attempt
	DefaultTimeout = 30 * time.Second
	// DefaultRetryAttempts is the number of attempts per call
	DefaultRetryAttempts = 3
	// DefaultRetryDelay is the linear backoff base
	DefaultRetryDelay = 150 * time.Millisecond

	invokePath = "/tools/invoke"
)

// Config contains the settings of a Client.
type Config struct {
	BaseURL       string        // e.g. http://127.0.0.1:18789
	Token         string        // Bearer token, required
	Timeout       time.Duration // Per attempt
	RetryAttempts int
	RetryDelay    time.Duration
}

// FromConfig converts the [gateway] config section.
func FromConfig(cfg config.GatewayConfig) Config {
	host := cfg.Host
	if host == "" {
		host = DefaultHost
	}
	return Config{
		BaseURL:       fmt.Sprintf("http://%s:%d", host, cfg.Port),
		Token:         cfg.Token,
		Timeout:       time.Duration(cfg.TimeoutSeconds) * time.Second,
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    time.Duration(cfg.RetryDelayMs) * time.Millisecond,
	}
}

// ToolRequest is the body of a tools/invoke call.
type ToolRequest struct {
	Tool       string         `json:"tool"`
	Action     string         `json:"action,omitempty"`
	Args       map[string]any `json:"args,omitempty"`
	SessionKey string         `json:"sessionKey,omitempty"`
	DryRun     bool           `json:"dryRun,omitempty"`
}

// action returns the action for logs and errors, from Args if needed.
func (r ToolRequest) action() string {
	if r.Action != "" {
		return r.Action
	}
	if a, ok := r.Args["action"].(string); ok {
		return a
	}
	return ""
}

type invokeResponse struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

// Client is an HTTP client for the gateway tools endpoint.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new Client.
func NewClient(cfg Config, log *logger.Logger, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = DefaultRetryAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	c := &Client{
		httpClient: &http.Client{},
		config:     cfg,
		logger:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Invoke calls a tool and returns its raw result.
// Transient failures are retried with linear backoff; the final failure is a
// *RemoteUnavailableError unless the response could not be parsed or ctx ended.
func (c *Client) Invoke(ctx context.Context, req ToolRequest) (json.RawMessage, error) {
	if c.config.Token == "" {
		return nil, &ConfigurationError{Field: "gateway.token", Message: "token is required for tools/invoke"}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool request: %w", err)
	}

	action := req.action()
	attempts := 0
	retryCfg := retry.Config{
		MaxAttempts:    c.config.RetryAttempts,
		InitialBackoff: c.config.RetryDelay,
		Strategy:       retry.StrategyLinear,
		Retryable:      isRetryable,
		OnRetry: func(attempt int, err error, wait time.Duration) {
			c.logger.WarnCtx(ctx, "tools/invoke failed, retrying",
				logger.Field{Key: "tool", Value: req.Tool},
				logger.Field{Key: "action", Value: action},
				logger.Field{Key: "attempt", Value: attempt},
				logger.Field{Key: "wait", Value: wait.String()},
				logger.Field{Key: "error", Value: err.Error()})
		},
	}

	result, err := retry.Do(ctx, retryCfg, func(ctx context.Context, attempt int) (json.RawMessage, error) {
		attempts = attempt
		return c.doRequest(ctx, body)
	})
	if err == nil {
		return result, nil
	}

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return nil, err
	}

	// Caller cancellation is not a gateway outage.
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		label := req.Tool
		if action != "" {
			label += "." + action
		}
		return nil, fmt.Errorf("gateway %s interrupted after %d attempt(s): %w", label, attempts, ctxErr)
	}

	c.logger.ErrorCtx(ctx, "tools/invoke failed", err,
		logger.Field{Key: "tool", Value: req.Tool},
		logger.Field{Key: "action", Value: action},
		logger.Field{Key: "attempts", Value: attempts})

	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) {
		err = exhausted.Err
	}
	return nil, &RemoteUnavailableError{Tool: req.Tool, Action: action, Attempts: attempts, Err: err}
}

// doRequest executes a single attempt bounded by the configured timeout.
func (c *Client) doRequest(ctx context.Context, body []byte) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+invokePath, bytes.NewReader(body))
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.config.Token)
	httpReq.Header.Set("User-Agent", version.UserAgent())

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var resp invokeResponse
	decodeErr := json.Unmarshal(respBody, &resp)

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		if decodeErr == nil {
			if msg := errorMessage(resp.Error); msg != "" {
				return nil, &httpError{StatusCode: httpResp.StatusCode, Body: msg}
			}
		}
		return nil, &httpError{StatusCode: httpResp.StatusCode, Body: string(respBody)}
	}

	if decodeErr != nil {
		return nil, &ParseError{Label: "tools/invoke", Text: string(respBody), Err: decodeErr}
	}

	if !resp.OK {
		msg := errorMessage(resp.Error)
		if msg == "" {
			msg = fmt.Sprintf("tools/invoke failed (%d)", httpResp.StatusCode)
		}
		return nil, &toolError{Message: msg}
	}

	c.logger.DebugCtx(ctx, "tools/invoke succeeded",
		logger.Field{Key: "result_bytes", Value: len(resp.Result)})

	return resp.Result, nil
}

// errorMessage extracts the message of an error that is either a string or {message}.
func errorMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Message
	}
	return ""
}

// isRetryable treats tool errors and malformed responses as final.
func isRetryable(err error) bool {
	var parseErr *ParseError
	var toolErr *toolError
	if errors.As(err, &parseErr) || errors.As(err, &toolErr) {
		return false
	}
	var httpErr *httpError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests ||
			httpErr.StatusCode == http.StatusRequestTimeout ||
			httpErr.StatusCode >= 500
	}
	return retry.IsRetryable(err)
}

// ToolText returns the first text content block of a tool result.
func ToolText(result json.RawMessage) string {
	if len(result) == 0 {
		return ""
	}
	var parsed struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(result, &parsed); err != nil {
		return ""
	}
	for _, block := range parsed.Content {
		if block.Type == "text" {
			return block.Text
		}
	}
	return ""
}
