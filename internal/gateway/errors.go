package gateway

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a missing or invalid gateway setting. It is never retried.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("gateway configuration: %s: %s", e.Field, e.Message)
}

// RemoteUnavailableError is returned when a tools/invoke call failed for good.
type RemoteUnavailableError struct {
	Tool     string
	Action   string
	Attempts int
	Err      error
}

func (e *RemoteUnavailableError) Error() string {
	return fmt.Sprintf("gateway %s unavailable after %d attempt(s): %v", e.label(), e.Attempts, e.Err)
}

func (e *RemoteUnavailableError) Unwrap() error {
	return e.Err
}

func (e *RemoteUnavailableError) label() string {
	if e.Action == "" {
		return e.Tool
	}
	return e.Tool + "." + e.Action
}

// ParseError reports a tool response that is not the expected JSON.
type ParseError struct {
	Label string // e.g. "cron.add"
	Text  string // Raw tool text, if any
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("failed parsing tool output (%s)", e.Label)
	}
	return fmt.Sprintf("failed parsing tool output (%s): %v", e.Label, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// httpError is a non-2xx response. Its message format feeds retry.IsRetryable.
type httpError struct {
	StatusCode int
	Body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP error: status=%d, body=%s", e.StatusCode, strings.TrimSpace(e.Body))
}

// toolError is a 2xx response with ok=false.
type toolError struct {
	Message string
}

func (e *toolError) Error() string {
	return e.Message
}
