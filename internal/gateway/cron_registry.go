package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/aatumaykin/nexrecipes/internal/cron"
)

const cronTool = "cron"

var errMissingID = errors.New("missing id")

// Invoker calls a gateway tool. *Client implements it.
type Invoker interface {
	Invoke(ctx context.Context, req ToolRequest) (json.RawMessage, error)
}

// CronRegistry implements cron.Registry on top of the gateway cron tool.
type CronRegistry struct {
	invoker Invoker
}

var _ cron.Registry = (*CronRegistry)(nil)

// NewCronRegistry creates a registry backed by inv.
func NewCronRegistry(inv Invoker) *CronRegistry {
	return &CronRegistry{invoker: inv}
}

// List returns all jobs, disabled ones included.
func (r *CronRegistry) List(ctx context.Context) ([]cron.RemoteJob, error) {
	var payload struct {
		Jobs []cron.RemoteJob `json:"jobs"`
	}
	found, err := r.call(ctx, "list", map[string]any{"includeDisabled": true}, &payload)
	if err != nil {
		return nil, err
	}
	if !found {
		return []cron.RemoteJob{}, nil
	}
	return payload.Jobs, nil
}

// Create adds a job and returns the id the gateway assigned.
func (r *CronRegistry) Create(ctx context.Context, job cron.JobDefinition) (string, error) {
	var payload struct {
		ID  string `json:"id"`
		Job struct {
			ID string `json:"id"`
		} `json:"job"`
	}
	if _, err := r.call(ctx, "add", map[string]any{"job": job}, &payload); err != nil {
		return "", err
	}

	id := payload.ID
	if id == "" {
		id = payload.Job.ID
	}
	if id == "" {
		return "", &ParseError{Label: "cron.add", Err: errMissingID}
	}
	return id, nil
}

// Update applies patch to the job with the given id.
func (r *CronRegistry) Update(ctx context.Context, id string, patch cron.JobPatch) error {
	var ignored json.RawMessage
	_, err := r.call(ctx, "update", map[string]any{"jobId": id, "patch": patch}, &ignored)
	return err
}

// call invokes one cron action and decodes the tool text into out.
// found is false when the tool returned no text.
func (r *CronRegistry) call(ctx context.Context, action string, args map[string]any, out any) (bool, error) {
	withAction := make(map[string]any, len(args)+1)
	withAction["action"] = action
	for k, v := range args {
		withAction[k] = v
	}

	result, err := r.invoker.Invoke(ctx, ToolRequest{Tool: cronTool, Args: withAction})
	if err != nil {
		return false, err
	}

	text := strings.TrimSpace(ToolText(result))
	if text == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return false, &ParseError{Label: "cron." + action, Text: text, Err: err}
	}
	return true, nil
}
