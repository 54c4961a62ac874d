// Package cron reconciles the scheduled jobs a recipe declares with the
// jobs installed in the gateway scheduler.
//
// The flow for one recipe and one scope (team or agent):
//
//	desired := Normalize(recipe.cronJobs)     // validate + canonicalise
//	consent := ResolveConsent(mode, ...)      // off / prompt / on
//	state   := MappingStore.Load()            // key -> installed job id
//	create / update / disable orphans via Registry
//	MappingStore.Save(state)
package cron

import (
	"fmt"
	"strconv"
	"strings"
)

// Spec is a canonical, validated cron job declaration.
type Spec struct {
	ID               string `json:"id"`
	Schedule         string `json:"schedule"`
	Message          string `json:"message"`
	Name             string `json:"name,omitempty"`
	Description      string `json:"description,omitempty"`
	Timezone         string `json:"timezone,omitempty"`
	Channel          string `json:"channel,omitempty"`
	To               string `json:"to,omitempty"`
	AgentID          string `json:"agentId,omitempty"`
	EnabledByDefault bool   `json:"enabledByDefault"`
}

// messageAliases lists the accepted spellings of the payload text, newest first.
var messageAliases = []string{"message", "task", "prompt"}

// ValidationError describes a malformed cron job declaration.
type ValidationError struct {
	JobID   string // Empty when the problem is not tied to a single job
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Normalize parses raw job declarations (as decoded from recipe frontmatter)
// into canonical specs. A nil input yields an empty slice.
func Normalize(raw any) ([]Spec, error) {
	entries, err := asList(raw)
	if err != nil {
		return nil, err
	}

	specs := make([]Spec, 0, len(entries))
	seen := make(map[string]bool, len(entries))

	for _, entry := range entries {
		fields, ok := asObject(entry)
		if !ok {
			return nil, &ValidationError{Field: "cronJobs", Message: "cronJobs entries must be objects"}
		}

		spec, err := normalizeOne(fields)
		if err != nil {
			return nil, err
		}

		if seen[spec.ID] {
			return nil, &ValidationError{
				JobID:   spec.ID,
				Field:   "id",
				Message: fmt.Sprintf("Duplicate cronJobs[].id: %s", spec.ID),
			}
		}
		seen[spec.ID] = true

		specs = append(specs, spec)
	}

	return specs, nil
}

func normalizeOne(fields map[string]any) (Spec, error) {
	id := stringField(fields, "id")
	if id == "" {
		return Spec{}, &ValidationError{Field: "id", Message: "cronJobs[].id is required"}
	}

	schedule := stringField(fields, "schedule")
	if schedule == "" {
		return Spec{}, &ValidationError{
			JobID:   id,
			Field:   "schedule",
			Message: fmt.Sprintf("cronJobs[%s].schedule is required", id),
		}
	}

	var message string
	for _, alias := range messageAliases {
		if message = stringField(fields, alias); message != "" {
			break
		}
	}
	if message == "" {
		return Spec{}, &ValidationError{
			JobID:   id,
			Field:   "message",
			Message: fmt.Sprintf("cronJobs[%s].message is required", id),
		}
	}

	spec := Spec{
		ID:               id,
		Schedule:         schedule,
		Message:          message,
		Name:             stringField(fields, "name"),
		Description:      stringField(fields, "description"),
		Timezone:         stringField(fields, "timezone"),
		Channel:          stringField(fields, "channel"),
		To:               stringField(fields, "to"),
		AgentID:          stringField(fields, "agentId"),
		EnabledByDefault: boolField(fields, "enabledByDefault", true),
	}

	if err := validateSpec(spec); err != nil {
		return Spec{}, err
	}

	return spec, nil
}

func asList(raw any) ([]any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	case []map[string]any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, nil
	default:
		return nil, &ValidationError{Field: "cronJobs", Message: "frontmatter.cronJobs must be an array"}
	}
}

func asObject(entry any) (map[string]any, bool) {
	switch v := entry.(type) {
	case map[string]any:
		return v, true
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// stringField returns the trimmed string form of a scalar field, or "" if absent.
func stringField(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}

func boolField(fields map[string]any, key string, def bool) bool {
	v, ok := fields[key]
	if !ok || v == nil {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false
		}
		return parsed
	case int:
		return b != 0
	case int64:
		return b != 0
	case float64:
		return b != 0
	default:
		return false
	}
}
