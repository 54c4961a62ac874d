package cron

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// DefaultChannel is the delivery channel assumed when a job names none.
const DefaultChannel = "last"

// HashFields is the subset of a job that changes what gets installed remotely.
// EnabledByDefault is deliberately absent: enablement follows consent.
type HashFields struct {
	Schedule    string `json:"schedule"`
	Message     string `json:"message"`
	Timezone    string `json:"timezone"`
	Channel     string `json:"channel"`
	To          string `json:"to"`
	AgentID     string `json:"agentId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HashInput builds the hashed field set for spec installed under displayName.
func HashInput(spec Spec, displayName string) HashFields {
	channel := spec.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	return HashFields{
		Schedule:    spec.Schedule,
		Message:     spec.Message,
		Timezone:    spec.Timezone,
		Channel:     channel,
		To:          spec.To,
		AgentID:     spec.AgentID,
		Name:        displayName,
		Description: spec.Description,
	}
}

// HashSpec returns the hex SHA-256 of fields encoded as JSON with sorted keys.
// fields may be any JSON-encodable value; key order of maps and struct field
// order do not affect the result.
func HashSpec(fields any) (string, error) {
	canonical, err := canonicalJSON(fields)
	if err != nil {
		return "", fmt.Errorf("failed to hash cron spec: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// canonicalJSON round-trips v through a generic value so that every object
// is re-encoded as a map, which encoding/json writes with sorted keys.
func canonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(generic); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
