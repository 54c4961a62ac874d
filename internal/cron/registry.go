package cron

import "context"

// RemoteJob is the part of a gateway job this package trusts: its id and enabled flag.
type RemoteJob struct {
	ID      string `json:"id"`
	Enabled bool   `json:"enabled"`
}

// Registry is the gateway job scheduler as seen by the reconciler.
// Implementations retry transient failures themselves; callers never retry.
type Registry interface {
	// List returns every job, disabled ones included.
	List(ctx context.Context) ([]RemoteJob, error)
	// Create installs a job and returns its id.
	Create(ctx context.Context, job JobDefinition) (string, error)
	// Update applies a partial patch to an existing job.
	Update(ctx context.Context, id string, patch JobPatch) error
}

// JobSchedule is the scheduler-side schedule block.
type JobSchedule struct {
	Kind string `json:"kind"`
	Expr string `json:"expr"`
	TZ   string `json:"tz,omitempty"`
}

// JobPayload is either an agent turn (Message) or a system event (Text).
type JobPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message,omitempty"`
	Text    string `json:"text,omitempty"`
}

// JobDelivery routes the job output to a channel.
type JobDelivery struct {
	Mode       string `json:"mode"`
	Channel    string `json:"channel,omitempty"`
	To         string `json:"to,omitempty"`
	BestEffort bool   `json:"bestEffort"`
}

// JobFields is shared by creation and full patches.
type JobFields struct {
	Name          string       `json:"name"`
	AgentID       *string      `json:"agentId"`
	Description   string       `json:"description"`
	Enabled       *bool        `json:"enabled,omitempty"` // Set on creation only
	WakeMode      string       `json:"wakeMode"`
	SessionTarget string       `json:"sessionTarget"`
	Schedule      JobSchedule  `json:"schedule"`
	Payload       JobPayload   `json:"payload"`
	Delivery      *JobDelivery `json:"delivery,omitempty"`
}

// JobDefinition is a full job sent to Registry.Create.
type JobDefinition struct {
	JobFields
}

// JobPatch is a partial update. With a nil JobFields only Enabled is sent.
type JobPatch struct {
	*JobFields
	Enabled *bool `json:"enabled,omitempty"`
}

// DisablePatch turns a job off without touching anything else.
func DisablePatch() JobPatch {
	disabled := false
	return JobPatch{Enabled: &disabled}
}
