package cron

const (
	// WakeModeNextHeartbeat delivers the job on the agent's next heartbeat.
	WakeModeNextHeartbeat = "next-heartbeat"

	SessionTargetIsolated = "isolated"
	SessionTargetMain     = "main"

	PayloadAgentTurn   = "agentTurn"
	PayloadSystemEvent = "systemEvent"

	DeliveryAnnounce = "announce"
)

// buildFields renders the scheduler-side shape of spec.
func buildFields(spec Spec, name string) JobFields {
	fields := JobFields{
		Name:          name,
		Description:   spec.Description,
		WakeMode:      WakeModeNextHeartbeat,
		SessionTarget: SessionTargetMain,
		Schedule: JobSchedule{
			Kind: "cron",
			Expr: spec.Schedule,
			TZ:   spec.Timezone,
		},
		Payload: JobPayload{Kind: PayloadSystemEvent, Text: spec.Message},
	}

	if spec.AgentID != "" {
		agentID := spec.AgentID
		fields.AgentID = &agentID
		fields.SessionTarget = SessionTargetIsolated
		fields.Payload = JobPayload{Kind: PayloadAgentTurn, Message: spec.Message}
	}

	if spec.Channel != "" || spec.To != "" {
		fields.Delivery = &JobDelivery{
			Mode:       DeliveryAnnounce,
			Channel:    spec.Channel,
			To:         spec.To,
			BestEffort: true,
		}
	}

	return fields
}

// BuildDefinition returns the job to create for spec.
func BuildDefinition(spec Spec, name string, enabled bool) JobDefinition {
	fields := buildFields(spec, name)
	fields.Enabled = &enabled
	return JobDefinition{JobFields: fields}
}

// BuildPatch returns a full patch for spec; enablement is left untouched.
func BuildPatch(spec Spec, name string) JobPatch {
	fields := buildFields(spec, name)
	return JobPatch{JobFields: &fields}
}
