package cron

// Action is what a pass did to one job.
type Action string

const (
	ActionCreated         Action = "created"
	ActionUpdated         Action = "updated"
	ActionUnchanged       Action = "unchanged"
	ActionDisabled        Action = "disabled"
	ActionDisabledRemoved Action = "disabled-removed"
)

// Changes reports whether the action mutated the registry.
func (a Action) Changes() bool {
	return a != ActionUnchanged
}

// Result is one entry of the pass log.
type Result struct {
	Action          Action `json:"action"`
	Key             string `json:"key"`
	InstalledCronID string `json:"installedCronId"`
	Enabled         *bool  `json:"enabled,omitempty"` // Created only
}

// Outcome is returned by Reconcile. Failures are returned as errors, never as an Outcome.
type Outcome struct {
	OK           bool     `json:"ok"`
	Changed      bool     `json:"changed"`
	Note         Note     `json:"note,omitempty"`
	DesiredCount int      `json:"desiredCount,omitempty"`
	Results      []Result `json:"results,omitempty"`
}

func outcomeFromResults(results []Result) *Outcome {
	changed := false
	for _, r := range results {
		if r.Action.Changes() {
			changed = true
			break
		}
	}
	return &Outcome{OK: true, Changed: changed, Results: results}
}
