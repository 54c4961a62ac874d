package cron

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_NilIsEmpty(t *testing.T) {
	specs, err := Normalize(nil)
	require.NoError(t, err)
	assert.Empty(t, specs)
}

func TestNormalize_NotAList(t *testing.T) {
	_, err := Normalize(map[string]any{"id": "daily"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "cronJobs", verr.Field)
}

func TestNormalize_EntryNotObject(t *testing.T) {
	_, err := Normalize([]any{"daily"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "must be objects")
}

func TestNormalize_Canonical(t *testing.T) {
	raw := []any{
		map[string]any{
			"id":          " daily ",
			"schedule":    "0 9 * * 1-5",
			"message":     "Post the standup summary",
			"name":        "Standup",
			"description": "Weekday standup",
			"timezone":    "Europe/Berlin",
			"channel":     "telegram",
			"to":          "12345",
			"agentId":     "acme-team-lead",
		},
	}

	specs, err := Normalize(raw)
	require.NoError(t, err)
	require.Len(t, specs, 1)

	assert.Equal(t, Spec{
		ID:               "daily",
		Schedule:         "0 9 * * 1-5",
		Message:          "Post the standup summary",
		Name:             "Standup",
		Description:      "Weekday standup",
		Timezone:         "Europe/Berlin",
		Channel:          "telegram",
		To:               "12345",
		AgentID:          "acme-team-lead",
		EnabledByDefault: true,
	}, specs[0])
}

func TestNormalize_MessageAliases(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		want   string
	}{
		{"message wins", map[string]any{"message": "m", "task": "t", "prompt": "p"}, "m"},
		{"task over prompt", map[string]any{"task": "t", "prompt": "p"}, "t"},
		{"prompt only", map[string]any{"prompt": "p"}, "p"},
		{"blank message falls through", map[string]any{"message": "  ", "task": "t"}, "t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fields["id"] = "job"
			tt.fields["schedule"] = "@daily"

			specs, err := Normalize([]any{tt.fields})
			require.NoError(t, err)
			assert.Equal(t, tt.want, specs[0].Message)
		})
	}
}

func TestNormalize_RequiredFields(t *testing.T) {
	tests := []struct {
		name      string
		fields    map[string]any
		wantField string
		wantMsg   string
	}{
		{
			name:      "missing id",
			fields:    map[string]any{"schedule": "@daily", "message": "hi"},
			wantField: "id",
			wantMsg:   "cronJobs[].id is required",
		},
		{
			name:      "blank schedule",
			fields:    map[string]any{"id": "daily", "schedule": "  ", "message": "hi"},
			wantField: "schedule",
			wantMsg:   "cronJobs[daily].schedule is required",
		},
		{
			name:      "no message alias",
			fields:    map[string]any{"id": "daily", "schedule": "@daily"},
			wantField: "message",
			wantMsg:   "cronJobs[daily].message is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize([]any{tt.fields})

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
			assert.Equal(t, tt.wantMsg, verr.Error())
		})
	}
}

func TestNormalize_DuplicateID(t *testing.T) {
	raw := []any{
		map[string]any{"id": "daily", "schedule": "0 9 * * *", "message": "a"},
		map[string]any{"id": "weekly", "schedule": "0 9 * * 1", "message": "b"},
		map[string]any{"id": "daily", "schedule": "0 10 * * *", "message": "c"},
	}

	_, err := Normalize(raw)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "daily", verr.JobID)
	assert.Equal(t, "Duplicate cronJobs[].id: daily", verr.Error())
}

func TestNormalize_ScalarsAreStringified(t *testing.T) {
	raw := []map[string]any{
		{"id": 42, "schedule": "@hourly", "message": "ping", "to": 100500},
	}

	specs, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, "42", specs[0].ID)
	assert.Equal(t, "100500", specs[0].To)
}

func TestNormalize_EnabledByDefault(t *testing.T) {
	tests := []struct {
		name  string
		value any
		set   bool
		want  bool
	}{
		{name: "absent", want: true},
		{name: "true", value: true, set: true, want: true},
		{name: "false", value: false, set: true, want: false},
		{name: "string false", value: "false", set: true, want: false},
		{name: "string true", value: "true", set: true, want: true},
		{name: "zero", value: 0, set: true, want: false},
		{name: "garbage", value: "maybe", set: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := map[string]any{"id": "j", "schedule": "@daily", "message": "m"}
			if tt.set {
				fields["enabledByDefault"] = tt.value
			}

			specs, err := Normalize([]any{fields})
			require.NoError(t, err)
			assert.Equal(t, tt.want, specs[0].EnabledByDefault)
		})
	}
}

func TestNormalize_AcceptsGatewayCronDialect(t *testing.T) {
	schedules := []string{
		"0 9 * * *",
		"*/5 * * * *",
		"30 0 9 * * 1-5",
		"@daily",
		"0 9 * * 7",
		"0 9 * * 5-7",
		"0 0 L * *",
		"0 0 15W * *",
		"0 9 * * MON#1",
		"0 9 * * 5L",
	}
	for _, schedule := range schedules {
		t.Run(schedule, func(t *testing.T) {
			specs, err := Normalize([]any{map[string]any{"id": "j", "schedule": schedule, "message": "m"}})
			require.NoError(t, err)
			assert.Equal(t, schedule, specs[0].Schedule)
			assert.Empty(t, ScheduleWarnings(specs[0]))
		})
	}
}

func TestNormalize_RejectsInterval(t *testing.T) {
	_, err := Normalize([]any{map[string]any{"id": "j", "schedule": "@every 1h", "message": "m"}})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "schedule", verr.Field)
	assert.Equal(t, "j", verr.JobID)
}

func TestNormalize_UnparsableScheduleOnlyWarns(t *testing.T) {
	specs, err := Normalize([]any{map[string]any{"id": "j", "schedule": "every morning", "message": "m"}})
	require.NoError(t, err)

	warnings := ScheduleWarnings(specs[0])
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "cronJobs[j].schedule")
}

func TestScheduleWarnings_Timezone(t *testing.T) {
	assert.Empty(t, ScheduleWarnings(Spec{ID: "j", Schedule: "@daily", Timezone: "America/New_York"}))

	warnings := ScheduleWarnings(Spec{ID: "j", Schedule: "@daily", Timezone: "Mars/Olympus"})
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "cronJobs[j].timezone is unknown: Mars/Olympus")
}

func TestNormalize_KeepsDeclarationOrder(t *testing.T) {
	raw := []any{
		map[string]any{"id": "c", "schedule": "@daily", "message": "m"},
		map[string]any{"id": "a", "schedule": "@daily", "message": "m"},
		map[string]any{"id": "b", "schedule": "@daily", "message": "m"},
	}

	specs, err := Normalize(raw)
	require.NoError(t, err)
	ids := []string{specs[0].ID, specs[1].ID, specs[2].ID}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}
