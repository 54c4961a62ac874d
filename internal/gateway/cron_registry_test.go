package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aatumaykin/nexrecipes/internal/cron"
	"github.com/aatumaykin/nexrecipes/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubInvoker returns canned tool texts and records requests.
type stubInvoker struct {
	texts    []string
	err      error
	requests []ToolRequest
}

func (s *stubInvoker) Invoke(ctx context.Context, req ToolRequest) (json.RawMessage, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	text := ""
	if len(s.texts) > 0 {
		text, s.texts = s.texts[0], s.texts[1:]
	}
	if text == "" {
		return json.RawMessage(`{"content":[]}`), nil
	}
	block, err := json.Marshal(map[string]any{
		"content": []map[string]string{{"type": "text", "text": text}},
	})
	if err != nil {
		return nil, err
	}
	return block, nil
}

func TestCronRegistry_List(t *testing.T) {
	inv := &stubInvoker{texts: []string{`{"jobs":[{"id":"a","enabled":true,"name":"x"},{"id":"b","enabled":false}]}`}}
	reg := NewCronRegistry(inv)

	jobs, err := reg.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []cron.RemoteJob{{ID: "a", Enabled: true}, {ID: "b", Enabled: false}}, jobs)
	require.Len(t, inv.requests, 1)
	assert.Equal(t, "cron", inv.requests[0].Tool)
	assert.Equal(t, map[string]any{"action": "list", "includeDisabled": true}, inv.requests[0].Args)
}

func TestCronRegistry_ListEmptyText(t *testing.T) {
	reg := NewCronRegistry(&stubInvoker{})

	jobs, err := reg.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestCronRegistry_ListMalformed(t *testing.T) {
	reg := NewCronRegistry(&stubInvoker{texts: []string{"jobs: none"}})

	_, err := reg.List(context.Background())

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "cron.list", parseErr.Label)
	assert.Equal(t, "jobs: none", parseErr.Text)
}

func TestCronRegistry_CreateIDLocations(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"top level", `{"id":"job-1"}`, "job-1"},
		{"nested job", `{"job":{"id":"job-2"}}`, "job-2"},
		{"top level wins", `{"id":"job-3","job":{"id":"other"}}`, "job-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewCronRegistry(&stubInvoker{texts: []string{tt.text}})

			id, err := reg.Create(context.Background(), cron.BuildDefinition(
				cron.Spec{ID: "daily", Schedule: "@daily", Message: "m"}, "n", true))
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestCronRegistry_CreateMissingID(t *testing.T) {
	for _, text := range []string{"", `{"ok":true}`} {
		reg := NewCronRegistry(&stubInvoker{texts: []string{text}})

		_, err := reg.Create(context.Background(), cron.JobDefinition{})

		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, "cron.add", parseErr.Label)
	}
}

func TestCronRegistry_UpdateSendsPatch(t *testing.T) {
	inv := &stubInvoker{}
	reg := NewCronRegistry(inv)

	require.NoError(t, reg.Update(context.Background(), "job-9", cron.DisablePatch()))

	require.Len(t, inv.requests, 1)
	args := inv.requests[0].Args
	assert.Equal(t, "update", args["action"])
	assert.Equal(t, "job-9", args["jobId"])

	data, err := json.Marshal(args["patch"])
	require.NoError(t, err)
	assert.JSONEq(t, `{"enabled":false}`, string(data))
}

func TestCronRegistry_PropagatesInvokeError(t *testing.T) {
	cause := &RemoteUnavailableError{Tool: "cron", Action: "list", Attempts: 3}
	reg := NewCronRegistry(&stubInvoker{err: cause})

	_, err := reg.List(context.Background())
	assert.Same(t, cause, err)
}

// fakeGateway serves the cron tool over /tools/invoke.
type fakeGateway struct {
	mu     sync.Mutex
	jobs   map[string]map[string]any
	nextID int
	calls  []string
}

func (g *fakeGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tool string         `json:"tool"`
		Args map[string]any `json:"args"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, `{"ok":false,"error":"bad json"}`)
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	action, _ := req.Args["action"].(string)
	g.calls = append(g.calls, action)

	var payload any
	switch action {
	case "list":
		jobs := make([]map[string]any, 0, len(g.jobs))
		for _, job := range g.jobs {
			jobs = append(jobs, job)
		}
		payload = map[string]any{"jobs": jobs}
	case "add":
		g.nextID++
		id := fmt.Sprintf("cron-%d", g.nextID)
		job, _ := req.Args["job"].(map[string]any)
		job["id"] = id
		g.jobs[id] = job
		payload = map[string]any{"job": job}
	case "update":
		id, _ := req.Args["jobId"].(string)
		patch, _ := req.Args["patch"].(map[string]any)
		for k, v := range patch {
			g.jobs[id][k] = v
		}
		payload = map[string]any{"ok": true}
	}

	text, _ := json.Marshal(payload)
	body, _ := json.Marshal(map[string]any{
		"ok":     true,
		"result": map[string]any{"content": []map[string]any{{"type": "text", "text": string(text)}}},
	})
	writeJSON(w, http.StatusOK, string(body))
}

func TestCronRegistry_ReconcileOverHTTP(t *testing.T) {
	gw := &fakeGateway{jobs: make(map[string]map[string]any)}
	server := httptest.NewServer(gw)
	defer server.Close()

	reg := NewCronRegistry(testClient(server.URL))
	r := cron.NewReconciler(reg, nil, logger.Nop())
	scope := cron.TeamScope("acme-team", "standup-bot", t.TempDir())
	desired := []cron.Spec{{
		ID:               "daily",
		Schedule:         "0 9 * * *",
		Message:          "standup",
		Channel:          "telegram",
		EnabledByDefault: true,
	}}

	out, err := r.Apply(context.Background(), scope, desired, true)
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, cron.ActionCreated, out.Results[0].Action)
	assert.Equal(t, "cron-1", out.Results[0].InstalledCronID)

	job := gw.jobs["cron-1"]
	assert.Equal(t, true, job["enabled"])
	assert.Equal(t, "acme-team • standup-bot • daily", job["name"])
	assert.Equal(t, map[string]any{"kind": "systemEvent", "text": "standup"}, job["payload"])

	// Declining later disables the installed job
	out, err = r.Apply(context.Background(), scope, desired, false)
	require.NoError(t, err)
	assert.Equal(t, cron.ActionDisabled, out.Results[1].Action)
	assert.Equal(t, false, gw.jobs["cron-1"]["enabled"])
	assert.Equal(t, []string{"add", "list", "update"}, gw.calls)
}
