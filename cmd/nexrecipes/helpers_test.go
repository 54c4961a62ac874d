package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

const testRecipe = `---
id: writer
kind: agent
name: Writer
templates:
  soul: "# {{agentName}}"
files:
  - path: SOUL.md
    template: soul
cronJobs:
  - id: daily
    schedule: "0 9 * * *"
    message: Write the daily post
---
`

// testGateway serves the cron tool over /tools/invoke.
type testGateway struct {
	mu      sync.Mutex
	jobs    map[string]map[string]any
	nextID  int
	actions []string
}

func (g *testGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tool string         `json:"tool"`
		Args map[string]any `json:"args"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"ok":false,"error":"bad json"}`, http.StatusBadRequest)
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	action, _ := req.Args["action"].(string)
	g.actions = append(g.actions, action)

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
		payload = map[string]any{"id": id}
	case "update":
		id, _ := req.Args["jobId"].(string)
		patch, _ := req.Args["patch"].(map[string]any)
		for k, v := range patch {
			g.jobs[id][k] = v
		}
		payload = map[string]any{"ok": true}
	}

	text, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok":     true,
		"result": map[string]any{"content": []map[string]any{{"type": "text", "text": string(text)}}},
	})
}

type cliEnv struct {
	root       string
	configPath string
	gateway    *testGateway
}

// newCLIEnv writes a config pointing at a fake gateway and a builtin recipe dir.
func newCLIEnv(t *testing.T, cronInstallation string) *cliEnv {
	t.Helper()

	gw := &testGateway{jobs: make(map[string]map[string]any)}
	server := httptest.NewServer(gw)
	t.Cleanup(server.Close)

	_, port, err := net.SplitHostPort(strings.TrimPrefix(server.URL, "http://"))
	require.NoError(t, err)

	root := t.TempDir()
	builtinDir := filepath.Join(root, "builtin")
	require.NoError(t, os.MkdirAll(builtinDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(builtinDir, "writer.md"), []byte(testRecipe), 0644))

	cfg := fmt.Sprintf(`[workspace]
path = %q
builtin_recipes_dir = %q

[gateway]
host = "127.0.0.1"
port = %s
token = "test-token-123"
retry_attempts = 1
retry_delay_ms = 1

[recipes]
cron_installation = %q

[logging]
output = "discard"

[metrics]
textfile = %q
`, filepath.Join(root, "workspace"), builtinDir, port, cronInstallation, filepath.Join(root, "metrics", "nexrecipes.prom"))

	configPath := filepath.Join(root, "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0644))

	return &cliEnv{root: root, configPath: configPath, gateway: gw}
}

// run executes the CLI with --config and --env pointing into the env.
func (e *cliEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	full := append([]string{"--config", e.configPath, "--env", filepath.Join(e.root, ".env")}, args...)
	return executeCommand(t, full...)
}

func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// resetFlags restores every flag to its default between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
