package scaffold

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aatumaykin/nexrecipes/internal/cron"
	"github.com/aatumaykin/nexrecipes/internal/logger"
	"github.com/aatumaykin/nexrecipes/internal/recipe"
	"github.com/aatumaykin/nexrecipes/internal/workspace"
	"github.com/stretchr/testify/require"
)

const writerRecipe = `---
id: writer
kind: agent
name: Writer
templates:
  soul: "# {{agentName}} ({{agentId}})\n"
  notes: "notes for {{agentId}}"
files:
  - path: SOUL.md
    template: soul
  - path: notes/README.md
    template: notes
    mode: createOnly
cronJobs:
  - id: daily
    schedule: "0 9 * * *"
    message: Write the daily post
---

Writer recipe.
`

const crewRecipe = `---
id: crew
kind: team
name: Crew
agents:
  - role: lead
    name: Captain
  - role: scribe
templates:
  lead.soul: "lead {{agentName}} of {{teamId}}"
  soul: "member {{agentName}} ({{agentId}})"
files:
  - path: SOUL.md
    template: soul
cronJobs:
  - id: standup
    schedule: "0 9 * * 1-5"
    message: Standup
---
`

const needsSkillRecipe = `---
id: needs-skill
kind: agent
requiredSkills: [web-search, calendar]
templates:
  soul: x
files:
  - path: SOUL.md
    template: soul
---
`

const brokenTemplateRecipe = `---
id: broken-template
kind: agent
files:
  - path: SOUL.md
    template: nowhere
---
`

// memRegistry is a minimal in-memory cron.Registry.
type memRegistry struct {
	mu      sync.Mutex
	jobs    map[string]*cron.RemoteJob
	created []cron.JobDefinition
}

func newMemRegistry() *memRegistry {
	return &memRegistry{jobs: make(map[string]*cron.RemoteJob)}
}

func (m *memRegistry) List(ctx context.Context) ([]cron.RemoteJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]cron.RemoteJob, 0, len(m.jobs))
	for _, job := range m.jobs {
		out = append(out, *job)
	}
	return out, nil
}

func (m *memRegistry) Create(ctx context.Context, job cron.JobDefinition) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, job)
	id := fmt.Sprintf("job-%d", len(m.created))
	enabled := job.Enabled != nil && *job.Enabled
	m.jobs[id] = &cron.RemoteJob{ID: id, Enabled: enabled}
	return id, nil
}

func (m *memRegistry) Update(ctx context.Context, id string, patch cron.JobPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return fmt.Errorf("job %s not found", id)
	}
	if patch.Enabled != nil {
		job.Enabled = *patch.Enabled
	}
	return nil
}

// stubCron returns a fixed error from Reconcile.
type stubCron struct {
	err   error
	calls int
}

func (s *stubCron) Reconcile(ctx context.Context, src cron.Source, scope cron.Scope, mode cron.InstallMode) (*cron.Outcome, error) {
	s.calls++
	return nil, s.err
}

type fakeRecorder struct {
	scaffolds map[string]int
	files     map[string]int
	missing   int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{scaffolds: make(map[string]int), files: make(map[string]int)}
}

func (f *fakeRecorder) RecordScaffold(kind, status string) { f.scaffolds[kind+"/"+status]++ }
func (f *fakeRecorder) RecordFile(reason string) { f.files[reason]++ }
func (f *fakeRecorder) SetMissingSkills(count int) { f.missing = count }

type testEnv struct {
	root         string
	workspaceDir string
	recipesDir   string
	registry     *memRegistry
	recorder     *fakeRecorder
	loader       *recipe.Loader
	svc          *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	root := t.TempDir()
	builtinDir := filepath.Join(root, "builtin")
	workspaceDir := filepath.Join(root, "workspace")
	recipesDir := filepath.Join(workspaceDir, "recipes")
	skillsDir := filepath.Join(workspaceDir, "skills")

	require.NoError(t, os.MkdirAll(builtinDir, 0755))
	require.NoError(t, os.MkdirAll(skillsDir, 0755))
	for name, content := range map[string]string{
		"writer.md":          writerRecipe,
		"crew.md":            crewRecipe,
		"needs-skill.md":     needsSkillRecipe,
		"broken-template.md": brokenTemplateRecipe,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(builtinDir, name), []byte(content), 0644))
	}

	env := &testEnv{
		root:         root,
		workspaceDir: workspaceDir,
		recipesDir:   recipesDir,
		registry:     newMemRegistry(),
		recorder:     newFakeRecorder(),
	}
	env.loader = recipe.NewLoader(recipe.LoaderConfig{
		BuiltinDir:   builtinDir,
		WorkspaceDir: recipesDir,
		Logger:       logger.Nop(),
	})
	env.svc = NewService(Config{
		Loader:    env.loader,
		Workspace: workspace.New(workspaceDir),
		SkillsDir: skillsDir,
		Cron:      cron.NewReconciler(env.registry, nil, logger.Nop()),
		CronMode:  cron.ModeOn,
		Recorder:  env.recorder,
		Logger:    logger.Nop(),
		Now:       func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
	return env
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
