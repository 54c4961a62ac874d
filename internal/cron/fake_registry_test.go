package cron

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

type fakeUpdate struct {
	ID    string
	Patch JobPatch
}

// fakeRegistry is an in-memory Registry that records every call.
type fakeRegistry struct {
	mu sync.Mutex

	jobs   map[string]*RemoteJob
	nextID int

	listCalls int
	created   []JobDefinition
	updates   []fakeUpdate

	listErr   error
	createErr error
	updateErr error
	// failCreateAt makes the n-th Create call (1-based) fail with createErr.
	failCreateAt int
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{jobs: make(map[string]*RemoteJob)}
}

func (f *fakeRegistry) List(ctx context.Context) ([]RemoteJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}

	out := make([]RemoteJob, 0, len(f.jobs))
	for _, job := range f.jobs {
		out = append(out, *job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRegistry) Create(ctx context.Context, job JobDefinition) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.created = append(f.created, job)
	if f.createErr != nil && (f.failCreateAt == 0 || f.failCreateAt == len(f.created)) {
		return "", f.createErr
	}

	f.nextID++
	id := fmt.Sprintf("job-%d", f.nextID)
	enabled := job.Enabled != nil && *job.Enabled
	f.jobs[id] = &RemoteJob{ID: id, Enabled: enabled}
	return id, nil
}

func (f *fakeRegistry) Update(ctx context.Context, id string, patch JobPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.updates = append(f.updates, fakeUpdate{ID: id, Patch: patch})
	if f.updateErr != nil {
		return f.updateErr
	}

	job, ok := f.jobs[id]
	if !ok {
		return fmt.Errorf("job %s not found", id)
	}
	if patch.Enabled != nil {
		job.Enabled = *patch.Enabled
	}
	return nil
}

func (f *fakeRegistry) mutations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created) + len(f.updates)
}

func (f *fakeRegistry) resetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = 0
	f.created = nil
	f.updates = nil
}

// fakePrompter answers YesNo with a fixed value.
type fakePrompter struct {
	interactive bool
	answer      bool
	err         error
	headers     []string
}

func (p *fakePrompter) Interactive() bool { return p.interactive }

func (p *fakePrompter) YesNo(ctx context.Context, header string) (bool, error) {
	p.headers = append(p.headers, header)
	if !p.interactive {
		return false, nil
	}
	return p.answer, p.err
}

// staticSource is a recipe stand-in.
type staticSource struct {
	jobs any
}

func (s staticSource) CronJobDeclarations() any { return s.jobs }

type recordedPass struct {
	outcome string
}

// fakeRecorder collects metrics calls.
type fakeRecorder struct {
	actions []string
	passes  []recordedPass
}

func (r *fakeRecorder) RecordAction(action string) { r.actions = append(r.actions, action) }

func (r *fakeRecorder) ObservePass(outcome string, _ time.Duration) {
	r.passes = append(r.passes, recordedPass{outcome: outcome})
}
