package cron

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aatumaykin/nexrecipes/internal/logger"
)

// Source is a recipe that may declare cron jobs.
type Source interface {
	// CronJobDeclarations returns the raw cronJobs value, nil if absent.
	CronJobDeclarations() any
}

// Recorder receives pass metrics.
type Recorder interface {
	RecordAction(action string)
	ObservePass(outcome string, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordAction(string) {}
func (nopRecorder) ObservePass(string, time.Duration) {}

// Reconciler converges the gateway scheduler towards the jobs a recipe declares.
type Reconciler struct {
	registry Registry
	prompter Prompter
	logger   *logger.Logger
	recorder Recorder
	now      func() time.Time
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(rc *Reconciler) {
		if r != nil {
			rc.recorder = r
		}
	}
}

// WithClock overrides the time source used for updatedAtMs.
func WithClock(now func() time.Time) Option {
	return func(rc *Reconciler) {
		rc.now = now
	}
}

// NewReconciler creates a reconciler. prompter may be nil.
func NewReconciler(registry Registry, prompter Prompter, log *logger.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		registry: registry,
		prompter: prompter,
		logger:   log,
		recorder: nopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile normalizes the jobs src declares, resolves consent for mode and
// applies the result to scope. Validation errors abort before any remote call.
func (r *Reconciler) Reconcile(ctx context.Context, src Source, scope Scope, mode InstallMode) (*Outcome, error) {
	desired, err := Normalize(src.CronJobDeclarations())
	if err != nil {
		return nil, err
	}
	for _, spec := range desired {
		for _, warning := range ScheduleWarnings(spec) {
			r.logger.Warn("cron job may be rejected by the gateway",
				logger.Field{Key: "recipe_id", Value: scope.RecipeID},
				logger.Field{Key: "job_id", Value: spec.ID},
				logger.Field{Key: "warning", Value: warning})
		}
	}
	if len(desired) == 0 {
		return &Outcome{OK: true, Note: NoteNoCronJobs}, nil
	}

	consent, err := ResolveConsent(ctx, mode, scope.RecipeID, len(desired), r.prompter, r.logger)
	if err != nil {
		return nil, err
	}
	if !consent.Proceed {
		r.logger.Info("cron jobs not installed",
			logger.Field{Key: "recipe_id", Value: scope.RecipeID},
			logger.Field{Key: "note", Value: string(consent.Note)})
		return &Outcome{OK: true, Note: consent.Note, DesiredCount: len(desired)}, nil
	}

	return r.Apply(ctx, scope, desired, consent.UserOptIn)
}

// Apply runs one create/update/disable-orphan pass for already normalized jobs.
// The mapping file is saved after every successful remote mutation and at the end.
func (r *Reconciler) Apply(ctx context.Context, scope Scope, desired []Spec, userOptIn bool) (*Outcome, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	start := r.now()
	log := r.logger.With(
		logger.Field{Key: "run_id", Value: uuid.NewString()},
		logger.Field{Key: "scope", Value: string(scope.Kind) + ":" + scope.ID()},
		logger.Field{Key: "recipe_id", Value: scope.RecipeID},
	)

	store := NewMappingStore(scope.StateDir, log)
	p := &pass{
		reconciler: r,
		scope:      scope,
		store:      store,
		state:      store.Load(),
		remote:     make(map[string]RemoteJob),
		logger:     log,
	}

	outcome, err := p.run(ctx, desired, userOptIn)
	elapsed := r.now().Sub(start)
	if err != nil {
		r.recorder.ObservePass("error", elapsed)
		log.ErrorCtx(ctx, "cron reconcile failed", err,
			logger.Field{Key: "results", Value: len(p.results)})
		return nil, err
	}

	r.recorder.ObservePass("ok", elapsed)
	log.InfoCtx(ctx, "cron reconcile finished",
		logger.Field{Key: "changed", Value: outcome.Changed},
		logger.Field{Key: "results", Value: len(outcome.Results)})
	return outcome, nil
}

// pass holds the working state of one Apply call.
type pass struct {
	reconciler *Reconciler
	scope      Scope
	store      *MappingStore
	state      *MappingState
	remote     map[string]RemoteJob
	results    []Result
	logger     *logger.Logger
}

func (p *pass) run(ctx context.Context, desired []Spec, userOptIn bool) (*Outcome, error) {
	if p.hasInstalledEntries() {
		jobs, err := p.reconciler.registry.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, job := range jobs {
			p.remote[job.ID] = job
		}
	}

	desiredIDs := make(map[string]bool, len(desired))
	for _, spec := range desired {
		desiredIDs[spec.ID] = true
		if err := p.reconcileJob(ctx, spec, userOptIn); err != nil {
			return nil, err
		}
	}

	if err := p.sweepOrphans(ctx, desiredIDs); err != nil {
		return nil, err
	}

	if err := p.store.Save(p.state); err != nil {
		return nil, err
	}

	return outcomeFromResults(p.results), nil
}

func (p *pass) hasInstalledEntries() bool {
	for _, key := range p.state.KeysWithPrefix(p.scope.KeyPrefix()) {
		if p.state.Entries[key].InstalledCronID != "" {
			return true
		}
	}
	return false
}

func (p *pass) reconcileJob(ctx context.Context, spec Spec, userOptIn bool) error {
	key := MappingKey(p.scope, spec.ID)

	name := spec.Name
	if name == "" {
		name = p.scope.DefaultJobName(spec.ID)
	}
	hash, err := HashSpec(HashInput(spec, name))
	if err != nil {
		return err
	}

	wantEnabled := userOptIn && spec.EnabledByDefault

	prev, mapped := p.state.Entries[key]
	var existing RemoteJob
	live := false
	if mapped && prev.InstalledCronID != "" {
		existing, live = p.remote[prev.InstalledCronID]
	}

	if !live {
		return p.create(ctx, key, spec, name, hash, wantEnabled)
	}

	if prev.SpecHash != hash {
		if err := p.reconciler.registry.Update(ctx, existing.ID, BuildPatch(spec, name)); err != nil {
			return err
		}
		p.record(Result{Action: ActionUpdated, Key: key, InstalledCronID: existing.ID})
		if err := p.commit(key, existing.ID, hash, false); err != nil {
			return err
		}
	} else {
		p.record(Result{Action: ActionUnchanged, Key: key, InstalledCronID: existing.ID})
	}

	if !userOptIn && existing.Enabled {
		if err := p.reconciler.registry.Update(ctx, existing.ID, DisablePatch()); err != nil {
			return err
		}
		existing.Enabled = false
		p.remote[existing.ID] = existing
		p.record(Result{Action: ActionDisabled, Key: key, InstalledCronID: existing.ID})
		if err := p.commit(key, existing.ID, hash, false); err != nil {
			return err
		}
	}

	p.touch(key, existing.ID, hash, false)
	return nil
}

func (p *pass) create(ctx context.Context, key string, spec Spec, name, hash string, enabled bool) error {
	id, err := p.reconciler.registry.Create(ctx, BuildDefinition(spec, name, enabled))
	if err != nil {
		p.logger.Warn("cron job create failed, no mapping recorded",
			logger.Field{Key: "key", Value: key},
			logger.Field{Key: "error", Value: err.Error()})
		return err
	}

	p.remote[id] = RemoteJob{ID: id, Enabled: enabled}
	p.record(Result{Action: ActionCreated, Key: key, InstalledCronID: id, Enabled: &enabled})
	return p.commit(key, id, hash, false)
}

// sweepOrphans disables jobs of this scope and recipe that are no longer declared.
func (p *pass) sweepOrphans(ctx context.Context, desiredIDs map[string]bool) error {
	prefix := p.scope.KeyPrefix()
	for _, key := range p.state.KeysWithPrefix(prefix) {
		if desiredIDs[key[len(prefix):]] {
			continue
		}

		entry := p.state.Entries[key]
		if job, ok := p.remote[entry.InstalledCronID]; ok && job.Enabled {
			if err := p.reconciler.registry.Update(ctx, job.ID, DisablePatch()); err != nil {
				return err
			}
			job.Enabled = false
			p.remote[job.ID] = job
			p.record(Result{Action: ActionDisabledRemoved, Key: key, InstalledCronID: job.ID})
			if err := p.commit(key, entry.InstalledCronID, entry.SpecHash, true); err != nil {
				return err
			}
			continue
		}

		p.touch(key, entry.InstalledCronID, entry.SpecHash, true)
	}
	return nil
}

// touch updates the in-memory entry.
func (p *pass) touch(key, id, hash string, orphaned bool) {
	p.state.Entries[key] = MappingEntry{
		InstalledCronID: id,
		SpecHash:        hash,
		Orphaned:        orphaned,
		UpdatedAtMs:     p.reconciler.now().UnixMilli(),
	}
}

// commit updates the entry and persists the mapping right after a remote mutation.
func (p *pass) commit(key, id, hash string, orphaned bool) error {
	p.touch(key, id, hash, orphaned)
	return p.store.Save(p.state)
}

func (p *pass) record(result Result) {
	p.results = append(p.results, result)
	p.reconciler.recorder.RecordAction(string(result.Action))
	p.logger.Debug("cron job reconciled",
		logger.Field{Key: "action", Value: string(result.Action)},
		logger.Field{Key: "key", Value: result.Key},
		logger.Field{Key: "installed_cron_id", Value: result.InstalledCronID})
}
