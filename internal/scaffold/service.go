// Package scaffold turns recipes into agent and team workspaces.
//
// A scaffold run loads the recipe, checks its required skills, stores a
// workspace copy of the recipe under a free id, renders the recipe files
// into the new workspace and finally reconciles the recipe cron jobs with
// the gateway. Nothing is written when required skills are missing.
package scaffold

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aatumaykin/nexrecipes/internal/cron"
	"github.com/aatumaykin/nexrecipes/internal/logger"
	"github.com/aatumaykin/nexrecipes/internal/recipe"
	"github.com/aatumaykin/nexrecipes/internal/workspace"
)

// Scaffold statuses reported to the Recorder.
const (
	StatusOK            = "ok"
	StatusMissingSkills = "missing-skills"
	StatusError         = "error"
)

// Recorder receives scaffold metrics.
type Recorder interface {
	RecordScaffold(kind, status string)
	RecordFile(reason string)
	SetMissingSkills(count int)
}

type nopRecorder struct{}

func (nopRecorder) RecordScaffold(string, string) {}
func (nopRecorder) RecordFile(string) {}
func (nopRecorder) SetMissingSkills(int) {}

// CronReconciler installs the cron jobs a recipe declares.
type CronReconciler interface {
	Reconcile(ctx context.Context, src cron.Source, scope cron.Scope, mode cron.InstallMode) (*cron.Outcome, error)
}

// Config represents configuration for the Service.
type Config struct {
	Loader    *recipe.Loader
	Workspace *workspace.Workspace // Default host workspace; scaffolds go next to it
	SkillsDir string
	Cron      CronReconciler
	CronMode  cron.InstallMode
	Recorder  Recorder
	Logger    *logger.Logger
	Now       func() time.Time
}

// Service scaffolds agents and teams.
type Service struct {
	loader    *recipe.Loader
	workspace *workspace.Workspace
	skillsDir string
	cron      CronReconciler
	cronMode  cron.InstallMode
	recorder  Recorder
	logger    *logger.Logger
	now       func() time.Time
}

// NewService creates a new Service instance.
func NewService(cfg Config) *Service {
	s := &Service{
		loader:    cfg.Loader,
		workspace: cfg.Workspace,
		skillsDir: cfg.SkillsDir,
		cron:      cfg.Cron,
		cronMode:  cfg.CronMode,
		recorder:  cfg.Recorder,
		logger:    cfg.Logger,
		now:       cfg.Now,
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}
	if s.logger == nil {
		s.logger = logger.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.cronMode == "" {
		s.cronMode = cron.ModePrompt
	}
	return s
}

// loadChecked loads a recipe and rejects one of another kind.
func (s *Service) loadChecked(recipeID string, want recipe.Kind) (*recipe.Recipe, error) {
	rec, err := s.loader.Load(recipeID)
	if err != nil {
		return nil, err
	}
	if kind := rec.EffectiveKind(want); kind != want {
		article := "a"
		if want == recipe.KindAgent {
			article = "an"
		}
		return nil, fmt.Errorf("recipe is not %s %s recipe: kind=%s", article, want, kind)
	}
	return rec, nil
}

// missingSkills reports required skills that are not installed.
func (s *Service) missingSkills(rec *recipe.Recipe) []string {
	missing := workspace.MissingSkills(s.skillsDir, rec.RequiredSkills)
	s.recorder.SetMissingSkills(len(missing))
	if len(missing) > 0 {
		s.logger.Warn("recipe requires missing skills",
			logger.Field{Key: "recipe_id", Value: rec.ID},
			logger.Field{Key: "skills", Value: strings.Join(missing, ",")})
	}
	return missing
}

// copyOptions configures storeWorkspaceRecipe.
type copyOptions struct {
	baseID          string
	overwrite       bool
	autoIncrement   bool
	isTaken         func(string) bool
	restrictBuiltin bool
}

// storeWorkspaceRecipe picks a free id and writes the recipe copy into the
// workspace recipes directory.
func (s *Service) storeWorkspaceRecipe(rec *recipe.Recipe, opts copyOptions) (string, workspace.WriteResult, error) {
	baseID := strings.TrimSpace(opts.baseID)
	if recipe.ValidateID(baseID) != nil {
		baseID = recipe.Slugify(baseID)
	}
	if err := recipe.ValidateID(baseID); err != nil {
		return "", workspace.WriteResult{}, err
	}

	pick := recipe.PickOptions{
		BaseID:        baseID,
		Overwrite:     opts.overwrite,
		AutoIncrement: opts.autoIncrement,
		IsTaken:       opts.isTaken,
	}
	if opts.restrictBuiltin {
		pick.WorkspaceFileExists = s.loader.WorkspaceFileExists
	}
	id, err := recipe.PickID(pick)
	if err != nil {
		return "", workspace.WriteResult{}, err
	}

	recipesDir := s.loader.WorkspaceDir()
	if recipesDir == "" {
		return "", workspace.WriteResult{}, fmt.Errorf("workspace recipes directory is not configured")
	}

	copied := *rec
	copied.ID = id
	if copied.Name == "" {
		copied.Name = id
	}
	md, err := recipe.Marshal(&copied)
	if err != nil {
		return "", workspace.WriteResult{}, err
	}

	res, err := workspace.WriteFileSafely(filepath.Join(recipesDir, id+".md"), md, opts.overwrite)
	if err != nil {
		return "", workspace.WriteResult{}, err
	}
	s.recorder.RecordFile(string(res.Reason))
	return id, res, nil
}

// renderFiles writes the recipe files into dst. Role-prefixed templates
// ("<role>.<name>") take priority over plain ones when role is set.
func (s *Service) renderFiles(dst *workspace.Workspace, rec *recipe.Recipe, role string, vars map[string]string, update bool) ([]workspace.WriteResult, error) {
	results := make([]workspace.WriteResult, 0, len(rec.Files))
	for _, f := range rec.Files {
		raw, ok := lookupTemplate(rec.Templates, role, f.Template)
		if !ok {
			return results, fmt.Errorf("missing template: %s", f.Template)
		}

		overwrite, err := overwriteFor(f.Mode, update)
		if err != nil {
			return results, fmt.Errorf("file %s: %w", f.Path, err)
		}

		target, err := dst.ResolvePath(f.Path)
		if err != nil {
			return results, fmt.Errorf("file %s: %w", f.Path, err)
		}

		for _, key := range recipe.Placeholders(raw) {
			if _, ok := vars[key]; !ok {
				s.logger.Warn("template references unknown variable",
					logger.Field{Key: "template", Value: f.Template},
					logger.Field{Key: "variable", Value: key})
			}
		}

		res, err := workspace.WriteFileSafely(target, recipe.Render(raw, vars), overwrite)
		if err != nil {
			return results, err
		}
		s.recorder.RecordFile(string(res.Reason))
		results = append(results, res)
	}
	return results, nil
}

func lookupTemplate(templates map[string]string, role, name string) (string, bool) {
	if role != "" {
		if raw, ok := templates[role+"."+name]; ok {
			return raw, true
		}
	}
	raw, ok := templates[name]
	return raw, ok
}

// overwriteFor applies the file mode. Without one, updates overwrite and
// fresh scaffolds only create.
func overwriteFor(mode recipe.FileMode, update bool) (bool, error) {
	switch mode {
	case "":
		return update, nil
	case recipe.ModeOverwrite:
		return true, nil
	case recipe.ModeCreateOnly:
		return false, nil
	default:
		return false, fmt.Errorf("invalid file mode %q", mode)
	}
}

// reconcileCron runs the cron pass. Its errors are returned unchanged.
func (s *Service) reconcileCron(ctx context.Context, rec *recipe.Recipe, scope cron.Scope) (*cron.Outcome, error) {
	if s.cron == nil {
		return nil, fmt.Errorf("cron reconciler is not configured")
	}
	return s.cron.Reconcile(ctx, rec, scope, s.cronMode)
}
