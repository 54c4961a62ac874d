package scaffold

import (
	"context"
	"strings"

	"github.com/aatumaykin/nexrecipes/internal/cron"
	"github.com/aatumaykin/nexrecipes/internal/logger"
	"github.com/aatumaykin/nexrecipes/internal/recipe"
	"github.com/aatumaykin/nexrecipes/internal/workspace"
)

// AgentOptions configures ScaffoldAgent.
type AgentOptions struct {
	RecipeID        string
	AgentID         string
	Name            string
	RecipeIDBase    string // Workspace recipe id; defaults to AgentID
	Overwrite       bool   // Re-render files without an explicit mode
	OverwriteRecipe bool
	AutoIncrement   bool
}

// AgentResult is the outcome of ScaffoldAgent. OK is false only when
// required skills are missing; nothing is written in that case.
type AgentResult struct {
	OK              bool                    `json:"ok"`
	AgentID         string                  `json:"agentId"`
	WorkspaceDir    string                  `json:"workspaceDir,omitempty"`
	RecipeID        string                  `json:"recipeId,omitempty"`
	RecipeFile      *workspace.WriteResult  `json:"recipeFile,omitempty"`
	Files           []workspace.WriteResult `json:"files,omitempty"`
	Cron            *cron.Outcome           `json:"cron,omitempty"`
	MissingSkills   []string                `json:"missingSkills,omitempty"`
	InstallCommands []string                `json:"installCommands,omitempty"`
}

// ScaffoldAgent creates or updates the workspace of a single agent.
func (s *Service) ScaffoldAgent(ctx context.Context, opts AgentOptions) (*AgentResult, error) {
	res, err := s.scaffoldAgent(ctx, opts)
	switch {
	case err != nil:
		s.recorder.RecordScaffold(string(recipe.KindAgent), StatusError)
	case !res.OK:
		s.recorder.RecordScaffold(string(recipe.KindAgent), StatusMissingSkills)
	default:
		s.recorder.RecordScaffold(string(recipe.KindAgent), StatusOK)
	}
	return res, err
}

func (s *Service) scaffoldAgent(ctx context.Context, opts AgentOptions) (*AgentResult, error) {
	agentID := strings.TrimSpace(opts.AgentID)
	if err := recipe.ValidateID(agentID); err != nil {
		return nil, err
	}

	rec, err := s.loadChecked(opts.RecipeID, recipe.KindAgent)
	if err != nil {
		return nil, err
	}

	if missing := s.missingSkills(rec); len(missing) > 0 {
		return &AgentResult{
			AgentID:         agentID,
			MissingSkills:   missing,
			InstallCommands: InstallCommands(missing),
		}, nil
	}

	baseID := opts.RecipeIDBase
	if strings.TrimSpace(baseID) == "" {
		baseID = agentID
	}
	recipeID, recipeFile, err := s.storeWorkspaceRecipe(rec, copyOptions{
		baseID:          baseID,
		overwrite:       opts.OverwriteRecipe,
		autoIncrement:   opts.AutoIncrement,
		isTaken:         s.loader.IsTaken,
		restrictBuiltin: true,
	})
	if err != nil {
		return nil, err
	}

	dir := workspace.New(s.workspace.AgentDir(agentID))
	if err := dir.EnsureDir(); err != nil {
		return nil, err
	}

	name := opts.Name
	if name == "" {
		name = rec.DisplayName()
	}
	vars := map[string]string{
		"agentId":   agentID,
		"agentName": name,
	}
	files, err := s.renderFiles(dir, rec, "", vars, opts.Overwrite)
	if err != nil {
		return nil, err
	}

	s.logger.Info("agent scaffolded",
		logger.Field{Key: "agent_id", Value: agentID},
		logger.Field{Key: "recipe_id", Value: rec.ID},
		logger.Field{Key: "workspace_recipe_id", Value: recipeID},
		logger.Field{Key: "dir", Value: dir.Path()})

	outcome, err := s.reconcileCron(ctx, rec, cron.AgentScope(agentID, rec.ID, dir.Path()))
	if err != nil {
		return nil, err
	}

	return &AgentResult{
		OK:           true,
		AgentID:      agentID,
		WorkspaceDir: dir.Path(),
		RecipeID:     recipeID,
		RecipeFile:   &recipeFile,
		Files:        files,
		Cron:         outcome,
	}, nil
}
