package scaffold

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aatumaykin/nexrecipes/internal/cron"
	"github.com/aatumaykin/nexrecipes/internal/logger"
	"github.com/aatumaykin/nexrecipes/internal/recipe"
	"github.com/aatumaykin/nexrecipes/internal/workspace"
)

// TeamMetadataFile records which recipe a team workspace came from.
const TeamMetadataFile = "team.json"

// TeamOptions configures ScaffoldTeam.
type TeamOptions struct {
	RecipeID        string
	TeamID          string
	Name            string
	RecipeIDBase    string // Workspace recipe id; defaults to TeamID
	Overwrite       bool
	OverwriteRecipe bool
	AutoIncrement   bool
}

// TeamMetadata is the content of team.json.
type TeamMetadata struct {
	TeamID       string `json:"teamId"`
	RecipeID     string `json:"recipeId"`
	RecipeName   string `json:"recipeName,omitempty"`
	ScaffoldedAt string `json:"scaffoldedAt"`
}

// TeamMember is one scaffolded role.
type TeamMember struct {
	Role    string                  `json:"role"`
	AgentID string                  `json:"agentId"`
	Dir     string                  `json:"dir"`
	Files   []workspace.WriteResult `json:"files,omitempty"`
}

// TeamResult is the outcome of ScaffoldTeam.
type TeamResult struct {
	OK              bool                   `json:"ok"`
	TeamID          string                 `json:"teamId"`
	TeamDir         string                 `json:"teamDir,omitempty"`
	RecipeID        string                 `json:"recipeId,omitempty"`
	RecipeFile      *workspace.WriteResult `json:"recipeFile,omitempty"`
	Agents          []TeamMember           `json:"agents,omitempty"`
	Cron            *cron.Outcome          `json:"cron,omitempty"`
	MissingSkills   []string               `json:"missingSkills,omitempty"`
	InstallCommands []string               `json:"installCommands,omitempty"`
}

// ScaffoldTeam creates or updates a team workspace with one directory per role.
// Member agent ids are <teamId>-<role>.
func (s *Service) ScaffoldTeam(ctx context.Context, opts TeamOptions) (*TeamResult, error) {
	res, err := s.scaffoldTeam(ctx, opts)
	switch {
	case err != nil:
		s.recorder.RecordScaffold(string(recipe.KindTeam), StatusError)
	case !res.OK:
		s.recorder.RecordScaffold(string(recipe.KindTeam), StatusMissingSkills)
	default:
		s.recorder.RecordScaffold(string(recipe.KindTeam), StatusOK)
	}
	return res, err
}

func (s *Service) scaffoldTeam(ctx context.Context, opts TeamOptions) (*TeamResult, error) {
	teamID := strings.TrimSpace(opts.TeamID)
	if err := recipe.ValidateID(teamID); err != nil {
		return nil, err
	}

	rec, err := s.loadChecked(opts.RecipeID, recipe.KindTeam)
	if err != nil {
		return nil, err
	}
	for i, a := range rec.Agents {
		if err := recipe.ValidateID(a.Role); err != nil {
			return nil, fmt.Errorf("team recipe agents[%d].role: %w", i, err)
		}
	}

	if missing := s.missingSkills(rec); len(missing) > 0 {
		return &TeamResult{
			TeamID:          teamID,
			MissingSkills:   missing,
			InstallCommands: InstallCommands(missing),
		}, nil
	}

	baseID := opts.RecipeIDBase
	if strings.TrimSpace(baseID) == "" {
		baseID = teamID
	}
	recipeID, recipeFile, err := s.storeWorkspaceRecipe(rec, copyOptions{
		baseID:        baseID,
		overwrite:     opts.OverwriteRecipe,
		autoIncrement: opts.AutoIncrement,
		isTaken:       s.loader.WorkspaceFileExists,
	})
	if err != nil {
		return nil, err
	}

	teamDir := workspace.New(s.workspace.TeamDir(teamID))
	if err := teamDir.EnsureDir(); err != nil {
		return nil, err
	}
	if err := s.writeTeamMetadata(teamDir, teamID, rec); err != nil {
		return nil, err
	}

	teamName := opts.Name
	if teamName == "" {
		teamName = rec.DisplayName()
	}

	members := make([]TeamMember, 0, len(rec.Agents))
	for _, a := range rec.Agents {
		member, err := s.scaffoldMember(teamDir, rec, teamID, teamName, a, opts.Overwrite)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	s.logger.Info("team scaffolded",
		logger.Field{Key: "team_id", Value: teamID},
		logger.Field{Key: "recipe_id", Value: rec.ID},
		logger.Field{Key: "workspace_recipe_id", Value: recipeID},
		logger.Field{Key: "members", Value: len(members)},
		logger.Field{Key: "dir", Value: teamDir.Path()})

	outcome, err := s.reconcileCron(ctx, rec, cron.TeamScope(teamID, rec.ID, teamDir.Path()))
	if err != nil {
		return nil, err
	}

	return &TeamResult{
		OK:         true,
		TeamID:     teamID,
		TeamDir:    teamDir.Path(),
		RecipeID:   recipeID,
		RecipeFile: &recipeFile,
		Agents:     members,
		Cron:       outcome,
	}, nil
}

func (s *Service) scaffoldMember(teamDir *workspace.Workspace, rec *recipe.Recipe, teamID, teamName string, a recipe.TeamAgent, update bool) (TeamMember, error) {
	dirPath, err := teamDir.EnsureSubpath(filepath.Join(workspace.SubdirRoles, a.Role))
	if err != nil {
		return TeamMember{}, err
	}

	agentID := teamID + "-" + a.Role
	name := a.Name
	if name == "" {
		name = teamName + " " + a.Role
	}
	vars := map[string]string{
		"teamId":    teamID,
		"teamName":  teamName,
		"role":      a.Role,
		"agentId":   agentID,
		"agentName": name,
	}

	files, err := s.renderFiles(workspace.New(dirPath), rec, a.Role, vars, update)
	if err != nil {
		return TeamMember{}, fmt.Errorf("role %s: %w", a.Role, err)
	}

	return TeamMember{Role: a.Role, AgentID: agentID, Dir: dirPath, Files: files}, nil
}

func (s *Service) writeTeamMetadata(teamDir *workspace.Workspace, teamID string, rec *recipe.Recipe) error {
	meta := TeamMetadata{
		TeamID:       teamID,
		RecipeID:     rec.ID,
		RecipeName:   rec.Name,
		ScaffoldedAt: s.now().UTC().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal team metadata: %w", err)
	}

	res, err := workspace.WriteFileSafely(teamDir.Subpath(TeamMetadataFile), string(data)+"\n", true)
	if err != nil {
		return err
	}
	s.recorder.RecordFile(string(res.Reason))
	return nil
}
