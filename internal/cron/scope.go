package cron

import (
	"errors"
	"fmt"
)

// ScopeKind is the namespace a reconciliation pass applies to.
type ScopeKind string

const (
	ScopeTeam  ScopeKind = "team"
	ScopeAgent ScopeKind = "agent"
)

// Scope identifies the owner of a recipe's jobs and where their mapping state lives.
type Scope struct {
	Kind     ScopeKind
	TeamID   string // Set for ScopeTeam
	AgentID  string // Set for ScopeAgent
	RecipeID string
	StateDir string // Workspace directory holding notes/cron-jobs.json
}

// TeamScope returns the scope of a team workspace.
func TeamScope(teamID, recipeID, stateDir string) Scope {
	return Scope{Kind: ScopeTeam, TeamID: teamID, RecipeID: recipeID, StateDir: stateDir}
}

// AgentScope returns the scope of a single agent workspace.
func AgentScope(agentID, recipeID, stateDir string) Scope {
	return Scope{Kind: ScopeAgent, AgentID: agentID, RecipeID: recipeID, StateDir: stateDir}
}

// ID returns the team or agent id, depending on Kind.
func (s Scope) ID() string {
	if s.Kind == ScopeTeam {
		return s.TeamID
	}
	return s.AgentID
}

// Validate reports a scope that cannot produce stable mapping keys.
func (s Scope) Validate() error {
	switch s.Kind {
	case ScopeTeam, ScopeAgent:
	default:
		return fmt.Errorf("invalid cron scope kind: %q", s.Kind)
	}
	if s.ID() == "" {
		return fmt.Errorf("cron scope %s: id is required", s.Kind)
	}
	if s.RecipeID == "" {
		return errors.New("cron scope: recipe id is required")
	}
	if s.StateDir == "" {
		return errors.New("cron scope: state dir is required")
	}
	return nil
}

// KeyPrefix is shared by every mapping key of this scope and recipe.
func (s Scope) KeyPrefix() string {
	return fmt.Sprintf("%s:%s:recipe:%s:cron:", s.Kind, s.ID(), s.RecipeID)
}

// DefaultJobName is the display name used when a job declares none.
func (s Scope) DefaultJobName(jobID string) string {
	return fmt.Sprintf("%s • %s • %s", s.ID(), s.RecipeID, jobID)
}

// MappingKey joins a desired job with its persisted and remote state.
func MappingKey(s Scope, jobID string) string {
	return s.KeyPrefix() + jobID
}
