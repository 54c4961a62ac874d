// Package workspace manages the directories recipes scaffold into.
//
// The host keeps one default workspace (for example ~/.openclaw/workspace).
// Scaffolded agents and teams live next to it:
//
//	~/.openclaw/workspace            default workspace, recipes/ and skills/
//	~/.openclaw/workspace-<agentId>  agent workspace
//	~/.openclaw/workspace-<teamId>   team workspace, roles/<role> per member
//
// Example usage:
//
//	ws := workspace.New("~/.openclaw/workspace")
//	agent := workspace.New(ws.AgentDir("acme"))
//	if err := agent.EnsureDir(); err != nil {
//	    log.Fatal(err)
//	}
//	res, err := workspace.WriteFileSafely(agent.Subpath("SOUL.md"), "...", false)
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// SiblingPrefix prefixes agent and team workspace directory names.
	SiblingPrefix = "workspace-"
	// SubdirRoles holds per-role directories inside a team workspace.
	SubdirRoles = "roles"
)

// Workspace is a directory with path resolution confined to it.
type Workspace struct {
	path     string // Expanded workspace path
	basePath string // Original path (may contain ~)
}

// New creates a Workspace rooted at root. A leading ~ is expanded.
func New(root string) *Workspace {
	return &Workspace{
		path:     expandHome(root),
		basePath: root,
	}
}

// Path returns the expanded workspace path.
func (w *Workspace) Path() string {
	return w.path
}

// BasePath returns the path as given to New.
func (w *Workspace) BasePath() string {
	return w.basePath
}

// AgentDir returns the workspace directory of a scaffolded agent.
func (w *Workspace) AgentDir(agentID string) string {
	return w.sibling(agentID)
}

// TeamDir returns the workspace directory of a scaffolded team.
func (w *Workspace) TeamDir(teamID string) string {
	return w.sibling(teamID)
}

func (w *Workspace) sibling(id string) string {
	return filepath.Join(filepath.Dir(filepath.Clean(w.path)), SiblingPrefix+id)
}

// EnsureDir creates the workspace directory if it doesn't exist.
func (w *Workspace) EnsureDir() error {
	if w.path == "" {
		return fmt.Errorf("workspace path is empty")
	}
	return ensureDir(w.path)
}

// Subpath returns name joined to the workspace path.
func (w *Workspace) Subpath(name string) string {
	return filepath.Join(w.path, name)
}

// EnsureSubpath creates a subdirectory within the workspace if it doesn't exist.
func (w *Workspace) EnsureSubpath(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("subdirectory name is empty")
	}
	if err := w.EnsureDir(); err != nil {
		return "", fmt.Errorf("failed to ensure workspace: %w", err)
	}
	sub, err := w.ResolvePath(name)
	if err != nil {
		return "", err
	}
	if err := ensureDir(sub); err != nil {
		return "", err
	}
	return sub, nil
}

// ResolvePath resolves a relative path within the workspace.
// Absolute paths and paths escaping the workspace are rejected.
func (w *Workspace) ResolvePath(relPath string) (string, error) {
	if strings.TrimSpace(relPath) == "" {
		return "", fmt.Errorf("path is empty")
	}
	if filepath.IsAbs(relPath) {
		return "", fmt.Errorf("path must be relative to the workspace: %s", relPath)
	}

	absWorkspace, err := filepath.Abs(w.path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute workspace path: %w", err)
	}
	absJoined := filepath.Join(absWorkspace, filepath.Clean(relPath))

	rel, err := filepath.Rel(absWorkspace, absJoined)
	if err != nil {
		return "", fmt.Errorf("failed to check path relationship: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path attempts to escape workspace: %s", relPath)
	}

	return absJoined, nil
}

func ensureDir(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("path exists but is not a directory: %s", path)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access %s: %w", path, err)
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// expandHome expands ~ to the user's home directory.
func expandHome(path string) string {
	if len(path) > 0 && path[0] == '~' && (len(path) == 1 || path[1] == '/') {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if len(path) == 1 {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
