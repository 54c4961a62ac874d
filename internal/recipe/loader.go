package recipe

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aatumaykin/nexrecipes/internal/logger"
)

//go:embed builtin/*.md
var embeddedRecipes embed.FS

// ErrRecipeNotFound is returned by Load for an unknown id.
var ErrRecipeNotFound = errors.New("recipe not found")

const recipeExt = ".md"

// Loader finds recipes in the builtin set and the workspace recipes directory.
// Workspace recipes take priority over builtin recipes with the same id.
type Loader struct {
	builtin      fs.FS
	workspaceDir string
	logger       *logger.Logger
}

// LoaderConfig represents configuration for the Loader.
type LoaderConfig struct {
	BuiltinDir   string // Empty uses the recipes compiled into the binary
	WorkspaceDir string
	Logger       *logger.Logger
}

// NewLoader creates a new Loader instance.
func NewLoader(cfg LoaderConfig) *Loader {
	var builtin fs.FS
	if cfg.BuiltinDir != "" {
		builtin = os.DirFS(cfg.BuiltinDir)
	} else {
		sub, err := fs.Sub(embeddedRecipes, "builtin")
		if err != nil {
			panic(err) // the embed pattern guarantees the directory
		}
		builtin = sub
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Loader{
		builtin:      builtin,
		workspaceDir: cfg.WorkspaceDir,
		logger:       log,
	}
}

// WorkspaceDir returns the workspace recipes directory.
func (l *Loader) WorkspaceDir() string {
	return l.workspaceDir
}

// List returns every recipe sorted by id, workspace recipes shadowing builtin ones.
func (l *Loader) List() ([]*Recipe, error) {
	builtin, err := l.loadFS(l.builtin, ".", SourceBuiltin)
	if err != nil {
		return nil, fmt.Errorf("failed to load builtin recipes: %w", err)
	}

	workspace, err := l.loadWorkspace()
	if err != nil {
		return nil, fmt.Errorf("failed to load workspace recipes: %w", err)
	}

	merged := make(map[string]*Recipe, len(builtin)+len(workspace))
	for _, r := range builtin {
		merged[r.ID] = r
	}
	for _, r := range workspace {
		merged[r.ID] = r
	}

	out := make([]*Recipe, 0, len(merged))
	for _, r := range merged {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Load returns the recipe with the given id.
func (l *Loader) Load(id string) (*Recipe, error) {
	recipes, err := l.List()
	if err != nil {
		return nil, err
	}
	for _, r := range recipes {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrRecipeNotFound, id)
}

// WorkspaceFileExists reports whether <workspaceDir>/<id>.md exists.
func (l *Loader) WorkspaceFileExists(id string) bool {
	if l.workspaceDir == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(l.workspaceDir, id+recipeExt))
	return err == nil
}

// IsTaken reports whether id is used by a workspace file or any loadable recipe.
func (l *Loader) IsTaken(id string) bool {
	if l.WorkspaceFileExists(id) {
		return true
	}
	_, err := l.Load(id)
	return err == nil
}

func (l *Loader) loadWorkspace() ([]*Recipe, error) {
	if l.workspaceDir == "" {
		return nil, nil
	}
	if _, err := os.Stat(l.workspaceDir); os.IsNotExist(err) {
		return nil, nil
	}
	recipes, err := l.loadFS(os.DirFS(l.workspaceDir), ".", SourceWorkspace)
	if err != nil {
		return nil, err
	}
	for _, r := range recipes {
		r.Path = filepath.Join(l.workspaceDir, filepath.FromSlash(r.Path))
	}
	return recipes, nil
}

// loadFS parses every top-level .md file of dir. Broken files are logged and skipped.
func (l *Loader) loadFS(fsys fs.FS, dir string, source Source) ([]*Recipe, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var recipes []*Recipe
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recipeExt) {
			continue
		}

		name := path.Join(dir, entry.Name())
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read recipe %s: %w", name, err)
		}

		r, err := ParseMarkdown(string(data))
		if err != nil {
			l.logger.Warn("skipping invalid recipe",
				logger.Field{Key: "file", Value: name},
				logger.Field{Key: "source", Value: string(source)},
				logger.Field{Key: "error", Value: err.Error()})
			continue
		}
		r.Source = source
		r.Path = name
		recipes = append(recipes, r)
	}

	return recipes, nil
}
