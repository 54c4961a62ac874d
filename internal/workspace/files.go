package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteReason explains the outcome of WriteFileSafely.
type WriteReason string

const (
	ReasonOK     WriteReason = "ok"
	ReasonExists WriteReason = "exists"
)

// WriteResult is the outcome of WriteFileSafely.
type WriteResult struct {
	Path   string      `json:"path"`
	Wrote  bool        `json:"wrote"`
	Reason WriteReason `json:"reason"`
}

// WriteFileSafely writes content to path, creating parent directories.
// An existing file is left untouched unless overwrite is set.
func WriteFileSafely(path, content string, overwrite bool) (WriteResult, error) {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return WriteResult{Path: path, Reason: ReasonExists}, nil
		} else if !os.IsNotExist(err) {
			return WriteResult{}, fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return WriteResult{}, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return WriteResult{}, fmt.Errorf("failed to write %s: %w", path, err)
	}

	return WriteResult{Path: path, Wrote: true, Reason: ReasonOK}, nil
}

// MissingSkills returns the skill ids that have no directory under skillsDir,
// in declaration order and without duplicates.
func MissingSkills(skillsDir string, skills []string) []string {
	seen := make(map[string]bool, len(skills))
	var missing []string
	for _, skill := range skills {
		if skill == "" || seen[skill] {
			continue
		}
		seen[skill] = true

		info, err := os.Stat(filepath.Join(skillsDir, skill))
		if err != nil || !info.IsDir() {
			missing = append(missing, skill)
		}
	}
	return missing
}
