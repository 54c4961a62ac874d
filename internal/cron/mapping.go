package cron

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aatumaykin/nexrecipes/internal/logger"
)

const (
	// StateSubdirectory is the subdirectory of a workspace holding the mapping file
	StateSubdirectory = "notes"

	// StateFilename is the mapping file name
	StateFilename = "cron-jobs.json"

	// StateVersion is the only mapping file version this package reads
	StateVersion = 1
)

// MappingEntry links one recipe job to the job installed in the gateway.
type MappingEntry struct {
	InstalledCronID string `json:"installedCronId"`
	SpecHash        string `json:"specHash"`
	Orphaned        bool   `json:"orphaned"`
	UpdatedAtMs     int64  `json:"updatedAtMs"`
}

// MappingState is the persisted key -> entry table.
type MappingState struct {
	Version int                     `json:"version"`
	Entries map[string]MappingEntry `json:"entries"`
}

// NewMappingState returns an empty state at the current version.
func NewMappingState() *MappingState {
	return &MappingState{Version: StateVersion, Entries: make(map[string]MappingEntry)}
}

// KeysWithPrefix returns the entry keys starting with prefix, sorted.
func (m *MappingState) KeysWithPrefix(prefix string) []string {
	var keys []string
	for key := range m.Entries {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// MappingStore loads and saves the mapping file of one workspace.
// There is no locking: callers serialize passes per scope and recipe.
type MappingStore struct {
	filePath string
	logger   *logger.Logger
}

// StatePath returns the mapping file path under stateDir.
func StatePath(stateDir string) string {
	return filepath.Join(stateDir, StateSubdirectory, StateFilename)
}

// NewMappingStore creates a store for the mapping file under stateDir.
func NewMappingStore(stateDir string, log *logger.Logger) *MappingStore {
	return &MappingStore{
		filePath: StatePath(stateDir),
		logger:   log,
	}
}

// Path returns the mapping file path.
func (s *MappingStore) Path() string {
	return s.filePath
}

// Load reads the mapping file. It never fails: a missing, unreadable,
// corrupt or foreign-version file yields an empty state.
func (s *MappingStore) Load() *MappingState {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to read cron mapping, starting empty",
				logger.Field{Key: "file", Value: s.filePath},
				logger.Field{Key: "error", Value: err.Error()})
		}
		return NewMappingState()
	}

	var state MappingState
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Warn("cron mapping is not valid JSON, starting empty",
			logger.Field{Key: "file", Value: s.filePath},
			logger.Field{Key: "error", Value: err.Error()})
		return NewMappingState()
	}

	if state.Version != StateVersion {
		s.logger.Warn("cron mapping version mismatch, starting empty",
			logger.Field{Key: "file", Value: s.filePath},
			logger.Field{Key: "version", Value: state.Version})
		return NewMappingState()
	}

	if state.Entries == nil {
		state.Entries = make(map[string]MappingEntry)
	}
	return &state
}

// Save writes the whole state using an atomic write.
// A temporary file is created next to the target, synced, then renamed over it.
func (s *MappingStore) Save(state *MappingState) error {
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		s.logger.Error("failed to create cron mapping directory", err,
			logger.Field{Key: "dir", Value: dir})
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		s.logger.Error("failed to marshal cron mapping", err)
		return err
	}
	data = append(data, '\n')

	file, err := os.CreateTemp(dir, StateFilename+".*.tmp")
	if err != nil {
		s.logger.Error("failed to create temporary cron mapping file", err,
			logger.Field{Key: "dir", Value: dir})
		return err
	}
	tmpPath := file.Name()

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpPath)
		s.logger.Error("failed to write temporary cron mapping file", err,
			logger.Field{Key: "file", Value: tmpPath})
		return err
	}

	// Ensure all data is written to disk
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		s.logger.Error("failed to sync temporary cron mapping file", err,
			logger.Field{Key: "file", Value: tmpPath})
		return err
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, s.filePath); err != nil {
		os.Remove(tmpPath)
		s.logger.Error("failed to rename temporary cron mapping file", err,
			logger.Field{Key: "from", Value: tmpPath},
			logger.Field{Key: "to", Value: s.filePath})
		return err
	}

	s.logger.Debug("cron mapping saved",
		logger.Field{Key: "entries", Value: len(state.Entries)},
		logger.Field{Key: "file", Value: s.filePath})

	return nil
}
