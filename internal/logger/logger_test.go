package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Configs(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "json stdout",
			config: Config{Level: "debug", Format: "json", Output: "stdout"},
		},
		{
			name:   "text stderr",
			config: Config{Level: "info", Format: "text", Output: "stderr"},
		},
		{
			name:   "discard",
			config: Config{Level: "warn", Format: "text", Output: OutputDiscard},
		},
		{
			name:    "invalid level",
			config:  Config{Level: "verbose", Format: "json", Output: "stdout"},
			wantErr: true,
		},
		{
			name:    "invalid format",
			config:  Config{Level: "debug", Format: "xml", Output: "stdout"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, log)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "nexrecipes.log")

	log, err := New(Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	log.Info("hello", Field{Key: "recipe_id", Value: "standup-bot"})
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "standup-bot", record["recipe_id"])
}

func TestLogger_ErrorAttachesError(t *testing.T) {
	var buf bytes.Buffer
	log := &Logger{slog: slog.New(slog.NewJSONHandler(&buf, nil))}

	log.Error("boom", errors.New("disk full"), Field{Key: "path", Value: "/tmp/x"})

	out := buf.String()
	assert.Contains(t, out, `"error":"disk full"`)
	assert.Contains(t, out, `"path":"/tmp/x"`)
}

func TestLogger_ErrorWithNilError(t *testing.T) {
	var buf bytes.Buffer
	log := &Logger{slog: slog.New(slog.NewJSONHandler(&buf, nil))}

	log.Error("status", nil)

	assert.NotContains(t, buf.String(), `"error"`)
}

func TestLogger_WithAddsFields(t *testing.T) {
	var buf bytes.Buffer
	log := &Logger{slog: slog.New(slog.NewTextHandler(&buf, nil))}

	child := log.With(Field{Key: "run_id", Value: "abc"})
	child.Info("step")

	assert.True(t, strings.Contains(buf.String(), "run_id=abc"))
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := &Logger{slog: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))}

	log.Debug("hidden")
	log.Info("hidden too")
	log.Warn("visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}

func TestNop(t *testing.T) {
	log := Nop()
	log.Info("nothing")
	assert.NoError(t, log.Close())
}
