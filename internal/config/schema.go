// Package config provides configuration loading and validation for nexrecipes.
// It supports TOML configuration files with environment variable expansion,
// default values, and validation.
//
// Configuration structure:
//   - [workspace]: Gateway workspace root and recipe/skill subdirectories
//   - [gateway]: Host gateway port, auth token and RPC resilience settings
//   - [recipes]: Cron installation mode and skill install behaviour
//   - [logging]: Logging level, format, and output
//   - [metrics]: Prometheus textfile export
//
// Environment variables:
// Environment variables can be referenced using ${VAR} or ${VAR:default} syntax.
// For example: token = "${GATEWAY_TOKEN}"
package config

import "path/filepath"

// Config represents the main application configuration.
type Config struct {
	Workspace WorkspaceConfig `toml:"workspace"`
	Gateway   GatewayConfig   `toml:"gateway"`
	Recipes   RecipesConfig   `toml:"recipes"`
	Logging   LoggingConfig   `toml:"logging"`
	Metrics   MetricsConfig   `toml:"metrics"`
}

// WorkspaceConfig представляет конфигурацию workspace
type WorkspaceConfig struct {
	Path              string `toml:"path"`                // Default agent workspace of the host
	RecipesDir        string `toml:"recipes_dir"`         // Relative to Path
	SkillsDir         string `toml:"skills_dir"`          // Relative to Path (and to scaffolded workspaces)
	BuiltinRecipesDir string `toml:"builtin_recipes_dir"` // Absolute; empty uses the recipes built into the binary
}

// RecipesPath returns the workspace recipes directory.
func (w WorkspaceConfig) RecipesPath() string {
	return filepath.Join(w.Path, w.RecipesDir)
}

// SkillsPath returns the shared skills directory.
func (w WorkspaceConfig) SkillsPath() string {
	return filepath.Join(w.Path, w.SkillsDir)
}

// GatewayConfig представляет параметры подключения к gateway
type GatewayConfig struct {
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	Token          string `toml:"token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	RetryAttempts  int    `toml:"retry_attempts"`
	RetryDelayMs   int    `toml:"retry_delay_ms"`
}

// RecipesConfig mirrors the recipes plugin section of the host configuration.
type RecipesConfig struct {
	CronInstallation string `toml:"cron_installation"` // off, prompt, on
}

// LoggingConfig представляет конфигурацию логирования
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Output string `toml:"output"`
}

// MetricsConfig configures the prometheus textfile written after each CLI run.
type MetricsConfig struct {
	Namespace string `toml:"namespace"`
	Textfile  string `toml:"textfile"` // Empty disables export
}
