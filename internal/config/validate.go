package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Validate проверяет валидность конфигурации
func (c *Config) Validate() []error {
	var errors []error

	if c.Workspace.Path == "" {
		errors = append(errors, fmt.Errorf("workspace.path is required"))
	}
	subdirs := []struct{ field, dir string }{
		{"workspace.recipes_dir", c.Workspace.RecipesDir},
		{"workspace.skills_dir", c.Workspace.SkillsDir},
	}
	for _, sd := range subdirs {
		if err := validateSubdir(sd.dir, sd.field); err != nil {
			errors = append(errors, err)
		}
	}

	if c.Gateway.Port < 1 || c.Gateway.Port > 65535 {
		errors = append(errors, fmt.Errorf("gateway.port must be between 1 and 65535, got %d", c.Gateway.Port))
	}
	if c.Gateway.Token != "" && len(c.Gateway.Token) < 8 {
		errors = append(errors, formatValidationError("gateway.token", "is too short (minimum 8 characters)", c.Gateway.Token))
	}
	if c.Gateway.TimeoutSeconds < 1 {
		errors = append(errors, fmt.Errorf("gateway.timeout_seconds must be >= 1"))
	}
	if c.Gateway.RetryAttempts < 1 || c.Gateway.RetryAttempts > 10 {
		errors = append(errors, fmt.Errorf("gateway.retry_attempts must be between 1 and 10"))
	}
	if c.Gateway.RetryDelayMs < 0 {
		errors = append(errors, fmt.Errorf("gateway.retry_delay_ms must be >= 0"))
	}

	switch c.Recipes.CronInstallation {
	case "off", "prompt", "on":
	default:
		errors = append(errors, fmt.Errorf("invalid recipes.cron_installation: %s (expected: off, prompt, on)", c.Recipes.CronInstallation))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errors = append(errors, fmt.Errorf("invalid logging.level: %s (expected: debug, info, warn, error)", c.Logging.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errors = append(errors, fmt.Errorf("invalid logging.format: %s (expected: json, text)", c.Logging.Format))
	}
	if c.Logging.Output == "" {
		errors = append(errors, fmt.Errorf("logging.output is required"))
	}

	return errors
}

// validateSubdir rejects subdirectory settings that would escape the workspace.
func validateSubdir(dir, fieldName string) error {
	if dir == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	if filepath.IsAbs(dir) {
		return fmt.Errorf("%s must be relative to workspace.path", fieldName)
	}
	for _, part := range strings.Split(filepath.ToSlash(dir), "/") {
		if part == ".." {
			return fmt.Errorf("%s contains potentially dangerous path traversal sequence", fieldName)
		}
	}
	return nil
}
