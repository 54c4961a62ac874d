package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load загружает конфигурацию из TOML файла
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	expandEnvVars(&cfg)

	return &cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to defaults otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to access config file: %w", err)
	}
	return Load(path)
}

// Default returns a configuration with every default applied and env vars expanded.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	expandEnvVars(&cfg)
	return &cfg
}

// Encode writes cfg as TOML with the gateway token masked.
func (c *Config) Encode() (string, error) {
	masked := *c
	masked.Gateway.Token = MaskSecret(c.Gateway.Token)

	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(masked); err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	return sb.String(), nil
}

// expandEnvVars расширяет переменные окружения в конфигурации
func expandEnvVars(c *Config) {
	c.Gateway.Token = expandEnv(c.Gateway.Token)
	c.Gateway.Host = expandEnv(c.Gateway.Host)

	c.Workspace.Path = expandHome(expandEnv(c.Workspace.Path))
	c.Workspace.BuiltinRecipesDir = expandHome(expandEnv(c.Workspace.BuiltinRecipesDir))

	c.Recipes.CronInstallation = strings.ToLower(strings.TrimSpace(expandEnv(c.Recipes.CronInstallation)))

	c.Logging.Output = expandEnv(c.Logging.Output)
	c.Metrics.Textfile = expandHome(expandEnv(c.Metrics.Textfile))
}

// expandEnv расширяет переменную окружения формата ${VAR:default}
func expandEnv(s string) string {
	if !strings.HasPrefix(s, "${") {
		return s
	}

	end := strings.Index(s, "}")
	if end == -1 {
		return s
	}

	content := s[2:end]
	if parts := strings.SplitN(content, ":", 2); len(parts) == 2 {
		if val := os.Getenv(parts[0]); val != "" {
			return val
		}
		return parts[1]
	}

	return os.Getenv(content)
}

// expandHome расширяет ~ в пути
func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
