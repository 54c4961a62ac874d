package config

const (
	DefaultWorkspacePath    = "~/.openclaw/workspace"
	DefaultRecipesDir       = "recipes"
	DefaultSkillsDir        = "skills"
	DefaultGatewayHost      = "127.0.0.1"
	DefaultGatewayPort      = 18789
	DefaultGatewayTimeout   = 30
	DefaultRetryAttempts    = 3
	DefaultRetryDelayMs     = 150
	DefaultCronInstallation = "prompt"
	DefaultMetricsNamespace = "nexrecipes"
)

// applyDefaults применяет значения по умолчанию
func applyDefaults(c *Config) {
	if c.Workspace.Path == "" {
		c.Workspace.Path = DefaultWorkspacePath
	}
	if c.Workspace.RecipesDir == "" {
		c.Workspace.RecipesDir = DefaultRecipesDir
	}
	if c.Workspace.SkillsDir == "" {
		c.Workspace.SkillsDir = DefaultSkillsDir
	}

	if c.Gateway.Host == "" {
		c.Gateway.Host = DefaultGatewayHost
	}
	if c.Gateway.Port == 0 {
		c.Gateway.Port = DefaultGatewayPort
	}
	if c.Gateway.TimeoutSeconds == 0 {
		c.Gateway.TimeoutSeconds = DefaultGatewayTimeout
	}
	if c.Gateway.RetryAttempts == 0 {
		c.Gateway.RetryAttempts = DefaultRetryAttempts
	}
	if c.Gateway.RetryDelayMs == 0 {
		c.Gateway.RetryDelayMs = DefaultRetryDelayMs
	}

	if c.Recipes.CronInstallation == "" {
		c.Recipes.CronInstallation = DefaultCronInstallation
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stderr"
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}
}
