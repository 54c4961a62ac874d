package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aatumaykin/nexrecipes/internal/config"
	"github.com/aatumaykin/nexrecipes/internal/cron"
	"github.com/aatumaykin/nexrecipes/internal/gateway"
	"github.com/aatumaykin/nexrecipes/internal/logger"
	"github.com/aatumaykin/nexrecipes/internal/metrics"
	"github.com/aatumaykin/nexrecipes/internal/prompt"
	"github.com/aatumaykin/nexrecipes/internal/recipe"
	"github.com/aatumaykin/nexrecipes/internal/scaffold"
	"github.com/aatumaykin/nexrecipes/internal/workspace"
	"github.com/spf13/cobra"
)

// app holds the components shared by every command.
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	metrics   *metrics.PrometheusMetrics
	workspace *workspace.Workspace
	loader    *recipe.Loader
}

// newApp loads .env and config, then builds the logger, metrics and recipe loader.
func newApp() (*app, error) {
	if err := config.LoadEnvOptional(envPath); err != nil {
		return nil, err
	}

	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.SetDefault(log)

	return &app{
		cfg:       cfg,
		log:       log,
		metrics:   metrics.InitPrometheusMetrics(cfg.Metrics.Namespace),
		workspace: workspace.New(cfg.Workspace.Path),
		loader: recipe.NewLoader(recipe.LoaderConfig{
			BuiltinDir:   cfg.Workspace.BuiltinRecipesDir,
			WorkspaceDir: cfg.Workspace.RecipesPath(),
			Logger:       log,
		}),
	}, nil
}

// close exports metrics when configured and releases the logger.
func (a *app) close() {
	if path := a.cfg.Metrics.Textfile; path != "" {
		if err := a.metrics.WriteTextfile(path); err != nil {
			a.log.Warn("failed to write metrics textfile",
				logger.Field{Key: "path", Value: path},
				logger.Field{Key: "error", Value: err.Error()})
		}
	}
	_ = a.log.Close()
}

// installMode returns the configured mode unless override is set.
func (a *app) installMode(override string) (cron.InstallMode, error) {
	if override != "" {
		return cron.ParseInstallMode(override)
	}
	return cron.ParseInstallMode(a.cfg.Recipes.CronInstallation)
}

// reconciler wires the gateway registry, the terminal prompter and metrics.
func (a *app) reconciler(cmd *cobra.Command) *cron.Reconciler {
	client := gateway.NewClient(gateway.FromConfig(a.cfg.Gateway), a.log)

	terminal := prompt.NewTerminal(
		prompt.WithInput(cmd.InOrStdin()),
		prompt.WithOutput(cmd.ErrOrStderr()),
	)

	return cron.NewReconciler(
		gateway.NewCronRegistry(client),
		terminal,
		a.log,
		cron.WithRecorder(a.metrics),
	)
}

// scaffolder builds the scaffold service.
func (a *app) scaffolder(cmd *cobra.Command, mode cron.InstallMode) *scaffold.Service {
	return scaffold.NewService(scaffold.Config{
		Loader:    a.loader,
		Workspace: a.workspace,
		SkillsDir: a.cfg.Workspace.SkillsPath(),
		Cron:      a.reconciler(cmd),
		CronMode:  mode,
		Recorder:  a.metrics,
		Logger:    a.log,
	})
}

// commandContext applies --timeout to the command context.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
