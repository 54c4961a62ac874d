package cron

import (
	"context"
	"fmt"
	"strings"

	"github.com/aatumaykin/nexrecipes/internal/logger"
)

// InstallMode is the policy for activating recipe cron jobs.
type InstallMode string

const (
	ModeOff    InstallMode = "off"
	ModePrompt InstallMode = "prompt"
	ModeOn     InstallMode = "on"
)

// ParseInstallMode validates a configured mode. Empty means prompt.
func ParseInstallMode(s string) (InstallMode, error) {
	switch mode := InstallMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return ModePrompt, nil
	case ModeOff, ModePrompt, ModeOn:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid cron installation mode: %q (expected: off, prompt, on)", s)
	}
}

// Note explains an outcome that did not touch the registry.
type Note string

const (
	NoteNoCronJobs           Note = "no-cron-jobs"
	NoteInstallationOff      Note = "cron-installation-off"
	NoteInstallationDeclined Note = "cron-installation-declined"
)

// Prompter asks the operator a yes/no question.
// YesNo must return false without blocking when Interactive reports false.
type Prompter interface {
	Interactive() bool
	YesNo(ctx context.Context, header string) (bool, error)
}

// Consent is the resolved decision for one pass.
type Consent struct {
	Proceed   bool
	UserOptIn bool // false: jobs are kept but forced disabled
	Note      Note // Set when Proceed is false
}

// ConsentHeader is the question shown before installing jobs.
func ConsentHeader(recipeID string, count int) string {
	return fmt.Sprintf("Recipe %s defines %d cron job(s).\nThese run automatically on a schedule. Install them?", recipeID, count)
}

// ResolveConsent decides whether a pass runs and whether jobs may be enabled.
// A nil prompter counts as a non-interactive terminal.
func ResolveConsent(ctx context.Context, mode InstallMode, recipeID string, desiredCount int, prompter Prompter, log *logger.Logger) (Consent, error) {
	switch mode {
	case ModeOff:
		return Consent{Note: NoteInstallationOff}, nil
	case ModeOn:
		return Consent{Proceed: true, UserOptIn: true}, nil
	case ModePrompt:
	default:
		return Consent{}, fmt.Errorf("invalid cron installation mode: %q", mode)
	}

	if prompter == nil || !prompter.Interactive() {
		log.Warn("non-interactive terminal: cron jobs will be installed disabled",
			logger.Field{Key: "recipe_id", Value: recipeID},
			logger.Field{Key: "jobs", Value: desiredCount})
		return Consent{Proceed: true, UserOptIn: false}, nil
	}

	ok, err := prompter.YesNo(ctx, ConsentHeader(recipeID, desiredCount))
	if err != nil {
		return Consent{}, fmt.Errorf("cron consent prompt failed: %w", err)
	}
	if !ok {
		return Consent{Note: NoteInstallationDeclined}, nil
	}
	return Consent{Proceed: true, UserOptIn: true}, nil
}
