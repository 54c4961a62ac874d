package constants

// Config messages
const (
	// MsgConfigValidationError is the message when configuration validation fails.
	MsgConfigValidationError = "❌ Configuration validation failed:\n"

	// MsgConfigValid is the message when configuration is successfully loaded and validated.
	MsgConfigValid = "✅ Configuration is valid: %s\n"

	// MsgConfigValidatePrefix is the prefix for configuration validation errors.
	MsgConfigValidatePrefix = "  - %v\n"
)

// Recipe messages
const (
	// MsgRecipesNotFound is the message when no recipes are available.
	MsgRecipesNotFound = "No recipes found.\n"

	// MsgRecipesRow is one line of the recipes list: id, kind, source, cron job count, name.
	MsgRecipesRow = "%-28s %-6s %-10s %3d  %s\n"

	// MsgRecipesTotal is the message showing the total count of recipes.
	MsgRecipesTotal = "Total: %d recipe(s)\n"
)

// Scaffold messages
const (
	// MsgMissingSkills is the header printed when required skills are missing.
	MsgMissingSkills = "❌ Missing required skills: %s\nInstall them with:\n"
)

// Cron messages
const (
	// MsgCronStateFile is the label for the mapping state file path.
	MsgCronStateFile = "State file: %s\n"

	// MsgCronNoEntries is the message when a scope has no recorded cron jobs.
	MsgCronNoEntries = "No cron jobs recorded for %s.\n"

	// MsgCronStatusRow is one line of cron status: key, installed id, orphaned flag, update time.
	MsgCronStatusRow = "%-56s %-24s orphaned=%-5t updated=%s\n"

	// MsgCronTotal is the message showing the total count of recorded jobs.
	MsgCronTotal = "Total: %d job(s)\n"
)
