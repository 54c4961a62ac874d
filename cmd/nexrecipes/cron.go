package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/aatumaykin/nexrecipes/internal/constants"
	"github.com/aatumaykin/nexrecipes/internal/cron"
	"github.com/spf13/cobra"
)

var (
	cronAgentID string
	cronTeamID  string
	cronMode    string
	cronJSON    bool
)

var cronCmd = &cobra.Command{
	Use:   "cron",
	Short: "Reconcile and inspect recipe cron jobs",
}

var cronReconcileCmd = &cobra.Command{
	Use:   "reconcile <recipe-id>",
	Short: "Install, update and disable the cron jobs of a scaffolded recipe",
	Args:  cobra.ExactArgs(1),
	RunE:  runCronReconcile,
}

var cronStatusCmd = &cobra.Command{
	Use:   "status <recipe-id>",
	Short: "Show the recorded cron job mapping of a scaffolded recipe",
	Args:  cobra.ExactArgs(1),
	RunE:  runCronStatus,
}

// scopeFromFlags builds the cron scope of --agent-id or --team-id.
func (a *app) scopeFromFlags(recipeID string) (cron.Scope, error) {
	switch {
	case cronAgentID != "" && cronTeamID != "":
		return cron.Scope{}, errors.New("use either --agent-id or --team-id, not both")
	case cronAgentID != "":
		return cron.AgentScope(cronAgentID, recipeID, a.workspace.AgentDir(cronAgentID)), nil
	case cronTeamID != "":
		return cron.TeamScope(cronTeamID, recipeID, a.workspace.TeamDir(cronTeamID)), nil
	default:
		return cron.Scope{}, errors.New("--agent-id or --team-id is required")
	}
}

func runCronReconcile(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	scope, err := a.scopeFromFlags(args[0])
	if err != nil {
		return err
	}
	mode, err := a.installMode(cronMode)
	if err != nil {
		return err
	}
	rec, err := a.loader.Load(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	outcome, err := a.reconciler(cmd).Reconcile(ctx, rec, scope, mode)
	if err != nil {
		return err
	}
	return printJSON(cmd, outcome)
}

// statusRow is one entry of `cron status --json`.
type statusRow struct {
	Key string `json:"key"`
	cron.MappingEntry
}

func runCronStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	scope, err := a.scopeFromFlags(args[0])
	if err != nil {
		return err
	}

	store := cron.NewMappingStore(scope.StateDir, a.log)
	state := store.Load()
	keys := state.KeysWithPrefix(scope.KeyPrefix())

	if cronJSON {
		rows := make([]statusRow, 0, len(keys))
		for _, key := range keys {
			rows = append(rows, statusRow{Key: key, MappingEntry: state.Entries[key]})
		}
		return printJSON(cmd, rows)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, constants.MsgCronStateFile, store.Path())
	if len(keys) == 0 {
		fmt.Fprintf(out, constants.MsgCronNoEntries, scope.KeyPrefix())
		return nil
	}
	for _, key := range keys {
		entry := state.Entries[key]
		updated := time.UnixMilli(entry.UpdatedAtMs).UTC().Format(time.RFC3339)
		fmt.Fprintf(out, constants.MsgCronStatusRow, key, entry.InstalledCronID, entry.Orphaned, updated)
	}
	fmt.Fprintf(out, constants.MsgCronTotal, len(keys))
	return nil
}

func init() {
	for _, c := range []*cobra.Command{cronReconcileCmd, cronStatusCmd} {
		c.Flags().StringVarP(&cronAgentID, "agent-id", "a", "", "agent scope")
		c.Flags().StringVarP(&cronTeamID, "team-id", "t", "", "team scope")
	}
	cronReconcileCmd.Flags().StringVar(&cronMode, "cron-installation", "", "override recipes.cron_installation (off, prompt, on)")
	cronStatusCmd.Flags().BoolVar(&cronJSON, "json", false, "print JSON instead of a table")

	cronCmd.AddCommand(cronReconcileCmd)
	cronCmd.AddCommand(cronStatusCmd)
}
