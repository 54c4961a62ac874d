package main

import (
	"fmt"
	"strings"

	"github.com/aatumaykin/nexrecipes/internal/constants"
	"github.com/aatumaykin/nexrecipes/internal/scaffold"
	"github.com/spf13/cobra"
)

// scaffoldFlags are shared by scaffold and scaffold-team.
type scaffoldFlags struct {
	id              string
	name            string
	recipeID        string
	overwrite       bool
	overwriteRecipe bool
	autoIncrement   bool
	cronMode        string
}

var (
	agentFlags scaffoldFlags
	teamFlags  scaffoldFlags
)

var scaffoldCmd = &cobra.Command{
	Use:   "scaffold <recipe-id>",
	Short: "Scaffold an agent workspace from a recipe",
	Args:  cobra.ExactArgs(1),
	RunE:  runScaffold,
}

var scaffoldTeamCmd = &cobra.Command{
	Use:   "scaffold-team <recipe-id>",
	Short: "Scaffold a team workspace from a recipe",
	Args:  cobra.ExactArgs(1),
	RunE:  runScaffoldTeam,
}

func runScaffold(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	mode, err := a.installMode(agentFlags.cronMode)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	res, err := a.scaffolder(cmd, mode).ScaffoldAgent(ctx, scaffold.AgentOptions{
		RecipeID:        args[0],
		AgentID:         agentFlags.id,
		Name:            agentFlags.name,
		RecipeIDBase:    agentFlags.recipeID,
		Overwrite:       agentFlags.overwrite,
		OverwriteRecipe: agentFlags.overwriteRecipe,
		AutoIncrement:   agentFlags.autoIncrement,
	})
	if err != nil {
		return err
	}
	if !res.OK {
		return reportMissingSkills(cmd, res.MissingSkills, res.InstallCommands)
	}
	return printJSON(cmd, res)
}

func runScaffoldTeam(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	mode, err := a.installMode(teamFlags.cronMode)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	res, err := a.scaffolder(cmd, mode).ScaffoldTeam(ctx, scaffold.TeamOptions{
		RecipeID:        args[0],
		TeamID:          teamFlags.id,
		Name:            teamFlags.name,
		RecipeIDBase:    teamFlags.recipeID,
		Overwrite:       teamFlags.overwrite,
		OverwriteRecipe: teamFlags.overwriteRecipe,
		AutoIncrement:   teamFlags.autoIncrement,
	})
	if err != nil {
		return err
	}
	if !res.OK {
		return reportMissingSkills(cmd, res.MissingSkills, res.InstallCommands)
	}
	return printJSON(cmd, res)
}

func reportMissingSkills(cmd *cobra.Command, missing, commands []string) error {
	out := cmd.ErrOrStderr()
	fmt.Fprintf(out, constants.MsgMissingSkills, strings.Join(missing, ", "))
	for _, line := range commands {
		fmt.Fprintln(out, "  "+line)
	}
	return fmt.Errorf("missing required skills: %s", strings.Join(missing, ", "))
}

func bindScaffoldFlags(cmd *cobra.Command, f *scaffoldFlags, idFlag, idShort, idUsage string) {
	flags := cmd.Flags()
	flags.StringVarP(&f.id, idFlag, idShort, "", idUsage)
	flags.StringVar(&f.name, "name", "", "display name used in templates")
	flags.StringVar(&f.recipeID, "recipe-id", "", "id of the workspace recipe copy")
	flags.BoolVar(&f.overwrite, "overwrite", false, "re-render files that have no explicit mode")
	flags.BoolVar(&f.overwriteRecipe, "overwrite-recipe", false, "replace an existing workspace recipe with the same id")
	flags.BoolVar(&f.autoIncrement, "auto-increment", false, "append -2, -3, ... to a taken recipe id")
	flags.StringVar(&f.cronMode, "cron-installation", "", "override recipes.cron_installation (off, prompt, on)")
	_ = cmd.MarkFlagRequired(idFlag)
}

func init() {
	bindScaffoldFlags(scaffoldCmd, &agentFlags, "agent-id", "a", "id of the agent to scaffold")
	bindScaffoldFlags(scaffoldTeamCmd, &teamFlags, "team-id", "t", "id of the team to scaffold")
}
