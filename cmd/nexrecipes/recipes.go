package main

import (
	"fmt"

	"github.com/aatumaykin/nexrecipes/internal/constants"
	"github.com/aatumaykin/nexrecipes/internal/recipe"
	"github.com/spf13/cobra"
)

var recipesJSON bool

var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "Inspect available recipes",
}

var recipesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List builtin and workspace recipes",
	Args:  cobra.NoArgs,
	RunE:  runRecipesList,
}

var recipesShowCmd = &cobra.Command{
	Use:   "show <recipe-id>",
	Short: "Print a recipe as markdown",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecipesShow,
}

// recipeSummary is one row of `recipes list --json`.
type recipeSummary struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Kind     recipe.Kind   `json:"kind"`
	Source   recipe.Source `json:"source"`
	CronJobs int           `json:"cronJobs"`
	Path     string        `json:"path"`
}

func runRecipesList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	recipes, err := a.loader.List()
	if err != nil {
		return err
	}

	summaries := make([]recipeSummary, 0, len(recipes))
	for _, r := range recipes {
		summaries = append(summaries, recipeSummary{
			ID:       r.ID,
			Name:     r.DisplayName(),
			Kind:     r.EffectiveKind(recipe.KindAgent),
			Source:   r.Source,
			CronJobs: r.CronJobCount(),
			Path:     r.Path,
		})
	}

	if recipesJSON {
		return printJSON(cmd, summaries)
	}

	out := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprint(out, constants.MsgRecipesNotFound)
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(out, constants.MsgRecipesRow, s.ID, s.Kind, s.Source, s.CronJobs, s.Name)
	}
	fmt.Fprintf(out, constants.MsgRecipesTotal, len(summaries))
	return nil
}

func runRecipesShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	r, err := a.loader.Load(args[0])
	if err != nil {
		return err
	}
	md, err := recipe.Marshal(r)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), md)
	return nil
}

func init() {
	recipesListCmd.Flags().BoolVar(&recipesJSON, "json", false, "print JSON instead of a table")

	recipesCmd.AddCommand(recipesListCmd)
	recipesCmd.AddCommand(recipesShowCmd)
}
