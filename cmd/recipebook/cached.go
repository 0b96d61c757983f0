package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/recipebook/internal/cli"
	"github.com/Veraticus/recipebook/internal/model"
	"github.com/spf13/cobra"
)

func cachedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cached [title]",
		Short: "List saved recipes",
		Long: `List recipes in the local database without contacting the recipe service.
With an argument, only recipes whose title contains it (case-sensitive) are listed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCached,
	}
}

func runCached(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	var recipes []model.Recipe
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		recipes, err = store.SearchByTitle(ctx, args[0])
	} else {
		recipes, err = store.GetAll(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to read saved recipes: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(recipes) == 0 {
		_, err := fmt.Fprintln(out, cli.FormatInfo("No saved recipes"))
		return err
	}

	if err := cli.WriteRecipeTable(out, recipes); err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%d saved recipes", len(recipes))))
	return err
}
