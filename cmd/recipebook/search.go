package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/recipebook/internal/cli"
	"github.com/Veraticus/recipebook/internal/common"
	"github.com/Veraticus/recipebook/internal/model"
	"github.com/Veraticus/recipebook/internal/repository"
	"github.com/spf13/cobra"
)

func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search recipes",
		Long: `Search the recipe service for one page of results. Every result is saved
locally. When the service cannot be reached, matching saved recipes are shown instead.`,
		Args: cobra.ArbitraryArgs,
		RunE: runSearch,
	}

	cmd.Flags().Int("page", 1, "page of results to fetch")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return common.NewUserError("a search query is required", nil)
	}
	page, _ := cmd.Flags().GetInt("page")

	ctx := cmd.Context()
	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	slog.Debug("Searching recipes", "query", query, "page", page)

	resp, err := repository.Await(ctx, a.repo.SearchRemote(ctx, model.SearchQuery{Query: query, Page: page}))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if resp.FromCache {
		fmt.Fprintln(out, cli.FormatWarning("Recipe service unreachable, showing saved recipes"))
	}
	if len(resp.Results) == 0 {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("No recipes found for %q", query)))
		return nil
	}

	if err := cli.WriteRecipeTable(out, resp.Results); err != nil {
		return err
	}

	if resp.HasNext() {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("More results: recipebook search --page %d %s", page+1, query)))
	}
	return nil
}
