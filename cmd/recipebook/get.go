package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Veraticus/recipebook/internal/cli"
	"github.com/Veraticus/recipebook/internal/common"
	"github.com/Veraticus/recipebook/internal/repository"
	"github.com/spf13/cobra"
)

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one recipe",
		Long: `Fetch a recipe with its ingredients and instructions. The saved copy is
shown when the recipe service cannot be reached.`,
		Args: cobra.ExactArgs(1),
		RunE: runGet,
	}
}

func runGet(cmd *cobra.Command, args []string) error {
	id := strings.TrimSpace(args[0])
	if id == "" {
		return common.NewUserError("a recipe id is required", nil)
	}

	ctx := cmd.Context()
	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	recipe, err := repository.Await(ctx, a.repo.GetDetails(ctx, id))
	if err != nil {
		var serviceErr *common.ServiceError
		if errors.Is(err, common.ErrNotFound) || (errors.As(err, &serviceErr) && serviceErr.StatusCode == http.StatusNotFound) {
			return common.NewUserError(fmt.Sprintf("recipe %s not found", id), err)
		}
		return fmt.Errorf("failed to get recipe: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatRecipe(recipe))
	return err
}
