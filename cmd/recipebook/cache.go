package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/recipebook/internal/cli"
	"github.com/spf13/cobra"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the local recipe database",
	}

	// Subcommands
	cmd.AddCommand(cacheStatsCmd())
	cmd.AddCommand(cacheClearCmd())

	return cmd
}

func cacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show how many recipes are saved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			count, err := store.Count(ctx)
			if err != nil {
				return err
			}
			version, err := store.SchemaVersion(ctx)
			if err != nil {
				return err
			}

			body := fmt.Sprintf("Database: %s\nSchema version: %d\nSaved recipes: %d", store.Path(), version, count)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(cli.CacheIcon+" Local cache", body))
			return err
		},
	}
}

func cacheClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every saved recipe",
		Args:  cobra.NoArgs,
		RunE:  runCacheClear,
	}

	cmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	yes, _ := cmd.Flags().GetBool("yes")

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

	out := cmd.OutOrStdout()
	if !yes {
		ok, err := cli.Confirm(ctx, cli.NewNonBlockingReader(cmd.InOrStdin()), out, "Delete all saved recipes?")
		if err != nil {
			return err
		}
		if !ok {
			_, err := fmt.Fprintln(out, cli.FormatInfo("Nothing deleted"))
			return err
		}
	}

	deleted, err := store.DeleteAll(ctx)
	if err != nil {
		return err
	}
	slog.Info("Cleared local cache", "deleted", deleted, "database", store.Path())

	_, err = fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted %d saved recipes", deleted)))
	return err
}
