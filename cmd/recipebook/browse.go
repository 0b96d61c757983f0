package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/recipebook/internal/common"
	"github.com/Veraticus/recipebook/internal/config"
	"github.com/Veraticus/recipebook/internal/tui"
	"github.com/Veraticus/recipebook/internal/tui/themes"
	"github.com/Veraticus/recipebook/internal/tui/viewmodel"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func browseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse recipes interactively",
		Long: `Open the interactive recipe browser. Type to search, press 1-9 for a
category, ctrl+o for saved recipes and enter to open a recipe.`,
		Args: cobra.NoArgs,
		RunE: runBrowse,
	}

	cmd.Flags().String("theme", "", fmt.Sprintf("color theme (%s)", strings.Join(themes.Names(), ", ")))
	_ = viper.BindPFlag("tui.theme", cmd.Flags().Lookup("theme"))

	return cmd
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	theme, err := themes.ByName(viper.GetString("tui.theme"))
	if err != nil {
		return common.NewUserError("invalid theme", err)
	}

	// The alternate screen owns stdout and stderr, so logs go to a file.
	logFile, err := openLogFile(a.cfg.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()

	if err := common.SetupLogger(logFile, viper.GetString(config.KeyLogLevel), viper.GetString(config.KeyLogFormat)); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	slog.Info("Starting browser", "database", a.store.Path(), "api", a.cfg.APIBaseURL)

	vm, err := viewmodel.NewRecipeViewModel(a.repo, viewmodel.Config{Debounce: a.cfg.Debounce})
	if err != nil {
		return err
	}
	defer vm.Close()

	return tui.Run(ctx, vm, tui.WithTheme(theme))
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
