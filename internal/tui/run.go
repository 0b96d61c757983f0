package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/recipebook/internal/tui/viewmodel"
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive browser and blocks until the user quits or ctx is
// cancelled. The caller owns vm and closes it afterwards.
func Run(ctx context.Context, vm *viewmodel.RecipeViewModel, opts ...Option) error {
	if vm == nil {
		return fmt.Errorf("view model is required")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	program := tea.NewProgram(
		newModel(vm, cfg),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
