// Package storage provides the local recipe store backed by SQLite.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/recipebook/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrInvalidRecipe = errors.New("invalid recipe")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRecipe checks the fields the store relies on.
func validateRecipe(recipe *model.Recipe) error {
	if recipe == nil {
		return fmt.Errorf("%w: recipe", ErrNilParameter)
	}
	if strings.TrimSpace(recipe.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidRecipe)
	}
	if strings.TrimSpace(recipe.Title) == "" {
		return fmt.Errorf("%w: missing title", ErrInvalidRecipe)
	}
	return nil
}

func validateRecipes(recipes []model.Recipe) error {
	for i := range recipes {
		if err := validateRecipe(&recipes[i]); err != nil {
			return fmt.Errorf("recipe at index %d: %w", i, err)
		}
	}
	return nil
}
