package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/recipebook/internal/common"
	"github.com/Veraticus/recipebook/internal/model"
)

// ErrStoreClosed is returned when subscribing to a closed store.
var ErrStoreClosed = errors.New("store closed")

const recipeColumns = `id, title, publisher, featured_image, rating, source_url, description,
	cooking_instructions, ingredients, date_added, date_updated, long_date_added, long_date_updated`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (model.Recipe, error) {
	var (
		recipe       model.Recipe
		instructions sql.NullString
		ingredients  string
	)

	err := row.Scan(
		&recipe.ID,
		&recipe.Title,
		&recipe.Publisher,
		&recipe.FeaturedImage,
		&recipe.Rating,
		&recipe.SourceURL,
		&recipe.Description,
		&instructions,
		&ingredients,
		&recipe.DateAdded,
		&recipe.DateUpdated,
		&recipe.LongDateAdded,
		&recipe.LongDateUpdated,
	)
	if err != nil {
		return model.Recipe{}, err
	}

	if instructions.Valid {
		text := instructions.String
		recipe.CookingInstructions = &text
	}

	if err := json.Unmarshal([]byte(ingredients), &recipe.Ingredients); err != nil {
		return model.Recipe{}, fmt.Errorf("failed to decode ingredients for recipe %s: %w", recipe.ID, err)
	}

	return recipe, nil
}

func collectRecipes(rows *sql.Rows) ([]model.Recipe, error) {
	defer func() { _ = rows.Close() }()

	recipes := []model.Recipe{}
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, recipe)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipes: %w", err)
	}

	return recipes, nil
}

// GetAll returns every stored recipe ordered by title.
func (s *SQLiteStorage) GetAll(ctx context.Context) ([]model.Recipe, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+recipeColumns+` FROM recipes ORDER BY title, id`)
	if err != nil {
		return nil, common.NewStorageError("get all", fmt.Errorf("failed to query recipes: %w", err))
	}

	recipes, err := collectRecipes(rows)
	return recipes, common.NewStorageError("get all", err)
}

// SearchByTitle returns recipes whose title contains substring. The match is
// case-sensitive and literal: % and _ carry no wildcard meaning. An empty
// substring matches every recipe.
func (s *SQLiteStorage) SearchByTitle(ctx context.Context, substring string) ([]model.Recipe, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if substring == "" {
		return s.GetAll(ctx)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recipeColumns+`
		FROM recipes
		WHERE instr(title, ?) > 0
		ORDER BY title, id
	`, substring)
	if err != nil {
		return nil, common.NewStorageError("search", fmt.Errorf("failed to query recipes: %w", err))
	}

	recipes, err := collectRecipes(rows)
	return recipes, common.NewStorageError("search", err)
}

// GetByID retrieves a recipe by id, or common.ErrNotFound.
func (s *SQLiteStorage) GetByID(ctx context.Context, id string) (*model.Recipe, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE id = ?`, id)
	recipe, err := scanRecipe(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewStorageError("get", fmt.Errorf("recipe %s: %w", id, common.ErrNotFound))
	}
	if err != nil {
		return nil, common.NewStorageError("get", fmt.Errorf("failed to get recipe: %w", err))
	}

	return &recipe, nil
}

// Upsert inserts the recipe or replaces every field of the stored one.
func (s *SQLiteStorage) Upsert(ctx context.Context, recipe *model.Recipe) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecipe(recipe); err != nil {
		return err
	}

	if err := s.upsertTx(ctx, s.db, recipe, time.Now()); err != nil {
		return common.NewStorageError("upsert", err)
	}

	s.notifier.notify()
	return nil
}

// UpsertMany upserts all recipes in a single transaction.
func (s *SQLiteStorage) UpsertMany(ctx context.Context, recipes []model.Recipe) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(recipes) == 0 {
		return nil
	}
	if err := validateRecipes(recipes); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.NewStorageError("upsert many", fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	for i := range recipes {
		if err := s.upsertTx(ctx, tx, &recipes[i], now); err != nil {
			return common.NewStorageError("upsert many", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return common.NewStorageError("upsert many", fmt.Errorf("failed to commit: %w", err))
	}

	s.notifier.notify()
	return nil
}

func (s *SQLiteStorage) upsertTx(ctx context.Context, q queryable, recipe *model.Recipe, cachedAt time.Time) error {
	ingredients := recipe.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	encoded, err := json.Marshal(ingredients)
	if err != nil {
		return fmt.Errorf("failed to encode ingredients: %w", err)
	}

	var instructions sql.NullString
	if recipe.CookingInstructions != nil {
		instructions = sql.NullString{String: *recipe.CookingInstructions, Valid: true}
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO recipes (`+recipeColumns+`, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			publisher = excluded.publisher,
			featured_image = excluded.featured_image,
			rating = excluded.rating,
			source_url = excluded.source_url,
			description = excluded.description,
			cooking_instructions = excluded.cooking_instructions,
			ingredients = excluded.ingredients,
			date_added = excluded.date_added,
			date_updated = excluded.date_updated,
			long_date_added = excluded.long_date_added,
			long_date_updated = excluded.long_date_updated,
			cached_at = excluded.cached_at
	`,
		recipe.ID,
		recipe.Title,
		recipe.Publisher,
		recipe.FeaturedImage,
		recipe.Rating,
		recipe.SourceURL,
		recipe.Description,
		instructions,
		string(encoded),
		recipe.DateAdded,
		recipe.DateUpdated,
		recipe.LongDateAdded,
		recipe.LongDateUpdated,
		cachedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save recipe %s: %w", recipe.ID, err)
	}

	return nil
}

// Delete removes the recipe with the same id. Deleting an absent recipe is not an error.
func (s *SQLiteStorage) Delete(ctx context.Context, recipe *model.Recipe) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if recipe == nil {
		return fmt.Errorf("%w: recipe", ErrNilParameter)
	}
	if err := validateString(recipe.ID, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, recipe.ID)
	if err != nil {
		return common.NewStorageError("delete", fmt.Errorf("failed to delete recipe: %w", err))
	}

	if affected, _ := result.RowsAffected(); affected > 0 {
		s.notifier.notify()
	}
	return nil
}

// DeleteAll removes every stored recipe and returns how many were removed.
func (s *SQLiteStorage) DeleteAll(ctx context.Context) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM recipes`)
	if err != nil {
		return 0, common.NewStorageError("delete all", fmt.Errorf("failed to delete recipes: %w", err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, common.NewStorageError("delete all", err)
	}
	if affected > 0 {
		s.notifier.notify()
	}
	return affected, nil
}

// Count returns the number of stored recipes.
func (s *SQLiteStorage) Count(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&count); err != nil {
		return 0, common.NewStorageError("count", fmt.Errorf("failed to count recipes: %w", err))
	}
	return count, nil
}
