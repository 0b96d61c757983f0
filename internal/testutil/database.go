// Package testutil provides shared test helpers: an in-memory store, a scriptable
// remote API and recipe fixtures.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/Veraticus/recipebook/internal/model"
	"github.com/Veraticus/recipebook/internal/storage"
)

// SetupTestStore creates a migrated in-memory store, optionally seeded with recipes.
// It is closed automatically when the test ends.
//
// Example:
//
//	store := testutil.SetupTestStore(t, testutil.Recipe("1", "Chicken Pasta"))
func SetupTestStore(t *testing.T, seed ...model.Recipe) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	if len(seed) > 0 {
		if err := store.UpsertMany(ctx, seed); err != nil {
			_ = store.Close()
			t.Fatalf("failed to seed recipes: %v", err)
		}
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// Recipe builds a fully populated recipe fixture.
func Recipe(id, title string) model.Recipe {
	instructions := "Combine and cook until done."
	return model.Recipe{
		ID:                  id,
		Title:               title,
		Publisher:           "publisher-" + id,
		FeaturedImage:       fmt.Sprintf("https://img.example.com/%s.jpg", id),
		Rating:              50,
		SourceURL:           fmt.Sprintf("https://example.com/recipes/%s", id),
		Description:         "N/A",
		CookingInstructions: &instructions,
		Ingredients:         []string{"salt", "pepper"},
		DateAdded:           "November 11 2020",
		DateUpdated:         "November 11 2020",
		LongDateAdded:       1606348709,
		LongDateUpdated:     1606348709,
	}
}

// Recipes builds n fixtures with ids prefix-1..prefix-n.
func Recipes(prefix string, n int) []model.Recipe {
	recipes := make([]model.Recipe, 0, n)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("%s-%d", prefix, i)
		recipes = append(recipes, Recipe(id, fmt.Sprintf("%s recipe %d", prefix, i)))
	}
	return recipes
}

// IDs returns the ids of recipes in order.
func IDs(recipes []model.Recipe) []string {
	ids := make([]string, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.ID)
	}
	return ids
}
