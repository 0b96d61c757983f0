// Package service defines the interfaces between recipebook's layers.
package service

import (
	"context"

	"github.com/Veraticus/recipebook/internal/model"
)

// RecipeStore defines the contract for the local recipe store.
type RecipeStore interface {
	// Subscribe emits the full store contents now and after every committed write.
	// The returned function ends the subscription and closes the channel.
	Subscribe(ctx context.Context) (<-chan []model.Recipe, func(), error)
	// SearchByTitle returns recipes whose title contains substring (case-sensitive).
	SearchByTitle(ctx context.Context, substring string) ([]model.Recipe, error)
	// GetByID returns common.ErrNotFound when no recipe has the id.
	GetByID(ctx context.Context, id string) (*model.Recipe, error)
	GetAll(ctx context.Context) ([]model.Recipe, error)
	Upsert(ctx context.Context, recipe *model.Recipe) error
	UpsertMany(ctx context.Context, recipes []model.Recipe) error
	Delete(ctx context.Context, recipe *model.Recipe) error
	DeleteAll(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RecipeAPI defines the contract for the remote recipe search service.
type RecipeAPI interface {
	Search(ctx context.Context, page int, query string) (*model.SearchResponse, error)
	Get(ctx context.Context, id string) (*model.Recipe, error)
}
