// Package repository reconciles the remote recipe service with the local store:
// fresh data when the network is up, cached data when it is not.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/recipebook/internal/common"
	"github.com/Veraticus/recipebook/internal/model"
	"github.com/Veraticus/recipebook/internal/service"
)

// Repository performs one level of fallback, remote to local, and never retries.
type Repository struct {
	store service.RecipeStore
	api   service.RecipeAPI
}

// New creates a repository over an injected store and API client.
func New(store service.RecipeStore, api service.RecipeAPI) (*Repository, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: recipe store", common.ErrMissingConfig)
	}
	if api == nil {
		return nil, fmt.Errorf("%w: recipe API", common.ErrMissingConfig)
	}
	return &Repository{store: store, api: api}, nil
}

// SearchRemote emits Loading and then exactly one terminal outcome.
//
// Only the page number and free-text query reach the remote service. Results are
// written through to the store before Success is emitted. A transport failure is
// answered from recipes cached under a matching title; when none match, the
// transport error is emitted. Any other failure is emitted as is.
func (r *Repository) SearchRemote(ctx context.Context, query model.SearchQuery) <-chan Outcome[model.SearchResponse] {
	out := make(chan Outcome[model.SearchResponse], 2)
	out <- Loading[model.SearchResponse]()

	go func() {
		defer close(out)
		resp, err := r.search(ctx, query.Normalize())
		if err != nil {
			out <- Failure[model.SearchResponse](err)
			return
		}
		out <- Success(*resp)
	}()

	return out
}

func (r *Repository) search(ctx context.Context, query model.SearchQuery) (*model.SearchResponse, error) {
	resp, err := r.api.Search(ctx, query.Page, query.Query)
	if err == nil {
		if err := r.store.UpsertMany(ctx, resp.Results); err != nil {
			return nil, common.NewStorageError("cache results", err)
		}
		slog.Debug("Search results cached", "query", query.Query, "page", query.Page, "count", len(resp.Results))
		return resp, nil
	}

	if !common.IsTransport(err) {
		return nil, err
	}

	slog.Warn("Network error, loading from cache", "query", query.Query, "error", err)

	cached, storeErr := r.store.SearchByTitle(ctx, query.Query)
	if storeErr != nil {
		common.LogError(storeErr, "Cache lookup failed", common.Fields{"query": query.Query})
		return nil, storeErr
	}
	if len(cached) == 0 {
		return nil, err
	}

	return &model.SearchResponse{
		Count:     len(cached),
		Results:   cached,
		FromCache: true,
	}, nil
}

// GetDetails emits Loading and then exactly one terminal outcome for a single recipe,
// following the same write-through and fallback policy as SearchRemote.
func (r *Repository) GetDetails(ctx context.Context, id string) <-chan Outcome[model.Recipe] {
	out := make(chan Outcome[model.Recipe], 2)
	out <- Loading[model.Recipe]()

	go func() {
		defer close(out)
		recipe, err := r.details(ctx, id)
		if err != nil {
			out <- Failure[model.Recipe](err)
			return
		}
		out <- Success(*recipe)
	}()

	return out
}

func (r *Repository) details(ctx context.Context, id string) (*model.Recipe, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: id cannot be empty", common.ErrInvalidID)
	}

	recipe, err := r.api.Get(ctx, id)
	if err == nil {
		if err := r.store.Upsert(ctx, recipe); err != nil {
			return nil, common.NewStorageError("cache recipe", err)
		}
		return recipe, nil
	}

	if !common.IsTransport(err) {
		return nil, err
	}

	slog.Warn("Network error, loading recipe from cache", "id", id, "error", err)

	cached, storeErr := r.store.GetByID(ctx, id)
	if errors.Is(storeErr, common.ErrNotFound) {
		return nil, err
	}
	if storeErr != nil {
		common.LogError(storeErr, "Cache lookup failed", common.Fields{"id": id})
		return nil, storeErr
	}
	return cached, nil
}

// GetStored emits Loading, then the full store contents on subscription and after
// every change. It stays open until ctx is cancelled or the store closes. If the
// subscription cannot be established a single Error is emitted and the stream ends.
func (r *Repository) GetStored(ctx context.Context) <-chan Outcome[[]model.Recipe] {
	out := make(chan Outcome[[]model.Recipe], 1)
	out <- Loading[[]model.Recipe]()

	go func() {
		defer close(out)

		snapshots, stop, err := r.store.Subscribe(ctx)
		if err != nil {
			send(ctx, out, Failure[[]model.Recipe](err))
			return
		}
		defer stop()

		for {
			select {
			case <-ctx.Done():
				return
			case snapshot, ok := <-snapshots:
				if !ok {
					return
				}
				if !send(ctx, out, Success(snapshot)) {
					return
				}
			}
		}
	}()

	return out
}

// SaveMany writes a batch into the store. Failures are not retried.
func (r *Repository) SaveMany(ctx context.Context, recipes []model.Recipe) error {
	if err := r.store.UpsertMany(ctx, recipes); err != nil {
		return common.NewStorageError("save many", err)
	}
	return nil
}

func send[T any](ctx context.Context, out chan<- Outcome[T], outcome Outcome[T]) bool {
	select {
	case out <- outcome:
		return true
	case <-ctx.Done():
		return false
	}
}
