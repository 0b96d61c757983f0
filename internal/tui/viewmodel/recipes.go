package viewmodel

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/recipebook/internal/model"
	"github.com/Veraticus/recipebook/internal/repository"
)

// DefaultDebounce is the quiet period before a typed query is sent.
const DefaultDebounce = 300 * time.Millisecond

// RecipeSource is the part of the repository the list screen consumes.
type RecipeSource interface {
	SearchRemote(ctx context.Context, query model.SearchQuery) <-chan repository.Outcome[model.SearchResponse]
	GetStored(ctx context.Context) <-chan repository.Outcome[[]model.Recipe]
	GetDetails(ctx context.Context, id string) <-chan repository.Outcome[model.Recipe]
}

// Config tunes a RecipeViewModel. Zero values select the defaults.
type Config struct {
	Debounce time.Duration
}

// RecipeViewModel owns the list screen state. Every transition is a read-modify-write
// of the whole UIState under one mutex, and asynchronous results are applied only if
// the generation that requested them is still current.
type RecipeViewModel struct {
	source        RecipeSource
	ctx           context.Context
	cancel        context.CancelFunc
	updates       chan UIState
	debounceTimer *time.Timer
	searchCancel  context.CancelFunc
	storedCancel  context.CancelFunc
	detailsCancel context.CancelFunc
	state         UIState
	wg            sync.WaitGroup
	generation    uint64
	detailsGen    uint64
	debounce      time.Duration
	mu            sync.Mutex
	closed        bool
}

// NewRecipeViewModel creates a view model in the initial state.
func NewRecipeViewModel(source RecipeSource, cfg Config) (*RecipeViewModel, error) {
	if source == nil {
		return nil, fmt.Errorf("recipe source cannot be nil")
	}
	if cfg.Debounce < 0 {
		return nil, fmt.Errorf("debounce cannot be negative: %s", cfg.Debounce)
	}
	if cfg.Debounce == 0 {
		cfg.Debounce = DefaultDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &RecipeViewModel{
		source:   source,
		ctx:      ctx,
		cancel:   cancel,
		updates:  make(chan UIState, 1),
		state:    InitialState(),
		debounce: cfg.Debounce,
	}, nil
}

// State returns the current snapshot.
func (vm *RecipeViewModel) State() UIState {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state
}

// Updates delivers a snapshot after every transition. A slow reader only sees the
// newest one. The channel is closed by Close.
func (vm *RecipeViewModel) Updates() <-chan UIState {
	return vm.updates
}

// ChangeSearchText debounces a text-driven search. Empty text clears the list immediately.
func (vm *RecipeViewModel) ChangeSearchText(text string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed {
		return
	}

	vm.supersedeLocked()
	vm.stopStoredLocked()

	if text == "" {
		next := InitialState()
		next.SelectedRecipe = vm.state.SelectedRecipe
		vm.setLocked(next)
		return
	}

	next := vm.state
	next.Recipes = []model.Recipe{}
	next.CurrentPage = 1
	next.HasMorePages = true
	next.SearchQuery = text
	next.SelectedCategory = ""
	next.IsLoading = true
	next.FromCache = false
	next.Mode = ModeSearch
	vm.setLocked(next)

	gen := vm.generation
	query := model.SearchQuery{Query: text, Page: 1}
	vm.debounceTimer = time.AfterFunc(vm.debounce, func() {
		vm.mu.Lock()
		defer vm.mu.Unlock()
		if vm.closed || gen != vm.generation {
			return
		}
		vm.fetchLocked(gen, query, true)
	})
}

// SelectCategory switches the list to a category and fetches its first page at once.
func (vm *RecipeViewModel) SelectCategory(category string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed {
		return
	}

	vm.supersedeLocked()
	vm.stopStoredLocked()

	next := vm.state
	next.Recipes = []model.Recipe{}
	next.CurrentPage = 1
	next.HasMorePages = true
	next.SearchQuery = ""
	next.SelectedCategory = category
	next.IsLoading = true
	next.FromCache = false
	next.Mode = ModeSearch
	vm.setLocked(next)

	vm.fetchLocked(vm.generation, model.SearchQuery{Category: category, Page: 1}, true)
}

// LoadNextPage appends the next page of the current search. It does nothing while a
// request is outstanding or when the last page has been reached.
func (vm *RecipeViewModel) LoadNextPage() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed || vm.state.IsLoading || !vm.state.HasMorePages {
		return
	}

	next := vm.state
	next.CurrentPage++
	next.IsLoading = true
	next.Mode = ModeSearch
	vm.setLocked(next)

	vm.fetchLocked(vm.generation, model.SearchQuery{
		Query:    next.SearchQuery,
		Category: next.SelectedCategory,
		Page:     next.CurrentPage,
	}, false)
}

// Refresh re-issues the current query from page 1 and replaces the list on success.
// In stored mode it restarts the store subscription.
func (vm *RecipeViewModel) Refresh() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed {
		return
	}

	vm.supersedeLocked()

	if vm.state.Mode == ModeStored {
		vm.subscribeStoredLocked()
		return
	}

	next := vm.state
	next.CurrentPage = 1
	next.IsLoading = true
	next.Mode = ModeSearch
	vm.setLocked(next)

	vm.fetchLocked(vm.generation, model.SearchQuery{
		Query:    next.SearchQuery,
		Category: next.SelectedCategory,
		Page:     1,
	}, true)
}

// LoadStored clears the filters and mirrors the local store until another list
// action replaces it.
func (vm *RecipeViewModel) LoadStored() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed {
		return
	}

	vm.supersedeLocked()
	vm.subscribeStoredLocked()
}

// ClearScreen drops every task and returns to the initial state.
func (vm *RecipeViewModel) ClearScreen() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed {
		return
	}

	vm.supersedeLocked()
	vm.stopStoredLocked()
	vm.stopDetailsLocked()
	vm.setLocked(InitialState())
}

// SelectRecipe shows a recipe already in hand.
func (vm *RecipeViewModel) SelectRecipe(recipe model.Recipe) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed {
		return
	}

	vm.stopDetailsLocked()
	next := vm.state
	next.SelectedRecipe = &recipe
	next.DetailsLoading = false
	vm.setLocked(next)
}

// ClearSelectedRecipe closes the details view.
func (vm *RecipeViewModel) ClearSelectedRecipe() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed {
		return
	}

	vm.stopDetailsLocked()
	next := vm.state
	next.SelectedRecipe = nil
	next.DetailsLoading = false
	vm.setLocked(next)
}

// LoadDetails fetches one recipe into SelectedRecipe without touching the list.
func (vm *RecipeViewModel) LoadDetails(id string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed {
		return
	}

	vm.stopDetailsLocked()
	next := vm.state
	next.DetailsLoading = true
	vm.setLocked(next)

	gen := vm.detailsGen
	ctx, cancel := context.WithCancel(vm.ctx)
	vm.detailsCancel = cancel

	vm.wg.Add(1)
	go func() {
		defer vm.wg.Done()
		defer cancel()

		for outcome := range vm.source.GetDetails(ctx, id) {
			if !outcome.IsTerminal() {
				continue
			}
			vm.update(func() bool { return gen == vm.detailsGen }, func(s *UIState) {
				s.DetailsLoading = false
				if outcome.Kind == repository.KindError {
					s.Error = outcome.Err.Error()
					return
				}
				recipe := outcome.Data
				s.SelectedRecipe = &recipe
				s.Error = ""
			})
		}
	}()
}

// Close stops every background task and closes the Updates channel.
func (vm *RecipeViewModel) Close() {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return
	}
	vm.closed = true
	vm.supersedeLocked()
	vm.stopStoredLocked()
	vm.stopDetailsLocked()
	vm.mu.Unlock()

	vm.cancel()
	vm.wg.Wait()
	close(vm.updates)
}

// supersedeLocked invalidates the current search task: the debounce timer is stopped,
// the in-flight request is cancelled and any result it still delivers is dropped.
func (vm *RecipeViewModel) supersedeLocked() {
	vm.generation++
	if vm.debounceTimer != nil {
		vm.debounceTimer.Stop()
		vm.debounceTimer = nil
	}
	if vm.searchCancel != nil {
		vm.searchCancel()
		vm.searchCancel = nil
	}
}

func (vm *RecipeViewModel) stopStoredLocked() {
	if vm.storedCancel != nil {
		vm.storedCancel()
		vm.storedCancel = nil
	}
}

func (vm *RecipeViewModel) stopDetailsLocked() {
	vm.detailsGen++
	if vm.detailsCancel != nil {
		vm.detailsCancel()
		vm.detailsCancel = nil
	}
}

// fetchLocked runs one search. refresh replaces the list, otherwise the page is appended.
func (vm *RecipeViewModel) fetchLocked(gen uint64, query model.SearchQuery, refresh bool) {
	ctx, cancel := context.WithCancel(vm.ctx)
	vm.searchCancel = cancel

	slog.Debug("Searching recipes", "query", query.Query, "category", query.Category, "page", query.Page)

	vm.wg.Add(1)
	go func() {
		defer vm.wg.Done()
		defer cancel()

		current := func() bool { return gen == vm.generation }
		for outcome := range vm.source.SearchRemote(ctx, query) {
			switch outcome.Kind {
			case repository.KindLoading:
				vm.update(current, func(s *UIState) {
					s.IsLoading = true
				})
			case repository.KindSuccess:
				resp := outcome.Data
				vm.update(current, func(s *UIState) {
					if refresh {
						s.Recipes = resp.Results
					} else {
						s.Recipes = appendRecipes(s.Recipes, resp.Results)
					}
					if s.Recipes == nil {
						s.Recipes = []model.Recipe{}
					}
					s.CurrentPage = query.Page
					s.HasMorePages = resp.HasNext()
					s.FromCache = resp.FromCache
					s.IsLoading = false
					s.Error = ""
				})
			case repository.KindError:
				vm.update(current, func(s *UIState) {
					if !refresh {
						s.CurrentPage = query.Page - 1
					}
					s.IsLoading = false
					s.Error = outcome.Err.Error()
				})
			}
		}
	}()
}

func (vm *RecipeViewModel) subscribeStoredLocked() {
	vm.stopStoredLocked()

	next := vm.state
	next.SearchQuery = ""
	next.SelectedCategory = ""
	next.CurrentPage = 1
	next.HasMorePages = false
	next.FromCache = false
	next.IsLoading = true
	next.Mode = ModeStored
	vm.setLocked(next)

	gen := vm.generation
	ctx, cancel := context.WithCancel(vm.ctx)
	vm.storedCancel = cancel

	vm.wg.Add(1)
	go func() {
		defer vm.wg.Done()
		defer cancel()

		current := func() bool { return gen == vm.generation }
		for outcome := range vm.source.GetStored(ctx) {
			switch outcome.Kind {
			case repository.KindLoading:
				vm.update(current, func(s *UIState) {
					s.IsLoading = true
				})
			case repository.KindSuccess:
				recipes := outcome.Data
				vm.update(current, func(s *UIState) {
					s.Recipes = recipes
					s.IsLoading = false
					s.Error = ""
				})
			case repository.KindError:
				vm.update(current, func(s *UIState) {
					s.IsLoading = false
					s.Error = outcome.Err.Error()
				})
			}
		}
	}()
}

// update applies mutate to a copy of the state if valid still holds.
func (vm *RecipeViewModel) update(valid func() bool, mutate func(*UIState)) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed || !valid() {
		return
	}

	next := vm.state
	mutate(&next)
	vm.setLocked(next)
}

func (vm *RecipeViewModel) setLocked(next UIState) {
	vm.state = next
	select {
	case <-vm.updates:
	default:
	}
	vm.updates <- next
}

// appendRecipes returns a new slice so earlier snapshots keep their contents.
func appendRecipes(existing, page []model.Recipe) []model.Recipe {
	merged := make([]model.Recipe, 0, len(existing)+len(page))
	merged = append(merged, existing...)
	return append(merged, page...)
}
