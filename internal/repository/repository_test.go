package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/recipebook/internal/common"
	"github.com/Veraticus/recipebook/internal/model"
	"github.com/Veraticus/recipebook/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect[T any](t *testing.T, stream <-chan Outcome[T]) []Outcome[T] {
	t.Helper()
	var outcomes []Outcome[T]
	timeout := time.After(2 * time.Second)
	for {
		select {
		case o, ok := <-stream:
			if !ok {
				return outcomes
			}
			outcomes = append(outcomes, o)
		case <-timeout:
			t.Fatal("stream did not close")
			return nil
		}
	}
}

// requireOneTerminal checks the Loading-then-terminal shape and returns the terminal outcome.
func requireOneTerminal[T any](t *testing.T, outcomes []Outcome[T]) Outcome[T] {
	t.Helper()
	require.Len(t, outcomes, 2)
	assert.Equal(t, KindLoading, outcomes[0].Kind)
	require.True(t, outcomes[1].IsTerminal())
	return outcomes[1]
}

func newRepo(t *testing.T, api *testutil.FakeAPI, seed ...model.Recipe) (*Repository, *testutil.FakeAPI) {
	t.Helper()
	store := testutil.SetupTestStore(t, seed...)
	repo, err := New(store, api)
	require.NoError(t, err)
	return repo, api
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(nil, &testutil.FakeAPI{})
	require.ErrorIs(t, err, common.ErrMissingConfig)

	_, err = New(testutil.SetupTestStore(t), nil)
	require.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestSearchRemote_SuccessWritesThrough(t *testing.T) {
	page := testutil.Recipes("beef", 3)
	repo, api := newRepo(t, &testutil.FakeAPI{
		SearchFunc: func(_ context.Context, _ int, _ string) (*model.SearchResponse, error) {
			return testutil.Page(page, true), nil
		},
	})
	ctx := context.Background()

	terminal := requireOneTerminal(t, collect(t, repo.SearchRemote(ctx, model.SearchQuery{
		Page:     2,
		Query:    "beef",
		Category: "Dessert",
	})))

	require.Equal(t, KindSuccess, terminal.Kind)
	assert.False(t, terminal.Data.FromCache)
	assert.True(t, terminal.Data.HasNext())
	assert.Equal(t, testutil.IDs(page), testutil.IDs(terminal.Data.Results))

	assert.Equal(t, []testutil.SearchCall{{Page: 2, Query: "beef"}}, api.SearchCalls(),
		"category is never sent to the service")

	cached, err := repo.store.GetByID(ctx, "beef-2")
	require.NoError(t, err)
	assert.Equal(t, page[1], *cached)
}

func TestSearchRemote_NormalizesPage(t *testing.T) {
	repo, api := newRepo(t, &testutil.FakeAPI{})

	requireOneTerminal(t, collect(t, repo.SearchRemote(context.Background(), model.SearchQuery{Page: 0})))
	assert.Equal(t, []testutil.SearchCall{{Page: 1}}, api.SearchCalls())
}

func TestSearchRemote_TransportFailureFallsBackToCache(t *testing.T) {
	seed := []model.Recipe{
		testutil.Recipe("1", "Chicken Pasta"),
		testutil.Recipe("2", "Pasta Bake"),
		testutil.Recipe("3", "pasta salad"),
		testutil.Recipe("4", "Beef Tacos"),
	}

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{name: "case-sensitive matches", query: "Pasta", wantIDs: []string{"1", "2"}},
		{name: "lowercase", query: "pasta", wantIDs: []string{"3"}},
		{name: "empty query returns everything", query: "", wantIDs: []string{"1", "2", "3", "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _ := newRepo(t, &testutil.FakeAPI{
				SearchFunc: func(_ context.Context, _ int, _ string) (*model.SearchResponse, error) {
					return nil, testutil.TransportFailure("search")
				},
			}, seed...)

			terminal := requireOneTerminal(t, collect(t, repo.SearchRemote(context.Background(), model.SearchQuery{
				Page:  1,
				Query: tt.query,
			})))

			require.Equal(t, KindSuccess, terminal.Kind, "error: %v", terminal.Err)
			assert.True(t, terminal.Data.FromCache)
			assert.False(t, terminal.Data.HasNext())
			assert.Equal(t, len(tt.wantIDs), terminal.Data.Count)
			assert.ElementsMatch(t, tt.wantIDs, testutil.IDs(terminal.Data.Results))
		})
	}
}

func TestSearchRemote_TransportFailureWithEmptyCache(t *testing.T) {
	repo, _ := newRepo(t, &testutil.FakeAPI{
		SearchFunc: func(_ context.Context, _ int, _ string) (*model.SearchResponse, error) {
			return nil, testutil.TransportFailure("search")
		},
	}, testutil.Recipe("1", "Beef Tacos"))

	terminal := requireOneTerminal(t, collect(t, repo.SearchRemote(context.Background(), model.SearchQuery{
		Page:  1,
		Query: "Sushi",
	})))

	require.Equal(t, KindError, terminal.Kind)
	assert.True(t, common.IsTransport(terminal.Err))
	assert.ErrorIs(t, terminal.Err, testutil.ErrOffline)
}

func TestSearchRemote_ServiceFailureIsNotMasked(t *testing.T) {
	repo, _ := newRepo(t, &testutil.FakeAPI{
		SearchFunc: func(_ context.Context, _ int, _ string) (*model.SearchResponse, error) {
			return nil, testutil.ServiceFailure("search", 500)
		},
	}, testutil.Recipe("1", "Chicken Pasta"))

	terminal := requireOneTerminal(t, collect(t, repo.SearchRemote(context.Background(), model.SearchQuery{
		Page:  1,
		Query: "Pasta",
	})))

	require.Equal(t, KindError, terminal.Kind)
	assert.True(t, common.IsService(terminal.Err), "cached rows must not hide a service error")
}

func TestSearchRemote_WriteThroughFailure(t *testing.T) {
	store := testutil.SetupTestStore(t)
	repo, err := New(store, &testutil.FakeAPI{
		SearchFunc: func(_ context.Context, _ int, _ string) (*model.SearchResponse, error) {
			return testutil.Page(testutil.Recipes("x", 2), false), nil
		},
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	terminal := requireOneTerminal(t, collect(t, repo.SearchRemote(context.Background(), model.SearchQuery{Page: 1})))
	require.Equal(t, KindError, terminal.Kind)
	assert.True(t, common.IsStorage(terminal.Err))
}

func TestGetDetails(t *testing.T) {
	fresh := testutil.Recipe("583", "Pizza Potato Skins (fresh)")
	stale := testutil.Recipe("583", "Pizza Potato Skins")

	tests := []struct {
		getFunc   func(ctx context.Context, id string) (*model.Recipe, error)
		check     func(t *testing.T, o Outcome[model.Recipe])
		name      string
		seed      []model.Recipe
		wantKind  Kind
		wantTitle string
	}{
		{
			name: "remote success",
			getFunc: func(_ context.Context, _ string) (*model.Recipe, error) {
				r := fresh
				return &r, nil
			},
			seed:      []model.Recipe{stale},
			wantKind:  KindSuccess,
			wantTitle: fresh.Title,
		},
		{
			name: "offline with cached recipe",
			getFunc: func(_ context.Context, _ string) (*model.Recipe, error) {
				return nil, testutil.TransportFailure("get")
			},
			seed:      []model.Recipe{stale},
			wantKind:  KindSuccess,
			wantTitle: stale.Title,
		},
		{
			name: "offline without cached recipe",
			getFunc: func(_ context.Context, _ string) (*model.Recipe, error) {
				return nil, testutil.TransportFailure("get")
			},
			wantKind: KindError,
			check: func(t *testing.T, o Outcome[model.Recipe]) {
				assert.True(t, common.IsTransport(o.Err))
			},
		},
		{
			name: "not found on service",
			getFunc: func(_ context.Context, _ string) (*model.Recipe, error) {
				return nil, testutil.ServiceFailure("get", 404)
			},
			seed:     []model.Recipe{stale},
			wantKind: KindError,
			check: func(t *testing.T, o Outcome[model.Recipe]) {
				assert.True(t, common.IsService(o.Err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _ := newRepo(t, &testutil.FakeAPI{GetFunc: tt.getFunc}, tt.seed...)

			terminal := requireOneTerminal(t, collect(t, repo.GetDetails(context.Background(), "583")))
			require.Equal(t, tt.wantKind, terminal.Kind, "error: %v", terminal.Err)
			if tt.wantTitle != "" {
				assert.Equal(t, tt.wantTitle, terminal.Data.Title)
			}
			if tt.check != nil {
				tt.check(t, terminal)
			}
		})
	}
}

func TestGetDetails_WritesThrough(t *testing.T) {
	fresh := testutil.Recipe("9", "Lemon Bars")
	repo, _ := newRepo(t, &testutil.FakeAPI{
		GetFunc: func(_ context.Context, _ string) (*model.Recipe, error) {
			r := fresh
			return &r, nil
		},
	})
	ctx := context.Background()

	_, err := Await(ctx, repo.GetDetails(ctx, "9"))
	require.NoError(t, err)

	cached, err := repo.store.GetByID(ctx, "9")
	require.NoError(t, err)
	assert.Equal(t, fresh, *cached)
}

func TestGetDetails_EmptyID(t *testing.T) {
	repo, api := newRepo(t, &testutil.FakeAPI{})

	for _, id := range []string{"", "   "} {
		terminal := requireOneTerminal(t, collect(t, repo.GetDetails(context.Background(), id)))
		assert.Equal(t, KindError, terminal.Kind)
		assert.ErrorIs(t, terminal.Err, common.ErrInvalidID)
	}
	assert.Empty(t, api.GetCalls())
}

func TestGetStored(t *testing.T) {
	repo, _ := newRepo(t, &testutil.FakeAPI{}, testutil.Recipe("1", "Soup"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := repo.GetStored(ctx)

	next := func() Outcome[[]model.Recipe] {
		select {
		case o, ok := <-stream:
			require.True(t, ok)
			return o
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for outcome")
			return Outcome[[]model.Recipe]{}
		}
	}

	assert.Equal(t, KindLoading, next().Kind)

	initial := next()
	require.Equal(t, KindSuccess, initial.Kind)
	assert.Equal(t, []string{"1"}, testutil.IDs(initial.Data))

	require.NoError(t, repo.SaveMany(ctx, []model.Recipe{testutil.Recipe("2", "Stew")}))
	updated := next()
	require.Equal(t, KindSuccess, updated.Kind)
	assert.ElementsMatch(t, []string{"1", "2"}, testutil.IDs(updated.Data))

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-stream:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGetStored_SubscribeFailure(t *testing.T) {
	store := testutil.SetupTestStore(t)
	repo, err := New(store, &testutil.FakeAPI{})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	outcomes := collect(t, repo.GetStored(context.Background()))
	require.Len(t, outcomes, 2)
	assert.Equal(t, KindLoading, outcomes[0].Kind)
	assert.Equal(t, KindError, outcomes[1].Kind)
	assert.True(t, common.IsStorage(outcomes[1].Err))
}

func TestSaveMany_Failure(t *testing.T) {
	store := testutil.SetupTestStore(t)
	repo, err := New(store, &testutil.FakeAPI{})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	err = repo.SaveMany(context.Background(), testutil.Recipes("a", 2))
	require.Error(t, err)
	assert.True(t, common.IsStorage(err))
}

func TestAwait(t *testing.T) {
	ctx := context.Background()

	ch := make(chan Outcome[int], 2)
	ch <- Loading[int]()
	ch <- Success(7)
	close(ch)
	got, err := Await(ctx, ch)
	require.NoError(t, err)
	assert.Equal(t, 7, got)

	boom := errors.New("boom")
	ch = make(chan Outcome[int], 1)
	ch <- Failure[int](boom)
	close(ch)
	_, err = Await(ctx, ch)
	require.ErrorIs(t, err, boom)

	ch = make(chan Outcome[int])
	close(ch)
	_, err = Await(ctx, ch)
	require.ErrorIs(t, err, ErrNoOutcome)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Await(cancelled, make(chan Outcome[int]))
	require.ErrorIs(t, err, context.Canceled)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "loading", KindLoading.String())
	assert.Equal(t, "success", KindSuccess.String())
	assert.Equal(t, "error", KindError.String())
	assert.Equal(t, "unknown", Kind(9).String())
}
