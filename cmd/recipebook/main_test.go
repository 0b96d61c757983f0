package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/recipebook/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecipe struct {
	PK          int      `json:"pk"`
	Title       string   `json:"title"`
	Publisher   string   `json:"publisher"`
	Ingredients []string `json:"ingredients"`
	Rating      int      `json:"rating"`
}

// recipeServer serves count recipes titled "<query> dish N", thirty per page.
type recipeServer struct {
	*httptest.Server
	failures map[int]int
	requests map[int]int
	count    int
	mu       sync.Mutex
}

func newRecipeServer(t *testing.T, count int) *recipeServer {
	t.Helper()
	rs := &recipeServer{count: count, failures: map[int]int{}, requests: map[int]int{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/recipe/search/", rs.search)
	mux.HandleFunc("/api/recipe/get/", rs.get)
	rs.Server = httptest.NewServer(mux)
	t.Cleanup(rs.Close)
	return rs
}

// failPage makes the next n requests for page fail with 503.
func (rs *recipeServer) failPage(page, n int) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.failures[page] = n
}

func (rs *recipeServer) pageRequests(page int) int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.requests[page]
}

func (rs *recipeServer) search(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	query := r.URL.Query().Get("query")

	rs.mu.Lock()
	rs.requests[page]++
	if rs.failures[page] > 0 {
		rs.failures[page]--
		rs.mu.Unlock()
		http.Error(w, "busy", http.StatusServiceUnavailable)
		return
	}
	rs.mu.Unlock()

	var results []fakeRecipe
	for i := (page-1)*30 + 1; i <= min(page*30, rs.count); i++ {
		results = append(results, fakeRecipe{
			PK:          i,
			Title:       fmt.Sprintf("%s dish %d", query, i),
			Publisher:   "chef",
			Ingredients: []string{"salt"},
			Rating:      80,
		})
	}

	var next *string
	if page*30 < rs.count {
		link := fmt.Sprintf("%s/api/recipe/search/?page=%d&query=%s", rs.URL, page+1, query)
		next = &link
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"count":    rs.count,
		"next":     next,
		"previous": nil,
		"results":  results,
	})
}

func (rs *recipeServer) get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.URL.Query().Get("id"))
	if id < 1 || id > rs.count {
		http.Error(w, `{"detail":"Not found."}`, http.StatusNotFound)
		return
	}
	_ = json.NewEncoder(w).Encode(fakeRecipe{
		PK:          id,
		Title:       fmt.Sprintf("Recipe %d", id),
		Publisher:   "chef",
		Ingredients: []string{"2 eggs", "1 cup flour"},
		Rating:      100,
	})
}

// env is an isolated home directory and database for one test.
type env struct {
	db string
}

func newEnv(t *testing.T) env {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("FOOD2FORK_TOKEN", "")
	return env{db: filepath.Join(home, "recipes.db")}
}

// run executes the CLI with a fresh command tree and viper instance.
func (e env) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	cfgFile = ""
	t.Cleanup(viper.Reset)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--db", e.db, "--log-level", "error"}, args...))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func unreachableURL(t *testing.T) string {
	t.Helper()
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()
	return url
}

func TestSearchCommand(t *testing.T) {
	e := newEnv(t)
	server := newRecipeServer(t, 45)

	out, err := e.run(t, "", "search", "--api-url", server.URL, "Soup")
	require.NoError(t, err)
	assert.Contains(t, out, "Soup dish 1")
	assert.Contains(t, out, "Soup dish 30")
	assert.NotContains(t, out, "Soup dish 31")
	assert.Contains(t, out, "--page 2")

	out, err = e.run(t, "", "search", "--api-url", server.URL, "--page", "2", "Soup")
	require.NoError(t, err)
	assert.Contains(t, out, "Soup dish 45")
	assert.NotContains(t, out, "--page 3")

	out, err = e.run(t, "", "cached")
	require.NoError(t, err)
	assert.Contains(t, out, "45 saved recipes")
}

func TestSearchCommandFallsBackWhenOffline(t *testing.T) {
	e := newEnv(t)
	server := newRecipeServer(t, 3)

	_, err := e.run(t, "", "search", "--api-url", server.URL, "Curry")
	require.NoError(t, err)

	out, err := e.run(t, "", "search", "--api-url", unreachableURL(t), "Curry")
	require.NoError(t, err)
	assert.Contains(t, out, "showing saved recipes")
	assert.Contains(t, out, "Curry dish 2")

	_, err = e.run(t, "", "search", "--api-url", unreachableURL(t), "curry")
	require.Error(t, err, "title match is case-sensitive, so nothing is saved for this query")
	assert.True(t, common.IsTransport(err))
}

func TestSearchCommandRequiresQuery(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "", "search", "  ")
	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
}

func TestGetCommand(t *testing.T) {
	e := newEnv(t)
	server := newRecipeServer(t, 5)

	out, err := e.run(t, "", "get", "--api-url", server.URL, "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Recipe 4")
	assert.Contains(t, out, "1 cup flour")

	out, err = e.run(t, "", "get", "--api-url", unreachableURL(t), "4")
	require.NoError(t, err, "saved copy is served offline")
	assert.Contains(t, out, "Recipe 4")

	_, err = e.run(t, "", "get", "--api-url", server.URL, "99")
	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, err.Error(), "recipe 99 not found")

	_, err = e.run(t, "", "get", "--api-url", unreachableURL(t), "77")
	require.Error(t, err)
	assert.True(t, common.IsTransport(err))
}

func TestCachedCommandFiltersByTitle(t *testing.T) {
	e := newEnv(t)
	server := newRecipeServer(t, 2)

	_, err := e.run(t, "", "search", "--api-url", server.URL, "Pie")
	require.NoError(t, err)
	_, err = e.run(t, "", "search", "--api-url", server.URL, "Cake")
	require.NoError(t, err)

	out, err := e.run(t, "", "cached", "Cake")
	require.NoError(t, err)
	assert.Contains(t, out, "Cake dish 1")
	assert.NotContains(t, out, "Pie dish")

	out, err = e.run(t, "", "cached", "Bread")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved recipes")
}

func TestSyncCommand(t *testing.T) {
	saved := syncRetry
	syncRetry.InitialDelay = time.Millisecond
	syncRetry.MaxDelay = 5 * time.Millisecond
	t.Cleanup(func() { syncRetry = saved })

	t.Run("downloads every available page", func(t *testing.T) {
		e := newEnv(t)
		server := newRecipeServer(t, 75)
		server.failPage(2, 1)

		out, err := e.run(t, "", "sync", "--api-url", server.URL, "--pages", "10", "Pasta")
		require.NoError(t, err)
		assert.Contains(t, out, "Saved 75 recipes from 3 pages")
		assert.Equal(t, 2, server.pageRequests(2), "transient failure is retried")
		assert.Zero(t, server.pageRequests(4))

		out, err = e.run(t, "", "cache", "stats")
		require.NoError(t, err)
		assert.Contains(t, out, "Saved recipes: 75")
		assert.Contains(t, interrupts.Message(), "Sync interrupted")
	})

	t.Run("respects the page limit", func(t *testing.T) {
		e := newEnv(t)
		server := newRecipeServer(t, 200)

		out, err := e.run(t, "", "sync", "--api-url", server.URL, "--pages", "2", "--concurrency", "1", "Rice")
		require.NoError(t, err)
		assert.Contains(t, out, "Saved 60 recipes from 2 pages")
		assert.Zero(t, server.pageRequests(3))
	})

	t.Run("gives up after repeated failures", func(t *testing.T) {
		e := newEnv(t)
		server := newRecipeServer(t, 60)
		server.failPage(2, 10)

		_, err := e.run(t, "", "sync", "--api-url", server.URL, "Tofu")
		require.ErrorIs(t, err, common.ErrMaxRetries)
		assert.Contains(t, err.Error(), "page 2")
		assert.Equal(t, syncRetry.MaxAttempts, server.pageRequests(2))
	})

	t.Run("rejects a zero page limit", func(t *testing.T) {
		e := newEnv(t)

		_, err := e.run(t, "", "sync", "--pages", "0", "Tofu")
		var userErr *common.UserError
		require.ErrorAs(t, err, &userErr)
	})
}

func TestCacheClearCommand(t *testing.T) {
	e := newEnv(t)
	server := newRecipeServer(t, 4)

	_, err := e.run(t, "", "search", "--api-url", server.URL, "Taco")
	require.NoError(t, err)

	out, err := e.run(t, "n\n", "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing deleted")

	out, err = e.run(t, "yes\n", "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 4 saved recipes")

	out, err = e.run(t, "", "cache", "clear", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 0 saved recipes")
}

func TestMigrateCommand(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "", "migrate", "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "Current version: 0")
	assert.Contains(t, out, "Latest version: 3")

	out, err = e.run(t, "", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 3")

	out, err = e.run(t, "", "migrate", "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "Current version: 3")
}

func TestInvalidConfiguration(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "", "cached", "--api-url", "ftp://recipes.example.com")
	require.ErrorIs(t, err, common.ErrInvalidConfig)

	_, err = e.run(t, "", "browse", "--theme", "neon")
	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
}

func TestVersionCommand(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "recipebook dev\n", out)
}

func TestConfigShowCommand(t *testing.T) {
	e := newEnv(t)
	t.Setenv("RECIPEBOOK_API_TOKEN", "abcdef123456")

	out, err := e.run(t, "", "config", "show", "--api-url", "http://localhost:9000/")
	require.NoError(t, err)
	assert.Contains(t, out, "base_url: http://localhost:9000/")
	assert.Contains(t, out, "****3456")
	assert.NotContains(t, out, "abcdef123456")
	assert.Contains(t, out, "path: "+e.db)

	out, err = e.run(t, "", "config", "show", "--show-secrets")
	require.NoError(t, err)
	assert.Contains(t, out, "token: abcdef123456")
}
