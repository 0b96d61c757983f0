package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Veraticus/recipebook/internal/cli"
	"github.com/Veraticus/recipebook/internal/common"
	"github.com/Veraticus/recipebook/internal/model"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// syncRetry bounds retries for bulk downloads. Interactive lookups never retry.
var syncRetry = common.RetryOptions{
	MaxAttempts:  3,
	InitialDelay: 500 * time.Millisecond,
	MaxDelay:     10 * time.Second,
	Multiplier:   2.0,
}

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync <query>",
		Short: "Download several pages of results for offline use",
		Long: `Fetch up to --pages pages of search results and save them locally, so the
recipes can be browsed later without a network connection. Transient failures are
retried with backoff.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSync,
	}

	cmd.Flags().Int("pages", 5, "maximum number of pages to download")
	cmd.Flags().Int("concurrency", 3, "number of pages fetched in parallel")

	return cmd
}

func runSync(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return common.NewUserError("a search query is required", nil)
	}
	maxPages, _ := cmd.Flags().GetInt("pages")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	if maxPages < 1 {
		return common.NewUserError("--pages must be at least 1", nil)
	}
	if concurrency < 1 {
		concurrency = 1
	}

	interrupts.SetMessage("Sync interrupted, pages already downloaded stay saved")

	ctx := cmd.Context()
	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	// The first page tells us how many pages exist.
	first, err := fetchPage(ctx, a, query, 1)
	if err != nil {
		return fmt.Errorf("failed to fetch first page: %w", err)
	}
	pages := min(pageCount(first), maxPages)

	slog.Info("Syncing recipes",
		"query", query,
		"available", first.Count,
		"pages", pages,
		"concurrency", concurrency)

	bar := cli.NewProgressBar(cmd.ErrOrStderr(), pages, "Downloading")
	_ = bar.Add(1)

	var saved atomic.Int64
	saved.Add(int64(len(first.Results)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for page := 2; page <= pages; page++ {
		page := page
		g.Go(func() error {
			resp, err := fetchPage(gctx, a, query, page)
			if err != nil {
				return fmt.Errorf("page %d: %w", page, err)
			}
			saved.Add(int64(len(resp.Results)))
			_ = bar.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		_ = bar.Exit()
		return fmt.Errorf("sync failed after saving %d recipes: %w", saved.Load(), err)
	}
	_ = bar.Finish()

	_, err = fmt.Fprintln(cmd.OutOrStdout(),
		cli.FormatSuccess(fmt.Sprintf("Saved %d recipes from %d pages", saved.Load(), pages)))
	return err
}

// fetchPage downloads one page with retries and writes it to the store.
func fetchPage(ctx context.Context, a *app, query string, page int) (*model.SearchResponse, error) {
	var resp *model.SearchResponse
	err := common.WithRetry(ctx, func() error {
		var err error
		resp, err = a.client.Search(ctx, page, query)
		return err
	}, syncRetry)
	if err != nil {
		return nil, err
	}

	if err := a.repo.SaveMany(ctx, resp.Results); err != nil {
		return nil, err
	}
	return resp, nil
}

// pageCount derives the number of pages from the reported result count.
func pageCount(resp *model.SearchResponse) int {
	if resp.Count <= 0 {
		if resp.HasNext() {
			return 2
		}
		return 1
	}
	return (resp.Count + model.DefaultPageSize - 1) / model.DefaultPageSize
}
