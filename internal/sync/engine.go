// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	stdsync "sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/lotion/internal/convert"
	"github.com/pdiddy/lotion/internal/notion"
	"github.com/pdiddy/lotion/pkg/types"
)

// ErrTargetEscapesRoot means a target name does not resolve to a proper
// subdirectory of the output root: it either escapes the root or lands on
// the root itself, where the ledger and index files live. The target is
// skipped; nothing else is affected.
var ErrTargetEscapesRoot = errors.New("target name must resolve to a subdirectory of the output root")

const defaultConcurrency = 5

// PageSource is the slice of the Notion client the engine depends on.
type PageSource interface {
	QueryDataSource(ctx context.Context, dataSourceID, modifiedAfter string) ([]notion.Page, error)
	RetrievePage(ctx context.Context, pageID string) (notion.Page, error)
	BlockTree(ctx context.Context, containerID string) ([]notion.Block, error)
}

// Indexer receives successfully written documents for full-text indexing.
type Indexer interface {
	IndexPage(pageID, target, title, path, body string, syncedAt time.Time) error
}

// Engine mirrors the configured targets into the output directory.
type Engine struct {
	Source PageSource
	Config types.SyncConfig
	Logger *slog.Logger

	// Out receives per-page progress lines.
	Out io.Writer

	// Index, when set, is fed every written document. Index failures are
	// logged but do not fail the page: the Markdown on disk is the source
	// of truth and the index can always be rebuilt from it.
	Index Indexer

	// Now stamps last_synced; tests pin it. Defaults to time.Now.
	Now func() time.Time
}

func (e *Engine) out() io.Writer {
	if e.Out != nil {
		return e.Out
	}
	return io.Discard
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) concurrency() int {
	if e.Config.Concurrency > 0 {
		return e.Config.Concurrency
	}
	return defaultConcurrency
}

// SyncAll runs one full pass: the ledger is loaded once, every target (or
// just the one named by only) is synced concurrently against it, and the
// ledger is saved once at the end. A crash mid-pass therefore loses the
// whole pass's ledger updates and re-writes those files on the next run,
// which is safe because writes are overwrites.
func (e *Engine) SyncAll(ctx context.Context, only string) ([]types.SyncResult, error) {
	targets := e.Config.Targets
	if only != "" {
		targets = nil
		for _, t := range e.Config.Targets {
			if t.Name == only {
				targets = append(targets, t)
			}
		}
	}

	if len(targets) == 0 {
		if only != "" {
			e.logger().Warn("no such sync target", slog.String("name", only))
		} else {
			e.logger().Warn("no sync targets configured")
		}
		return nil, nil
	}

	if err := EnsureDir(e.Config.OutputDir); err != nil {
		return nil, err
	}

	state := LoadState(e.Config.OutputDir)

	results := make([]types.SyncResult, len(targets))
	var g errgroup.Group
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			result, err := e.syncTarget(ctx, target, state)
			if err != nil {
				// A target-level failure aborts only that target.
				e.logger().Error("target sync failed",
					slog.String("target", target.Name), slog.String("error", err.Error()))
				result.Errors++
			}
			results[i] = result
			return nil
		})
	}
	g.Wait()

	if err := state.Save(e.Config.OutputDir); err != nil {
		return results, err
	}

	for _, r := range results {
		fmt.Fprintf(e.out(), "%q: %d updated, %d skipped, %d errors\n",
			r.Target, r.Updated, r.Skipped, r.Errors)
	}
	return results, nil
}

// syncTarget mirrors one target: list candidate pages, then process them
// under the concurrency bound. Per-page failures are counted and logged
// without touching sibling pages.
func (e *Engine) syncTarget(ctx context.Context, target types.SyncTarget, state *State) (types.SyncResult, error) {
	result := types.SyncResult{Target: target.Name}

	outputDir := filepath.Join(e.Config.OutputDir, target.Name)
	rel, err := filepath.Rel(e.Config.OutputDir, outputDir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return result, fmt.Errorf("%w: %q", ErrTargetEscapesRoot, target.Name)
	}

	if err := EnsureDir(outputDir); err != nil {
		return result, err
	}

	fmt.Fprintf(e.out(), "syncing %q (%s: %s)\n", target.Name, target.Type, target.ID)

	var pages []notion.Page
	if target.Type == types.TargetDatabase {
		// The watermark narrows the server-side listing; unchanged pages
		// that still make it through are skipped by the ledger check below.
		pages, err = e.Source.QueryDataSource(ctx, target.ID, state.Watermark())
	} else {
		var page notion.Page
		page, err = e.Source.RetrievePage(ctx, target.ID)
		pages = []notion.Page{page}
	}
	if err != nil {
		return result, err
	}

	fmt.Fprintf(e.out(), "found %d page(s) in %q\n", len(pages), target.Name)

	var (
		mu        stdsync.Mutex
		usedSlugs = make(map[string]struct{})
	)

	var g errgroup.Group
	g.SetLimit(e.concurrency())
	for _, page := range pages {
		page := page
		g.Go(func() error {
			switch err := e.syncPage(ctx, outputDir, page, state, &mu, usedSlugs); {
			case errors.Is(err, errUnchanged):
				mu.Lock()
				result.Skipped++
				mu.Unlock()
			case err != nil:
				e.logger().Error("failed to sync page",
					slog.String("page_id", page.ID), slog.String("error", err.Error()))
				mu.Lock()
				result.Errors++
				mu.Unlock()
			default:
				mu.Lock()
				result.Updated++
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	return result, nil
}

// errUnchanged marks a page skipped by the ledger check.
var errUnchanged = errors.New("page unchanged since last sync")

// syncPage processes a single page: change check, name derivation with
// collision resolution against names already claimed this pass, render,
// write, ledger update, index update.
func (e *Engine) syncPage(ctx context.Context, outputDir string, page notion.Page, state *State, mu *stdsync.Mutex, usedSlugs map[string]struct{}) error {
	if !state.Changed(page.ID, page.LastEditedTime) {
		return errUnchanged
	}

	title := convert.ExtractTitle(page.Properties)
	slug := convert.Slugify(title, page.ID)

	mu.Lock()
	if _, taken := usedSlugs[slug]; taken {
		slug = convert.ResolveSlugConflict(slug, page.ID)
	}
	usedSlugs[slug] = struct{}{}
	mu.Unlock()

	body := convert.PageBody(ctx, e.Source, page.ID, e.logger())

	now := e.now()
	doc, err := convert.PageDocument(page, body, now)
	if err != nil {
		return err
	}

	path := filepath.Join(outputDir, slug)
	if err := WriteDocument(path, doc); err != nil {
		return err
	}

	state.Set(page.ID, PageState{LastEditedTime: page.LastEditedTime, LocalPath: path})

	if e.Index != nil {
		if err := e.Index.IndexPage(page.ID, filepath.Base(outputDir), title, path, body, now); err != nil {
			e.logger().Warn("failed to index page",
				slog.String("page_id", page.ID), slog.String("error", err.Error()))
		}
	}

	fmt.Fprintf(e.out(), "  %s\n", slug)
	return nil
}

// Watch repeats full sync passes until ctx is cancelled. The next pass is
// scheduled only after the previous one completes, so a slow pass delays
// the schedule instead of overlapping it. Cancellation is checked between
// passes, never mid-pass.
func (e *Engine) Watch(ctx context.Context, interval time.Duration) error {
	for {
		if _, err := e.SyncAll(ctx, ""); err != nil {
			e.logger().Error("sync pass failed", slog.String("error", err.Error()))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// Summarize prints the totals across one pass's results.
func Summarize(results []types.SyncResult, w io.Writer) {
	var updated, skipped, errs int
	for _, r := range results {
		updated += r.Updated
		skipped += r.Skipped
		errs += r.Errors
	}
	fmt.Fprintf(w, "done: %d updated, %d skipped, %d errors\n", updated, skipped, errs)
}
