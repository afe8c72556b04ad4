// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sync

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/lotion/internal/notion"
	"github.com/pdiddy/lotion/pkg/types"
)

// fakeSource implements PageSource with canned pages and blocks.
type fakeSource struct {
	mu stdsync.Mutex

	pages      map[string][]notion.Page // keyed by data source id
	singles    map[string]notion.Page   // keyed by page id
	blocks     map[string][]notion.Block
	queryErr   error
	lastFilter string
}

func (f *fakeSource) QueryDataSource(_ context.Context, id, modifiedAfter string) ([]notion.Page, error) {
	f.mu.Lock()
	f.lastFilter = modifiedAfter
	f.mu.Unlock()
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.pages[id], nil
}

func (f *fakeSource) RetrievePage(_ context.Context, id string) (notion.Page, error) {
	page, ok := f.singles[id]
	if !ok {
		return notion.Page{}, errors.New("no such page")
	}
	return page, nil
}

func (f *fakeSource) BlockTree(_ context.Context, id string) ([]notion.Block, error) {
	return f.blocks[id], nil
}

func titledPage(id, title, edited string) notion.Page {
	return notion.Page{
		Object:         "page",
		ID:             id,
		URL:            "https://www.notion.so/" + id,
		LastEditedTime: edited,
		Properties: notion.PropertyList{
			{Name: "Name", Property: notion.Property{Type: "title",
				Title: []notion.RichText{{PlainText: title}}}},
		},
	}
}

func newTestEngine(t *testing.T, src PageSource, targets []types.SyncTarget) (*Engine, string) {
	t.Helper()
	dir := t.TempDir()
	return &Engine{
		Source: src,
		Config: types.SyncConfig{
			OutputDir: dir,
			Targets:   targets,
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Out:    &bytes.Buffer{},
		Now:    func() time.Time { return time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC) },
	}, dir
}

func TestSyncAll_WritesNewPages(t *testing.T) {
	src := &fakeSource{
		pages: map[string][]notion.Page{
			"ds1": {
				titledPage("p1", "First Page", "2026-01-01T00:00:00.000Z"),
				titledPage("p2", "Second Page", "2026-01-02T00:00:00.000Z"),
			},
		},
		blocks: map[string][]notion.Block{
			"p1": {{Type: "paragraph", Paragraph: &notion.TextPayload{
				RichText: []notion.RichText{{PlainText: "content one"}}}}},
		},
	}
	engine, dir := newTestEngine(t, src, []types.SyncTarget{
		{Type: types.TargetDatabase, ID: "ds1", Name: "notes"},
	})

	results, err := engine.SyncAll(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Updated)
	assert.Equal(t, 0, results[0].Skipped)
	assert.Equal(t, 0, results[0].Errors)

	data, err := os.ReadFile(filepath.Join(dir, "notes", "first-page.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "title: First Page")
	assert.Contains(t, string(data), "# First Page")
	assert.Contains(t, string(data), "content one")

	_, err = os.Stat(filepath.Join(dir, "notes", "second-page.md"))
	assert.NoError(t, err)

	// The ledger persists both writes.
	state := LoadState(dir)
	assert.Equal(t, 2, state.Len())
}

func TestSyncAll_SkipsUnchangedPages(t *testing.T) {
	page := titledPage("p1", "Stable", "2026-01-01T00:00:00.000Z")
	src := &fakeSource{pages: map[string][]notion.Page{"ds1": {page}}}
	engine, _ := newTestEngine(t, src, []types.SyncTarget{
		{Type: types.TargetDatabase, ID: "ds1", Name: "notes"},
	})

	results, err := engine.SyncAll(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, results[0].Updated)

	// Second pass sees the same edit time and skips.
	results, err = engine.SyncAll(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 0, results[0].Updated)
	assert.Equal(t, 1, results[0].Skipped)
}

func TestSyncAll_ReSyncsEditedPages(t *testing.T) {
	src := &fakeSource{pages: map[string][]notion.Page{
		"ds1": {titledPage("p1", "Doc", "2026-01-01T00:00:00.000Z")},
	}}
	engine, _ := newTestEngine(t, src, []types.SyncTarget{
		{Type: types.TargetDatabase, ID: "ds1", Name: "notes"},
	})

	_, err := engine.SyncAll(context.Background(), "")
	require.NoError(t, err)

	src.pages["ds1"] = []notion.Page{titledPage("p1", "Doc", "2026-01-09T00:00:00.000Z")}
	results, err := engine.SyncAll(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, results[0].Updated)
}

func TestSyncAll_PageTarget(t *testing.T) {
	src := &fakeSource{singles: map[string]notion.Page{
		"p1": titledPage("p1", "Standalone", "2026-01-01T00:00:00.000Z"),
	}}
	engine, dir := newTestEngine(t, src, []types.SyncTarget{
		{Type: types.TargetPage, ID: "p1", Name: "standalone"},
	})

	results, err := engine.SyncAll(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, results[0].Updated)

	_, err = os.Stat(filepath.Join(dir, "standalone", "standalone.md"))
	assert.NoError(t, err)
}

func TestSyncAll_OnlyFilter(t *testing.T) {
	src := &fakeSource{pages: map[string][]notion.Page{
		"ds1": {titledPage("p1", "A", "t1")},
		"ds2": {titledPage("p2", "B", "t1")},
	}}
	engine, dir := newTestEngine(t, src, []types.SyncTarget{
		{Type: types.TargetDatabase, ID: "ds1", Name: "first"},
		{Type: types.TargetDatabase, ID: "ds2", Name: "second"},
	})

	results, err := engine.SyncAll(context.Background(), "first")
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "first", results[0].Target)
	_, err = os.Stat(filepath.Join(dir, "second"))
	assert.True(t, os.IsNotExist(err), "unselected target must not be touched")
}

func TestSyncAll_UnknownOnlyFilter(t *testing.T) {
	engine, _ := newTestEngine(t, &fakeSource{}, []types.SyncTarget{
		{Type: types.TargetDatabase, ID: "ds1", Name: "notes"},
	})

	results, err := engine.SyncAll(context.Background(), "no-such-target")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSyncAll_TargetErrorDoesNotAbortSiblings(t *testing.T) {
	src := &fakeSource{
		pages: map[string][]notion.Page{
			"ok": {titledPage("p1", "Fine", "t1")},
		},
		singles: map[string]notion.Page{}, // page target will fail
	}
	engine, _ := newTestEngine(t, src, []types.SyncTarget{
		{Type: types.TargetPage, ID: "missing", Name: "broken"},
		{Type: types.TargetDatabase, ID: "ok", Name: "healthy"},
	})

	results, err := engine.SyncAll(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, results, 2)
	byName := map[string]types.SyncResult{}
	for _, r := range results {
		byName[r.Target] = r
	}
	assert.Equal(t, 1, byName["broken"].Errors)
	assert.Equal(t, 1, byName["healthy"].Updated)
}

func TestSyncAll_SlugCollisionWithinPass(t *testing.T) {
	src := &fakeSource{pages: map[string][]notion.Page{
		"ds1": {
			titledPage("aaaa1111", "Same Title", "t1"),
			titledPage("bbbb2222", "Same Title", "t1"),
		},
	}}
	engine, dir := newTestEngine(t, src, []types.SyncTarget{
		{Type: types.TargetDatabase, ID: "ds1", Name: "notes"},
	})
	engine.Config.Concurrency = 1 // deterministic claim order

	results, err := engine.SyncAll(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 2, results[0].Updated)

	entries, err := os.ReadDir(filepath.Join(dir, "notes"))
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "same-title.md")
	assert.Contains(t, names, "same-title-bbbb.md")
}

func TestSyncAll_TargetNameEscapesRoot(t *testing.T) {
	engine, dir := newTestEngine(t, &fakeSource{}, []types.SyncTarget{
		{Type: types.TargetDatabase, ID: "ds1", Name: "../evil"},
	})

	results, err := engine.SyncAll(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, results[0].Errors)

	_, err = os.Stat(filepath.Join(filepath.Dir(dir), "evil"))
	assert.True(t, os.IsNotExist(err), "nothing may be written outside the root")
}

func TestSyncAll_TargetNameResolvesToRoot(t *testing.T) {
	src := &fakeSource{pages: map[string][]notion.Page{
		"ds1": {titledPage("p1", "Rooted", "t1")},
	}}
	engine, dir := newTestEngine(t, src, []types.SyncTarget{
		{Type: types.TargetDatabase, ID: "ds1", Name: "."},
	})

	results, err := engine.SyncAll(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, results[0].Errors)

	// The output root holds only the ledger, never page files.
	_, err = os.Stat(filepath.Join(dir, "rooted.md"))
	assert.True(t, os.IsNotExist(err), "pages must not be written next to the ledger")
}

func TestSyncAll_PassesWatermarkToQuery(t *testing.T) {
	src := &fakeSource{pages: map[string][]notion.Page{
		"ds1": {titledPage("p1", "Doc", "2026-01-05T00:00:00.000Z")},
	}}
	engine, _ := newTestEngine(t, src, []types.SyncTarget{
		{Type: types.TargetDatabase, ID: "ds1", Name: "notes"},
	})

	_, err := engine.SyncAll(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "", src.lastFilter, "first pass queries without a watermark")

	_, err = engine.SyncAll(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "2026-01-05T00:00:00.000Z", src.lastFilter)
}

func TestSyncAll_WriteFailureCountsAsPageError(t *testing.T) {
	src := &fakeSource{pages: map[string][]notion.Page{
		"ds1": {titledPage("p1", "Blocked", "t1")},
	}}
	engine, dir := newTestEngine(t, src, []types.SyncTarget{
		{Type: types.TargetDatabase, ID: "ds1", Name: "notes"},
	})

	// Occupy the page's path with a directory so the write fails.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "notes", "blocked.md"), 0o755))

	results, err := engine.SyncAll(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, results[0].Errors)
	assert.Equal(t, 0, results[0].Updated)

	// A failed write must not poison the ledger.
	state := LoadState(dir)
	assert.Equal(t, 0, state.Len())
}

type fakeIndexer struct {
	mu    stdsync.Mutex
	calls []string
	err   error
}

func (f *fakeIndexer) IndexPage(pageID, _, _, _, _ string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, pageID)
	return f.err
}

func TestSyncAll_FeedsIndexer(t *testing.T) {
	src := &fakeSource{pages: map[string][]notion.Page{
		"ds1": {titledPage("p1", "Indexed", "t1")},
	}}
	engine, _ := newTestEngine(t, src, []types.SyncTarget{
		{Type: types.TargetDatabase, ID: "ds1", Name: "notes"},
	})
	idx := &fakeIndexer{}
	engine.Index = idx

	results, err := engine.SyncAll(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, results[0].Updated)
	assert.Equal(t, []string{"p1"}, idx.calls)
}

func TestSyncAll_IndexFailureDoesNotFailPage(t *testing.T) {
	src := &fakeSource{pages: map[string][]notion.Page{
		"ds1": {titledPage("p1", "Indexed", "t1")},
	}}
	engine, _ := newTestEngine(t, src, []types.SyncTarget{
		{Type: types.TargetDatabase, ID: "ds1", Name: "notes"},
	})
	engine.Index = &fakeIndexer{err: errors.New("index locked")}

	results, err := engine.SyncAll(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, results[0].Updated)
	assert.Equal(t, 0, results[0].Errors)
}

func TestWatch_StopsOnCancel(t *testing.T) {
	src := &fakeSource{pages: map[string][]notion.Page{
		"ds1": {titledPage("p1", "Doc", "t1")},
	}}
	engine, _ := newTestEngine(t, src, []types.SyncTarget{
		{Type: types.TargetDatabase, ID: "ds1", Name: "notes"},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- engine.Watch(ctx, time.Hour) }()

	// Give the first pass time to run, then cancel.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not stop after cancellation")
	}
}

func TestSummarize(t *testing.T) {
	var buf bytes.Buffer
	Summarize([]types.SyncResult{
		{Target: "a", Updated: 2, Skipped: 1},
		{Target: "b", Updated: 1, Errors: 1},
	}, &buf)
	assert.Equal(t, "done: 3 updated, 1 skipped, 1 errors\n", buf.String())
}
