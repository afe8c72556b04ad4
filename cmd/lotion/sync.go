// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/lotion/internal/index"
	"github.com/pdiddy/lotion/internal/notion"
	syncer "github.com/pdiddy/lotion/internal/sync"
	"github.com/pdiddy/lotion/pkg/types"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync pass over all configured targets",
	Long: `Sync mirrors every configured target into the output directory. Pages
whose last-edited time matches the local ledger are skipped; per-page
failures are counted and logged without aborting the rest of the pass.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().String("only", "", "sync only the target with this name")

	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	only, _ := cmd.Flags().GetString("only")

	cfg, err := loadSyncConfig()
	if err != nil {
		return err
	}

	logger := newLogger()
	engine, cleanup := newEngine(cfg, logger)
	defer cleanup()

	results, err := engine.SyncAll(cmd.Context(), only)
	if err != nil {
		return err
	}
	if len(results) > 0 {
		syncer.Summarize(results, os.Stdout)
	}
	return nil
}

// newLogger builds the process-wide structured logger.
func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// newEngine wires the sync engine: Notion client, optional full-text
// index, progress output. The returned cleanup closes the index.
func newEngine(cfg types.SyncConfig, logger *slog.Logger) (*syncer.Engine, func()) {
	client := notion.NewClient(cfg.APIKey, cfg.HTTPConfig)

	engine := &syncer.Engine{
		Source: client,
		Config: cfg,
		Logger: logger,
		Out:    os.Stdout,
	}

	cleanup := func() {}
	if err := syncer.EnsureDir(cfg.OutputDir); err != nil {
		logger.Warn("cannot prepare output directory", slog.String("error", err.Error()))
		return engine, cleanup
	}

	idx, err := index.Open(cfg.OutputDir)
	if err != nil {
		// Syncing works without the index; search just won't see new pages.
		logger.Warn("full-text index unavailable", slog.String("error", err.Error()))
		return engine, cleanup
	}
	engine.Index = idx
	return engine, func() { idx.Close() }
}
