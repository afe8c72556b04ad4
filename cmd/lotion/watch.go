// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Continuously sync at a fixed interval",
	Long: `Watch runs sync passes in a loop. Each pass starts only after the
previous one has fully completed, so a slow pass stretches the schedule
rather than overlapping it. Stop with Ctrl+C; the pass in flight finishes
and the ledger for completed passes stays intact.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("interval", 0, "delay between passes (default: sync_interval from config)")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadSyncConfig()
	if err != nil {
		return err
	}

	interval, _ := cmd.Flags().GetDuration("interval")
	if interval <= 0 {
		interval = cfg.SyncInterval
	}

	logger := newLogger()
	engine, cleanup := newEngine(cfg, logger)
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("watch mode: syncing every %s, Ctrl+C to stop\n", interval)
	return engine.Watch(ctx, interval)
}
