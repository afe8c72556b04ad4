// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the lotion CLI, a one-way mirror
// from Notion databases and pages to a local tree of Markdown files.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/lotion/internal/secrets"
	"github.com/pdiddy/lotion/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the lotion CLI.
var rootCmd = &cobra.Command{
	Use:   "lotion",
	Short: "Mirror Notion databases and pages into local Markdown",
	Long: `lotion keeps a local Markdown mirror of Notion content. Configured
targets (databases or single pages) are synced incrementally: pages
unchanged since the last run are skipped, everything else is re-rendered
with YAML frontmatter built from the page properties.

Configuration lives in lotion.yaml (current directory or
~/.config/lotion/). The integration token can also come from the
NOTION_API_KEY environment variable or .secrets/notion-api-key.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./lotion.yaml or ~/.config/lotion/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("lotion")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "lotion"))
		}
	}

	viper.SetEnvPrefix("LOTION")
	viper.AutomaticEnv()

	viper.SetDefault("sync_interval", 60)
	viper.SetDefault("concurrency", 5)
	viper.SetDefault("user_agent", "lotion/"+version)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadSyncConfig assembles the validated sync configuration. A missing
// token or output directory is fatal to the whole run.
func loadSyncConfig() (types.SyncConfig, error) {
	cfg := types.SyncConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("timeout"),
			UserAgent: viper.GetString("user_agent"),
		},
		APIKey:       secrets.APIKey(viper.GetString("notion_api_key")),
		OutputDir:    viper.GetString("output_dir"),
		SyncInterval: time.Duration(viper.GetInt("sync_interval")) * time.Second,
		Concurrency:  viper.GetInt("concurrency"),
	}

	if err := viper.UnmarshalKey("targets", &cfg.Targets); err != nil {
		return cfg, fmt.Errorf("invalid targets configuration: %w", err)
	}

	if cfg.APIKey == "" {
		return cfg, fmt.Errorf("no Notion API key configured (set notion_api_key, NOTION_API_KEY, or .secrets/notion-api-key)")
	}
	if cfg.OutputDir == "" {
		return cfg, fmt.Errorf("no output_dir configured")
	}
	cfg.OutputDir = expandHome(cfg.OutputDir)

	return cfg, nil
}

// expandHome resolves a leading ~/ against the user's home directory.
func expandHome(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
