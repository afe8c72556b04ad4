// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the configuration and result types shared between the
// CLI surface and the sync engine.
package types

import "time"

// TargetType distinguishes the two kinds of remote items a target can name.
type TargetType string

const (
	// TargetDatabase mirrors every page of a Notion data source.
	TargetDatabase TargetType = "database"
	// TargetPage mirrors a single Notion page.
	TargetPage TargetType = "page"
)

// SyncTarget is one configured remote collection or page to keep mirrored
// locally. Targets come from the config file and are treated as validated
// input.
type SyncTarget struct {
	Type TargetType `json:"type" yaml:"type" mapstructure:"type"`
	ID   string     `json:"id" yaml:"id" mapstructure:"id"`
	Name string     `json:"name" yaml:"name" mapstructure:"name"`
}

// HTTPConfig holds shared HTTP settings for the Notion transport.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with API requests
	// (e.g. "lotion/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SyncConfig holds the settings for a sync run.
type SyncConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is the Notion integration token.
	APIKey string `json:"notion_api_key,omitempty" yaml:"notion_api_key,omitempty"`

	// OutputDir is the root directory for mirrored Markdown files. Each
	// target writes into its own subdirectory.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// SyncInterval is the delay between passes in watch mode (default 60s).
	SyncInterval time.Duration `json:"sync_interval" yaml:"sync_interval"`

	// Concurrency bounds the number of pages processed in flight within
	// one target (default 5). The bound exists to respect Notion's rate
	// limits while overlapping network latency.
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// Targets lists the databases and pages to mirror.
	Targets []SyncTarget `json:"targets" yaml:"targets"`
}

// SyncResult summarizes one target's outcome within a sync pass. It is
// printed and discarded, never persisted.
type SyncResult struct {
	Target  string
	Updated int
	Skipped int
	Errors  int
}

// Total returns the number of pages considered for the target.
func (r SyncResult) Total() int {
	return r.Updated + r.Skipped + r.Errors
}
