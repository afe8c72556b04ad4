// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sync is the incremental mirror engine: a change-detection ledger,
// a file writer, and the per-target orchestrator that fans work out under a
// concurrency bound.
package sync

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	stdsync "sync"
)

// StateFile is the ledger file name, kept at the output root.
const StateFile = ".lotion-state.json"

// PageState records what was on disk after a page's last successful write.
type PageState struct {
	LastEditedTime string `json:"last_edited_time"`
	LocalPath      string `json:"local_path"`
}

// State is the change-detection ledger: page id to last-synced edit time and
// local path. An entry exists iff the page has been rendered and written at
// least once; entries for pages gone upstream are never pruned. One State
// is shared by every concurrent task of a pass, so access goes through a
// mutex.
type State struct {
	mu      stdsync.Mutex
	entries map[string]PageState
}

// NewState returns an empty ledger.
func NewState() *State {
	return &State{entries: make(map[string]PageState)}
}

// LoadState reads the ledger from the output root. A missing, corrupt or
// non-object file loads as an empty ledger; change detection then treats
// every page as new, which only costs redundant re-writes.
func LoadState(outputDir string) *State {
	data, err := os.ReadFile(filepath.Join(outputDir, StateFile))
	if err != nil {
		return NewState()
	}

	var entries map[string]PageState
	if err := json.Unmarshal(data, &entries); err != nil || entries == nil {
		return NewState()
	}
	return &State{entries: entries}
}

// Save persists the whole ledger at once, via a temp file renamed into
// place so a crash mid-write cannot leave a truncated ledger behind.
func (s *State) Save(outputDir string) error {
	s.mu.Lock()
	data, err := json.MarshalIndent(s.entries, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encoding sync state: %w", err)
	}

	path := filepath.Join(outputDir, StateFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing sync state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("writing sync state: %w", err)
	}
	return nil
}

// Changed reports whether a page needs syncing: true when the page has no
// ledger entry, false only when the stored timestamp equals lastEditedTime
// exactly. Comparison is string equality, not semantic time comparison;
// the timestamp is an opaque upstream token.
func (s *State) Changed(pageID, lastEditedTime string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.entries[pageID]
	if !ok {
		return true
	}
	return existing.LastEditedTime != lastEditedTime
}

// Set records a page's successful write.
func (s *State) Set(pageID string, ps PageState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[pageID] = ps
}

// Get returns a page's entry, if present.
func (s *State) Get(pageID string) (PageState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps, ok := s.entries[pageID]
	return ps, ok
}

// Len returns the number of ledger entries.
func (s *State) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Watermark returns the oldest last-edited time across all entries, or ""
// for an empty ledger. Using the minimum as a single query filter is
// deliberately conservative: anything edited after it is re-listed and
// re-checked locally, so a coarse watermark can cause redundant fetches
// but never a missed update.
func (s *State) Watermark() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	watermark := ""
	for _, ps := range s.entries {
		if watermark == "" || ps.LastEditedTime < watermark {
			watermark = ps.LastEditedTime
		}
	}
	return watermark
}
