// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/lotion/internal/index"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over the synced documents",
	Long: `Search queries the local SQLite index built during sync. It never
touches the network; results reflect the last completed sync pass.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("limit", 20, "maximum number of results")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	outputDir := expandHome(viper.GetString("output_dir"))
	if outputDir == "" {
		return fmt.Errorf("no output_dir configured")
	}

	limit, _ := cmd.Flags().GetInt("limit")

	idx, err := index.Open(outputDir)
	if err != nil {
		return err
	}
	defer idx.Close()

	results, err := idx.Search(strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("no matches")
		return nil
	}

	for _, r := range results {
		title := r.Title
		if title == "" {
			title = r.PageID
		}
		fmt.Printf("%s (%s)\n    %s\n    %s\n", title, r.Target, r.Path, r.Snippet)
	}
	return nil
}
