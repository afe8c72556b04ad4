// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/lotion/internal/notion"
	"github.com/pdiddy/lotion/internal/secrets"
	"github.com/pdiddy/lotion/pkg/types"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List the data sources the integration can sync",
	Long: `Targets asks Notion for every data source shared with the integration
and prints its title and id, ready to paste into the targets section of
lotion.yaml. This is also a quick connectivity check for the token.`,
	RunE: runTargets,
}

func init() {
	rootCmd.AddCommand(targetsCmd)
}

func runTargets(cmd *cobra.Command, args []string) error {
	apiKey := secrets.APIKey(viper.GetString("notion_api_key"))
	if apiKey == "" {
		return fmt.Errorf("no Notion API key configured (set notion_api_key, NOTION_API_KEY, or .secrets/notion-api-key)")
	}

	client := notion.NewClient(apiKey, types.HTTPConfig{
		Timeout:   viper.GetDuration("timeout"),
		UserAgent: viper.GetString("user_agent"),
	})

	sources, err := client.SearchDataSources(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing data sources: %w", err)
	}

	if len(sources) == 0 {
		fmt.Fprintln(os.Stderr, "No data sources shared with this integration.")
		return nil
	}

	for _, ds := range sources {
		fmt.Printf("%s  %s\n", ds.ID, ds.DisplayTitle())
	}
	return nil
}
