package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of lotion",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("lotion %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
