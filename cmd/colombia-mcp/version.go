package main

import (
	"fmt"

	"github.com/spf13/cobra"

	colombia "github.com/aretw0/colombia-mcp"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of colombia-mcp",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "colombia-mcp version %s\n", colombia.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
