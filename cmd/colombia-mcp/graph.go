package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/colombia-mcp/internal/presentation/graph"
	"github.com/aretw0/colombia-mcp/pkg/catalog"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the catalog resources and their relations as a Mermaid flowchart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := catalog.Default()
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(c))
		return err
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
