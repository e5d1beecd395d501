package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	colombia "github.com/aretw0/colombia-mcp"
	"github.com/aretw0/colombia-mcp/internal/config"
	"github.com/aretw0/colombia-mcp/internal/presentation/tui"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the available tools and their arguments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newLocalApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		render := tui.NewRenderer(cmd.OutOrStdout())
		out, err := render(tui.ToolsMarkdown(app.Tools()))
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	},
}

// newLocalApp builds an App for one-shot commands. They never serve, so sessions stay in memory.
func newLocalApp(cmd *cobra.Command) (*colombia.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	cfg.SessionStore = config.StoreMemory
	return colombia.New(context.Background(), cfg, colombia.WithLogger(newLogger(cfg)))
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}
