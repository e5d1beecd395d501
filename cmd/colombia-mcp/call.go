package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/aretw0/colombia-mcp/internal/presentation/tui"
)

var callCmd = &cobra.Command{
	Use:   "call <tool> [json-arguments]",
	Short: "Invoke a tool once and print its response",
	Example: `  colombia-mcp call get-department-by-id '{"id": 5}'
  colombia-mcp call get-city-paginated '{"page": 1, "pageSize": 10}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		arguments, err := parseArguments(args[1:])
		if err != nil {
			return err
		}

		app, err := newLocalApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		rsp := app.Call(ctx, args[0], arguments)

		render := tui.NewRenderer(cmd.OutOrStdout())
		out, err := render(tui.ResponseMarkdown(rsp.Text(), rsp.IsError))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		if rsp.IsError {
			return errReported
		}
		return nil
	},
}

func parseArguments(args []string) (map[string]any, error) {
	if len(args) == 0 || args[0] == "" {
		return nil, nil
	}
	var arguments map[string]any
	if err := json.Unmarshal([]byte(args[0]), &arguments); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object: %w", err)
	}
	return arguments, nil
}

func init() {
	rootCmd.AddCommand(callCmd)
}
