package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	colombia "github.com/aretw0/colombia-mcp"
	"github.com/aretw0/colombia-mcp/internal/config"
	"github.com/aretw0/colombia-mcp/internal/presentation/tui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the MCP server.

Supported Transports:
- stdio (default): newline-delimited JSON-RPC on Standard Input/Output. Ideal for local
  process integration (Claude Desktop, IDEs).
- http: streamable HTTP on POST /mcp with Mcp-Session-Id sessions, plus /healthz,
  /metrics and a REST view under /api.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		// Create a context that cancels on interrupt signal
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := colombia.New(ctx, cfg, colombia.WithLogger(logger))
		if err != nil {
			return err
		}
		defer func() {
			if err := app.Close(); err != nil {
				logger.Warn("failed to release session store", "error", err)
			}
		}()

		if cfg.Transport == config.TransportHTTP {
			tui.PrintBanner(os.Stderr, colombia.Version, cfg.Addr())
		}
		if err := app.Serve(ctx, os.Stdin, os.Stdout); err != nil {
			return fmt.Errorf("%s transport: %w", cfg.Transport, err)
		}
		logger.Info("MCP server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("transport", config.TransportStdio, "Transport protocol to use: 'stdio' or 'http' (env COLOMBIA_MCP_TRANSPORT)")
	serveCmd.Flags().IntP("port", "p", 3000, "Port to listen on, http only (env COLOMBIA_MCP_PORT)")
	serveCmd.Flags().String("host", "", "Interface to bind, http only (env COLOMBIA_MCP_HOST)")
}
