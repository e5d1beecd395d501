package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	colombia "github.com/aretw0/colombia-mcp"
	"github.com/aretw0/colombia-mcp/internal/config"
	"github.com/aretw0/colombia-mcp/internal/logging"
)

// errReported marks failures already shown to the user.
var errReported = errors.New("reported")

var rootCmd = &cobra.Command{
	Use:   "colombia-mcp",
	Short: "colombia-mcp serves the API Colombia catalog as MCP tools",
	Long: `colombia-mcp exposes the public API of Colombia (departments, cities, regions,
presidents, tourist attractions and more) as Model Context Protocol tools.

Configuration is read from COLOMBIA_MCP_* environment variables; flags override them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (env COLOMBIA_MCP_LOG_LEVEL)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json (env COLOMBIA_MCP_LOG_FORMAT)")
	rootCmd.PersistentFlags().String("upstream", "", "Base URL of the upstream API (env COLOMBIA_MCP_UPSTREAM_URL)")
}

// loadConfig reads the environment and applies the flags that were set explicitly.
func loadConfig(cmd *cobra.Command) (colombia.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	applyFlags(cmd, &cfg)
	return cfg, cfg.Validate()
}

func applyFlags(cmd *cobra.Command, cfg *colombia.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.LogFormat, _ = flags.GetString("log-format")
	}
	if flags.Changed("upstream") {
		cfg.UpstreamURL, _ = flags.GetString("upstream")
	}
	if flags.Lookup("transport") != nil && flags.Changed("transport") {
		cfg.Transport, _ = flags.GetString("transport")
	}
	if flags.Lookup("host") != nil && flags.Changed("host") {
		cfg.Host, _ = flags.GetString("host")
	}
	if flags.Lookup("port") != nil && flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
}

func newLogger(cfg colombia.Config) *slog.Logger {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return logging.New(level, cfg.LogFormat)
}
