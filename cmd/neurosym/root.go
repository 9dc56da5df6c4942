package main

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/HendryAvila/neurosym/internal/config"
	"github.com/HendryAvila/neurosym/internal/logging"
	nsserver "github.com/HendryAvila/neurosym/internal/server"
)

// loadConfig is replaced in tests.
var loadConfig = config.Load

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "neurosym",
		Short: "Neuro-symbolic rule engine MCP server",
		Long: `neurosym checks strategic analysis reports against a checklist and
evaluates formulas over variables derived from them.

Configuration comes from NEUROSYM_* environment variables, optionally on top
of a YAML file named by NEUROSYM_CONFIG.

Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "neurosym": {
        "command": "neurosym",
        "args": ["serve"]
      }
    }
  }`,
		Version:      nsserver.Version,
		SilenceUsage: true,
	}
	root.AddCommand(
		serveCmd(),
		evalCmd(),
		checkCmd(),
		versionCmd(),
	)
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			logger, err := logging.New(cfg.LogOptions())
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}

			s, cleanup, err := nsserver.New(cfg, logger)
			defer cleanup()
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}
			// ServeStdio handles SIGINT/SIGTERM itself.
			return server.ServeStdio(s)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "neurosym v%s\n", nsserver.Version)
		},
	}
}
