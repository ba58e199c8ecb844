package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/folio/internal/api"
	"github.com/jackzampolin/folio/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "PDF document service with LLM-powered page extraction",
	Long: `Folio ingests PDF documents from URLs and exposes them to agents
through a small retrieval tool surface.

Each document gets LLM-extracted metadata (title, authors, table of
contents) at ingest time. Page content is extracted as markdown on
demand and cached per page, so repeat reads of the same pages are free.

The retrieval surface is available three ways:
  - HTTP API (folio serve)
  - CLI commands against a running server (folio api ...)
  - MCP stdio server for agent integration (folio mcp)`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.folio/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "folio home directory (default: ~/.folio)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
