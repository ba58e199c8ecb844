package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/folio/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running Folio server via HTTP.

These commands require a running server (folio serve).
Use --server to specify a custom server URL.

Examples:
  folio api health                  # Check server health
  folio api ingest <url>            # Ingest a PDF from a URL
  folio api documents list          # List ingested documents
  folio api documents toc <id>      # Show a document's table of contents
  folio api search <id> <query>     # Search a document's pages`,
}

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Document management commands",
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Page cache commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8000", "Server URL",
	)

	// Health endpoints at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.StatusEndpoint{}).Command(getServerURL))

	// Ingest and search at top level
	apiCmd.AddCommand((&endpoints.IngestEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.SearchEndpoint{}).Command(getServerURL))

	// Documents as subcommand group
	documentsCmd.AddCommand((&endpoints.ListDocumentsEndpoint{}).Command(getServerURL))
	documentsCmd.AddCommand((&endpoints.GetDocumentEndpoint{}).Command(getServerURL))
	documentsCmd.AddCommand((&endpoints.DocumentTOCEndpoint{}).Command(getServerURL))

	// Extract at top level, with focus as its subcommand so both
	// "folio api extract <id>" and "folio api extract focus <id> ..." work
	extractCmd := (&endpoints.ExtractEndpoint{}).Command(getServerURL)
	extractCmd.AddCommand((&endpoints.ExtractFocusEndpoint{}).Command(getServerURL))

	// Cache as subcommand group
	cacheCmd.AddCommand((&endpoints.CacheStatsEndpoint{}).Command(getServerURL))
	cacheCmd.AddCommand((&endpoints.CacheClearEndpoint{}).Command(getServerURL))
	cacheCmd.AddCommand((&endpoints.CacheClearDocumentEndpoint{}).Command(getServerURL))

	// Swagger at top level
	apiCmd.AddCommand((&endpoints.SwaggerEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.SwaggerUIEndpoint{}).Command(getServerURL))

	apiCmd.AddCommand(documentsCmd)
	apiCmd.AddCommand(extractCmd)
	apiCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(apiCmd)
}
