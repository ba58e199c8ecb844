package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/folio/internal/api"
	"github.com/jackzampolin/folio/internal/server/endpoints"
)

var ingestServerURL string

// ingestCmd is a top-level shortcut for "folio api ingest".
var ingestCmd = &cobra.Command{
	Use:   "ingest <url>",
	Short: "Ingest a PDF from a URL (requires a running server)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := api.NewClient(ingestServerURL)
		var resp endpoints.IngestResponse
		if err := client.Post(cmd.Context(), "/api/ingest", endpoints.IngestRequest{URL: args[0]}, &resp); err != nil {
			return err
		}
		return api.Output(resp)
	},
}

func init() {
	ingestCmd.Flags().StringVar(
		&ingestServerURL, "server", "http://localhost:8000", "Server URL",
	)
	rootCmd.AddCommand(ingestCmd)
}
