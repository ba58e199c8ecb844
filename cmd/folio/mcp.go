package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/folio/internal/config"
	"github.com/jackzampolin/folio/internal/docstore"
	"github.com/jackzampolin/folio/internal/extract"
	"github.com/jackzampolin/folio/internal/home"
	"github.com/jackzampolin/folio/internal/pagecache"
	"github.com/jackzampolin/folio/internal/pdf"
	"github.com/jackzampolin/folio/internal/providers"
	"github.com/jackzampolin/folio/internal/tools"
	"github.com/jackzampolin/folio/version"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP stdio server",
	Long: `Start an MCP server on stdio exposing the retrieval tool surface.

The server runs against the local document store directly, without the
HTTP API. Point an MCP client at "folio mcp" to give an agent access to
the ingested documents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Log to stderr at warn level to keep stdio clean for MCP framing
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelWarn,
		}))

		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		cfgMgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfgMgr.WatchConfig()
		cfg := cfgMgr.Get()

		registry := providers.NewRegistry()
		registry.SetLogger(logger)
		registry.Reload(cfg.ToProviderRegistryConfig())
		cfgMgr.OnChange(func(c *config.Config) {
			registry.Reload(c.ToProviderRegistryConfig())
		})

		store, err := docstore.New(h.DocumentsPath(), logger)
		if err != nil {
			return err
		}
		if err := store.Watch(); err != nil {
			logger.Warn("document store watch unavailable", "error", err)
		}
		defer store.Close()

		extractor := extract.New(extract.Config{
			Store: store,
			Cache: pagecache.New(),
			Originals: pdf.NewOriginalsCache(
				h.OriginalPath,
				time.Duration(cfg.Ingest.DownloadTimeoutSeconds)*time.Second,
				logger,
			),
			Registry: registry,
			Provider: cfg.Defaults.ExtractProvider,
			Logger:   logger,
		})
		toolset := tools.New(store, extractor)

		srv := mcpserver.NewMCPServer(
			"folio",
			version.GitRelease,
			mcpserver.WithToolCapabilities(true),
		)
		registerMCPTools(srv, toolset)

		return mcpserver.ServeStdio(srv)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// registerMCPTools adds the five retrieval tools. Domain errors (unknown
// document, invalid range) come back as prose text for the agent to read,
// never as protocol errors.
func registerMCPTools(srv *mcpserver.MCPServer, toolset *tools.Tools) {
	srv.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List all ingested PDF documents with their IDs, titles, and summaries. Call this first to see what documents are available."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return textResult(toolset.ListDocuments()), nil
	})

	srv.AddTool(mcp.NewTool("get_document_toc",
		mcp.WithDescription("Get the table of contents for a specific document. Use this to understand the structure of a document and find which pages cover specific topics."),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("The ID of the document (from list_documents)"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		docID, err := request.RequireString("document_id")
		if err != nil {
			return textResult("Error: document_id parameter is required"), nil
		}
		return textResult(toolset.DocumentTOC(docID)), nil
	})

	srv.AddTool(mcp.NewTool("find_pages",
		mcp.WithDescription("Find which pages of a document contain a search term. Case-insensitive text search returning page numbers, occurrence counts, and snippets. Use this to locate content before extracting pages."),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("The ID of the document (from list_documents)"),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to search for"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		docID, err := request.RequireString("document_id")
		if err != nil {
			return textResult("Error: document_id parameter is required"), nil
		}
		query, err := request.RequireString("query")
		if err != nil {
			return textResult("Error: query parameter is required"), nil
		}
		msg, err := toolset.FindPages(ctx, docID, query)
		if err != nil {
			return textResult("Error: " + err.Error()), nil
		}
		return textResult(msg), nil
	})

	srv.AddTool(mcp.NewTool("extract_page_content",
		mcp.WithDescription("Extract a range of pages from a document as clean markdown. Cached pages are returned without an LLM call. Ranges span at most 10 pages; use the TOC and find_pages to pick a range."),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("The ID of the document (from list_documents)"),
		),
		mcp.WithNumber("page_start",
			mcp.Required(),
			mcp.Description("First page to extract (1-indexed)"),
		),
		mcp.WithNumber("page_end",
			mcp.Required(),
			mcp.Description("Last page to extract (inclusive)"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		docID, err := request.RequireString("document_id")
		if err != nil {
			return textResult("Error: document_id parameter is required"), nil
		}
		pageStart, err := request.RequireInt("page_start")
		if err != nil {
			return textResult("Error: page_start parameter is required"), nil
		}
		pageEnd, err := request.RequireInt("page_end")
		if err != nil {
			return textResult("Error: page_end parameter is required"), nil
		}
		msg, err := toolset.ExtractPageContent(ctx, docID, pageStart, pageEnd)
		if err != nil {
			return textResult("Error: " + err.Error()), nil
		}
		return textResult(msg), nil
	})

	srv.AddTool(mcp.NewTool("extract_with_focus",
		mcp.WithDescription("Re-extract a range of pages with attention on a specific topic. Bypasses the page cache and sends the whole range in one request. Use when a plain extraction glossed over the detail you need."),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("The ID of the document (from list_documents)"),
		),
		mcp.WithNumber("page_start",
			mcp.Required(),
			mcp.Description("First page to extract (1-indexed)"),
		),
		mcp.WithNumber("page_end",
			mcp.Required(),
			mcp.Description("Last page to extract (inclusive)"),
		),
		mcp.WithString("focus",
			mcp.Required(),
			mcp.Description("Topic or detail to pay particular attention to"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		docID, err := request.RequireString("document_id")
		if err != nil {
			return textResult("Error: document_id parameter is required"), nil
		}
		pageStart, err := request.RequireInt("page_start")
		if err != nil {
			return textResult("Error: page_start parameter is required"), nil
		}
		pageEnd, err := request.RequireInt("page_end")
		if err != nil {
			return textResult("Error: page_end parameter is required"), nil
		}
		focus, err := request.RequireString("focus")
		if err != nil {
			return textResult("Error: focus parameter is required"), nil
		}
		msg, err := toolset.ExtractWithFocus(ctx, docID, pageStart, pageEnd, focus)
		if err != nil {
			return textResult("Error: " + err.Error()), nil
		}
		return textResult(msg), nil
	})
}

func textResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(msg)},
	}
}
