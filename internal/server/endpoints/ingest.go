package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/folio/internal/api"
	"github.com/jackzampolin/folio/internal/docstore"
	"github.com/jackzampolin/folio/internal/svcctx"
)

// IngestRequest is the request body for ingesting a document.
type IngestRequest struct {
	URL string `json:"url"`
}

// IngestResponse is the response for a successful ingest.
type IngestResponse struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	TotalPages int    `json:"total_pages"`
	HasTOC     bool   `json:"has_toc"`
}

// IngestEndpoint handles POST /api/ingest.
type IngestEndpoint struct{}

func (e *IngestEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/ingest", e.handler
}

func (e *IngestEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Ingest a PDF document
//	@Description	Download a PDF from a URL, extract its metadata, and add it to the library
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			request	body		IngestRequest	true	"Ingest request"
//	@Success		201		{object}	IngestResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Router			/api/ingest [post]
func (e *IngestEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	ingestor := svcctx.IngestorFrom(r.Context())
	if ingestor == nil {
		writeError(w, http.StatusServiceUnavailable, "ingestor not initialized")
		return
	}

	doc, err := ingestor.Ingest(r.Context(), req.URL)
	if err != nil {
		var dup *docstore.DuplicateError
		if errors.As(err, &dup) {
			writeError(w, http.StatusConflict, fmt.Sprintf(
				"Duplicate document: already ingested as '%s' (id: %s)",
				dup.Existing.Metadata.Title, dup.Existing.ID))
			return
		}
		if logger := svcctx.LoggerFrom(r.Context()); logger != nil {
			logger.Error("ingest failed", "url", req.URL, "error", err)
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, IngestResponse{
		DocumentID: doc.ID,
		Title:      doc.Metadata.Title,
		TotalPages: doc.TotalPages,
		HasTOC:     doc.TOC != "",
	})
}

func (e *IngestEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <url>",
		Short: "Ingest a PDF from a URL",
		Long: `Download a PDF from a URL, extract its metadata with the configured
LLM provider, and add it to the library.

Ingestion is synchronous and can take a minute for large documents.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp IngestResponse
			if err := client.Post(cmd.Context(), "/api/ingest", IngestRequest{URL: args[0]}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
