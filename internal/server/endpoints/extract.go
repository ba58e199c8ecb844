package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/folio/internal/api"
	"github.com/jackzampolin/folio/internal/extract"
	"github.com/jackzampolin/folio/internal/svcctx"
)

// ExtractRequest is the request body for page content extraction.
type ExtractRequest struct {
	DocumentID string `json:"document_id"`
	PageStart  int    `json:"page_start"`
	PageEnd    int    `json:"page_end"`
	Focus      string `json:"focus,omitempty"`
}

// ExtractResponse is the response for page content extraction.
type ExtractResponse struct {
	DocumentID string `json:"document_id"`
	PageStart  int    `json:"page_start"`
	PageEnd    int    `json:"page_end"`
	Content    string `json:"content"`
}

// writeExtractError maps extraction errors to HTTP status codes.
// Unknown documents are 404, invalid ranges 400, provider failures 502.
func writeExtractError(w http.ResponseWriter, err error) {
	var notFound *extract.NotFoundError
	if errors.As(err, &notFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	var invalid *extract.ValidationError
	if errors.As(err, &invalid) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeError(w, http.StatusBadGateway, err.Error())
}

// ExtractEndpoint handles POST /api/extract.
type ExtractEndpoint struct{}

func (e *ExtractEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/extract", e.handler
}

func (e *ExtractEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Extract page content
//	@Description	Extract a page range as markdown, serving cached pages where available
//	@Tags			extract
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ExtractRequest	true	"Extract request"
//	@Success		200		{object}	ExtractResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Router			/api/extract [post]
func (e *ExtractEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	extractor := svcctx.ExtractorFrom(r.Context())
	if extractor == nil {
		writeError(w, http.StatusServiceUnavailable, "extractor not initialized")
		return
	}

	content, err := extractor.ExtractPages(r.Context(), req.DocumentID, req.PageStart, req.PageEnd)
	if err != nil {
		writeExtractError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ExtractResponse{
		DocumentID: req.DocumentID,
		PageStart:  req.PageStart,
		PageEnd:    req.PageEnd,
		Content:    content,
	})
}

func (e *ExtractEndpoint) Command(getServerURL func() string) *cobra.Command {
	var pageStart, pageEnd int
	cmd := &cobra.Command{
		Use:   "extract <document-id>",
		Short: "Extract a page range as markdown",
		Long: `Extract pages from a document as clean markdown.

Cached pages are served without an LLM call. Ranges span at most 10 pages.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			req := ExtractRequest{DocumentID: args[0], PageStart: pageStart, PageEnd: pageEnd}
			var resp ExtractResponse
			if err := client.Post(cmd.Context(), "/api/extract", req, &resp); err != nil {
				return err
			}
			fmt.Println(resp.Content)
			return nil
		},
	}
	cmd.Flags().IntVar(&pageStart, "start", 1, "First page (1-indexed)")
	cmd.Flags().IntVar(&pageEnd, "end", 1, "Last page (inclusive)")
	return cmd
}

// ExtractFocusEndpoint handles POST /api/extract/focus.
type ExtractFocusEndpoint struct{}

func (e *ExtractFocusEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/extract/focus", e.handler
}

func (e *ExtractFocusEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Extract pages with a focus
//	@Description	Re-extract a page range with attention on a specific topic, bypassing the cache
//	@Tags			extract
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ExtractRequest	true	"Extract request with focus"
//	@Success		200		{object}	ExtractResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Router			/api/extract/focus [post]
func (e *ExtractFocusEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Focus) == "" {
		writeError(w, http.StatusBadRequest, "focus is required")
		return
	}

	extractor := svcctx.ExtractorFrom(r.Context())
	if extractor == nil {
		writeError(w, http.StatusServiceUnavailable, "extractor not initialized")
		return
	}

	content, err := extractor.ExtractWithFocus(r.Context(), req.DocumentID, req.PageStart, req.PageEnd, req.Focus)
	if err != nil {
		writeExtractError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ExtractResponse{
		DocumentID: req.DocumentID,
		PageStart:  req.PageStart,
		PageEnd:    req.PageEnd,
		Content:    content,
	})
}

func (e *ExtractFocusEndpoint) Command(getServerURL func() string) *cobra.Command {
	var pageStart, pageEnd int
	cmd := &cobra.Command{
		Use:   "focus <document-id> <focus...>",
		Short: "Re-extract pages with attention on a topic",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			req := ExtractRequest{
				DocumentID: args[0],
				PageStart:  pageStart,
				PageEnd:    pageEnd,
				Focus:      strings.Join(args[1:], " "),
			}
			var resp ExtractResponse
			if err := client.Post(cmd.Context(), "/api/extract/focus", req, &resp); err != nil {
				return err
			}
			fmt.Println(resp.Content)
			return nil
		},
	}
	cmd.Flags().IntVar(&pageStart, "start", 1, "First page (1-indexed)")
	cmd.Flags().IntVar(&pageEnd, "end", 1, "Last page (inclusive)")
	return cmd
}
