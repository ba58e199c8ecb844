package endpoints

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/folio/internal/api"
	"github.com/jackzampolin/folio/internal/svcctx"
)

// SearchRequest is the request body for page search.
type SearchRequest struct {
	DocumentID string `json:"document_id"`
	Query      string `json:"query"`
}

// SearchMatch is one matching page in a search response.
type SearchMatch struct {
	Page     int      `json:"page"`
	Count    int      `json:"count"`
	Snippets []string `json:"snippets,omitempty"`
}

// SearchResponse is the response for page search.
type SearchResponse struct {
	DocumentID string        `json:"document_id"`
	Query      string        `json:"query"`
	Matches    []SearchMatch `json:"matches"`
}

// SearchEndpoint handles POST /api/search.
type SearchEndpoint struct{}

func (e *SearchEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/search", e.handler
}

func (e *SearchEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Search document pages
//	@Description	Case-insensitive text search over a document's page text
//	@Tags			search
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SearchRequest	true	"Search request"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/search [post]
func (e *SearchEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	extractor := svcctx.ExtractorFrom(r.Context())
	if extractor == nil {
		writeError(w, http.StatusServiceUnavailable, "extractor not initialized")
		return
	}

	matches, err := extractor.FindPages(r.Context(), req.DocumentID, req.Query)
	if err != nil {
		writeExtractError(w, err)
		return
	}

	resp := SearchResponse{
		DocumentID: req.DocumentID,
		Query:      req.Query,
		Matches:    make([]SearchMatch, 0, len(matches)),
	}
	for _, m := range matches {
		resp.Matches = append(resp.Matches, SearchMatch{
			Page:     m.Page,
			Count:    m.Count,
			Snippets: m.Snippets,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *SearchEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "search <document-id> <query...>",
		Short: "Search a document's pages for text",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			req := SearchRequest{
				DocumentID: args[0],
				Query:      strings.Join(args[1:], " "),
			}
			var resp SearchResponse
			if err := client.Post(cmd.Context(), "/api/search", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
