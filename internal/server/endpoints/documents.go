package endpoints

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/folio/internal/api"
	"github.com/jackzampolin/folio/internal/docstore"
	"github.com/jackzampolin/folio/internal/svcctx"
)

// ListDocumentsEndpoint handles GET /api/documents.
type ListDocumentsEndpoint struct{}

func (e *ListDocumentsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/documents", e.handler
}

func (e *ListDocumentsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List documents
//	@Description	List all ingested documents
//	@Tags			documents
//	@Produce		json
//	@Success		200	{array}	docstore.Document
//	@Router			/api/documents [get]
func (e *ListDocumentsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.StoreFrom(r.Context())
	docs := store.List()
	if docs == nil {
		docs = []docstore.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (e *ListDocumentsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List ingested documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var docs []docstore.Document
			if err := client.Get(cmd.Context(), "/api/documents", &docs); err != nil {
				return err
			}
			return api.Output(docs)
		},
	}
}

// GetDocumentEndpoint handles GET /api/documents/{id}.
type GetDocumentEndpoint struct{}

func (e *GetDocumentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/documents/{id}", e.handler
}

func (e *GetDocumentEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get document
//	@Description	Get a single document record by id
//	@Tags			documents
//	@Produce		json
//	@Param			id	path		string	true	"Document ID"
//	@Success		200	{object}	docstore.Document
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/documents/{id} [get]
func (e *GetDocumentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.StoreFrom(r.Context())
	doc, ok := store.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (e *GetDocumentEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <document-id>",
		Short: "Get a document record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var doc docstore.Document
			if err := client.Get(cmd.Context(), "/api/documents/"+args[0], &doc); err != nil {
				return err
			}
			return api.Output(doc)
		},
	}
}

// TOCResponse is the response for the TOC endpoint.
type TOCResponse struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	TOC        string `json:"toc"`
}

// DocumentTOCEndpoint handles GET /api/documents/{id}/toc.
type DocumentTOCEndpoint struct{}

func (e *DocumentTOCEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/documents/{id}/toc", e.handler
}

func (e *DocumentTOCEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get table of contents
//	@Description	Get a document's table of contents as markdown
//	@Tags			documents
//	@Produce		json
//	@Param			id	path		string	true	"Document ID"
//	@Success		200	{object}	TOCResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/documents/{id}/toc [get]
func (e *DocumentTOCEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.StoreFrom(r.Context())
	doc, ok := store.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	writeJSON(w, http.StatusOK, TOCResponse{
		DocumentID: doc.ID,
		Title:      doc.Metadata.Title,
		TOC:        doc.TOC,
	})
}

func (e *DocumentTOCEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "toc <document-id>",
		Short: "Show a document's table of contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp TOCResponse
			if err := client.Get(cmd.Context(), "/api/documents/"+args[0]+"/toc", &resp); err != nil {
				return err
			}
			fmt.Println(resp.TOC)
			return nil
		},
	}
}
