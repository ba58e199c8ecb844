package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/folio/internal/api"
	"github.com/jackzampolin/folio/internal/svcctx"
)

// CacheStatsResponse reports the page cache size.
type CacheStatsResponse struct {
	Pages int `json:"pages"`
}

// CacheClearResponse reports how many cached pages were removed.
type CacheClearResponse struct {
	Cleared int `json:"cleared"`
}

// CacheStatsEndpoint handles GET /api/cache.
type CacheStatsEndpoint struct{}

func (e *CacheStatsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/cache", e.handler
}

func (e *CacheStatsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Cache stats
//	@Description	Report the number of cached page extractions
//	@Tags			cache
//	@Produce		json
//	@Success		200	{object}	CacheStatsResponse
//	@Router			/api/cache [get]
func (e *CacheStatsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	cache := svcctx.CacheFrom(r.Context())
	if cache == nil {
		writeError(w, http.StatusServiceUnavailable, "cache not initialized")
		return
	}
	writeJSON(w, http.StatusOK, CacheStatsResponse{Pages: cache.Size()})
}

func (e *CacheStatsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show page cache stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp CacheStatsResponse
			if err := client.Get(cmd.Context(), "/api/cache", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// CacheClearEndpoint handles DELETE /api/cache.
type CacheClearEndpoint struct{}

func (e *CacheClearEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/cache", e.handler
}

func (e *CacheClearEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Clear the page cache
//	@Description	Drop all cached page extractions
//	@Tags			cache
//	@Produce		json
//	@Success		200	{object}	CacheClearResponse
//	@Router			/api/cache [delete]
func (e *CacheClearEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	cache := svcctx.CacheFrom(r.Context())
	if cache == nil {
		writeError(w, http.StatusServiceUnavailable, "cache not initialized")
		return
	}
	writeJSON(w, http.StatusOK, CacheClearResponse{Cleared: cache.InvalidateAll()})
}

func (e *CacheClearEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the page cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp CacheClearResponse
			if err := client.Delete(cmd.Context(), "/api/cache", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// CacheClearDocumentEndpoint handles DELETE /api/cache/{id}.
type CacheClearDocumentEndpoint struct{}

func (e *CacheClearDocumentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/cache/{id}", e.handler
}

func (e *CacheClearDocumentEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Clear cached pages for a document
//	@Description	Drop cached page extractions for a single document
//	@Tags			cache
//	@Produce		json
//	@Param			id	path		string	true	"Document ID"
//	@Success		200	{object}	CacheClearResponse
//	@Router			/api/cache/{id} [delete]
func (e *CacheClearDocumentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	cache := svcctx.CacheFrom(r.Context())
	if cache == nil {
		writeError(w, http.StatusServiceUnavailable, "cache not initialized")
		return
	}
	writeJSON(w, http.StatusOK, CacheClearResponse{Cleared: cache.Invalidate(r.PathValue("id"))})
}

func (e *CacheClearDocumentEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "evict <document-id>",
		Short: "Clear cached pages for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp CacheClearResponse
			if err := client.Delete(cmd.Context(), "/api/cache/"+args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
