package pdf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"
)

// DefaultDownloadTimeout bounds a single PDF download.
const DefaultDownloadTimeout = 60 * time.Second

// Download fetches PDF bytes from a URL. It fails on any non-2xx status
// or transport error; downloads are not retried.
func Download(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		timeout = DefaultDownloadTimeout
	}

	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to download %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF body: %w", err)
	}
	return data, nil
}

// OriginalsCache resolves document PDF bytes, keeping a copy on disk so
// repeated search and extraction calls don't re-download the file.
type OriginalsCache struct {
	pathFor func(docID string) string
	timeout time.Duration
	logger  *slog.Logger
}

// NewOriginalsCache creates a cache that stores PDFs at the paths returned
// by pathFor (typically home.Dir.OriginalPath).
func NewOriginalsCache(pathFor func(docID string) string, timeout time.Duration, logger *slog.Logger) *OriginalsCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &OriginalsCache{pathFor: pathFor, timeout: timeout, logger: logger}
}

// Store persists PDF bytes for a document so later Fetch calls hit disk.
func (c *OriginalsCache) Store(docID string, data []byte) error {
	return os.WriteFile(c.pathFor(docID), data, 0o644)
}

// Fetch returns the raw PDF bytes for a document, downloading from url on
// a cache miss and persisting the result for next time.
func (c *OriginalsCache) Fetch(ctx context.Context, docID, url string) ([]byte, error) {
	path := c.pathFor(docID)

	if data, err := os.ReadFile(path); err == nil {
		return data, nil
	}

	data, err := Download(ctx, url, c.timeout)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		// A failed disk write only costs a future re-download.
		c.logger.Warn("failed to cache original PDF", "doc_id", docID, "error", err)
	}
	return data, nil
}
