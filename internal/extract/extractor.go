// Package extract orchestrates on-demand, per-page LLM content extraction
// with a page-level cache, and the text-search-then-extract retrieval flow
// built on top of it.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackzampolin/folio/internal/docstore"
	"github.com/jackzampolin/folio/internal/pagecache"
	"github.com/jackzampolin/folio/internal/pdf"
	"github.com/jackzampolin/folio/internal/providers"
	"github.com/jackzampolin/folio/internal/search"
)

const pageExtractionPrompt = "Convert this PDF page to clean markdown. " +
	"Preserve headings, lists, tables, and footnotes. " +
	"Output only the page content as markdown, with no commentary."

// PDFSlicer is the PDF manipulation surface the orchestrator consumes:
// slicing a page range into standalone PDF bytes and extracting per-page
// plain text. pdf.Ops is the production implementation.
type PDFSlicer interface {
	PageRange(data []byte, start, end int) ([]byte, error)
	PageTexts(data []byte) ([]string, error)
}

// Config holds the collaborators an Extractor needs.
type Config struct {
	Store     *docstore.Store
	Cache     *pagecache.Cache
	Originals *pdf.OriginalsCache
	Registry  *providers.Registry
	Provider  string    // registry name of the LLM client used for extraction
	Model     string    // optional model override
	PDF       PDFSlicer // defaults to pdf.Ops{}
	Logger    *slog.Logger
}

// Extractor coordinates the document store, the originals cache, the page
// cache, and the LLM client for all retrieval operations.
type Extractor struct {
	store     *docstore.Store
	cache     *pagecache.Cache
	originals *pdf.OriginalsCache
	registry  *providers.Registry
	provider  string
	model     string
	pdf       PDFSlicer
	logger    *slog.Logger
}

// New creates an Extractor.
func New(cfg Config) *Extractor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	slicer := cfg.PDF
	if slicer == nil {
		slicer = pdf.Ops{}
	}
	return &Extractor{
		store:     cfg.Store,
		cache:     cfg.Cache,
		originals: cfg.Originals,
		registry:  cfg.Registry,
		provider:  cfg.Provider,
		model:     cfg.Model,
		pdf:       slicer,
		logger:    logger,
	}
}

// client resolves the LLM client per call so provider hot-reloads take
// effect without rebuilding the Extractor.
func (e *Extractor) client() (providers.LLMClient, error) {
	return e.registry.GetLLM(e.provider)
}

// validateRange applies the range checks in a fixed order so callers get
// the most specific message first: span, then start bound, then end bound
// (when the total page count is known).
func validateRange(doc docstore.Document, pageStart, pageEnd int) error {
	if span := pageEnd - pageStart + 1; span > MaxPageSpan {
		return validationErrorf(
			"Page range too large: %d pages requested (%d-%d). Maximum span is %d pages per call.",
			span, pageStart, pageEnd, MaxPageSpan)
	}
	if pageStart < 1 {
		return validationErrorf("page_start must be >= 1, got %d", pageStart)
	}
	if doc.TotalPages > 0 && pageEnd > doc.TotalPages {
		return validationErrorf(
			"page_end %d exceeds the document's %d pages.", pageEnd, doc.TotalPages)
	}
	if pageEnd < pageStart {
		return validationErrorf(
			"page_end %d is before page_start %d.", pageEnd, pageStart)
	}
	return nil
}

// ExtractPages returns the markdown content of pages [pageStart, pageEnd]
// (1-indexed, inclusive), serving each page from the cache when possible
// and extracting uncached pages one at a time. After a successful return
// every page in the range is cached.
func (e *Extractor) ExtractPages(ctx context.Context, docID string, pageStart, pageEnd int) (string, error) {
	doc, ok := e.store.Get(docID)
	if !ok {
		return "", &NotFoundError{DocID: docID}
	}
	if err := validateRange(doc, pageStart, pageEnd); err != nil {
		return "", err
	}

	// Fetched lazily on the first cache miss.
	var pdfBytes []byte

	var blocks []string
	for page := pageStart; page <= pageEnd; page++ {
		content, ok := e.cache.Get(docID, page)
		if !ok {
			if pdfBytes == nil {
				var err error
				pdfBytes, err = e.originals.Fetch(ctx, docID, doc.Metadata.SourceURL)
				if err != nil {
					return "", fmt.Errorf("failed to fetch PDF for %s: %w", docID, err)
				}
			}

			pageBytes, err := e.pdf.PageRange(pdfBytes, page, page)
			if err != nil {
				return "", fmt.Errorf("failed to slice page %d: %w", page, err)
			}

			content, err = e.extractMarkdown(ctx, pageBytes, pageExtractionPrompt)
			if err != nil {
				return "", fmt.Errorf("failed to extract page %d: %w", page, err)
			}
			e.cache.Put(docID, page, content)
			e.logger.Debug("extracted page", "doc_id", docID, "page", page)
		}

		blocks = append(blocks, fmt.Sprintf("## Page %d\n\n%s", page, content))
	}

	return strings.Join(blocks, "\n\n---\n\n"), nil
}

// ExtractWithFocus submits the entire page range as one multi-page request
// with a focus instruction appended. It bypasses the page cache in both
// directions: some extraction tasks (footnotes spanning pages, multi-page
// tables) need the model to see adjacent pages together, and the focused
// output is not reusable as per-page content.
func (e *Extractor) ExtractWithFocus(ctx context.Context, docID string, pageStart, pageEnd int, focus string) (string, error) {
	doc, ok := e.store.Get(docID)
	if !ok {
		return "", &NotFoundError{DocID: docID}
	}
	if err := validateRange(doc, pageStart, pageEnd); err != nil {
		return "", err
	}

	pdfBytes, err := e.originals.Fetch(ctx, docID, doc.Metadata.SourceURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch PDF for %s: %w", docID, err)
	}

	rangeBytes, err := e.pdf.PageRange(pdfBytes, pageStart, pageEnd)
	if err != nil {
		return "", fmt.Errorf("failed to slice pages %d-%d: %w", pageStart, pageEnd, err)
	}

	prompt := fmt.Sprintf("%s\n\nPay particular attention to: %s", pageExtractionPrompt, focus)
	content, err := e.extractMarkdown(ctx, rangeBytes, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to extract pages %d-%d: %w", pageStart, pageEnd, err)
	}
	return content, nil
}

// FindPages performs a case-insensitive text search across every page of a
// document, returning occurrence counts and context snippets per matching
// page.
func (e *Extractor) FindPages(ctx context.Context, docID, query string) ([]search.PageMatch, error) {
	if strings.TrimSpace(query) == "" {
		return nil, validationErrorf("query must not be empty")
	}

	doc, ok := e.store.Get(docID)
	if !ok {
		return nil, &NotFoundError{DocID: docID}
	}

	pdfBytes, err := e.originals.Fetch(ctx, docID, doc.Metadata.SourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch PDF for %s: %w", docID, err)
	}

	texts, err := e.pdf.PageTexts(pdfBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from %s: %w", docID, err)
	}

	return search.Scan(texts, query), nil
}

// extractMarkdown sends PDF bytes plus an instruction to the LLM and
// returns the markdown text. Transport failures propagate; content is
// never validated or retried.
func (e *Extractor) extractMarkdown(ctx context.Context, pdfBytes []byte, instruction string) (string, error) {
	client, err := e.client()
	if err != nil {
		return "", err
	}

	result, err := client.Chat(ctx, &providers.ChatRequest{
		Model: e.model,
		Messages: []providers.Message{{
			Role:    "user",
			Content: instruction,
			Files:   [][]byte{pdfBytes},
		}},
	})
	if err != nil {
		return "", err
	}
	return result.Content, nil
}
