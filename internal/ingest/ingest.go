// Package ingest turns a PDF URL into a stored document record: download,
// duplicate detection by content hash, and LLM metadata extraction over the
// document's first pages.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackzampolin/folio/internal/docstore"
	"github.com/jackzampolin/folio/internal/extract"
	"github.com/jackzampolin/folio/internal/pdf"
)

// DefaultMetadataPages is how many leading pages are sent to the LLM for
// metadata extraction (fewer when the document is shorter).
const DefaultMetadataPages = 15

// PDFOps is the PDF surface ingestion consumes. pdf.Ops is the production
// implementation.
type PDFOps interface {
	PageCount(data []byte) (int, error)
	PageRange(data []byte, start, end int) ([]byte, error)
}

// MetadataExtractor analyzes a document's first pages. *extract.Extractor
// is the production implementation.
type MetadataExtractor interface {
	ExtractMetadata(ctx context.Context, firstPages []byte) (*extract.DocumentMetadata, error)
}

// Config holds the collaborators an Ingestor needs.
type Config struct {
	Store           *docstore.Store
	Extractor       MetadataExtractor
	Originals       *pdf.OriginalsCache
	PDF             PDFOps // defaults to pdf.Ops{}
	MetadataPages   int    // defaults to DefaultMetadataPages
	DownloadTimeout time.Duration
	Logger          *slog.Logger
}

// Ingestor ingests PDFs from URLs.
type Ingestor struct {
	store           *docstore.Store
	extractor       MetadataExtractor
	originals       *pdf.OriginalsCache
	pdf             PDFOps
	metadataPages   int
	downloadTimeout time.Duration
	logger          *slog.Logger
}

// New creates an Ingestor.
func New(cfg Config) *Ingestor {
	if cfg.PDF == nil {
		cfg.PDF = pdf.Ops{}
	}
	if cfg.MetadataPages <= 0 {
		cfg.MetadataPages = DefaultMetadataPages
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Ingestor{
		store:           cfg.Store,
		extractor:       cfg.Extractor,
		originals:       cfg.Originals,
		pdf:             cfg.PDF,
		metadataPages:   cfg.MetadataPages,
		downloadTimeout: cfg.DownloadTimeout,
		logger:          cfg.Logger,
	}
}

// Ingest downloads a PDF, extracts metadata via the LLM, and stores the
// document. Returns *docstore.DuplicateError when a byte-identical PDF was
// already ingested.
func (i *Ingestor) Ingest(ctx context.Context, url string) (docstore.Document, error) {
	data, err := pdf.Download(ctx, url, i.downloadTimeout)
	if err != nil {
		return docstore.Document{}, err
	}

	hashBytes := sha256.Sum256(data)
	contentHash := hex.EncodeToString(hashBytes[:])

	if existing, ok := i.store.FindByHash(contentHash); ok {
		return docstore.Document{}, &docstore.DuplicateError{Existing: existing}
	}

	totalPages, err := i.pdf.PageCount(data)
	if err != nil {
		return docstore.Document{}, fmt.Errorf("failed to read PDF from %s: %w", url, err)
	}

	maxPages := i.metadataPages
	if totalPages < maxPages {
		maxPages = totalPages
	}
	firstPages, err := i.pdf.PageRange(data, 1, maxPages)
	if err != nil {
		return docstore.Document{}, fmt.Errorf("failed to slice pages 1-%d: %w", maxPages, err)
	}

	meta, err := i.extractor.ExtractMetadata(ctx, firstPages)
	if err != nil {
		return docstore.Document{}, err
	}

	doc := docstore.Document{
		ID:          docstore.NewID(),
		ContentHash: contentHash,
		Metadata: docstore.Metadata{
			Title:         meta.Title,
			DatePublished: validISODate(meta.DatePublished),
			Authors:       meta.Authors,
			SourceURL:     url,
		},
		TOC:               meta.TOC,
		ContextualSummary: meta.ContextualSummary,
		TotalPages:        totalPages,
		CreatedAt:         time.Now().UTC(),
	}

	stored, err := i.store.Add(doc)
	if err != nil {
		return docstore.Document{}, err
	}

	if err := i.originals.Store(stored.ID, data); err != nil {
		// The original can be re-fetched from the source URL on demand.
		i.logger.Warn("failed to persist original PDF", "doc_id", stored.ID, "error", err)
	}

	i.logger.Info("ingested document",
		"doc_id", stored.ID, "title", stored.Metadata.Title, "pages", totalPages)
	return stored, nil
}

// validISODate returns the date unchanged when it parses as YYYY-MM-DD,
// and empty otherwise. A malformed model-supplied date is dropped rather
// than failing the whole ingestion.
func validISODate(date string) string {
	if date == "" {
		return ""
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return ""
	}
	return date
}
