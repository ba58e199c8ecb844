// Package tools implements the retrieval operations exposed to agents.
//
// Every operation returns prose: the consumer is a language-model agent
// reading natural-language tool output, not a typed API client. Not-found
// and range-validation conditions are normal negative results rendered as
// messages; only transport and extraction failures surface as errors.
package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackzampolin/folio/internal/docstore"
	"github.com/jackzampolin/folio/internal/extract"
)

// Tools is the agent-facing tool surface.
type Tools struct {
	store     *docstore.Store
	extractor *extract.Extractor
}

// New creates the tool surface.
func New(store *docstore.Store, extractor *extract.Extractor) *Tools {
	return &Tools{store: store, extractor: extractor}
}

// ListDocuments renders every ingested document with its id, title, page
// count, authors, and summary.
func (t *Tools) ListDocuments() string {
	docs := t.store.List()
	if len(docs) == 0 {
		return "No documents have been ingested yet."
	}

	var entries []string
	for _, doc := range docs {
		authors := strings.Join(doc.Metadata.Authors, ", ")
		if authors == "" {
			authors = "Unknown"
		}
		pages := "?"
		if doc.TotalPages > 0 {
			pages = fmt.Sprintf("%d", doc.TotalPages)
		}
		entries = append(entries, fmt.Sprintf(
			"- **%s** (id: %s)\n  Pages: %s | Authors: %s\n  Summary: %s",
			doc.Metadata.Title, doc.ID, pages, authors, doc.ContextualSummary))
	}
	return strings.Join(entries, "\n\n")
}

// DocumentTOC renders a document's table of contents.
func (t *Tools) DocumentTOC(docID string) string {
	doc, ok := t.store.Get(docID)
	if !ok {
		return notFoundMessage(docID)
	}
	if doc.TOC == "" {
		return fmt.Sprintf("No table of contents available for '%s'.", doc.Metadata.Title)
	}
	return fmt.Sprintf("# Table of Contents: %s\n\n%s", doc.Metadata.Title, doc.TOC)
}

// FindPages searches a document's text for a query and renders per-page
// occurrence counts with context snippets.
func (t *Tools) FindPages(ctx context.Context, docID, query string) (string, error) {
	matches, err := t.extractor.FindPages(ctx, docID, query)
	if err != nil {
		if msg, ok := flatten(err); ok {
			return msg, nil
		}
		return "", err
	}

	if len(matches) == 0 {
		return fmt.Sprintf("No matches found for %q.", query), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found matches on %d page(s) for %q:\n", len(matches), query)
	for _, m := range matches {
		fmt.Fprintf(&b, "\nPage %d: %d occurrence(s)\n", m.Page, m.Count)
		for _, snippet := range m.Snippets {
			fmt.Fprintf(&b, "  - ...%s...\n", snippet)
		}
	}
	return b.String(), nil
}

// ExtractPageContent returns the markdown content of a page range,
// serving cached pages and extracting the rest.
func (t *Tools) ExtractPageContent(ctx context.Context, docID string, pageStart, pageEnd int) (string, error) {
	content, err := t.extractor.ExtractPages(ctx, docID, pageStart, pageEnd)
	if err != nil {
		if msg, ok := flatten(err); ok {
			return msg, nil
		}
		return "", err
	}
	return content, nil
}

// ExtractWithFocus extracts a page range as one combined request with a
// focus instruction, bypassing the page cache.
func (t *Tools) ExtractWithFocus(ctx context.Context, docID string, pageStart, pageEnd int, focus string) (string, error) {
	content, err := t.extractor.ExtractWithFocus(ctx, docID, pageStart, pageEnd, focus)
	if err != nil {
		if msg, ok := flatten(err); ok {
			return msg, nil
		}
		return "", err
	}
	return content, nil
}

func notFoundMessage(docID string) string {
	return fmt.Sprintf("Document %s not found.", docID)
}

// flatten turns not-found and validation errors into agent-facing prose.
// Other errors (transport, extraction) are left for the caller.
func flatten(err error) (string, bool) {
	var notFound *extract.NotFoundError
	if errors.As(err, &notFound) {
		return notFoundMessage(notFound.DocID), true
	}
	var validation *extract.ValidationError
	if errors.As(err, &validation) {
		return validation.Message, true
	}
	return "", false
}
