package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackzampolin/folio/internal/docstore"
	"github.com/jackzampolin/folio/internal/extract"
	"github.com/jackzampolin/folio/internal/pdf"
)

type fakePDF struct {
	pages int
}

func (f fakePDF) PageCount(data []byte) (int, error) {
	return f.pages, nil
}

func (f fakePDF) PageRange(data []byte, start, end int) ([]byte, error) {
	return []byte(fmt.Sprintf("pages-%d-%d", start, end)), nil
}

type fakeMetadata struct {
	meta      *extract.DocumentMetadata
	err       error
	gotPages  []byte
	callCount int
}

func (f *fakeMetadata) ExtractMetadata(ctx context.Context, firstPages []byte) (*extract.DocumentMetadata, error) {
	f.callCount++
	f.gotPages = firstPages
	if f.err != nil {
		return nil, f.err
	}
	return f.meta, nil
}

func newTestIngestor(t *testing.T, pages int, meta *fakeMetadata) (*Ingestor, *docstore.Store, string) {
	t.Helper()
	dir := t.TempDir()

	store, err := docstore.New(filepath.Join(dir, "documents.json"), nil)
	if err != nil {
		t.Fatal(err)
	}

	pathFor := func(id string) string { return filepath.Join(dir, id+".pdf") }
	ing := New(Config{
		Store:     store,
		Extractor: meta,
		Originals: pdf.NewOriginalsCache(pathFor, time.Second, nil),
		PDF:       fakePDF{pages: pages},
	})
	return ing, store, dir
}

func pdfServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestIngest(t *testing.T) {
	meta := &fakeMetadata{meta: &extract.DocumentMetadata{
		Title:             "A Study",
		DatePublished:     "2024-06-01",
		Authors:           []string{"Jane Roe"},
		TOC:               "- 1 Introduction (p. 1)",
		ContextualSummary: "A short study.",
	}}
	ing, store, dir := newTestIngestor(t, 42, meta)
	srv := pdfServer(t, "%PDF-1.4 fake")

	doc, err := ing.Ingest(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	if doc.Metadata.Title != "A Study" {
		t.Errorf("got title %q", doc.Metadata.Title)
	}
	if doc.TotalPages != 42 {
		t.Errorf("got %d pages", doc.TotalPages)
	}
	if doc.Metadata.SourceURL != srv.URL {
		t.Errorf("got source URL %q", doc.Metadata.SourceURL)
	}
	if len(doc.ID) != 12 {
		t.Errorf("expected 12-char id, got %q", doc.ID)
	}
	if doc.ContentHash == "" {
		t.Error("content hash not set")
	}

	if got, ok := store.Get(doc.ID); !ok || got.TOC != doc.TOC {
		t.Error("document not persisted")
	}

	// Original saved to disk for later retrieval calls.
	original := filepath.Join(dir, doc.ID+".pdf")
	if data, err := os.ReadFile(original); err != nil || string(data) != "%PDF-1.4 fake" {
		t.Errorf("original not persisted: %v", err)
	}
}

func TestIngestSendsFirstFifteenPages(t *testing.T) {
	meta := &fakeMetadata{meta: &extract.DocumentMetadata{Title: "T", TOC: "-", ContextualSummary: "s"}}
	ing, _, _ := newTestIngestor(t, 200, meta)
	srv := pdfServer(t, "%PDF long doc")

	if _, err := ing.Ingest(context.Background(), srv.URL); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if string(meta.gotPages) != "pages-1-15" {
		t.Errorf("expected first 15 pages, got %q", meta.gotPages)
	}
}

func TestIngestShortDocumentSendsAllPages(t *testing.T) {
	meta := &fakeMetadata{meta: &extract.DocumentMetadata{Title: "T", TOC: "-", ContextualSummary: "s"}}
	ing, _, _ := newTestIngestor(t, 4, meta)
	srv := pdfServer(t, "%PDF short doc")

	if _, err := ing.Ingest(context.Background(), srv.URL); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if string(meta.gotPages) != "pages-1-4" {
		t.Errorf("expected all 4 pages, got %q", meta.gotPages)
	}
}

func TestIngestDuplicate(t *testing.T) {
	meta := &fakeMetadata{meta: &extract.DocumentMetadata{Title: "First", TOC: "-", ContextualSummary: "s"}}
	ing, _, _ := newTestIngestor(t, 10, meta)
	srv := pdfServer(t, "%PDF same bytes")

	first, err := ing.Ingest(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("first Ingest failed: %v", err)
	}

	_, err = ing.Ingest(context.Background(), srv.URL)
	var dup *docstore.DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}
	if dup.Existing.ID != first.ID {
		t.Errorf("conflict references %q, want %q", dup.Existing.ID, first.ID)
	}

	// Duplicate check happens before the LLM call.
	if meta.callCount != 1 {
		t.Errorf("expected 1 metadata extraction, got %d", meta.callCount)
	}
}

func TestIngestDropsMalformedDate(t *testing.T) {
	meta := &fakeMetadata{meta: &extract.DocumentMetadata{
		Title: "T", DatePublished: "June 2024", TOC: "-", ContextualSummary: "s",
	}}
	ing, _, _ := newTestIngestor(t, 10, meta)
	srv := pdfServer(t, "%PDF dated")

	doc, err := ing.Ingest(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if doc.Metadata.DatePublished != "" {
		t.Errorf("malformed date should be dropped, got %q", doc.Metadata.DatePublished)
	}
}

func TestIngestDownloadFailure(t *testing.T) {
	meta := &fakeMetadata{meta: &extract.DocumentMetadata{Title: "T", TOC: "-", ContextualSummary: "s"}}
	ing, store, _ := newTestIngestor(t, 10, meta)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := ing.Ingest(context.Background(), srv.URL); err == nil {
		t.Fatal("expected download error")
	}
	if store.Len() != 0 {
		t.Error("failed ingestion must not store a document")
	}
}
