package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackzampolin/folio/internal/docstore"
	"github.com/jackzampolin/folio/internal/extract"
	"github.com/jackzampolin/folio/internal/pagecache"
	"github.com/jackzampolin/folio/internal/pdf"
	"github.com/jackzampolin/folio/internal/providers"
)

type fakeSlicer struct {
	texts []string
}

func (f fakeSlicer) PageRange(data []byte, start, end int) ([]byte, error) {
	return []byte(fmt.Sprintf("pages-%d-%d", start, end)), nil
}

func (f fakeSlicer) PageTexts(data []byte) ([]string, error) {
	return f.texts, nil
}

func newTestTools(t *testing.T, docs []docstore.Document, texts []string) (*Tools, *providers.MockClient, *pagecache.Cache) {
	t.Helper()
	dir := t.TempDir()

	store, err := docstore.New(filepath.Join(dir, "documents.json"), nil)
	if err != nil {
		t.Fatal(err)
	}
	pathFor := func(id string) string { return filepath.Join(dir, id+".pdf") }
	for _, doc := range docs {
		if _, err := store.Add(doc); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(pathFor(doc.ID), []byte("%PDF fake"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	mock := providers.NewMockClient()
	registry := providers.NewRegistry()
	registry.RegisterLLM("mock", mock)

	cache := pagecache.New()
	extractor := extract.New(extract.Config{
		Store:     store,
		Cache:     cache,
		Originals: pdf.NewOriginalsCache(pathFor, time.Second, nil),
		Registry:  registry,
		Provider:  "mock",
		PDF:       fakeSlicer{texts: texts},
	})

	return New(store, extractor), mock, cache
}

func testDoc(id, title string, pages int) docstore.Document {
	return docstore.Document{
		ID:          id,
		ContentHash: "hash-" + id,
		Metadata: docstore.Metadata{
			Title:     title,
			Authors:   []string{"Jane Roe"},
			SourceURL: "http://unused.invalid/" + id + ".pdf",
		},
		TOC:               "- 1 Introduction (p. 1)",
		ContextualSummary: "A test document.",
		TotalPages:        pages,
		CreatedAt:         time.Now(),
	}
}

func TestListDocumentsEmpty(t *testing.T) {
	tl, _, _ := newTestTools(t, nil, nil)

	if got := tl.ListDocuments(); got != "No documents have been ingested yet." {
		t.Errorf("got %q", got)
	}
}

func TestListDocuments(t *testing.T) {
	tl, _, _ := newTestTools(t, []docstore.Document{
		testDoc("doc1", "First Doc", 10),
		testDoc("doc2", "Second Doc", 20),
	}, nil)

	out := tl.ListDocuments()
	for _, want := range []string{"**First Doc** (id: doc1)", "**Second Doc** (id: doc2)", "Pages: 10", "Jane Roe", "A test document."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDocumentTOC(t *testing.T) {
	tl, _, _ := newTestTools(t, []docstore.Document{testDoc("doc1", "First Doc", 10)}, nil)

	out := tl.DocumentTOC("doc1")
	if !strings.Contains(out, "# Table of Contents: First Doc") {
		t.Errorf("missing title header: %q", out)
	}
	if !strings.Contains(out, "- 1 Introduction (p. 1)") {
		t.Errorf("missing TOC body: %q", out)
	}
}

func TestDocumentTOCNotFound(t *testing.T) {
	tl, _, _ := newTestTools(t, nil, nil)

	if got := tl.DocumentTOC("missing"); got != "Document missing not found." {
		t.Errorf("got %q", got)
	}
}

func TestDocumentTOCEmpty(t *testing.T) {
	doc := testDoc("doc1", "Bare Doc", 10)
	doc.TOC = ""
	tl, _, _ := newTestTools(t, []docstore.Document{doc}, nil)

	if got := tl.DocumentTOC("doc1"); got != "No table of contents available for 'Bare Doc'." {
		t.Errorf("got %q", got)
	}
}

func TestFindPages(t *testing.T) {
	texts := []string{"Anthropic here", "nothing", "Anthropic twice Anthropic"}
	tl, _, _ := newTestTools(t, []docstore.Document{testDoc("doc1", "Doc", 3)}, texts)

	out, err := tl.FindPages(context.Background(), "doc1", "Anthropic")
	if err != nil {
		t.Fatalf("FindPages failed: %v", err)
	}
	if !strings.Contains(out, "Page 1: 1 occurrence(s)") {
		t.Errorf("missing page 1 entry:\n%s", out)
	}
	if !strings.Contains(out, "Page 3: 2 occurrence(s)") {
		t.Errorf("missing page 3 entry:\n%s", out)
	}
	if strings.Contains(out, "Page 2") {
		t.Errorf("page 2 should not match:\n%s", out)
	}
}

func TestFindPagesNoMatches(t *testing.T) {
	tl, _, _ := newTestTools(t, []docstore.Document{testDoc("doc1", "Doc", 2)}, []string{"alpha", "beta"})

	out, err := tl.FindPages(context.Background(), "doc1", "gamma")
	if err != nil {
		t.Fatalf("FindPages failed: %v", err)
	}
	if out != `No matches found for "gamma".` {
		t.Errorf("got %q", out)
	}
}

func TestFindPagesUnknownDocument(t *testing.T) {
	tl, _, _ := newTestTools(t, nil, nil)

	out, err := tl.FindPages(context.Background(), "missing", "query")
	if err != nil {
		t.Fatalf("not-found must be prose, not error: %v", err)
	}
	if out != "Document missing not found." {
		t.Errorf("got %q", out)
	}
}

func TestExtractPageContent(t *testing.T) {
	tl, mock, cache := newTestTools(t, []docstore.Document{testDoc("doc1", "Doc", 10)}, nil)
	mock.ResponseText = "page markdown"

	out, err := tl.ExtractPageContent(context.Background(), "doc1", 2, 3)
	if err != nil {
		t.Fatalf("ExtractPageContent failed: %v", err)
	}
	if !strings.Contains(out, "## Page 2") || !strings.Contains(out, "## Page 3") {
		t.Errorf("missing page headings:\n%s", out)
	}
	if cache.Size() != 2 {
		t.Errorf("expected 2 cached pages, got %d", cache.Size())
	}
}

func TestExtractPageContentValidationIsProse(t *testing.T) {
	tl, _, _ := newTestTools(t, []docstore.Document{testDoc("doc1", "Doc", 10)}, nil)

	out, err := tl.ExtractPageContent(context.Background(), "doc1", 1, 11)
	if err != nil {
		t.Fatalf("validation must be prose, not error: %v", err)
	}
	if !strings.Contains(out, "Maximum span") {
		t.Errorf("got %q", out)
	}

	out, err = tl.ExtractPageContent(context.Background(), "doc1", 5, 15)
	if err != nil || !strings.Contains(out, "Maximum span") {
		t.Errorf("11-page span: got %q, err %v", out, err)
	}

	out, err = tl.ExtractPageContent(context.Background(), "doc1", 0, 5)
	if err != nil || !strings.Contains(out, "page_start") {
		t.Errorf("start below 1: got %q, err %v", out, err)
	}

	out, err = tl.ExtractPageContent(context.Background(), "doc1", 8, 12)
	if err != nil || !strings.Contains(out, "exceeds") {
		t.Errorf("end beyond total: got %q, err %v", out, err)
	}
}

func TestExtractPageContentTransportErrorPropagates(t *testing.T) {
	tl, mock, _ := newTestTools(t, []docstore.Document{testDoc("doc1", "Doc", 10)}, nil)
	mock.ShouldFail = true

	if _, err := tl.ExtractPageContent(context.Background(), "doc1", 1, 2); err == nil {
		t.Fatal("transport failure must propagate as an error")
	}
}

func TestExtractWithFocus(t *testing.T) {
	tl, mock, cache := newTestTools(t, []docstore.Document{testDoc("doc1", "Doc", 10)}, nil)
	mock.ResponseText = "focused markdown"

	out, err := tl.ExtractWithFocus(context.Background(), "doc1", 2, 4, "tables")
	if err != nil {
		t.Fatalf("ExtractWithFocus failed: %v", err)
	}
	if out != "focused markdown" {
		t.Errorf("got %q", out)
	}
	if cache.Size() != 0 {
		t.Error("focused extraction must not populate the cache")
	}
}
