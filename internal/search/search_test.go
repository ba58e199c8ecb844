package search

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestScanFindsMatchingPages(t *testing.T) {
	texts := []string{
		"Anthropic released a paper. Anthropic again.",
		"More about Anthropic here.",
		"Nothing relevant on this page.",
	}

	matches := Scan(texts, "Anthropic")
	if len(matches) != 2 {
		t.Fatalf("expected 2 matching pages, got %d", len(matches))
	}

	if matches[0].Page != 1 || matches[0].Count != 2 {
		t.Errorf("page 1: got page=%d count=%d", matches[0].Page, matches[0].Count)
	}
	if matches[1].Page != 2 || matches[1].Count != 1 {
		t.Errorf("page 2: got page=%d count=%d", matches[1].Page, matches[1].Count)
	}
}

func TestScanOrderedByPage(t *testing.T) {
	texts := []string{"z match", "no", "z match", "z match", "no"}
	matches := Scan(texts, "z match")

	want := []int{1, 3, 4}
	if len(matches) != len(want) {
		t.Fatalf("expected %d matches, got %d", len(want), len(matches))
	}
	for i, m := range matches {
		if m.Page != want[i] {
			t.Errorf("index %d: got page %d, want %d", i, m.Page, want[i])
		}
	}
}

func TestScanCaseInsensitive(t *testing.T) {
	texts := []string{"ANTHROPIC wrote anthropic and Anthropic."}

	for _, query := range []string{"anthropic", "ANTHROPIC", "Anthropic"} {
		matches := Scan(texts, query)
		if len(matches) != 1 {
			t.Fatalf("query %q: expected 1 page, got %d", query, len(matches))
		}
		if matches[0].Count != 3 {
			t.Errorf("query %q: expected count 3, got %d", query, matches[0].Count)
		}
	}
}

func TestScanNoMatches(t *testing.T) {
	matches := Scan([]string{"alpha", "beta"}, "gamma")
	if matches != nil {
		t.Errorf("expected nil result, got %v", matches)
	}
}

func TestScanEmptyQuery(t *testing.T) {
	if matches := Scan([]string{"anything"}, ""); matches != nil {
		t.Errorf("empty query should match nothing, got %v", matches)
	}
}

func TestSnippetsCappedAtThree(t *testing.T) {
	page := strings.Repeat("the needle is here. ", 10)
	matches := Scan([]string{page}, "needle")
	if len(matches) != 1 {
		t.Fatal("expected a match")
	}
	if matches[0].Count != 10 {
		t.Errorf("expected count 10, got %d", matches[0].Count)
	}
	if len(matches[0].Snippets) != 3 {
		t.Errorf("expected 3 snippets, got %d", len(matches[0].Snippets))
	}
}

func TestSnippetWhitespaceCollapsed(t *testing.T) {
	page := "before\n\n\t  the   needle \n appears   here"
	matches := Scan([]string{page}, "needle")
	if len(matches) != 1 || len(matches[0].Snippets) != 1 {
		t.Fatal("expected one match with one snippet")
	}
	snippet := matches[0].Snippets[0]
	if strings.Contains(snippet, "\n") || strings.Contains(snippet, "  ") {
		t.Errorf("whitespace not collapsed: %q", snippet)
	}
	if !strings.Contains(snippet, "the needle appears here") {
		t.Errorf("unexpected snippet: %q", snippet)
	}
}

func TestSnippetWindowBounds(t *testing.T) {
	// Match at the very start and very end of a page must not panic and
	// must clamp the context window.
	page := "needle" + strings.Repeat("x", 200) + "needle"
	matches := Scan([]string{page}, "needle")
	if len(matches) != 1 {
		t.Fatal("expected a match")
	}
	if matches[0].Count != 2 {
		t.Errorf("expected count 2, got %d", matches[0].Count)
	}
	first := matches[0].Snippets[0]
	if !strings.HasPrefix(first, "needle") {
		t.Errorf("first snippet should start at page start: %q", first)
	}
}

func TestSnippetMultibyteWindowBoundary(t *testing.T) {
	// A multibyte rune sitting exactly where the context window opens must
	// not be split into invalid UTF-8.
	page := strings.Repeat("x", 10) + "€" + strings.Repeat("y", 58) + "match"
	matches := Scan([]string{page}, "match")
	if len(matches) != 1 || len(matches[0].Snippets) != 1 {
		t.Fatal("expected one match with one snippet")
	}
	snippet := matches[0].Snippets[0]
	if !utf8.ValidString(snippet) {
		t.Errorf("snippet is not valid UTF-8: %q", snippet)
	}
	if !strings.Contains(snippet, "match") {
		t.Errorf("snippet missing matched term: %q", snippet)
	}
}

func TestSnippetLengthChangingCaseFold(t *testing.T) {
	// KELVIN SIGN (U+212A) lowers to a single-byte "k", so lowered-text
	// offsets drift from the original. Snippets must still land on the
	// matched term.
	page := strings.Repeat("\u212A", 40) + " the match word"
	matches := Scan([]string{page}, "match")
	if len(matches) != 1 {
		t.Fatal("expected a match")
	}
	if matches[0].Count != 1 {
		t.Errorf("expected count 1, got %d", matches[0].Count)
	}
	if len(matches[0].Snippets) != 1 {
		t.Fatalf("expected 1 snippet, got %d", len(matches[0].Snippets))
	}
	snippet := matches[0].Snippets[0]
	if !utf8.ValidString(snippet) {
		t.Errorf("snippet is not valid UTF-8: %q", snippet)
	}
	if !strings.Contains(snippet, "match") {
		t.Errorf("snippet missing matched term: %q", snippet)
	}
}

func TestScanFoldedQueryMatch(t *testing.T) {
	// The query itself may need folding against non-ASCII page text.
	matches := Scan([]string{"Die Wärmelehre in Kürze."}, "WÄRME")
	if len(matches) != 1 || matches[0].Count != 1 {
		t.Fatalf("expected one page with count 1, got %v", matches)
	}
	if !strings.Contains(matches[0].Snippets[0], "Wärmelehre") {
		t.Errorf("snippet missing matched word: %q", matches[0].Snippets[0])
	}
}

func TestOverlappingMatchesTerminate(t *testing.T) {
	// "aaaa" contains overlapping "aa" matches; the snippet scan must
	// advance and terminate, and the count is non-overlapping.
	matches := Scan([]string{"aaaa"}, "aa")
	if len(matches) != 1 {
		t.Fatal("expected a match")
	}
	if matches[0].Count != 2 {
		t.Errorf("non-overlapping count: expected 2, got %d", matches[0].Count)
	}
	if len(matches[0].Snippets) != 3 {
		t.Errorf("expected 3 snippets (overlap positions), got %d", len(matches[0].Snippets))
	}
}
