// Package search finds pages containing a query string.
//
// This is a deliberate full scan on every call: documents are bounded by
// page count (hundreds, not millions), and keeping no persistent index
// means results always reflect the current extraction.
package search

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// snippetContext is how many bytes of context to keep on each side of
	// a match when building snippets, snapped to rune boundaries.
	snippetContext = 60

	// maxSnippets caps the snippets returned per page regardless of how
	// many matches the page contains.
	maxSnippets = 3
)

// PageMatch reports the matches found on a single page.
type PageMatch struct {
	Page     int      // 1-indexed
	Count    int      // non-overlapping occurrence count
	Snippets []string // up to maxSnippets context windows
}

// Scan performs a case-insensitive substring search of query against each
// page's plain text. texts holds page text at index page-1. Results are
// ordered by ascending page number; pages without matches are omitted.
func Scan(texts []string, query string) []PageMatch {
	if query == "" {
		return nil
	}

	needle := strings.ToLower(query)

	var matches []PageMatch
	for i, text := range texts {
		lower := strings.ToLower(text)
		count := strings.Count(lower, needle)
		if count == 0 {
			continue
		}
		matches = append(matches, PageMatch{
			Page:     i + 1,
			Count:    count,
			Snippets: snippets(text, needle),
		})
	}
	return matches
}

// snippets builds up to maxSnippets context windows around match positions.
// Matches are located on the original text with a rune-wise case fold, so
// offsets stay valid when lowering changes byte lengths. The scan position
// advances at least one rune after each match so overlapping matches cannot
// loop forever.
func snippets(text, needle string) []string {
	var out []string
	pos := 0
	for len(out) < maxSnippets {
		idx, matched := indexFold(text[pos:], needle)
		if idx < 0 {
			break
		}
		idx += pos

		start := idx - snippetContext
		if start < 0 {
			start = 0
		}
		for start > 0 && !utf8.RuneStart(text[start]) {
			start--
		}
		end := idx + matched + snippetContext
		if end > len(text) {
			end = len(text)
		}
		for end < len(text) && !utf8.RuneStart(text[end]) {
			end++
		}

		out = append(out, collapseWhitespace(text[start:end]))

		_, size := utf8.DecodeRuneInString(text[idx:])
		pos = idx + size
	}
	return out
}

// indexFold returns the byte offset in s of the first case-insensitive
// occurrence of the lowered needle, plus the byte length of the matched
// text, or (-1, 0) when there is none.
func indexFold(s, needle string) (int, int) {
	for i := 0; i < len(s); {
		if n := foldPrefixLen(s[i:], needle); n >= 0 {
			return i, n
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return -1, 0
}

// foldPrefixLen returns the byte length of the prefix of s whose lowered
// runes spell needle, or -1 when s does not start with one.
func foldPrefixLen(s, needle string) int {
	n := 0
	for _, want := range needle {
		r, size := utf8.DecodeRuneInString(s[n:])
		if size == 0 || unicode.ToLower(r) != want {
			return -1
		}
		n += size
	}
	return n
}

// collapseWhitespace reduces internal runs of whitespace to single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
