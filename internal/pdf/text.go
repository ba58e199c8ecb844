package pdf

import (
	"fmt"
	"os"

	"github.com/tsawler/tabula"
)

// PageTexts extracts plain text for every page of a PDF, 1-indexed at
// slice position page-1. Pages with no extractable text (e.g. scanned
// images) yield empty strings rather than errors.
func PageTexts(data []byte) ([]string, error) {
	total, err := PageCount(data)
	if err != nil {
		return nil, err
	}

	// tabula reads from a file, so stage the bytes in a temp file once
	// and extract page by page.
	tmp, err := os.CreateTemp("", "folio-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to stage PDF: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to stage PDF: %w", err)
	}

	texts := make([]string, total)
	for page := 1; page <= total; page++ {
		text, _, err := tabula.Open(tmp.Name()).Pages(page).Text()
		if err != nil {
			// Treat unextractable pages as empty rather than failing the
			// whole document; search simply finds no matches there.
			continue
		}
		texts[page-1] = text
	}
	return texts, nil
}
