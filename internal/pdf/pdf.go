// Package pdf wraps the external PDF operations the service depends on:
// downloading raw bytes, counting pages, slicing page ranges, and pulling
// per-page plain text for search.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Ops bundles the package functions behind a value so consumers can accept
// an interface and tests can substitute a deterministic fake.
type Ops struct{}

func (Ops) PageCount(data []byte) (int, error)                  { return PageCount(data) }
func (Ops) PageRange(data []byte, start, end int) ([]byte, error) { return PageRange(data, start, end) }
func (Ops) PageTexts(data []byte) ([]string, error)             { return PageTexts(data) }

// PageCount returns the total page count of a PDF.
func PageCount(data []byte) (int, error) {
	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return count, nil
}

// PageRange returns a new PDF containing pages [start, end] (1-indexed,
// inclusive). Out-of-range bounds are clamped to the document.
func PageRange(data []byte, start, end int) ([]byte, error) {
	total, err := PageCount(data)
	if err != nil {
		return nil, err
	}

	start, end = clampRange(start, end, total)
	if start > end {
		return nil, fmt.Errorf("empty page range [%d, %d]", start, end)
	}

	var out bytes.Buffer
	selection := []string{fmt.Sprintf("%d-%d", start, end)}
	if err := api.Trim(bytes.NewReader(data), &out, selection, nil); err != nil {
		return nil, fmt.Errorf("failed to extract pages %d-%d: %w", start, end, err)
	}
	return out.Bytes(), nil
}

// clampRange clamps a 1-indexed inclusive page range to [1, total].
func clampRange(start, end, total int) (int, int) {
	if start < 1 {
		start = 1
	}
	if end > total {
		end = total
	}
	return start, end
}
