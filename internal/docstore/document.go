package docstore

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Metadata is the bibliographic metadata extracted at ingestion.
type Metadata struct {
	Title         string   `json:"title"`
	DatePublished string   `json:"date_published,omitempty"` // ISO date (YYYY-MM-DD)
	Authors       []string `json:"authors,omitempty"`
	SourceURL     string   `json:"source_url"`
}

// Document is one ingested PDF record. Documents are immutable after
// creation; there is no update or delete operation.
type Document struct {
	ID                string    `json:"id"`
	ContentHash       string    `json:"content_hash"` // SHA-256 hex digest of the PDF bytes
	Metadata          Metadata  `json:"metadata"`
	TOC               string    `json:"toc,omitempty"` // Markdown-formatted table of contents
	ContextualSummary string    `json:"contextual_summary,omitempty"`
	TotalPages        int       `json:"total_pages,omitempty"` // 0 when unknown
	CreatedAt         time.Time `json:"created_at"`
}

// NewID generates a short opaque document identifier.
func NewID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}
