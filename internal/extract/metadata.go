package extract

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackzampolin/folio/internal/providers"
)

const metadataSystemPrompt = "You are a document analysis assistant. You will receive the first " +
	"pages of a PDF document. Extract the following structured information:\n\n" +
	"1. **Title** of the document\n" +
	"2. **Publication date** (ISO format YYYY-MM-DD if available, null otherwise)\n" +
	"3. **Authors** (list of names)\n" +
	"4. **Table of contents** as a markdown string. Transcribe the full TOC " +
	"from the document using nested markdown lists. Include page numbers. " +
	"Example format:\n" +
	"   - 1 Introduction (p. 7)\n" +
	"     - 1.1 Background (p. 8)\n" +
	"     - 1.2 Overview (p. 10)\n" +
	"   - 2 Methods (p. 15)\n" +
	"   If there is no explicit TOC, infer one from section headings.\n" +
	"5. **Contextual summary** - what this document is, what it covers, " +
	"and who it is written for (2-4 sentences).\n"

// metadataSchema constrains the structured metadata output.
var metadataSchema = json.RawMessage(`{
  "name": "document_metadata",
  "strict": true,
  "schema": {
    "type": "object",
    "properties": {
      "title": {"type": "string"},
      "date_published": {"type": ["string", "null"]},
      "authors": {"type": "array", "items": {"type": "string"}},
      "toc": {"type": "string"},
      "contextual_summary": {"type": "string"}
    },
    "required": ["title", "toc", "contextual_summary"],
    "additionalProperties": false
  }
}`)

// DocumentMetadata is the structured result of analyzing a document's
// first pages.
type DocumentMetadata struct {
	Title             string   `json:"title"`
	DatePublished     string   `json:"date_published,omitempty"` // ISO date or empty
	Authors           []string `json:"authors"`
	TOC               string   `json:"toc"`
	ContextualSummary string   `json:"contextual_summary"`
}

// ExtractMetadata sends the first pages of a PDF to the LLM and returns the
// structured metadata, validated against the schema. The output content is
// not retried on validation failure; the error propagates to the caller.
func (e *Extractor) ExtractMetadata(ctx context.Context, firstPages []byte) (*DocumentMetadata, error) {
	client, err := e.client()
	if err != nil {
		return nil, err
	}

	result, err := client.Chat(ctx, &providers.ChatRequest{
		Model: e.model,
		Messages: []providers.Message{
			{Role: "system", Content: metadataSystemPrompt},
			{
				Role:    "user",
				Content: "Analyze this PDF document and extract structured metadata.",
				Files:   [][]byte{firstPages},
			},
		},
		ResponseFormat: &providers.ResponseFormat{
			Type:       "json_schema",
			JSONSchema: metadataSchema,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("metadata extraction failed: %w", err)
	}

	if err := providers.ValidateStructuredJSON(metadataSchema, result.ParsedJSON); err != nil {
		return nil, err
	}

	var meta DocumentMetadata
	if err := json.Unmarshal(result.ParsedJSON, &meta); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	return &meta, nil
}
