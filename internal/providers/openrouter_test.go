package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func openRouterTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *OpenRouterClient) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewOpenRouterClient(OpenRouterConfig{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		RetryDelay: time.Millisecond,
	})
	return srv, client
}

func okChatResponse(content string) string {
	return `{
		"id": "gen-1",
		"model": "google/gemini-2.5-flash",
		"choices": [{"message": {"role": "assistant", "content": ` + jsonString(content) + `}}],
		"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
	}`
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestOpenRouterChat(t *testing.T) {
	var gotAuth string
	_, client := openRouterTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(okChatResponse("hello")))
	})

	result, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("unexpected Authorization header: %q", gotAuth)
	}
	if result.Content != "hello" {
		t.Errorf("expected content %q, got %q", "hello", result.Content)
	}
	if result.TotalTokens != 15 {
		t.Errorf("expected 15 total tokens, got %d", result.TotalTokens)
	}
	if result.Provider != OpenRouterName {
		t.Errorf("expected provider %q, got %q", OpenRouterName, result.Provider)
	}
}

func TestOpenRouterChatEncodesPDFAttachment(t *testing.T) {
	var gotBody map[string]any
	_, client := openRouterTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Write([]byte(okChatResponse("ok")))
	})

	_, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{
			Role:    "user",
			Content: "extract this",
			Files:   [][]byte{[]byte("%PDF-1.4 fake")},
		}},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	messages := gotBody["messages"].([]any)
	content := messages[0].(map[string]any)["content"].([]any)
	if len(content) != 2 {
		t.Fatalf("expected 2 content parts, got %d", len(content))
	}

	filePart := content[1].(map[string]any)
	if filePart["type"] != "file" {
		t.Errorf("expected file part, got %v", filePart["type"])
	}
	file := filePart["file"].(map[string]any)
	data := file["file_data"].(string)
	if !strings.HasPrefix(data, "data:application/pdf;base64,") {
		t.Errorf("file_data should be a PDF data URL, got %q", data)
	}
}

func TestOpenRouterRetriesServerErrors(t *testing.T) {
	attempts := 0
	_, client := openRouterTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			http.Error(w, "upstream overloaded", http.StatusBadGateway)
			return
		}
		w.Write([]byte(okChatResponse("recovered")))
	})

	result, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Chat failed after retries: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if result.Content != "recovered" {
		t.Errorf("got %q", result.Content)
	}
}

func TestOpenRouterDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	_, client := openRouterTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "bad request", http.StatusBadRequest)
	})

	_, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Fatal("expected error on 400")
	}
	if attempts != 1 {
		t.Errorf("400 should not retry, got %d attempts", attempts)
	}
}

func TestOpenRouterStructuredOutput(t *testing.T) {
	_, client := openRouterTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(okChatResponse("```json\n{\"title\": \"A Paper\"}\n```")))
	})

	result, err := client.Chat(context.Background(), &ChatRequest{
		Messages:       []Message{{Role: "user", Content: "extract"}},
		ResponseFormat: &ResponseFormat{Type: "json_schema"},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	var parsed struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(result.ParsedJSON, &parsed); err != nil {
		t.Fatalf("ParsedJSON invalid: %v", err)
	}
	if parsed.Title != "A Paper" {
		t.Errorf("got title %q", parsed.Title)
	}
}
