package home

import (
	"path/filepath"
	"testing"
)

func TestNewDefaultsToUserHome(t *testing.T) {
	d, err := New("")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if filepath.Base(d.Path()) != DefaultDirName {
		t.Errorf("expected default dir name %q, got %q", DefaultDirName, d.Path())
	}
}

func TestPaths(t *testing.T) {
	d, err := New("/tmp/folio-test")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"data", d.DataPath(), "/tmp/folio-test/data"},
		{"config", d.ConfigPath(), "/tmp/folio-test/config.yaml"},
		{"documents", d.DocumentsPath(), "/tmp/folio-test/data/documents.json"},
		{"originals", d.OriginalsDir(), "/tmp/folio-test/originals"},
		{"original pdf", d.OriginalPath("abc123"), "/tmp/folio-test/originals/abc123.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %q, want %q", tt.got, tt.expected)
			}
		})
	}
}

func TestEnsureExists(t *testing.T) {
	d, err := New(t.TempDir() + "/home")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if d.Exists() {
		t.Fatal("home should not exist yet")
	}
	if err := d.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}
	if !d.Exists() {
		t.Error("home should exist after EnsureExists")
	}
	if d.ConfigExists() {
		t.Error("config file should not exist")
	}
}
