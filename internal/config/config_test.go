package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v2"
)

func TestResolveEnvVars(t *testing.T) {
	t.Setenv("FOLIO_TEST_KEY", "secret123")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain value", "no-vars-here", "no-vars-here"},
		{"single var", "${FOLIO_TEST_KEY}", "secret123"},
		{"embedded var", "prefix-${FOLIO_TEST_KEY}-suffix", "prefix-secret123-suffix"},
		{"unset var", "${FOLIO_UNSET_VAR}", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveEnvVars(tt.input); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != "8000" {
		t.Errorf("got port %q", cfg.Server.Port)
	}
	if _, ok := cfg.GetLLMProvider("openrouter"); !ok {
		t.Error("openrouter provider missing from defaults")
	}
	if cfg.Defaults.ExtractProvider != "openrouter" {
		t.Errorf("got extract provider %q", cfg.Defaults.ExtractProvider)
	}
	if cfg.Ingest.MetadataPages != 15 {
		t.Errorf("got metadata pages %d", cfg.Ingest.MetadataPages)
	}
}

func TestEnabledLLMProviders(t *testing.T) {
	cfg := &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"a": {Type: "openrouter", Enabled: true},
			"b": {Type: "openai", Enabled: false},
		},
	}

	enabled := cfg.EnabledLLMProviders()
	if len(enabled) != 1 {
		t.Fatalf("expected 1 enabled provider, got %d", len(enabled))
	}
	if _, ok := enabled["a"]; !ok {
		t.Error("provider a should be enabled")
	}
}

func TestToProviderRegistryConfig(t *testing.T) {
	t.Setenv("FOLIO_TEST_API_KEY", "resolved-key")

	cfg := &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"openrouter": {
				Type:    "openrouter",
				Model:   "google/gemini-2.5-flash",
				APIKey:  "${FOLIO_TEST_API_KEY}",
				Enabled: true,
			},
		},
	}

	reg := cfg.ToProviderRegistryConfig()
	got, ok := reg.LLMProviders["openrouter"]
	if !ok {
		t.Fatal("openrouter missing from registry config")
	}
	if got.APIKey != "resolved-key" {
		t.Errorf("API key not resolved: %q", got.APIKey)
	}
	if got.Model != "google/gemini-2.5-flash" {
		t.Errorf("got model %q", got.Model)
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# Folio configuration") {
		t.Error("missing header comment")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("written config is not valid YAML: %v", err)
	}
	if cfg.Server.Port != "8000" {
		t.Errorf("round-trip lost server port: %q", cfg.Server.Port)
	}
	if cfg.LLMProviders["openrouter"].APIKey != "${OPENROUTER_API_KEY}" {
		t.Error("env var reference should be written literally")
	}
}
