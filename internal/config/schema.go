package config

// Config holds folio configuration.
// Stored at: ~/.folio/config.yaml (or ./config.yaml)
type Config struct {
	Server       ServerCfg                 `mapstructure:"server" yaml:"server"`
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
	Ingest       IngestCfg                 `mapstructure:"ingest" yaml:"ingest"`
}

// ServerCfg configures the HTTP server.
type ServerCfg struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     string `mapstructure:"port" yaml:"port"`
	APIToken string `mapstructure:"api_token" yaml:"api_token"` // Optional bearer token (supports ${ENV_VAR} syntax)
}

// LLMProviderCfg configures an LLM provider.
type LLMProviderCfg struct {
	Type    string `mapstructure:"type" yaml:"type"`       // "openrouter", "openai"
	Model   string `mapstructure:"model" yaml:"model"`     // Model name
	APIKey  string `mapstructure:"api_key" yaml:"api_key"` // API key (supports ${ENV_VAR} syntax)
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies default provider selections.
type DefaultsCfg struct {
	MetadataProvider string `mapstructure:"metadata_provider" yaml:"metadata_provider"` // Provider for ingestion metadata
	ExtractProvider  string `mapstructure:"extract_provider" yaml:"extract_provider"`   // Provider for page extraction
}

// IngestCfg configures document ingestion.
type IngestCfg struct {
	MetadataPages          int `mapstructure:"metadata_pages" yaml:"metadata_pages"`                     // Leading pages sent for metadata extraction
	DownloadTimeoutSeconds int `mapstructure:"download_timeout_seconds" yaml:"download_timeout_seconds"` // PDF download timeout
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerCfg{
			Host: "0.0.0.0",
			Port: "8000",
		},
		LLMProviders: map[string]LLMProviderCfg{
			"openrouter": {
				Type:    "openrouter",
				Model:   "google/gemini-2.5-flash",
				APIKey:  "${OPENROUTER_API_KEY}",
				Enabled: true,
			},
			"openai": {
				Type:    "openai",
				Model:   "gpt-4o-mini",
				APIKey:  "${OPENAI_API_KEY}",
				Enabled: false,
			},
		},
		Defaults: DefaultsCfg{
			MetadataProvider: "openrouter",
			ExtractProvider:  "openrouter",
		},
		Ingest: IngestCfg{
			MetadataPages:          15,
			DownloadTimeoutSeconds: 60,
		},
	}
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// EnabledLLMProviders returns all enabled LLM providers.
func (c *Config) EnabledLLMProviders() map[string]LLMProviderCfg {
	result := make(map[string]LLMProviderCfg)
	for name, cfg := range c.LLMProviders {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}
