package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix marks environment overrides. A double underscore separates
// nesting levels: SHOPDESK_BACKEND__PROVIDER sets backend.provider.
const EnvPrefix = "SHOPDESK_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (SHOPDESK_*). A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// envKey maps SHOPDESK_RETRIEVAL__TOP_K to retrieval.top_k.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validEmbeddingProviders = map[string]bool{
	"ollama": true,
	"openai": true,
	"hash":   true,
}

var validBackendProviders = map[string]bool{
	"ollama":     true,
	"openai":     true,
	"groq":       true,
	"openrouter": true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Corpora.Products == "" || c.Corpora.Marketing == "" {
		return fmt.Errorf("corpora.products and corpora.marketing are required")
	}

	if !validEmbeddingProviders[c.Embedding.Provider] {
		return fmt.Errorf("invalid embedding.provider %q: must be one of ollama, openai, hash", c.Embedding.Provider)
	}
	if c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding.dimensions must be non-negative")
	}

	if c.Backend.Provider != "" && !validBackendProviders[c.Backend.Provider] {
		return fmt.Errorf("invalid backend.provider %q: must be one of ollama, openai, groq, openrouter", c.Backend.Provider)
	}
	if c.Backend.Enabled && c.Backend.Provider == "" {
		return fmt.Errorf("backend.provider is required when backend.enabled is true")
	}
	if c.Backend.RequestsPerMinute < 0 {
		return fmt.Errorf("backend.requests_per_minute must be non-negative")
	}

	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive")
	}
	if c.Retrieval.MinSimilarity < -1 || c.Retrieval.MinSimilarity >= 1 {
		return fmt.Errorf("retrieval.min_similarity must be in [-1, 1)")
	}

	if c.Generation.MaxPromptChars < 0 || c.Generation.MaxTokens < 0 {
		return fmt.Errorf("generation limits must be non-negative")
	}
	if c.Ingest.Concurrency < 0 || c.Ingest.BatchSize < 0 || c.Ingest.TimeoutSeconds < 0 {
		return fmt.Errorf("ingest settings must be non-negative")
	}
	if c.Timeouts.RetrievalSeconds < 0 || c.Timeouts.GenerationSeconds < 0 {
		return fmt.Errorf("timeouts must be non-negative")
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	if c.Audit.RetentionDays < 0 {
		return fmt.Errorf("audit.retention_days must be non-negative")
	}

	return nil
}
