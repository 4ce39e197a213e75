package config

import "time"

// DefaultConfigFile is the config file looked up in the working directory.
const DefaultConfigFile = ".shopdesk.yml"

// Config is the top-level shopdesk configuration, corresponding to .shopdesk.yml.
type Config struct {
	Corpora    CorporaConfig    `yaml:"corpora" koanf:"corpora"`
	Embedding  EmbeddingConfig  `yaml:"embedding" koanf:"embedding"`
	Backend    BackendConfig    `yaml:"backend" koanf:"backend"`
	Router     RouterConfig     `yaml:"router" koanf:"router"`
	Retrieval  RetrievalConfig  `yaml:"retrieval" koanf:"retrieval"`
	Generation GenerationConfig `yaml:"generation" koanf:"generation"`
	Ingest     IngestConfig     `yaml:"ingest" koanf:"ingest"`
	Timeouts   TimeoutsConfig   `yaml:"timeouts" koanf:"timeouts"`
	// VectorDir persists indexes between runs. Empty keeps them in memory.
	VectorDir string       `yaml:"vector_dir" koanf:"vector_dir"`
	Server    ServerConfig `yaml:"server" koanf:"server"`
	Audit     AuditConfig  `yaml:"audit" koanf:"audit"`
}

// CorporaConfig points at the plain-text source of each corpus.
type CorporaConfig struct {
	Products  string `yaml:"products" koanf:"products"`
	Marketing string `yaml:"marketing" koanf:"marketing"`
}

// EmbeddingConfig selects the embedding model used for ingestion and queries.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider" koanf:"provider"`
	Model      string `yaml:"model" koanf:"model"`
	Dimensions int    `yaml:"dimensions" koanf:"dimensions"`
	BaseURL    string `yaml:"base_url" koanf:"base_url"`
}

// BackendConfig describes the generative backend enabled at startup.
type BackendConfig struct {
	Enabled           bool   `yaml:"enabled" koanf:"enabled"`
	Provider          string `yaml:"provider" koanf:"provider"`
	Model             string `yaml:"model" koanf:"model"`
	BaseURL           string `yaml:"base_url" koanf:"base_url"`
	RequestsPerMinute int    `yaml:"requests_per_minute" koanf:"requests_per_minute"`
}

// RouterConfig toggles LLM-backed query routing ahead of keyword scoring.
type RouterConfig struct {
	Enabled bool `yaml:"enabled" koanf:"enabled"`
}

type RetrievalConfig struct {
	TopK          int     `yaml:"top_k" koanf:"top_k"`
	MinSimilarity float64 `yaml:"min_similarity" koanf:"min_similarity"`
}

type GenerationConfig struct {
	MaxPromptChars int     `yaml:"max_prompt_chars" koanf:"max_prompt_chars"`
	MaxTokens      int     `yaml:"max_tokens" koanf:"max_tokens"`
	Temperature    float64 `yaml:"temperature" koanf:"temperature"`
}

type IngestConfig struct {
	Concurrency    int `yaml:"concurrency" koanf:"concurrency"`
	BatchSize      int `yaml:"batch_size" koanf:"batch_size"`
	// TimeoutSeconds bounds one corpus build. Zero means none.
	TimeoutSeconds int `yaml:"timeout_seconds" koanf:"timeout_seconds"`
}

func (i IngestConfig) Timeout() time.Duration {
	return time.Duration(i.TimeoutSeconds) * time.Second
}

// TimeoutsConfig bounds blocking calls. Zero disables a timeout.
type TimeoutsConfig struct {
	RetrievalSeconds  int `yaml:"retrieval_seconds" koanf:"retrieval_seconds"`
	GenerationSeconds int `yaml:"generation_seconds" koanf:"generation_seconds"`
}

func (t TimeoutsConfig) Retrieval() time.Duration {
	return time.Duration(t.RetrievalSeconds) * time.Second
}

func (t TimeoutsConfig) Generation() time.Duration {
	return time.Duration(t.GenerationSeconds) * time.Second
}

type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// AuditConfig enables the SQLite question log. An empty Path disables it.
type AuditConfig struct {
	Path          string `yaml:"path" koanf:"path"`
	RetentionDays int    `yaml:"retention_days" koanf:"retention_days"`
}

// DefaultConfig returns the built-in configuration: local Ollama for both
// embeddings and generation, in-memory indexes.
func DefaultConfig() *Config {
	return &Config{
		Corpora: CorporaConfig{
			Products:  "data/product.txt",
			Marketing: "data/cust_seg.txt",
		},
		Embedding: EmbeddingConfig{
			Provider:   "ollama",
			Model:      "nomic-embed-text",
			Dimensions: 768,
		},
		Backend: BackendConfig{
			Enabled:  true,
			Provider: "ollama",
			Model:    "mistral",
		},
		Router: RouterConfig{Enabled: true},
		Retrieval: RetrievalConfig{
			TopK: 10,
		},
		Generation: GenerationConfig{
			MaxPromptChars: 15000,
			MaxTokens:      1024,
			Temperature:    0.7,
		},
		Ingest: IngestConfig{
			Concurrency: 4,
			BatchSize:   16,
		},
		Timeouts: TimeoutsConfig{
			RetrievalSeconds:  30,
			GenerationSeconds: 120,
		},
		Server: ServerConfig{Port: 8080},
		Audit:  AuditConfig{RetentionDays: 90},
	}
}
