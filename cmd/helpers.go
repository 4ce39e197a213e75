package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ziadkadry99/shopdesk/internal/assistant"
	"github.com/ziadkadry99/shopdesk/internal/audit"
	"github.com/ziadkadry99/shopdesk/internal/classifier"
	"github.com/ziadkadry99/shopdesk/internal/config"
	"github.com/ziadkadry99/shopdesk/internal/corpus"
	"github.com/ziadkadry99/shopdesk/internal/db"
	"github.com/ziadkadry99/shopdesk/internal/embeddings"
	"github.com/ziadkadry99/shopdesk/internal/llm"
	"github.com/ziadkadry99/shopdesk/internal/progress"
	"github.com/ziadkadry99/shopdesk/internal/retriever"
	"github.com/ziadkadry99/shopdesk/internal/vectordb"
)

// app is everything a command needs to answer or search.
type app struct {
	cfg       *config.Config
	products  *retriever.Retriever
	marketing *retriever.Retriever
	assistant *assistant.Assistant
	// questions is nil unless audit.path is set.
	questions *audit.Store
	database  *db.DB
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `shopdesk init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// createEmbedderFromConfig creates the embedder used for both ingestion and
// queries.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	return embeddings.NewEmbedder(cfg.Embedding.Provider, embeddings.Options{
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		BaseURL:    cfg.Embedding.BaseURL,
	})
}

func backendOptionsFromConfig(cfg *config.Config) llm.BackendOptions {
	return llm.BackendOptions{
		Options: llm.Options{
			Model:   cfg.Backend.Model,
			BaseURL: cfg.Backend.BaseURL,
		},
		MaxTokens:         cfg.Generation.MaxTokens,
		Temperature:       cfg.Generation.Temperature,
		RequestsPerMinute: cfg.Backend.RequestsPerMinute,
	}
}

// newApp wires the full pipeline from config. reporter may be nil.
// Indexes are built lazily on first search unless the caller forces them.
func newApp(reporter progress.Reporter) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	logf("Embeddings: %s (%d dims)\n", embedder.Name(), embedder.Dimensions())

	store, err := vectordb.NewChromemStore(embedder, cfg.VectorDir)
	if err != nil {
		return nil, fmt.Errorf("creating vector store: %w", err)
	}

	registry := corpus.NewRegistry(store, embedder, corpus.Options{
		Concurrency: cfg.Ingest.Concurrency,
		BatchSize:   cfg.Ingest.BatchSize,
		Progress:    reporter,
		Timeout:     cfg.Ingest.Timeout(),
	})

	ropts := retriever.Options{
		MinSimilarity: float32(cfg.Retrieval.MinSimilarity),
		Timeout:       cfg.Timeouts.Retrieval(),
	}
	products := retriever.New(corpus.Spec{Name: corpus.Products, SourcePath: cfg.Corpora.Products}, registry, ropts)
	marketing := retriever.New(corpus.Spec{Name: corpus.Marketing, SourcePath: cfg.Corpora.Marketing}, registry, ropts)

	backendOpts := backendOptionsFromConfig(cfg)
	session := llm.NewSession()
	if cfg.Backend.Enabled {
		if err := session.Enable(cfg.Backend.Provider, backendOpts); err != nil {
			fmt.Fprintf(os.Stderr, "⚠️ %s init failed: %v\n", cfg.Backend.Provider, err)
		} else {
			logf("Backend: %s\n", session.Name())
		}
	}

	var delegate classifier.Delegate
	if cfg.Router.Enabled {
		delegate = classifier.NewLLMRouter(session, cfg.Timeouts.Generation())
	}

	a := assistant.New(classifier.New(delegate), products, marketing, session, assistant.Config{
		TopK:              cfg.Retrieval.TopK,
		MaxPromptChars:    cfg.Generation.MaxPromptChars,
		GenerationTimeout: cfg.Timeouts.Generation(),
		Backend:           backendOpts,
	})

	out := &app{
		cfg:       cfg,
		products:  products,
		marketing: marketing,
		assistant: a,
	}
	if cfg.Audit.Path != "" {
		if err := out.openQuestionLog(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// openQuestionLog opens the SQLite question log, prunes entries past the
// retention window and starts recording every answer.
func (a *app) openQuestionLog() error {
	database, err := db.Open(a.cfg.Audit.Path)
	if err != nil {
		return fmt.Errorf("opening question log: %w", err)
	}
	store := audit.NewStore(database)

	if days := a.cfg.Audit.RetentionDays; days > 0 {
		cutoff := time.Now().AddDate(0, 0, -days)
		n, err := store.DeleteBefore(context.Background(), cutoff)
		if err != nil {
			database.Close()
			return err
		}
		if n > 0 {
			logf("Question log: pruned %d entries older than %d days\n", n, days)
		}
	}

	a.database = database
	a.questions = store
	a.assistant.SetRecorder(store)
	logf("Question log: %s\n", a.cfg.Audit.Path)
	return nil
}

// Close releases the question log, if open.
func (a *app) Close() error {
	if a.database == nil {
		return nil
	}
	return a.database.Close()
}

// retrieverFor returns the retriever for a corpus name.
func (a *app) retrieverFor(name string) (*retriever.Retriever, error) {
	switch name {
	case corpus.Products:
		return a.products, nil
	case corpus.Marketing:
		return a.marketing, nil
	}
	return nil, fmt.Errorf("unknown corpus %q (want %s or %s)", name, corpus.Products, corpus.Marketing)
}
