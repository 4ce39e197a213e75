package config

import (
	"fmt"
	"os"

	"github.com/manifoldco/promptui"

	"github.com/ziadkadry99/shopdesk/internal/llm"
)

var backendChoices = []string{"ollama", "groq", "openai", "openrouter", "none"}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .shopdesk.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to shopdesk! Let's configure your assistant.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Corpus sources.
	products, err := (&promptui.Prompt{
		Label:   "Product catalog file",
		Default: cfg.Corpora.Products,
	}).Run()
	if err != nil {
		return nil, fmt.Errorf("products file: %w", err)
	}
	marketing, err := (&promptui.Prompt{
		Label:   "Customer segments / marketing file",
		Default: cfg.Corpora.Marketing,
	}).Run()
	if err != nil {
		return nil, fmt.Errorf("marketing file: %w", err)
	}
	cfg.Corpora = CorporaConfig{Products: products, Marketing: marketing}
	for _, p := range []string{products, marketing} {
		if _, err := os.Stat(p); err != nil {
			fmt.Printf("Note: %s does not exist yet; its index will stay empty until it does.\n", p)
		}
	}

	// 2. Embedding provider.
	embedPrompt := promptui.Select{
		Label: "Select embedding provider",
		Items: []string{
			"ollama — nomic-embed-text on a local Ollama",
			"openai — text-embedding-3-small",
			"hash   — offline word hashing, no model needed",
		},
	}
	embedIdx, _, err := embedPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("embedding selection: %w", err)
	}
	switch embedIdx {
	case 1:
		cfg.Embedding = EmbeddingConfig{Provider: "openai", Model: "text-embedding-3-small", Dimensions: 1536}
	case 2:
		cfg.Embedding = EmbeddingConfig{Provider: "hash", Dimensions: 512}
	}

	// 3. Generative backend.
	backendPrompt := promptui.Select{
		Label: "Select generative backend",
		Items: backendChoices,
	}
	_, backend, err := backendPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("backend selection: %w", err)
	}
	if backend == "none" {
		cfg.Backend.Enabled = false
	} else {
		model, err := (&promptui.Prompt{
			Label:   "Model",
			Default: llm.DefaultModel(backend),
		}).Run()
		if err != nil {
			return nil, fmt.Errorf("model: %w", err)
		}
		cfg.Backend.Enabled = true
		cfg.Backend.Provider = backend
		cfg.Backend.Model = model
	}

	// Check for API keys.
	for _, provider := range []string{cfg.Embedding.Provider, cfg.Backend.Provider} {
		if envVar := llm.APIKeyEnvVar(provider); envVar != "" && os.Getenv(envVar) == "" {
			fmt.Printf("\nNote: Set %s in your environment or .env before running shopdesk.\n", envVar)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(DefaultConfigFile); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", DefaultConfigFile)
	return cfg, nil
}
