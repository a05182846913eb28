package factory

import (
	"fmt"

	"decidely-be/pkg/llm"
	"decidely-be/pkg/llm/ollama"
	"decidely-be/pkg/llm/openrouter"
)

type Config struct {
	Provider      string // "ollama" or "openrouter"
	Model         string
	OllamaBaseURL string
	OpenRouterURL string
	APIKey        string
	Referer       string
}

func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "ollama":
		baseURL := cfg.OllamaBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model), nil
	case "openrouter":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openrouter provider needs an API key")
		}
		return openrouter.NewProvider(cfg.OpenRouterURL, cfg.APIKey, cfg.Model, cfg.Referer), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
