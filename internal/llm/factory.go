package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider names accepted by New.
const (
	ProviderZhipu  = "zhipu"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// ProviderConfig selects and configures a completion backend.
type ProviderConfig struct {
	Provider string
	APIKey   string
	BaseURL  string // OpenAI-compatible base URL, or the Ollama host
	Model    string
	Thinking bool
}

// New creates the Completer for cfg.Provider.
func New(ctx context.Context, cfg ProviderConfig) (Completer, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderZhipu, "":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = ZhipuBaseURL
		}
		model := cfg.Model
		if model == "" {
			model = DefaultZhipuModel
		}
		return NewOpenAICompleter(OpenAIConfig{
			Name:     ProviderZhipu,
			APIKey:   cfg.APIKey,
			BaseURL:  baseURL,
			Model:    model,
			Thinking: cfg.Thinking,
		})
	case ProviderOpenAI:
		model := cfg.Model
		if model == "" {
			model = DefaultOpenAIModel
		}
		return NewOpenAICompleter(OpenAIConfig{
			Name:    ProviderOpenAI,
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   model,
		})
	case ProviderGemini:
		return NewGeminiCompleter(ctx, cfg.APIKey, cfg.Model)
	case ProviderOllama:
		return NewOllamaCompleter(cfg.BaseURL, cfg.Model)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
