package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog/log"
)

const (
	DefaultOllamaHost  = "http://127.0.0.1:11434"
	DefaultOllamaModel = "qwen2.5:7b"
)

// OllamaCompleter runs completions against a local Ollama server.
type OllamaCompleter struct {
	client *api.Client
	model  string
}

// NewOllamaCompleter creates a client for the Ollama server at host.
func NewOllamaCompleter(host, model string) (*OllamaCompleter, error) {
	if host == "" {
		host = DefaultOllamaHost
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	parsed, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid ollama host %q", host)
	}
	baseURL := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}
	return &OllamaCompleter{
		client: api.NewClient(baseURL, http.DefaultClient),
		model:  model,
	}, nil
}

// Complete implements Completer.
func (o *OllamaCompleter) Complete(ctx context.Context, req Request) (string, error) {
	streamFalse := false
	options := map[string]any{
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}

	chatReq := &api.ChatRequest{
		Model: o.model,
		Messages: []api.Message{
			{Role: "system", Content: systemPrompt(req)},
			{Role: "user", Content: req.Prompt},
		},
		Stream:  &streamFalse,
		Options: options,
	}

	var content string
	err := o.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		content += resp.Message.Content
		if resp.Done {
			log.Info().
				Str("provider", "ollama").
				Str("model", o.model).
				Int("inputTokens", resp.PromptEvalCount).
				Int("outputTokens", resp.EvalCount).
				Msg("llm call")
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat error: %w", err)
	}

	return cleanText(content)
}
