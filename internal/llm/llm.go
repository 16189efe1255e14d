// Package llm wraps the hosted and local language models behind a single
// text completion interface.
package llm

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("empty response from model")
	// ErrUnknownProvider is returned by New for an unsupported provider name.
	ErrUnknownProvider = errors.New("unknown llm provider")
)

// DefaultSystemPrompt is used when a request has no system prompt.
const DefaultSystemPrompt = "You are a helpful assistant."

// Request is a single system + user prompt completion.
type Request struct {
	SystemPrompt string
	Prompt       string
	MaxTokens    int
	Temperature  float64
}

// Usage contains token usage information.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// Completer generates text for a prompt.
type Completer interface {
	// Complete returns the generated text. Implementations return
	// ErrEmptyResponse instead of blank text.
	Complete(ctx context.Context, req Request) (string, error)
}

// thinkRegex matches <think>...</think> content, including newlines.
var thinkRegex = regexp.MustCompile(`(?s)<think>.*?</think>`)

// cleanText strips reasoning blocks some models inline into the answer.
func cleanText(text string) (string, error) {
	text = strings.TrimSpace(thinkRegex.ReplaceAllString(text, ""))
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func systemPrompt(req Request) string {
	if req.SystemPrompt == "" {
		return DefaultSystemPrompt
	}
	return req.SystemPrompt
}
