package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/rs/zerolog/log"
)

const (
	// ZhipuBaseURL is the OpenAI-compatible endpoint of the Zhipu GLM API.
	ZhipuBaseURL = "https://open.bigmodel.cn/api/paas/v4/"
	// DefaultZhipuModel is the GLM model used for post generation.
	DefaultZhipuModel  = "glm-4.5"
	DefaultOpenAIModel = "gpt-4o-mini"
)

// OpenAIConfig configures an OpenAI-compatible chat completion client.
type OpenAIConfig struct {
	Name    string // provider name used in logs
	APIKey  string
	BaseURL string // empty uses the OpenAI default
	Model   string
	// Thinking enables GLM deep thinking mode via the extra "thinking" field.
	Thinking bool
}

// OpenAICompleter talks to any OpenAI-compatible chat completions API,
// including Zhipu GLM.
type OpenAICompleter struct {
	client   openai.Client
	name     string
	model    string
	thinking bool
}

// NewOpenAICompleter creates a chat completion client.
func NewOpenAICompleter(cfg OpenAIConfig) (*OpenAICompleter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s api key is not set", cfg.Name)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%s model is not set", cfg.Name)
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAICompleter{
		client:   openai.NewClient(opts...),
		name:     cfg.Name,
		model:    cfg.Model,
		thinking: cfg.Thinking,
	}, nil
}

// Complete implements Completer.
func (o *OpenAICompleter) Complete(ctx context.Context, req Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt(req)),
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	var reqOpts []option.RequestOption
	if o.thinking {
		reqOpts = append(reqOpts, option.WithJSONSet("thinking", map[string]string{"type": "enabled"}))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params, reqOpts...)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	usage := Usage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}
	log.Info().
		Str("provider", o.name).
		Str("model", o.model).
		Int64("inputTokens", usage.InputTokens).
		Int64("outputTokens", usage.OutputTokens).
		Msg("llm call")

	return cleanText(resp.Choices[0].Message.Content)
}
