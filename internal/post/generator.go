package post

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/raine/trendy-post-mcp/internal/llm"
	"github.com/raine/trendy-post-mcp/internal/schema"
	"github.com/rs/zerolog/log"
)

const maxHashtags = 8

// Options holds the model parameters used for every step.
type Options struct {
	Temperature      float64
	MaxTokens        int
	ContentMaxTokens int
}

// DefaultOptions returns the parameters the generator was tuned with.
func DefaultOptions() Options {
	return Options{
		Temperature:      0.7,
		MaxTokens:        4096,
		ContentMaxTokens: 8192,
	}
}

// Generator turns extraction results into posts. It runs four dependent
// LLM steps in order: style, content, title and hashtags. A failing step
// is replaced by its fallback, so Generate always returns a complete post.
type Generator struct {
	llm  llm.Completer
	opts Options

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a generator. A nil src seeds a random source.
func NewGenerator(completer llm.Completer, opts Options, src rand.Source) *Generator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	defaults := DefaultOptions()
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaults.MaxTokens
	}
	if opts.ContentMaxTokens <= 0 {
		opts.ContentMaxTokens = defaults.ContentMaxTokens
	}
	return &Generator{
		llm:  completer,
		opts: opts,
		rng:  rand.New(src),
	}
}

// Generate builds a post for the extraction result, optionally steered by
// userQuery.
func (g *Generator) Generate(ctx context.Context, input schema.ExtractionResult, userQuery string) *schema.Post {
	style := g.determineStyle(ctx, input.Text, userQuery)
	content := g.generateContent(ctx, input.Text, style, userQuery)
	title := g.generateTitle(ctx, content, style, userQuery)
	hashtags := g.generateHashtags(ctx, content, style, userQuery)

	log.Info().
		Str("style", style).
		Int("contentRunes", len([]rune(content))).
		Int("hashtags", len(hashtags)).
		Msg("post generated")

	return &schema.Post{
		Title:    title,
		Content:  content,
		Hashtags: hashtags,
		Style:    style,
	}
}

func (g *Generator) complete(ctx context.Context, step, system, prompt string, maxTokens int) (string, error) {
	text, err := g.llm.Complete(ctx, llm.Request{
		SystemPrompt: system,
		Prompt:       prompt,
		MaxTokens:    maxTokens,
		Temperature:  g.opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%s step: %w", step, err)
	}
	log.Debug().Str("step", step).Int("runes", len([]rune(text))).Msg("llm step completed")
	return text, nil
}

// determineStyle asks the model for a style and returns its answer
// lower-cased, whether or not it is in the catalog.
func (g *Generator) determineStyle(ctx context.Context, text, userQuery string) string {
	resp, err := g.complete(ctx, "style", "", stylePrompt(text, userQuery), g.opts.MaxTokens)
	if err != nil {
		log.Error().Err(err).Msg("error determining style with llm")
		return DefaultStyle
	}
	return strings.ToLower(strings.TrimSpace(resp))
}

func (g *Generator) generateContent(ctx context.Context, text, style, userQuery string) string {
	resp, err := g.complete(ctx, "content", contentSystemPrompt, contentPrompt(text, style, userQuery), g.opts.ContentMaxTokens)
	if err != nil {
		log.Error().Err(err).Msg("error generating content, using fallback template")
		return g.fallbackContent(text, style)
	}
	return resp
}

func (g *Generator) generateTitle(ctx context.Context, content, style, userQuery string) string {
	resp, err := g.complete(ctx, "title", "", titlePrompt(content, style, userQuery), g.opts.MaxTokens)
	if err != nil {
		log.Error().Err(err).Msg("error generating title with llm")
		return fallbackTitle(style)
	}
	return strings.TrimSpace(resp)
}

func (g *Generator) generateHashtags(ctx context.Context, content, style, userQuery string) []string {
	resp, err := g.complete(ctx, "hashtags", "", hashtagPrompt(content, style, userQuery), g.opts.MaxTokens)
	if err != nil {
		log.Error().Err(err).Msg("error generating hashtags with llm")
		return fallbackHashtags(style)
	}
	tags := parseHashtags(resp)
	if len(tags) == 0 {
		log.Warn().Str("response", resp).Msg("no hashtags in llm response, using fallback")
		return fallbackHashtags(style)
	}
	return tags
}

func (g *Generator) fallbackContent(text, style string) string {
	g.mu.Lock()
	i := g.rng.IntN(len(contentTemplates))
	g.mu.Unlock()
	return fmt.Sprintf(contentTemplates[i], style, sampleText(text))
}
