package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/raine/trendy-post-mcp/config"
	"github.com/raine/trendy-post-mcp/internal/llm"
	"github.com/raine/trendy-post-mcp/internal/ocr"
	"github.com/raine/trendy-post-mcp/internal/ocr/tesseract"
	"github.com/raine/trendy-post-mcp/internal/post"
	"github.com/raine/trendy-post-mcp/internal/screenshot"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	withPost := flag.Bool("post", false, "also generate a post with the configured LLM")
	query := flag.String("query", "", "user query that steers the post")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [--post] [--query q] <image-path>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment variables:\n")
		fmt.Fprintf(os.Stderr, "  OCR_LANGUAGES - Tesseract languages (default chi_sim,eng)\n")
		fmt.Fprintf(os.Stderr, "  LLM_PROVIDER  - zhipu, openai, gemini or ollama (with --post)\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	config.LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	imageData, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read image: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	processor := screenshot.NewProcessor(
		ocr.NewAdapter(tesseract.New(cfg.OCRLanguages...), cfg.OCRWorkers),
		screenshot.NewAnalyzer(cfg.Settings.Analysis.DominantColors, cfg.Settings.Analysis.SampleStride),
		cfg.TempDir,
	)

	result, err := processor.Process(ctx, imageData)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error processing image: %v\n", err)
		os.Exit(1)
	}

	if !*withPost {
		printJSON(result)
		return
	}

	completer, err := llm.New(ctx, llm.ProviderConfig{
		Provider: cfg.LLMProvider,
		APIKey:   cfg.LLMAPIKey,
		BaseURL:  cfg.LLMBaseURL,
		Model:    cfg.LLMModel,
		Thinking: cfg.LLMThinking,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating LLM client: %v\n", err)
		os.Exit(1)
	}

	ms := cfg.Settings.ModelSettings
	generator := post.NewGenerator(completer, post.Options{
		Temperature:      ms.Temperature,
		MaxTokens:        ms.MaxTokens,
		ContentMaxTokens: ms.ContentMaxTokens,
	}, nil)

	printJSON(map[string]any{
		"extraction": result,
		"post":       generator.Generate(ctx, *result, *query),
	})
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode result: %v\n", err)
		os.Exit(1)
	}
}
