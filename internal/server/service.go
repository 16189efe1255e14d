// Package server exposes the screenshot pipeline and the post generator as
// MCP tools and as a small HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/raine/trendy-post-mcp/internal/schema"
	"github.com/rs/zerolog/log"
)

// ErrInvalidInput is returned for missing or malformed arguments.
var ErrInvalidInput = errors.New("invalid input")

// Downloader fetches raw image bytes.
type Downloader interface {
	Download(ctx context.Context, imageURL string) ([]byte, error)
}

// ImageProcessor turns raw image bytes into an extraction result.
type ImageProcessor interface {
	Process(ctx context.Context, data []byte) (*schema.ExtractionResult, error)
}

// PostGenerator writes a post for an extraction result. It never fails.
type PostGenerator interface {
	Generate(ctx context.Context, input schema.ExtractionResult, userQuery string) *schema.Post
}

// Deps are the process-wide components shared by all requests.
type Deps struct {
	Downloader Downloader
	Processor  ImageProcessor
	Generator  PostGenerator
	// GeneratorErr is the reason Generator could not be built, if any.
	GeneratorErr error
}

// GenerateResponse wraps the post returned by process_and_generate.
type GenerateResponse struct {
	Post *schema.Post `json:"post"`
}

// HealthStatus is the health_check response.
type HealthStatus struct {
	Status string `json:"status"`
}

// Service implements the four remote operations.
type Service struct {
	deps Deps
}

// NewService creates a Service.
func NewService(deps Deps) *Service {
	if deps.Downloader == nil {
		deps.Downloader = NewImageDownloader()
	}
	return &Service{deps: deps}
}

// ProcessScreenshot downloads the image and extracts its text and color
// statistics.
func (s *Service) ProcessScreenshot(ctx context.Context, imageURL string) (*schema.ExtractionResult, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, fmt.Errorf("%w: image_url is required", ErrInvalidInput)
	}

	data, err := s.deps.Downloader.Download(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	return s.deps.Processor.Process(ctx, data)
}

// GeneratePost writes a post from an extraction result. LLM failures are
// absorbed by the generator; an error means the generator is unavailable.
func (s *Service) GeneratePost(ctx context.Context, input schema.ExtractionResult, userQuery string) (*schema.Post, error) {
	if s.deps.Generator == nil {
		err := s.deps.GeneratorErr
		if err == nil {
			err = errors.New("not configured")
		}
		return nil, fmt.Errorf("post generator unavailable: %w", err)
	}
	return s.deps.Generator.Generate(ctx, input, userQuery), nil
}

// ProcessAndGenerate runs ProcessScreenshot followed by GeneratePost.
func (s *Service) ProcessAndGenerate(ctx context.Context, imageURL, userQuery string) (*GenerateResponse, error) {
	extraction, err := s.ProcessScreenshot(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	post, err := s.GeneratePost(ctx, *extraction, userQuery)
	if err != nil {
		return nil, err
	}

	log.Info().Str("url", imageURL).Str("style", post.Style).Msg("process and generate done")

	return &GenerateResponse{Post: post}, nil
}

// HealthCheck reports liveness without touching any dependency.
func (s *Service) HealthCheck() HealthStatus {
	return HealthStatus{Status: "ok"}
}
