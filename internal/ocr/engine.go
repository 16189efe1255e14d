package ocr

import (
	"context"
	"image"

	"github.com/raine/trendy-post-mcp/internal/schema"
)

// Engine is the external OCR model. Implementations must be safe for
// concurrent use; engines backed by a non thread-safe model should create a
// model instance per call or serialize access internally.
type Engine interface {
	// Name identifies the engine in logs.
	Name() string
	// Detect returns text region bounding boxes in detection order.
	Detect(ctx context.Context, img image.Image) ([]schema.Box, error)
	// Recognize returns the recognized text lines of a cropped region.
	Recognize(ctx context.Context, crop image.Image) ([]string, error)
}

// Result is the text extracted from one image.
type Result struct {
	Text   string
	Blocks []schema.TextBlock
}

func emptyResult() Result {
	return Result{Text: "", Blocks: []schema.TextBlock{}}
}
