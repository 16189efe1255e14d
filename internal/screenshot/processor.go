// Package screenshot decodes uploaded screenshots, extracts their text and
// computes simple color statistics.
package screenshot

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	"github.com/raine/trendy-post-mcp/internal/ocr"
	"github.com/raine/trendy-post-mcp/internal/schema"
	"github.com/rs/zerolog/log"

	// Extra formats on top of the ones registered by imaging.
	_ "golang.org/x/image/webp"
)

// ErrDecode is returned when the image bytes cannot be decoded.
var ErrDecode = errors.New("failed to decode image")

// TextExtractor extracts text from a decoded image. It never fails.
type TextExtractor interface {
	Extract(ctx context.Context, img image.Image) ocr.Result
}

// Processor runs text extraction and image analysis on raw image bytes.
type Processor struct {
	extractor TextExtractor
	analyzer  *Analyzer
	tempDir   string
}

// NewProcessor creates a processor. An empty tempDir uses the OS default.
func NewProcessor(extractor TextExtractor, analyzer *Analyzer, tempDir string) *Processor {
	return &Processor{extractor: extractor, analyzer: analyzer, tempDir: tempDir}
}

// Process decodes data through a temporary file that is removed before
// returning, then runs OCR and the analyzer on the decoded image.
func (p *Processor) Process(ctx context.Context, data []byte) (*schema.ExtractionResult, error) {
	img, err := p.decode(data)
	if err != nil {
		return nil, err
	}

	text := p.extractor.Extract(ctx, img)
	analysis := p.analyzer.Analyze(img)

	blocks := text.Blocks
	if blocks == nil {
		blocks = []schema.TextBlock{}
	}

	log.Info().
		Int("width", analysis.Dimensions.Width).
		Int("height", analysis.Dimensions.Height).
		Int("textBlocks", len(blocks)).
		Bool("bright", analysis.ColorInfo.IsBright).
		Msg("screenshot processed")

	return &schema.ExtractionResult{
		Text:       text.Text,
		TextBlocks: blocks,
		Analysis:   analysis,
	}, nil
}

func (p *Processor) decode(data []byte) (image.Image, error) {
	f, err := os.CreateTemp(p.tempDir, "screenshot-*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	path := f.Name()
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("failed to remove temp file")
		}
	}()

	_, werr := f.Write(data)
	cerr := f.Close()
	if werr != nil {
		return nil, fmt.Errorf("failed to write temp file: %w", werr)
	}
	if cerr != nil {
		return nil, fmt.Errorf("failed to close temp file: %w", cerr)
	}

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}
