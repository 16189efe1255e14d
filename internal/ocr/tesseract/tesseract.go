// Package tesseract implements ocr.Engine on top of the Tesseract engine via
// gosseract. Tesseract must be installed together with the language data for
// every configured language.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/raine/trendy-post-mcp/internal/schema"
)

// DefaultLanguages covers the simplified Chinese screenshots the posts are
// written for, plus English.
var DefaultLanguages = []string{"chi_sim", "eng"}

// Engine creates a gosseract client per call since a client is not safe for
// concurrent use.
type Engine struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

// New returns a Tesseract engine for the given languages.
func New(languages ...string) *Engine {
	if len(languages) == 0 {
		languages = DefaultLanguages
	}
	return &Engine{
		languages:     append([]string(nil), languages...),
		clientFactory: gosseract.NewClient,
	}
}

func (e *Engine) Name() string { return "tesseract" }

// Detect returns the bounding boxes of text lines found with automatic page
// segmentation.
func (e *Engine) Detect(ctx context.Context, img image.Image) ([]schema.Box, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := e.newClient(img, gosseract.PSM_AUTO)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	lines, err := c.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("get line boxes: %w", err)
	}
	boxes := make([]schema.Box, 0, len(lines))
	for _, l := range lines {
		if l.Box.Empty() {
			continue
		}
		boxes = append(boxes, schema.Box{
			float64(l.Box.Min.X),
			float64(l.Box.Min.Y),
			float64(l.Box.Max.X),
			float64(l.Box.Max.Y),
		})
	}
	return boxes, nil
}

// Recognize reads the crop as a single block and returns its non-empty lines.
func (e *Engine) Recognize(ctx context.Context, crop image.Image) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := e.newClient(crop, gosseract.PSM_SINGLE_BLOCK)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	text, err := c.Text()
	if err != nil {
		return nil, fmt.Errorf("recognize text: %w", err)
	}
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func (e *Engine) newClient(img image.Image, mode gosseract.PageSegMode) (*gosseract.Client, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	c := e.clientFactory()
	if err := c.SetLanguage(e.languages...); err != nil {
		c.Close()
		return nil, fmt.Errorf("set languages: %w", err)
	}
	if err := c.SetPageSegMode(mode); err != nil {
		c.Close()
		return nil, fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := c.SetImageFromBytes(buf.Bytes()); err != nil {
		c.Close()
		return nil, fmt.Errorf("set image: %w", err)
	}
	return c, nil
}
