// Package ocr turns an image into recognized text regions using an external
// detection and recognition engine.
package ocr

import (
	"context"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/raine/trendy-post-mcp/internal/schema"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the default number of regions recognized in parallel.
const DefaultWorkers = 4

// Adapter runs detection once per image and recognition once per detected
// region. Regions are recognized by a bounded worker pool; results keep
// detection order.
type Adapter struct {
	engine  Engine
	workers int
}

// NewAdapter creates an adapter around engine. workers < 1 means sequential
// recognition.
func NewAdapter(engine Engine, workers int) *Adapter {
	if workers < 1 {
		workers = 1
	}
	return &Adapter{engine: engine, workers: workers}
}

// Extract never fails: any engine error turns into an empty result so the
// caller can continue with the image analysis.
func (a *Adapter) Extract(ctx context.Context, img image.Image) Result {
	res, err := a.extract(ctx, img)
	if err != nil {
		log.Warn().Err(err).Str("engine", a.engine.Name()).Msg("text extraction failed, continuing without text")
		return emptyResult()
	}
	return res
}

func (a *Adapter) extract(ctx context.Context, img image.Image) (Result, error) {
	boxes, err := a.engine.Detect(ctx, img)
	if err != nil {
		return Result{}, fmt.Errorf("detect text regions: %w", err)
	}
	if len(boxes) == 0 {
		return emptyResult(), nil
	}

	texts := make([]string, len(boxes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, box := range boxes {
		g.Go(func() error {
			text, err := a.recognizeBox(gctx, img, box)
			if err != nil {
				return fmt.Errorf("recognize region %d: %w", i, err)
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := emptyResult()
	var full []string
	for i, text := range texts {
		if text == "" {
			continue
		}
		res.Blocks = append(res.Blocks, schema.TextBlock{Text: text, Box: boxes[i]})
		full = append(full, text)
	}
	res.Text = strings.Join(full, " ")

	log.Debug().
		Str("engine", a.engine.Name()).
		Int("regions", len(boxes)).
		Int("blocks", len(res.Blocks)).
		Msg("text extracted")

	return res, nil
}

func (a *Adapter) recognizeBox(ctx context.Context, img image.Image, box schema.Box) (string, error) {
	rect := boxRect(box).Intersect(img.Bounds())
	if rect.Empty() {
		return "", nil
	}
	lines, err := a.engine.Recognize(ctx, imaging.Crop(img, rect))
	if err != nil {
		return "", err
	}
	return strings.Join(lines, " "), nil
}

func boxRect(box schema.Box) image.Rectangle {
	return image.Rect(
		int(math.Round(box[0])),
		int(math.Round(box[1])),
		int(math.Round(box[2])),
		int(math.Round(box[3])),
	)
}
