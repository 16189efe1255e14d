package ocr

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"

	"github.com/raine/trendy-post-mcp/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine recognizes a region by looking up the crop width.
type fakeEngine struct {
	boxes     []schema.Box
	detectErr error
	byWidth   map[int][]string
	failWidth int

	mu    sync.Mutex
	crops []image.Rectangle
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Detect(ctx context.Context, img image.Image) ([]schema.Box, error) {
	return f.boxes, f.detectErr
}

func (f *fakeEngine) Recognize(ctx context.Context, crop image.Image) ([]string, error) {
	f.mu.Lock()
	f.crops = append(f.crops, crop.Bounds())
	f.mu.Unlock()
	w := crop.Bounds().Dx()
	if f.failWidth != 0 && w == f.failWidth {
		return nil, errors.New("model crashed")
	}
	return f.byWidth[w], nil
}

func testImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 200, 100))
}

func TestExtract_NoRegions(t *testing.T) {
	a := NewAdapter(&fakeEngine{}, 2)

	res := a.Extract(context.Background(), testImage())

	assert.Equal(t, "", res.Text)
	require.NotNil(t, res.Blocks)
	assert.Empty(t, res.Blocks)
}

func TestExtract_SingleRegion(t *testing.T) {
	engine := &fakeEngine{
		boxes:   []schema.Box{{10, 20, 60, 40}},
		byWidth: map[int][]string{50: {"Hello"}},
	}
	a := NewAdapter(engine, 1)

	res := a.Extract(context.Background(), testImage())

	assert.Equal(t, "Hello", res.Text)
	assert.Equal(t, []schema.TextBlock{{Text: "Hello", Box: schema.Box{10, 20, 60, 40}}}, res.Blocks)
	require.Len(t, engine.crops, 1)
	assert.Equal(t, 20, engine.crops[0].Dy())
}

func TestExtract_JoinsLinesAndKeepsDetectionOrder(t *testing.T) {
	engine := &fakeEngine{
		boxes: []schema.Box{
			{0, 0, 30, 10},
			{0, 10, 10, 20},
			{0, 20, 20, 30},
			{0, 30, 40, 40},
		},
		byWidth: map[int][]string{
			30: {"first", "line"},
			10: nil,
			20: {"third"},
			40: {"fourth"},
		},
	}
	a := NewAdapter(engine, 4)

	res := a.Extract(context.Background(), testImage())

	assert.Equal(t, "first line third fourth", res.Text)
	require.Len(t, res.Blocks, 3)
	assert.Equal(t, "first line", res.Blocks[0].Text)
	assert.Equal(t, schema.Box{0, 20, 20, 30}, res.Blocks[1].Box)
	assert.Equal(t, "fourth", res.Blocks[2].Text)
}

func TestExtract_DetectionErrorDegradesToEmpty(t *testing.T) {
	a := NewAdapter(&fakeEngine{detectErr: errors.New("no model")}, 2)

	res := a.Extract(context.Background(), testImage())

	assert.Equal(t, "", res.Text)
	assert.Empty(t, res.Blocks)
}

func TestExtract_RecognitionErrorDegradesToEmpty(t *testing.T) {
	engine := &fakeEngine{
		boxes:     []schema.Box{{0, 0, 30, 10}, {0, 0, 15, 10}},
		byWidth:   map[int][]string{30: {"ok"}},
		failWidth: 15,
	}
	a := NewAdapter(engine, 1)

	res := a.Extract(context.Background(), testImage())

	assert.Equal(t, "", res.Text)
	assert.Empty(t, res.Blocks)
}

func TestExtract_SkipsRegionsOutsideImage(t *testing.T) {
	engine := &fakeEngine{
		boxes:   []schema.Box{{500, 500, 600, 600}, {190, 0, 250, 10}},
		byWidth: map[int][]string{10: {"edge"}},
	}
	a := NewAdapter(engine, 2)

	res := a.Extract(context.Background(), testImage())

	// The second box is clipped to the image so its crop is 10px wide.
	assert.Equal(t, "edge", res.Text)
	require.Len(t, res.Blocks, 1)
	assert.Equal(t, schema.Box{190, 0, 250, 10}, res.Blocks[0].Box)
	assert.Len(t, engine.crops, 1)
}

func TestNewAdapter_ClampsWorkers(t *testing.T) {
	a := NewAdapter(&fakeEngine{}, 0)
	assert.Equal(t, 1, a.workers)
}
