package screenshot

import (
	"image"
	"image/color"
	"sort"

	"github.com/raine/trendy-post-mcp/internal/schema"
)

const (
	// DefaultDominantColors is the number of dominant colors reported.
	DefaultDominantColors = 5
	// DefaultSampleStride samples every Nth pixel in row-major order when
	// counting colors.
	DefaultSampleStride = 100
	// brightnessThreshold is compared strictly: 127 itself is dark.
	brightnessThreshold = 127
)

// Analyzer computes dimensions and basic color statistics.
type Analyzer struct {
	dominantColors int
	sampleStride   int
}

// NewAnalyzer returns an analyzer. Non-positive values fall back to the
// defaults.
func NewAnalyzer(dominantColors, sampleStride int) *Analyzer {
	if dominantColors <= 0 {
		dominantColors = DefaultDominantColors
	}
	if sampleStride <= 0 {
		sampleStride = DefaultSampleStride
	}
	return &Analyzer{dominantColors: dominantColors, sampleStride: sampleStride}
}

// Analyze derives an ImageAnalysis from pixel data. Images without three
// color channels (grayscale, paletted, alpha masks) report a zero average,
// dark brightness and no dominant colors.
func (a *Analyzer) Analyze(img image.Image) schema.ImageAnalysis {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	analysis := schema.ImageAnalysis{
		Dimensions: schema.Dimensions{
			Width:  width,
			Height: height,
		},
		ColorInfo: schema.ColorInfo{
			DominantColors: [][3]int{},
		},
	}
	if height > 0 {
		analysis.Dimensions.AspectRatio = float64(width) / float64(height)
	}

	if !hasColorChannels(img) || width == 0 || height == 0 {
		return analysis
	}

	var sum [3]float64
	counts := make(map[[3]int]int)
	idx := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			sum[0] += float64(c.R)
			sum[1] += float64(c.G)
			sum[2] += float64(c.B)
			if idx%a.sampleStride == 0 {
				counts[[3]int{int(c.R), int(c.G), int(c.B)}]++
			}
			idx++
		}
	}

	n := float64(width * height)
	avg := [3]float64{sum[0] / n, sum[1] / n, sum[2] / n}
	analysis.ColorInfo.AverageColor = avg
	analysis.ColorInfo.IsBright = (avg[0]+avg[1]+avg[2])/3 > brightnessThreshold
	analysis.ColorInfo.DominantColors = topColors(counts, a.dominantColors)

	return analysis
}

// topColors is a frequency mode estimate over exact pixel values, not a
// perceptual clustering. Ties are ordered by ascending channel values.
func topColors(counts map[[3]int]int, n int) [][3]int {
	colors := make([][3]int, 0, len(counts))
	for c := range counts {
		colors = append(colors, c)
	}
	sort.Slice(colors, func(i, j int) bool {
		ci, cj := counts[colors[i]], counts[colors[j]]
		if ci != cj {
			return ci > cj
		}
		return lessColor(colors[i], colors[j])
	})
	if len(colors) > n {
		colors = colors[:n]
	}
	return colors
}

func lessColor(a, b [3]int) bool {
	for k := 0; k < 3; k++ {
		if a[k] != b[k] {
			return a[k] < b[k]
		}
	}
	return false
}

func hasColorChannels(img image.Image) bool {
	switch img.(type) {
	case *image.Gray, *image.Gray16, *image.Paletted, *image.Alpha, *image.Alpha16:
		return false
	}
	return true
}
