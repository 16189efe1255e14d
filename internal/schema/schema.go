// Package schema holds the request and response shapes shared by the
// screenshot pipeline, the post generator and the RPC layer.
package schema

// Box is a pixel bounding box: x1, y1, x2, y2.
type Box [4]float64

// TextBlock is one recognized text region.
type TextBlock struct {
	Text string `json:"text"`
	Box  Box    `json:"box"`
}

// Dimensions of the decoded image.
type Dimensions struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspect_ratio"`
}

// ColorInfo contains the simple color statistics of an image.
type ColorInfo struct {
	AverageColor   [3]float64 `json:"average_color"`
	IsBright       bool       `json:"is_bright"`
	DominantColors [][3]int   `json:"dominant_colors"`
}

// ImageAnalysis is derived purely from pixel data.
type ImageAnalysis struct {
	Dimensions Dimensions `json:"dimensions"`
	ColorInfo  ColorInfo  `json:"color_info"`
}

// ExtractionResult is the output of process_screenshot and the input of
// generate_post.
type ExtractionResult struct {
	Text       string        `json:"text"`
	TextBlocks []TextBlock   `json:"text_blocks"`
	Analysis   ImageAnalysis `json:"analysis"`
}

// Post is a generated social media post. Style is whatever the model
// suggested and is not guaranteed to be part of the style catalog.
type Post struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Hashtags []string `json:"hashtags"`
	Style    string   `json:"style"`
}
