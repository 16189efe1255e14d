// Package post generates Xiaohongshu-style posts from screenshot extraction
// results with a chain of LLM calls.
package post

// DefaultStyle is used when the style cannot be determined.
const DefaultStyle = "lifestyle"

// Styles is the catalog offered to the model when picking a style. The
// model's answer is used as-is and may fall outside this list.
var Styles = []string{
	"lifestyle",
	"fashion",
	"beauty",
	"food",
	"travel",
	"fitness",
	"home decor",
	"snowboarding",
	"bouldering",
	"archery",
	"AI",
	"news",
	"tech",
	"exhibitions",
	"concerts",
	"plays",
	"films",
	"series",
}
