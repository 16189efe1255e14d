package server

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/raine/trendy-post-mcp/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func TestMCP_ProcessScreenshot(t *testing.T) {
	svc, d, _, _ := newTestService()
	h := &toolHandlers{svc: svc}

	res, err := h.processScreenshot(context.Background(), callRequest("process_screenshot", map[string]any{
		"image_url": "https://example.com/a.png",
	}))

	require.NoError(t, err)
	assert.False(t, res.IsError)
	var got schema.ExtractionResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &got))
	assert.Equal(t, *sampleExtraction(), got)
	assert.Equal(t, []string{"https://example.com/a.png"}, d.urls)
}

func TestMCP_ProcessScreenshot_MissingURL(t *testing.T) {
	svc, d, _, _ := newTestService()
	h := &toolHandlers{svc: svc}

	res, err := h.processScreenshot(context.Background(), callRequest("process_screenshot", map[string]any{}))

	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Empty(t, d.urls)
}

func TestMCP_ProcessScreenshot_DownloadErrorIsToolError(t *testing.T) {
	svc, d, _, _ := newTestService()
	d.err = fmt.Errorf("%w: GET https://example.com/a.png returned status 404", ErrDownload)
	h := &toolHandlers{svc: svc}

	res, err := h.processScreenshot(context.Background(), callRequest("process_screenshot", map[string]any{
		"image_url": "https://example.com/a.png",
	}))

	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "404")
}

func TestMCP_GeneratePost_ObjectArgument(t *testing.T) {
	svc, _, _, g := newTestService()
	h := &toolHandlers{svc: svc}

	res, err := h.generatePost(context.Background(), callRequest("generate_post", map[string]any{
		"image_analysis": map[string]any{
			"text":        "今天去了新开的咖啡店",
			"text_blocks": []any{},
			"analysis": map[string]any{
				"dimensions": map[string]any{"width": 1080, "height": 1920, "aspect_ratio": 0.5625},
				"color_info": map[string]any{"is_bright": true, "dominant_colors": []any{[]any{240, 240, 240}}},
			},
		},
		"user_query": "探店",
	}))

	require.NoError(t, err)
	assert.False(t, res.IsError)
	var post schema.Post
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &post))
	assert.Equal(t, "food", post.Style)

	require.Len(t, g.inputs, 1)
	assert.Equal(t, "今天去了新开的咖啡店", g.inputs[0].Text)
	assert.Equal(t, 1080, g.inputs[0].Analysis.Dimensions.Width)
	assert.Equal(t, [][3]int{{240, 240, 240}}, g.inputs[0].Analysis.ColorInfo.DominantColors)
	assert.Equal(t, []string{"探店"}, g.queries)
}

func TestMCP_GeneratePost_StringArgument(t *testing.T) {
	svc, _, _, g := newTestService()
	h := &toolHandlers{svc: svc}

	res, err := h.generatePost(context.Background(), callRequest("generate_post", map[string]any{
		"image_analysis": `{"text":"hello","text_blocks":[],"analysis":{}}`,
	}))

	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "hello", g.inputs[0].Text)
	assert.Equal(t, []string{""}, g.queries)
}

func TestMCP_GeneratePost_InvalidArgument(t *testing.T) {
	svc, _, _, g := newTestService()
	h := &toolHandlers{svc: svc}

	for _, arg := range []any{nil, "not json", 42} {
		args := map[string]any{}
		if arg != nil {
			args["image_analysis"] = arg
		}
		res, err := h.generatePost(context.Background(), callRequest("generate_post", args))

		require.NoError(t, err)
		assert.True(t, res.IsError, "argument %v", arg)
	}
	assert.Empty(t, g.inputs)
}

func TestMCP_ProcessAndGenerate(t *testing.T) {
	svc, _, _, _ := newTestService()
	h := &toolHandlers{svc: svc}

	res, err := h.processAndGenerate(context.Background(), callRequest("process_and_generate", map[string]any{
		"image_url": "https://example.com/a.png",
	}))

	require.NoError(t, err)
	assert.False(t, res.IsError)
	var got struct {
		Post schema.Post `json:"post"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &got))
	assert.Equal(t, "food", got.Post.Style)
	assert.Equal(t, "标题", got.Post.Title)
}

func TestMCP_HealthCheck(t *testing.T) {
	h := &toolHandlers{svc: NewService(Deps{})}

	res, err := h.healthCheck(context.Background(), callRequest("health_check", nil))

	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, resultText(t, res))
}

func TestMCP_ListTools(t *testing.T) {
	svc, _, _, _ := newTestService()
	s := NewMCPServer(svc, "test")

	resp := s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))

	b, err := json.Marshal(resp)
	require.NoError(t, err)
	for _, name := range []string{"process_screenshot", "generate_post", "process_and_generate", "health_check"} {
		assert.Contains(t, string(b), `"name":"`+name+`"`)
	}
}
