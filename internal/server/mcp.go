package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/raine/trendy-post-mcp/internal/schema"
	"github.com/rs/zerolog/log"
)

// ServerName is the MCP implementation name advertised to clients.
const ServerName = "trendy-post-mcp"

// NewMCPServer registers the service operations as MCP tools.
func NewMCPServer(svc *Service, version string) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer(
		ServerName,
		version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithRecovery(),
	)

	h := &toolHandlers{svc: svc}

	s.AddTool(mcp.NewTool("process_screenshot",
		mcp.WithDescription("Download a screenshot, extract its text with OCR and analyze its colors."),
		mcp.WithString("image_url", mcp.Required(), mcp.Description("URL of the screenshot image")),
	), h.processScreenshot)

	s.AddTool(mcp.NewTool("generate_post",
		mcp.WithDescription("Generate a Xiaohongshu-style post from a process_screenshot result."),
		mcp.WithObject("image_analysis", mcp.Required(), mcp.Description("Result of process_screenshot: text, text_blocks and analysis")),
		mcp.WithString("user_query", mcp.Description("Optional instructions that steer the post")),
	), h.generatePost)

	s.AddTool(mcp.NewTool("process_and_generate",
		mcp.WithDescription("Process a screenshot and generate a post from it in one call."),
		mcp.WithString("image_url", mcp.Required(), mcp.Description("URL of the screenshot image")),
		mcp.WithString("user_query", mcp.Description("Optional instructions that steer the post")),
	), h.processAndGenerate)

	s.AddTool(mcp.NewTool("health_check",
		mcp.WithDescription("Report that the server is running."),
	), h.healthCheck)

	return s
}

type toolHandlers struct {
	svc *Service
}

func (h *toolHandlers) processScreenshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	imageURL, err := request.RequireString("image_url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := h.svc.ProcessScreenshot(ctx, imageURL)
	if err != nil {
		return toolError("process_screenshot", err), nil
	}
	return jsonResult(result)
}

func (h *toolHandlers) generatePost(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeExtraction(request.GetArguments()["image_analysis"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	post, err := h.svc.GeneratePost(ctx, input, request.GetString("user_query", ""))
	if err != nil {
		return toolError("generate_post", err), nil
	}
	return jsonResult(post)
}

func (h *toolHandlers) processAndGenerate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	imageURL, err := request.RequireString("image_url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := h.svc.ProcessAndGenerate(ctx, imageURL, request.GetString("user_query", ""))
	if err != nil {
		return toolError("process_and_generate", err), nil
	}
	return jsonResult(resp)
}

func (h *toolHandlers) healthCheck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.svc.HealthCheck())
}

// decodeExtraction accepts the extraction result either as a JSON object or
// as a string holding one.
func decodeExtraction(arg any) (schema.ExtractionResult, error) {
	var input schema.ExtractionResult

	var raw []byte
	switch v := arg.(type) {
	case nil:
		return input, fmt.Errorf("%w: image_analysis is required", ErrInvalidInput)
	case string:
		raw = []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return input, fmt.Errorf("%w: image_analysis: %v", ErrInvalidInput, err)
		}
		raw = b
	}

	if err := json.Unmarshal(raw, &input); err != nil {
		return input, fmt.Errorf("%w: image_analysis: %v", ErrInvalidInput, err)
	}
	return input, nil
}

func toolError(tool string, err error) *mcp.CallToolResult {
	log.Error().Err(err).Str("tool", tool).Msg("tool call failed")
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}
