package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/raine/trendy-post-mcp/internal/schema"
	"github.com/raine/trendy-post-mcp/internal/screenshot"
	"github.com/rs/zerolog/log"
)

// APIError is the body of a failed HTTP API response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type processRequest struct {
	ImageURL  string `json:"image_url" binding:"required"`
	UserQuery string `json:"user_query"`
}

type generateRequest struct {
	ImageAnalysis *schema.ExtractionResult `json:"image_analysis" binding:"required"`
	UserQuery     string                   `json:"user_query"`
}

// NewRouter mirrors the MCP tools as JSON endpoints.
func NewRouter(svc *Service) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.HealthCheck())
	})

	api := r.Group("/api/v1")
	{
		api.POST("/process_screenshot", func(c *gin.Context) {
			var req processRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				writeError(c, errors.Join(ErrInvalidInput, err))
				return
			}
			result, err := svc.ProcessScreenshot(c.Request.Context(), req.ImageURL)
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, result)
		})

		api.POST("/generate_post", func(c *gin.Context) {
			var req generateRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				writeError(c, errors.Join(ErrInvalidInput, err))
				return
			}
			post, err := svc.GeneratePost(c.Request.Context(), *req.ImageAnalysis, req.UserQuery)
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, post)
		})

		api.POST("/process_and_generate", func(c *gin.Context) {
			var req processRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				writeError(c, errors.Join(ErrInvalidInput, err))
				return
			}
			resp, err := svc.ProcessAndGenerate(c.Request.Context(), req.ImageURL, req.UserQuery)
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, resp)
		})
	}

	return r
}

func writeError(c *gin.Context, err error) {
	status, code := errorStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": APIError{Code: code, Message: err.Error()}})
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest, "BAD_REQUEST"
	case errors.Is(err, ErrDownload):
		return http.StatusBadGateway, "DOWNLOAD_FAILED"
	case errors.Is(err, screenshot.ErrDecode):
		return http.StatusUnprocessableEntity, "DECODE_FAILED"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	}
}
