package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"HOST", "PORT", "MCP_TRANSPORT", "HTTP_ADDR", "LLM_PROVIDER", "ZHIPU_API_KEY",
	"OPENAI_API_KEY", "GEMINI_API_KEY", "LLM_BASE_URL", "LLM_MODEL", "LLM_THINKING",
	"OLLAMA_HOST", "OCR_LANGUAGES", "OCR_WORKERS", "DOWNLOAD_TIMEOUT", "MAX_IMAGE_BYTES",
	"TEMP_DIR", "LOG_LEVEL", "SETTINGS_FILE",
}

// clearEnv blanks every variable Load reads so the host environment does
// not leak into tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
	}
	t.Setenv("SETTINGS_FILE", filepath.Join(t.TempDir(), "missing.yml"))
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("ZHIPU_API_KEY", "zk")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:10301", cfg.Addr())
	assert.Equal(t, TransportSSE, cfg.Transport)
	assert.Equal(t, "zhipu", cfg.LLMProvider)
	assert.Equal(t, "zk", cfg.LLMAPIKey)
	assert.Equal(t, "glm-4.5", cfg.LLMModel)
	assert.True(t, cfg.LLMThinking)
	assert.Equal(t, []string{"chi_sim", "eng"}, cfg.OCRLanguages)
	assert.Equal(t, 4, cfg.OCRWorkers)
	assert.Equal(t, 30*time.Second, cfg.DownloadTimeout)
	assert.Equal(t, int64(20*1024*1024), cfg.MaxImageBytes)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultSettings(), cfg.Settings)
	assert.Empty(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("MCP_TRANSPORT", "STDIO")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "gk")
	t.Setenv("ZHIPU_API_KEY", "unused")
	t.Setenv("LLM_THINKING", "false")
	t.Setenv("OCR_LANGUAGES", " eng , ,jpn")
	t.Setenv("DOWNLOAD_TIMEOUT", "5s")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, TransportStdio, cfg.Transport)
	assert.Equal(t, "gk", cfg.LLMAPIKey)
	assert.Empty(t, cfg.LLMModel)
	assert.False(t, cfg.LLMThinking)
	assert.Equal(t, []string{"eng", "jpn"}, cfg.OCRLanguages)
	assert.Equal(t, 5*time.Second, cfg.DownloadTimeout)
}

func TestLoad_OllamaHost(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("OLLAMA_HOST", "http://gpu-box:11434")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "http://gpu-box:11434", cfg.LLMBaseURL)
	assert.Empty(t, cfg.Validate())
}

func TestLoad_InvalidInteger(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "abc")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
}

func TestLoad_InvalidDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("DOWNLOAD_TIMEOUT", "soon")

	_, err := Load()

	assert.Error(t, err)
}

func TestLoadSettings_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	require.NoError(t, os.WriteFile(path, []byte("model_settings:\n  temperature: 0.2\nanalysis:\n  sample_stride: 10\n"), 0644))

	s, err := LoadSettings(path)

	require.NoError(t, err)
	assert.Equal(t, 0.2, s.ModelSettings.Temperature)
	assert.Equal(t, 4096, s.ModelSettings.MaxTokens)
	assert.Equal(t, 8192, s.ModelSettings.ContentMaxTokens)
	assert.Equal(t, 5, s.Analysis.DominantColors)
	assert.Equal(t, 10, s.Analysis.SampleStride)
}

func TestLoadSettings_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	require.NoError(t, os.WriteFile(path, []byte("model_settings: [1, 2"), 0644))

	_, err := LoadSettings(path)

	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	t.Setenv("MCP_TRANSPORT", "websocket")
	t.Setenv("OCR_WORKERS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	problems := cfg.Validate()

	assert.Len(t, problems, 3)
	assert.Contains(t, problems, "ZHIPU_API_KEY is not set")
}

func TestValidate_UnknownProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "claude")

	cfg, err := Load()
	require.NoError(t, err)

	problems := cfg.Validate()

	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "LLM_PROVIDER")
}
