package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	AppName     = "trendy-post-mcp"
	EnvFileName = "config.env"
)

// MCP transports.
const (
	TransportSSE            = "sse"
	TransportStreamableHTTP = "streamable-http"
	TransportStdio          = "stdio"
)

const (
	defaultHost          = "127.0.0.1"
	defaultPort          = 10301
	defaultProvider      = "zhipu"
	defaultModel         = "glm-4.5"
	defaultOCRWorkers    = 4
	defaultTimeout       = 30 * time.Second
	defaultMaxImageBytes = 20 * 1024 * 1024
	defaultSettingsFile  = "trendy-post.yml"
)

var defaultOCRLanguages = []string{"chi_sim", "eng"}

// apiKeyEnv maps hosted LLM providers to the variable holding their key.
var apiKeyEnv = map[string]string{
	"zhipu":  "ZHIPU_API_KEY",
	"openai": "OPENAI_API_KEY",
	"gemini": "GEMINI_API_KEY",
}

// Settings are the tunables read from the optional YAML settings file.
type Settings struct {
	ModelSettings struct {
		Temperature      float64 `yaml:"temperature"`
		MaxTokens        int     `yaml:"max_tokens"`
		ContentMaxTokens int     `yaml:"content_max_tokens"`
	} `yaml:"model_settings"`
	Analysis struct {
		DominantColors int `yaml:"dominant_colors"`
		SampleStride   int `yaml:"sample_stride"`
	} `yaml:"analysis"`
}

// DefaultSettings returns the settings used when no file is present.
func DefaultSettings() Settings {
	var s Settings
	s.ModelSettings.Temperature = 0.7
	s.ModelSettings.MaxTokens = 4096
	s.ModelSettings.ContentMaxTokens = 8192
	s.Analysis.DominantColors = 5
	s.Analysis.SampleStride = 100
	return s
}

// Config is the process configuration.
type Config struct {
	Host      string
	Port      int
	Transport string
	// HTTPAddr enables the REST API when non-empty.
	HTTPAddr string

	LLMProvider string
	LLMAPIKey   string
	LLMBaseURL  string
	LLMModel    string
	LLMThinking bool

	OCRLanguages []string
	OCRWorkers   int

	DownloadTimeout time.Duration
	MaxImageBytes   int64
	TempDir         string
	LogLevel        string

	SettingsFile string
	Settings     Settings
}

// Addr is the listen address of the MCP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadEnvFile loads environment variables from the config file in the user's
// config directory, then from .env in the working directory. Errors are
// ignored since the files may not exist. Variables already set win.
func LoadEnvFile() {
	if configBase, err := os.UserConfigDir(); err == nil {
		_ = godotenv.Load(filepath.Join(configBase, AppName, EnvFileName))
	}
	_ = godotenv.Load(".env")
}

// Load reads the configuration from the environment and the settings file.
func Load() (*Config, error) {
	cfg := &Config{
		Host:         getEnv("HOST", defaultHost),
		Transport:    strings.ToLower(getEnv("MCP_TRANSPORT", TransportSSE)),
		HTTPAddr:     os.Getenv("HTTP_ADDR"),
		LLMProvider:  strings.ToLower(getEnv("LLM_PROVIDER", defaultProvider)),
		LLMBaseURL:   os.Getenv("LLM_BASE_URL"),
		LLMModel:     os.Getenv("LLM_MODEL"),
		OCRLanguages: splitList(getEnv("OCR_LANGUAGES", strings.Join(defaultOCRLanguages, ","))),
		TempDir:      os.Getenv("TEMP_DIR"),
		LogLevel:     strings.ToLower(getEnv("LOG_LEVEL", "info")),
		SettingsFile: getEnv("SETTINGS_FILE", defaultSettingsFile),
	}

	var err error
	if cfg.Port, err = getEnvInt("PORT", defaultPort); err != nil {
		return nil, err
	}
	if cfg.OCRWorkers, err = getEnvInt("OCR_WORKERS", defaultOCRWorkers); err != nil {
		return nil, err
	}
	maxBytes, err := getEnvInt("MAX_IMAGE_BYTES", defaultMaxImageBytes)
	if err != nil {
		return nil, err
	}
	cfg.MaxImageBytes = int64(maxBytes)
	if cfg.LLMThinking, err = getEnvBool("LLM_THINKING", true); err != nil {
		return nil, err
	}
	if v := os.Getenv("DOWNLOAD_TIMEOUT"); v != "" {
		if cfg.DownloadTimeout, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("DOWNLOAD_TIMEOUT: %w", err)
		}
	} else {
		cfg.DownloadTimeout = defaultTimeout
	}

	if key, ok := apiKeyEnv[cfg.LLMProvider]; ok {
		cfg.LLMAPIKey = os.Getenv(key)
	}
	if cfg.LLMProvider == "ollama" && cfg.LLMBaseURL == "" {
		cfg.LLMBaseURL = os.Getenv("OLLAMA_HOST")
	}
	if cfg.LLMModel == "" && cfg.LLMProvider == defaultProvider {
		cfg.LLMModel = defaultModel
	}

	if cfg.Settings, err = LoadSettings(cfg.SettingsFile); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadSettings reads the YAML settings file. A missing file yields the
// defaults; keys absent from the file keep their default values.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	return settings, nil
}

// Validate returns a list of configuration problems, empty when the
// configuration is usable.
func (c *Config) Validate() []string {
	var problems []string

	switch c.Transport {
	case TransportSSE, TransportStreamableHTTP, TransportStdio:
	default:
		problems = append(problems, fmt.Sprintf("MCP_TRANSPORT must be one of sse, streamable-http, stdio (got %q)", c.Transport))
	}
	if c.Port <= 0 || c.Port > 65535 {
		problems = append(problems, fmt.Sprintf("PORT out of range: %d", c.Port))
	}
	if key, ok := apiKeyEnv[c.LLMProvider]; ok {
		if c.LLMAPIKey == "" {
			problems = append(problems, key+" is not set")
		}
	} else if c.LLMProvider != "ollama" {
		problems = append(problems, fmt.Sprintf("LLM_PROVIDER must be one of zhipu, openai, gemini, ollama (got %q)", c.LLMProvider))
	}
	if c.OCRWorkers <= 0 {
		problems = append(problems, "OCR_WORKERS must be positive")
	}
	if c.DownloadTimeout <= 0 {
		problems = append(problems, "DOWNLOAD_TIMEOUT must be positive")
	}
	if c.MaxImageBytes <= 0 {
		problems = append(problems, "MAX_IMAGE_BYTES must be positive")
	}

	ms := c.Settings.ModelSettings
	if ms.Temperature < 0 || ms.Temperature > 2 {
		problems = append(problems, fmt.Sprintf("model_settings.temperature out of range: %v", ms.Temperature))
	}
	if ms.MaxTokens <= 0 || ms.ContentMaxTokens <= 0 {
		problems = append(problems, "model_settings token limits must be positive")
	}
	if c.Settings.Analysis.DominantColors <= 0 || c.Settings.Analysis.SampleStride <= 0 {
		problems = append(problems, "analysis settings must be positive")
	}

	return problems
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
