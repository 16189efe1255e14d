package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/raine/trendy-post-mcp/config"
	"github.com/raine/trendy-post-mcp/internal/llm"
	"github.com/raine/trendy-post-mcp/internal/ocr"
	"github.com/raine/trendy-post-mcp/internal/ocr/tesseract"
	"github.com/raine/trendy-post-mcp/internal/post"
	"github.com/raine/trendy-post-mcp/internal/screenshot"
	"github.com/raine/trendy-post-mcp/internal/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	logFileName     = "trendy-post-mcp.log"
	shutdownTimeout = 10 * time.Second
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	config.LoadEnvFile()

	// JOURNAL_STREAM is set by systemd when running as a service.
	// Skip file logging under systemd, journald handles it.
	// Logs never go to stdout since the stdio transport owns it.
	if _, underSystemd := os.LookupEnv("JOURNAL_STREAM"); underSystemd {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			fatal("failed to open log file: %v", err)
		}
		defer logFile.Close()

		consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr}
		fileWriter := zerolog.ConsoleWriter{Out: logFile, NoColor: true}
		log.Logger = log.Output(io.MultiWriter(consoleWriter, fileWriter))

		log.Info().Str("logFile", logFileName).Msg("logging to file")
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("failed to load config: %v", err)
	}
	if problems := cfg.Validate(); len(problems) > 0 {
		fatal("invalid config: %s", strings.Join(problems, "; "))
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Create context that cancels on SIGINT or SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc := newService(ctx, cfg)
	mcpSrv := server.NewMCPServer(svc, version)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runMCP(ctx, cfg, mcpSrv)
	})

	if cfg.HTTPAddr != "" {
		g.Go(func() error {
			return runHTTP(ctx, cfg.HTTPAddr, svc)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("shutdown with error")
		os.Exit(1)
	}
	log.Info().Msg("shutdown complete")
}

// newService builds the components shared by every request.
func newService(ctx context.Context, cfg *config.Config) *server.Service {
	engine := tesseract.New(cfg.OCRLanguages...)
	extractor := ocr.NewAdapter(engine, cfg.OCRWorkers)
	analyzer := screenshot.NewAnalyzer(cfg.Settings.Analysis.DominantColors, cfg.Settings.Analysis.SampleStride)

	deps := server.Deps{
		Downloader: server.NewImageDownloader().
			WithTimeout(cfg.DownloadTimeout).
			WithMaxSize(cfg.MaxImageBytes),
		Processor: screenshot.NewProcessor(extractor, analyzer, cfg.TempDir),
	}
	log.Info().
		Str("engine", engine.Name()).
		Strs("languages", cfg.OCRLanguages).
		Int("workers", cfg.OCRWorkers).
		Msg("ocr initialized")

	completer, err := llm.New(ctx, llm.ProviderConfig{
		Provider: cfg.LLMProvider,
		APIKey:   cfg.LLMAPIKey,
		BaseURL:  cfg.LLMBaseURL,
		Model:    cfg.LLMModel,
		Thinking: cfg.LLMThinking,
	})
	if err != nil {
		log.Error().Err(err).Str("provider", cfg.LLMProvider).Msg("failed to initialize llm client, post generation disabled")
		deps.GeneratorErr = err
	} else {
		ms := cfg.Settings.ModelSettings
		deps.Generator = post.NewGenerator(completer, post.Options{
			Temperature:      ms.Temperature,
			MaxTokens:        ms.MaxTokens,
			ContentMaxTokens: ms.ContentMaxTokens,
		}, nil)
		log.Info().Str("provider", cfg.LLMProvider).Str("model", cfg.LLMModel).Msg("llm client initialized")
	}

	return server.NewService(deps)
}

func runMCP(ctx context.Context, cfg *config.Config, s *mcpserver.MCPServer) error {
	addr := cfg.Addr()

	switch cfg.Transport {
	case config.TransportStdio:
		log.Info().Msg("serving mcp over stdio")
		return mcpserver.NewStdioServer(s).Listen(ctx, os.Stdin, os.Stdout)
	case config.TransportStreamableHTTP:
		httpSrv := mcpserver.NewStreamableHTTPServer(s)
		log.Info().Str("addr", addr).Str("endpoint", "/mcp").Msg("serving mcp over streamable http")
		return serveUntilDone(ctx, func() error { return httpSrv.Start(addr) }, httpSrv.Shutdown)
	default:
		sseSrv := mcpserver.NewSSEServer(s, mcpserver.WithBaseURL("http://"+addr))
		log.Info().Str("addr", addr).Str("endpoint", "/sse").Msg("serving mcp over sse")
		return serveUntilDone(ctx, func() error { return sseSrv.Start(addr) }, sseSrv.Shutdown)
	}
}

func runHTTP(ctx context.Context, addr string, svc *server.Service) error {
	gin.SetMode(gin.ReleaseMode)
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           server.NewRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info().Str("addr", addr).Msg("serving http api")
	return serveUntilDone(ctx, httpSrv.ListenAndServe, httpSrv.Shutdown)
}

// serveUntilDone runs start until it fails or ctx is canceled, in which
// case shutdown is called and the server is given time to drain.
func serveUntilDone(ctx context.Context, start func() error, shutdown func(context.Context) error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("server shutdown failed")
		}
		return ctx.Err()
	}
}

func fatal(format string, args ...any) {
	log.Error().Msgf(format, args...)
	os.Exit(1)
}
