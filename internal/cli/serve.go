package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ollama-relay/internal/config"
	relayhttp "ollama-relay/internal/http"
	"ollama-relay/internal/llm"
	"ollama-relay/internal/render"
	"ollama-relay/internal/service"
	"ollama-relay/internal/storage"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
	modelCheckTimeout = 5 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the relay HTTP API",
	Long: `Run the relay HTTP API. Configuration comes from the environment and an
optional .env file. The server stops gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	setupLogging(cmd.OutOrStdout(), cfg)

	var recorder service.ExchangeRecorder
	if cfg.ExchangeDBPath != "" {
		db, err := storage.New(cfg.ExchangeDBPath)
		if err != nil {
			return fmt.Errorf("opening exchange ledger: %w", err)
		}
		defer func() {
			_ = db.Close()
		}()
		if err := storage.Migrate(db); err != nil {
			return fmt.Errorf("migrating exchange ledger: %w", err)
		}
		recorder = storage.NewExchangeRepo(db)
		slog.Info("Exchange ledger enabled", "path", cfg.ExchangeDBPath)
	}

	var renderer service.Renderer
	if cfg.RenderMarkdown {
		renderer = render.NewMarkdown()
		slog.Info("Markdown rendering enabled")
	}

	llmClient := llm.NewClient(cfg.OllamaBaseURL, cfg.ModelName, cfg.LLMTimeout)
	chatService := service.NewChatService(llmClient, recorder, renderer, cfg.ModelName)
	slog.Info("Relaying chat requests", "upstream", cfg.ChatURL(), "model", cfg.ModelName, "timeout", cfg.LLMTimeout)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checkModel(ctx, llmClient, cfg.ModelName)

	router := relayhttp.NewRouter(&relayhttp.Deps{
		ChatService:    chatService,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return serve(ctx, srv)
}

// serve runs srv until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting API server", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("API server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// setupLogging installs the default slog logger with the configured level and format.
func setupLogging(w io.Writer, cfg *config.Config) {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)
}

// modelChecker is the part of the LLM client used at startup.
type modelChecker interface {
	HasModel(ctx context.Context, name string) (bool, error)
}

// checkModel warns when the configured model is missing. It never stops startup;
// Ollama may be started or the model pulled after the relay is up.
func checkModel(ctx context.Context, client modelChecker, model string) {
	ctx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	ok, err := client.HasModel(ctx, model)
	switch {
	case err != nil:
		slog.Warn("Could not reach Ollama to check the model", "model", model, "error", err)
	case !ok:
		slog.Warn("Configured model is not available on the Ollama server", "model", model)
	default:
		slog.Debug("Configured model is available", "model", model)
	}
}
