package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the relay.
// It is built once at process start and passed to the components that need it.
type Config struct {
	OllamaBaseURL  string
	ModelName      string
	LLMTimeout     time.Duration
	AllowedOrigins []string
	APIPort        string
	LogLevel       slog.Level
	LogFormat      string
	ExchangeDBPath string
	RenderMarkdown bool
}

// Default returns the configuration used when no environment overrides are present.
func Default() *Config {
	return &Config{
		OllamaBaseURL:  "http://localhost:11434",
		ModelName:      "gemma3",
		LLMTimeout:     5 * time.Minute,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		APIPort:        "8000",
		LogLevel:       slog.LevelInfo,
		LogFormat:      "text",
	}
}

// Load reads configuration from environment variables and returns a Config struct.
// If a .env file exists in the current directory or one of its parents, it is loaded first.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	loadDotEnv()

	def := Default()
	cfg := &Config{
		OllamaBaseURL:  strings.TrimRight(getEnv("OLLAMA_BASE_URL", def.OllamaBaseURL), "/"),
		ModelName:      getEnv("OLLAMA_MODEL", def.ModelName),
		APIPort:        getEnv("API_PORT", def.APIPort),
		LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", def.LogFormat)),
		ExchangeDBPath: getEnv("EXCHANGE_DB_PATH", ""),
	}

	if _, err := url.ParseRequestURI(cfg.OllamaBaseURL); err != nil {
		return nil, fmt.Errorf("OLLAMA_BASE_URL must be a valid URL: %w", err)
	}

	timeout, err := time.ParseDuration(getEnv("LLM_TIMEOUT", def.LLMTimeout.String()))
	if err != nil {
		return nil, fmt.Errorf("LLM_TIMEOUT must be a valid duration: %w", err)
	}
	if timeout < 0 {
		return nil, fmt.Errorf("LLM_TIMEOUT must not be negative")
	}
	cfg.LLMTimeout = timeout

	cfg.AllowedOrigins = parseList(getEnv("CORS_ALLOWED_ORIGINS", strings.Join(def.AllowedOrigins, ",")))

	level, err := parseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	renderMarkdown, err := strconv.ParseBool(getEnv("RENDER_MARKDOWN", "false"))
	if err != nil {
		return nil, fmt.Errorf("RENDER_MARKDOWN must be a boolean: %w", err)
	}
	cfg.RenderMarkdown = renderMarkdown

	if cfg.ExchangeDBPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.ExchangeDBPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

// ChatURL is the inference endpoint chat requests are forwarded to.
func (c *Config) ChatURL() string {
	return c.OllamaBaseURL + "/api/chat"
}

// loadDotEnv loads the first .env file found walking up from the working directory.
func loadDotEnv() {
	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ { // Limit search depth
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error: %w", err)
	}
	return level, nil
}

// parseList splits a comma separated value, dropping blanks.
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
