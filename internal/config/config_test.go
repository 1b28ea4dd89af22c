package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// setEnv sets an environment variable, ignoring errors (for test setup)
func setEnv(key, value string) {
	_ = os.Setenv(key, value)
}

// unsetEnv unsets an environment variable, ignoring errors (for test cleanup)
func unsetEnv(key string) {
	_ = os.Unsetenv(key)
}

var envVars = []string{
	"OLLAMA_BASE_URL", "OLLAMA_MODEL", "LLM_TIMEOUT", "CORS_ALLOWED_ORIGINS",
	"API_PORT", "LOG_LEVEL", "LOG_FORMAT", "EXCHANGE_DB_PATH", "RENDER_MARKDOWN",
}

// isolateEnv clears relay env vars and moves into an empty directory so no .env is picked up.
func isolateEnv(t *testing.T) {
	t.Helper()
	originalEnv := make(map[string]string)
	for _, key := range envVars {
		originalEnv[key] = os.Getenv(key)
		unsetEnv(key)
	}
	originalWd, _ := os.Getwd()
	_ = os.Chdir(t.TempDir())
	t.Cleanup(func() {
		_ = os.Chdir(originalWd)
		for key, value := range originalEnv {
			if value != "" {
				setEnv(key, value)
			} else {
				unsetEnv(key)
			}
		}
	})
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setupEnv    func(*testing.T)
		wantErr     bool
		checkConfig func(*Config) bool
	}{
		{
			name:     "defaults",
			setupEnv: func(t *testing.T) {},
			wantErr:  false,
			checkConfig: func(cfg *Config) bool {
				return cfg.OllamaBaseURL == "http://localhost:11434" &&
					cfg.ChatURL() == "http://localhost:11434/api/chat" &&
					cfg.ModelName == "gemma3" &&
					cfg.LLMTimeout == 5*time.Minute &&
					len(cfg.AllowedOrigins) == 2 &&
					cfg.AllowedOrigins[0] == "http://localhost:3000" &&
					cfg.AllowedOrigins[1] == "http://localhost:5173" &&
					cfg.APIPort == "8000" &&
					cfg.LogLevel == slog.LevelInfo &&
					cfg.LogFormat == "text" &&
					cfg.ExchangeDBPath == "" &&
					!cfg.RenderMarkdown
			},
		},
		{
			name: "custom values",
			setupEnv: func(t *testing.T) {
				setEnv("OLLAMA_BASE_URL", "http://ollama:11434/")
				setEnv("OLLAMA_MODEL", "llama3.2")
				setEnv("LLM_TIMEOUT", "30s")
				setEnv("CORS_ALLOWED_ORIGINS", " https://app.example.com , ,http://localhost:3000")
				setEnv("API_PORT", "9000")
				setEnv("LOG_LEVEL", "debug")
				setEnv("LOG_FORMAT", "JSON")
				setEnv("RENDER_MARKDOWN", "true")
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.ChatURL() == "http://ollama:11434/api/chat" &&
					cfg.ModelName == "llama3.2" &&
					cfg.LLMTimeout == 30*time.Second &&
					len(cfg.AllowedOrigins) == 2 &&
					cfg.AllowedOrigins[0] == "https://app.example.com" &&
					cfg.APIPort == "9000" &&
					cfg.LogLevel == slog.LevelDebug &&
					cfg.LogFormat == "json" &&
					cfg.RenderMarkdown
			},
		},
		{
			name: "zero timeout disables limit",
			setupEnv: func(t *testing.T) {
				setEnv("LLM_TIMEOUT", "0")
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.LLMTimeout == 0
			},
		},
		{
			name: "invalid LLM_TIMEOUT",
			setupEnv: func(t *testing.T) {
				setEnv("LLM_TIMEOUT", "soon")
			},
			wantErr: true,
		},
		{
			name: "negative LLM_TIMEOUT",
			setupEnv: func(t *testing.T) {
				setEnv("LLM_TIMEOUT", "-1s")
			},
			wantErr: true,
		},
		{
			name: "invalid LOG_LEVEL",
			setupEnv: func(t *testing.T) {
				setEnv("LOG_LEVEL", "loud")
			},
			wantErr: true,
		},
		{
			name: "invalid LOG_FORMAT",
			setupEnv: func(t *testing.T) {
				setEnv("LOG_FORMAT", "xml")
			},
			wantErr: true,
		},
		{
			name: "invalid RENDER_MARKDOWN",
			setupEnv: func(t *testing.T) {
				setEnv("RENDER_MARKDOWN", "sometimes")
			},
			wantErr: true,
		},
		{
			name: "invalid OLLAMA_BASE_URL",
			setupEnv: func(t *testing.T) {
				setEnv("OLLAMA_BASE_URL", "not a url")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			tt.setupEnv(t)

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Load() unexpected error: %v", err)
				return
			}

			if cfg == nil {
				t.Fatal("Load() returned nil config")
			}

			if tt.checkConfig != nil && !tt.checkConfig(cfg) {
				t.Errorf("Load() config validation failed: %+v", cfg)
			}
		})
	}
}

func TestLoad_CreatesLedgerDirectory(t *testing.T) {
	isolateEnv(t)

	dbPath := filepath.Join(t.TempDir(), "ledger", "relay.db")
	setEnv("EXCHANGE_DB_PATH", dbPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if _, err := os.Stat(filepath.Dir(dbPath)); os.IsNotExist(err) {
		t.Errorf("Load() should create ledger directory: %v", err)
	}
	if cfg.ExchangeDBPath != dbPath {
		t.Errorf("Load() ExchangeDBPath = %v, want %v", cfg.ExchangeDBPath, dbPath)
	}
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	isolateEnv(t)

	if err := os.WriteFile(".env", []byte("OLLAMA_MODEL=mistral\n"), 0644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { unsetEnv("OLLAMA_MODEL") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ModelName != "mistral" {
		t.Errorf("Load() ModelName = %v, want mistral", cfg.ModelName)
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: nil},
		{in: "a", want: []string{"a"}},
		{in: " a , b ,, ", want: []string{"a", "b"}},
	}
	for _, tt := range tests {
		got := parseList(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("parseList(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseList(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestGetEnv(t *testing.T) {
	originalValue := os.Getenv("TEST_ENV_VAR")
	defer func() {
		if originalValue != "" {
			setEnv("TEST_ENV_VAR", originalValue)
		} else {
			unsetEnv("TEST_ENV_VAR")
		}
	}()

	tests := []struct {
		name         string
		setupEnv     func()
		key          string
		defaultValue string
		want         string
	}{
		{
			name: "env var set",
			setupEnv: func() {
				setEnv("TEST_ENV_VAR", "set-value")
			},
			key:          "TEST_ENV_VAR",
			defaultValue: "default",
			want:         "set-value",
		},
		{
			name: "env var not set",
			setupEnv: func() {
				unsetEnv("TEST_ENV_VAR")
			},
			key:          "TEST_ENV_VAR",
			defaultValue: "default",
			want:         "default",
		},
		{
			name: "empty env var uses default",
			setupEnv: func() {
				setEnv("TEST_ENV_VAR", "")
			},
			key:          "TEST_ENV_VAR",
			defaultValue: "default",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupEnv()
			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}
