package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range []string{
		"SERVER_HOST", "SERVER_PORT", "CORS_ALLOWED_ORIGINS", "ETP_API_URL", "STORE_DRIVER",
		"DATABASE_URL", "EXPORT_SINK", "SUPABASE_URL", "SUPABASE_SERVICE_KEY", "LLM_PROVIDER",
		"ETP_PROFILE", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "etp.yaml"))
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, "http://localhost:8000", cfg.Backend.URL)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "none", cfg.Export.Sink)
	assert.Equal(t, "chat-ai", cfg.Edge.Function)
	assert.Equal(t, "default", cfg.Profile)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 30, int(cfg.Backend.Timeout().Seconds()))
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := isolate(t)
	yamlDoc := `
server:
  port: 9000
backend:
  url: http://etp.internal:8000/
  timeout_seconds: 10
store:
  driver: sqlite
profile: trt2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "etp.yaml"), []byte(yamlDoc), 0o644))
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.example, http://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "http://etp.internal:8000", cfg.Backend.URL)
	assert.Equal(t, 10, int(cfg.Backend.Timeout().Seconds()))
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "trt2", cfg.Profile)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.AllowedOrigins)
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	isolate(t)
	t.Setenv("SERVER_PORT", "eighty")

	_, err := Load()
	assert.ErrorContains(t, err, "SERVER_PORT")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"postgres without url", func(c *Config) { c.Store.Driver = "postgres" }, "DATABASE_URL"},
		{"unknown store", func(c *Config) { c.Store.Driver = "mongo" }, `unknown store driver "mongo"`},
		{"supabase without key", func(c *Config) { c.Export.Sink = "supabase" }, "SUPABASE_SERVICE_KEY"},
		{"unknown sink", func(c *Config) { c.Export.Sink = "ftp" }, `unknown export sink "ftp"`},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "mistral" }, `unknown llm provider "mistral"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			applyDefaults(cfg)
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	} {
		assert.Equal(t, want, (&Config{LogLevel: in}).Level(), in)
	}
}
