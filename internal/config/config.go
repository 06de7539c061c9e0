package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig  `yaml:"server"`
	Backend  BackendConfig `yaml:"backend"`
	Edge     EdgeConfig    `yaml:"edge"`
	Store    StoreConfig   `yaml:"store"`
	Export   ExportConfig  `yaml:"export"`
	LLM      LLMConfig     `yaml:"llm"`
	Profile  string        `yaml:"profile"`
	LogLevel string        `yaml:"log_level"`
}

type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RateLimit      float64  `yaml:"rate_limit"`
	RateBurst      int      `yaml:"rate_burst"`
}

type BackendConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout falls back to 30s, the same budget the browser client had.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

type EdgeConfig struct {
	SupabaseURL string `yaml:"supabase_url"`
	AnonKey     string `yaml:"anon_key"`
	Function    string `yaml:"function"`
}

type StoreConfig struct {
	Driver      string `yaml:"driver"` // memory, redis, postgres, sqlite
	RedisAddr   string `yaml:"redis_addr"`
	RedisPass   string `yaml:"redis_password"`
	RedisDB     int    `yaml:"redis_db"`
	DatabaseURL string `yaml:"database_url"`
	MaxConns    int    `yaml:"max_conns"`
	SQLitePath  string `yaml:"sqlite_path"`
}

type ExportConfig struct {
	Sink        string `yaml:"sink"` // none, dir, supabase, gcs
	Dir         string `yaml:"dir"`
	Bucket      string `yaml:"bucket"`
	SupabaseURL string `yaml:"supabase_url"`
	SupabaseKey string `yaml:"supabase_service_key"`
}

type LLMConfig struct {
	Provider      string  `yaml:"provider"` // openai, anthropic, ollama, vertex
	Model         string  `yaml:"model"`
	OpenAIKey     string  `yaml:"openai_api_key"`
	AnthropicKey  string  `yaml:"anthropic_api_key"`
	OllamaURL     string  `yaml:"ollama_url"`
	VertexProject string  `yaml:"vertex_project"`
	VertexRegion  string  `yaml:"vertex_region"`
	MaxTokens     int     `yaml:"max_tokens"`
	Temperature   float64 `yaml:"temperature"`
}

// Load reads an optional .env file, an optional YAML file and then the
// environment, in that order of increasing precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	path := getEnv("CONFIG_PATH", "etp.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	envString(&cfg.Server.Host, "SERVER_HOST")
	if err := envInt(&cfg.Server.Port, "SERVER_PORT"); err != nil {
		return err
	}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.AllowedOrigins = splitList(origins)
	}
	if err := envFloat(&cfg.Server.RateLimit, "RATE_LIMIT_RPS"); err != nil {
		return err
	}
	if err := envInt(&cfg.Server.RateBurst, "RATE_LIMIT_BURST"); err != nil {
		return err
	}

	envString(&cfg.Backend.URL, "ETP_API_URL")
	if err := envInt(&cfg.Backend.TimeoutSeconds, "ETP_API_TIMEOUT_SECONDS"); err != nil {
		return err
	}

	envString(&cfg.Edge.SupabaseURL, "SUPABASE_URL")
	envString(&cfg.Edge.AnonKey, "SUPABASE_ANON_KEY")
	envString(&cfg.Edge.Function, "SUPABASE_CHAT_FUNCTION")

	envString(&cfg.Store.Driver, "STORE_DRIVER")
	envString(&cfg.Store.RedisAddr, "REDIS_ADDR")
	envString(&cfg.Store.RedisPass, "REDIS_PASSWORD")
	if err := envInt(&cfg.Store.RedisDB, "REDIS_DB"); err != nil {
		return err
	}
	envString(&cfg.Store.DatabaseURL, "DATABASE_URL")
	if err := envInt(&cfg.Store.MaxConns, "DB_MAX_CONNS"); err != nil {
		return err
	}
	envString(&cfg.Store.SQLitePath, "SQLITE_PATH")

	envString(&cfg.Export.Sink, "EXPORT_SINK")
	envString(&cfg.Export.Dir, "EXPORT_DIR")
	envString(&cfg.Export.Bucket, "EXPORT_BUCKET")
	envString(&cfg.Export.SupabaseURL, "SUPABASE_URL")
	envString(&cfg.Export.SupabaseKey, "SUPABASE_SERVICE_KEY")

	envString(&cfg.LLM.Provider, "LLM_PROVIDER")
	envString(&cfg.LLM.Model, "LLM_MODEL")
	envString(&cfg.LLM.OpenAIKey, "OPENAI_API_KEY")
	envString(&cfg.LLM.AnthropicKey, "ANTHROPIC_API_KEY")
	envString(&cfg.LLM.OllamaURL, "OLLAMA_URL")
	envString(&cfg.LLM.VertexProject, "VERTEX_PROJECT")
	envString(&cfg.LLM.VertexRegion, "VERTEX_REGION")
	if err := envInt(&cfg.LLM.MaxTokens, "LLM_MAX_TOKENS"); err != nil {
		return err
	}
	if err := envFloat(&cfg.LLM.Temperature, "LLM_TEMPERATURE"); err != nil {
		return err
	}

	envString(&cfg.Profile, "ETP_PROFILE")
	envString(&cfg.LogLevel, "LOG_LEVEL")
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}
	if cfg.Server.RateLimit == 0 {
		cfg.Server.RateLimit = 20
	}
	if cfg.Server.RateBurst == 0 {
		cfg.Server.RateBurst = 40
	}
	if cfg.Backend.URL == "" {
		cfg.Backend.URL = "http://localhost:8000"
	}
	cfg.Backend.URL = strings.TrimRight(cfg.Backend.URL, "/")
	if cfg.Edge.Function == "" {
		cfg.Edge.Function = "chat-ai"
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "memory"
	}
	if cfg.Store.RedisAddr == "" {
		cfg.Store.RedisAddr = "localhost:6379"
	}
	if cfg.Store.MaxConns == 0 {
		cfg.Store.MaxConns = 4
	}
	if cfg.Store.SQLitePath == "" {
		cfg.Store.SQLitePath = "./etp.db"
	}
	if cfg.Export.Sink == "" {
		cfg.Export.Sink = "none"
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = "."
	}
	if cfg.Export.Bucket == "" {
		cfg.Export.Bucket = "etp-exports"
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	if cfg.LLM.OllamaURL == "" {
		cfg.LLM.OllamaURL = "http://localhost:11434"
	}
	if cfg.LLM.VertexRegion == "" {
		cfg.LLM.VertexRegion = "us-central1"
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 4000
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.7
	}
	if cfg.Profile == "" {
		cfg.Profile = "default"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Level maps LogLevel onto slog. Unknown names log at info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) Validate() error {
	var problems []string

	switch c.Store.Driver {
	case "memory", "redis", "sqlite":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL is required for the postgres store")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown store driver %q", c.Store.Driver))
	}

	switch c.Export.Sink {
	case "none", "dir", "gcs":
	case "supabase":
		if c.Export.SupabaseURL == "" || c.Export.SupabaseKey == "" {
			problems = append(problems, "SUPABASE_URL and SUPABASE_SERVICE_KEY are required for the supabase sink")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown export sink %q", c.Export.Sink))
	}

	switch c.LLM.Provider {
	case "openai", "anthropic", "ollama", "vertex":
	default:
		problems = append(problems, fmt.Sprintf("unknown llm provider %q", c.LLM.Provider))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func envFloat(dst *float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = f
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
