// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
	File     string `yaml:"file"`     // optional; the chat TUI owns stdout
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	Workers        int           `yaml:"workers"`       // answer executor size
	AllowOrigins   []string      `yaml:"allow_origins"` // CORS, default "*"
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AIConfig struct {
	GeminiKey     string  `yaml:"gemini_key"`
	GeminiURL     string  `yaml:"gemini_url"`
	GeminiModel   string  `yaml:"gemini_model"`
	GroqKey       string  `yaml:"groq_key"`
	GroqBaseURL   string  `yaml:"groq_base_url"`
	GroqModel     string  `yaml:"groq_model"`
	Temperature   float64 `yaml:"temperature"`
	MaxOutTokens  int     `yaml:"max_out_tokens"`
	KnowledgeFile string  `yaml:"knowledge_file"` // optional context for the prompt
}

type SecurityConfig struct {
	EncryptionKey string `yaml:"encryption_key"`
}

type RetentionConfig struct {
	Days     int           `yaml:"days"`
	Interval time.Duration `yaml:"interval"`
}

// ChatConfig drives the chat client: where to send questions and the fixed texts.
type ChatConfig struct {
	Endpoint      string        `yaml:"endpoint"` // empty => simulated replies
	Timeout       time.Duration `yaml:"timeout"`
	SimulateDelay time.Duration `yaml:"simulate_delay"`
	SeedTitle     string        `yaml:"seed_title"`
	Greeting      string        `yaml:"greeting"`
	ErrorText     string        `yaml:"error_text"`
	TitleMaxLen   int           `yaml:"title_max_len"`
	TitleEllipsis string        `yaml:"title_ellipsis"`
	Lang          string        `yaml:"lang"` // interface locale, see internal/infra/i18n/locales
}

type IdentityConfig struct {
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Email    string `yaml:"email"`
	Password string `yaml:"-"` // env only
}

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	AI        AIConfig        `yaml:"ai"`
	Security  SecurityConfig  `yaml:"security"`
	Retention RetentionConfig `yaml:"retention"`
	Chat      ChatConfig      `yaml:"chat"`
	Identity  IdentityConfig  `yaml:"identity"`

	Runtime RuntimeConfig `yaml:"-"`
}

const (
	DefaultGreeting  = "Hi! I'm your AI advisor. How can I help you solve your startup challenges today?"
	DefaultErrorText = "Sorry, I couldn't reach the StratoGuide advisor. Please make sure the answer service is running and reachable, then try again."
	DefaultSeedTitle = "Getting Started"
)

// LoadConfig reads the YAML file at path (a missing file is allowed: defaults
// plus environment), applies env overrides and defaults, and validates.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
			// env + defaults only
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	cfg.Runtime.Dev = dev
	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	envOverride(&cfg.AI.GeminiKey, "GEMINI_API_KEY")
	envOverride(&cfg.AI.GroqKey, "GROQ_API_KEY")
	envOverride(&cfg.Database.URL, "DATABASE_URL")
	envOverride(&cfg.Redis.URL, "REDIS_URL")
	envOverride(&cfg.Security.EncryptionKey, "ENCRYPTION_KEY")
	envOverride(&cfg.Chat.Endpoint, "ADVISOR_ENDPOINT")
	envOverride(&cfg.Identity.APIKey, "FIREBASE_API_KEY")
	envOverride(&cfg.Identity.Password, "ADVISOR_PASSWORD")
}

func envOverride(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = 60 * time.Second
	}
	if cfg.Server.Workers <= 0 {
		cfg.Server.Workers = 4
	}
	if len(cfg.Server.AllowOrigins) == 0 {
		cfg.Server.AllowOrigins = []string{"*"}
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	if cfg.AI.GeminiModel == "" {
		cfg.AI.GeminiModel = "gemini-1.5-flash"
	}
	if cfg.AI.GroqBaseURL == "" {
		cfg.AI.GroqBaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.AI.GroqModel == "" {
		cfg.AI.GroqModel = "llama-3.1-8b-instant"
	}
	if cfg.AI.MaxOutTokens <= 0 {
		cfg.AI.MaxOutTokens = 1024
	}

	if cfg.Retention.Days <= 0 {
		cfg.Retention.Days = 30
	}
	if cfg.Retention.Interval <= 0 {
		cfg.Retention.Interval = time.Hour
	}

	if cfg.Chat.Timeout <= 0 {
		cfg.Chat.Timeout = 60 * time.Second
	}
	if cfg.Chat.SimulateDelay <= 0 {
		cfg.Chat.SimulateDelay = time.Second
	}
	if cfg.Chat.SeedTitle == "" {
		cfg.Chat.SeedTitle = DefaultSeedTitle
	}
	if cfg.Chat.Greeting == "" {
		cfg.Chat.Greeting = DefaultGreeting
	}
	if cfg.Chat.ErrorText == "" {
		cfg.Chat.ErrorText = DefaultErrorText
	}
	if cfg.Chat.TitleMaxLen <= 0 {
		cfg.Chat.TitleMaxLen = 20
	}
	if cfg.Chat.TitleEllipsis == "" {
		cfg.Chat.TitleEllipsis = "..."
	}
	if cfg.Chat.Lang == "" {
		cfg.Chat.Lang = "en"
	}

	if cfg.Identity.BaseURL == "" {
		cfg.Identity.BaseURL = "https://identitytoolkit.googleapis.com/v1"
	}
}

// Validate performs the minimal checks shared by both binaries.
func (c *Config) Validate() error {
	if key := c.Security.EncryptionKey; key != "" && len(key) != 32 {
		return errors.New("security.encryption_key must be 32 bytes")
	}
	if c.Retention.Days < 1 {
		return errors.New("retention.days must be positive")
	}
	if c.Identity.Email != "" && c.Identity.APIKey == "" {
		return errors.New("identity.api_key is required when identity.email is set")
	}
	return nil
}

// RequireAI is checked by the answer service only; the chat client never talks to a model.
func (c *Config) RequireAI() error {
	if c.AI.GeminiKey == "" && c.AI.GroqKey == "" {
		return errors.New("no AI provider configured: set ai.gemini_key and/or ai.groq_key")
	}
	return nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
