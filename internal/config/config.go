package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/pitchcraft/internal/enrichment"
	"github.com/JaimeStill/pitchcraft/internal/generation"
	"github.com/JaimeStill/pitchcraft/internal/workflow"
	"github.com/JaimeStill/pitchcraft/pkg/database"
	"github.com/JaimeStill/pitchcraft/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"
	DotEnvFile           = ".env"

	EnvPitchcraftEnv             = "PITCHCRAFT_ENV"
	EnvPitchcraftShutdownTimeout = "PITCHCRAFT_SHUTDOWN_TIMEOUT"
	EnvPitchcraftVersion         = "PITCHCRAFT_VERSION"
	EnvPitchcraftLogLevel        = "PITCHCRAFT_LOG_LEVEL"
	EnvPitchcraftLogFormat       = "PITCHCRAFT_LOG_FORMAT"
	EnvPromptsFile               = "PITCHCRAFT_PROMPTS_FILE"
)

var databaseEnv = &database.Env{
	Host:            "PITCHCRAFT_DB_HOST",
	Port:            "PITCHCRAFT_DB_PORT",
	Name:            "PITCHCRAFT_DB_NAME",
	User:            "PITCHCRAFT_DB_USER",
	Password:        "PITCHCRAFT_DB_PASSWORD",
	SSLMode:         "PITCHCRAFT_DB_SSL_MODE",
	MaxOpenConns:    "PITCHCRAFT_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "PITCHCRAFT_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "PITCHCRAFT_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "PITCHCRAFT_DB_CONN_TIMEOUT",
	ConnectAttempts: "PITCHCRAFT_DB_CONNECT_ATTEMPTS",
}

var storageEnv = &storage.Env{
	ContainerName:    "PITCHCRAFT_STORAGE_CONTAINER_NAME",
	ConnectionString: "PITCHCRAFT_STORAGE_CONNECTION_STRING",
	Prefix:           "PITCHCRAFT_STORAGE_PREFIX",
}

var generationEnv = &generation.Env{
	Provider:       "PITCHCRAFT_GENERATION_PROVIDER",
	CallTimeout:    "PITCHCRAFT_GENERATION_CALL_TIMEOUT",
	MaxRetries:     "PITCHCRAFT_GENERATION_MAX_RETRIES",
	RetryBackoff:   "PITCHCRAFT_GENERATION_RETRY_BACKOFF",
	RateLimit:      "PITCHCRAFT_GENERATION_RATE_LIMIT",
	Burst:          "PITCHCRAFT_GENERATION_BURST",
	MaxConcurrency: "PITCHCRAFT_GENERATION_MAX_CONCURRENCY",
}

var enrichmentEnv = &enrichment.Env{
	Sources:              "PITCHCRAFT_ENRICHMENT_SOURCES",
	DirectoryFile:        "PITCHCRAFT_ENRICHMENT_DIRECTORY_FILE",
	UserAgent:            "PITCHCRAFT_ENRICHMENT_USER_AGENT",
	MaxPageBytes:         "PITCHCRAFT_ENRICHMENT_MAX_PAGE_BYTES",
	Timeout:              "PITCHCRAFT_ENRICHMENT_TIMEOUT",
	MaxRetries:           "PITCHCRAFT_ENRICHMENT_MAX_RETRIES",
	RetryBackoff:         "PITCHCRAFT_ENRICHMENT_RETRY_BACKOFF",
	RateLimit:            "PITCHCRAFT_ENRICHMENT_RATE_LIMIT",
	Burst:                "PITCHCRAFT_ENRICHMENT_BURST",
	AllowPrivateNetworks: "PITCHCRAFT_ENRICHMENT_ALLOW_PRIVATE_NETWORKS",
}

var workflowEnv = &workflow.Env{
	Store:         "PITCHCRAFT_WORKFLOW_STORE",
	Lock:          "PITCHCRAFT_WORKFLOW_LOCK",
	LockTTL:       "PITCHCRAFT_WORKFLOW_LOCK_TTL",
	AutoEnrich:    "PITCHCRAFT_WORKFLOW_AUTO_ENRICH",
	ObjectionCap:  "PITCHCRAFT_WORKFLOW_OBJECTION_CAP",
	ExcerptLength: "PITCHCRAFT_WORKFLOW_EXCERPT_LENGTH",
}

// PromptsConfig locates the optional prompt override file.
type PromptsConfig struct {
	File string `toml:"file"`
}

// Config is the root configuration for the PitchCraft service.
type Config struct {
	Server          ServerConfig      `toml:"server"`
	Database        database.Config   `toml:"database"`
	Storage         storage.Config    `toml:"storage"`
	Redis           RedisConfig       `toml:"redis"`
	API             APIConfig         `toml:"api"`
	Agent           AgentConfig       `toml:"agent"`
	Generation      generation.Config `toml:"generation"`
	Enrichment      enrichment.Config `toml:"enrichment"`
	Workflow        workflow.Config   `toml:"workflow"`
	Prompts         PromptsConfig     `toml:"prompts"`
	LogLevel        string            `toml:"log_level"`
	LogFormat       string            `toml:"log_format"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Version         string            `toml:"version"`
}

// Env returns the PITCHCRAFT_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvPitchcraftEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Level returns LogLevel as a slog.Level.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Load reads a .env file and the base config (when present), applies any
// environment overlay, and finalizes all values. If no config.toml exists,
// defaults and environment variables provide all configuration.
func Load() (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}

	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Parse decodes TOML config content without finalizing it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	if overlay.LogFormat != "" {
		c.LogFormat = overlay.LogFormat
	}
	if overlay.Prompts.File != "" {
		c.Prompts.File = overlay.Prompts.File
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Redis.Merge(&overlay.Redis)
	c.API.Merge(&overlay.API)
	c.Agent.Merge(&overlay.Agent)
	c.Generation.Merge(&overlay.Generation)
	c.Enrichment.Merge(&overlay.Enrichment)
	c.Workflow.Merge(&overlay.Workflow)
}

// Finalize applies defaults, environment overrides, and validation to the
// root config and every section. The database and Redis sections are only
// finalized when the workflow config selects them.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Workflow.Finalize(workflowEnv); err != nil {
		return fmt.Errorf("workflow: %w", err)
	}
	if c.Workflow.Store == workflow.StorePostgres {
		if err := c.Database.Finalize(databaseEnv); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if c.Workflow.UsesRedis() {
		if err := c.Redis.Finalize(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Generation.Finalize(generationEnv); err != nil {
		return fmt.Errorf("generation: %w", err)
	}
	if c.Generation.Provider == generation.ProviderAgent {
		if _, err := c.Agent.Build(); err != nil {
			return fmt.Errorf("agent: %w", err)
		}
	}
	if err := c.Enrichment.Finalize(enrichmentEnv); err != nil {
		return fmt.Errorf("enrichment: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvPitchcraftShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvPitchcraftVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(EnvPitchcraftLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvPitchcraftLogFormat); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv(EnvPromptsFile); v != "" {
		c.Prompts.File = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format: %s", c.LogFormat)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

func overlayPath() string {
	if env := os.Getenv(EnvPitchcraftEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
