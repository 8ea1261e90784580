package enrichment

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Source names accepted in Config.Sources.
const (
	SourceWebsite   = "website"
	SourceDirectory = "directory"
)

const defaultMaxRetries = 2

// Config selects enrichment sources and shapes their calls.
type Config struct {
	Sources       []string `toml:"sources"`
	DirectoryFile string   `toml:"directory_file"`
	UserAgent     string   `toml:"user_agent"`
	MaxPageBytes  int64    `toml:"max_page_bytes"`
	Timeout       string   `toml:"timeout"`
	MaxRetries    *int     `toml:"max_retries"`
	RetryBackoff  string   `toml:"retry_backoff"`
	RateLimit     float64  `toml:"rate_limit"`
	Burst         int      `toml:"burst"`

	// AllowPrivateNetworks lets the website source reach loopback and
	// private addresses. Off by default.
	AllowPrivateNetworks bool `toml:"allow_private_networks"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Sources              string
	DirectoryFile        string
	UserAgent            string
	MaxPageBytes         string
	Timeout              string
	MaxRetries           string
	RetryBackoff         string
	RateLimit            string
	Burst                string
	AllowPrivateNetworks string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Retries returns the retry budget. An explicit zero disables retries.
func (c *Config) Retries() int {
	if c.MaxRetries == nil {
		return defaultMaxRetries
	}
	return *c.MaxRetries
}

// RetryBackoffDuration returns RetryBackoff as a time.Duration.
func (c *Config) RetryBackoffDuration() time.Duration {
	d, _ := time.ParseDuration(c.RetryBackoff)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Sources != nil {
		c.Sources = overlay.Sources
	}
	if overlay.DirectoryFile != "" {
		c.DirectoryFile = overlay.DirectoryFile
	}
	if overlay.UserAgent != "" {
		c.UserAgent = overlay.UserAgent
	}
	if overlay.MaxPageBytes != 0 {
		c.MaxPageBytes = overlay.MaxPageBytes
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.MaxRetries != nil {
		n := *overlay.MaxRetries
		c.MaxRetries = &n
	}
	if overlay.RetryBackoff != "" {
		c.RetryBackoff = overlay.RetryBackoff
	}
	if overlay.RateLimit != 0 {
		c.RateLimit = overlay.RateLimit
	}
	if overlay.Burst != 0 {
		c.Burst = overlay.Burst
	}
	if overlay.AllowPrivateNetworks {
		c.AllowPrivateNetworks = true
	}
}

func (c *Config) loadDefaults() {
	if c.UserAgent == "" {
		c.UserAgent = "pitchcraft-enrichment/1.0"
	}
	if c.MaxPageBytes == 0 {
		c.MaxPageBytes = 2 * 1024 * 1024
	}
	if c.Timeout == "" {
		c.Timeout = "10s"
	}
	if c.MaxRetries == nil {
		n := defaultMaxRetries
		c.MaxRetries = &n
	}
	if c.RetryBackoff == "" {
		c.RetryBackoff = "250ms"
	}
	if c.RateLimit == 0 {
		c.RateLimit = 2
	}
	if c.Burst == 0 {
		c.Burst = 2
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Sources != "" {
		if v := os.Getenv(env.Sources); v != "" {
			c.Sources = nil
			for s := range strings.SplitSeq(v, ",") {
				if s = strings.TrimSpace(s); s != "" {
					c.Sources = append(c.Sources, s)
				}
			}
		}
	}
	if env.DirectoryFile != "" {
		if v := os.Getenv(env.DirectoryFile); v != "" {
			c.DirectoryFile = v
		}
	}
	if env.UserAgent != "" {
		if v := os.Getenv(env.UserAgent); v != "" {
			c.UserAgent = v
		}
	}
	if env.MaxPageBytes != "" {
		if v := os.Getenv(env.MaxPageBytes); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				c.MaxPageBytes = n
			}
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
	if env.MaxRetries != "" {
		if v := os.Getenv(env.MaxRetries); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxRetries = &n
			}
		}
	}
	if env.RetryBackoff != "" {
		if v := os.Getenv(env.RetryBackoff); v != "" {
			c.RetryBackoff = v
		}
	}
	if env.RateLimit != "" {
		if v := os.Getenv(env.RateLimit); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				c.RateLimit = f
			}
		}
	}
	if env.Burst != "" {
		if v := os.Getenv(env.Burst); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Burst = n
			}
		}
	}
	if env.AllowPrivateNetworks != "" {
		if v := os.Getenv(env.AllowPrivateNetworks); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.AllowPrivateNetworks = b
			}
		}
	}
}

func (c *Config) validate() error {
	for _, s := range c.Sources {
		switch s {
		case SourceWebsite:
		case SourceDirectory:
			if c.DirectoryFile == "" {
				return fmt.Errorf("directory source requires directory_file")
			}
		default:
			return fmt.Errorf("unknown enrichment source: %s", s)
		}
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.RetryBackoff); err != nil {
		return fmt.Errorf("invalid retry_backoff: %w", err)
	}
	if c.Retries() < 0 {
		return fmt.Errorf("max_retries cannot be negative")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit cannot be negative")
	}
	if c.Burst < 1 {
		return fmt.Errorf("burst must be positive")
	}
	return nil
}

// New builds the configured source chain. Each source call waits for the
// shared rate limiter and runs under the timeout, and failed calls are
// retried. No configured sources yields None.
func New(cfg *Config, logger *slog.Logger) (Enricher, error) {
	logger = logger.With("system", "enrichment")

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst)
	}

	sources := make([]Enricher, 0, len(cfg.Sources))
	for _, name := range cfg.Sources {
		var src Enricher
		switch name {
		case SourceWebsite:
			src = NewWebsite(NewClient(cfg.AllowPrivateNetworks), cfg.UserAgent, cfg.MaxPageBytes)
		case SourceDirectory:
			dir, err := LoadDirectory(cfg.DirectoryFile)
			if err != nil {
				return nil, err
			}
			src = dir
		default:
			return nil, fmt.Errorf("unknown enrichment source: %s", name)
		}

		src = WithTimeout(src, cfg.TimeoutDuration())
		src = WithRateLimit(src, limiter)
		sources = append(sources, WithRetry(src, cfg.Retries(), cfg.RetryBackoffDuration(), logger))
	}

	return Chain(logger, sources...), nil
}
