package generation

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
	"golang.org/x/time/rate"
)

// Providers understood by New.
const (
	ProviderAgent = "agent"
	ProviderDemo  = "demo"
)

const defaultMaxRetries = 2

// Config holds generation backend selection and call-shaping parameters.
type Config struct {
	Provider       string  `toml:"provider"`
	CallTimeout    string  `toml:"call_timeout"`
	MaxRetries     *int    `toml:"max_retries"`
	RetryBackoff   string  `toml:"retry_backoff"`
	RateLimit      float64 `toml:"rate_limit"`
	Burst          int     `toml:"burst"`
	MaxConcurrency int     `toml:"max_concurrency"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider       string
	CallTimeout    string
	MaxRetries     string
	RetryBackoff   string
	RateLimit      string
	Burst          string
	MaxConcurrency string
}

// CallTimeoutDuration returns CallTimeout as a time.Duration.
func (c *Config) CallTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.CallTimeout)
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
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.CallTimeout != "" {
		c.CallTimeout = overlay.CallTimeout
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
	if overlay.MaxConcurrency != 0 {
		c.MaxConcurrency = overlay.MaxConcurrency
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderDemo
	}
	if c.CallTimeout == "" {
		c.CallTimeout = "60s"
	}
	if c.MaxRetries == nil {
		n := defaultMaxRetries
		c.MaxRetries = &n
	}
	if c.RetryBackoff == "" {
		c.RetryBackoff = "250ms"
	}
	if c.RateLimit == 0 {
		c.RateLimit = 10
	}
	if c.Burst == 0 {
		c.Burst = 6
	}
	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = 6
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Provider != "" {
		if v := os.Getenv(env.Provider); v != "" {
			c.Provider = v
		}
	}
	if env.CallTimeout != "" {
		if v := os.Getenv(env.CallTimeout); v != "" {
			c.CallTimeout = v
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
	if env.MaxConcurrency != "" {
		if v := os.Getenv(env.MaxConcurrency); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxConcurrency = n
			}
		}
	}
}

func (c *Config) validate() error {
	if c.Provider != ProviderAgent && c.Provider != ProviderDemo {
		return fmt.Errorf("provider must be %q or %q: %s", ProviderAgent, ProviderDemo, c.Provider)
	}
	if _, err := time.ParseDuration(c.CallTimeout); err != nil {
		return fmt.Errorf("invalid call_timeout: %w", err)
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
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be positive")
	}
	return nil
}

// New builds the configured backend and wraps it so that each attempt waits
// for the rate limiter and runs under the call timeout, and failed attempts
// are retried.
func New(cfg *Config, agent gaconfig.AgentConfig, logger *slog.Logger) Generator {
	var base Generator
	switch cfg.Provider {
	case ProviderAgent:
		base = NewAgent(agent)
	default:
		base = NewDemo()
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst)
	}

	g := WithTimeout(base, cfg.CallTimeoutDuration())
	g = WithRateLimit(g, limiter)
	return WithRetry(g, cfg.Retries(), cfg.RetryBackoffDuration(), logger.With("system", "generation"))
}
