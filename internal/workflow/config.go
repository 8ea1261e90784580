package workflow

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Lock backends.
const (
	LockMemory = "memory"
	LockRedis  = "redis"
)

// Config selects the record store and project lock and tunes the stages.
type Config struct {
	Store         string `toml:"store"`
	Lock          string `toml:"lock"`
	LockTTL       string `toml:"lock_ttl"`
	AutoEnrich    *bool  `toml:"auto_enrich"`
	ObjectionCap  int    `toml:"objection_cap"`
	ExcerptLength int    `toml:"excerpt_length"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Store         string
	Lock          string
	LockTTL       string
	AutoEnrich    string
	ObjectionCap  string
	ExcerptLength string
}

// LockTTLDuration returns LockTTL as a time.Duration.
func (c *Config) LockTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.LockTTL)
	return d
}

// AutoEnrichEnabled reports whether enrichment runs after a profile save.
func (c *Config) AutoEnrichEnabled() bool {
	return c.AutoEnrich == nil || *c.AutoEnrich
}

// UsesRedis reports whether the store or the lock needs a Redis client.
func (c *Config) UsesRedis() bool {
	return c.Store == StoreRedis || c.Lock == LockRedis
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
	if overlay.Store != "" {
		c.Store = overlay.Store
	}
	if overlay.Lock != "" {
		c.Lock = overlay.Lock
	}
	if overlay.LockTTL != "" {
		c.LockTTL = overlay.LockTTL
	}
	if overlay.AutoEnrich != nil {
		v := *overlay.AutoEnrich
		c.AutoEnrich = &v
	}
	if overlay.ObjectionCap != 0 {
		c.ObjectionCap = overlay.ObjectionCap
	}
	if overlay.ExcerptLength != 0 {
		c.ExcerptLength = overlay.ExcerptLength
	}
}

func (c *Config) loadDefaults() {
	if c.Store == "" {
		c.Store = StoreMemory
	}
	if c.Lock == "" {
		c.Lock = LockMemory
	}
	if c.LockTTL == "" {
		c.LockTTL = "5m"
	}
	if c.ObjectionCap == 0 {
		c.ObjectionCap = 5
	}
	if c.ExcerptLength == 0 {
		c.ExcerptLength = 280
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Store != "" {
		if v := os.Getenv(env.Store); v != "" {
			c.Store = v
		}
	}
	if env.Lock != "" {
		if v := os.Getenv(env.Lock); v != "" {
			c.Lock = v
		}
	}
	if env.LockTTL != "" {
		if v := os.Getenv(env.LockTTL); v != "" {
			c.LockTTL = v
		}
	}
	if env.AutoEnrich != "" {
		if v := os.Getenv(env.AutoEnrich); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.AutoEnrich = &b
			}
		}
	}
	if env.ObjectionCap != "" {
		if v := os.Getenv(env.ObjectionCap); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.ObjectionCap = n
			}
		}
	}
	if env.ExcerptLength != "" {
		if v := os.Getenv(env.ExcerptLength); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.ExcerptLength = n
			}
		}
	}
}

func (c *Config) validate() error {
	switch c.Store {
	case StoreMemory, StorePostgres, StoreRedis:
	default:
		return fmt.Errorf("unknown store: %s", c.Store)
	}
	switch c.Lock {
	case LockMemory, LockRedis:
	default:
		return fmt.Errorf("unknown lock: %s", c.Lock)
	}
	if _, err := time.ParseDuration(c.LockTTL); err != nil {
		return fmt.Errorf("invalid lock_ttl: %w", err)
	}
	if c.ObjectionCap < 1 {
		return fmt.Errorf("objection_cap must be positive")
	}
	if c.ExcerptLength < 1 {
		return fmt.Errorf("excerpt_length must be positive")
	}
	return nil
}
