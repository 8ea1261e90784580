package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvRedisAddr     = "PITCHCRAFT_REDIS_ADDR"
	EnvRedisPassword = "PITCHCRAFT_REDIS_PASSWORD"
	EnvRedisDB       = "PITCHCRAFT_REDIS_DB"
)

// RedisConfig holds Redis connection parameters for the record store and
// the project lock.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *RedisConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *RedisConfig) Merge(overlay *RedisConfig) {
	if overlay.Addr != "" {
		c.Addr = overlay.Addr
	}
	if overlay.Password != "" {
		c.Password = overlay.Password
	}
	if overlay.DB != 0 {
		c.DB = overlay.DB
	}
}

func (c *RedisConfig) loadDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
}

func (c *RedisConfig) loadEnv() {
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Addr = v
	}
	if v := os.Getenv(EnvRedisPassword); v != "" {
		c.Password = v
	}
	if v := os.Getenv(EnvRedisDB); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.DB = db
		}
	}
}

func (c *RedisConfig) validate() error {
	if c.DB < 0 {
		return fmt.Errorf("invalid db: %d", c.DB)
	}
	return nil
}
