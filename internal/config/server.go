package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost              = "PITCHCRAFT_SERVER_HOST"
	EnvServerPort              = "PITCHCRAFT_SERVER_PORT"
	EnvServerReadTimeout       = "PITCHCRAFT_SERVER_READ_TIMEOUT"
	EnvServerReadHeaderTimeout = "PITCHCRAFT_SERVER_READ_HEADER_TIMEOUT"
	EnvServerWriteTimeout      = "PITCHCRAFT_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout       = "PITCHCRAFT_SERVER_IDLE_TIMEOUT"
	EnvServerShutdownTimeout   = "PITCHCRAFT_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig holds HTTP listener parameters.
type ServerConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	ReadTimeout       string `toml:"read_timeout"`
	ReadHeaderTimeout string `toml:"read_header_timeout"`
	WriteTimeout      string `toml:"write_timeout"`
	IdleTimeout       string `toml:"idle_timeout"`
	ShutdownTimeout   string `toml:"shutdown_timeout"`
}

func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration       { return duration(c.ReadTimeout) }
func (c *ServerConfig) ReadHeaderTimeoutDuration() time.Duration { return duration(c.ReadHeaderTimeout) }
func (c *ServerConfig) WriteTimeoutDuration() time.Duration      { return duration(c.WriteTimeout) }
func (c *ServerConfig) IdleTimeoutDuration() time.Duration       { return duration(c.IdleTimeout) }
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration   { return duration(c.ShutdownTimeout) }

// Finalize applies defaults, environment overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites fields that are set in overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	for _, t := range c.timeouts() {
		if v := *t.from(overlay); v != "" {
			*t.field = v
		}
	}
}

type serverTimeout struct {
	name     string
	env      string
	fallback string
	field    *string
	from     func(*ServerConfig) *string
}

func (c *ServerConfig) timeouts() []serverTimeout {
	return []serverTimeout{
		{"read_timeout", EnvServerReadTimeout, "1m", &c.ReadTimeout,
			func(o *ServerConfig) *string { return &o.ReadTimeout }},
		{"read_header_timeout", EnvServerReadHeaderTimeout, "10s", &c.ReadHeaderTimeout,
			func(o *ServerConfig) *string { return &o.ReadHeaderTimeout }},
		{"write_timeout", EnvServerWriteTimeout, "15m", &c.WriteTimeout,
			func(o *ServerConfig) *string { return &o.WriteTimeout }},
		{"idle_timeout", EnvServerIdleTimeout, "2m", &c.IdleTimeout,
			func(o *ServerConfig) *string { return &o.IdleTimeout }},
		{"shutdown_timeout", EnvServerShutdownTimeout, "30s", &c.ShutdownTimeout,
			func(o *ServerConfig) *string { return &o.ShutdownTimeout }},
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	for _, t := range c.timeouts() {
		if *t.field == "" {
			*t.field = t.fallback
		}
	}
}

func (c *ServerConfig) loadEnv() {
	if v := os.Getenv(EnvServerHost); v != "" {
		c.Host = v
	}
	if port, err := strconv.Atoi(os.Getenv(EnvServerPort)); err == nil {
		c.Port = port
	}
	for _, t := range c.timeouts() {
		if v := os.Getenv(t.env); v != "" {
			*t.field = v
		}
	}
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for _, t := range c.timeouts() {
		if _, err := time.ParseDuration(*t.field); err != nil {
			return fmt.Errorf("invalid %s: %w", t.name, err)
		}
	}
	return nil
}

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
