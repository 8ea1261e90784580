package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JaimeStill/pitchcraft/internal/config"
	"github.com/JaimeStill/pitchcraft/internal/generation"
	"github.com/JaimeStill/pitchcraft/internal/workflow"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"
log_level = "debug"

[server]
host = "0.0.0.0"
port = 8080

[storage]
container_name = "decks"

[api]
base_path = "/api"
max_body_size = "2MB"

[api.pagination]
default_page_size = 25
max_page_size = 50

[generation]
provider = "demo"
max_concurrency = 3

[workflow]
store = "memory"
objection_cap = 4
`

const overlayConfig = `
[server]
port = 9090

[workflow]
auto_enrich = false
`

const postgresConfig = `
[workflow]
store = "postgres"

[database]
name = "pitchcraft"
user = "pitchcraft"
`

const agentConfig = `
[generation]
provider = "agent"

[agent]
name = "pitch-writer"
provider_name = "ollama"
base_url = "http://localhost:11434"
model_name = "llama3.1:8b"

[agent.options]
temperature = "0.4"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Storage.ContainerName != "decks" {
		t.Errorf("storage container: got %s, want decks", cfg.Storage.ContainerName)
	}
	if cfg.Storage.Azure() {
		t.Error("storage without connection string should not select azure")
	}
	if cfg.API.MaxBodySizeBytes() != 2*1024*1024 {
		t.Errorf("max body size: got %d, want %d", cfg.API.MaxBodySizeBytes(), 2*1024*1024)
	}
	if cfg.API.Pagination.MaxPageSize != 50 {
		t.Errorf("pagination max_page_size: got %d, want 50", cfg.API.Pagination.MaxPageSize)
	}
	if cfg.Generation.MaxConcurrency != 3 {
		t.Errorf("generation max_concurrency: got %d, want 3", cfg.Generation.MaxConcurrency)
	}
	if cfg.Workflow.ObjectionCap != 4 {
		t.Errorf("workflow objection_cap: got %d, want 4", cfg.Workflow.ObjectionCap)
	}
	if !cfg.Workflow.AutoEnrichEnabled() {
		t.Error("auto enrich should default to enabled")
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("log level: got %s, want debug", cfg.Level())
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv("PITCHCRAFT_ENV", "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Env() != "staging" {
		t.Errorf("env: got %s, want staging", cfg.Env())
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090 (from overlay)", cfg.Server.Port)
	}
	if cfg.Workflow.AutoEnrichEnabled() {
		t.Error("auto enrich should be disabled by overlay")
	}
	if cfg.Workflow.ObjectionCap != 4 {
		t.Errorf("objection cap: got %d, want 4 (from base)", cfg.Workflow.ObjectionCap)
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	t.Setenv("PITCHCRAFT_VERSION", "2.0.0")
	t.Setenv("PITCHCRAFT_SERVER_PORT", "3000")
	t.Setenv("PITCHCRAFT_WORKFLOW_EXCERPT_LENGTH", "120")
	t.Setenv("PITCHCRAFT_GENERATION_CALL_TIMEOUT", "45s")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.Workflow.ExcerptLength != 120 {
		t.Errorf("excerpt length: got %d, want 120", cfg.Workflow.ExcerptLength)
	}
	if cfg.Generation.CallTimeoutDuration() != 45*time.Second {
		t.Errorf("call timeout: got %s, want 45s", cfg.Generation.CallTimeoutDuration())
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".env", "PITCHCRAFT_DOTENV_PROBE=1\n")
	chdir(t, dir)
	t.Cleanup(func() { os.Unsetenv("PITCHCRAFT_DOTENV_PROBE") })

	if _, err := config.Load(); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got := os.Getenv("PITCHCRAFT_DOTENV_PROBE"); got != "1" {
		t.Errorf("dotenv value: got %q, want 1", got)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port default: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Generation.Provider != generation.ProviderDemo {
		t.Errorf("generation provider default: got %s, want %s", cfg.Generation.Provider, generation.ProviderDemo)
	}
	if cfg.Workflow.Store != workflow.StoreMemory {
		t.Errorf("workflow store default: got %s, want %s", cfg.Workflow.Store, workflow.StoreMemory)
	}
	if cfg.Storage.Prefix != "snapshots" {
		t.Errorf("storage prefix default: got %s, want snapshots", cfg.Storage.Prefix)
	}
	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("shutdown timeout: got %s, want 30s", cfg.ShutdownTimeoutDuration())
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", `server = [`)
	chdir(t, dir)

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestFinalizeSections(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		env     map[string]string
		wantErr bool
	}{
		{name: "memory store skips database", data: baseConfig},
		{name: "postgres store finalizes database", data: postgresConfig},
		{
			name:    "postgres store requires database name",
			data:    "[workflow]\nstore = \"postgres\"\n",
			wantErr: true,
		},
		{name: "agent provider builds agent", data: agentConfig},
		{
			name: "agent provider falls back to agent defaults",
			data: "[generation]\nprovider = \"agent\"\n",
		},
		{
			name:    "unknown generation provider",
			data:    "[generation]\nprovider = \"oracle\"\n",
			wantErr: true,
		},
		{
			name:    "bad database timeout",
			data:    postgresConfig + "conn_timeout = \"never\"\n",
			wantErr: true,
		},
		{
			name: "database env fills required fields",
			data: "[workflow]\nstore = \"postgres\"\n",
			env: map[string]string{
				"PITCHCRAFT_DB_NAME": "pitchcraft",
				"PITCHCRAFT_DB_USER": "pitchcraft",
			},
		},
		{
			name: "redis lock finalizes redis",
			data: "[workflow]\nlock = \"redis\"\n[redis]\naddr = \"cache:6379\"\n",
		},
		{
			name:    "invalid log format",
			data:    "log_format = \"xml\"\n",
			wantErr: true,
		},
		{
			name:    "directory source requires file",
			data:    "[enrichment]\nsources = [\"directory\"]\n",
			wantErr: true,
		},
		{
			name:    "unknown store",
			data:    "[workflow]\nstore = \"sqlite\"\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := config.Parse([]byte(tt.data))
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}

			err = cfg.Finalize()
			if tt.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestAgentBuild(t *testing.T) {
	cfg, err := config.Parse([]byte(agentConfig))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	t.Setenv("PITCHCRAFT_AGENT_TOKEN", "secret")
	t.Setenv("PITCHCRAFT_AGENT_MODEL_NAME", "llama3.2:3b")

	agent, err := cfg.Agent.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if agent.Name != "pitch-writer" {
		t.Errorf("name: got %s, want pitch-writer", agent.Name)
	}
	if agent.Provider.Name != "ollama" {
		t.Errorf("provider: got %s, want ollama", agent.Provider.Name)
	}
	if agent.Model.Name != "llama3.2:3b" {
		t.Errorf("model from env: got %s, want llama3.2:3b", agent.Model.Name)
	}
	if agent.Provider.Options["token"] != "secret" {
		t.Errorf("token option: got %v, want secret", agent.Provider.Options["token"])
	}
	if agent.Provider.Options["temperature"] != "0.4" {
		t.Errorf("temperature option: got %v, want 0.4", agent.Provider.Options["temperature"])
	}
}

func TestAgentMerge(t *testing.T) {
	base := config.AgentConfig{
		Name:      "base",
		ModelName: "small",
		Options:   map[string]string{"temperature": "0.2"},
	}
	base.Merge(&config.AgentConfig{
		ModelName: "large",
		Options:   map[string]string{"top_p": "0.9"},
	})

	if base.Name != "base" {
		t.Errorf("name: got %s, want base", base.Name)
	}
	if base.ModelName != "large" {
		t.Errorf("model: got %s, want large", base.ModelName)
	}
	if len(base.Options) != 2 {
		t.Errorf("options: got %d entries, want 2", len(base.Options))
	}
}

func TestServerValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ServerConfig
	}{
		{name: "port out of range", cfg: config.ServerConfig{Port: 70000}},
		{name: "bad read timeout", cfg: config.ServerConfig{ReadTimeout: "soon"}},
		{name: "bad write timeout", cfg: config.ServerConfig{WriteTimeout: "later"}},
		{name: "bad idle timeout", cfg: config.ServerConfig{IdleTimeout: "-"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestServerTimeouts(t *testing.T) {
	t.Setenv(config.EnvServerIdleTimeout, "45s")

	cfg := config.ServerConfig{WriteTimeout: "20m"}
	cfg.Merge(&config.ServerConfig{ReadTimeout: "2m"})
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	tests := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"read from overlay", cfg.ReadTimeoutDuration(), 2 * time.Minute},
		{"read header default", cfg.ReadHeaderTimeoutDuration(), 10 * time.Second},
		{"write kept", cfg.WriteTimeoutDuration(), 20 * time.Minute},
		{"idle from env", cfg.IdleTimeoutDuration(), 45 * time.Second},
		{"shutdown default", cfg.ShutdownTimeoutDuration(), 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestServerAddr(t *testing.T) {
	cfg := config.ServerConfig{Host: "127.0.0.1", Port: 8443}
	if got := cfg.Addr(); got != "127.0.0.1:8443" {
		t.Errorf("addr: got %s, want 127.0.0.1:8443", got)
	}
}

func TestMaxBodySizeDefault(t *testing.T) {
	cfg := config.APIConfig{MaxBodySize: "not-a-size"}
	if got := cfg.MaxBodySizeBytes(); got != 1024*1024 {
		t.Errorf("fallback body size: got %d, want %d", got, 1024*1024)
	}
}

func TestZeroRetriesFromFile(t *testing.T) {
	cfg, err := config.Parse([]byte("[generation]\nmax_retries = 0\n\n[enrichment]\nmax_retries = 0\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if got := cfg.Generation.Retries(); got != 0 {
		t.Errorf("generation retries = %d, want 0", got)
	}
	if got := cfg.Enrichment.Retries(); got != 0 {
		t.Errorf("enrichment retries = %d, want 0", got)
	}
}
