package config

import (
	"fmt"
	"os"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

const (
	EnvAgentName         = "PITCHCRAFT_AGENT_NAME"
	EnvAgentProviderName = "PITCHCRAFT_AGENT_PROVIDER_NAME"
	EnvAgentBaseURL      = "PITCHCRAFT_AGENT_BASE_URL"
	EnvAgentToken        = "PITCHCRAFT_AGENT_TOKEN"
	EnvAgentDeployment   = "PITCHCRAFT_AGENT_DEPLOYMENT"
	EnvAgentAPIVersion   = "PITCHCRAFT_AGENT_API_VERSION"
	EnvAgentAuthType     = "PITCHCRAFT_AGENT_AUTH_TYPE"
	EnvAgentModelName    = "PITCHCRAFT_AGENT_MODEL_NAME"
)

// AgentConfig is the file form of the go-agents provider settings. Options
// are passed through to the provider unchanged.
type AgentConfig struct {
	Name         string            `toml:"name"`
	ProviderName string            `toml:"provider_name"`
	BaseURL      string            `toml:"base_url"`
	ModelName    string            `toml:"model_name"`
	Options      map[string]string `toml:"options"`
}

// Merge overwrites non-zero fields from overlay. Options merge by key.
func (c *AgentConfig) Merge(overlay *AgentConfig) {
	if overlay.Name != "" {
		c.Name = overlay.Name
	}
	if overlay.ProviderName != "" {
		c.ProviderName = overlay.ProviderName
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.ModelName != "" {
		c.ModelName = overlay.ModelName
	}
	for k, v := range overlay.Options {
		if c.Options == nil {
			c.Options = make(map[string]string)
		}
		c.Options[k] = v
	}
}

// Build converts c to a go-agents AgentConfig: go-agents defaults first,
// then file values, then environment overrides, then validation.
func (c *AgentConfig) Build() (gaconfig.AgentConfig, error) {
	cfg := gaconfig.DefaultAgentConfig()
	if cfg.Provider == nil {
		cfg.Provider = &gaconfig.ProviderConfig{}
	}
	if cfg.Provider.Options == nil {
		cfg.Provider.Options = make(map[string]any)
	}
	if cfg.Model == nil {
		cfg.Model = &gaconfig.ModelConfig{}
	}

	if c.Name != "" {
		cfg.Name = c.Name
	}
	if c.ProviderName != "" {
		cfg.Provider.Name = c.ProviderName
	}
	if c.BaseURL != "" {
		cfg.Provider.BaseURL = c.BaseURL
	}
	if c.ModelName != "" {
		cfg.Model.Name = c.ModelName
	}
	for k, v := range c.Options {
		cfg.Provider.Options[k] = v
	}

	loadAgentEnv(&cfg)
	if err := validateAgent(&cfg); err != nil {
		return gaconfig.AgentConfig{}, err
	}
	return cfg, nil
}

func loadAgentEnv(c *gaconfig.AgentConfig) {
	if v := os.Getenv(EnvAgentName); v != "" {
		c.Name = v
	}
	if v := os.Getenv(EnvAgentProviderName); v != "" {
		c.Provider.Name = v
	}
	if v := os.Getenv(EnvAgentBaseURL); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv(EnvAgentModelName); v != "" {
		c.Model.Name = v
	}

	setOption := func(envVar, key string) {
		if v := os.Getenv(envVar); v != "" {
			c.Provider.Options[key] = v
		}
	}

	setOption(EnvAgentToken, "token")
	setOption(EnvAgentDeployment, "deployment")
	setOption(EnvAgentAPIVersion, "api_version")
	setOption(EnvAgentAuthType, "auth_type")
}

func validateAgent(c *gaconfig.AgentConfig) error {
	if c.Name == "" {
		return fmt.Errorf("name required")
	}
	if c.Provider.Name == "" {
		return fmt.Errorf("provider name required")
	}
	return nil
}
