package generation

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

type agentGenerator struct {
	cfg gaconfig.AgentConfig
}

// NewAgent creates a Generator that sends each rendered prompt to the
// configured go-agents provider as a single chat turn.
func NewAgent(cfg gaconfig.AgentConfig) Generator {
	return &agentGenerator{cfg: cfg}
}

func (g *agentGenerator) Generate(ctx context.Context, prompt string, data map[string]string) (string, error) {
	a, err := agent.New(&g.cfg)
	if err != nil {
		return "", fmt.Errorf("%w: create agent: %w", ErrGeneration, err)
	}

	resp, err := a.Chat(ctx, Render(prompt, data))
	if err != nil {
		return "", fmt.Errorf("%w: chat: %w", ErrGeneration, err)
	}

	return resp.Content(), nil
}
