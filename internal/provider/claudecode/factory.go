package claudecode

import (
	"github.com/wagiedev/claudify/internal/config"
	"github.com/wagiedev/claudify/internal/errors"
	"github.com/wagiedev/claudify/internal/models"
	"github.com/wagiedev/claudify/internal/provider"
)

// ProviderID is the id the factory serves.
const ProviderID = "claude-code"

// tools are the built-in tools the claude CLI can use on its own.
var tools = []string{"Read", "Write", "Edit", "Bash", "Glob", "Grep", "Task", "TodoWrite"}

// Factory creates Claude Code providers.
type Factory struct {
	opts []Option
}

var _ provider.Factory = (*Factory)(nil)

// NewFactory returns a Factory that applies opts to every provider it
// creates.
func NewFactory(opts ...Option) *Factory {
	return &Factory{opts: opts}
}

// Create implements provider.Factory.
func (f *Factory) Create(cfg *config.ProviderConfig) (provider.Provider, error) {
	p, err := New(cfg, f.opts...)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// Supports implements provider.Factory.
func (f *Factory) Supports(id string) bool {
	return id == ProviderID
}

// Capabilities implements provider.Factory.
func (f *Factory) Capabilities(id string) (provider.Capabilities, error) {
	if !f.Supports(id) {
		return provider.Capabilities{}, &errors.ConfigurationError{
			ProviderID: id,
			Message:    "provider not supported by the claude-code factory",
		}
	}

	return capabilities(), nil
}

func capabilities() provider.Capabilities {
	return provider.Capabilities{
		Streaming:       true,
		FunctionCalling: models.Supports(models.CapToolUse),
		MultiModal:      models.Supports(models.CapVision),
		Tools:           append([]string(nil), tools...),
		Models:          models.IDs(),
		Authentication:  []string{string(config.AuthNone), string(config.AuthBearer)},
	}
}
