package provider

import (
	"maps"
	"slices"
	"sync"

	"github.com/wagiedev/claudify/internal/config"
	"github.com/wagiedev/claudify/internal/errors"
)

// Registry maps provider ids to factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds id to f, replacing any earlier binding.
func (r *Registry) Register(id string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[id] = f
}

// Unregister removes the binding for id.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.factories, id)
}

// Factory returns the factory bound to id.
func (r *Registry) Factory(id string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[id]

	return f, ok
}

// List returns the registered ids in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.factories))
}

// errNilConfig is returned when a nil provider config is passed in.
var errNilConfig = &errors.ConfigurationError{Message: "provider config is nil"}

// CreateProvider builds a provider for cfg.ID. It fails with
// *errors.ConfigurationError when no factory is registered for the id or the
// factory declines it.
func (r *Registry) CreateProvider(cfg *config.ProviderConfig) (Provider, error) {
	if cfg == nil {
		return nil, errNilConfig
	}

	f, ok := r.Factory(cfg.ID)
	if !ok {
		return nil, &errors.ConfigurationError{
			ProviderID: cfg.ID,
			Message:    "no factory registered for provider " + cfg.ID,
		}
	}

	if !f.Supports(cfg.ID) {
		return nil, &errors.ConfigurationError{
			ProviderID: cfg.ID,
			Message:    "factory does not support provider " + cfg.ID,
		}
	}

	p, err := f.Create(cfg)
	if err != nil {
		return nil, &errors.ConfigurationError{
			ProviderID: cfg.ID,
			Message:    "create provider",
			Err:        err,
		}
	}

	return p, nil
}
