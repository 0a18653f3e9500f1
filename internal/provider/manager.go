package provider

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"slices"
	"sync"

	"github.com/wagiedev/claudify/internal/config"
	"github.com/wagiedev/claudify/internal/errors"
	"github.com/wagiedev/claudify/internal/message"
)

// Manager owns provider instances and routes requests to them. Providers
// are kept in insertion order. It is safe for concurrent use.
type Manager struct {
	log      *slog.Logger
	registry *Registry

	mu        sync.RWMutex
	providers map[string]Provider
	order     []string
}

// NewManager creates a Manager resolving factories from registry.
func NewManager(registry *Registry, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if registry == nil {
		registry = NewRegistry()
	}

	return &Manager{
		log:       log.With("component", "provider_manager"),
		registry:  registry,
		providers: make(map[string]Provider),
	}
}

// Registry returns the registry the Manager creates providers from.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// AddProvider creates, initializes and authenticates a provider for cfg and
// stores it. The provider is stored only when every step succeeds; otherwise
// it is disposed and the failure returned. An unsuccessful AuthResult fails
// with *errors.AuthenticationError.
func (m *Manager) AddProvider(ctx context.Context, cfg *config.ProviderConfig) (Provider, error) {
	if cfg == nil {
		return nil, errNilConfig
	}

	if m.HasProvider(cfg.ID) {
		return nil, &errors.ConfigurationError{
			ProviderID: cfg.ID,
			Message:    "provider already added",
		}
	}

	p, err := m.registry.CreateProvider(cfg)
	if err != nil {
		return nil, err
	}

	if err := m.setup(ctx, p, cfg); err != nil {
		if disposeErr := p.Dispose(ctx); disposeErr != nil {
			m.log.Debug("Dispose after failed setup", "provider", cfg.ID, "error", disposeErr)
		}

		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.providers[cfg.ID]; exists {
		_ = p.Dispose(ctx)

		return nil, &errors.ConfigurationError{
			ProviderID: cfg.ID,
			Message:    "provider already added",
		}
	}

	m.providers[cfg.ID] = p
	m.order = append(m.order, cfg.ID)

	m.log.Info("Provider added", "provider", cfg.ID)

	return p, nil
}

func (m *Manager) setup(ctx context.Context, p Provider, cfg *config.ProviderConfig) error {
	if err := p.Initialize(ctx, cfg); err != nil {
		return fmt.Errorf("initialize provider %s: %w", cfg.ID, err)
	}

	creds := cfg.Credentials()

	res, err := p.Authenticate(ctx, creds)
	if err != nil {
		return fmt.Errorf("authenticate provider %s: %w", cfg.ID, err)
	}

	if !res.Success {
		m.log.Warn("Provider authentication refused", "provider", cfg.ID, "credentials", creds.Masked().Type)

		return &errors.AuthenticationError{ProviderID: cfg.ID, Message: res.Error}
	}

	return nil
}

// HasProvider reports whether a provider with id has been added.
func (m *Manager) HasProvider(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.providers[id]

	return ok
}

// Provider returns the provider added under id.
func (m *Manager) Provider(id string) (Provider, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.providers[id]

	return p, ok
}

// Providers returns every provider in insertion order.
func (m *Manager) Providers() []Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Provider, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.providers[id])
	}

	return out
}

// RemoveProvider disposes and forgets the provider added under id.
func (m *Manager) RemoveProvider(ctx context.Context, id string) error {
	m.mu.Lock()

	p, ok := m.providers[id]
	if ok {
		delete(m.providers, id)
		m.order = slices.DeleteFunc(m.order, func(s string) bool { return s == id })
	}

	m.mu.Unlock()

	if !ok {
		return &errors.ConfigurationError{ProviderID: id, Message: "provider not found"}
	}

	return p.Dispose(ctx)
}

// ExecuteWithProvider runs req on the provider added under exactly id.
func (m *Manager) ExecuteWithProvider(
	ctx context.Context,
	id string,
	req *message.ExecutionRequest,
) (*message.ExecutionResult, error) {
	p, ok := m.Provider(id)
	if !ok {
		return nil, &errors.ConfigurationError{ProviderID: id, Message: "provider not found"}
	}

	return p.Execute(ctx, req)
}

// Best returns the first provider, in insertion order, that reports healthy.
// It fails with errors.ErrNoProviders when none were added and
// errors.ErrNoHealthyProvider when none is healthy.
func (m *Manager) Best(ctx context.Context) (Provider, error) {
	providers := m.Providers()
	if len(providers) == 0 {
		return nil, errors.ErrNoProviders
	}

	for _, p := range providers {
		if p.IsHealthy(ctx) {
			return p, nil
		}

		m.log.Debug("Skipping unhealthy provider", "provider", p.ID())
	}

	return nil, errors.ErrNoHealthyProvider
}

// ExecuteWithBest runs req on the provider chosen by Best.
func (m *Manager) ExecuteWithBest(ctx context.Context, req *message.ExecutionRequest) (*message.ExecutionResult, error) {
	p, err := m.Best(ctx)
	if err != nil {
		return nil, err
	}

	return p.Execute(ctx, req)
}

// ExecuteStreamWithBest streams req from the provider chosen by Best.
func (m *Manager) ExecuteStreamWithBest(
	ctx context.Context,
	req *message.ExecutionRequest,
) iter.Seq2[*message.ExecutionResult, error] {
	return func(yield func(*message.ExecutionResult, error) bool) {
		p, err := m.Best(ctx)
		if err != nil {
			yield(nil, err)

			return
		}

		for res, err := range p.ExecuteStream(ctx, req) {
			if !yield(res, err) {
				return
			}
		}
	}
}

// Statuses reports the status of every provider in insertion order.
func (m *Manager) Statuses(ctx context.Context) []Status {
	providers := m.Providers()

	out := make([]Status, 0, len(providers))
	for _, p := range providers {
		out = append(out, p.Status(ctx))
	}

	return out
}

// Dispose disposes every provider and empties the Manager.
func (m *Manager) Dispose(ctx context.Context) error {
	m.mu.Lock()
	providers := m.providers
	order := m.order
	m.providers = make(map[string]Provider)
	m.order = nil
	m.mu.Unlock()

	var errs []error

	for _, id := range order {
		if err := providers[id].Dispose(ctx); err != nil {
			errs = append(errs, fmt.Errorf("dispose provider %s: %w", id, err))
		}
	}

	return stderrors.Join(errs...)
}
