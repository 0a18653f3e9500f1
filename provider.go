package claudify

import (
	"github.com/wagiedev/claudify/internal/provider"
	"github.com/wagiedev/claudify/internal/provider/claudecode"
)

// NewRegistry returns a registry with the Claude Code factory registered.
func NewRegistry(opts ...Option) *Registry {
	o := applyOptions(opts)

	reg := provider.NewRegistry()
	reg.Register(claudecode.ProviderID, claudecode.NewFactory(o.providerOptions()...))

	return reg
}

// NewManager returns a Manager whose registry knows the Claude Code
// provider. Add providers with Manager.AddProvider:
//
//	mgr := claudify.NewManager(claudify.WithLogger(log))
//	defer mgr.Dispose(ctx)
//
//	if _, err := mgr.AddProvider(ctx, claudify.ClaudeCodeConfig()); err != nil {
//	    return err
//	}
func NewManager(opts ...Option) *Manager {
	o := applyOptions(opts)

	return provider.NewManager(NewRegistry(opts...), o.logger())
}

// NewClaudeCodeProvider creates an uninitialized Claude Code provider. Call
// Initialize before executing requests and Dispose when done.
func NewClaudeCodeProvider(opts ...Option) (*ClaudeCodeProvider, error) {
	o := applyOptions(opts)

	return claudecode.New(o.providerConfig(), o.providerOptions()...)
}
