package claudify

import (
	"context"
	"fmt"
)

// WithProvider manages provider lifecycle with automatic cleanup.
//
// This helper creates a Claude Code provider, initializes and authenticates
// it, executes the callback function, and disposes the provider when done.
// If Dispose fails, a warning is logged but does not override the callback's
// error.
//
// Example usage:
//
//	err := claudify.WithProvider(ctx, func(p claudify.Provider) error {
//	    result, err := p.Execute(ctx, claudify.NewRequest("Hello"))
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(result.Content())
//	    return nil
//	},
//	    claudify.WithLogger(log),
//	)
func WithProvider(ctx context.Context, fn func(Provider) error, opts ...Option) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	o := applyOptions(opts)
	log := o.logger()
	cfg := o.providerConfig()

	p, err := NewClaudeCodeProvider(opts...)
	if err != nil {
		return fmt.Errorf("create provider: %w", err)
	}

	defer func() {
		if disposeErr := p.Dispose(context.WithoutCancel(ctx)); disposeErr != nil {
			log.Warn("failed to dispose provider", "error", disposeErr)
		}
	}()

	if err := p.Initialize(ctx, cfg); err != nil {
		return fmt.Errorf("initialize provider: %w", err)
	}

	auth, err := p.Authenticate(ctx, cfg.Credentials())
	if err != nil {
		return fmt.Errorf("authenticate provider: %w", err)
	}

	if !auth.Success {
		return &AuthenticationError{ProviderID: p.ID(), Message: auth.Error}
	}

	return fn(p)
}
