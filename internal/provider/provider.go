// Package provider defines the provider contract and the registry and
// manager that hold provider instances.
//
// A provider is created by its Factory, initialized, authenticated, used for
// any number of requests and finally disposed:
//
//	reg := provider.NewRegistry()
//	reg.Register(claudecode.ProviderID, claudecode.NewFactory(log))
//
//	mgr := provider.NewManager(reg, log)
//	defer mgr.Dispose(ctx)
//
//	if _, err := mgr.AddProvider(ctx, &config.ProviderConfig{ID: "claude-code"}); err != nil {
//	    return err
//	}
//
//	result, err := mgr.ExecuteWithBest(ctx, req)
package provider

import (
	"context"
	"iter"
	"time"

	"github.com/wagiedev/claudify/internal/config"
	"github.com/wagiedev/claudify/internal/message"
	"github.com/wagiedev/claudify/internal/metrics"
)

// Capabilities describes what a provider supports.
type Capabilities struct {
	Streaming       bool     `json:"streaming"`
	FunctionCalling bool     `json:"functionCalling"`
	MultiModal      bool     `json:"multiModal"`
	Tools           []string `json:"tools"`
	Models          []string `json:"models"`
	Authentication  []string `json:"authentication"`
}

// AuthResult is the outcome of Authenticate. An unsuccessful result is not an
// error; Error explains the refusal.
type AuthResult struct {
	Success   bool           `json:"success"`
	ExpiresAt *time.Time     `json:"expiresAt,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Status is a provider's health report.
type Status struct {
	ID            string           `json:"id"`
	Healthy       bool             `json:"healthy"`
	Authenticated bool             `json:"authenticated"`
	Metrics       metrics.Snapshot `json:"metrics"`
}

// Provider is an execution unit bound to one backing tool.
type Provider interface {
	ID() string
	Name() string
	Capabilities() Capabilities

	// Initialize prepares the provider, verifying that its backing tool is
	// reachable.
	Initialize(ctx context.Context, cfg *config.ProviderConfig) error

	// Authenticate checks the credentials. A refusal is reported through
	// AuthResult.Success; errors are reserved for failures to check.
	Authenticate(ctx context.Context, creds config.Credentials) (*AuthResult, error)

	// Execute runs one request to completion.
	Execute(ctx context.Context, req *message.ExecutionRequest) (*message.ExecutionResult, error)

	// ExecuteStream runs one request and yields a result per update. Each
	// result carries the full content produced so far, not a delta.
	ExecuteStream(ctx context.Context, req *message.ExecutionRequest) iter.Seq2[*message.ExecutionResult, error]

	IsHealthy(ctx context.Context) bool
	Status(ctx context.Context) Status

	// Dispose terminates in-flight work. Later calls fail.
	Dispose(ctx context.Context) error
}

// Factory creates providers for the ids it supports.
type Factory interface {
	Create(cfg *config.ProviderConfig) (Provider, error)
	Supports(id string) bool
	Capabilities(id string) (Capabilities, error)
}
