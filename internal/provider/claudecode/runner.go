package claudecode

import (
	"context"
	"iter"

	"github.com/wagiedev/claudify/internal/config"
	"github.com/wagiedev/claudify/internal/subprocess"
)

// ProcessRunner is the subset of *subprocess.Manager the provider uses.
type ProcessRunner interface {
	Execute(ctx context.Context, opts *config.Options, input string) (*subprocess.Result, error)
	ExecuteStream(ctx context.Context, opts *config.Options, input string) iter.Seq2[string, error]
	ExecuteWithContinuity(ctx context.Context, opts *config.Options, input string) (*subprocess.Result, error)
	ResumeLastSession(ctx context.Context, opts *config.Options) (*subprocess.Result, error)
	IsAvailable(ctx context.Context) bool
}

var _ ProcessRunner = (*subprocess.Manager)(nil)
