package claudecode

import (
	"log/slog"

	"github.com/wagiedev/claudify/internal/metrics"
	"github.com/wagiedev/claudify/internal/parse"
)

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the logger. The default discards output.
func WithLogger(log *slog.Logger) Option {
	return func(p *Provider) {
		p.log = log
	}
}

// WithRunner replaces the subprocess manager, mainly for tests.
func WithRunner(r ProcessRunner) Option {
	return func(p *Provider) {
		p.runner = r
	}
}

// WithMock forces mock mode: requests are answered with a canned echo and
// no subprocess is started.
func WithMock(enabled bool) Option {
	return func(p *Provider) {
		p.mock = enabled
	}
}

// WithObserver receives request metrics in addition to the provider's own
// totals.
func WithObserver(o metrics.Observer) Option {
	return func(p *Provider) {
		p.observer = o
	}
}

// WithMetadataExtractor replaces the response metadata strategy.
func WithMetadataExtractor(e parse.MetadataExtractor) Option {
	return func(p *Provider) {
		p.extractor = e
	}
}
