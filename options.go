package claudify

import (
	"log/slog"
	"maps"
	"time"

	"github.com/wagiedev/claudify/internal/config"
	"github.com/wagiedev/claudify/internal/message"
	"github.com/wagiedev/claudify/internal/provider/claudecode"
)

// Options collects the settings accepted by Query, QueryStream,
// NewClaudeCodeProvider and NewManager. Provider-level fields are ignored by
// NewRequest and request-level fields are ignored by NewManager.
type Options struct {
	Logger *slog.Logger

	// Provider level.
	CliPath      string
	DefaultModel string
	Mock         bool
	Env          map[string]string
	KillGrace    time.Duration
	Credentials  *Credentials
	Observer     MetricsObserver

	// Request level.
	Model             string
	Workspace         string
	Timeout           time.Duration
	SessionID         SessionID
	ContinueSession   bool
	ResumeLastSession bool
	SystemPrompt      string
	Task              string
	JSONOutput        bool
}

// Option configures Options using the functional options pattern.
type Option func(*Options)

// applyOptions applies functional options to a fresh Options struct.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// ===== Provider Configuration =====

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithCliPath sets the explicit path to the claude CLI binary.
// If not set, the CLI is searched in PATH and common install locations.
func WithCliPath(path string) Option {
	return func(o *Options) {
		o.CliPath = path
	}
}

// WithDefaultModel sets the model used when a request names none.
func WithDefaultModel(model string) Option {
	return func(o *Options) {
		o.DefaultModel = model
	}
}

// WithMock answers every request with a canned reply instead of running the
// CLI.
func WithMock(enabled bool) Option {
	return func(o *Options) {
		o.Mock = enabled
	}
}

// WithEnv adds environment variables to every CLI process.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string, len(env))
		}

		maps.Copy(o.Env, env)
	}
}

// WithKillGrace sets how long a terminated CLI may take to exit before it is
// killed.
func WithKillGrace(d time.Duration) Option {
	return func(o *Options) {
		o.KillGrace = d
	}
}

// WithCredentials sets the credentials passed to Authenticate.
func WithCredentials(creds Credentials) Option {
	return func(o *Options) {
		o.Credentials = &creds
	}
}

// WithObserver reports request metrics to o, e.g. a Prometheus exporter.
func WithObserver(observer MetricsObserver) Option {
	return func(o *Options) {
		o.Observer = observer
	}
}

// ===== Request Configuration =====

// WithModel specifies which Claude model to use ("sonnet", "opus" or a full id).
func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// WithWorkspace sets the working directory for the CLI process.
func WithWorkspace(path string) Option {
	return func(o *Options) {
		o.Workspace = path
	}
}

// WithTimeout bounds a request's run time.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithSessionID resumes the given session.
func WithSessionID(id SessionID) Option {
	return func(o *Options) {
		o.SessionID = id
	}
}

// WithContinueSession continues the most recent conversation in the workspace.
func WithContinueSession() Option {
	return func(o *Options) {
		o.ContinueSession = true
	}
}

// WithResumeLastSession resumes the most recent session, failing with
// SessionNotFoundError when the workspace has none.
func WithResumeLastSession() Option {
	return func(o *Options) {
		o.ResumeLastSession = true
	}
}

// WithSystemPrompt prepends instructions to a fresh conversation.
func WithSystemPrompt(prompt string) Option {
	return func(o *Options) {
		o.SystemPrompt = prompt
	}
}

// WithTask describes the overall task to a fresh conversation.
func WithTask(task string) Option {
	return func(o *Options) {
		o.Task = task
	}
}

// WithJSONOutput asks the CLI for JSON output, which carries cost, usage and
// session metadata.
func WithJSONOutput() Option {
	return func(o *Options) {
		o.JSONOutput = true
	}
}

func (o *Options) logger() *slog.Logger {
	if o.Logger == nil {
		return NopLogger()
	}

	return o.Logger
}

func (o *Options) executionOptions() message.ExecutionOptions {
	return message.ExecutionOptions{
		ModelID:           o.Model,
		WorkspacePath:     o.Workspace,
		Timeout:           o.Timeout,
		ContinueSession:   o.ContinueSession,
		SessionID:         o.SessionID,
		ResumeLastSession: o.ResumeLastSession,
		SystemPrompt:      o.SystemPrompt,
		Task:              o.Task,
		JSONOutput:        o.JSONOutput,
	}
}

// providerConfig renders the provider-level options as a Claude Code
// provider configuration.
func (o *Options) providerConfig() *config.ProviderConfig {
	metadata := make(map[string]any, 5)

	if o.CliPath != "" {
		metadata["cli_path"] = o.CliPath
	}

	if o.DefaultModel != "" {
		metadata["default_model"] = o.DefaultModel
	}

	if len(o.Env) > 0 {
		metadata["env"] = maps.Clone(o.Env)
	}

	if o.KillGrace > 0 {
		metadata["kill_grace"] = o.KillGrace
	}

	if o.Mock {
		metadata["mock"] = true
	}

	return &config.ProviderConfig{
		ID:       claudecode.ProviderID,
		Name:     claudecode.DefaultName,
		Auth:     o.Credentials,
		Metadata: metadata,
	}
}

func (o *Options) providerOptions() []claudecode.Option {
	popts := []claudecode.Option{claudecode.WithLogger(o.logger())}

	if o.Observer != nil {
		popts = append(popts, claudecode.WithObserver(o.Observer))
	}

	if o.Mock {
		popts = append(popts, claudecode.WithMock(true))
	}

	return popts
}

// ClaudeCodeConfig returns a Claude Code provider configuration built from
// the provider-level options, ready for Manager.AddProvider.
func ClaudeCodeConfig(opts ...Option) *ProviderConfig {
	return applyOptions(opts).providerConfig()
}
