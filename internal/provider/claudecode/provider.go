// Package claudecode implements the provider backed by the claude CLI.
//
// Each request spawns one CLI process through a subprocess.Manager. The
// conversation is reduced to its latest user message, the CLI output is
// normalized by the response parser, and every failure is returned as an
// *errors.ExecutionError wrapping exactly one categorized domain error.
//
// Mock mode answers with a canned echo instead of spawning the CLI. It is
// enabled by WithMock, by "mock: true" in the provider metadata, or by
// CLAUDE_CODE_MOCK=true or CLAUDE_CODE_SESSION=true in the environment.
package claudecode

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/wagiedev/claudify/internal/config"
	"github.com/wagiedev/claudify/internal/errors"
	"github.com/wagiedev/claudify/internal/format"
	"github.com/wagiedev/claudify/internal/message"
	"github.com/wagiedev/claudify/internal/metrics"
	"github.com/wagiedev/claudify/internal/models"
	"github.com/wagiedev/claudify/internal/parse"
	"github.com/wagiedev/claudify/internal/provider"
	"github.com/wagiedev/claudify/internal/subprocess"
)

const (
	// DefaultName is used when the provider config has no name.
	DefaultName = "Claude Code"

	// MockEnv and SessionEnv enable mock mode when set to "true".
	MockEnv    = "CLAUDE_CODE_MOCK"
	SessionEnv = "CLAUDE_CODE_SESSION"

	mockModel = "mock-mode"

	loginHint = `Claude CLI not authenticated. Run "claude auth login"`
)

type state int

const (
	stateUninitialized state = iota
	stateInitialized
	stateDisposed
)

// Provider runs requests through the claude CLI. It is safe for concurrent
// use; concurrent requests run independent subprocesses.
type Provider struct {
	id       string
	name     string
	log      *slog.Logger
	runner   ProcessRunner
	parser   *parse.Parser
	tracker  *metrics.Tracker
	settings config.ClaudeCodeSettings
	timeout  time.Duration

	mock      bool
	observer  metrics.Observer
	extractor parse.MetadataExtractor

	mu            sync.Mutex
	state         state
	authenticated bool
	inflight      map[uint64]context.CancelFunc
	nextID        uint64
}

var _ provider.Provider = (*Provider)(nil)

// New creates a provider for cfg. Provider-specific settings are decoded
// from cfg.Metadata.
func New(cfg *config.ProviderConfig, opts ...Option) (*Provider, error) {
	if cfg == nil {
		cfg = &config.ProviderConfig{ID: ProviderID}
	}

	settings, err := config.DecodeClaudeCodeSettings(cfg.Metadata)
	if err != nil {
		return nil, &errors.ConfigurationError{ProviderID: cfg.ID, Message: "invalid metadata", Err: err}
	}

	p := &Provider{
		id:       cfg.ID,
		name:     cfg.Name,
		settings: settings,
		timeout:  cfg.Timeout,
		inflight: make(map[uint64]context.CancelFunc),
	}

	if p.id == "" {
		p.id = ProviderID
	}

	if p.name == "" {
		p.name = DefaultName
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.log == nil {
		p.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	p.log = p.log.With("component", "claude_code_provider", "provider", p.id)

	if p.runner == nil {
		p.runner = subprocess.NewManager(&subprocess.Config{
			CliPath:        settings.CliPath,
			Logger:         p.log,
			DefaultTimeout: cfg.Timeout,
			KillGrace:      settings.KillGrace,
		})
	}

	p.parser = parse.NewParser(p.log, p.extractor)
	p.tracker = metrics.NewTracker(p.id, p.observer)

	return p, nil
}

// ID implements provider.Provider.
func (p *Provider) ID() string { return p.id }

// Name implements provider.Provider.
func (p *Provider) Name() string { return p.name }

// Capabilities implements provider.Provider.
func (p *Provider) Capabilities() provider.Capabilities { return capabilities() }

// MockMode reports whether requests are answered without the CLI.
func (p *Provider) MockMode() bool {
	return p.mock || p.settings.Mock || os.Getenv(MockEnv) == "true" || os.Getenv(SessionEnv) == "true"
}

// Initialize verifies that the CLI is available. The check is skipped in
// mock mode.
func (p *Provider) Initialize(ctx context.Context, cfg *config.ProviderConfig) error {
	if cfg != nil && cfg.ID != "" && cfg.ID != p.id {
		return &errors.ConfigurationError{
			ProviderID: p.id,
			Message:    fmt.Sprintf("config is for provider %s", cfg.ID),
		}
	}

	if p.isDisposed() {
		return errors.ErrProviderDisposed
	}

	if p.MockMode() {
		p.log.Info("Mock mode enabled; skipping CLI check")
	} else if !p.runner.IsAvailable(ctx) {
		return &errors.ExecutionError{
			ProviderID: p.id,
			Message:    "claude CLI not found; install it and log in with the claude CLI",
			Err:        &errors.NotFoundError{},
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == stateDisposed {
		return errors.ErrProviderDisposed
	}

	p.state = stateInitialized

	return nil
}

// Authenticate accepts only credentials of type none, which delegate to the
// CLI's own login; they succeed when the CLI is healthy.
func (p *Provider) Authenticate(ctx context.Context, creds config.Credentials) (*provider.AuthResult, error) {
	if p.isDisposed() {
		return nil, errors.ErrProviderDisposed
	}

	if creds.Type != config.AuthNone {
		p.log.Debug("Rejecting credentials", "credentials", creds.Masked())

		return &provider.AuthResult{Success: false, Error: "Claude Code only supports CLI authentication"}, nil
	}

	if !p.IsHealthy(ctx) {
		return &provider.AuthResult{Success: false, Error: loginHint}, nil
	}

	p.mu.Lock()
	p.authenticated = true
	p.mu.Unlock()

	return &provider.AuthResult{Success: true}, nil
}

// Execute runs req through the CLI and returns the parsed answer.
func (p *Provider) Execute(ctx context.Context, req *message.ExecutionRequest) (*message.ExecutionResult, error) {
	if req == nil {
		req = &message.ExecutionRequest{}
	}

	ctx, release, err := p.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	done := p.tracker.Begin()

	result, err := p.execute(ctx, req)
	done(err == nil)

	if err != nil {
		return nil, p.wrap(ctx, req, err)
	}

	return result, nil
}

func (p *Provider) execute(ctx context.Context, req *message.ExecutionRequest) (*message.ExecutionResult, error) {
	start := time.Now()

	p.validate(req)

	if p.MockMode() {
		return p.mockResult(req, start), nil
	}

	opts := req.Options
	input := p.input(req)
	popts := p.processOptions(opts, false)

	var (
		res *subprocess.Result
		err error
	)

	switch {
	case opts.ResumeLastSession:
		res, err = p.runner.ResumeLastSession(ctx, popts)
	case opts.ContinueSession:
		res, err = p.runner.ExecuteWithContinuity(ctx, popts, input)
	default:
		res, err = p.runner.Execute(ctx, popts, input)
	}

	if err != nil {
		return nil, err
	}

	if !res.Success {
		return nil, &errors.ExecutionError{
			ProviderID: p.id,
			Message:    "claude code execution failed",
			Stderr:     res.Stderr,
			Err: &errors.ProcessError{
				ExitCode: res.ExitCode,
				Stderr:   res.Stderr,
				Err:      fmt.Errorf("exit code %d, signal %q", res.ExitCode, res.Signal),
			},
		}
	}

	resp := p.parser.Parse(res.Stdout)

	if resp.IsError {
		return nil, &errors.ExecutionError{
			ProviderID: p.id,
			Message:    "claude reported an error",
			Stderr:     res.Stderr,
			Err:        &errors.ProcessError{ExitCode: res.ExitCode, Stderr: resp.Content},
		}
	}

	if resp.Content == "" {
		return nil, &errors.InvalidResponseError{Response: res.Stdout}
	}

	for _, verr := range parse.Validate(resp) {
		p.log.Warn("Response failed validation", "error", verr)
	}

	return p.result(resp.Content, opts, resp.Metadata, start), nil
}

// ExecuteStream runs req and yields a result each time the CLI writes
// output. Every result holds the whole answer so far.
func (p *Provider) ExecuteStream(ctx context.Context, req *message.ExecutionRequest) iter.Seq2[*message.ExecutionResult, error] {
	if req == nil {
		req = &message.ExecutionRequest{}
	}

	return func(yield func(*message.ExecutionResult, error) bool) {
		ctx, release, err := p.begin(ctx)
		if err != nil {
			yield(nil, err)

			return
		}
		defer release()

		done := p.tracker.Begin()
		start := time.Now()

		p.validate(req)

		if p.MockMode() {
			done(true)
			yield(p.mockResult(req, start), nil)

			return
		}

		opts := req.Options

		input := p.input(req)
		if opts.ResumeLastSession {
			input = ""
		}

		var content strings.Builder

		for chunk, err := range p.runner.ExecuteStream(ctx, p.processOptions(opts, true), input) {
			if err != nil {
				done(false)
				yield(nil, p.wrap(ctx, req, err))

				return
			}

			content.WriteString(chunk)

			if !yield(p.result(content.String(), opts, parse.Metadata{}, start), nil) {
				done(true)

				return
			}
		}

		if strings.TrimSpace(content.String()) == "" {
			done(false)
			yield(nil, p.wrap(ctx, req, &errors.InvalidResponseError{Response: content.String()}))

			return
		}

		done(true)
	}
}

// IsHealthy reports whether the CLI answers its version probe. It is always
// true in mock mode and false after Dispose.
func (p *Provider) IsHealthy(ctx context.Context) bool {
	if p.isDisposed() {
		return false
	}

	if p.MockMode() {
		return true
	}

	return p.runner.IsAvailable(ctx)
}

// Status implements provider.Provider.
func (p *Provider) Status(ctx context.Context) provider.Status {
	healthy := p.IsHealthy(ctx)

	p.mu.Lock()
	authenticated := p.authenticated
	p.mu.Unlock()

	return provider.Status{
		ID:            p.id,
		Healthy:       healthy,
		Authenticated: authenticated,
		Metrics:       p.tracker.Snapshot(),
	}
}

// Dispose cancels every in-flight request, terminating its subprocess. It is
// idempotent.
func (p *Provider) Dispose(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == stateDisposed {
		return nil
	}

	p.state = stateDisposed
	p.authenticated = false

	for id, cancel := range p.inflight {
		cancel()
		delete(p.inflight, id)
	}

	p.log.Debug("Provider disposed")

	return nil
}

func (p *Provider) isDisposed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state == stateDisposed
}

// begin checks the lifecycle state and registers a cancellable context for
// one request. The returned release must be called when the request ends.
func (p *Provider) begin(ctx context.Context) (context.Context, func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case stateDisposed:
		return nil, nil, errors.ErrProviderDisposed
	case stateUninitialized:
		return nil, nil, errors.ErrProviderNotInitialized
	}

	ctx, cancel := context.WithCancel(ctx)
	id := p.nextID
	p.nextID++
	p.inflight[id] = cancel

	return ctx, func() {
		p.mu.Lock()
		delete(p.inflight, id)
		p.mu.Unlock()

		cancel()
	}, nil
}

// wrap converts any failure into an *errors.ExecutionError holding one
// categorized cause.
func (p *Provider) wrap(ctx context.Context, req *message.ExecutionRequest, err error) error {
	if ee, ok := stderrors.AsType[*errors.ExecutionError](err); ok {
		ee.Err = p.categorize(req, ee.Err)

		return ee
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return &errors.ExecutionError{ProviderID: p.id, Message: "execution cancelled", Err: ctxErr}
	}

	return &errors.ExecutionError{
		ProviderID: p.id,
		Message:    "claude code execution failed",
		Err:        p.categorize(req, err),
	}
}

func (p *Provider) categorize(req *message.ExecutionRequest, err error) error {
	opts := req.Options

	cause := errors.Categorize(err, errors.Context{
		ModelID:       p.model(opts),
		WorkspacePath: opts.WorkspacePath,
		Timeout:       p.effectiveTimeout(opts),
	})

	if _, ok := stderrors.AsType[errors.DomainError](cause); !ok {
		cause = &errors.ProcessError{ExitCode: -1, Err: cause}
	}

	if mna, ok := stderrors.AsType[*errors.ModelNotAvailableError](cause); ok && len(mna.Available) == 0 {
		mna.Available = models.Aliases()
	}

	return cause
}

func (p *Provider) validate(req *message.ExecutionRequest) {
	for _, err := range format.Validate(req.Messages) {
		p.log.Warn("Request failed validation", "error", err)
	}
}

func (p *Provider) input(req *message.ExecutionRequest) string {
	return format.Format(req.Messages, format.Context{
		SystemPrompt: req.Options.SystemPrompt,
		Task:         req.Options.Task,
		Continuity:   req.Options.Continuity(),
	})
}

func (p *Provider) model(opts message.ExecutionOptions) string {
	if opts.ModelID != "" {
		return opts.ModelID
	}

	return p.settings.DefaultModel
}

func (p *Provider) effectiveTimeout(opts message.ExecutionOptions) time.Duration {
	if opts.Timeout > 0 {
		return opts.Timeout
	}

	if p.timeout > 0 {
		return p.timeout
	}

	return config.DefaultTimeout
}

func (p *Provider) processOptions(opts message.ExecutionOptions, stream bool) *config.Options {
	return &config.Options{
		Logger:            p.log,
		ModelID:           p.model(opts),
		WorkspacePath:     opts.WorkspacePath,
		Timeout:           p.effectiveTimeout(opts),
		ContinueSession:   opts.ContinueSession,
		SessionID:         string(opts.SessionID),
		ResumeLastSession: opts.ResumeLastSession,
		JSONOutput:        !stream && (opts.JSONOutput || p.settings.JSONOutput),
		Env:               p.settings.Env,
		Stderr: func(line string) {
			p.log.Debug("claude stderr", "line", line)
		},
	}
}

// result builds a successful result. The request's session id is carried
// over; otherwise the CLI-reported one is used, else a fresh one.
func (p *Provider) result(
	content string,
	opts message.ExecutionOptions,
	meta parse.Metadata,
	start time.Time,
) *message.ExecutionResult {
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = message.SessionID(meta.SessionID)
	}

	if sessionID == "" {
		sessionID = message.NewSessionID()
	}

	md := message.ResultMetadata{
		DurationMs: time.Since(start).Milliseconds(),
		CostUSD:    meta.CostUSD,
		Turns:      1,
		Model:      meta.Model,
		SessionID:  sessionID,
	}

	if meta.Turns != nil {
		md.Turns = *meta.Turns
	}

	if md.Model == "" {
		md.Model = p.model(opts)
	}

	if meta.PromptTokens != nil && meta.CompletionTokens != nil {
		md.Usage = &message.Usage{
			PromptTokens:     *meta.PromptTokens,
			CompletionTokens: *meta.CompletionTokens,
			TotalTokens:      *meta.PromptTokens + *meta.CompletionTokens,
		}
	}

	return &message.ExecutionResult{
		Success:  true,
		Messages: message.Messages{message.NewAssistant(content, sessionID)},
		Metadata: md,
	}
}

func (p *Provider) mockResult(req *message.ExecutionRequest, start time.Time) *message.ExecutionResult {
	said := "nothing"
	if last, ok := req.Messages.LastOfType(message.TypeUser); ok {
		said = message.Text(last)
	}

	opts := req.Options

	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = message.NewSessionID()
	}

	model := opts.ModelID
	if model == "" {
		model = mockModel
	}

	content := `I'm the Claude Code SDK running in mock mode! You said: "` + said + `"`

	return &message.ExecutionResult{
		Success:  true,
		Messages: message.Messages{message.NewAssistant(content, sessionID)},
		Metadata: message.ResultMetadata{
			DurationMs: time.Since(start).Milliseconds(),
			Turns:      1,
			Model:      model,
			SessionID:  sessionID,
		},
	}
}
