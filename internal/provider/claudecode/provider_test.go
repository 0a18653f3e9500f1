package claudecode

import (
	"context"
	stderrors "errors"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wagiedev/claudify/internal/config"
	"github.com/wagiedev/claudify/internal/errors"
	"github.com/wagiedev/claudify/internal/message"
	"github.com/wagiedev/claudify/internal/models"
	"github.com/wagiedev/claudify/internal/subprocess"
)

type runnerCall struct {
	method string
	opts   config.Options
	input  string
}

// fakeRunner records calls and replays canned process outcomes.
type fakeRunner struct {
	mu    sync.Mutex
	calls []runnerCall

	unavailable bool
	result      *subprocess.Result
	err         error
	chunks      []string
	streamErr   error

	// block makes Execute wait for cancellation; entered is closed once it
	// does.
	block   bool
	entered chan struct{}
}

var _ ProcessRunner = (*fakeRunner)(nil)

func (f *fakeRunner) record(method string, opts *config.Options, input string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, runnerCall{method: method, opts: *opts, input: input})
}

func (f *fakeRunner) lastCall() runnerCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[len(f.calls)-1]
}

func (f *fakeRunner) run(ctx context.Context) (*subprocess.Result, error) {
	if f.block {
		close(f.entered)
		<-ctx.Done()

		return nil, ctx.Err()
	}

	if f.err != nil {
		return nil, f.err
	}

	return f.result, nil
}

func (f *fakeRunner) Execute(ctx context.Context, opts *config.Options, input string) (*subprocess.Result, error) {
	f.record("execute", opts, input)

	return f.run(ctx)
}

func (f *fakeRunner) ExecuteWithContinuity(ctx context.Context, opts *config.Options, input string) (*subprocess.Result, error) {
	f.record("continuity", opts, input)

	return f.run(ctx)
}

func (f *fakeRunner) ResumeLastSession(ctx context.Context, opts *config.Options) (*subprocess.Result, error) {
	f.record("resume", opts, "")

	return f.run(ctx)
}

func (f *fakeRunner) ExecuteStream(_ context.Context, opts *config.Options, input string) iter.Seq2[string, error] {
	f.record("stream", opts, input)

	return func(yield func(string, error) bool) {
		for _, c := range f.chunks {
			if !yield(c, nil) {
				return
			}
		}

		if f.streamErr != nil {
			yield("", f.streamErr)
		}
	}
}

func (f *fakeRunner) IsAvailable(context.Context) bool { return !f.unavailable }

func succeeded(stdout string) *subprocess.Result {
	return &subprocess.Result{Success: true, Stdout: stdout}
}

func newProvider(t *testing.T, runner *fakeRunner, metadata map[string]any) *Provider {
	t.Helper()

	p, err := New(&config.ProviderConfig{ID: ProviderID, Metadata: metadata}, WithRunner(runner))
	require.NoError(t, err)
	require.NoError(t, p.Initialize(context.Background(), nil))

	return p
}

func userRequest(text string, opts message.ExecutionOptions) *message.ExecutionRequest {
	return &message.ExecutionRequest{
		Messages: message.Messages{message.NewUser(text, opts.SessionID)},
		Options:  opts,
	}
}

func TestExecute_MockMode(t *testing.T) {
	t.Setenv(MockEnv, "true")

	p, err := New(&config.ProviderConfig{ID: ProviderID}, WithRunner(&fakeRunner{unavailable: true}))
	require.NoError(t, err)
	require.NoError(t, p.Initialize(context.Background(), nil))

	res, err := p.Execute(context.Background(), userRequest("hello", message.ExecutionOptions{ModelID: "sonnet"}))
	require.NoError(t, err)

	require.True(t, res.Success)
	require.Len(t, res.Messages, 1)
	require.Equal(t, `I'm the Claude Code SDK running in mock mode! You said: "hello"`, res.Content())
	require.Equal(t, "sonnet", res.Metadata.Model)
	require.True(t, p.IsHealthy(context.Background()))
}

func TestExecute_MockModeWithNilMessage(t *testing.T) {
	p, err := New(nil, WithMock(true))
	require.NoError(t, err)
	require.NoError(t, p.Initialize(context.Background(), nil))

	req := userRequest("hello", message.ExecutionOptions{})
	req.Messages = append(req.Messages, nil)

	res, err := p.Execute(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, `I'm the Claude Code SDK running in mock mode! You said: "hello"`, res.Content())
}

func TestMockMode_Sources(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) *Provider
	}{
		{"session env", func(t *testing.T) *Provider {
			t.Setenv(SessionEnv, "true")
			p, err := New(nil)
			require.NoError(t, err)

			return p
		}},
		{"metadata", func(t *testing.T) *Provider {
			p, err := New(&config.ProviderConfig{ID: ProviderID, Metadata: map[string]any{"mock": true}})
			require.NoError(t, err)

			return p
		}},
		{"option", func(t *testing.T) *Provider {
			p, err := New(nil, WithMock(true))
			require.NoError(t, err)

			return p
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, tt.setup(t).MockMode())
		})
	}
}

func TestLifecycle(t *testing.T) {
	p, err := New(nil, WithRunner(&fakeRunner{result: succeeded("hi")}))
	require.NoError(t, err)

	_, err = p.Execute(context.Background(), userRequest("x", message.ExecutionOptions{}))
	require.ErrorIs(t, err, errors.ErrProviderNotInitialized)

	require.NoError(t, p.Initialize(context.Background(), nil))

	_, err = p.Execute(context.Background(), userRequest("x", message.ExecutionOptions{}))
	require.NoError(t, err)

	require.NoError(t, p.Dispose(context.Background()))
	require.NoError(t, p.Dispose(context.Background()))

	_, err = p.Execute(context.Background(), userRequest("x", message.ExecutionOptions{}))
	require.ErrorIs(t, err, errors.ErrProviderDisposed)

	for _, err := range p.ExecuteStream(context.Background(), userRequest("x", message.ExecutionOptions{})) {
		require.ErrorIs(t, err, errors.ErrProviderDisposed)
	}

	require.ErrorIs(t, p.Initialize(context.Background(), nil), errors.ErrProviderDisposed)

	_, err = p.Authenticate(context.Background(), config.Credentials{Type: config.AuthNone})
	require.ErrorIs(t, err, errors.ErrProviderDisposed)
	require.False(t, p.IsHealthy(context.Background()))
}

func TestInitialize_CLIUnavailable(t *testing.T) {
	p, err := New(nil, WithRunner(&fakeRunner{unavailable: true}))
	require.NoError(t, err)

	err = p.Initialize(context.Background(), nil)

	var execErr *errors.ExecutionError
	require.ErrorAs(t, err, &execErr)

	var nf *errors.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestInitialize_ForeignConfig(t *testing.T) {
	p, err := New(nil, WithRunner(&fakeRunner{}))
	require.NoError(t, err)

	var cfgErr *errors.ConfigurationError
	require.ErrorAs(t, p.Initialize(context.Background(), &config.ProviderConfig{ID: "other"}), &cfgErr)
}

func TestNew_InvalidMetadata(t *testing.T) {
	_, err := New(&config.ProviderConfig{ID: ProviderID, Metadata: map[string]any{"kill_grace": "whenever"}})

	var cfgErr *errors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestAuthenticate(t *testing.T) {
	t.Run("cli login", func(t *testing.T) {
		p := newProvider(t, &fakeRunner{}, nil)

		res, err := p.Authenticate(context.Background(), config.Credentials{Type: config.AuthNone})
		require.NoError(t, err)
		require.True(t, res.Success)
		require.True(t, p.Status(context.Background()).Authenticated)
	})

	t.Run("cli unhealthy", func(t *testing.T) {
		runner := &fakeRunner{}
		p := newProvider(t, runner, nil)
		runner.unavailable = true

		res, err := p.Authenticate(context.Background(), config.Credentials{Type: config.AuthNone})
		require.NoError(t, err)
		require.False(t, res.Success)
		require.Contains(t, res.Error, "claude auth login")
	})

	t.Run("bearer token", func(t *testing.T) {
		p := newProvider(t, &fakeRunner{}, nil)

		res, err := p.Authenticate(context.Background(), config.Credentials{Type: config.AuthBearer, Token: "secret-token"})
		require.NoError(t, err)
		require.False(t, res.Success)
		require.False(t, p.Status(context.Background()).Authenticated)
	})
}

func TestExecute_Success(t *testing.T) {
	runner := &fakeRunner{result: succeeded("The answer is 42.\n")}
	p := newProvider(t, runner, map[string]any{"default_model": "opus", "env": map[string]any{"A": "1"}})

	res, err := p.Execute(context.Background(), userRequest("What is the answer?", message.ExecutionOptions{}))
	require.NoError(t, err)

	require.True(t, res.Success)
	require.Equal(t, "The answer is 42.", res.Content())
	require.Equal(t, "opus", res.Metadata.Model)
	require.Equal(t, 1, res.Metadata.Turns)
	require.NotEmpty(t, res.Metadata.SessionID)

	call := runner.lastCall()
	require.Equal(t, "execute", call.method)
	require.Equal(t, "What is the answer?", call.input)
	require.Equal(t, "opus", call.opts.ModelID)
	require.Equal(t, config.DefaultTimeout, call.opts.Timeout)
	require.Equal(t, map[string]string{"A": "1"}, call.opts.Env)
}

func TestExecute_PreambleOnlyForFreshSessions(t *testing.T) {
	runner := &fakeRunner{result: succeeded("done")}
	p := newProvider(t, runner, nil)

	_, err := p.Execute(context.Background(), userRequest("fix it", message.ExecutionOptions{Task: "Fix the bug"}))
	require.NoError(t, err)
	require.Equal(t, "Task: Fix the bug\n\nfix it", runner.lastCall().input)

	_, err = p.Execute(context.Background(), userRequest("fix it", message.ExecutionOptions{Task: "Fix the bug", ContinueSession: true}))
	require.NoError(t, err)
	require.Equal(t, "fix it", runner.lastCall().input)
}

func TestExecute_ContinuationStrategy(t *testing.T) {
	tests := []struct {
		name   string
		opts   message.ExecutionOptions
		method string
	}{
		{"fresh", message.ExecutionOptions{}, "execute"},
		{"continue", message.ExecutionOptions{ContinueSession: true, SessionID: "abc"}, "continuity"},
		{"resume last", message.ExecutionOptions{ResumeLastSession: true, ContinueSession: true}, "resume"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{result: succeeded("ok")}
			p := newProvider(t, runner, nil)

			_, err := p.Execute(context.Background(), userRequest("go", tt.opts))
			require.NoError(t, err)

			call := runner.lastCall()
			require.Equal(t, tt.method, call.method)
			require.Equal(t, string(tt.opts.SessionID), call.opts.SessionID)
		})
	}
}

func TestExecute_SessionIDPropagates(t *testing.T) {
	p := newProvider(t, &fakeRunner{result: succeeded("ok")}, nil)

	for range 2 {
		res, err := p.Execute(context.Background(), userRequest("go", message.ExecutionOptions{ContinueSession: true, SessionID: "abc"}))
		require.NoError(t, err)
		require.Equal(t, message.SessionID("abc"), res.Metadata.SessionID)
		require.Equal(t, message.SessionID("abc"), res.Messages.Last().Meta().SessionID)
	}
}

func TestExecute_JSONOutput(t *testing.T) {
	stdout := `{"type":"result","result":"Hi there","is_error":false,"num_turns":2,` +
		`"session_id":"cli-session","total_cost_usd":0.25,"usage":{"input_tokens":3,"output_tokens":4}}`
	runner := &fakeRunner{result: succeeded(stdout)}
	p := newProvider(t, runner, map[string]any{"json_output": true})

	res, err := p.Execute(context.Background(), userRequest("hi", message.ExecutionOptions{}))
	require.NoError(t, err)

	require.True(t, runner.lastCall().opts.JSONOutput)
	require.Equal(t, "Hi there", res.Content())
	require.Equal(t, message.SessionID("cli-session"), res.Metadata.SessionID)
	require.Equal(t, 2, res.Metadata.Turns)
	require.NotNil(t, res.Metadata.CostUSD)
	require.InDelta(t, 0.25, *res.Metadata.CostUSD, 1e-9)
	require.Equal(t, &message.Usage{PromptTokens: 3, CompletionTokens: 4, TotalTokens: 7}, res.Metadata.Usage)
}

func TestExecute_Failures(t *testing.T) {
	tests := []struct {
		name   string
		runner *fakeRunner
		check  func(t *testing.T, err error)
	}{
		{
			name:   "non-zero exit",
			runner: &fakeRunner{result: &subprocess.Result{ExitCode: 1, Stderr: "boom"}},
			check: func(t *testing.T, err error) {
				var execErr *errors.ExecutionError
				require.ErrorAs(t, err, &execErr)
				require.Equal(t, "boom", execErr.Stderr)

				var procErr *errors.ProcessError
				require.ErrorAs(t, err, &procErr)
				require.Equal(t, 1, procErr.ExitCode)
			},
		},
		{
			name:   "invalid model",
			runner: &fakeRunner{result: &subprocess.Result{ExitCode: 1, Stderr: "Error: invalid model: gpt-9"}},
			check: func(t *testing.T, err error) {
				var mna *errors.ModelNotAvailableError
				require.ErrorAs(t, err, &mna)
				require.Equal(t, "gpt-9", mna.Model)
				require.Equal(t, models.Aliases(), mna.Available)
			},
		},
		{
			name:   "cli reported error",
			runner: &fakeRunner{result: succeeded(`{"type":"result","result":"session not found","is_error":true}`)},
			check: func(t *testing.T, err error) {
				var sce *errors.SessionContinuityError
				require.ErrorAs(t, err, &sce)
			},
		},
		{
			name:   "empty output",
			runner: &fakeRunner{result: succeeded("  \n")},
			check: func(t *testing.T, err error) {
				var ire *errors.InvalidResponseError
				require.ErrorAs(t, err, &ire)
			},
		},
		{
			name:   "timeout",
			runner: &fakeRunner{err: &errors.TimeoutError{Timeout: time.Second}},
			check: func(t *testing.T, err error) {
				var te *errors.TimeoutError
				require.ErrorAs(t, err, &te)
			},
		},
		{
			name:   "uncategorized",
			runner: &fakeRunner{err: stderrors.New("something odd")},
			check: func(t *testing.T, err error) {
				var procErr *errors.ProcessError
				require.ErrorAs(t, err, &procErr)
				require.Equal(t, -1, procErr.ExitCode)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProvider(t, tt.runner, nil)

			_, err := p.Execute(context.Background(), userRequest("go", message.ExecutionOptions{ModelID: "gpt-9"}))

			var execErr *errors.ExecutionError
			require.ErrorAs(t, err, &execErr)
			require.Equal(t, ProviderID, execErr.ProviderID)

			_, isDomain := stderrors.AsType[errors.DomainError](err)
			require.True(t, isDomain, "cause must be a domain error: %v", err)

			tt.check(t, err)
		})
	}
}

func TestExecute_DisposeCancelsInFlight(t *testing.T) {
	runner := &fakeRunner{block: true, entered: make(chan struct{})}
	p := newProvider(t, runner, nil)

	errCh := make(chan error, 1)

	go func() {
		_, err := p.Execute(context.Background(), userRequest("go", message.ExecutionOptions{}))
		errCh <- err
	}()

	<-runner.entered
	require.NoError(t, p.Dispose(context.Background()))

	select {
	case err := <-errCh:
		var execErr *errors.ExecutionError
		require.ErrorAs(t, err, &execErr)
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Execute did not return after Dispose")
	}
}

func TestExecute_CallerCancellation(t *testing.T) {
	runner := &fakeRunner{block: true, entered: make(chan struct{})}
	p := newProvider(t, runner, nil)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		<-runner.entered
		cancel()
	}()

	_, err := p.Execute(ctx, userRequest("go", message.ExecutionOptions{}))
	require.ErrorIs(t, err, context.Canceled)
}

func TestExecuteStream_Cumulative(t *testing.T) {
	runner := &fakeRunner{chunks: []string{"Hel", "lo\n", "world"}}
	p := newProvider(t, runner, map[string]any{"json_output": true})

	var contents []string

	for res, err := range p.ExecuteStream(context.Background(), userRequest("hi", message.ExecutionOptions{SessionID: "s"})) {
		require.NoError(t, err)
		require.Equal(t, message.SessionID("s"), res.Metadata.SessionID)

		contents = append(contents, res.Content())
	}

	require.Equal(t, []string{"Hel", "Hello\n", "Hello\nworld"}, contents)
	require.False(t, runner.lastCall().opts.JSONOutput, "streams always use text output")
}

func TestExecuteStream_ErrorAfterChunks(t *testing.T) {
	runner := &fakeRunner{
		chunks:    []string{"partial"},
		streamErr: &errors.ProcessError{ExitCode: 2, Stderr: "crashed"},
	}
	p := newProvider(t, runner, nil)

	var (
		contents []string
		lastErr  error
	)

	for res, err := range p.ExecuteStream(context.Background(), userRequest("hi", message.ExecutionOptions{})) {
		if err != nil {
			lastErr = err

			continue
		}

		contents = append(contents, res.Content())
	}

	require.Equal(t, []string{"partial"}, contents)

	var execErr *errors.ExecutionError
	require.ErrorAs(t, lastErr, &execErr)

	snap := p.Status(context.Background()).Metrics
	require.Equal(t, int64(1), snap.FailedRequests)
}

func TestExecuteStream_EmptyOutputIsInvalidResponse(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
	}{
		{"no output", nil},
		{"whitespace only", []string{"\n", "  \n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProvider(t, &fakeRunner{chunks: tt.chunks}, nil)

			var errs []error

			for _, err := range p.ExecuteStream(context.Background(), userRequest("hi", message.ExecutionOptions{})) {
				if err != nil {
					errs = append(errs, err)
				}
			}

			require.Len(t, errs, 1)

			var execErr *errors.ExecutionError
			require.ErrorAs(t, errs[0], &execErr)

			var invalid *errors.InvalidResponseError
			require.ErrorAs(t, errs[0], &invalid)

			snap := p.Status(context.Background()).Metrics
			require.Equal(t, int64(1), snap.FailedRequests)
			require.Zero(t, snap.SuccessfulRequests)
		})
	}
}

func TestCLI_StreamTimeoutWithChildProcess(t *testing.T) {
	p := newCLIProvider(t, `if [ "$1" = "--version" ]; then exit 0; fi; printf 'partial\n'; sleep 6`)

	var contents []string

	start := time.Now()

	for res, err := range p.ExecuteStream(context.Background(), userRequest("go", message.ExecutionOptions{Timeout: 300 * time.Millisecond})) {
		require.NoError(t, err)

		contents = append(contents, res.Content())
	}

	require.Less(t, time.Since(start), 3*time.Second)
	require.Equal(t, []string{"partial\n"}, contents)
}

func TestExecuteStream_MockMode(t *testing.T) {
	p, err := New(nil, WithMock(true))
	require.NoError(t, err)
	require.NoError(t, p.Initialize(context.Background(), nil))

	var results int

	for res, err := range p.ExecuteStream(context.Background(), userRequest("yo", message.ExecutionOptions{})) {
		require.NoError(t, err)
		require.Contains(t, res.Content(), `You said: "yo"`)

		results++
	}

	require.Equal(t, 1, results)
}

func TestStatus_Metrics(t *testing.T) {
	runner := &fakeRunner{result: succeeded("ok")}
	p := newProvider(t, runner, nil)

	_, err := p.Execute(context.Background(), userRequest("a", message.ExecutionOptions{}))
	require.NoError(t, err)

	runner.result = &subprocess.Result{ExitCode: 1}

	_, err = p.Execute(context.Background(), userRequest("b", message.ExecutionOptions{}))
	require.Error(t, err)

	status := p.Status(context.Background())
	require.Equal(t, ProviderID, status.ID)
	require.True(t, status.Healthy)
	require.Equal(t, int64(2), status.Metrics.TotalRequests)
	require.Equal(t, int64(1), status.Metrics.SuccessfulRequests)
	require.Equal(t, int64(1), status.Metrics.FailedRequests)
}

func TestIsHealthy_Idempotent(t *testing.T) {
	p := newProvider(t, &fakeRunner{}, nil)

	first := p.IsHealthy(context.Background())
	for range 3 {
		require.Equal(t, first, p.IsHealthy(context.Background()))
	}
}

// fakeCLI writes a shell script standing in for the claude binary.
func fakeCLI(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "claude")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))

	t.Setenv("CLAUDIFY_SKIP_VERSION_CHECK", "1")

	return path
}

func newCLIProvider(t *testing.T, body string) *Provider {
	t.Helper()

	p, err := New(&config.ProviderConfig{
		ID:       ProviderID,
		Metadata: map[string]any{"cli_path": fakeCLI(t, body), "kill_grace": "100ms"},
	})
	require.NoError(t, err)
	require.NoError(t, p.Initialize(context.Background(), nil))

	return p
}

func TestCLI_RoundTrip(t *testing.T) {
	p := newCLIProvider(t, `cat`)

	res, err := p.Execute(context.Background(), userRequest("echo me back", message.ExecutionOptions{}))
	require.NoError(t, err)
	require.Equal(t, "echo me back", res.Content())
}

func TestCLI_ContinuationReferencesSession(t *testing.T) {
	p := newCLIProvider(t, `echo "$*"`)

	opts := message.ExecutionOptions{ContinueSession: true, SessionID: "abc"}

	var last string

	for range 2 {
		res, err := p.Execute(context.Background(), userRequest("again", opts))
		require.NoError(t, err)

		last = res.Content()
	}

	require.Contains(t, strings.Fields(last), "--continue")
	require.Contains(t, last, "--resume abc")
}

func TestCLI_NonZeroExitCarriesStderr(t *testing.T) {
	p := newCLIProvider(t, `if [ "$1" = "--version" ]; then exit 0; fi; echo "rate limited" >&2; exit 1`)

	_, err := p.Execute(context.Background(), userRequest("go", message.ExecutionOptions{}))

	var execErr *errors.ExecutionError
	require.ErrorAs(t, err, &execErr)
	require.Equal(t, "rate limited", execErr.Stderr)
}

func TestCLI_Timeout(t *testing.T) {
	p := newCLIProvider(t, `if [ "$1" = "--version" ]; then exit 0; fi; exec sleep 10`)

	start := time.Now()
	_, err := p.Execute(context.Background(), userRequest("go", message.ExecutionOptions{Timeout: 200 * time.Millisecond}))

	var te *errors.TimeoutError
	require.ErrorAs(t, err, &te)
	require.Equal(t, 200*time.Millisecond, te.Timeout)
	require.Less(t, time.Since(start), 3*time.Second)
}

func TestFactory(t *testing.T) {
	f := NewFactory(WithMock(true))

	require.True(t, f.Supports(ProviderID))
	require.False(t, f.Supports("openai"))

	caps, err := f.Capabilities(ProviderID)
	require.NoError(t, err)
	require.True(t, caps.Streaming)
	require.Contains(t, caps.Tools, "Bash")
	require.Equal(t, models.IDs(), caps.Models)
	require.Equal(t, []string{"none", "bearer"}, caps.Authentication)

	_, err = f.Capabilities("openai")
	require.Error(t, err)

	p, err := f.Create(&config.ProviderConfig{ID: ProviderID, Name: "Local"})
	require.NoError(t, err)
	require.Equal(t, "Local", p.Name())
	require.True(t, p.(*Provider).MockMode())
}
