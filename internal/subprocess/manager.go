package subprocess

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/claudify/internal/cli"
	"github.com/wagiedev/claudify/internal/config"
	"github.com/wagiedev/claudify/internal/errors"
)

const (
	// AvailabilityTimeout bounds the --version probe used by IsAvailable.
	AvailabilityTimeout = 5 * time.Second

	// SessionProbeTimeout bounds the probe used by HasExistingSessions.
	SessionProbeTimeout = 3 * time.Second

	// noSessionMarker is printed by the CLI when --continue has nothing to continue.
	noSessionMarker = "No session found"
)

// Result is the outcome of one completed CLI invocation.
type Result struct {
	// Success is true iff the process exited with code 0.
	Success  bool
	Stdout   string
	Stderr   string
	ExitCode int
	// Signal names the terminating signal, if the process was killed by one.
	Signal   string
	Duration time.Duration
}

// Config configures a Manager.
type Config struct {
	// CliPath is an explicit claude binary path. Empty means discover it.
	CliPath string

	// Logger receives debug output. If nil, logging is disabled.
	Logger *slog.Logger

	// DefaultTimeout applies when options carry no timeout.
	DefaultTimeout time.Duration

	// KillGrace is the delay between SIGTERM and SIGKILL for a timed-out
	// or cancelled process.
	KillGrace time.Duration

	// Discoverer overrides CLI discovery.
	Discoverer cli.Discoverer
}

// Manager spawns claude CLI processes. It is safe for concurrent use; every
// call runs its own independent subprocess.
type Manager struct {
	log            *slog.Logger
	discoverer     cli.Discoverer
	defaultTimeout time.Duration
	killGrace      time.Duration

	mu      sync.Mutex
	cliPath string
}

// NewManager creates a Manager from cfg. A nil cfg uses defaults.
func NewManager(cfg *Config) *Manager {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	log = log.With("component", "process_manager")

	discoverer := cfg.Discoverer
	if discoverer == nil {
		// The availability probe is the version check.
		discoverer = cli.NewDiscoverer(&cli.Config{
			CliPath:          cfg.CliPath,
			SkipVersionCheck: true,
			Logger:           log,
		})
	}

	m := &Manager{
		log:            log,
		discoverer:     discoverer,
		defaultTimeout: cfg.DefaultTimeout,
		killGrace:      cfg.KillGrace,
	}

	if m.defaultTimeout <= 0 {
		m.defaultTimeout = config.DefaultTimeout
	}

	if m.killGrace <= 0 {
		m.killGrace = config.DefaultKillGrace
	}

	return m
}

// resolve returns the binary to run. An explicit options path wins; otherwise
// the first successful discovery is cached for the Manager's lifetime.
func (m *Manager) resolve(ctx context.Context, opts *config.Options) (string, error) {
	if opts != nil && opts.CliPath != "" {
		return cli.NewDiscoverer(&cli.Config{
			CliPath:          opts.CliPath,
			SkipVersionCheck: true,
			Logger:           m.log,
		}).Discover(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cliPath != "" {
		return m.cliPath, nil
	}

	path, err := m.discoverer.Discover(ctx)
	if err != nil {
		return "", err
	}

	m.cliPath = path

	return path, nil
}

func (m *Manager) timeout(opts *config.Options) time.Duration {
	if opts.Timeout > 0 {
		return opts.Timeout
	}

	return m.defaultTimeout
}

func categorizeContext(opts *config.Options, timeout time.Duration) errors.Context {
	return errors.Context{
		ModelID:       opts.ModelID,
		WorkspacePath: opts.WorkspacePath,
		Timeout:       timeout,
	}
}

// command builds a process running in its own process group. When ctx ends
// the group receives SIGTERM, then SIGKILL grace later; the I/O pipes are
// closed after grace even if a descendant still holds them.
func (m *Manager) command(
	ctx context.Context,
	cliPath string,
	opts *config.Options,
	args []string,
	grace time.Duration,
) *exec.Cmd {
	//nolint:gosec // G204: Subprocess launching with dynamic args is expected for CLI invocation
	cmd := exec.CommandContext(ctx, cliPath, args...)
	cmd.Dir = opts.WorkspacePath
	cmd.Env = cli.BuildEnvironment(opts)
	setProcessGroup(cmd)
	cmd.Cancel = func() error {
		if err := signalGroup(cmd, syscall.SIGTERM); err != nil {
			return cmd.Process.Kill()
		}

		time.AfterFunc(grace, func() {
			_ = signalGroup(cmd, syscall.SIGKILL)
		})

		return nil
	}
	cmd.WaitDelay = grace

	return cmd
}

// Execute runs the CLI once, writing input to stdin, and returns its full
// output.
//
// A non-zero exit is reported through Result.Success, not as an error.
// Errors are returned when the process cannot be started (categorized), when
// the timeout expires (*errors.TimeoutError), or when ctx is cancelled
// (ctx.Err()).
func (m *Manager) Execute(ctx context.Context, opts *config.Options, input string) (*Result, error) {
	if opts == nil {
		opts = &config.Options{}
	}

	timeout := m.timeout(opts)
	cctx := categorizeContext(opts, timeout)

	cliPath, err := m.resolve(ctx, opts)
	if err != nil {
		return nil, errors.Categorize(err, cctx)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := cli.BuildArgs(opts)
	m.log.Debug("Executing claude", "args", args, "cwd", opts.WorkspacePath, "timeout", timeout)

	cmd := m.command(runCtx, cliPath, opts, args, m.killGrace)
	cmd.Stdin = strings.NewReader(input)

	var stdout bytes.Buffer

	stderr := newStderrBuffer(opts.Stderr)
	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	if runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			m.log.Debug("Execution cancelled by caller", "error", ctxErr)

			return nil, ctxErr
		}

		if stderrors.Is(runCtx.Err(), context.DeadlineExceeded) {
			m.log.Warn("Claude execution timed out", "timeout", timeout)

			return nil, &errors.TimeoutError{Timeout: timeout}
		}

		if cmd.ProcessState == nil {
			m.log.Error("Failed to start claude", "error", runErr)

			return nil, errors.Categorize(fmt.Errorf("start claude: %w", runErr), cctx)
		}
	}

	result := newResult(cmd.ProcessState, stdout.String(), cleanStderr(stderr.String()), duration)

	if !result.Success {
		m.log.Debug("Claude exited unsuccessfully", "exit_code", result.ExitCode, "signal", result.Signal)
	}

	return result, nil
}

// ExecuteStream runs the CLI and yields stdout as it is written, one element
// per read. Ranging again spawns a new process.
//
// When the timeout expires the process is terminated and the sequence ends
// without an error. A non-zero exit yields a categorized error after the last
// chunk. Caller cancellation yields ctx.Err(). Breaking out of the range
// terminates the process.
func (m *Manager) ExecuteStream(ctx context.Context, opts *config.Options, input string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if opts == nil {
			opts = &config.Options{}
		}

		timeout := m.timeout(opts)
		cctx := categorizeContext(opts, timeout)

		cliPath, err := m.resolve(ctx, opts)
		if err != nil {
			yield("", errors.Categorize(err, cctx))

			return
		}

		runCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		args := cli.BuildArgs(opts)
		m.log.Debug("Streaming claude", "args", args, "cwd", opts.WorkspacePath, "timeout", timeout)

		cmd := m.command(runCtx, cliPath, opts, args, m.killGrace)
		cmd.Stdin = strings.NewReader(input)

		stderr := newStderrBuffer(opts.Stderr)
		cmd.Stderr = stderr

		chunks := make(chan string)
		cmd.Stdout = &chunkWriter{ctx: runCtx, chunks: chunks}

		if err := cmd.Start(); err != nil {
			m.log.Error("Failed to start claude", "error", err)
			yield("", errors.Categorize(fmt.Errorf("start claude: %w", err), cctx))

			return
		}

		// Wait runs alongside the consumer so that WaitDelay can close stdout
		// when a descendant keeps it open past the deadline.
		var g errgroup.Group

		g.Go(func() error {
			defer close(chunks)

			return cmd.Wait()
		})

		stopped := false

		for chunk := range chunks {
			if !yield(chunk, nil) {
				stopped = true

				cancel()

				break
			}
		}

		waitErr := g.Wait()
		exited := cmd.ProcessState != nil && cmd.ProcessState.Success()

		switch {
		case stopped:
			m.log.Debug("Stream consumer stopped early; process terminated")
		case ctx.Err() != nil:
			yield("", ctx.Err())
		case stderrors.Is(runCtx.Err(), context.DeadlineExceeded):
			m.log.Warn("Claude stream timed out; ending stream", "timeout", timeout)
		case waitErr == nil:
		case exited && stderrors.Is(waitErr, exec.ErrWaitDelay):
			m.log.Debug("Claude exited while a child process still held stdout")
		case exited:
			yield("", fmt.Errorf("read stdout: %w", waitErr))
		default:
			exitCode := -1
			if cmd.ProcessState != nil {
				exitCode = cmd.ProcessState.ExitCode()
			}

			yield("", errors.Categorize(&errors.ProcessError{
				ExitCode: exitCode,
				Stderr:   cleanStderr(stderr.String()),
				Err:      waitErr,
			}, cctx))
		}
	}
}

// chunkWriter hands every stdout write to the stream consumer. It fails once
// ctx is done so the copy goroutine never blocks on an absent consumer.
type chunkWriter struct {
	ctx    context.Context
	chunks chan<- string
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	select {
	case w.chunks <- string(p):
		return len(p), nil
	case <-w.ctx.Done():
		return 0, w.ctx.Err()
	}
}

// ExecuteWithContinuity runs the CLI continuing the workspace's most recent
// conversation.
func (m *Manager) ExecuteWithContinuity(ctx context.Context, opts *config.Options, input string) (*Result, error) {
	continued := config.Options{}
	if opts != nil {
		continued = *opts
	}

	continued.ContinueSession = true

	return m.Execute(ctx, &continued, input)
}

// ResumeLastSession resumes the most recent session in opts.WorkspacePath
// with empty input. It fails with *errors.SessionNotFoundError when the
// workspace has no session to resume.
func (m *Manager) ResumeLastSession(ctx context.Context, opts *config.Options) (*Result, error) {
	resumed := config.Options{}
	if opts != nil {
		resumed = *opts
	}

	if !m.HasExistingSessions(ctx, resumed.WorkspacePath) {
		return nil, &errors.SessionNotFoundError{WorkspacePath: resumed.WorkspacePath}
	}

	resumed.ResumeLastSession = true

	return m.Execute(ctx, &resumed, "")
}

// HasExistingSessions reports whether the workspace appears to have a session
// that --continue could pick up. It is a heuristic: the probe must exit 0 and
// must not report that no session exists.
func (m *Manager) HasExistingSessions(ctx context.Context, workspacePath string) bool {
	res, err := m.probe(ctx, &config.Options{WorkspacePath: workspacePath}, SessionProbeTimeout, "--continue", "--help")
	if err != nil {
		m.log.Debug("Session probe failed", "error", err)

		return false
	}

	return res.Success && !strings.Contains(res.Stderr, noSessionMarker)
}

// IsAvailable reports whether the CLI can be found and answers --version
// within AvailabilityTimeout. It never returns an error.
func (m *Manager) IsAvailable(ctx context.Context) bool {
	res, err := m.probe(ctx, &config.Options{}, AvailabilityTimeout, "--version")
	if err != nil {
		m.log.Debug("Availability probe failed", "error", err)

		return false
	}

	return res.Success
}

// EnsureAvailable returns *errors.NotFoundError when IsAvailable is false.
func (m *Manager) EnsureAvailable(ctx context.Context) error {
	if !m.IsAvailable(ctx) {
		return &errors.NotFoundError{}
	}

	return nil
}

// Version returns the trimmed output of claude --version.
func (m *Manager) Version(ctx context.Context) (string, error) {
	res, err := m.probe(ctx, &config.Options{}, AvailabilityTimeout, "--version")
	if err != nil {
		return "", err
	}

	if !res.Success {
		return "", &errors.ProcessError{ExitCode: res.ExitCode, Stderr: res.Stderr}
	}

	return strings.TrimSpace(res.Stdout), nil
}

// probe runs the CLI with fixed arguments and no stdin. Discovery, the run
// and the kill grace together stay within timeout.
func (m *Manager) probe(ctx context.Context, opts *config.Options, timeout time.Duration, args ...string) (*Result, error) {
	grace := min(m.killGrace, timeout/5)

	probeCtx, cancel := context.WithTimeout(ctx, timeout-grace)
	defer cancel()

	cliPath, err := m.resolve(probeCtx, opts)
	if err != nil {
		return nil, err
	}

	cmd := m.command(probeCtx, cliPath, opts, args, grace)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()

	if err := cmd.Run(); err != nil {
		if probeCtx.Err() != nil {
			return nil, &errors.TimeoutError{Timeout: timeout}
		}

		if cmd.ProcessState == nil {
			return nil, fmt.Errorf("start claude: %w", err)
		}
	}

	return newResult(cmd.ProcessState, stdout.String(), stderr.String(), time.Since(start)), nil
}

func newResult(state *os.ProcessState, stdout, stderr string, duration time.Duration) *Result {
	result := &Result{
		Stdout:   stdout,
		Stderr:   stderr,
		ExitCode: state.ExitCode(),
		Duration: duration,
	}

	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		result.Signal = ws.Signal().String()
	}

	result.Success = result.ExitCode == 0 && result.Signal == ""

	return result
}
