package config

import (
	"log/slog"
	"time"
)

// DefaultTimeout bounds a CLI invocation when no timeout is given.
const DefaultTimeout = 30 * time.Second

// DefaultKillGrace is how long a timed-out CLI process has to exit after
// SIGTERM before it is killed.
const DefaultKillGrace = 2 * time.Second

// Options configures one claude CLI invocation.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// CliPath is an explicit path to the claude binary.
	CliPath string

	// ModelID selects the model (--model).
	ModelID string

	// WorkspacePath is the working directory for the CLI process.
	// Empty means the current process directory.
	WorkspacePath string

	// Timeout bounds the invocation. Zero selects DefaultTimeout.
	Timeout time.Duration

	// ContinueSession continues the most recent conversation (--continue).
	ContinueSession bool

	// SessionID resumes a specific session (--resume).
	SessionID string

	// ResumeLastSession resumes the most recent session in the workspace.
	ResumeLastSession bool

	// JSONOutput requests --output-format json instead of text.
	JSONOutput bool

	// Env holds additional environment variables for the CLI process.
	Env map[string]string

	// ExtraArgs holds additional flags passed verbatim, sorted by name.
	// A nil value produces a bare boolean flag.
	ExtraArgs map[string]*string

	// Stderr, when set, receives each line the CLI writes to stderr.
	Stderr func(string)
}

// Continuity reports whether the invocation continues an earlier session.
func (o *Options) Continuity() bool {
	return o.ContinueSession || o.ResumeLastSession
}

// EffectiveTimeout returns Timeout, or DefaultTimeout when unset.
func (o *Options) EffectiveTimeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}

	return o.Timeout
}
