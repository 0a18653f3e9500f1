package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Kind identifies one member of the closed set of domain failures.
type Kind string

const (
	// KindNotFound indicates the claude CLI is not installed or not on PATH.
	KindNotFound Kind = "not_found"
	// KindModelNotAvailable indicates the requested model was rejected by the CLI.
	KindModelNotAvailable Kind = "model_not_available"
	// KindSessionNotFound indicates there is no prior session to resume.
	KindSessionNotFound Kind = "session_not_found"
	// KindWorkspaceAccess indicates the workspace directory is missing or unreadable.
	KindWorkspaceAccess Kind = "workspace_access"
	// KindTimeout indicates the subprocess exceeded its deadline.
	KindTimeout Kind = "timeout"
	// KindProcessFailure indicates the subprocess exited unsuccessfully.
	KindProcessFailure Kind = "process_failure"
	// KindInvalidResponse indicates the CLI output could not be interpreted.
	KindInvalidResponse Kind = "invalid_response"
	// KindSessionContinuity indicates --continue/--resume handling failed.
	KindSessionContinuity Kind = "session_continuity"
)

// DomainError is implemented by every categorized failure.
type DomainError interface {
	error
	// Kind reports which taxonomy member the error belongs to.
	Kind() Kind
	// Hint returns remediation text suitable for showing to a user.
	Hint() string
}

// Compile-time verification that all domain types implement DomainError.
var (
	_ DomainError = (*NotFoundError)(nil)
	_ DomainError = (*ModelNotAvailableError)(nil)
	_ DomainError = (*SessionNotFoundError)(nil)
	_ DomainError = (*WorkspaceAccessError)(nil)
	_ DomainError = (*TimeoutError)(nil)
	_ DomainError = (*ProcessError)(nil)
	_ DomainError = (*InvalidResponseError)(nil)
	_ DomainError = (*SessionContinuityError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrProviderNotInitialized indicates Execute was called before Initialize.
	ErrProviderNotInitialized = errors.New("provider not initialized")

	// ErrProviderDisposed indicates the provider has been disposed and cannot be reused.
	ErrProviderDisposed = errors.New("provider disposed")

	// ErrNoProviders indicates the manager holds no providers.
	ErrNoProviders = errors.New("no providers available")

	// ErrNoHealthyProvider indicates every registered provider reported unhealthy.
	ErrNoHealthyProvider = errors.New("no healthy provider available")

	// ErrUnknownMessageType indicates a message tag outside the known set.
	ErrUnknownMessageType = errors.New("unknown message type")
)

// NotFoundError indicates the claude CLI binary could not be located or started.
type NotFoundError struct {
	SearchedPaths []string
	Err           error
}

func (e *NotFoundError) Error() string {
	if len(e.SearchedPaths) > 0 {
		return fmt.Sprintf("claude CLI not found in: %v", e.SearchedPaths)
	}

	if e.Err != nil {
		return fmt.Sprintf("claude CLI not found: %v", e.Err)
	}

	return "claude CLI not found"
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// Kind implements DomainError.
func (e *NotFoundError) Kind() Kind { return KindNotFound }

// Hint implements DomainError.
func (e *NotFoundError) Hint() string {
	return "Install Claude Code first: https://docs.anthropic.com/en/docs/claude-code"
}

// ModelNotAvailableError indicates the CLI rejected the requested model.
type ModelNotAvailableError struct {
	Model     string
	Available []string
	Err       error
}

func (e *ModelNotAvailableError) Error() string {
	return fmt.Sprintf("model %q is not available in Claude Code", e.Model)
}

func (e *ModelNotAvailableError) Unwrap() error { return e.Err }

// Kind implements DomainError.
func (e *ModelNotAvailableError) Kind() Kind { return KindModelNotAvailable }

// Hint implements DomainError.
func (e *ModelNotAvailableError) Hint() string {
	if len(e.Available) == 0 {
		return `Use "sonnet" (fast) or "opus" (most capable).`
	}

	return "Available models: " + strings.Join(e.Available, ", ")
}

// SessionNotFoundError indicates there is no previous session in a workspace.
type SessionNotFoundError struct {
	WorkspacePath string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("no existing Claude Code session found in workspace: %s", e.WorkspacePath)
}

// Kind implements DomainError.
func (e *SessionNotFoundError) Kind() Kind { return KindSessionNotFound }

// Hint implements DomainError.
func (e *SessionNotFoundError) Hint() string {
	return "Start a new conversation, or run from a workspace that has a previous session."
}

// WorkspaceAccessError indicates the workspace directory cannot be used.
type WorkspaceAccessError struct {
	Path   string
	Reason string
	Err    error
}

func (e *WorkspaceAccessError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot access workspace %s: %s", e.Path, e.Reason)
	}

	return fmt.Sprintf("cannot access workspace %s", e.Path)
}

func (e *WorkspaceAccessError) Unwrap() error { return e.Err }

// Kind implements DomainError.
func (e *WorkspaceAccessError) Kind() Kind { return KindWorkspaceAccess }

// Hint implements DomainError.
func (e *WorkspaceAccessError) Hint() string {
	return "Check that the path exists and you have read/write permissions."
}

// TimeoutError indicates the subprocess did not finish before its deadline.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("claude execution timed out after %s", e.Timeout)
}

// Kind implements DomainError.
func (e *TimeoutError) Kind() Kind { return KindTimeout }

// Hint implements DomainError.
func (e *TimeoutError) Hint() string {
	return "Increase the timeout or simplify the request."
}

// ProcessError indicates the CLI process failed.
type ProcessError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	if e.Err != nil && e.Stderr == "" {
		return fmt.Sprintf("claude process failed (exit %d): %v", e.ExitCode, e.Err)
	}

	return fmt.Sprintf("claude process failed (exit %d): %s", e.ExitCode, e.Stderr)
}

func (e *ProcessError) Unwrap() error { return e.Err }

// Kind implements DomainError.
func (e *ProcessError) Kind() Kind { return KindProcessFailure }

// Hint implements DomainError.
func (e *ProcessError) Hint() string {
	return `Check that Claude Code is authenticated ("claude auth login") and up to date.`
}

// InvalidResponseError indicates the CLI output was not usable.
type InvalidResponseError struct {
	Response string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("claude returned an invalid response: %q", truncate(e.Response, 200))
}

// Kind implements DomainError.
func (e *InvalidResponseError) Kind() Kind { return KindInvalidResponse }

// Hint implements DomainError.
func (e *InvalidResponseError) Hint() string {
	return "This may indicate a Claude Code CLI issue or an unexpected output format."
}

// SessionContinuityError indicates continuing or resuming a session failed.
type SessionContinuityError struct {
	Reason string
	Err    error
}

func (e *SessionContinuityError) Error() string {
	return "session continuity failed: " + e.Reason
}

func (e *SessionContinuityError) Unwrap() error { return e.Err }

// Kind implements DomainError.
func (e *SessionContinuityError) Kind() Kind { return KindSessionContinuity }

// Hint implements DomainError.
func (e *SessionContinuityError) Hint() string {
	return "Start a fresh conversation or check workspace permissions."
}

// KindOf returns the taxonomy kind of err, if any error in its chain is a DomainError.
func KindOf(err error) (Kind, bool) {
	if de, ok := errors.AsType[DomainError](err); ok {
		return de.Kind(), true
	}

	return "", false
}

// HintOf returns the remediation hint of the first DomainError in err's chain.
func HintOf(err error) string {
	if de, ok := errors.AsType[DomainError](err); ok {
		return de.Hint()
	}

	return ""
}

// truncate cuts s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}

	return s[:n] + "..."
}
