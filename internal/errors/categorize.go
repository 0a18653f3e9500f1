package errors

import (
	"context"
	"errors"
	"io/fs"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout is reported by TimeoutError when the caller gave no timeout.
const DefaultTimeout = 30 * time.Second

// Context carries request details that refine categorization.
type Context struct {
	ModelID       string
	WorkspacePath string
	Timeout       time.Duration
}

// Categorize maps a raw failure to the most specific DomainError it matches.
//
// Rules are evaluated in order and the first match wins. Domain errors other
// than ProcessError pass through unchanged; a ProcessError is re-examined so
// that its stderr can refine it (for example into ModelNotAvailableError).
// Errors matching no rule are returned as-is.
func Categorize(err error, c Context) error {
	if err == nil {
		return nil
	}

	if de, ok := errors.AsType[DomainError](err); ok {
		if _, isProcess := de.(*ProcessError); !isProcess {
			return err
		}
	}

	text := strings.ToLower(errorText(err))

	if isNotFound(err, text) {
		return &NotFoundError{Err: err}
	}

	if c.ModelID != "" && containsAny(text, "invalid model", "model not found", "unknown model") {
		return &ModelNotAvailableError{Model: c.ModelID, Err: err}
	}

	if c.WorkspacePath != "" && isWorkspaceFailure(err, text) {
		return &WorkspaceAccessError{Path: c.WorkspacePath, Reason: errorText(err), Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) || containsAny(text, "timeout", "timed out") {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}

		return &TimeoutError{Timeout: timeout}
	}

	if containsAny(text, "no session", "session not found") ||
		(strings.Contains(text, "continue") && strings.Contains(text, "failed")) {
		return &SessionContinuityError{Reason: errorText(err), Err: err}
	}

	if pe, ok := errors.AsType[*ProcessError](err); ok {
		return pe
	}

	if ee, ok := errors.AsType[*exec.ExitError](err); ok {
		return &ProcessError{ExitCode: ee.ExitCode(), Stderr: string(ee.Stderr), Err: err}
	}

	if containsAny(text, "invalid response", "unexpected output") {
		return &InvalidResponseError{Response: errorText(err)}
	}

	return err
}

func isNotFound(err error, text string) bool {
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}

	if strings.Contains(text, "command not found") {
		return true
	}

	return strings.Contains(text, "claude") && strings.Contains(text, "not found")
}

func isWorkspaceFailure(err error, text string) bool {
	if errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist) {
		return true
	}

	return containsAny(text, "permission denied", "access denied", "no such file or directory")
}

// errorText prefers captured stderr for process failures so that the CLI's
// own diagnostics drive categorization.
func errorText(err error) string {
	if pe, ok := errors.AsType[*ProcessError](err); ok {
		switch {
		case pe.Stderr != "":
			return pe.Stderr
		case pe.Err != nil:
			return pe.Err.Error()
		default:
			return ""
		}
	}

	return err.Error()
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}

	return false
}
