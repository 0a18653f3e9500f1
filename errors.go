package claudify

import "github.com/wagiedev/claudify/internal/errors"

// Re-export error types from internal package

// ErrorKind identifies one member of the closed set of domain failures.
type ErrorKind = errors.Kind

// Error kinds.
const (
	ErrorKindNotFound          = errors.KindNotFound
	ErrorKindModelNotAvailable = errors.KindModelNotAvailable
	ErrorKindSessionNotFound   = errors.KindSessionNotFound
	ErrorKindWorkspaceAccess   = errors.KindWorkspaceAccess
	ErrorKindTimeout           = errors.KindTimeout
	ErrorKindProcessFailure    = errors.KindProcessFailure
	ErrorKindInvalidResponse   = errors.KindInvalidResponse
	ErrorKindSessionContinuity = errors.KindSessionContinuity
)

// DomainError is implemented by every categorized failure.
type DomainError = errors.DomainError

// NotFoundError indicates the claude CLI binary was not found.
type NotFoundError = errors.NotFoundError

// ModelNotAvailableError indicates the CLI rejected the requested model.
type ModelNotAvailableError = errors.ModelNotAvailableError

// SessionNotFoundError indicates there is no session to resume.
type SessionNotFoundError = errors.SessionNotFoundError

// WorkspaceAccessError indicates the workspace directory is unusable.
type WorkspaceAccessError = errors.WorkspaceAccessError

// TimeoutError indicates the CLI exceeded its deadline.
type TimeoutError = errors.TimeoutError

// ProcessError indicates the CLI process failed.
type ProcessError = errors.ProcessError

// InvalidResponseError indicates the CLI output could not be interpreted.
type InvalidResponseError = errors.InvalidResponseError

// SessionContinuityError indicates session continuation failed.
type SessionContinuityError = errors.SessionContinuityError

// ExecutionError is returned by providers when a request fails.
type ExecutionError = errors.ExecutionError

// AuthenticationError indicates credentials were refused.
type AuthenticationError = errors.AuthenticationError

// ConfigurationError indicates an invalid provider configuration.
type ConfigurationError = errors.ConfigurationError

// Re-export sentinel errors from internal package.
var (
	// ErrProviderNotInitialized indicates Execute was called before Initialize.
	ErrProviderNotInitialized = errors.ErrProviderNotInitialized

	// ErrProviderDisposed indicates the provider has been disposed.
	ErrProviderDisposed = errors.ErrProviderDisposed

	// ErrNoProviders indicates the manager holds no providers.
	ErrNoProviders = errors.ErrNoProviders

	// ErrNoHealthyProvider indicates every provider failed its health check.
	ErrNoHealthyProvider = errors.ErrNoHealthyProvider
)

// KindOf returns the kind of the first domain error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	return errors.KindOf(err)
}

// HintOf returns remediation text for err, or "" when it carries none.
func HintOf(err error) string {
	return errors.HintOf(err)
}
