package errors

import "fmt"

// Provider error codes.
const (
	CodeExecution      = "EXECUTION_ERROR"
	CodeAuthentication = "AUTH_ERROR"
	CodeConfiguration  = "CONFIG_ERROR"
)

// ProviderError is a generic failure attributed to one provider.
type ProviderError struct {
	ProviderID string
	Code       string
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s: %s: %v", e.ProviderID, e.Message, e.Err)
	}

	return fmt.Sprintf("provider %s: %s", e.ProviderID, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ExecutionError is returned by a provider when a request could not be
// completed. Err holds the categorized cause, which is always a DomainError
// except for caller cancellation, where it is the context error.
type ExecutionError struct {
	ProviderID string
	Message    string
	Stderr     string
	Err        error
}

func (e *ExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s: %s: %v", e.ProviderID, e.Message, e.Err)
	}

	return fmt.Sprintf("provider %s: %s", e.ProviderID, e.Message)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Code returns CodeExecution.
func (e *ExecutionError) Code() string { return CodeExecution }

// AuthenticationError indicates credentials were rejected or unusable.
type AuthenticationError struct {
	ProviderID string
	Message    string
	Err        error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s: authentication failed: %s: %v", e.ProviderID, e.Message, e.Err)
	}

	return fmt.Sprintf("provider %s: authentication failed: %s", e.ProviderID, e.Message)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// Code returns CodeAuthentication.
func (e *AuthenticationError) Code() string { return CodeAuthentication }

// ConfigurationError indicates a provider could not be configured or created.
type ConfigurationError struct {
	ProviderID string
	Message    string
	Err        error
}

func (e *ConfigurationError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	if e.ProviderID == "" {
		return msg
	}

	return fmt.Sprintf("provider %s: %s", e.ProviderID, msg)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Code returns CodeConfiguration.
func (e *ConfigurationError) Code() string { return CodeConfiguration }
