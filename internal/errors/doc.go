// Package errors defines the failure taxonomy for claude CLI execution.
//
// Raw failures from spawning or running the CLI are mapped by Categorize onto
// a closed set of DomainError types, each carrying a remediation Hint.
// Provider-level wrappers (ExecutionError, AuthenticationError,
// ConfigurationError) attribute a failure to a provider id. All types support
// unwrapping and can be matched with errors.Is, errors.As and errors.AsType.
package errors
