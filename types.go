package claudify

import (
	"github.com/wagiedev/claudify/internal/config"
	"github.com/wagiedev/claudify/internal/message"
	"github.com/wagiedev/claudify/internal/metrics"
	"github.com/wagiedev/claudify/internal/provider"
	"github.com/wagiedev/claudify/internal/provider/claudecode"
)

// Re-export types from internal packages

// ===== Messages =====

// Message is one conversation entry. Use a type switch over the concrete
// message types to inspect one.
type Message = message.Message

// MessageType discriminates Message variants on the wire.
type MessageType = message.Type

// Message types.
const (
	MessageTypeUser      = message.TypeUser
	MessageTypeAssistant = message.TypeAssistant
	MessageTypeSystem    = message.TypeSystem
	MessageTypeError     = message.TypeError
	MessageTypeInit      = message.TypeInit
	MessageTypeResult    = message.TypeResult
)

// Messages is an ordered conversation.
type Messages = message.Messages

// SessionID identifies a conversation known to the claude CLI.
type SessionID = message.SessionID

// UserMessage is text written by the user.
type UserMessage = message.UserMessage

// AssistantMessage is a reply produced by the assistant.
type AssistantMessage = message.AssistantMessage

// SystemMessage carries instructions or context.
type SystemMessage = message.SystemMessage

// ErrorMessage reports a failure inside a conversation.
type ErrorMessage = message.ErrorMessage

// InitMessage marks the start of a session.
type InitMessage = message.InitMessage

// ResultMessage closes a run with its outcome.
type ResultMessage = message.ResultMessage

// NewUserMessage creates a user message.
func NewUserMessage(content string, sessionID SessionID) *UserMessage {
	return message.NewUser(content, sessionID)
}

// NewAssistantMessage creates an assistant message.
func NewAssistantMessage(content string, sessionID SessionID) *AssistantMessage {
	return message.NewAssistant(content, sessionID)
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string, sessionID SessionID) *SystemMessage {
	return message.NewSystem(content, sessionID)
}

// DecodeMessage decodes one message from its JSON form.
func DecodeMessage(data []byte) (Message, error) {
	return message.Decode(data)
}

// ===== Execution =====

// ExecutionOptions control a single request.
type ExecutionOptions = message.ExecutionOptions

// ExecutionRequest is the input of Provider.Execute.
type ExecutionRequest = message.ExecutionRequest

// ExecutionResult is the output of Provider.Execute.
type ExecutionResult = message.ExecutionResult

// ResultMetadata describes how a result was produced.
type ResultMetadata = message.ResultMetadata

// Usage reports token counts.
type Usage = message.Usage

// NewRequest builds a single-message request for prompt. Only the
// per-request options (model, workspace, timeout, session and prompt
// context) are taken from opts.
func NewRequest(prompt string, opts ...Option) *ExecutionRequest {
	o := applyOptions(opts)

	return &ExecutionRequest{
		Messages: Messages{message.NewUser(prompt, o.SessionID)},
		Options:  o.executionOptions(),
	}
}

// ===== Providers =====

// Provider is an execution unit bound to one backing tool.
type Provider = provider.Provider

// ProviderFactory creates providers for the ids it supports.
type ProviderFactory = provider.Factory

// ProviderCapabilities describes what a provider supports.
type ProviderCapabilities = provider.Capabilities

// AuthResult is the outcome of Provider.Authenticate.
type AuthResult = provider.AuthResult

// ProviderStatus is a provider's health report.
type ProviderStatus = provider.Status

// Registry maps provider ids to factories.
type Registry = provider.Registry

// Manager owns provider instances.
type Manager = provider.Manager

// ClaudeCodeProvider runs requests through the claude CLI.
type ClaudeCodeProvider = claudecode.Provider

// ClaudeCodeProviderID is the id of the Claude Code provider.
const ClaudeCodeProviderID = claudecode.ProviderID

// MetricsSnapshot is a point-in-time copy of a provider's request counters.
type MetricsSnapshot = metrics.Snapshot

// MetricsObserver receives request events, e.g. a Prometheus exporter.
type MetricsObserver = metrics.Observer

// ===== Configuration =====

// ProviderConfig describes one provider instance.
type ProviderConfig = config.ProviderConfig

// Credentials are passed to Provider.Authenticate.
type Credentials = config.Credentials

// AuthType names a credential scheme.
type AuthType = config.AuthType

// Credential schemes.
const (
	AuthNone   = config.AuthNone
	AuthBearer = config.AuthBearer
	AuthAPIKey = config.AuthAPIKey
)

// LoadProviderConfigs reads a YAML or JSON providers file. A missing file
// yields no providers.
func LoadProviderConfigs(path string) ([]ProviderConfig, error) {
	return config.LoadFile(path)
}
