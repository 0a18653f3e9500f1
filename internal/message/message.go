package message

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Type is the tag of a conversation message.
type Type string

const (
	TypeUser      Type = "user"
	TypeAssistant Type = "assistant"
	TypeSystem    Type = "system"
	TypeError     Type = "error"
	TypeInit      Type = "init"
	TypeResult    Type = "result"
)

// Legacy tags accepted on decode and normalized to their short form.
const (
	legacyUser      = "user_message"
	legacyAssistant = "assistant_message"
)

// SessionID identifies a conversation across continuation requests.
type SessionID string

// NewSessionID returns a fresh random session id.
func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

// NewID returns a new sortable message id.
func NewID() string {
	return ulid.Make().String()
}

// Message represents any message in the conversation.
// Use a type switch over the concrete types to inspect one.
type Message interface {
	MessageType() Type
	Meta() *Envelope
	sealed()
}

// Compile-time verification that all message types implement Message.
var (
	_ Message = (*UserMessage)(nil)
	_ Message = (*AssistantMessage)(nil)
	_ Message = (*SystemMessage)(nil)
	_ Message = (*ErrorMessage)(nil)
	_ Message = (*InitMessage)(nil)
	_ Message = (*ResultMessage)(nil)
)

// Envelope holds the fields shared by every message.
type Envelope struct {
	ID        string         `json:"id,omitempty"`
	SessionID SessionID      `json:"sessionId,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Meta returns the envelope for in-place access.
func (e *Envelope) Meta() *Envelope { return e }

func newEnvelope(sessionID SessionID) Envelope {
	return Envelope{
		ID:        NewID(),
		SessionID: sessionID,
		Timestamp: time.Now(),
	}
}

// UserMessage is a prompt from the user.
type UserMessage struct {
	Envelope
	Content string `json:"content"`
}

// NewUser creates a user message with a fresh id and the current time.
func NewUser(content string, sessionID SessionID) *UserMessage {
	return &UserMessage{Envelope: newEnvelope(sessionID), Content: content}
}

// MessageType implements the Message interface.
func (m *UserMessage) MessageType() Type { return TypeUser }

func (m *UserMessage) sealed() {}

// MarshalJSON implements json.Marshaler.
func (m *UserMessage) MarshalJSON() ([]byte, error) {
	type alias UserMessage

	return json.Marshal(struct {
		Type Type `json:"type"`
		*alias
	}{TypeUser, (*alias)(m)})
}

// AssistantMessage is a reply produced by the CLI.
type AssistantMessage struct {
	Envelope
	Content string `json:"content"`
}

// NewAssistant creates an assistant message with a fresh id and the current time.
func NewAssistant(content string, sessionID SessionID) *AssistantMessage {
	return &AssistantMessage{Envelope: newEnvelope(sessionID), Content: content}
}

// MessageType implements the Message interface.
func (m *AssistantMessage) MessageType() Type { return TypeAssistant }

func (m *AssistantMessage) sealed() {}

// MarshalJSON implements json.Marshaler.
func (m *AssistantMessage) MarshalJSON() ([]byte, error) {
	type alias AssistantMessage

	return json.Marshal(struct {
		Type Type `json:"type"`
		*alias
	}{TypeAssistant, (*alias)(m)})
}

// SystemMessage carries instructions or context rather than conversation.
type SystemMessage struct {
	Envelope
	Content string `json:"content"`
}

// NewSystem creates a system message with a fresh id and the current time.
func NewSystem(content string, sessionID SessionID) *SystemMessage {
	return &SystemMessage{Envelope: newEnvelope(sessionID), Content: content}
}

// MessageType implements the Message interface.
func (m *SystemMessage) MessageType() Type { return TypeSystem }

func (m *SystemMessage) sealed() {}

// MarshalJSON implements json.Marshaler.
func (m *SystemMessage) MarshalJSON() ([]byte, error) {
	type alias SystemMessage

	return json.Marshal(struct {
		Type Type `json:"type"`
		*alias
	}{TypeSystem, (*alias)(m)})
}

// ErrorMessage reports a failure inside a conversation.
type ErrorMessage struct {
	Envelope
	Error string `json:"error"`
}

// NewError creates an error message with a fresh id and the current time.
func NewError(text string, sessionID SessionID) *ErrorMessage {
	return &ErrorMessage{Envelope: newEnvelope(sessionID), Error: text}
}

// MessageType implements the Message interface.
func (m *ErrorMessage) MessageType() Type { return TypeError }

func (m *ErrorMessage) sealed() {}

// MarshalJSON implements json.Marshaler.
func (m *ErrorMessage) MarshalJSON() ([]byte, error) {
	type alias ErrorMessage

	return json.Marshal(struct {
		Type Type `json:"type"`
		*alias
	}{TypeError, (*alias)(m)})
}

// InitMessage marks the start of a session.
type InitMessage struct {
	Envelope
}

// NewInit creates an init message for a session.
func NewInit(sessionID SessionID) *InitMessage {
	return &InitMessage{Envelope: newEnvelope(sessionID)}
}

// MessageType implements the Message interface.
func (m *InitMessage) MessageType() Type { return TypeInit }

func (m *InitMessage) sealed() {}

// MarshalJSON implements json.Marshaler.
func (m *InitMessage) MarshalJSON() ([]byte, error) {
	type alias InitMessage

	return json.Marshal(struct {
		Type Type `json:"type"`
		*alias
	}{TypeInit, (*alias)(m)})
}

// ResultMessage wraps a completed exchange.
type ResultMessage struct {
	Envelope
	Success  bool           `json:"success"`
	Messages Messages       `json:"messages"`
	Result   ResultMetadata `json:"result"`
	Error    string         `json:"error,omitempty"`
}

// MessageType implements the Message interface.
func (m *ResultMessage) MessageType() Type { return TypeResult }

func (m *ResultMessage) sealed() {}

// MarshalJSON implements json.Marshaler.
func (m *ResultMessage) MarshalJSON() ([]byte, error) {
	type alias ResultMessage

	return json.Marshal(struct {
		Type Type `json:"type"`
		*alias
	}{TypeResult, (*alias)(m)})
}

// Text returns the human-readable payload of m: the content of user,
// assistant and system messages, or the error text of an ErrorMessage.
func Text(m Message) string {
	switch v := m.(type) {
	case *UserMessage:
		return v.Content
	case *AssistantMessage:
		return v.Content
	case *SystemMessage:
		return v.Content
	case *ErrorMessage:
		return v.Error
	default:
		return ""
	}
}
