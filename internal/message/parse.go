package message

import (
	"encoding/json"
	"fmt"

	"github.com/wagiedev/claudify/internal/errors"
)

// NormalizeType maps legacy tags onto their short form. Unknown tags are
// returned unchanged.
func NormalizeType(tag string) Type {
	switch tag {
	case legacyUser:
		return TypeUser
	case legacyAssistant:
		return TypeAssistant
	default:
		return Type(tag)
	}
}

// Decode converts one JSON object into a typed Message.
//
// The legacy tags "user_message" and "assistant_message" are accepted. A tag
// outside the known set fails with errors.ErrUnknownMessageType.
func Decode(data []byte) (Message, error) {
	var probe struct {
		Type *string `json:"type"`
	}

	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}

	if probe.Type == nil {
		return nil, fmt.Errorf("decode message: missing 'type' field")
	}

	var msg Message

	switch NormalizeType(*probe.Type) {
	case TypeUser:
		msg = &UserMessage{}
	case TypeAssistant:
		msg = &AssistantMessage{}
	case TypeSystem:
		msg = &SystemMessage{}
	case TypeError:
		msg = &ErrorMessage{}
	case TypeInit:
		msg = &InitMessage{}
	case TypeResult:
		msg = &ResultMessage{}
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownMessageType, *probe.Type)
	}

	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("decode %s message: %w", msg.MessageType(), err)
	}

	return msg, nil
}

// Messages is an ordered conversation that round-trips through JSON.
type Messages []Message

// UnmarshalJSON implements json.Unmarshaler.
func (ms *Messages) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Messages, 0, len(raw))

	for i, r := range raw {
		msg, err := Decode(r)
		if err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}

		out = append(out, msg)
	}

	*ms = out

	return nil
}

// Last returns the final message, or nil when empty.
func (ms Messages) Last() Message {
	if len(ms) == 0 {
		return nil
	}

	return ms[len(ms)-1]
}

// LastOfType returns the most recent message with the given tag. Nil entries
// are skipped.
func (ms Messages) LastOfType(t Type) (Message, bool) {
	for i := len(ms) - 1; i >= 0; i-- {
		if ms[i] != nil && ms[i].MessageType() == t {
			return ms[i], true
		}
	}

	return nil, false
}
