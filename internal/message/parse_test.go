package message

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	sdkerrors "github.com/wagiedev/claudify/internal/errors"

	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantType Type
		wantText string
	}{
		{
			name:     "user",
			data:     `{"type":"user","content":"hi","sessionId":"s1"}`,
			wantType: TypeUser,
			wantText: "hi",
		},
		{
			name:     "legacy user",
			data:     `{"type":"user_message","content":"hello"}`,
			wantType: TypeUser,
			wantText: "hello",
		},
		{
			name:     "legacy assistant",
			data:     `{"type":"assistant_message","content":"answer"}`,
			wantType: TypeAssistant,
			wantText: "answer",
		},
		{
			name:     "error",
			data:     `{"type":"error","error":"boom"}`,
			wantType: TypeError,
			wantText: "boom",
		},
		{
			name:     "init",
			data:     `{"type":"init","sessionId":"s1"}`,
			wantType: TypeInit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Decode([]byte(tt.data))
			require.NoError(t, err)
			require.Equal(t, tt.wantType, msg.MessageType())
			require.Equal(t, tt.wantText, Text(msg))
		})
	}
}

func TestDecode_UnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"tool_call","content":"x"}`))

	require.Error(t, err)
	require.True(t, errors.Is(err, sdkerrors.ErrUnknownMessageType))
}

func TestDecode_MissingType(t *testing.T) {
	_, err := Decode([]byte(`{"content":"x"}`))

	require.Error(t, err)
	require.False(t, errors.Is(err, sdkerrors.ErrUnknownMessageType))
}

func TestMarshal_WritesShortTag(t *testing.T) {
	msg := NewAssistant("done", "s1")

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Equal(t, "assistant", raw["type"])
	require.Equal(t, "done", raw["content"])
	require.Equal(t, "s1", raw["sessionId"])
	require.Equal(t, msg.ID, raw["id"])
}

func TestExecutionRequest_TimeoutInMilliseconds(t *testing.T) {
	data := `{
		"messages": [{"type":"user_message","content":"hi"}],
		"options": {"modelId":"sonnet","timeout":1500,"continueSession":true,"sessionId":"abc"}
	}`

	var req ExecutionRequest
	require.NoError(t, json.Unmarshal([]byte(data), &req))
	require.Len(t, req.Messages, 1)
	require.Equal(t, TypeUser, req.Messages[0].MessageType())
	require.Equal(t, 1500*time.Millisecond, req.Options.Timeout)
	require.Equal(t, "sonnet", req.Options.ModelID)
	require.Equal(t, SessionID("abc"), req.Options.SessionID)
	require.True(t, req.Options.Continuity())

	out, err := json.Marshal(req.Options)
	require.NoError(t, err)
	require.Contains(t, string(out), `"timeout":1500`)
}

func TestResultMessage_NestedMessages(t *testing.T) {
	data := `{"type":"result","success":true,"messages":[
		{"type":"user","content":"q"},
		{"type":"assistant","content":"a"}
	]}`

	msg, err := Decode([]byte(data))
	require.NoError(t, err)

	res, ok := msg.(*ResultMessage)
	require.True(t, ok)
	require.True(t, res.Success)
	require.Len(t, res.Messages, 2)
	require.Equal(t, "a", Text(res.Messages.Last()))
}

func TestMessages_LastOfType(t *testing.T) {
	ms := Messages{
		NewUser("first", ""),
		NewAssistant("reply", ""),
		NewUser("second", ""),
		NewSystem("ctx", ""),
	}

	got, ok := ms.LastOfType(TypeUser)
	require.True(t, ok)
	require.Equal(t, "second", Text(got))

	_, ok = ms.LastOfType(TypeError)
	require.False(t, ok)
}

func TestMessages_LastOfTypeSkipsNil(t *testing.T) {
	ms := Messages{NewUser("only", ""), nil}

	got, ok := ms.LastOfType(TypeUser)
	require.True(t, ok)
	require.Equal(t, "only", Text(got))

	_, ok = Messages{nil}.LastOfType(TypeUser)
	require.False(t, ok)
}

func TestExecutionResult_Content(t *testing.T) {
	var nilResult *ExecutionResult
	require.Empty(t, nilResult.Content())

	res := &ExecutionResult{
		Success:  true,
		Messages: Messages{NewAssistant("final", "")},
	}
	require.Equal(t, "final", res.Content())
}

func TestNewSessionID_Unique(t *testing.T) {
	a, b := NewSessionID(), NewSessionID()

	require.NotEqual(t, a, b)
	require.Len(t, string(a), 36)
}
