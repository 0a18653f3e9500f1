package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/claudify/internal/message"
)

func TestFormat_LastUserMessage(t *testing.T) {
	msgs := []message.Message{
		message.NewUser("first", ""),
		message.NewAssistant("reply", ""),
		message.NewUser("second", ""),
		message.NewAssistant("another", ""),
	}

	require.Equal(t, "second", Format(msgs, Context{}))
}

func TestFormat_NoUserMessage(t *testing.T) {
	msgs := []message.Message{message.NewAssistant("only assistant", "")}

	require.Empty(t, Format(msgs, Context{}))
	require.Empty(t, Format(nil, Context{SystemPrompt: "x"}))
}

func TestFormat_Preamble(t *testing.T) {
	msgs := []message.Message{message.NewUser("fix the bug", "")}

	got := Format(msgs, Context{SystemPrompt: "be brief", Task: "triage"})

	require.Equal(t, "System: be brief\nTask: triage\n\nfix the bug", got)
}

func TestFormat_NoPreambleOnContinuity(t *testing.T) {
	msgs := []message.Message{message.NewUser("go on", "")}

	got := Format(msgs, Context{SystemPrompt: "be brief", WorkspacePath: "/ws", Continuity: true})

	require.Equal(t, "go on", got)
}

func TestValidate(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		errs := Validate(nil)
		require.Len(t, errs, 1)
		require.Contains(t, errs[0].Error(), "at least one message")
	})

	t.Run("valid conversation", func(t *testing.T) {
		errs := Validate([]message.Message{
			message.NewSystem("ctx", ""),
			message.NewUser("hi", ""),
			message.NewAssistant("hello", ""),
		})
		require.Empty(t, errs)
	})

	t.Run("collects every problem", func(t *testing.T) {
		errs := Validate([]message.Message{
			message.NewUser("", ""),
			message.NewError("boom", ""),
			message.NewUser(strings.Repeat("a", MaxContentLength+1), ""),
			message.NewUser("fine", ""),
		})
		require.Len(t, errs, 3)

		var indexes []int
		for _, err := range errs {
			ve, ok := err.(*ValidationError)
			require.True(t, ok)
			indexes = append(indexes, ve.Index)
		}
		require.Equal(t, []int{0, 1, 2}, indexes)
		require.Contains(t, errs[1].Error(), `invalid role "error"`)
		require.Contains(t, errs[2].Error(), "100,000")
	})

	t.Run("limit counts characters not bytes", func(t *testing.T) {
		errs := Validate([]message.Message{
			message.NewUser(strings.Repeat("é", MaxContentLength), ""),
		})
		require.Empty(t, errs)
	})
}

func TestContextualize(t *testing.T) {
	msgs := []message.Message{message.NewUser("hi", "s1")}

	out := Contextualize(msgs, Context{SystemPrompt: "sys", WorkspacePath: "/ws", Task: "t"})

	require.Len(t, out, 4)
	require.Len(t, msgs, 1)
	require.Equal(t, "sys", message.Text(out[0]))
	require.Contains(t, message.Text(out[1]), "/ws")
	require.Equal(t, "Current task: t", message.Text(out[2]))
	require.Equal(t, message.SessionID("s1"), out[0].Meta().SessionID)
	require.Same(t, msgs[0], out[3])
}

func TestLastAssistant(t *testing.T) {
	_, ok := LastAssistant([]message.Message{message.NewUser("q", "")})
	require.False(t, ok)

	got, ok := LastAssistant([]message.Message{
		message.NewAssistant("a1", ""),
		message.NewUser("q", ""),
		message.NewAssistant("a2", ""),
	})
	require.True(t, ok)
	require.Equal(t, "a2", got)
}

func TestRenderTranscript(t *testing.T) {
	got := RenderTranscript([]message.Message{
		message.NewInit(""),
		message.NewUser("q", ""),
		nil,
		message.NewAssistant("a", ""),
	})

	require.Equal(t, "Human: q\nAssistant: a", got)
}
