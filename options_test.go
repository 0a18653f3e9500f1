package claudify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewRequest(t *testing.T) {
	req := NewRequest("do it",
		WithModel("opus"),
		WithWorkspace("/ws"),
		WithTimeout(time.Minute),
		WithSessionID("s-1"),
		WithSystemPrompt("be brief"),
		WithTask("refactor"),
		WithJSONOutput(),
		WithMock(true),
	)

	require.Len(t, req.Messages, 1)

	user, ok := req.Messages[0].(*UserMessage)
	require.True(t, ok)
	require.Equal(t, "do it", user.Content)
	require.Equal(t, SessionID("s-1"), user.SessionID)

	require.Equal(t, ExecutionOptions{
		ModelID:       "opus",
		WorkspacePath: "/ws",
		Timeout:       time.Minute,
		SessionID:     "s-1",
		SystemPrompt:  "be brief",
		Task:          "refactor",
		JSONOutput:    true,
	}, req.Options)
	require.True(t, req.Options.Continuity())
}

func TestNewRequest_ContinuityFlags(t *testing.T) {
	require.False(t, NewRequest("x").Options.Continuity())
	require.True(t, NewRequest("x", WithContinueSession()).Options.ContinueSession)
	require.True(t, NewRequest("x", WithResumeLastSession()).Options.ResumeLastSession)
}

func TestClaudeCodeConfig(t *testing.T) {
	cfg := ClaudeCodeConfig(
		WithCliPath("/opt/claude"),
		WithDefaultModel("haiku"),
		WithEnv(map[string]string{"A": "1"}),
		WithEnv(map[string]string{"B": "2"}),
		WithKillGrace(time.Second),
		WithMock(true),
		WithModel("ignored-here"),
	)

	require.Equal(t, ClaudeCodeProviderID, cfg.ID)
	require.Equal(t, map[string]any{
		"cli_path":      "/opt/claude",
		"default_model": "haiku",
		"env":           map[string]string{"A": "1", "B": "2"},
		"kill_grace":    time.Second,
		"mock":          true,
	}, cfg.Metadata)
	require.Equal(t, AuthNone, cfg.Credentials().Type)
}

func TestClaudeCodeConfig_Credentials(t *testing.T) {
	cfg := ClaudeCodeConfig(WithCredentials(Credentials{Type: AuthBearer, Token: "tok"}))

	require.Equal(t, Credentials{Type: AuthBearer, Token: "tok"}, cfg.Credentials())
}

func TestNewClaudeCodeProvider_AppliesSettings(t *testing.T) {
	p, err := NewClaudeCodeProvider(WithMock(true))
	require.NoError(t, err)

	require.True(t, p.MockMode())
	require.Equal(t, ClaudeCodeProviderID, p.ID())
}
