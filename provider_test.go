package claudify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewManager_ClaudeCodeRegistered(t *testing.T) {
	ctx := context.Background()

	mgr := NewManager(WithMock(true))
	t.Cleanup(func() { _ = mgr.Dispose(ctx) })

	require.Equal(t, []string{ClaudeCodeProviderID}, mgr.Registry().List())

	p, err := mgr.AddProvider(ctx, ClaudeCodeConfig(WithMock(true)))
	require.NoError(t, err)
	require.Equal(t, ClaudeCodeProviderID, p.ID())

	result, err := mgr.ExecuteWithBest(ctx, NewRequest("hello"))
	require.NoError(t, err)
	require.Equal(t, mockReply, result.Content())

	statuses := mgr.Statuses(ctx)
	require.Len(t, statuses, 1)
	require.True(t, statuses[0].Healthy)
	require.Equal(t, int64(1), statuses[0].Metrics.SuccessfulRequests)
}

func TestNewManager_UnknownProvider(t *testing.T) {
	mgr := NewManager()

	_, err := mgr.AddProvider(context.Background(), &ProviderConfig{ID: "nope"})

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestNewRegistry_Capabilities(t *testing.T) {
	f, ok := NewRegistry().Factory(ClaudeCodeProviderID)
	require.True(t, ok)

	caps, err := f.Capabilities(ClaudeCodeProviderID)
	require.NoError(t, err)
	require.True(t, caps.Streaming)
	require.Contains(t, caps.Authentication, string(AuthNone))
}
