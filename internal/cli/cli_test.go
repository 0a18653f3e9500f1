package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wagiedev/claudify/internal/config"
	"github.com/wagiedev/claudify/internal/errors"
)

// TestDiscoverer_NotFound tests that an invalid CLI path returns NotFoundError.
func TestDiscoverer_NotFound(t *testing.T) {
	discoverer := NewDiscoverer(&Config{
		CliPath:          "/nonexistent/path/to/claude",
		SkipVersionCheck: true,
		Logger:           slog.Default(),
	})

	_, err := discoverer.Discover(context.Background())

	require.Error(t, err)
	require.IsType(t, &errors.NotFoundError{}, err)
}

// TestDiscoverer_ExplicitPath tests discovery with an explicit path.
func TestDiscoverer_ExplicitPath(t *testing.T) {
	tmpDir := t.TempDir()
	fakeCLI := tmpDir + "/claude"

	err := os.WriteFile(fakeCLI, []byte("#!/bin/sh\necho 2.1.0"), 0o755)
	require.NoError(t, err)

	discoverer := NewDiscoverer(&Config{
		CliPath:          fakeCLI,
		SkipVersionCheck: true,
		Logger:           slog.Default(),
	})

	path, err := discoverer.Discover(context.Background())

	require.NoError(t, err)
	require.Equal(t, fakeCLI, path)
}

// TestDiscoverer_PathLookup tests that claude is found on PATH.
func TestDiscoverer_PathLookup(t *testing.T) {
	tmpDir := t.TempDir()
	fakeCLI := filepath.Join(tmpDir, "claude")
	require.NoError(t, os.WriteFile(fakeCLI, []byte("#!/bin/sh\necho 2.1.0"), 0o755))

	t.Setenv("PATH", tmpDir)

	path, err := NewDiscoverer(&Config{Logger: slog.Default()}).Discover(context.Background())

	require.NoError(t, err)
	require.Equal(t, fakeCLI, path)
}

// TestDiscoverer_SkipCommonPaths tests that only PATH is reported as searched.
func TestDiscoverer_SkipCommonPaths(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := NewDiscoverer(&Config{SkipCommonPaths: true}).Discover(context.Background())

	nf, ok := err.(*errors.NotFoundError)
	require.True(t, ok)
	require.Equal(t, []string{"$PATH"}, nf.SearchedPaths)
}

func TestBuildArgs_Print(t *testing.T) {
	args := BuildArgs(&config.Options{})

	require.Equal(t, []string{"--print", "--output-format", "text"}, args)
}

func TestBuildArgs_PrintWithModelAndJSON(t *testing.T) {
	args := BuildArgs(&config.Options{ModelID: "opus", JSONOutput: true})

	require.Equal(t, []string{"--print", "--model", "opus", "--output-format", "json"}, args)
}

func TestBuildArgs_ResumeByID(t *testing.T) {
	args := BuildArgs(&config.Options{SessionID: "abc"})

	require.Equal(t, []string{"--print", "--resume", "abc", "--output-format", "text"}, args)
}

func TestBuildArgs_SessionContinuation(t *testing.T) {
	tests := []struct {
		name    string
		options config.Options
		want    []string
	}{
		{
			name:    "continue",
			options: config.Options{ContinueSession: true},
			want:    []string{"--continue"},
		},
		{
			name:    "continue with model and session",
			options: config.Options{ContinueSession: true, ModelID: "sonnet", SessionID: "abc"},
			want:    []string{"--continue", "--model", "sonnet", "--resume", "abc"},
		},
		{
			name:    "resume last",
			options: config.Options{ResumeLastSession: true, JSONOutput: true},
			want:    []string{"--continue"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := BuildArgs(&tt.options)
			require.Equal(t, tt.want, args)
			require.NotContains(t, args, "--print")
		})
	}
}

func TestBuildArgs_WithExtraArgs(t *testing.T) {
	verbose := "debug"
	args := BuildArgs(&config.Options{
		ExtraArgs: map[string]*string{
			"verbose":   nil,
			"log-level": &verbose,
		},
	})

	require.Equal(t, []string{
		"--print", "--output-format", "text",
		"--log-level", "debug",
		"--verbose",
	}, args)
}

func TestBuildEnvironment_EnvVarsPassedToSubprocess(t *testing.T) {
	env := BuildEnvironment(&config.Options{
		Env: map[string]string{"MY_VAR": "value"},
	})

	require.True(t, slices.Contains(env, "MY_VAR=value"))
	require.True(t, slices.Contains(env, "CLAUDE_CODE_ENTRYPOINT=sdk-go"))
	require.True(t, slices.Contains(env, "CLAUDIFY_VERSION="+Version))
}

func TestBuildCommand(t *testing.T) {
	cmd := BuildCommand(&config.Options{ModelID: "haiku"})

	require.Contains(t, cmd.Args, "haiku")
	require.NotEmpty(t, cmd.Env)
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"2.1.0", "1.0.0", 1},
		{"0.9.9", "1.0.0", -1},
		{"1.10.0", "1.9.0", 1},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, compareVersions(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
	}
}
