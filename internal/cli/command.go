package cli

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/wagiedev/claudify/internal/config"
)

// Version is reported to the CLI through the environment.
const Version = "0.1.0"

// Output formats accepted by --output-format.
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Command represents the CLI command to execute.
type Command struct {
	// Args are the command line arguments.
	Args []string

	// Env are the environment variables.
	Env []string
}

// BuildCommand builds both the arguments and environment for options.
func BuildCommand(options *config.Options) Command {
	return Command{
		Args: BuildArgs(options),
		Env:  BuildEnvironment(options),
	}
}

// BuildArgs constructs the CLI command arguments. The prompt is not part of
// the arguments; it is delivered on stdin.
//
// Continuation requests produce:
//
//	--continue [--model m] [--resume id]
//
// Everything else runs non-interactively:
//
//	--print [--model m] [--resume id] --output-format text|json
//
// ExtraArgs are appended last in name order.
func BuildArgs(options *config.Options) []string {
	var args []string

	continuation := options.Continuity()
	if continuation {
		args = append(args, "--continue")
	} else {
		args = append(args, "--print")
	}

	if options.ModelID != "" {
		args = append(args, "--model", options.ModelID)
	}

	if options.SessionID != "" {
		args = append(args, "--resume", options.SessionID)
	}

	if !continuation {
		format := OutputFormatText
		if options.JSONOutput {
			format = OutputFormatJSON
		}

		args = append(args, "--output-format", format)
	}

	for _, key := range slices.Sorted(maps.Keys(options.ExtraArgs)) {
		if value := options.ExtraArgs[key]; value != nil {
			args = append(args, "--"+key, *value)
		} else {
			args = append(args, "--"+key)
		}
	}

	return args
}

// BuildEnvironment constructs the environment variables for the CLI process.
func BuildEnvironment(options *config.Options) []string {
	// Start with current environment
	env := os.Environ()

	// Add SDK-specific environment variables
	env = append(env, "CLAUDIFY_VERSION="+Version)
	env = append(env, "CLAUDE_CODE_ENTRYPOINT=sdk-go")

	// Add or override with user-provided environment variables
	for _, key := range slices.Sorted(maps.Keys(options.Env)) {
		env = append(env, fmt.Sprintf("%s=%s", key, options.Env[key]))
	}

	return env
}
