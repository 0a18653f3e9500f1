package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wagiedev/claudify"
)

var errNoPrompt = stderrors.New("no prompt given; pass it as an argument or on stdin")

type runFlags struct {
	model      string
	workspace  string
	timeout    time.Duration
	cont       bool
	session    string
	resumeLast bool
	provider   string
	stream     bool
	json       bool
	render     bool
	system     string
}

func newRunCmd(a *app) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run [prompt]",
		Short: "Send a prompt and print the reply",
		Long: `Send a prompt to the claude CLI and print the reply.

The prompt is taken from the arguments, or read from stdin when none are
given. Replies are rendered as markdown when stdout is a terminal.`,
		Example: `  claudify run "Summarize this repository" --workspace .
  git diff | claudify run --model opus
  claudify run --continue "And the tests?"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("render") {
				f.render = isTerminal(cmd.OutOrStdout())
			}

			return a.run(cmd, prompt, &f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.model, "model", "m", "", "model id or alias (sonnet, opus, haiku)")
	flags.StringVarP(&f.workspace, "workspace", "w", "", "working directory for the CLI")
	flags.DurationVar(&f.timeout, "timeout", 0, "request timeout (default from provider config)")
	flags.BoolVarP(&f.cont, "continue", "c", false, "continue the most recent conversation")
	flags.StringVar(&f.session, "session", "", "resume the given session id")
	flags.BoolVar(&f.resumeLast, "resume-last", false, "resume the most recent session, failing if there is none")
	flags.StringVar(&f.provider, "provider", "", "provider id to use (default: first healthy)")
	flags.BoolVar(&f.stream, "stream", false, "print output as it arrives")
	flags.BoolVar(&f.json, "json", false, "print the full result as JSON")
	flags.BoolVar(&f.render, "render", false, "render markdown (default when stdout is a terminal)")
	flags.StringVar(&f.system, "system-prompt", "", "instructions prepended to a new conversation")

	return cmd
}

func (a *app) run(cmd *cobra.Command, prompt string, f *runFlags) error {
	ctx := cmd.Context()

	mgr, err := a.openManager(ctx)
	if err != nil {
		return err
	}
	defer a.closeManager(ctx, mgr)

	opts := []claudify.Option{
		claudify.WithModel(f.model),
		claudify.WithWorkspace(f.workspace),
		claudify.WithTimeout(f.timeout),
		claudify.WithSessionID(claudify.SessionID(f.session)),
		claudify.WithSystemPrompt(f.system),
	}

	if f.cont {
		opts = append(opts, claudify.WithContinueSession())
	}

	if f.resumeLast {
		opts = append(opts, claudify.WithResumeLastSession())
	}

	if f.json {
		opts = append(opts, claudify.WithJSONOutput())
	}

	req := claudify.NewRequest(prompt, opts...)

	var p claudify.Provider

	if f.provider != "" {
		var ok bool

		p, ok = mgr.Provider(f.provider)
		if !ok {
			return &claudify.ConfigurationError{ProviderID: f.provider, Message: "provider not configured"}
		}
	} else {
		p, err = mgr.Best(ctx)
		if err != nil {
			return err
		}
	}

	a.log.Debug("running prompt", "provider", p.ID(), "stream", f.stream)

	out := cmd.OutOrStdout()

	if f.stream {
		return streamTo(out, p.ExecuteStream(ctx, req))
	}

	result, err := p.Execute(ctx, req)
	if err != nil {
		return err
	}

	if f.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		return enc.Encode(result)
	}

	content := result.Content()

	if f.render {
		rendered, err := renderMarkdown(content, terminalWidth(out))
		if err != nil {
			a.log.Debug("markdown rendering failed", "error", err)
		} else {
			content = rendered
		}
	}

	_, err = fmt.Fprintln(out, strings.TrimRight(content, "\n"))

	return err
}

// streamTo prints the part of each cumulative result not printed before.
func streamTo(w io.Writer, results iter.Seq2[*claudify.ExecutionResult, error]) error {
	var printed string

	for result, err := range results {
		if err != nil {
			return err
		}

		content := result.Content()
		if len(content) <= len(printed) || !strings.HasPrefix(content, printed) {
			continue
		}

		if _, err := io.WriteString(w, content[len(printed):]); err != nil {
			return err
		}

		printed = content
	}

	if printed != "" && !strings.HasSuffix(printed, "\n") {
		_, err := io.WriteString(w, "\n")

		return err
	}

	return nil
}

// readPrompt joins args, or reads r when there are none.
func readPrompt(r io.Reader, args []string) (string, error) {
	prompt := strings.Join(args, " ")

	if prompt == "" && r != nil && !isTerminal(r) {
		data, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("read prompt from stdin: %w", err)
		}

		prompt = string(data)
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errNoPrompt
	}

	return prompt, nil
}
