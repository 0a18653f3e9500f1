// Package format turns a conversation into the text sent to the claude CLI.
//
// The CLI keeps its own conversation history, so only the most recent user
// message is forwarded. Optional context (system prompt, workspace, task) can
// be prepended as a preamble for fresh sessions.
package format

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/wagiedev/claudify/internal/message"
)

// MaxContentLength is the largest message content, in characters, that
// Validate accepts.
const MaxContentLength = 100_000

// Context is optional framing for a request.
type Context struct {
	SystemPrompt  string
	WorkspacePath string
	Task          string
	// Continuity is set when the request continues an earlier session; the
	// CLI already holds the framing then, so no preamble is emitted.
	Continuity bool
}

func (c Context) empty() bool {
	return c.SystemPrompt == "" && c.WorkspacePath == "" && c.Task == ""
}

// Format returns the prompt for the CLI: the content of the most recent user
// message, or "" when there is none. A preamble built from c is prepended for
// fresh sessions.
func Format(messages []message.Message, c Context) string {
	prompt, ok := lastUser(messages)
	if !ok {
		return ""
	}

	if c.Continuity || c.empty() {
		return prompt
	}

	var b strings.Builder

	if c.SystemPrompt != "" {
		fmt.Fprintf(&b, "System: %s\n", c.SystemPrompt)
	}

	if c.WorkspacePath != "" {
		fmt.Fprintf(&b, "Workspace: %s\n", c.WorkspacePath)
	}

	if c.Task != "" {
		fmt.Fprintf(&b, "Task: %s\n", c.Task)
	}

	b.WriteString("\n")
	b.WriteString(prompt)

	return b.String()
}

func lastUser(messages []message.Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if m, ok := messages[i].(*message.UserMessage); ok {
			return m.Content, true
		}
	}

	return "", false
}

// ValidationError describes one problem found by Validate. Index is -1 for
// problems with the conversation as a whole.
type ValidationError struct {
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return e.Reason
	}

	return fmt.Sprintf("message %d: %s", e.Index, e.Reason)
}

// Validate checks messages for CLI compatibility and returns every problem
// found. An empty result means the conversation is valid.
func Validate(messages []message.Message) []error {
	if len(messages) == 0 {
		return []error{&ValidationError{Index: -1, Reason: "at least one message is required"}}
	}

	var errs []error

	for i, m := range messages {
		if m == nil {
			errs = append(errs, &ValidationError{Index: i, Reason: "message is nil"})

			continue
		}

		switch m.MessageType() {
		case message.TypeUser, message.TypeAssistant, message.TypeSystem:
		default:
			errs = append(errs, &ValidationError{
				Index:  i,
				Reason: fmt.Sprintf("invalid role %q", m.MessageType()),
			})

			continue
		}

		content := message.Text(m)
		if content == "" {
			errs = append(errs, &ValidationError{Index: i, Reason: "content must be a non-empty string"})

			continue
		}

		if utf8.RuneCountInString(content) > MaxContentLength {
			errs = append(errs, &ValidationError{
				Index:  i,
				Reason: "content exceeds maximum length of 100,000 characters",
			})
		}
	}

	return errs
}

// Contextualize returns messages with system messages for the framing in c
// prepended. The input slice is not modified.
func Contextualize(messages []message.Message, c Context) []message.Message {
	var sessionID message.SessionID
	if len(messages) > 0 && messages[0] != nil {
		sessionID = messages[0].Meta().SessionID
	}

	out := make([]message.Message, 0, len(messages)+3)

	if c.SystemPrompt != "" {
		out = append(out, message.NewSystem(c.SystemPrompt, sessionID))
	}

	if c.WorkspacePath != "" {
		out = append(out, message.NewSystem(fmt.Sprintf(
			"You are working in the directory: %s. Please consider the project structure and existing files when providing responses.",
			c.WorkspacePath,
		), sessionID))
	}

	if c.Task != "" {
		out = append(out, message.NewSystem("Current task: "+c.Task, sessionID))
	}

	return append(out, messages...)
}

// LastAssistant returns the content of the most recent assistant message.
func LastAssistant(messages []message.Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if m, ok := messages[i].(*message.AssistantMessage); ok {
			return m.Content, true
		}
	}

	return "", false
}

// RenderTranscript renders messages as "Role: content" lines, one per
// message, skipping nil entries and init and result markers.
func RenderTranscript(messages []message.Message) string {
	lines := make([]string, 0, len(messages))

	for _, m := range messages {
		if m == nil {
			continue
		}

		var role string

		switch m.MessageType() {
		case message.TypeAssistant:
			role = "Assistant"
		case message.TypeSystem:
			role = "System"
		case message.TypeError:
			role = "Error"
		case message.TypeUser:
			role = "Human"
		default:
			continue
		}

		lines = append(lines, role+": "+message.Text(m))
	}

	return strings.Join(lines, "\n")
}
