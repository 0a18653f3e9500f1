package message

import (
	"encoding/json"
	"time"
)

// ExecutionOptions tune a single request.
//
// Timeout is encoded on the wire as whole milliseconds.
type ExecutionOptions struct {
	ModelID           string        `json:"modelId,omitempty"`
	WorkspacePath     string        `json:"workspacePath,omitempty"`
	Timeout           time.Duration `json:"-"`
	ContinueSession   bool          `json:"continueSession,omitempty"`
	SessionID         SessionID     `json:"sessionId,omitempty"`
	ResumeLastSession bool          `json:"resumeLastSession,omitempty"`
	SystemPrompt      string        `json:"systemPrompt,omitempty"`
	Task              string        `json:"task,omitempty"`
	JSONOutput        bool          `json:"jsonOutput,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (o ExecutionOptions) MarshalJSON() ([]byte, error) {
	type alias ExecutionOptions

	return json.Marshal(struct {
		alias
		TimeoutMs int64 `json:"timeout,omitempty"`
	}{alias(o), o.Timeout.Milliseconds()})
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *ExecutionOptions) UnmarshalJSON(data []byte) error {
	type alias ExecutionOptions

	aux := struct {
		*alias
		TimeoutMs int64 `json:"timeout,omitempty"`
	}{alias: (*alias)(o)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	o.Timeout = time.Duration(aux.TimeoutMs) * time.Millisecond

	return nil
}

// Continuity reports whether the request asks to continue an earlier session.
func (o ExecutionOptions) Continuity() bool {
	return o.ContinueSession || o.ResumeLastSession
}

// ExecutionRequest is the input to a provider.
type ExecutionRequest struct {
	Messages Messages         `json:"messages"`
	Options  ExecutionOptions `json:"options"`
}

// Usage reports token consumption.
//
//nolint:tagliatelle // wire format uses snake_case
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ResultMetadata enriches an ExecutionResult. Optional fields are nil when
// the CLI output did not report them.
//
//nolint:tagliatelle // wire format uses snake_case
type ResultMetadata struct {
	DurationMs int64     `json:"duration_ms"`
	CostUSD    *float64  `json:"cost_usd,omitempty"`
	Turns      int       `json:"turns,omitempty"`
	Model      string    `json:"model,omitempty"`
	SessionID  SessionID `json:"session_id,omitempty"`
	Usage      *Usage    `json:"usage,omitempty"`
}

// ExecutionResult is the output of a provider. Messages is never empty when
// Success is true.
type ExecutionResult struct {
	Success  bool           `json:"success"`
	Messages Messages       `json:"messages"`
	Metadata ResultMetadata `json:"metadata"`
	Error    string         `json:"error,omitempty"`
}

// Content returns the text of the last message, or "" when there is none.
func (r *ExecutionResult) Content() string {
	if r == nil {
		return ""
	}

	last := r.Messages.Last()
	if last == nil {
		return ""
	}

	return Text(last)
}
