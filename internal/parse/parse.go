// Package parse normalizes claude CLI output into structured responses and
// extracts structured data from finished results.
package parse

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
)

// Response is the normalized form of one CLI invocation's stdout.
type Response struct {
	Content  string
	Metadata Metadata
	// IsError is set when the CLI reported a failed turn in its JSON output.
	IsError bool
}

// Parser converts raw CLI output into a Response.
type Parser struct {
	log       *slog.Logger
	extractor MetadataExtractor
}

// NewParser creates a Parser. A nil extractor selects PatternExtractor.
func NewParser(log *slog.Logger, extractor MetadataExtractor) *Parser {
	if extractor == nil {
		extractor = PatternExtractor{}
	}

	return &Parser{
		log:       log.With("component", "response_parser"),
		extractor: extractor,
	}
}

// cliLine is the subset of a JSON output line the parser understands: the
// legacy assistant_message shape and the result shape emitted by
// --output-format json.
//
//nolint:tagliatelle // Claude CLI uses snake_case
type cliLine struct {
	Type         string   `json:"type"`
	Content      string   `json:"content"`
	Result       *string  `json:"result"`
	IsError      bool     `json:"is_error"`
	DurationMs   *float64 `json:"duration_ms"`
	NumTurns     *int     `json:"num_turns"`
	SessionID    string   `json:"session_id"`
	TotalCostUSD *float64 `json:"total_cost_usd"`
	Model        string   `json:"model"`
	Usage        *struct {
		InputTokens  *int `json:"input_tokens"`
		OutputTokens *int `json:"output_tokens"`
	} `json:"usage"`
}

// Parse interprets output. JSON lines are tried first; otherwise the trimmed
// output is taken literally. Metadata is always extracted from the raw text
// and then overlaid with anything the JSON line reported.
func (p *Parser) Parse(output string) Response {
	meta := p.extractor.Extract(output)

	if resp, ok := p.parseJSON(output, meta); ok {
		return resp
	}

	return Response{
		Content:  strings.TrimSpace(output),
		Metadata: meta,
	}
}

func (p *Parser) parseJSON(output string, meta Metadata) (Response, bool) {
	for line := range strings.SplitSeq(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "{") {
			continue
		}

		var parsed cliLine
		if err := json.Unmarshal([]byte(line), &parsed); err != nil {
			p.log.Debug("Skipping non-JSON line", "error", err)

			continue
		}

		switch parsed.Type {
		case "assistant_message":
			if parsed.Content == "" {
				continue
			}

			return Response{Content: parsed.Content, Metadata: meta}, true
		case "result":
			if parsed.Result == nil {
				continue
			}

			return Response{
				Content:  *parsed.Result,
				Metadata: overlay(meta, &parsed),
				IsError:  parsed.IsError,
			}, true
		}
	}

	return Response{}, false
}

func overlay(meta Metadata, l *cliLine) Metadata {
	if l.Model != "" {
		meta.Model = l.Model
	}

	if l.TotalCostUSD != nil {
		meta.CostUSD = l.TotalCostUSD
	}

	if l.DurationMs != nil {
		meta.DurationMs = l.DurationMs
	}

	if l.NumTurns != nil {
		meta.Turns = l.NumTurns
	}

	if l.SessionID != "" {
		meta.SessionID = l.SessionID
	}

	if l.Usage != nil {
		if l.Usage.InputTokens != nil {
			meta.PromptTokens = l.Usage.InputTokens
		}

		if l.Usage.OutputTokens != nil {
			meta.CompletionTokens = l.Usage.OutputTokens
		}

		meta.TotalTokens = total(meta.PromptTokens, meta.CompletionTokens)
	}

	return meta
}

// Validation errors reported by Validate.
var (
	ErrEmptyContent     = errors.New("response content must be a non-empty string")
	ErrNegativeCost     = errors.New("cost must be a non-negative number")
	ErrNegativeDuration = errors.New("duration must be a non-negative number")
)

// Validate checks a parsed response and returns every problem found.
func Validate(r Response) []error {
	var errs []error

	if strings.TrimSpace(r.Content) == "" {
		errs = append(errs, ErrEmptyContent)
	}

	if r.Metadata.CostUSD != nil && *r.Metadata.CostUSD < 0 {
		errs = append(errs, ErrNegativeCost)
	}

	if r.Metadata.DurationMs != nil && *r.Metadata.DurationMs < 0 {
		errs = append(errs, ErrNegativeDuration)
	}

	return errs
}
