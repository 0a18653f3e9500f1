package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/wagiedev/claudify/internal/message"
)

// ErrNoJSON indicates the result content held no decodable JSON value.
var ErrNoJSON = errors.New("no JSON found in response")

// CodeBlock is one fenced block. Language is empty when the fence had none.
type CodeBlock struct {
	Language string
	Code     string
}

var (
	jsonFencePattern   = regexp.MustCompile("(?is)```json\\n(.*?)\\n```")
	jsonObjectPattern  = regexp.MustCompile(`(?s)\{.*\}`)
	jsonArrayPattern   = regexp.MustCompile(`(?s)\[.*\]`)
	codeBlockPattern   = regexp.MustCompile("(?s)```(\\w+)?\\n(.*?)\\n```")
	fenceStripPattern  = regexp.MustCompile("(?s)```\\w*\\n(.*?)\\n```")
	fenceRemovePattern = regexp.MustCompile("(?s)```\\w*\\n.*?\\n```")
	inlineCodePattern  = regexp.MustCompile("`([^`]+)`")
	boldPattern        = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicPattern      = regexp.MustCompile(`\*([^*]+)\*`)
	headerPattern      = regexp.MustCompile(`(?m)^#+\s+(.+)$`)
	bulletPattern      = regexp.MustCompile(`(?m)^[ \t]*[-*+]\s+`)
	blankRunPattern    = regexp.MustCompile(`\n\s*\n`)
	urlPattern         = regexp.MustCompile(`https?://[^\s)]+`)
	listItemPattern    = regexp.MustCompile(`^\s*(?:[-*+]|\d+\.)\s+(.+)$`)
	numberPattern      = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\b`)
	truePattern        = regexp.MustCompile(`(?i)\b(?:true|yes|correct)\b`)
	falsePattern       = regexp.MustCompile(`(?i)\b(?:false|no|incorrect)\b`)
)

var filePathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:^|\s)(/[a-zA-Z0-9._\-/]+\.[a-zA-Z0-9]+)`),
	regexp.MustCompile(`(?:^|\s)(\.[a-zA-Z0-9._\-/]+\.[a-zA-Z0-9]+)`),
	regexp.MustCompile(`(?:^|\s)([a-zA-Z]:\\[a-zA-Z0-9._\-\\]+\.[a-zA-Z0-9]+)`),
	regexp.MustCompile(`(?:^|\s)(src/[a-zA-Z0-9._\-/]+)`),
	regexp.MustCompile(`(?:^|\s)(lib/[a-zA-Z0-9._\-/]+)`),
	regexp.MustCompile(`(?:^|\s)(dist/[a-zA-Z0-9._\-/]+)`),
}

var summaryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:summary|conclusion|in summary|to summarize|overview):\s*([^.\n]+(?:\.[^.\n]+)*)`),
	regexp.MustCompile(`(?i)(?:in conclusion|to conclude|finally)[:,]?\s*([^.\n]+(?:\.[^.\n]+)*)`),
}

// maxSummaryParagraph bounds the first-paragraph fallback of Summary.
const maxSummaryParagraph = 500

// Content returns the text of the result's last message.
func Content(r *message.ExecutionResult) string {
	return r.Content()
}

// JSON decodes the first JSON value embedded in the result into v: a
// ```json fence first, then an inline object, then an inline array. It
// reports whether a candidate decoded successfully.
func JSON(r *message.ExecutionResult, v any) bool {
	raw, ok := findJSON(Content(r))
	if !ok {
		return false
	}

	return json.Unmarshal(raw, v) == nil
}

// JSONWithSchema is JSON with the decoded value validated against schema
// before it is stored in v.
func JSONWithSchema(r *message.ExecutionResult, schema *jsonschema.Schema, v any) error {
	raw, ok := findJSON(Content(r))
	if !ok {
		return ErrNoJSON
	}

	resolved, err := schema.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return fmt.Errorf("resolve schema: %w", err)
	}

	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return fmt.Errorf("decode JSON: %w", err)
	}

	if err := resolved.Validate(instance); err != nil {
		return fmt.Errorf("validate JSON: %w", err)
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode JSON: %w", err)
	}

	return nil
}

func findJSON(content string) ([]byte, bool) {
	if content == "" {
		return nil, false
	}

	var candidates []string

	if m := jsonFencePattern.FindStringSubmatch(content); m != nil {
		candidates = append(candidates, m[1])
	}

	if m := jsonObjectPattern.FindString(content); m != "" {
		candidates = append(candidates, m)
	}

	if m := jsonArrayPattern.FindString(content); m != "" {
		candidates = append(candidates, m)
	}

	for _, c := range candidates {
		if json.Valid([]byte(c)) {
			return []byte(c), true
		}
	}

	return nil, false
}

// CodeBlocks returns every fenced code block in order.
func CodeBlocks(r *message.ExecutionResult) []CodeBlock {
	matches := codeBlockPattern.FindAllStringSubmatch(Content(r), -1)
	if len(matches) == 0 {
		return nil
	}

	blocks := make([]CodeBlock, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, CodeBlock{Language: m[1], Code: strings.TrimSpace(m[2])})
	}

	return blocks
}

// CodeBlocksByLanguage returns the code of blocks fenced with language.
func CodeBlocksByLanguage(r *message.ExecutionResult, language string) []string {
	var out []string

	for _, b := range CodeBlocks(r) {
		if b.Language == language {
			out = append(out, b.Code)
		}
	}

	return out
}

// Markdown returns the content with code fences unwrapped.
func Markdown(r *message.ExecutionResult) string {
	return strings.TrimSpace(fenceStripPattern.ReplaceAllString(Content(r), "${1}"))
}

// Text returns the content with markdown formatting removed.
func Text(r *message.ExecutionResult) string {
	s := Content(r)
	if s == "" {
		return ""
	}

	s = fenceRemovePattern.ReplaceAllString(s, "")
	s = inlineCodePattern.ReplaceAllString(s, "${1}")
	s = boldPattern.ReplaceAllString(s, "${1}")
	s = italicPattern.ReplaceAllString(s, "${1}")
	s = headerPattern.ReplaceAllString(s, "${1}")
	s = bulletPattern.ReplaceAllString(s, "")
	s = blankRunPattern.ReplaceAllString(s, "\n")

	return strings.TrimSpace(s)
}

// FilePaths returns distinct path-like tokens in first-seen order.
func FilePaths(r *message.ExecutionResult) []string {
	content := Content(r)

	var (
		out  []string
		seen = make(map[string]struct{})
	)

	for _, re := range filePathPatterns {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			if _, ok := seen[m[1]]; ok {
				continue
			}

			seen[m[1]] = struct{}{}
			out = append(out, m[1])
		}
	}

	return out
}

// URLs returns every http(s) URL in the content.
func URLs(r *message.ExecutionResult) []string {
	return urlPattern.FindAllString(Content(r), -1)
}

// List returns the items of bulleted and numbered lists.
func List(r *message.ExecutionResult) []string {
	var items []string

	for line := range strings.SplitSeq(Content(r), "\n") {
		if m := listItemPattern.FindStringSubmatch(line); m != nil {
			items = append(items, strings.TrimSpace(m[1]))
		}
	}

	return items
}

// Summary returns text following an explicit summary marker, or else the
// first paragraph when it is short enough to serve as one.
func Summary(r *message.ExecutionResult) (string, bool) {
	content := Content(r)
	if content == "" {
		return "", false
	}

	for _, re := range summaryPatterns {
		if m := re.FindStringSubmatch(content); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}

	for p := range strings.SplitSeq(content, "\n\n") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if len([]rune(p)) <= maxSummaryParagraph {
			return p, true
		}

		break
	}

	return "", false
}

// Number returns the first decimal number in the content.
func Number(r *message.ExecutionResult) (float64, bool) {
	m := numberPattern.FindStringSubmatch(Content(r))
	if m == nil {
		return 0, false
	}

	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}

	return v, true
}

// Boolean interprets an affirmative or negative answer. The earliest
// matching word decides.
func Boolean(r *message.ExecutionResult) (value, ok bool) {
	content := Content(r)

	t := truePattern.FindStringIndex(content)
	f := falsePattern.FindStringIndex(content)

	switch {
	case t == nil && f == nil:
		return false, false
	case f == nil:
		return true, true
	case t == nil:
		return false, true
	default:
		return t[0] < f[0], true
	}
}
