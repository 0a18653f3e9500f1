package parse

import (
	"regexp"
	"strconv"
	"strings"
)

// Metadata is best-effort enrichment scraped from CLI output. Every field is
// optional: pointer fields are nil and strings are empty when not reported.
type Metadata struct {
	Model            string
	CostUSD          *float64
	DurationMs       *float64
	PromptTokens     *int
	CompletionTokens *int
	// TotalTokens is only set when both prompt and completion counts are.
	TotalTokens *int
	Turns       *int
	SessionID   string
}

// MetadataExtractor scrapes metadata from raw output.
type MetadataExtractor interface {
	Extract(output string) Metadata
}

var _ MetadataExtractor = PatternExtractor{}

var (
	modelPattern      = regexp.MustCompile(`(?i)model[:\s]+([^\n\r]+)`)
	costPattern       = regexp.MustCompile(`(?i)cost[:\s]+\$?([0-9.]+)`)
	durationPattern   = regexp.MustCompile(`(?i)duration[:\s]+([0-9.]+)\s*ms`)
	promptPattern     = regexp.MustCompile(`(?i)prompt_tokens[:\s]+([0-9]+)`)
	completionPattern = regexp.MustCompile(`(?i)completion_tokens[:\s]+([0-9]+)`)
)

// PatternExtractor scans text for "key: value" style annotations.
type PatternExtractor struct{}

// Extract implements MetadataExtractor.
func (PatternExtractor) Extract(output string) Metadata {
	var meta Metadata

	if m := modelPattern.FindStringSubmatch(output); m != nil {
		meta.Model = strings.TrimSpace(m[1])
	}

	meta.CostUSD = matchFloat(costPattern, output)
	meta.DurationMs = matchFloat(durationPattern, output)
	meta.PromptTokens = matchInt(promptPattern, output)
	meta.CompletionTokens = matchInt(completionPattern, output)
	meta.TotalTokens = total(meta.PromptTokens, meta.CompletionTokens)

	return meta
}

func matchFloat(re *regexp.Regexp, s string) *float64 {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}

	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}

	return &v
}

func matchInt(re *regexp.Regexp, s string) *int {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}

	v, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}

	return &v
}

func total(prompt, completion *int) *int {
	if prompt == nil || completion == nil {
		return nil
	}

	t := *prompt + *completion

	return &t
}

var metadataLinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^model:`),
	regexp.MustCompile(`(?i)^cost:`),
	regexp.MustCompile(`(?i)^duration:`),
	regexp.MustCompile(`(?i)^tokens:`),
	regexp.MustCompile(`(?i)^usage:`),
	regexp.MustCompile(`^\[.*\]$`),
}

var metadataLinePrefixes = []string{"✓", "❌", "━", "📋", "🔧", "💭"}

// IsMetadataLine reports whether a trimmed line is a status or annotation
// line rather than answer content.
func IsMetadataLine(line string) bool {
	for _, p := range metadataLinePrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}

	for _, re := range metadataLinePatterns {
		if re.MatchString(line) {
			return true
		}
	}

	return false
}
