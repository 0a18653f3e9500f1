package claudify

import (
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/wagiedev/claudify/internal/parse"
)

// Helpers that pull structured data out of a result's text.

// ErrNoJSON indicates a result held no decodable JSON value.
var ErrNoJSON = parse.ErrNoJSON

// CodeBlock is one fenced code block.
type CodeBlock = parse.CodeBlock

// ExtractJSON decodes the first JSON value embedded in the result into v and
// reports whether one was found.
func ExtractJSON(r *ExecutionResult, v any) bool {
	return parse.JSON(r, v)
}

// ExtractJSONWithSchema is ExtractJSON with the value validated against
// schema before it is decoded into v.
//
//	schema, _ := jsonschema.For[Plan](nil)
//	var plan Plan
//	if err := claudify.ExtractJSONWithSchema(result, schema, &plan); err != nil {
//	    return err
//	}
func ExtractJSONWithSchema(r *ExecutionResult, schema *jsonschema.Schema, v any) error {
	return parse.JSONWithSchema(r, schema, v)
}

// ExtractCodeBlocks returns every fenced code block in order.
func ExtractCodeBlocks(r *ExecutionResult) []CodeBlock {
	return parse.CodeBlocks(r)
}

// ExtractCode returns the code of every block fenced with language.
func ExtractCode(r *ExecutionResult, language string) []string {
	return parse.CodeBlocksByLanguage(r, language)
}

// ExtractText returns the result with markdown formatting removed.
func ExtractText(r *ExecutionResult) string {
	return parse.Text(r)
}

// ExtractFilePaths returns the file paths mentioned in the result.
func ExtractFilePaths(r *ExecutionResult) []string {
	return parse.FilePaths(r)
}

// ExtractURLs returns the http(s) URLs mentioned in the result.
func ExtractURLs(r *ExecutionResult) []string {
	return parse.URLs(r)
}

// ExtractList returns the bulleted or numbered list items in the result.
func ExtractList(r *ExecutionResult) []string {
	return parse.List(r)
}

// ExtractSummary returns a summary sentence or the first paragraph.
func ExtractSummary(r *ExecutionResult) (string, bool) {
	return parse.Summary(r)
}

// ExtractNumber returns the first number in the result.
func ExtractNumber(r *ExecutionResult) (float64, bool) {
	return parse.Number(r)
}

// ExtractBoolean interprets the result as a yes/no answer.
func ExtractBoolean(r *ExecutionResult) (value, ok bool) {
	return parse.Boolean(r)
}

// ExtractMarkdown returns the result with code fences unwrapped.
func ExtractMarkdown(r *ExecutionResult) string {
	return parse.Markdown(r)
}
