package subprocess

import (
	"bytes"
	"strings"
	"sync"
)

// maxStderrBufferSize is the maximum size for the stderr buffer.
// Prevents unbounded memory growth from verbose CLI output.
const maxStderrBufferSize = 10 * 1024 * 1024 // 10MB

// maxStderrLineSize bounds an unterminated stderr line; longer runs are
// forwarded to the callback in pieces of this size.
const maxStderrLineSize = 1024 * 1024

// stderrBuffer collects process stderr up to maxStderrBufferSize and forwards
// every complete line to an optional callback. Lines are forwarded even after
// the buffer is full.
type stderrBuffer struct {
	mu       sync.Mutex
	buf      bytes.Buffer
	partial  []byte
	callback func(string)
}

func newStderrBuffer(callback func(string)) *stderrBuffer {
	return &stderrBuffer{callback: callback}
}

// Write implements io.Writer. It never fails.
func (s *stderrBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if room := maxStderrBufferSize - s.buf.Len(); room > 0 {
		s.buf.Write(p[:min(len(p), room)])
	}

	if s.callback == nil {
		return len(p), nil
	}

	s.partial = append(s.partial, p...)

	for {
		idx := bytes.IndexByte(s.partial, '\n')
		if idx < 0 {
			break
		}

		s.callback(strings.TrimRight(string(s.partial[:idx]), "\r"))
		s.partial = s.partial[idx+1:]
	}

	for len(s.partial) >= maxStderrLineSize {
		s.callback(string(s.partial[:maxStderrLineSize]))
		s.partial = s.partial[maxStderrLineSize:]
	}

	return len(p), nil
}

// String returns the collected output, flushing any unterminated last line
// to the callback.
func (s *stderrBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.callback != nil && len(s.partial) > 0 {
		s.callback(string(s.partial))
		s.partial = nil
	}

	return s.buf.String()
}

// cleanStderr parses and cleans stderr output from the CLI.
// Bun includes minified source context in error output which is not useful.
// This extracts just the error message and stack trace.
func cleanStderr(stderr string) string {
	if stderr == "" {
		return ""
	}

	var cleaned strings.Builder

	for line := range strings.SplitSeq(stderr, "\n") {
		// Skip Bun source context lines (format: "1234 | <minified code>")
		if isSourceContextLine(strings.TrimSpace(line)) {
			continue
		}

		if cleaned.Len() > 0 {
			cleaned.WriteString("\n")
		}

		cleaned.WriteString(line)
	}

	return strings.TrimSpace(cleaned.String())
}

// isSourceContextLine checks if a line is Bun's source code context.
// These lines have the format: "1234 | <code>" where 1234 is a line number.
func isSourceContextLine(line string) bool {
	pipeIdx := strings.Index(line, "|")
	if pipeIdx < 1 {
		return false
	}

	prefix := strings.TrimSpace(line[:pipeIdx])
	if prefix == "" {
		return false
	}

	for _, ch := range prefix {
		if ch < '0' || ch > '9' {
			return false
		}
	}

	return true
}
