package parse

import (
	"iter"
	"strings"
)

// Chunk is one content line recovered from streamed output.
type Chunk struct {
	Content string
	Index   int
	// Done marks the final element of a successful stream. It carries no content.
	Done bool
}

// ParseStream re-frames raw stdout chunks into content lines.
//
// A line is yielded as soon as its newline arrives; blank and metadata lines
// are dropped. The unterminated tail is flushed when src ends, followed by a
// Chunk with Done set. An error from src is yielded as-is and ends the
// sequence without a done marker.
func ParseStream(src iter.Seq2[string, error]) iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		var (
			buf   strings.Builder
			index int
		)

		emit := func(line string) bool {
			line = strings.TrimSpace(line)
			if line == "" || IsMetadataLine(line) {
				return true
			}

			ok := yield(Chunk{Content: line, Index: index}, nil)
			index++

			return ok
		}

		for raw, err := range src {
			if err != nil {
				yield(Chunk{}, err)

				return
			}

			buf.WriteString(raw)

			pending := buf.String()
			for {
				i := strings.IndexByte(pending, '\n')
				if i < 0 {
					break
				}

				if !emit(pending[:i]) {
					return
				}

				pending = pending[i+1:]
			}

			buf.Reset()
			buf.WriteString(pending)
		}

		if !emit(buf.String()) {
			return
		}

		yield(Chunk{Index: index, Done: true}, nil)
	}
}
