// Package subprocess runs the claude CLI as a child process.
//
// A Manager spawns one process per call. Input is written to stdin, stdout is
// collected (Execute) or streamed (ExecuteStream), and stderr is buffered with
// Bun source-context lines stripped. Each process runs under a timeout; when
// it expires or the caller cancels, the process receives SIGTERM and is
// killed after a grace period.
package subprocess
