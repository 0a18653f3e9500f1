// Command claudify runs prompts through the claude CLI, reports provider
// health and hosts providers as an MCP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/wagiedev/claudify"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		if hint := claudify.HintOf(err); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}

		stop()
		os.Exit(1)
	}
}
