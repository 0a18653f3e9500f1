// Package claudify executes requests against the claude command-line coding
// assistant and returns structured results.
//
// Each request spawns the claude CLI as a subprocess, feeds it a formatted
// prompt on stdin and parses its text or JSON output into an ExecutionResult.
// Providers wrap that process behind a lifecycle (Initialize, Authenticate,
// Execute, Dispose) so several can be held by a Manager.
//
// # Basic Usage
//
// For a one-shot request, use Query:
//
//	ctx := context.Background()
//	result, err := claudify.Query(ctx, "What is 2+2?",
//	    claudify.WithModel("sonnet"),
//	    claudify.WithWorkspace("/path/to/project"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println(result.Content())
//
// # Streaming
//
// QueryStream yields a result per update. Each result carries everything
// produced so far:
//
//	for result, err := range claudify.QueryStream(ctx, "Explain this repo") {
//	    if err != nil {
//	        return err
//	    }
//	    render(result.Content())
//	}
//
// # Sessions
//
// Follow-up requests can continue the most recent conversation in a
// workspace, or resume a specific session:
//
//	first, _ := claudify.Query(ctx, "Remember the number 42", claudify.WithWorkspace(dir))
//	next, _ := claudify.Query(ctx, "What number?",
//	    claudify.WithWorkspace(dir),
//	    claudify.WithSessionID(first.Metadata.SessionID),
//	)
//
// # Providers
//
// Long-lived programs hold providers in a Manager:
//
//	mgr := claudify.NewManager(claudify.WithLogger(log))
//	defer mgr.Dispose(ctx)
//
//	if _, err := mgr.AddProvider(ctx, claudify.ClaudeCodeConfig()); err != nil {
//	    return err
//	}
//
//	result, err := mgr.ExecuteWithBest(ctx, claudify.NewRequest("Hello"))
//
// # Error Handling
//
// Failures are categorized into a closed set of kinds:
//
//	result, err := claudify.Query(ctx, prompt)
//	if err != nil {
//	    if _, ok := errors.AsType[*claudify.NotFoundError](err); ok {
//	        log.Fatal("install the claude CLI first")
//	    }
//	    log.Fatalf("%v\n%s", err, claudify.HintOf(err))
//	}
//
// # Mock Mode
//
// Setting CLAUDE_CODE_MOCK=true, or passing WithMock(true), answers every
// request with a canned reply without starting a subprocess.
package claudify
