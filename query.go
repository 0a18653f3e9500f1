package claudify

import (
	"context"
	"iter"
)

// Query runs a one-shot request and returns its result.
//
// A provider is created and disposed around the call. For many requests,
// hold a provider with WithProvider or a Manager instead.
//
//	result, err := claudify.Query(ctx, "What is 2+2?", claudify.WithModel("haiku"))
func Query(ctx context.Context, prompt string, opts ...Option) (*ExecutionResult, error) {
	req := NewRequest(prompt, opts...)

	var result *ExecutionResult

	err := WithProvider(ctx, func(p Provider) error {
		var err error

		result, err = p.Execute(ctx, req)

		return err
	}, opts...)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// QueryStream runs a one-shot request and yields a result per update. Each
// result carries the full content produced so far. Breaking out of the loop
// terminates the CLI process.
//
//	for result, err := range claudify.QueryStream(ctx, "Write a haiku") {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Print("\r", result.Content())
//	}
func QueryStream(ctx context.Context, prompt string, opts ...Option) iter.Seq2[*ExecutionResult, error] {
	return func(yield func(*ExecutionResult, error) bool) {
		req := NewRequest(prompt, opts...)

		err := WithProvider(ctx, func(p Provider) error {
			for result, err := range p.ExecuteStream(ctx, req) {
				if !yield(result, err) {
					return nil
				}
			}

			return nil
		}, opts...)
		if err != nil {
			yield(nil, err)
		}
	}
}
