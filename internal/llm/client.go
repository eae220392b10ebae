// Package llm wraps the generative model used to draft repair plans. The
// planner only depends on the Client interface; the Gemini implementation
// lives here so it can be swapped for a fake in tests.
package llm

import "context"

// Client is the minimal completion interface the planner needs.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
