package domain

import "context"

// ChatResult is one chat completion with provider usage.
type ChatResult struct {
	Text         string
	FinishReason string
	TotalTokens  int
}

// ChatCompleter produces chat completions for answer generation.
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string) (ChatResult, error)
}
