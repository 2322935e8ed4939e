package domain

import "context"

type tokenUsageKey struct{}

// TokenUsage collects provider token spend for a single request. The request
// middleware puts a mutable pointer into the context; embedder and generation
// decorators write into it; the handler reads it for response headers and the
// wide-event log line picks it up at the end.
type TokenUsage struct {
	TotalTokens int
	Used        bool // true if a provider was called, even on a cache hit with 0 tokens
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *TokenUsage) {
	u := &TokenUsage{}
	return context.WithValue(ctx, tokenUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *TokenUsage {
	u, _ := ctx.Value(tokenUsageKey{}).(*TokenUsage)
	return u
}

// AddTokens records consumed tokens.
func (u *TokenUsage) AddTokens(n int) {
	if u != nil {
		u.TotalTokens += n
		u.Used = true
	}
}
