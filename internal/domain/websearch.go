package domain

import "context"

// WebSearchResult is one web search hit.
type WebSearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// WebSearcher queries an external web search service.
type WebSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]WebSearchResult, error)
}
