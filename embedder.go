package askdex

import "context"

// Embedder converts text to vector embeddings. Required for text
// recommendation queries and for indexing items without vectors; engines
// built without one accept vector-only input.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}
