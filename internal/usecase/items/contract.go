package items

import (
	"context"

	"github.com/kailas-cloud/askdex/internal/domain"
	"github.com/kailas-cloud/askdex/internal/domain/item"
)

// Indexer inserts items into the vector index.
type Indexer interface {
	Add(items ...item.Item) error
	Len() int
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Tagger assigns topical tags to item text.
type Tagger interface {
	Extract(text string, maxTags int) []string
}
