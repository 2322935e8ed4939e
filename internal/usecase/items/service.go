package items

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/domain"
	dombatch "github.com/kailas-cloud/askdex/internal/domain/batch"
	"github.com/kailas-cloud/askdex/internal/domain/item"
	"github.com/kailas-cloud/askdex/internal/metrics"
)

// MaxBatchSize is the maximum number of items per batch request.
const MaxBatchSize = 100

// Service handles batch item ingestion into the vector index with per-item
// error reporting. Items arriving without a vector are embedded from their
// text; items arriving without tags are tagged.
type Service struct {
	index        Indexer
	embed        Embedder
	tags         Tagger
	maxBatchSize int
	log          *zap.Logger
}

// New creates an item ingestion service. Embedder and tagger are optional;
// without an embedder, vectorless items are rejected per-item.
func New(index Indexer) *Service {
	return &Service{
		index:        index,
		maxBatchSize: MaxBatchSize,
		log:          zap.NewNop(),
	}
}

// WithEmbedder attaches an embedder for vectorless items.
func (s *Service) WithEmbedder(e Embedder) *Service {
	s.embed = e
	return s
}

// WithTagger attaches a tag extractor for untagged items.
func (s *Service) WithTagger(t Tagger) *Service {
	s.tags = t
	return s
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// WithLogger attaches a logger.
func (s *Service) WithLogger(log *zap.Logger) *Service {
	if log != nil {
		s.log = log
	}
	return s
}

// Add tags, vectorizes, and inserts items one by one, reporting a per-item
// outcome. Quota and rate-limit errors cascade: the remaining items fail
// with the same error instead of burning more provider calls.
func (s *Service) Add(ctx context.Context, batch []item.Item) []dombatch.Result {
	results := make([]dombatch.Result, len(batch))

	if len(batch) > s.maxBatchSize {
		for i, it := range batch {
			results[i] = dombatch.NewError(
				it.ID(),
				fmt.Errorf("batch size exceeds %d: %w", s.maxBatchSize, domain.ErrValidation),
			)
		}
		return results
	}

	added := 0
	for i := range batch {
		it := batch[i]

		if len(it.Tags()) == 0 && s.tags != nil {
			it = it.WithTags(s.tags.Extract(itemText(&it), 0))
		}

		if len(it.Vector()) == 0 {
			if s.embed == nil {
				results[i] = dombatch.NewError(
					it.ID(),
					fmt.Errorf("%w: item has no vector and no embedder is configured", domain.ErrValidation),
				)
				continue
			}
			cascade, err := s.vectorize(ctx, &it)
			if err != nil {
				results[i] = dombatch.NewError(it.ID(), err)
				if cascade {
					for j := i + 1; j < len(batch); j++ {
						results[j] = dombatch.NewError(batch[j].ID(), err)
					}
					break
				}
				continue
			}
		}

		if err := s.index.Add(it); err != nil {
			results[i] = dombatch.NewError(it.ID(), fmt.Errorf("index: %w", err))
			continue
		}

		results[i] = dombatch.NewOK(it.ID())
		added++
	}

	metrics.IndexItems.Set(float64(s.index.Len()))
	s.log.Debug("Items ingested",
		zap.Int("requested", len(batch)),
		zap.Int("added", added),
		zap.Int("index_size", s.index.Len()),
	)
	return results
}

// vectorize embeds the item text. Returns (cascade, error): cascade=true
// means quota/rate-limit error, skip remaining items.
func (s *Service) vectorize(ctx context.Context, it *item.Item) (bool, error) {
	res, err := s.embed.Embed(ctx, itemText(it))
	if err != nil {
		cascade := errors.Is(err, domain.ErrTokenQuotaExceeded) ||
			errors.Is(err, domain.ErrRateLimited)
		return cascade, fmt.Errorf("vectorize: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)
	*it = it.WithVector(res.Embedding)
	return false, nil
}

// itemText is the canonical embed-and-tag text for an item.
func itemText(it *item.Item) string {
	if it.Description() == "" {
		return it.Title()
	}
	return it.Title() + ". " + it.Description()
}
