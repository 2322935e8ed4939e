// Package ingest turns raw source documents into indexed catalog items:
// documents are split into overlapping chunks, each chunk is tagged and
// embedded on a worker pool, and the resulting items are added to the
// vector index in one batch.
package ingest

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/tmc/langchaingo/textsplitter"
	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/domain"
	"github.com/kailas-cloud/askdex/internal/domain/category"
	"github.com/kailas-cloud/askdex/internal/domain/item"
)

// Chunking defaults.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100
)

// Document is one raw source document to ingest.
type Document struct {
	Title    string
	Text     string
	Category category.Category
}

// Report summarizes one ingestion run.
type Report struct {
	Documents int
	Chunks    int
	Indexed   int
	Failed    int
	Elapsed   time.Duration
}

// Indexer receives the built items.
type Indexer interface {
	Add(items ...item.Item) error
}

// Embedder vectorizes chunk text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Tagger extracts topical tags from chunk text.
type Tagger interface {
	Extract(text string, maxTags int) []string
}

// Pipeline orchestrates document chunking, enrichment, and indexing.
type Pipeline struct {
	index        Indexer
	embed        Embedder
	tags         Tagger
	pool         *ants.Pool
	chunkSize    int
	chunkOverlap int
	logger       *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent chunk processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithChunkSize sets the target chunk length in characters.
func WithChunkSize(size int) Option {
	return func(p *Pipeline) error {
		if size > 0 {
			p.chunkSize = size
		}
		return nil
	}
}

// WithChunkOverlap sets how many characters adjacent chunks share.
func WithChunkOverlap(overlap int) Option {
	return func(p *Pipeline) error {
		if overlap >= 0 {
			p.chunkOverlap = overlap
		}
		return nil
	}
}

// WithTagger attaches a tag extractor; chunks are indexed untagged without one.
func WithTagger(tags Tagger) Option {
	return func(p *Pipeline) error {
		p.tags = tags
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) error {
		if logger != nil {
			p.logger = logger
		}
		return nil
	}
}

// New creates an ingestion pipeline.
func New(index Indexer, embed Embedder, opts ...Option) (*Pipeline, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if embed == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		index:        index,
		embed:        embed,
		pool:         pool,
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		logger:       zap.NewNop(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Ingest chunks the documents, builds one item per chunk, and indexes the
// whole batch. Chunk-level embedding failures are logged and counted in
// the report without failing the run; an index rejection fails the run.
func (p *Pipeline) Ingest(ctx context.Context, docs []Document) (Report, error) {
	start := time.Now()
	report := Report{Documents: len(docs)}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(p.chunkSize),
		textsplitter.WithChunkOverlap(p.chunkOverlap),
	)

	type job struct {
		doc  *Document
		text string
	}
	var jobs []job
	for i := range docs {
		chunks, err := splitter.SplitText(docs[i].Text)
		if err != nil {
			p.logger.Warn("Document skipped: chunking failed",
				zap.String("title", docs[i].Title), zap.Error(err))
			report.Failed++
			continue
		}
		for _, c := range chunks {
			jobs = append(jobs, job{doc: &docs[i], text: c})
		}
	}
	report.Chunks = len(jobs)

	// Results land in per-chunk slots so index order stays the chunk
	// order regardless of pool scheduling.
	built := make([]item.Item, len(jobs))
	ok := make([]bool, len(jobs))

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)
	for i := range jobs {
		i := i
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			it, buildErr := p.buildItem(ctx, jobs[i].doc, jobs[i].text)
			if buildErr != nil {
				p.logger.Warn("Chunk skipped",
					zap.String("title", jobs[i].doc.Title), zap.Error(buildErr))
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			built[i] = it
			ok[i] = true
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			failed++
			mu.Unlock()
		}
	}
	wg.Wait()
	report.Failed += failed

	batch := make([]item.Item, 0, len(jobs))
	for i := range built {
		if ok[i] {
			batch = append(batch, built[i])
		}
	}
	if len(batch) == 0 {
		report.Elapsed = time.Since(start)
		return report, nil
	}

	if err := p.index.Add(batch...); err != nil {
		report.Elapsed = time.Since(start)
		return report, fmt.Errorf("index batch: %w", err)
	}
	report.Indexed = len(batch)
	report.Elapsed = time.Since(start)

	p.logger.Info("Ingestion finished",
		zap.Int("documents", report.Documents),
		zap.Int("chunks", report.Chunks),
		zap.Int("indexed", report.Indexed),
		zap.Int("failed", report.Failed),
		zap.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

func (p *Pipeline) buildItem(ctx context.Context, doc *Document, text string) (item.Item, error) {
	res, err := p.embed.Embed(ctx, text)
	if err != nil {
		return item.Item{}, fmt.Errorf("embed chunk: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)

	var tags []string
	if p.tags != nil {
		tags = p.tags.Extract(text, 0)
	}

	id := "chunk-" + uuid.NewString()
	it, err := item.New(id, doc.Title, text, doc.Category, tags, res.Embedding, 1.0)
	if err != nil {
		return item.Item{}, fmt.Errorf("build item: %w", err)
	}
	return it, nil
}

// Release frees the worker pool. The pipeline must not be used afterwards.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
