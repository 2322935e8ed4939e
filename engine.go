package askdex

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/askdex/internal/domain"
	dombatch "github.com/kailas-cloud/askdex/internal/domain/batch"
	"github.com/kailas-cloud/askdex/internal/domain/category"
	"github.com/kailas-cloud/askdex/internal/domain/item"
	"github.com/kailas-cloud/askdex/internal/domain/recommend/metric"
	"github.com/kailas-cloud/askdex/internal/domain/recommend/request"
	"github.com/kailas-cloud/askdex/internal/domain/recommend/result"
	"github.com/kailas-cloud/askdex/internal/domain/resolution"
	"github.com/kailas-cloud/askdex/internal/domain/tag"
	domusage "github.com/kailas-cloud/askdex/internal/domain/usage"
	"github.com/kailas-cloud/askdex/internal/index"
	"github.com/kailas-cloud/askdex/internal/strategy/recommendation"
	"github.com/kailas-cloud/askdex/internal/strategy/static"
	healthuc "github.com/kailas-cloud/askdex/internal/usecase/health"
	itemsuc "github.com/kailas-cloud/askdex/internal/usecase/items"
	recommenduc "github.com/kailas-cloud/askdex/internal/usecase/recommend"
	resolveuc "github.com/kailas-cloud/askdex/internal/usecase/resolve"
	tagginguc "github.com/kailas-cloud/askdex/internal/usecase/tagging"
	tokensuc "github.com/kailas-cloud/askdex/internal/usecase/tokens"
)

const (
	// defaultDimensions matches OpenAI text-embedding-3-small.
	defaultDimensions = 1536

	// defaultRecommendationThreshold is the acceptance bar of the built-in
	// recommendation answer strategy.
	defaultRecommendationThreshold = 0.6
)

// Внутренние интерфейсы для подмены в тестах.
type itemsUseCase interface {
	Add(ctx context.Context, batch []item.Item) []dombatch.Result
}

type recommendUseCase interface {
	Recommend(ctx context.Context, req request.Request) (result.Result, error)
}

type taggingUseCase interface {
	Extract(text string, maxTags int) []string
}

type resolveUseCase interface {
	Resolve(ctx context.Context, q resolution.Query) (resolution.Resolution, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

type usageUseCase interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}

// Engine is the in-process askdex entry point: an in-memory vector index
// with recommendation, tag extraction, and answer resolution on top. No
// network or database is involved; everything lives in the owning process.
type Engine struct {
	embed domain.Embedder

	itemsSvc     itemsUseCase
	recommendSvc recommendUseCase
	taggingSvc   taggingUseCase
	resolveSvc   resolveUseCase
	healthSvc    healthUseCase
	usageSvc     usageUseCase
	obs          *observer
}

// New assembles an Engine.
func New(opts ...Option) (*Engine, error) {
	cfg := &engineConfig{
		dimensions: defaultDimensions,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	idx, err := index.New(cfg.dimensions)
	if err != nil {
		return nil, fmt.Errorf("askdex: create index: %w", err)
	}

	dict := tag.DefaultDictionary()
	if cfg.dictionary != nil {
		extra, err := dictionaryFromPublic(*cfg.dictionary)
		if err != nil {
			return nil, err
		}
		dict = dict.Merge(extra)
	}
	taggingSvc := tagginguc.New(dict)
	if cfg.maxTags > 0 {
		taggingSvc = taggingSvc.WithMaxTags(cfg.maxTags)
	}

	var domEmb domain.Embedder
	if cfg.embedder != nil {
		domEmb = &embedderAdapter{inner: cfg.embedder}
	}

	itemsSvc := itemsuc.New(idx).WithTagger(taggingSvc)
	if domEmb != nil {
		itemsSvc = itemsSvc.WithEmbedder(domEmb)
	}
	if cfg.maxBatchSize > 0 {
		itemsSvc = itemsSvc.WithMaxBatchSize(cfg.maxBatchSize)
	}

	recommendSvc := recommenduc.New(idx)
	if cfg.fetchFactor > 0 {
		recommendSvc = recommendSvc.WithFetchFactor(cfg.fetchFactor)
	}

	// Порядок: пользовательские стратегии, затем встроенные. Статический
	// терминал замыкает цепочку всегда, поэтому Resolve тотален.
	chain := make([]resolution.Strategy, 0, len(cfg.strategies)+2)
	for _, s := range cfg.strategies {
		chain = append(chain, &strategyAdapter{inner: s})
	}
	if domEmb != nil {
		chain = append(chain, recommendation.New(recommendSvc, domEmb, defaultRecommendationThreshold))
	}
	chain = append(chain, static.New().WithResponse(cfg.defaultAnswer))

	resolveSvc, err := resolveuc.New(chain)
	if err != nil {
		return nil, fmt.Errorf("askdex: build resolver: %w", err)
	}

	return &Engine{
		embed:        domEmb,
		itemsSvc:     itemsSvc,
		recommendSvc: recommendSvc,
		taggingSvc:   taggingSvc,
		resolveSvc:   resolveSvc,
		healthSvc:    healthuc.New(nil, nil, idx),
		usageSvc:     tokensuc.NewUsageService(nil), // nil = unlimited mode (no budget tracking in-process)
		obs:          obs,
	}, nil
}

// Close releases resources held by the Engine. The in-memory engine holds
// no external connections, so Close is currently a no-op.
func (e *Engine) Close() {}

// AddItems indexes a batch of catalog items and reports a per-item outcome.
// A malformed item fails the whole call before anything is indexed; items
// without vectors are embedded when an embedder is configured, items without
// tags are tagged automatically.
func (e *Engine) AddItems(ctx context.Context, items []Item) (res []BatchResult, err error) {
	start := time.Now()
	defer func() { e.obs.observe("add_items", start, err) }()

	batch := make([]item.Item, len(items))
	for i, in := range items {
		batch[i], err = itemFromPublic(in)
		if err != nil {
			return nil, fmt.Errorf("askdex: item %d: %w", i, err)
		}
	}
	return fromBatchResults(e.itemsSvc.Add(ctx, batch)), nil
}

// Recommend ranks indexed items against the query. An empty index yields an
// empty recommendation with a "no items" reasoning, not an error.
func (e *Engine) Recommend(ctx context.Context, q RecommendQuery) (rec Recommendation, err error) {
	start := time.Now()
	defer func() { e.obs.observe("recommend", start, err) }()

	vector := q.Vector
	if len(vector) == 0 {
		if q.Text == "" {
			return Recommendation{}, fmt.Errorf("askdex: %w: query needs a vector or text", domain.ErrValidation)
		}
		if e.embed == nil {
			return Recommendation{}, fmt.Errorf("askdex: %w: text queries need an embedder (use WithEmbedder)", domain.ErrValidation)
		}
		embRes, embErr := e.embed.Embed(ctx, q.Text)
		if embErr != nil {
			return Recommendation{}, fmt.Errorf("askdex: embed query: %w", embErr)
		}
		vector = embRes.Embedding
	}

	topK := q.TopK
	if topK == 0 {
		topK = request.DefaultTopK
	}
	req, reqErr := request.New(vector, category.Category(q.Category), topK, metric.Metric(q.Metric))
	if reqErr != nil {
		return Recommendation{}, fmt.Errorf("askdex: %w", reqErr)
	}

	out, recErr := e.recommendSvc.Recommend(ctx, req)
	if recErr != nil {
		return Recommendation{}, fmt.Errorf("askdex: recommend: %w", recErr)
	}
	return Recommendation{
		Items:      scoredToPublic(out.Scored()),
		Category:   Category(out.Category()),
		Confidence: out.Confidence(),
		Reasoning:  out.Reasoning(),
	}, nil
}

// ExtractTags returns up to maxTags tags for the text; 0 means the engine
// default. The result is never empty: texts matching nothing fall back to a
// length-based tag.
func (e *Engine) ExtractTags(text string, maxTags int) []string {
	start := time.Now()
	defer func() { e.obs.observe("extract_tags", start, nil) }()

	return e.taggingSvc.Extract(text, maxTags)
}

// Resolve runs the strategy chain on the question and returns the winning
// answer with the full attempt trace.
func (e *Engine) Resolve(ctx context.Context, q Query) (res Resolution, err error) {
	start := time.Now()
	defer func() { e.obs.observe("resolve", start, err) }()

	rq, err := resolution.NewQuery(q.Text, resolution.Context{Metadata: q.Metadata})
	if err != nil {
		return Resolution{}, fmt.Errorf("askdex: %w", err)
	}
	inner, err := e.resolveSvc.Resolve(ctx, rq)
	if err != nil {
		return Resolution{}, fmt.Errorf("askdex: resolve: %w", err)
	}
	return resolutionFromInternal(&inner), nil
}

// Health checks the health of the engine components.
func (e *Engine) Health(ctx context.Context) HealthStatus {
	report := e.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
		Items:  report.Items,
	}
}

// Usage returns a token usage report for the given period. The in-process
// engine runs without a budget, so limits read as unlimited.
func (e *Engine) Usage(ctx context.Context, period UsagePeriod) UsageReport {
	start := time.Now()
	defer func() { e.obs.observe("usage", start, nil) }()

	report := e.usageSvc.GetReport(ctx, domusage.Period(period))
	m := report.Metrics()
	b := report.Budget()

	return UsageReport{
		Period:      UsagePeriod(report.Period()),
		PeriodStart: time.UnixMilli(report.PeriodStart()).UTC(),
		PeriodEnd:   time.UnixMilli(report.PeriodEnd()).UTC(),
		Metrics: UsageMetrics{
			ProviderRequests: m.ProviderRequests(),
			Tokens:           m.Tokens(),
			CostMillidollars: m.CostMillidollars(),
		},
		Budget: BudgetStatus{
			TokensLimit:     b.TokensLimit(),
			TokensRemaining: b.TokensRemaining(),
			IsExhausted:     b.IsExhausted(),
			ResetsAt:        time.UnixMilli(b.ResetsAt()).UTC(),
		},
	}
}

// embedderAdapter wraps a public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

func itemFromPublic(in Item) (item.Item, error) {
	confidence := in.Confidence
	if confidence == 0 {
		confidence = 1
	}
	return item.New(in.ID, in.Title, in.Description, category.Category(in.Category), in.Tags, in.Vector, confidence)
}

func fromBatchResults(in []dombatch.Result) []BatchResult {
	out := make([]BatchResult, len(in))
	for i, r := range in {
		out[i] = BatchResult{
			ID:  r.ID(),
			OK:  r.Status() == dombatch.StatusOK,
			Err: r.Err(),
		}
	}
	return out
}

func scoredToPublic(in []result.Scored) []ScoredItem {
	out := make([]ScoredItem, 0, len(in))
	for i := range in {
		it := in[i].Item()
		out = append(out, ScoredItem{
			ID:          it.ID(),
			Title:       it.Title(),
			Description: it.Description(),
			Category:    Category(it.Category()),
			Tags:        it.Tags(),
			Score:       in[i].Score(),
		})
	}
	return out
}

func resolutionFromInternal(in *resolution.Resolution) Resolution {
	ans := in.Answer()
	trace := in.Trace()
	attempts := make([]Attempt, 0, len(trace))
	for _, a := range trace {
		attempts = append(attempts, Attempt{
			Strategy:   a.Strategy(),
			Confidence: a.Confidence(),
			Accepted:   a.Accepted(),
			Err:        a.Err(),
		})
	}
	return Resolution{
		ID: in.ID(),
		Answer: Answer{
			Text:       ans.Text(),
			Confidence: ans.Confidence(),
			Source:     string(ans.Source()),
			Metadata:   ans.Metadata(),
		},
		Strategy: in.Strategy(),
		Trace:    attempts,
		Elapsed:  in.Elapsed(),
	}
}

func dictionaryFromPublic(d Dictionary) (tag.Dictionary, error) {
	cat := category.Category(d.Category)
	if cat == "" {
		cat = category.General
	}
	glossary := make([]tag.GlossaryEntry, 0, len(d.Glossary))
	for _, g := range d.Glossary {
		entry, err := tag.NewGlossaryEntry(g.Term, g.Tag, cat)
		if err != nil {
			return tag.Dictionary{}, fmt.Errorf("askdex: glossary entry %q: %w", g.Term, err)
		}
		glossary = append(glossary, entry)
	}
	buckets := make([]tag.Bucket, 0, len(d.Buckets))
	for _, b := range d.Buckets {
		bucket, err := tag.NewBucket(b.Tag, b.Keywords)
		if err != nil {
			return tag.Dictionary{}, fmt.Errorf("askdex: bucket %q: %w", b.Tag, err)
		}
		buckets = append(buckets, bucket)
	}
	return tag.NewDictionary(d.Vocabulary, glossary, buckets), nil
}
