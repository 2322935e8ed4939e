package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/domain/category"
	"github.com/kailas-cloud/askdex/internal/domain/recommend/request"
	"github.com/kailas-cloud/askdex/internal/domain/recommend/result"
	"github.com/kailas-cloud/askdex/internal/metrics"
)

const (
	// DefaultFetchFactor is the over-fetch multiplier applied before category filtering.
	DefaultFetchFactor = 4

	// DefaultMaxFetchRounds bounds how many times the over-fetch width doubles.
	DefaultMaxFetchRounds = 3

	// NoItemsReasoning marks a well-formed empty recommendation.
	NoItemsReasoning = "no items"
)

// Service ranks catalog items against a query vector.
//
// Category filtering happens after the KNN pass, so a selective filter can
// leave fewer than top_k survivors. The service compensates by over-fetching
// (k' = top_k * fetchFactor) and doubling k' until enough survivors are found
// or the whole index has been seen.
type Service struct {
	searcher       Searcher
	log            *zap.Logger
	fetchFactor    int
	maxFetchRounds int
}

// New creates a recommendation service over the given index.
func New(searcher Searcher) *Service {
	return &Service{
		searcher:       searcher,
		log:            zap.NewNop(),
		fetchFactor:    DefaultFetchFactor,
		maxFetchRounds: DefaultMaxFetchRounds,
	}
}

// WithLogger attaches a logger.
func (s *Service) WithLogger(log *zap.Logger) *Service {
	if log != nil {
		s.log = log
	}
	return s
}

// WithFetchFactor configures the over-fetch multiplier.
func (s *Service) WithFetchFactor(factor int) *Service {
	if factor > 0 {
		s.fetchFactor = factor
	}
	return s
}

// WithMaxFetchRounds configures how many doubling rounds run before
// falling back to a full scan.
func (s *Service) WithMaxFetchRounds(rounds int) *Service {
	if rounds > 0 {
		s.maxFetchRounds = rounds
	}
	return s
}

// Recommend returns up to req.TopK() items ranked by similarity.
// An empty index yields an empty result with zero confidence, not an error.
func (s *Service) Recommend(_ context.Context, req request.Request) (result.Result, error) {
	start := time.Now()
	defer func() {
		metrics.RecommendDuration.Observe(time.Since(start).Seconds())
	}()

	total := s.searcher.Len()
	if total == 0 {
		metrics.RecommendRequestsTotal.WithLabelValues("empty").Inc()
		return result.New(nil, req.Category(), 0, NoItemsReasoning), nil
	}

	scored, err := s.fetch(&req, total)
	if err != nil {
		metrics.RecommendRequestsTotal.WithLabelValues("error").Inc()
		return result.Result{}, fmt.Errorf("query index: %w", err)
	}

	if len(scored) > req.TopK() {
		scored = scored[:req.TopK()]
	}

	if len(scored) == 0 {
		metrics.RecommendRequestsTotal.WithLabelValues("empty").Inc()
		return result.New(nil, req.Category(), 0, NoItemsReasoning), nil
	}

	res := result.New(scored, resultCategory(&req, scored), confidence(scored), reasoning(&req, scored))

	s.log.Debug("Recommendation computed",
		zap.Int("items", res.Len()),
		zap.String("metric", string(req.Metric())),
		zap.Int("top_k", req.TopK()),
		zap.Float64("confidence", res.Confidence()),
	)
	metrics.RecommendRequestsTotal.WithLabelValues("ok").Inc()
	return res, nil
}

// fetch runs the KNN query, widening it when a category filter is set.
func (s *Service) fetch(req *request.Request, total int) ([]result.Scored, error) {
	if !req.HasCategoryFilter() {
		return s.searcher.Query(req.Vector(), req.TopK(), req.Metric())
	}

	k := req.TopK() * s.fetchFactor
	for round := 0; round < s.maxFetchRounds; round++ {
		if k > total {
			k = total
		}
		hits, err := s.searcher.Query(req.Vector(), k, req.Metric())
		if err != nil {
			return nil, err
		}
		matched := filterByCategory(hits, req.Category())
		if len(matched) >= req.TopK() || k == total {
			return matched, nil
		}
		k *= 2
	}

	// Rounds exhausted with unseen candidates remaining: scan everything
	// so a selective filter never silently truncates the result.
	hits, err := s.searcher.Query(req.Vector(), total, req.Metric())
	if err != nil {
		return nil, err
	}
	return filterByCategory(hits, req.Category()), nil
}

func filterByCategory(hits []result.Scored, cat category.Category) []result.Scored {
	matched := make([]result.Scored, 0, len(hits))
	for _, h := range hits {
		if h.Item().Category() == cat {
			matched = append(matched, h)
		}
	}
	return matched
}

// confidence is the mean similarity clamped to [0,1].
// Raw cosine scores can be negative; the aggregate stays bounded.
func confidence(scored []result.Scored) float64 {
	if len(scored) == 0 {
		return 0
	}
	var sum float64
	for _, sc := range scored {
		sum += sc.Score()
	}
	mean := sum / float64(len(scored))
	switch {
	case mean < 0:
		return 0
	case mean > 1:
		return 1
	}
	return mean
}

// resultCategory labels the result: the filter value when one was set,
// the single shared category otherwise, or Mixed.
func resultCategory(req *request.Request, scored []result.Scored) category.Category {
	if req.HasCategoryFilter() {
		return req.Category()
	}
	first := scored[0].Item().Category()
	for _, sc := range scored[1:] {
		if sc.Item().Category() != first {
			return category.Mixed
		}
	}
	return first
}

// reasoning renders a human-readable summary of the ranking.
func reasoning(req *request.Request, scored []result.Scored) string {
	minScore, maxScore := scored[0].Score(), scored[0].Score()
	var sum float64
	counts := make(map[category.Category]int)
	for _, sc := range scored {
		v := sc.Score()
		sum += v
		if v < minScore {
			minScore = v
		}
		if v > maxScore {
			maxScore = v
		}
		counts[sc.Item().Category()]++
	}
	avg := sum / float64(len(scored))

	var b strings.Builder
	fmt.Fprintf(&b, "%d items (metric=%s, k=%d): similarity avg=%.3f min=%.3f max=%.3f",
		len(scored), req.Metric(), req.TopK(), avg, minScore, maxScore)

	parts := make([]string, 0, len(counts))
	for _, c := range category.All() {
		if n := counts[c]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", c, n))
		}
	}
	if len(parts) > 0 {
		b.WriteString("; categories: ")
		b.WriteString(strings.Join(parts, ", "))
	}
	return b.String()
}
