// Package recommendation answers catalog-style questions with ranked items,
// either pre-fetched by the caller or queried from the recommender.
package recommendation

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/askdex/internal/domain"
	"github.com/kailas-cloud/askdex/internal/domain/answer"
	"github.com/kailas-cloud/askdex/internal/domain/recommend/metric"
	"github.com/kailas-cloud/askdex/internal/domain/recommend/request"
	"github.com/kailas-cloud/askdex/internal/domain/recommend/result"
	"github.com/kailas-cloud/askdex/internal/domain/resolution"
)

// Name identifies the strategy in traces and metrics.
const Name = "recommendation"

// Recommender ranks catalog items for a query vector.
type Recommender interface {
	Recommend(ctx context.Context, req request.Request) (result.Result, error)
}

// Embedder vectorizes the query text when no candidates were pre-fetched.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Strategy turns ranked items into an answer. Candidates in the resolution
// context win over a fresh recommender query; with neither available the
// strategy answers at zero confidence.
type Strategy struct {
	rec       Recommender
	embed     Embedder
	threshold float64
	topK      int
}

// New creates a recommendation strategy with the given acceptance threshold.
// rec and embed may be nil when only pre-fetched candidates are expected.
func New(rec Recommender, embed Embedder, threshold float64) *Strategy {
	return &Strategy{rec: rec, embed: embed, threshold: threshold, topK: request.DefaultTopK}
}

// WithTopK configures how many items a fresh recommender query asks for.
func (s *Strategy) WithTopK(k int) *Strategy {
	if k > 0 {
		s.topK = k
	}
	return s
}

// Name implements resolution.Strategy.
func (s *Strategy) Name() string { return Name }

// Threshold implements resolution.Strategy.
func (s *Strategy) Threshold() float64 { return s.threshold }

// Execute implements resolution.Strategy.
func (s *Strategy) Execute(ctx context.Context, q resolution.Query) (answer.Answer, error) {
	if candidates := q.Context().Candidates; len(candidates) > 0 {
		return buildAnswer(candidates, meanScore(candidates)), nil
	}

	if s.rec == nil || s.embed == nil {
		return answer.New("", 0, answer.SourceRecommendation, nil), nil
	}

	emb, err := s.embed.Embed(ctx, q.Text())
	if err != nil {
		return answer.Answer{}, fmt.Errorf("vectorize query: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(emb.TotalTokens)

	req, err := request.New(emb.Embedding, "", s.topK, metric.Cosine)
	if err != nil {
		return answer.Answer{}, fmt.Errorf("build recommendation request: %w", err)
	}

	res, err := s.rec.Recommend(ctx, req)
	if err != nil {
		return answer.Answer{}, fmt.Errorf("recommend: %w", err)
	}
	if res.IsEmpty() {
		return answer.New("", 0, answer.SourceRecommendation, nil), nil
	}
	return buildAnswer(res.Scored(), res.Confidence()), nil
}

func buildAnswer(candidates []result.Scored, confidence float64) answer.Answer {
	var b strings.Builder
	b.WriteString("You might find these items relevant:\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %s (similarity %.2f)\n", i+1, c.Item().Title(), c.Score())
	}
	meta := map[string]string{"items": strconv.Itoa(len(candidates))}
	return answer.New(strings.TrimRight(b.String(), "\n"), confidence, answer.SourceRecommendation, meta)
}

// meanScore mirrors the recommender's confidence: mean similarity clamped
// to [0,1].
func meanScore(candidates []result.Scored) float64 {
	var sum float64
	for _, c := range candidates {
		sum += c.Score()
	}
	mean := sum / float64(len(candidates))
	switch {
	case mean < 0:
		return 0
	case mean > 1:
		return 1
	}
	return mean
}
