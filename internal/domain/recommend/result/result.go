package result

import (
	"github.com/kailas-cloud/askdex/internal/domain/category"
	"github.com/kailas-cloud/askdex/internal/domain/item"
)

// Scored pairs an item with its similarity score.
type Scored struct {
	it    item.Item
	score float64
}

// NewScored creates a scored item.
func NewScored(it item.Item, score float64) Scored {
	return Scored{it: it, score: score}
}

// Item returns the recommended item.
func (s Scored) Item() item.Item { return s.it }

// Score returns the similarity score under the request metric. Cosine
// scores are raw and may be negative.
func (s Scored) Score() float64 { return s.score }

// Result is one recommendation response (ephemeral, built fresh per query).
type Result struct {
	scored     []Scored
	cat        category.Category
	confidence float64
	reasoning  string
}

// New creates a recommendation result.
func New(scored []Scored, cat category.Category, confidence float64, reasoning string) Result {
	return Result{scored: scored, cat: cat, confidence: confidence, reasoning: reasoning}
}

// Scored returns the ranked scored items.
func (r *Result) Scored() []Scored { return r.scored }

// Items returns the ranked items without scores.
func (r *Result) Items() []item.Item {
	items := make([]item.Item, len(r.scored))
	for i, s := range r.scored {
		items[i] = s.it
	}
	return items
}

// Scores returns the similarity scores aligned with Items.
func (r *Result) Scores() []float64 {
	scores := make([]float64, len(r.scored))
	for i, s := range r.scored {
		scores[i] = s.score
	}
	return scores
}

// Category returns the result category: the filter value, a single shared
// category, or mixed.
func (r *Result) Category() category.Category { return r.cat }

// Confidence returns the mean similarity of the returned items.
func (r *Result) Confidence() float64 { return r.confidence }

// Reasoning returns the human-readable ranking summary.
func (r *Result) Reasoning() string { return r.reasoning }

// Len returns the number of recommended items.
func (r *Result) Len() int { return len(r.scored) }

// IsEmpty reports whether the result carries no items.
func (r *Result) IsEmpty() bool { return len(r.scored) == 0 }
