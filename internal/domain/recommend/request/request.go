package request

import (
	"fmt"

	"github.com/kailas-cloud/askdex/internal/domain"
	"github.com/kailas-cloud/askdex/internal/domain/category"
	"github.com/kailas-cloud/askdex/internal/domain/recommend/metric"
)

// Recommendation parameter limits.
const (
	DefaultTopK = 5
	MaxTopK     = 1000
)

// Request is a validated recommendation query.
type Request struct {
	vector []float32
	cat    category.Category
	topK   int
	met    metric.Metric
}

// New validates and normalizes recommendation parameters.
// Defaults: metric=cosine. topK must be positive (callers substitute their
// own default before construction); values above MaxTopK are clamped.
// An empty category means no filter.
func New(vector []float32, cat category.Category, topK int, m metric.Metric) (Request, error) {
	if len(vector) == 0 {
		return Request{}, fmt.Errorf("%w: query vector is required", domain.ErrValidation)
	}
	if topK <= 0 {
		return Request{}, fmt.Errorf("%w: got %d", domain.ErrInvalidTopK, topK)
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}
	if m == "" {
		m = metric.Cosine
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedMetric, m)
	}
	if cat != "" && !cat.IsValid() {
		return Request{}, fmt.Errorf("%w: %q", domain.ErrInvalidCategory, cat)
	}

	v := make([]float32, len(vector))
	copy(v, vector)

	return Request{vector: v, cat: cat, topK: topK, met: m}, nil
}

// Vector returns the query vector.
func (r *Request) Vector() []float32 { return r.vector }

// Category returns the category filter (empty when unfiltered).
func (r *Request) Category() category.Category { return r.cat }

// HasCategoryFilter reports whether a category filter is set.
func (r *Request) HasCategoryFilter() bool { return r.cat != "" }

// TopK returns the number of items to recommend.
func (r *Request) TopK() int { return r.topK }

// Metric returns the comparison metric.
func (r *Request) Metric() metric.Metric { return r.met }
