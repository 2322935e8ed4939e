package recommend

import (
	"github.com/kailas-cloud/askdex/internal/domain/recommend/metric"
	"github.com/kailas-cloud/askdex/internal/domain/recommend/result"
)

// Searcher defines the vector index contract for recommendation queries.
type Searcher interface {
	Query(vector []float32, topK int, m metric.Metric) ([]result.Scored, error)
	Len() int
}
