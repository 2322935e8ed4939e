package index

import (
	"math"

	"github.com/kailas-cloud/askdex/internal/domain/recommend/metric"
)

// score converts a query/vector pair to a similarity under the given metric:
// raw cosine for cosine, 1/(1+distance) for distance-based metrics.
func score(m metric.Metric, query, v []float32) float64 {
	switch m {
	case metric.Euclidean:
		return 1 / (1 + euclideanDistance(query, v))
	case metric.Manhattan:
		return 1 / (1 + manhattanDistance(query, v))
	default:
		return cosineSimilarity(query, v)
	}
}

// cosineSimilarity returns the cosine of the angle between a and b in [-1,1].
// Zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func euclideanDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

func manhattanDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += math.Abs(float64(a[i]) - float64(b[i]))
	}
	return sum
}
