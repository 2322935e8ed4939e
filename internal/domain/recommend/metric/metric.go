package metric

// Metric is the vector comparison function used for neighbor search.
type Metric string

// Supported metrics.
const (
	// Cosine scores by raw cosine similarity (higher is closer).
	Cosine Metric = "cosine"
	// Euclidean and Manhattan are distance based; scores are normalized
	// to (0,1] via 1/(1+distance).
	Euclidean Metric = "euclidean"
	Manhattan Metric = "manhattan"
)

// IsValid checks if the metric is one of the supported values.
func (m Metric) IsValid() bool {
	return m == Cosine || m == Euclidean || m == Manhattan
}

// DistanceBased reports whether scores come from a distance normalization
// rather than a direct similarity.
func (m Metric) DistanceBased() bool {
	return m == Euclidean || m == Manhattan
}
