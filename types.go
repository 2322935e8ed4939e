package askdex

import "time"

// Category labels a catalog item or a recommendation request filter.
type Category string

// Category constants.
const (
	CategoryFinance    Category = "finance"
	CategoryLaw        Category = "law"
	CategoryTechnology Category = "technology"
	CategoryPsychology Category = "psychology"
	CategoryTrade      Category = "trade"
	CategoryGeneral    Category = "general"

	// CategoryMixed appears only on recommendation results whose items span
	// several categories. It is not accepted as an item or filter category.
	CategoryMixed Category = "mixed"
)

// Metric selects the vector distance function for recommendations.
type Metric string

// Metric constants. Empty means cosine.
const (
	MetricCosine    Metric = "cosine"
	MetricEuclidean Metric = "euclidean"
	MetricManhattan Metric = "manhattan"
)

// Item is a catalog entry for indexing.
type Item struct {
	ID          string
	Title       string
	Description string
	Category    Category
	Tags        []string
	Vector      []float32
	// Confidence weights the item in [0,1]. Zero means 1.
	Confidence float64
}

// BatchResult is the outcome of one item in a batch operation.
type BatchResult struct {
	ID  string
	OK  bool
	Err error
}

// RecommendQuery describes a recommendation request. Exactly one of Vector
// and Text must be set; Text requires an embedder (see WithEmbedder).
type RecommendQuery struct {
	Vector   []float32
	Text     string
	Category Category // empty means no filter
	TopK     int      // 0 means the default (5), capped at 1000
	Metric   Metric   // empty means cosine
}

// ScoredItem is a single recommendation hit.
type ScoredItem struct {
	ID          string
	Title       string
	Description string
	Category    Category
	Tags        []string
	Score       float64
}

// Recommendation is a ranked set of items with an aggregate confidence.
type Recommendation struct {
	Items      []ScoredItem
	Category   Category
	Confidence float64
	Reasoning  string
}

// Query is an answer-resolution request.
type Query struct {
	Text     string
	Metadata map[string]string
}

// Answer is a single produced answer.
type Answer struct {
	Text       string
	Confidence float64
	Source     string
	Metadata   map[string]string
}

// Attempt records one strategy try in a resolution trace.
type Attempt struct {
	Strategy   string
	Confidence float64
	Accepted   bool
	Err        string // empty unless the strategy failed
}

// Resolution is the outcome of running the strategy chain on a query.
type Resolution struct {
	ID       string
	Answer   Answer
	Strategy string
	Trace    []Attempt
	Elapsed  time.Duration
}

// Dictionary extends the built-in tag vocabulary. The shape matches the
// dictionary YAML files: exact vocabulary terms, glossary term→tag mappings,
// and keyword buckets.
type Dictionary struct {
	// Category applies to all glossary entries. Empty means general.
	Category   Category
	Vocabulary []string
	Glossary   []GlossaryEntry
	Buckets    []Bucket
}

// GlossaryEntry maps a trigger term to a canonical tag.
type GlossaryEntry struct {
	Term string
	Tag  string
}

// Bucket maps a set of keywords to one thematic tag.
type Bucket struct {
	Tag      string
	Keywords []string
}

// HealthStatus represents the aggregated engine health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component → "ok"/"error"
	Items  int               // indexed item count
}

// UsagePeriod is the aggregation granularity for usage reports.
type UsagePeriod string

// UsagePeriod constants.
const (
	PeriodDay   UsagePeriod = "day"
	PeriodMonth UsagePeriod = "month"
	PeriodTotal UsagePeriod = "total"
)

// UsageReport contains token usage statistics for a time period.
type UsageReport struct {
	Period      UsagePeriod
	PeriodStart time.Time
	PeriodEnd   time.Time
	Metrics     UsageMetrics
	Budget      BudgetStatus
}

// UsageMetrics tracks provider resource consumption.
type UsageMetrics struct {
	ProviderRequests int
	Tokens           int
	CostMillidollars int
}

// BudgetStatus tracks token quota state.
type BudgetStatus struct {
	TokensLimit     int
	TokensRemaining int
	IsExhausted     bool
	ResetsAt        time.Time
}
