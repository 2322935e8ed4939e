package chi

import "time"

// ErrorCode is the machine-readable error identifier in API error responses.
type ErrorCode string

// API error codes.
const (
	CodeBadRequest              ErrorCode = "bad_request"
	CodeValidationFailed        ErrorCode = "validation_failed"
	CodeVectorDimMismatch       ErrorCode = "vector_dim_mismatch"
	CodeRateLimited             ErrorCode = "rate_limited"
	CodeTokenQuotaExceeded      ErrorCode = "token_quota_exceeded"
	CodeEmbeddingProviderError  ErrorCode = "embedding_provider_error"
	CodeGenerationProviderError ErrorCode = "generation_provider_error"
	CodeResolverMisconfigured   ErrorCode = "resolver_misconfigured"
	CodeInternalError           ErrorCode = "internal_error"
)

// ErrorResponse is the error body for all non-2xx responses.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ItemPayload is one catalog item on the wire.
type ItemPayload struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Vector      []float32 `json:"vector,omitempty"`
	// Confidence defaults to 1 when omitted.
	Confidence *float64 `json:"confidence,omitempty"`
}

// AddItemsRequest is the body of POST /v1/items.
type AddItemsRequest struct {
	Items []ItemPayload `json:"items"`
}

// ItemResult is the per-item outcome in a batch response.
type ItemResult struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

// AddItemsResponse is the body of a POST /v1/items response.
type AddItemsResponse struct {
	Items     []ItemResult `json:"items"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
}

// RecommendRequest is the body of POST /v1/recommendations. Exactly one of
// vector and text must be set; text requires a configured query embedder.
type RecommendRequest struct {
	Vector   []float32 `json:"vector,omitempty"`
	Text     string    `json:"text,omitempty"`
	Category string    `json:"category,omitempty"`
	TopK     int       `json:"top_k,omitempty"`
	Metric   string    `json:"metric,omitempty"`
}

// ScoredItem is one recommended item with its similarity score.
type ScoredItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags,omitempty"`
	Score       float64  `json:"score"`
}

// RecommendResponse is the body of a POST /v1/recommendations response.
type RecommendResponse struct {
	Items      []ScoredItem `json:"items"`
	Category   string       `json:"category,omitempty"`
	Confidence float64      `json:"confidence"`
	Reasoning  string       `json:"reasoning"`
}

// ExtractTagsRequest is the body of POST /v1/tags/extractions.
type ExtractTagsRequest struct {
	Text    string `json:"text"`
	MaxTags int    `json:"max_tags,omitempty"`
}

// ExtractTagsResponse is the body of a POST /v1/tags/extractions response.
type ExtractTagsResponse struct {
	Tags []string `json:"tags"`
}

// AnswerRequest is the body of POST /v1/answers.
type AnswerRequest struct {
	Question string            `json:"question"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// AnswerPayload is the winning answer inside an AnswerResponse.
type AnswerPayload struct {
	Text       string            `json:"text"`
	Confidence float64           `json:"confidence"`
	Source     string            `json:"source"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// AttemptPayload is one strategy execution in the resolution trace.
type AttemptPayload struct {
	Strategy   string  `json:"strategy"`
	Confidence float64 `json:"confidence"`
	Accepted   bool    `json:"accepted"`
	Error      string  `json:"error,omitempty"`
}

// AnswerResponse is the body of a POST /v1/answers response.
type AnswerResponse struct {
	ID        string           `json:"id"`
	Answer    AnswerPayload    `json:"answer"`
	Strategy  string           `json:"strategy"`
	ElapsedMs int64            `json:"elapsed_ms"`
	Trace     []AttemptPayload `json:"trace"`
}

// UsageMetricsPayload carries provider call counters for one period.
type UsageMetricsPayload struct {
	ProviderRequests int  `json:"provider_requests"`
	Tokens           int  `json:"tokens"`
	CostMillidollars *int `json:"cost_millidollars,omitempty"`
}

// BudgetPayload carries the token budget state for one period.
type BudgetPayload struct {
	TokensLimit     int        `json:"tokens_limit"`
	TokensRemaining int        `json:"tokens_remaining"`
	IsExhausted     bool       `json:"is_exhausted"`
	ResetsAt        *time.Time `json:"resets_at,omitempty"`
}

// UsageResponse is the body of a GET /v1/usage response.
type UsageResponse struct {
	Period        string              `json:"period"`
	PeriodStartAt *time.Time          `json:"period_start_at,omitempty"`
	PeriodEndAt   *time.Time          `json:"period_end_at,omitempty"`
	Usage         UsageMetricsPayload `json:"usage"`
	Budget        BudgetPayload       `json:"budget"`
}

// HealthResponse is the body of a GET /healthz response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Items  int               `json:"items"`
}
