package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/domain"
	dombatch "github.com/kailas-cloud/askdex/internal/domain/batch"
	"github.com/kailas-cloud/askdex/internal/domain/category"
	"github.com/kailas-cloud/askdex/internal/domain/item"
	"github.com/kailas-cloud/askdex/internal/domain/recommend/metric"
	"github.com/kailas-cloud/askdex/internal/domain/recommend/request"
	"github.com/kailas-cloud/askdex/internal/domain/recommend/result"
	"github.com/kailas-cloud/askdex/internal/domain/resolution"
	domusage "github.com/kailas-cloud/askdex/internal/domain/usage"
	healthuc "github.com/kailas-cloud/askdex/internal/usecase/health"
	itemsuc "github.com/kailas-cloud/askdex/internal/usecase/items"
	recommenduc "github.com/kailas-cloud/askdex/internal/usecase/recommend"
	resolveuc "github.com/kailas-cloud/askdex/internal/usecase/resolve"
	tagginguc "github.com/kailas-cloud/askdex/internal/usecase/tagging"
	tokensuc "github.com/kailas-cloud/askdex/internal/usecase/tokens"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the recommendation engine over HTTP.
type Server struct {
	items     *itemsuc.Service
	recommend *recommenduc.Service
	tagging   *tagginguc.Extractor
	resolver  *resolveuc.Service
	usage     *tokensuc.UsageService
	health    *healthuc.Service
	// embedder turns text recommendation queries into vectors; optional.
	embedder      domain.Embedder
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	items *itemsuc.Service,
	recommend *recommenduc.Service,
	tagging *tagginguc.Extractor,
	resolver *resolveuc.Service,
	usage *tokensuc.UsageService,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		items:     items,
		recommend: recommend,
		tagging:   tagging,
		resolver:  resolver,
		usage:     usage,
		health:    health,
		logger:    logger,
	}
	// ErrVectorDimMismatch wraps ErrValidation, so it must match before the umbrella.
	s.errorHandlers = []errorHandler{
		dimMismatchHandler,
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited),
		sentinelHandler(domain.ErrTokenQuotaExceeded, http.StatusPaymentRequired, CodeTokenQuotaExceeded),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProviderError),
		sentinelHandler(domain.ErrGenerationProviderError, http.StatusBadGateway, CodeGenerationProviderError),
		sentinelHandler(domain.ErrResolverConfig, http.StatusInternalServerError, CodeResolverMisconfigured),
	}
	return s
}

// WithQueryEmbedder configures the embedder used for text recommendation
// queries. Without one, vector-less requests are rejected.
func (s *Server) WithQueryEmbedder(e domain.Embedder) *Server {
	s.embedder = e
	return s
}

// RegisterRoutes mounts all API endpoints on the router.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/items", s.AddItems)
		r.Post("/recommendations", s.Recommend)
		r.Post("/tags/extractions", s.ExtractTags)
		r.Post("/answers", s.Answer)
		r.Get("/usage", s.GetUsage)
	})
}

// AddItems handles POST /v1/items.
func (s *Server) AddItems(w http.ResponseWriter, r *http.Request) {
	var req AddItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Items) == 0 || len(req.Items) > itemsuc.MaxBatchSize {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("items count must be between 1 and %d", itemsuc.MaxBatchSize))
		return
	}

	batch := make([]item.Item, 0, len(req.Items))
	for _, p := range req.Items {
		it, err := itemFromPayload(p)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
			return
		}
		batch = append(batch, it)
	}

	ctx, usage := ensureUsage(r.Context())
	results := s.items.Add(ctx, batch)

	succeeded, failed := 0, 0
	items := make([]ItemResult, len(results))
	for i, res := range results {
		items[i] = itemResultToPayload(res)
		if res.Status() == dombatch.StatusOK {
			succeeded++
		} else {
			failed++
		}
	}

	setTokenUsageHeader(w, usage)
	writeJSON(w, http.StatusOK, AddItemsResponse{
		Items:     items,
		Succeeded: succeeded,
		Failed:    failed,
	})
}

// Recommend handles POST /v1/recommendations.
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Vector) > 0 && req.Text != "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			"request must carry either vector or text, not both")
		return
	}

	ctx, usage := ensureUsage(r.Context())

	vector := req.Vector
	if len(vector) == 0 {
		if req.Text == "" {
			writeError(w, http.StatusBadRequest, CodeValidationFailed, "request must carry a vector or text")
			return
		}
		if s.embedder == nil {
			writeError(w, http.StatusBadRequest, CodeValidationFailed,
				"text queries need an embedding provider")
			return
		}
		emb, err := s.embedder.Embed(ctx, req.Text)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		usage.AddTokens(emb.TotalTokens)
		vector = emb.Embedding
	}

	// 0 means "not set"; negative values fail request validation.
	topK := req.TopK
	if topK == 0 {
		topK = request.DefaultTopK
	}

	recReq, err := request.New(vector, category.Category(req.Category), topK, metric.Metric(req.Metric))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	rec, err := s.recommend.Recommend(ctx, recReq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]ScoredItem, rec.Len())
	for i, sc := range rec.Scored() {
		items[i] = scoredToPayload(sc)
	}

	setTokenUsageHeader(w, usage)
	writeJSON(w, http.StatusOK, RecommendResponse{
		Items:      items,
		Category:   string(rec.Category()),
		Confidence: rec.Confidence(),
		Reasoning:  rec.Reasoning(),
	})
}

// ExtractTags handles POST /v1/tags/extractions.
func (s *Server) ExtractTags(w http.ResponseWriter, r *http.Request) {
	var req ExtractTagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	tags := s.tagging.Extract(req.Text, req.MaxTags)
	writeJSON(w, http.StatusOK, ExtractTagsResponse{Tags: tags})
}

// Answer handles POST /v1/answers.
func (s *Server) Answer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	q, err := resolution.NewQuery(req.Question, resolution.Context{Metadata: req.Metadata})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	ctx, usage := ensureUsage(r.Context())
	res, err := s.resolver.Resolve(ctx, q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setTokenUsageHeader(w, usage)
	writeJSON(w, http.StatusOK, resolutionToPayload(&res))
}

// GetUsage handles GET /v1/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period := domusage.PeriodMonth
	switch r.URL.Query().Get("period") {
	case "", string(domusage.PeriodMonth):
	case string(domusage.PeriodDay):
		period = domusage.PeriodDay
	case string(domusage.PeriodTotal):
		period = domusage.PeriodTotal
	default:
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "period must be day, month or total")
		return
	}

	report := s.usage.GetReport(r.Context(), period)

	resp := UsageResponse{
		Period: string(report.Period()),
		Usage: UsageMetricsPayload{
			ProviderRequests: report.Metrics().ProviderRequests(),
			Tokens:           report.Metrics().Tokens(),
		},
		Budget: BudgetPayload{
			TokensLimit:     report.Budget().TokensLimit(),
			TokensRemaining: report.Budget().TokensRemaining(),
			IsExhausted:     report.Budget().IsExhausted(),
		},
	}

	if report.Metrics().CostMillidollars() > 0 {
		cost := report.Metrics().CostMillidollars()
		resp.Usage.CostMillidollars = &cost
	}

	if report.PeriodStart() > 0 {
		start := time.UnixMilli(report.PeriodStart()).UTC()
		end := time.UnixMilli(report.PeriodEnd()).UTC()
		resp.PeriodStartAt = &start
		resp.PeriodEndAt = &end
	}

	if report.Budget().ResetsAt() > 0 {
		resetsAt := time.UnixMilli(report.Budget().ResetsAt()).UTC()
		resp.Budget.ResetsAt = &resetsAt
	}

	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
		Items:  report.Items,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// ensureUsage reuses a collector installed upstream (the wide-event
// middleware) so per-request tokens land in the canonical log line, or
// creates one when the server runs without it.
func ensureUsage(ctx context.Context) (context.Context, *domain.TokenUsage) {
	if u := domain.UsageFromContext(ctx); u != nil {
		return ctx, u
	}
	return domain.NewContextWithUsage(ctx)
}

func setTokenUsageHeader(w http.ResponseWriter, usage *domain.TokenUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Tokens-Used", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrVectorDimMismatch,
		domain.ErrUnsupportedMetric,
		domain.ErrInvalidTopK,
		domain.ErrInvalidCategory,
		domain.ErrValidation,
		domain.ErrStrategyFailed,
		domain.ErrResolverConfig,
		domain.ErrRateLimited,
		domain.ErrTokenQuotaExceeded,
		domain.ErrEmbeddingProviderError,
		domain.ErrGenerationProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// dimMismatchHandler handles ErrVectorDimMismatch, adding the expected and
// actual dimensions when the error carries them.
func dimMismatchHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		return false
	}
	var dme *domain.DimensionMismatchError
	if errors.As(err, &dme) {
		writeError(w, http.StatusBadRequest, CodeVectorDimMismatch,
			fmt.Sprintf("%s: want %d, got %d", msg, dme.Want, dme.Got))
		return true
	}
	writeError(w, http.StatusBadRequest, CodeVectorDimMismatch, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func itemFromPayload(p ItemPayload) (item.Item, error) {
	confidence := 1.0
	if p.Confidence != nil {
		confidence = *p.Confidence
	}
	it, err := item.New(p.ID, p.Title, p.Description, category.Category(p.Category), p.Tags, p.Vector, confidence)
	if err != nil {
		return item.Item{}, fmt.Errorf("build item: %w", err)
	}
	return it, nil
}

func itemResultToPayload(r dombatch.Result) ItemResult {
	res := ItemResult{
		ID:     r.ID(),
		Status: string(r.Status()),
	}
	if r.Err() != nil {
		res.Error = &ErrorResponse{
			Code:    itemErrorCode(r.Err()),
			Message: safeDomainMessage(r.Err()),
		}
	}
	return res
}

func itemErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, domain.ErrVectorDimMismatch):
		return CodeVectorDimMismatch
	case errors.Is(err, domain.ErrTokenQuotaExceeded):
		return CodeTokenQuotaExceeded
	case errors.Is(err, domain.ErrRateLimited):
		return CodeRateLimited
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		return CodeEmbeddingProviderError
	case errors.Is(err, domain.ErrValidation):
		return CodeValidationFailed
	default:
		return CodeInternalError
	}
}

func scoredToPayload(sc result.Scored) ScoredItem {
	it := sc.Item()
	return ScoredItem{
		ID:          it.ID(),
		Title:       it.Title(),
		Description: it.Description(),
		Category:    string(it.Category()),
		Tags:        it.Tags(),
		Score:       sc.Score(),
	}
}

func resolutionToPayload(res *resolution.Resolution) AnswerResponse {
	ans := res.Answer()
	trace := make([]AttemptPayload, len(res.Trace()))
	for i, a := range res.Trace() {
		trace[i] = AttemptPayload{
			Strategy:   a.Strategy(),
			Confidence: a.Confidence(),
			Accepted:   a.Accepted(),
			Error:      a.Err(),
		}
	}
	return AnswerResponse{
		ID: res.ID(),
		Answer: AnswerPayload{
			Text:       ans.Text(),
			Confidence: ans.Confidence(),
			Source:     string(ans.Source()),
			Metadata:   ans.Metadata(),
		},
		Strategy:  res.Strategy(),
		ElapsedMs: res.Elapsed().Milliseconds(),
		Trace:     trace,
	}
}
