package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/config"
	"github.com/kailas-cloud/askdex/internal/db"
	dbRedis "github.com/kailas-cloud/askdex/internal/db/redis"
	"github.com/kailas-cloud/askdex/internal/domain"
	"github.com/kailas-cloud/askdex/internal/domain/resolution"
	"github.com/kailas-cloud/askdex/internal/domain/tag"
	"github.com/kailas-cloud/askdex/internal/index"
	logpkg "github.com/kailas-cloud/askdex/internal/logger"
	"github.com/kailas-cloud/askdex/internal/metrics"
	budgetrepo "github.com/kailas-cloud/askdex/internal/repository/budget"
	dictrepo "github.com/kailas-cloud/askdex/internal/repository/dictionary"
	"github.com/kailas-cloud/askdex/internal/repository/embcache"
	faqrepo "github.com/kailas-cloud/askdex/internal/repository/faq"
	faqstrat "github.com/kailas-cloud/askdex/internal/strategy/faq"
	"github.com/kailas-cloud/askdex/internal/strategy/llmgen"
	"github.com/kailas-cloud/askdex/internal/strategy/recommendation"
	"github.com/kailas-cloud/askdex/internal/strategy/static"
	webstrat "github.com/kailas-cloud/askdex/internal/strategy/websearch"
	chiTransport "github.com/kailas-cloud/askdex/internal/transport/chi"
	openaiProv "github.com/kailas-cloud/askdex/internal/transport/openai"
	searchProv "github.com/kailas-cloud/askdex/internal/transport/websearch"
	healthuc "github.com/kailas-cloud/askdex/internal/usecase/health"
	itemsuc "github.com/kailas-cloud/askdex/internal/usecase/items"
	recommenduc "github.com/kailas-cloud/askdex/internal/usecase/recommend"
	resolveuc "github.com/kailas-cloud/askdex/internal/usecase/resolve"
	tagginguc "github.com/kailas-cloud/askdex/internal/usecase/tagging"
	tokensuc "github.com/kailas-cloud/askdex/internal/usecase/tokens"
	"github.com/kailas-cloud/askdex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting askdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Int("index_dimensions", cfg.Index.Dimensions),
	)

	ctx := context.Background()

	// Database is optional: without it the engine runs fully in memory
	// (no embedding cache, no FAQ strategy, no budget persistence).
	var store db.Store
	if len(cfg.Database.Addrs) > 0 {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		store = s
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database")
	} else {
		logger.Info("No database configured, running in memory")
	}

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterGenerationMetrics()
	metrics.RegisterPipelineMetrics()

	// Single BudgetTracker shared by embedding and generation spend.
	var budget *tokensuc.BudgetTracker
	budgetCfg := cfg.Embedding.Budget
	if budgetCfg.DailyTokenLimit > 0 || budgetCfg.MonthlyTokenLimit > 0 {
		action := tokensuc.BudgetActionWarn
		if budgetCfg.Action == "reject" {
			action = tokensuc.BudgetActionReject
		}
		budget = tokensuc.NewBudgetTracker(
			cfg.Embedding.Provider, budgetCfg.DailyTokenLimit, budgetCfg.MonthlyTokenLimit, action, logger,
		)
		if store != nil {
			// Connect persistence store — loads current counters from DB.
			budgetStore := budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour)
			budget.WithStore(ctx, budgetStore)
		}
	}

	// Pass nil interface (not typed nil pointer!) if budget is not configured.
	// Go gotcha: (*BudgetTracker)(nil) wrapped in BudgetChecker != nil.
	var budgetChecker tokensuc.BudgetChecker
	if budget != nil {
		budgetChecker = budget
	}

	// Embedding provider is optional: without an API key only vector-carrying
	// requests are served.
	var docEmbedder, queryEmbedder domain.Embedder
	if cfg.Embedding.APIKey != "" {
		docEmbedder = buildEmbedder(cfg, cfg.Embedding.DocumentInstruction, store, budgetChecker, logger)
		queryEmbedder = buildEmbedder(cfg, cfg.Embedding.QueryInstruction, store, budgetChecker, logger)
		logger.Info("Embedders created",
			zap.String("provider", cfg.Embedding.Provider),
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", cfg.Index.Dimensions),
		)
	}

	var completer domain.ChatCompleter
	if cfg.LLM.APIKey != "" {
		base := openaiProv.NewCompleter(&openaiProv.CompleterConfig{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Provider:    cfg.LLM.Provider,
			Logger:      logger,
		})
		completer = tokensuc.NewInstrumentedCompleter(base, cfg.LLM.Provider, cfg.LLM.Model, budgetChecker, logger)
		logger.Info("Chat completer created",
			zap.String("provider", cfg.LLM.Provider),
			zap.String("model", cfg.LLM.Model),
		)
	}

	// Tag dictionary: built-in plus whatever the dictionary dir adds. A bad
	// data file must not stop the server — tagging falls back to built-in.
	dict := tag.DefaultDictionary()
	if dir := cfg.Tagging.DictionaryDir; dir != "" {
		loaded, err := dictrepo.Load(dir)
		if err != nil {
			logger.Warn("Dictionary load failed, using built-in only",
				zap.String("dir", dir), zap.Error(err))
		} else {
			dict = dict.Merge(loaded)
		}
	}

	idx, err := index.New(cfg.Index.Dimensions)
	if err != nil {
		logger.Fatal("Failed to create index", zap.Error(err))
	}

	// Use case services
	extractor := tagginguc.New(dict).
		WithLogger(logger).
		WithMaxTags(cfg.Tagging.MaxTags).
		WithFuzzyThreshold(cfg.Tagging.FuzzyThreshold)

	itemsSvc := itemsuc.New(idx).
		WithTagger(extractor).
		WithLogger(logger)
	if docEmbedder != nil {
		itemsSvc = itemsSvc.WithEmbedder(docEmbedder)
	}

	recommendSvc := recommenduc.New(idx).
		WithLogger(logger).
		WithFetchFactor(cfg.Index.FetchFactor).
		WithMaxFetchRounds(cfg.Index.MaxFetchRounds)

	// Resolution chain. Every missing optional dependency drops its own rung;
	// the static terminal always closes the chain.
	var strategies []resolution.Strategy
	if store != nil {
		strategies = append(strategies, faqstrat.New(faqrepo.NewRedis(store), cfg.Resolver.FAQThreshold))
	}
	if completer != nil {
		gen := llmgen.New(completer, cfg.Resolver.GenerationThreshold)
		if cfg.LLM.SystemPrompt != "" {
			gen = gen.WithSystemPrompt(cfg.LLM.SystemPrompt)
		}
		strategies = append(strategies, gen)
	}
	if cfg.WebSearch.BaseURL != "" {
		searcher := searchProv.NewClient(&searchProv.Config{
			BaseURL:  cfg.WebSearch.BaseURL,
			Language: cfg.WebSearch.Language,
			Timeout:  time.Duration(cfg.WebSearch.TimeoutSec) * time.Second,
			Logger:   logger,
		})
		strategies = append(strategies,
			webstrat.New(searcher, cfg.Resolver.WebSearchThreshold).WithLimit(cfg.WebSearch.MaxResults))
	}
	if queryEmbedder != nil {
		strategies = append(strategies,
			recommendation.New(recommendSvc, queryEmbedder, cfg.Resolver.RecommendationThreshold))
	}
	strategies = append(strategies, static.New().WithResponse(cfg.Resolver.DefaultAnswer))

	resolveSvc, err := resolveuc.New(strategies)
	if err != nil {
		logger.Fatal("Failed to build resolver", zap.Error(err))
	}
	resolveSvc = resolveSvc.WithLogger(logger)
	logger.Info("Resolver assembled", zap.Int("strategies", len(strategies)))

	var budgetReader tokensuc.BudgetReader
	if budget != nil {
		budgetReader = budget
	}
	usageSvc := tokensuc.NewUsageService(budgetReader).
		WithCostPerMillionTokens(budgetCfg.CostPerMillionTokens)

	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(docEmbedder), idx)

	// Chi server
	server := chiTransport.NewServer(itemsSvc, recommendSvc, extractor, resolveSvc, usageSvc, healthSvc, logger)
	if queryEmbedder != nil {
		server = server.WithQueryEmbedder(queryEmbedder)
	}

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.RegisterRoutes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) healthuc.EmbeddingChecker {
	if embedder == nil {
		return nil
	}
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction
func buildEmbedder(
	cfg config.Config,
	instruction string,
	store db.Store,
	budget tokensuc.BudgetChecker,
	logger *zap.Logger,
) domain.Embedder {
	// Base provider (with transport metrics built-in)
	base := openaiProv.NewEmbedder(&openaiProv.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Index.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})

	// Cached
	var embedder domain.Embedder = base
	if store != nil {
		embedder = embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)
	}

	// Instrumented (budget + metrics)
	embedder = tokensuc.NewInstrumentedEmbedder(
		embedder, cfg.Embedding.Provider, cfg.Embedding.Model, budget, logger,
	)

	// Instruction prefix (outermost — cache key includes instruction)
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}

	return embedder
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)
			ctx, usage := domain.NewContextWithUsage(ctx)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
				zap.Int("tokens_used", usage.TotalTokens),
			)
		})
	}
}
