package askdex

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Engine.
type Option interface {
	apply(*engineConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*engineConfig)

func (f optionFunc) apply(c *engineConfig) { f(c) }

type engineConfig struct {
	dimensions int

	embedder   Embedder
	dictionary *Dictionary
	strategies []Strategy

	fetchFactor   int
	maxTags       int
	maxBatchSize  int
	defaultAnswer string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithDimensions sets the vector dimension of the index.
// Defaults to 1536 (OpenAI text-embedding-3-small).
func WithDimensions(dim int) Option {
	return optionFunc(func(c *engineConfig) {
		c.dimensions = dim
	})
}

// WithEmbedder sets the text embedding provider. It enables text
// recommendation queries, auto-vectorization of vectorless items, and the
// built-in recommendation answer strategy.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *engineConfig) {
		c.embedder = e
	})
}

// WithDictionary merges additional tag vocabulary on top of the built-in
// bilingual dictionary.
func WithDictionary(d Dictionary) Option {
	return optionFunc(func(c *engineConfig) {
		c.dictionary = &d
	})
}

// WithStrategies prepends custom answer strategies to the resolution chain.
// They run in the given order, before the built-in recommendation strategy
// and the terminal canned answer.
func WithStrategies(ss ...Strategy) Option {
	return optionFunc(func(c *engineConfig) {
		c.strategies = ss
	})
}

// WithFetchFactor sets the over-fetch multiplier for category-filtered
// recommendations. Default: 4.
func WithFetchFactor(factor int) Option {
	return optionFunc(func(c *engineConfig) {
		c.fetchFactor = factor
	})
}

// WithMaxTags caps how many tags ExtractTags returns when the caller does
// not say. Default: 8.
func WithMaxTags(n int) Option {
	return optionFunc(func(c *engineConfig) {
		c.maxTags = n
	})
}

// WithMaxBatchSize sets the maximum number of items per AddItems call.
// Default: 100.
func WithMaxBatchSize(size int) Option {
	return optionFunc(func(c *engineConfig) {
		c.maxBatchSize = size
	})
}

// WithDefaultAnswer overrides the canned text of the terminal strategy.
func WithDefaultAnswer(text string) Option {
	return optionFunc(func(c *engineConfig) {
		c.defaultAnswer = text
	})
}

// WithLogger enables structured logging for engine operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *engineConfig) {
		c.logger = l
	})
}

// WithPrometheus registers engine metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *engineConfig) {
		c.metricsReg = reg
	})
}
