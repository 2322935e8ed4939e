package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is the umbrella for structurally invalid caller input.
	// Specific validation sentinels below wrap it, so callers can match
	// either the exact condition or the whole class.
	ErrValidation = errors.New("invalid input")

	// ErrVectorDimMismatch signals a vector that does not match the index dimensionality.
	ErrVectorDimMismatch = fmt.Errorf("%w: vector dimension mismatch", ErrValidation)
	// ErrUnsupportedMetric signals an unknown similarity metric.
	ErrUnsupportedMetric = fmt.Errorf("%w: unsupported metric", ErrValidation)
	// ErrInvalidTopK signals a non-positive top_k.
	ErrInvalidTopK = fmt.Errorf("%w: top_k must be positive", ErrValidation)
	// ErrInvalidCategory signals a category outside the known set.
	ErrInvalidCategory = fmt.Errorf("%w: unknown category", ErrValidation)

	// ErrStrategyFailed wraps a failing strategy execution. The resolver
	// absorbs it into the trace; it never reaches the caller.
	ErrStrategyFailed = errors.New("strategy execution failed")
	// ErrResolverConfig signals an unusable resolution chain.
	ErrResolverConfig = errors.New("resolver misconfigured")

	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrTokenQuotaExceeded signals an exhausted provider token budget.
	ErrTokenQuotaExceeded = errors.New("token quota exceeded")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationProviderError signals a chat completion provider failure.
	ErrGenerationProviderError = errors.New("generation provider error")
)

// DimensionMismatchError wraps ErrVectorDimMismatch with the expected and actual lengths.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: want %d, got %d", ErrVectorDimMismatch.Error(), e.Want, e.Got)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrVectorDimMismatch }

// NewDimensionMismatch creates a dimension mismatch error.
func NewDimensionMismatch(want, got int) error {
	return &DimensionMismatchError{Want: want, Got: got}
}
