package askdex

import "github.com/kailas-cloud/askdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation              = domain.ErrValidation
	ErrVectorDimMismatch       = domain.ErrVectorDimMismatch
	ErrUnsupportedMetric       = domain.ErrUnsupportedMetric
	ErrInvalidTopK             = domain.ErrInvalidTopK
	ErrInvalidCategory         = domain.ErrInvalidCategory
	ErrStrategyFailed          = domain.ErrStrategyFailed
	ErrResolverConfig          = domain.ErrResolverConfig
	ErrRateLimited             = domain.ErrRateLimited
	ErrTokenQuotaExceeded      = domain.ErrTokenQuotaExceeded
	ErrEmbeddingProviderError  = domain.ErrEmbeddingProviderError
	ErrGenerationProviderError = domain.ErrGenerationProviderError
)
