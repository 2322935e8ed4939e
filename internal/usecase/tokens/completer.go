package tokens

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/domain"
	"github.com/kailas-cloud/askdex/internal/metrics"
)

// InstrumentedCompleter wraps ChatCompleter with budget enforcement and
// logging. Embedding and generation may share one BudgetTracker or carry
// separate ones per provider.
type InstrumentedCompleter struct {
	inner    domain.ChatCompleter
	provider string
	model    string
	budget   BudgetChecker
	logger   *zap.Logger
}

// NewInstrumentedCompleter wraps a chat completer with budget and observability.
func NewInstrumentedCompleter(
	inner domain.ChatCompleter, provider, model string,
	budget BudgetChecker, logger *zap.Logger,
) *InstrumentedCompleter {
	return &InstrumentedCompleter{
		inner:    inner,
		provider: provider,
		model:    model,
		budget:   budget,
		logger:   logger,
	}
}

// Complete checks budget, delegates to the inner completer, and records usage.
func (p *InstrumentedCompleter) Complete(
	ctx context.Context, system, user string,
) (domain.ChatResult, error) {
	if p.budget != nil {
		if err := p.budget.Check(ctx); err != nil {
			p.logger.Error("Budget exceeded",
				zap.String("provider", p.provider),
				zap.String("model", p.model),
				zap.Error(err),
			)
			return domain.ChatResult{}, fmt.Errorf("budget check: %w", err)
		}
	}

	start := time.Now()

	result, err := p.inner.Complete(ctx, system, user)

	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Chat completion failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.ChatResult{}, fmt.Errorf("complete: %w", err)
	}

	if p.budget != nil && result.TotalTokens > 0 {
		p.budget.Record(int64(result.TotalTokens))
		remaining := metrics.BudgetTokensRemaining
		remaining.WithLabelValues(p.provider, "daily").Set(float64(p.budget.RemainingDaily()))
		remaining.WithLabelValues(p.provider, "monthly").Set(float64(p.budget.RemainingMonthly()))
	}

	p.logger.Debug("Chat completion finished",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.String("finish_reason", result.FinishReason),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}
