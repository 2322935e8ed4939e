package resolve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/domain"
	"github.com/kailas-cloud/askdex/internal/domain/answer"
	"github.com/kailas-cloud/askdex/internal/domain/resolution"
	"github.com/kailas-cloud/askdex/internal/metrics"
)

// Service resolves answers by walking an ordered strategy chain.
//
// Selection is "first strategy to clear its own bar": each strategy's
// answer is compared against that strategy's own threshold, and the chain
// short-circuits on the first pass. The last strategy is the unconditional
// terminal; its declared threshold is ignored. Execution errors and panics
// are absorbed into the trace with confidence 0 and the chain moves on.
type Service struct {
	strategies []resolution.Strategy
	log        *zap.Logger
}

// New creates a resolver over the ordered chain.
func New(strategies []resolution.Strategy) (*Service, error) {
	if len(strategies) == 0 {
		return nil, fmt.Errorf("%w: strategy chain is empty", domain.ErrResolverConfig)
	}
	chain := make([]resolution.Strategy, len(strategies))
	copy(chain, strategies)
	return &Service{strategies: chain, log: zap.NewNop()}, nil
}

// WithLogger attaches a logger.
func (s *Service) WithLogger(log *zap.Logger) *Service {
	if log != nil {
		s.log = log
	}
	return s
}

// Strategies returns the chain in execution order.
func (s *Service) Strategies() []resolution.Strategy {
	return s.strategies
}

// Resolve walks the chain and returns the winning answer with the full
// attempt trace. It fails only on context cancellation or when the
// terminal strategy itself errors, which is a deployment problem rather
// than a query problem.
func (s *Service) Resolve(ctx context.Context, q resolution.Query) (resolution.Resolution, error) {
	start := time.Now()
	id := uuid.NewString()
	trace := make([]resolution.Attempt, 0, len(s.strategies))

	last := len(s.strategies) - 1
	for i, strat := range s.strategies {
		if err := ctx.Err(); err != nil {
			return resolution.Resolution{}, fmt.Errorf("resolve: %w", err)
		}
		terminal := i == last

		ans, err := s.execute(ctx, strat, q)
		if err != nil {
			trace = append(trace, resolution.NewFailed(strat.Name(), err.Error()))
			metrics.ResolverStrategyAttemptsTotal.WithLabelValues(strat.Name(), "failed").Inc()
			s.log.Warn("Strategy execution failed",
				zap.String("resolution_id", id),
				zap.String("strategy", strat.Name()),
				zap.Error(err),
			)
			if !terminal {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return resolution.Resolution{}, fmt.Errorf("resolve: %w", err)
			}
			return resolution.Resolution{}, fmt.Errorf("%w: terminal strategy failed: %w", domain.ErrResolverConfig, err)
		}

		if terminal || ans.Confidence() >= strat.Threshold() {
			trace = append(trace, resolution.NewAccepted(strat.Name(), ans.Confidence()))
			metrics.ResolverStrategyAttemptsTotal.WithLabelValues(strat.Name(), "accepted").Inc()
			metrics.ResolverResolutionsTotal.WithLabelValues(strat.Name()).Inc()

			res := resolution.New(id, ans, strat.Name(), trace, time.Since(start))
			s.log.Debug("Answer resolved",
				zap.String("resolution_id", id),
				zap.String("strategy", strat.Name()),
				zap.Float64("confidence", ans.Confidence()),
				zap.Int("attempts", len(trace)),
				zap.Duration("elapsed", res.Elapsed()),
			)
			return res, nil
		}

		trace = append(trace, resolution.NewRejected(strat.Name(), ans.Confidence()))
		metrics.ResolverStrategyAttemptsTotal.WithLabelValues(strat.Name(), "rejected").Inc()
	}

	// Unreachable: the terminal arm above always returns.
	return resolution.Resolution{}, domain.ErrResolverConfig
}

// execute runs one strategy, converting panics into errors so a broken
// strategy cannot take down the chain.
func (s *Service) execute(ctx context.Context, strat resolution.Strategy, q resolution.Query) (ans answer.Answer, err error) {
	defer func() {
		if r := recover(); r != nil {
			ans = answer.Answer{}
			err = fmt.Errorf("%w: %s panicked: %v", domain.ErrStrategyFailed, strat.Name(), r)
		}
	}()

	ans, err = strat.Execute(ctx, q)
	if err != nil {
		return answer.Answer{}, fmt.Errorf("%w: %s: %w", domain.ErrStrategyFailed, strat.Name(), err)
	}
	return ans, nil
}
