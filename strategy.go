package askdex

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/askdex/internal/domain/answer"
	"github.com/kailas-cloud/askdex/internal/domain/resolution"
)

// Strategy is one rung of the answer-resolution chain. Strategies passed via
// WithStrategies run in order ahead of the built-in ones; the first whose
// answer confidence reaches its own Threshold wins. Execute errors are
// absorbed into the resolution trace and never abort the chain.
type Strategy interface {
	// Name identifies the strategy in traces and metrics.
	Name() string
	// Threshold is the minimum confidence this strategy's own answer must
	// reach to be accepted.
	Threshold() float64
	// Execute produces a candidate answer for the query.
	Execute(ctx context.Context, q Query) (Answer, error)
}

// strategyAdapter wraps a public Strategy to satisfy resolution.Strategy.
type strategyAdapter struct {
	inner Strategy
}

func (a *strategyAdapter) Name() string { return a.inner.Name() }

func (a *strategyAdapter) Threshold() float64 { return a.inner.Threshold() }

func (a *strategyAdapter) Execute(ctx context.Context, q resolution.Query) (answer.Answer, error) {
	pub, err := a.inner.Execute(ctx, Query{
		Text:     q.Text(),
		Metadata: q.Context().Metadata,
	})
	if err != nil {
		return answer.Answer{}, fmt.Errorf("strategy %s: %w", a.inner.Name(), err)
	}

	source := answer.Source(pub.Source)
	if source == "" {
		source = answer.SourceGeneration
	}
	return answer.New(pub.Text, pub.Confidence, source, pub.Metadata), nil
}
