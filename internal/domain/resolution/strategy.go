package resolution

import (
	"context"

	"github.com/kailas-cloud/askdex/internal/domain/answer"
)

// Strategy is one rung of the answer-resolution chain. Implementations are
// tried in configured order; the first whose answer confidence reaches its
// own Threshold wins. Execute errors are absorbed into the trace by the
// resolver and never abort the chain.
type Strategy interface {
	// Name identifies the strategy in traces, logs, and metrics.
	Name() string
	// Threshold is the minimum confidence this strategy's own answer must
	// reach to be accepted. The resolver ignores the threshold of the last
	// strategy in the chain, which is the unconditional terminal.
	Threshold() float64
	// Execute produces a candidate answer for the query.
	Execute(ctx context.Context, q Query) (answer.Answer, error)
}
