package resolution

import (
	"time"

	"github.com/kailas-cloud/askdex/internal/domain/answer"
)

// Attempt records one strategy execution in the resolution trace.
type Attempt struct {
	strategy   string
	confidence float64
	accepted   bool
	errMsg     string
}

// NewAccepted creates a trace entry for the winning strategy.
func NewAccepted(strategy string, confidence float64) Attempt {
	return Attempt{strategy: strategy, confidence: confidence, accepted: true}
}

// NewRejected creates a trace entry for a strategy that ran but missed its bar.
func NewRejected(strategy string, confidence float64) Attempt {
	return Attempt{strategy: strategy, confidence: confidence}
}

// NewFailed creates a trace entry for a strategy whose execution errored or
// panicked. Effective confidence is 0.
func NewFailed(strategy, errMsg string) Attempt {
	return Attempt{strategy: strategy, errMsg: errMsg}
}

// Strategy returns the strategy name.
func (a Attempt) Strategy() string { return a.strategy }

// Confidence returns the confidence the strategy achieved.
func (a Attempt) Confidence() float64 { return a.confidence }

// Accepted reports whether this attempt produced the final answer.
func (a Attempt) Accepted() bool { return a.accepted }

// Err returns the absorbed execution error message, empty when none.
func (a Attempt) Err() string { return a.errMsg }

// Failed reports whether the execution errored.
func (a Attempt) Failed() bool { return a.errMsg != "" }

// Resolution is the outcome of one resolve call: the winning answer plus the
// full attempt trace for observability.
type Resolution struct {
	id       string
	ans      answer.Answer
	strategy string
	trace    []Attempt
	elapsed  time.Duration
}

// New creates a resolution.
func New(id string, ans answer.Answer, strategy string, trace []Attempt, elapsed time.Duration) Resolution {
	return Resolution{id: id, ans: ans, strategy: strategy, trace: trace, elapsed: elapsed}
}

// ID returns the resolution identifier.
func (r *Resolution) ID() string { return r.id }

// Answer returns the winning answer.
func (r *Resolution) Answer() answer.Answer { return r.ans }

// Strategy returns the name of the strategy that produced the answer.
func (r *Resolution) Strategy() string { return r.strategy }

// Trace returns every attempted execution in chain order.
func (r *Resolution) Trace() []Attempt { return r.trace }

// Elapsed returns the total resolve duration.
func (r *Resolution) Elapsed() time.Duration { return r.elapsed }
