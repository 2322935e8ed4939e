// Package mock provides a test double for the resolution strategy chain.
package mock

import (
	"context"

	"github.com/kailas-cloud/askdex/internal/domain/answer"
	"github.com/kailas-cloud/askdex/internal/domain/resolution"
)

// Strategy is a configurable resolution.Strategy double with call counting.
type Strategy struct {
	// ExecuteFunc is called by Execute if set. If nil, Execute returns an
	// empty answer with confidence 0.
	ExecuteFunc func(ctx context.Context, q resolution.Query) (answer.Answer, error)

	name      string
	threshold float64
	callCount int
}

// NewStrategy creates a mock strategy.
func NewStrategy(name string, threshold float64) *Strategy {
	return &Strategy{name: name, threshold: threshold}
}

// WithAnswer makes Execute return a fixed answer at the given confidence.
func (s *Strategy) WithAnswer(text string, confidence float64) *Strategy {
	s.ExecuteFunc = func(context.Context, resolution.Query) (answer.Answer, error) {
		return answer.New(text, confidence, answer.SourceGeneration, nil), nil
	}
	return s
}

// WithError makes Execute fail with err.
func (s *Strategy) WithError(err error) *Strategy {
	s.ExecuteFunc = func(context.Context, resolution.Query) (answer.Answer, error) {
		return answer.Answer{}, err
	}
	return s
}

// WithPanic makes Execute panic with v.
func (s *Strategy) WithPanic(v any) *Strategy {
	s.ExecuteFunc = func(context.Context, resolution.Query) (answer.Answer, error) {
		panic(v)
	}
	return s
}

// Name returns the configured strategy name.
func (s *Strategy) Name() string { return s.name }

// Threshold returns the configured confidence bar.
func (s *Strategy) Threshold() float64 { return s.threshold }

// Execute runs the configured behavior and counts the call.
func (s *Strategy) Execute(ctx context.Context, q resolution.Query) (answer.Answer, error) {
	s.callCount++
	if s.ExecuteFunc != nil {
		return s.ExecuteFunc(ctx, q)
	}
	return answer.New("", 0, answer.SourceGeneration, nil), nil
}

// CallCount returns how many times Execute ran.
func (s *Strategy) CallCount() int { return s.callCount }

// Reset clears the call count and configured behavior.
func (s *Strategy) Reset() {
	s.callCount = 0
	s.ExecuteFunc = nil
}
